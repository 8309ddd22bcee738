package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

const loadWorkers = 8

// LoadGenomeFiles reads genome payload documents concurrently, keeping the
// order of paths in the result. Each file must hold a single JSON document
// as written by the genome registry.
func LoadGenomeFiles(ctx context.Context, paths []string) ([]json.RawMessage, error) {
	payloads := make([]json.RawMessage, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadWorkers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if !json.Valid(data) {
				return fmt.Errorf("genome file %s: invalid JSON", path)
			}
			payloads[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payloads, nil
}
