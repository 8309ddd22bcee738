package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"edna/internal/dice"
	"edna/pkg/edna"
)

type evolveRequest struct {
	Type        string
	Population  int
	Generations int
	Seed        uint64
	Workers     int
	Elite       int
	Goal        float64
	TargetPath  string
}

type evolveResult struct {
	Best         json.RawMessage
	BestDistance float64
	Generations  int
	Evaluations  int
	SnapshotID   string
}

func runEvolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	profilePath := fs.String("profile", "", "optional evolve profile JSON path")
	typeName := fs.String("type", "Critter", "genome type to evolve")
	population := fs.Int("pop", 24, "population size")
	generations := fs.Int("gens", 12, "generation count")
	seed := fs.Uint64("seed", 1, "rng seed (0 seeds from the clock)")
	workers := fs.Int("workers", 4, "parallel evaluation workers")
	elite := fs.Int("elite", 0, "parents kept per generation (0 derives a quarter of the population)")
	goal := fs.Float64("goal", 0, "early-stop distance goal (0 disables)")
	targetPath := fs.String("target", "", "target genome file (empty draws a random target)")
	outPath := fs.String("out", "", "write the best genome to this file")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "edna.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultEvolveRequest(*profilePath)
	if err != nil {
		return err
	}
	if *profilePath == "" {
		req = evolveRequest{
			Type:        *typeName,
			Population:  *population,
			Generations: *generations,
			Seed:        *seed,
			Workers:     *workers,
			Elite:       *elite,
			Goal:        *goal,
			TargetPath:  *targetPath,
		}
	} else {
		overrideEvolveFlags(&req, setFlags, map[string]any{
			"type":    *typeName,
			"pop":     *population,
			"gens":    *generations,
			"seed":    *seed,
			"workers": *workers,
			"elite":   *elite,
			"goal":    *goal,
			"target":  *targetPath,
		})
	}
	if req.Population < 2 {
		return errors.New("population must be >= 2")
	}
	if req.Generations <= 0 {
		return errors.New("generations must be > 0")
	}
	if req.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if req.Elite == 0 {
		req.Elite = req.Population / 4
		if req.Elite < 1 {
			req.Elite = 1
		}
	}
	if req.Elite < 0 || req.Elite >= req.Population {
		return errors.New("elite must be >= 1 and smaller than the population")
	}
	if req.Goal < 0 {
		return errors.New("goal must be >= 0")
	}

	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}
	client, err := edna.New(clientOptions(req.Seed, *storeKind, *dbPath))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var target json.RawMessage
	if req.TargetPath != "" {
		target, err = readGenome(req.TargetPath)
	} else {
		target, err = client.RandomGenome(req.Type)
	}
	if err != nil {
		return err
	}

	result, err := evolve(ctx, client, os.Stdout, req, target)
	if err != nil {
		return err
	}

	fmt.Printf("evolve completed type=%s pop=%d gens=%d best_distance=%.6f evaluations=%s snapshot=%s\n",
		req.Type,
		req.Population,
		result.Generations,
		result.BestDistance,
		humanize.Comma(int64(result.Evaluations)),
		result.SnapshotID,
	)
	if *outPath != "" {
		if err := os.WriteFile(*outPath, result.Best, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", *outPath)
	}
	return nil
}

// evolve runs the demo loop: score everybody against the target, keep the
// closest genomes as parents, refill the rest with mutated crossings, and
// archive each generation's champion chained to the previous one.
func evolve(ctx context.Context, client *edna.Client, w io.Writer, req evolveRequest, target json.RawMessage) (evolveResult, error) {
	pop := make([]json.RawMessage, req.Population)
	for i := range pop {
		g, err := client.RandomGenome(req.Type)
		if err != nil {
			return evolveResult{}, err
		}
		pop[i] = g
	}

	// Parent picking draws from its own stream so evaluation order cannot
	// disturb the breeding sequence.
	sel := dice.NewFast(req.Seed)

	var res evolveResult
	prevBestID := ""
	for gen := 1; gen <= req.Generations; gen++ {
		dists, err := scorePopulation(ctx, client, req.Type, pop, target, req.Workers)
		if err != nil {
			return evolveResult{}, err
		}
		res.Evaluations += len(pop)

		order := rankByDistance(dists)
		best := order[0]
		fmt.Fprintf(w, "generation=%d best_distance=%.6f mean_distance=%.6f\n", gen, dists[best], meanDistance(dists))

		var parents []string
		if prevBestID != "" {
			parents = []string{prevBestID}
		}
		snap, err := client.SaveSnapshot(ctx, req.Type, pop[best], parents, gen)
		if err != nil {
			return evolveResult{}, err
		}
		prevBestID = snap.ID

		res.Best = pop[best]
		res.BestDistance = dists[best]
		res.Generations = gen
		res.SnapshotID = snap.ID

		if dists[best] == 0 || (req.Goal > 0 && dists[best] <= req.Goal) || gen == req.Generations {
			break
		}
		pop, err = breed(client, sel, req, pop, order)
		if err != nil {
			return evolveResult{}, err
		}
	}
	return res, nil
}

// scorePopulation computes the distance of every genome to the target,
// keeping the population order in the result.
func scorePopulation(ctx context.Context, client *edna.Client, typeName string, pop []json.RawMessage, target json.RawMessage, workers int) ([]float64, error) {
	dists := make([]float64, len(pop))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, payload := range pop {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			d, err := client.GenomeDistance(typeName, payload, target)
			if err != nil {
				return err
			}
			dists[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dists, nil
}

func rankByDistance(dists []float64) []int {
	order := make([]int, len(dists))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dists[order[a]] < dists[order[b]]
	})
	return order
}

func meanDistance(dists []float64) float64 {
	total := 0.0
	for _, d := range dists {
		total += d
	}
	return total / float64(len(dists))
}

func breed(client *edna.Client, sel dice.Roller, req evolveRequest, pop []json.RawMessage, order []int) ([]json.RawMessage, error) {
	next := make([]json.RawMessage, 0, req.Population)
	for _, idx := range order[:req.Elite] {
		next = append(next, pop[idx])
	}
	for len(next) < req.Population {
		lhs := pop[order[dice.Index(sel, req.Elite)]]
		rhs := pop[order[dice.Index(sel, req.Elite)]]
		child, err := client.CrossGenomes(req.Type, lhs, rhs)
		if err != nil {
			return nil, err
		}
		child, err = client.MutateGenome(req.Type, child)
		if err != nil {
			return nil, err
		}
		next = append(next, child)
	}
	return next, nil
}
