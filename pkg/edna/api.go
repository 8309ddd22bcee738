package edna

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"edna/internal/dice"
	"edna/internal/genome"
	"edna/internal/model"
	"edna/internal/storage"
)

const defaultStorePath = "edna.db"

type Options struct {
	Seed      uint64
	StoreKind string
	StorePath string

	// TraceWriter, when set, receives the mutation and clamp events of every
	// genome type the client touches.
	TraceWriter io.Writer
}

type Client struct {
	store storage.Store
	dice  dice.Roller
	trace io.Writer
}

func New(opts Options) (*Client, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = dice.TimeSeed()
	}
	storePath := opts.StorePath
	if storePath == "" {
		storePath = defaultStorePath
	}

	store, err := storage.NewStore(opts.StoreKind, storePath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store: store,
		dice:  dice.NewAtomic(seed),
		trace: opts.TraceWriter,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Seed() uint64 {
	return c.dice.Seed()
}

func (c *Client) Types() []string {
	return genome.ListTypes()
}

func (c *Client) RandomGenome(typeName string) (json.RawMessage, error) {
	ops, err := c.resolve(typeName)
	if err != nil {
		return nil, err
	}
	return ops.Random(c.dice)
}

func (c *Client) MutateGenome(typeName string, payload json.RawMessage) (json.RawMessage, error) {
	ops, err := c.resolve(typeName)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, errors.New("genome payload is required")
	}
	return ops.Mutate(payload, c.dice)
}

func (c *Client) CrossGenomes(typeName string, lhs, rhs json.RawMessage) (json.RawMessage, error) {
	ops, err := c.resolve(typeName)
	if err != nil {
		return nil, err
	}
	if len(lhs) == 0 || len(rhs) == 0 {
		return nil, errors.New("crossover needs two genome payloads")
	}
	return ops.Cross(lhs, rhs, c.dice)
}

func (c *Client) GenomeDistance(typeName string, lhs, rhs json.RawMessage) (float64, error) {
	ops, err := c.resolve(typeName)
	if err != nil {
		return 0, err
	}
	if len(lhs) == 0 || len(rhs) == 0 {
		return 0, errors.New("distance needs two genome payloads")
	}
	return ops.Distance(lhs, rhs)
}

func (c *Client) CheckGenome(typeName string, payload json.RawMessage) (json.RawMessage, bool, error) {
	ops, err := c.resolve(typeName)
	if err != nil {
		return nil, false, err
	}
	if len(payload) == 0 {
		return nil, false, errors.New("genome payload is required")
	}
	return ops.Check(payload)
}

func (c *Client) ShowGenome(w io.Writer, typeName string, payload json.RawMessage) error {
	ops, err := c.resolve(typeName)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return errors.New("genome payload is required")
	}
	return ops.Show(w, payload)
}

func (c *Client) FieldValue(typeName string, payload json.RawMessage, path string) (string, error) {
	ops, err := c.resolve(typeName)
	if err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", errors.New("genome payload is required")
	}
	if path == "" {
		return "", errors.New("field path is required")
	}
	return ops.FieldValue(payload, path)
}

func (c *Client) AggregateGenomes(w io.Writer, typeName string, payloads []json.RawMessage, verbosity int) error {
	ops, err := c.resolve(typeName)
	if err != nil {
		return err
	}
	return ops.Aggregate(w, payloads, verbosity)
}

// SaveSnapshot bounds-checks the payload the way ToFile does and archives
// the checked form.
func (c *Client) SaveSnapshot(ctx context.Context, typeName string, payload json.RawMessage, parents []string, generation int) (model.Snapshot, error) {
	ops, err := c.resolve(typeName)
	if err != nil {
		return model.Snapshot{}, err
	}
	if len(payload) == 0 {
		return model.Snapshot{}, errors.New("genome payload is required")
	}
	if generation < 0 {
		return model.Snapshot{}, errors.New("generation must be >= 0")
	}
	checked, _, err := ops.Check(payload)
	if err != nil {
		return model.Snapshot{}, err
	}

	store, err := c.ensureStore(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	snapshot := storage.NewSnapshot(typeName, checked, parents, generation)
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		return model.Snapshot{}, err
	}
	return snapshot, nil
}

func (c *Client) GetSnapshot(ctx context.Context, id string) (model.Snapshot, bool, error) {
	if id == "" {
		return model.Snapshot{}, false, errors.New("snapshot id is required")
	}
	store, err := c.ensureStore(ctx)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	return store.GetSnapshot(ctx, id)
}

func (c *Client) ListSnapshots(ctx context.Context, typeName string) ([]model.Snapshot, error) {
	store, err := c.ensureStore(ctx)
	if err != nil {
		return nil, err
	}
	return store.ListSnapshots(ctx, typeName)
}

func (c *Client) DeleteSnapshot(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("snapshot id is required")
	}
	store, err := c.ensureStore(ctx)
	if err != nil {
		return err
	}
	return store.DeleteSnapshot(ctx, id)
}

func (c *Client) resolve(typeName string) (*genome.Ops, error) {
	if typeName == "" {
		return nil, errors.New("genome type is required")
	}
	ops, err := genome.LookupType(typeName)
	if err != nil {
		return nil, err
	}
	if c.trace != nil {
		ops.SetObserver(genome.Trace(c.trace))
	}
	return ops, nil
}

func (c *Client) ensureStore(ctx context.Context) (storage.Store, error) {
	if err := c.store.Init(ctx); err != nil {
		return nil, err
	}
	return c.store, nil
}
