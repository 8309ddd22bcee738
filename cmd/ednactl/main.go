package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"edna/internal/genome"
	"edna/internal/sample"
	"edna/internal/settings"
	"edna/internal/storage"
	"edna/pkg/edna"
)

// Setting this in the environment routes every mutation and clamp event of
// the commands below to stderr.
const traceMutationsEnv = "EDNA_TRACE_MUTATIONS"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "types":
		return runTypes(ctx, args[1:])
	case "random":
		return runRandom(ctx, args[1:])
	case "mutate":
		return runMutate(ctx, args[1:])
	case "cross":
		return runCross(ctx, args[1:])
	case "distance":
		return runDistance(ctx, args[1:])
	case "check":
		return runCheck(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "field":
		return runField(ctx, args[1:])
	case "aggregate":
		return runAggregate(ctx, args[1:])
	case "evolve":
		return runEvolve(ctx, args[1:])
	case "archive":
		return runArchive(ctx, args[1:])
	case "config":
		return runConfig(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runTypes(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("types", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	for _, name := range genome.ListTypes() {
		fmt.Println(name)
	}
	return nil
}

func runRandom(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("random", flag.ContinueOnError)
	typeName := fs.String("type", "", "genome type")
	seed := fs.Uint64("seed", 0, "rng seed (0 seeds from the clock)")
	outPath := fs.String("out", "", "write the genome to this file instead of stdout")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typeName == "" {
		return errors.New("random requires --type")
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	client, err := edna.New(clientOptions(*seed, "", ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	payload, err := client.RandomGenome(*typeName)
	if err != nil {
		return err
	}
	return writeResult(*outPath, payload)
}

func runMutate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("mutate", flag.ContinueOnError)
	typeName := fs.String("type", "", "genome type")
	inPath := fs.String("in", "", "genome file to mutate")
	seed := fs.Uint64("seed", 0, "rng seed (0 seeds from the clock)")
	outPath := fs.String("out", "", "write the genome to this file instead of stdout")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typeName == "" {
		return errors.New("mutate requires --type")
	}
	if *inPath == "" {
		return errors.New("mutate requires --in")
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	payload, err := readGenome(*inPath)
	if err != nil {
		return err
	}
	client, err := edna.New(clientOptions(*seed, "", ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	mutated, err := client.MutateGenome(*typeName, payload)
	if err != nil {
		return err
	}
	return writeResult(*outPath, mutated)
}

func runCross(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("cross", flag.ContinueOnError)
	typeName := fs.String("type", "", "genome type")
	lhsPath := fs.String("lhs", "", "first parent genome file")
	rhsPath := fs.String("rhs", "", "second parent genome file")
	seed := fs.Uint64("seed", 0, "rng seed (0 seeds from the clock)")
	outPath := fs.String("out", "", "write the genome to this file instead of stdout")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typeName == "" {
		return errors.New("cross requires --type")
	}
	if *lhsPath == "" || *rhsPath == "" {
		return errors.New("cross requires --lhs and --rhs")
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	lhs, err := readGenome(*lhsPath)
	if err != nil {
		return err
	}
	rhs, err := readGenome(*rhsPath)
	if err != nil {
		return err
	}
	client, err := edna.New(clientOptions(*seed, "", ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	child, err := client.CrossGenomes(*typeName, lhs, rhs)
	if err != nil {
		return err
	}
	return writeResult(*outPath, child)
}

func runDistance(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("distance", flag.ContinueOnError)
	typeName := fs.String("type", "", "genome type")
	lhsPath := fs.String("lhs", "", "first genome file")
	rhsPath := fs.String("rhs", "", "second genome file")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typeName == "" {
		return errors.New("distance requires --type")
	}
	if *lhsPath == "" || *rhsPath == "" {
		return errors.New("distance requires --lhs and --rhs")
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	lhs, err := readGenome(*lhsPath)
	if err != nil {
		return err
	}
	rhs, err := readGenome(*rhsPath)
	if err != nil {
		return err
	}
	client, err := edna.New(clientOptions(0, "", ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	d, err := client.GenomeDistance(*typeName, lhs, rhs)
	if err != nil {
		return err
	}
	fmt.Printf("type=%s distance=%.6f\n", *typeName, d)
	return nil
}

func runCheck(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	typeName := fs.String("type", "", "genome type")
	inPath := fs.String("in", "", "genome file to check")
	outPath := fs.String("out", "", "write the checked genome to this file instead of stdout")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typeName == "" {
		return errors.New("check requires --type")
	}
	if *inPath == "" {
		return errors.New("check requires --in")
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	payload, err := readGenome(*inPath)
	if err != nil {
		return err
	}
	client, err := edna.New(clientOptions(0, "", ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	checked, ok, err := client.CheckGenome(*typeName, payload)
	if err != nil {
		return err
	}
	if err := writeResult(*outPath, checked); err != nil {
		return err
	}
	fmt.Printf("checked type=%s ok=%t\n", *typeName, ok)
	return nil
}

func runShow(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	typeName := fs.String("type", "", "genome type")
	inPath := fs.String("in", "", "genome file to show")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typeName == "" {
		return errors.New("show requires --type")
	}
	if *inPath == "" {
		return errors.New("show requires --in")
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	payload, err := readGenome(*inPath)
	if err != nil {
		return err
	}
	client, err := edna.New(clientOptions(0, "", ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	return client.ShowGenome(os.Stdout, *typeName, payload)
}

func runField(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("field", flag.ContinueOnError)
	typeName := fs.String("type", "", "genome type")
	inPath := fs.String("in", "", "genome file to read")
	fieldPath := fs.String("path", "", "field path, e.g. legs, span[1] or vision.acuity")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typeName == "" {
		return errors.New("field requires --type")
	}
	if *inPath == "" {
		return errors.New("field requires --in")
	}
	if *fieldPath == "" {
		return errors.New("field requires --path")
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	payload, err := readGenome(*inPath)
	if err != nil {
		return err
	}
	client, err := edna.New(clientOptions(0, "", ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	value, err := client.FieldValue(*typeName, payload, *fieldPath)
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runAggregate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ContinueOnError)
	typeName := fs.String("type", "", "genome type")
	level := fs.Int("level", 0, "detail level, higher samples more values per field")
	cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
	verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *typeName == "" {
		return errors.New("aggregate requires --type")
	}
	if fs.NArg() < 2 {
		return errors.New("aggregate requires at least 2 genome files")
	}
	if err := registerTypes(*cfgPath, *verbosityName); err != nil {
		return err
	}

	payloads, err := storage.LoadGenomeFiles(ctx, fs.Args())
	if err != nil {
		return err
	}
	client, err := edna.New(clientOptions(0, "", ""))
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	return client.AggregateGenomes(os.Stdout, *typeName, payloads, *level)
}

func runArchive(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("archive requires a subcommand: list|show|delete")
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("archive list", flag.ContinueOnError)
		typeFilter := fs.String("type", "", "only list snapshots of this genome type")
		limit := fs.Int("limit", 20, "max snapshots to list")
		jsonOut := fs.Bool("json", false, "emit snapshots as JSON")
		storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
		dbPath := fs.String("db-path", "edna.db", "sqlite database path")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *limit <= 0 {
			return errors.New("limit must be > 0")
		}

		client, err := edna.New(clientOptions(0, *storeKind, *dbPath))
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Close()
		}()

		snaps, err := client.ListSnapshots(ctx, *typeFilter)
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("no snapshots")
			return nil
		}
		if len(snaps) > *limit {
			snaps = snaps[:*limit]
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snaps)
		}

		for _, s := range snaps {
			fmt.Printf("id=%s type=%s generation=%d parents=%d size=%s created=%s\n",
				s.ID,
				s.Type,
				s.Generation,
				len(s.Parents),
				humanize.IBytes(uint64(len(s.Payload))),
				humanize.Time(s.CreatedAt),
			)
		}
		return nil
	case "show":
		fs := flag.NewFlagSet("archive show", flag.ContinueOnError)
		id := fs.String("id", "", "snapshot id")
		jsonOut := fs.Bool("json", false, "emit the snapshot as JSON")
		storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
		dbPath := fs.String("db-path", "edna.db", "sqlite database path")
		cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
		verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("archive show requires --id")
		}
		if err := registerTypes(*cfgPath, *verbosityName); err != nil {
			return err
		}

		client, err := edna.New(clientOptions(0, *storeKind, *dbPath))
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Close()
		}()

		snap, found, err := client.GetSnapshot(ctx, *id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("snapshot %s not found", *id)
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		fmt.Printf("id=%s type=%s generation=%d parents=%v created=%s\n",
			snap.ID,
			snap.Type,
			snap.Generation,
			snap.Parents,
			humanize.Time(snap.CreatedAt),
		)
		return client.ShowGenome(os.Stdout, snap.Type, snap.Payload)
	case "delete":
		fs := flag.NewFlagSet("archive delete", flag.ContinueOnError)
		id := fs.String("id", "", "snapshot id")
		storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
		dbPath := fs.String("db-path", "edna.db", "sqlite database path")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" {
			return errors.New("archive delete requires --id")
		}

		client, err := edna.New(clientOptions(0, *storeKind, *dbPath))
		if err != nil {
			return err
		}
		defer func() {
			_ = client.Close()
		}()

		if err := client.DeleteSnapshot(ctx, *id); err != nil {
			return err
		}
		fmt.Printf("snapshot deleted id=%s\n", *id)
		return nil
	default:
		return fmt.Errorf("unsupported archive subcommand: %s", args[0])
	}
}

func runConfig(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("config requires a subcommand: print|write")
	}
	switch args[0] {
	case "print":
		fs := flag.NewFlagSet("config print", flag.ContinueOnError)
		cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
		verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := registerTypes(*cfgPath, *verbosityName); err != nil {
			return err
		}
		return sample.Config().PrintTo(os.Stdout)
	case "write":
		fs := flag.NewFlagSet("config write", flag.ContinueOnError)
		outPath := fs.String("out", "", "target file or directory (empty writes the default location)")
		cfgPath := fs.String("config", "", "settings file path (auto for the default location, empty for built-in defaults)")
		verbosityName := fs.String("verbosity", "quiet", "settings chatter: quiet|show|paranoid")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := registerTypes(*cfgPath, *verbosityName); err != nil {
			return err
		}
		if err := sample.Config().WriteFile(*outPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", sample.Config().Path())
		return nil
	default:
		return fmt.Errorf("unsupported config subcommand: %s", args[0])
	}
}

// registerTypes publishes the demo genome types, loading their settings
// first so file and environment values reach the registries.
func registerTypes(configPath, verbosityName string) error {
	v, err := settings.ParseVerbosity(verbosityName)
	if err != nil {
		return err
	}
	return sample.Register(configPath, v)
}

func clientOptions(seed uint64, storeKind, storePath string) edna.Options {
	opts := edna.Options{Seed: seed, StoreKind: storeKind, StorePath: storePath}
	if os.Getenv(traceMutationsEnv) != "" {
		opts.TraceWriter = os.Stderr
	}
	return opts
}

func readGenome(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func writeResult(path string, payload json.RawMessage) error {
	if path == "" {
		return printPayload(payload)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// printPayload emits pretty JSON on a terminal and the compact form on a
// pipe.
func printPayload(payload json.RawMessage) error {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, payload, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	_, err := fmt.Println(string(payload))
	return err
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: ednactl <types|random|mutate|cross|distance|check|show|field|aggregate|evolve|archive|config> [flags]", msg)
}
