package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"biowire/internal/model"
	"biowire/internal/storage"
	"biowire/pkg/biowire"
)

const defaultDBPath = "biowire.db"

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
	case "topology":
		return runTopology(ctx, args[1:])
	case "initial-state":
		return runInitialState(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "series":
		return runSeries(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return errors.New(msg + "\nusage: biowirectl <topology|initial-state|run|runs|series> [flags]")
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath *string, err error) {
	defaults, err := loadEnvDefaults()
	if err != nil {
		return nil, nil, err
	}
	kind := defaults.Store
	if kind == "" {
		kind = storage.DefaultStoreKind()
	}
	storeKind = fs.String("store", kind, "store backend: memory|sqlite")
	dbPath = fs.String("db-path", defaults.DBPath, "sqlite database path")
	return storeKind, dbPath, nil
}

func runTopology(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("topology", flag.ContinueOnError)
	configPath := fs.String("config", "", "network configuration file (yaml or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("topology requires -config")
	}

	config, err := loadNetworkConfig(*configPath)
	if err != nil {
		return err
	}
	summary, err := biowire.Compose(config)
	if err != nil {
		return err
	}

	fmt.Println("PROCESSES:")
	for _, name := range summary.Processes {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("TOPOLOGY:")
	printTopology(summary.Topology)
	fmt.Println("INITIAL STATE:")
	printState(summary.Initial)
	return nil
}

func runInitialState(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("initial-state", flag.ContinueOnError)
	configPath := fs.String("config", "", "network configuration file (yaml or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("initial-state requires -config")
	}

	config, err := loadNetworkConfig(*configPath)
	if err != nil {
		return err
	}
	summary, err := biowire.Compose(config)
	if err != nil {
		return err
	}
	printState(summary.Initial)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "network configuration file (yaml or json)")
	steps := fs.Int("steps", 100, "number of synchronized steps")
	runID := fs.String("run-id", "", "run identifier (generated when empty)")
	overrides := overrideFlags{}
	fs.Var(overrides, "set", "initial-state override store/key=value (repeatable)")
	storeKind, dbPath, err := storeFlags(fs)
	if err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("run requires -config")
	}

	config, err := loadNetworkConfig(*configPath)
	if err != nil {
		return err
	}

	client, err := biowire.NewClient(ctx, biowire.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, biowire.RunRequest{
		Config:    config,
		Steps:     *steps,
		RunID:     *runID,
		Overrides: overrides,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished after %d steps\n", summary.RunID, summary.Steps)
	fmt.Println("FINAL STATE:")
	printState(summary.Final)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath, err := storeFlags(fs)
	if err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := biowire.NewClient(ctx, biowire.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Printf("%s  created=%s steps=%d models=%v\n", run.ID, run.CreatedAtUTC, run.Steps, run.Models)
	}
	return nil
}

func runSeries(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("series", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run identifier")
	storeKind, dbPath, err := storeFlags(fs)
	if err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("series requires -run-id")
	}

	client, err := biowire.NewClient(ctx, biowire.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	series, err := client.Series(ctx, *runID)
	if err != nil {
		return err
	}
	for _, point := range series {
		fmt.Printf("t=%g\n", point.Time)
		printState(point.State)
	}
	return nil
}

func printTopology(topology model.Topology) {
	processes := make([]string, 0, len(topology))
	for name := range topology {
		processes = append(processes, name)
	}
	sort.Strings(processes)
	for _, name := range processes {
		fmt.Printf("  %s:\n", name)
		ports := make([]string, 0, len(topology[name]))
		for port := range topology[name] {
			ports = append(ports, port)
		}
		sort.Strings(ports)
		for _, port := range ports {
			binding := topology[name][port]
			fmt.Printf("    %s -> %s\n", port, binding.Path)
			keys := make([]string, 0, len(binding.Remap))
			for key := range binding.Remap {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Printf("      %s -> %s\n", key, binding.Remap[key])
			}
		}
	}
}

func printState(state model.State) {
	stores := make([]string, 0, len(state))
	for store := range state {
		stores = append(stores, store)
	}
	sort.Strings(stores)
	for _, store := range stores {
		fmt.Printf("  %s:\n", store)
		keys := make([]string, 0, len(state[store]))
		for key := range state[store] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("    %s = %g\n", key, state[store][key])
		}
	}
}
