// Package biowire is the public entry point for composing and running
// step-synchronized reaction-network simulations.
package biowire

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"biowire/internal/compose"
	"biowire/internal/engine"
	"biowire/internal/model"
	"biowire/internal/storage"
)

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// ComposeSummary describes a composed network without running it.
type ComposeSummary struct {
	Processes []string
	Topology  model.Topology
	Initial   model.State
}

// Compose validates the configuration and reports the resulting process
// set, topology and merged initial state.
func Compose(config model.NetworkConfig) (ComposeSummary, error) {
	network, err := compose.New(config)
	if err != nil {
		return ComposeSummary{}, err
	}
	processes, err := network.BuildProcesses()
	if err != nil {
		return ComposeSummary{}, err
	}
	initial, err := network.InitialState()
	if err != nil {
		return ComposeSummary{}, err
	}

	names := make([]string, 0, len(processes))
	for name := range processes {
		names = append(names, name)
	}
	sort.Strings(names)

	return ComposeSummary{
		Processes: names,
		Topology:  network.BuildTopology(),
		Initial:   initial,
	}, nil
}

type RunRequest struct {
	Config model.NetworkConfig
	Steps  int
	// RunID defaults to a fresh UUID.
	RunID string
	// Overrides patch the merged initial state before the first step,
	// keyed by store name then variable id.
	Overrides map[string]map[string]float64
}

type RunSummary struct {
	RunID string
	Steps int
	Final model.State
}

// Run composes the network, simulates the requested number of steps and
// persists the run record plus its recorded state series.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	network, err := compose.New(req.Config)
	if err != nil {
		return RunSummary{}, err
	}
	processes, err := network.BuildProcesses()
	if err != nil {
		return RunSummary{}, err
	}
	initial, err := network.InitialState()
	if err != nil {
		return RunSummary{}, err
	}
	if err := applyOverrides(initial, req.Overrides); err != nil {
		return RunSummary{}, err
	}

	eng, err := engine.New(engine.Config{
		Processes: processes,
		Topology:  network.BuildTopology(),
		Initial:   initial,
		TimeStep:  commonTimeStep(req.Config),
	})
	if err != nil {
		return RunSummary{}, err
	}

	series, err := eng.Run(ctx, req.Steps)
	if err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	run := model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:           runID,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Steps:        req.Steps,
		Models:       network.ModelNames(),
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveSeries(ctx, runID, series); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{RunID: runID, Steps: req.Steps, Final: eng.State()}, nil
}

// Runs lists persisted runs ordered by creation time.
func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	return c.store.ListRuns(ctx)
}

// Series returns the recorded state series of one run.
func (c *Client) Series(ctx context.Context, runID string) ([]model.TimePoint, error) {
	series, ok, err := c.store.GetSeries(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return series, nil
}

func applyOverrides(state model.State, overrides map[string]map[string]float64) error {
	stores := make([]string, 0, len(overrides))
	for store := range overrides {
		stores = append(stores, store)
	}
	sort.Strings(stores)
	for _, store := range stores {
		snap, ok := state[store]
		if !ok {
			return fmt.Errorf("override references unknown store: %s", store)
		}
		for key, value := range overrides[store] {
			snap[key] = value
		}
	}
	return nil
}

// commonTimeStep picks the recording interval for run series. Models may
// declare differing internal steps; the largest one bounds a full sweep.
func commonTimeStep(config model.NetworkConfig) float64 {
	var step float64
	for _, cfg := range config.Models {
		if cfg.TimeStep > step {
			step = cfg.TimeStep
		}
	}
	if step == 0 {
		step = 1
	}
	return step
}
