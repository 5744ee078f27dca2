package process

import (
	"context"
	"fmt"

	"biowire/internal/model"
	"biowire/internal/solver"
)

// Model wraps one solver instance as a schedulable process. Each step it
// reads its species store, advances the solver by its time step, and emits
// species deltas (accumulated into the species store), the delta snapshot
// and the reaction rates.
type Model struct {
	name     string
	timeStep float64
	solver   solver.Solver
}

func NewModel(name string, timeStep float64, s solver.Solver) (*Model, error) {
	if name == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if timeStep <= 0 {
		return nil, fmt.Errorf("model %s: time step must be positive, got %f", name, timeStep)
	}
	if s == nil {
		return nil, fmt.Errorf("model %s: solver is required", name)
	}
	return &Model{name: name, timeStep: timeStep, solver: s}, nil
}

func (m *Model) Name() string {
	return m.name
}

func (m *Model) TimeStep() float64 {
	return m.timeStep
}

// SpeciesIDs queries the solver's ordered species list. The list is derived
// fresh on every call, never cached.
func (m *Model) SpeciesIDs() []string {
	return m.solver.SpeciesIDs()
}

// InitialState queries the solver's initial quantities.
func (m *Model) InitialState() model.Snapshot {
	return m.solver.InitialState()
}

func (m *Model) Ports() []Port {
	return []Port{
		{Name: PortSpecies, Kind: PortInput},
		{Name: PortSpecies, Kind: PortOutput, Updater: UpdaterAccumulate},
		{Name: PortDeltaSpecies, Kind: PortOutput, Updater: UpdaterSet},
		{Name: PortRates, Kind: PortOutput, Updater: UpdaterSet},
	}
}

func (m *Model) Step(ctx context.Context, inputs map[string]model.Snapshot) (map[string]model.Snapshot, error) {
	species, ok := inputs[PortSpecies]
	if !ok {
		return nil, fmt.Errorf("model %s: missing input port %s", m.name, PortSpecies)
	}

	result, err := m.solver.Step(ctx, species, m.timeStep)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.name, err)
	}

	// The species update is the delta snapshot; the runtime accumulates it
	// so connector contributions merged into the same store are preserved.
	return map[string]model.Snapshot{
		PortSpecies:      result.Deltas,
		PortDeltaSpecies: result.Deltas,
		PortRates:        result.Rates,
	}, nil
}
