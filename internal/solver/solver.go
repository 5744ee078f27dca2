// Package solver defines the reaction-network solver boundary. The composer
// treats a solver as an opaque stepping function plus two read-only queries;
// the built-in kinetic solver exists so compositions can run end-to-end.
package solver

import (
	"context"

	"biowire/internal/model"
)

// Result holds one step's solver outputs.
type Result struct {
	Species model.Snapshot
	Deltas  model.Snapshot
	Rates   model.Snapshot
}

// Solver advances one reaction network by a time step.
type Solver interface {
	// SpeciesIDs returns the model's ordered species identifiers.
	SpeciesIDs() []string
	// InitialState returns the model's initial quantities.
	InitialState() model.Snapshot
	// Step advances the given quantities by dt and reports the updated
	// quantities, the per-step deltas, and the reaction rates.
	Step(ctx context.Context, species model.Snapshot, dt float64) (Result, error)
}

// Factory builds a solver from a model definition.
type Factory func(network model.ReactionNetwork) (Solver, error)
