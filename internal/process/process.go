// Package process defines the schedulable units the composer wires together:
// model wrappers around a solver and one-way connectors between them.
// Processes never call each other; they only read and write shared stores
// routed by the network topology.
package process

import (
	"context"

	"biowire/internal/model"
)

// Updater selects how a port's per-step output merges into its store.
type Updater string

const (
	// UpdaterAccumulate adds the update to the store value per key.
	UpdaterAccumulate Updater = "accumulate"
	// UpdaterSet replaces the store contents with the update.
	UpdaterSet Updater = "set"
)

// PortKind distinguishes read from write ports.
type PortKind string

const (
	PortInput  PortKind = "input"
	PortOutput PortKind = "output"
)

// Port declares one named IO contract of a process.
type Port struct {
	Name    string
	Kind    PortKind
	Updater Updater
}

// Process is one step-synchronized unit of the simulation network. Step
// receives the current snapshots of its input ports and returns updates
// keyed by output port name.
type Process interface {
	Name() string
	Ports() []Port
	Step(ctx context.Context, inputs map[string]model.Snapshot) (map[string]model.Snapshot, error)
}

// Standard port names shared by the composer, the processes and the runtime.
const (
	PortSpecies      = "species"
	PortDeltaSpecies = "delta_species"
	PortRates        = "rates"
	PortSourceDeltas = "source_deltas"
	PortTargetState  = "target_state"
)
