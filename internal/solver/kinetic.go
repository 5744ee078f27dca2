package solver

import (
	"context"
	"fmt"

	"biowire/internal/mapping"
	"biowire/internal/model"
)

// Kinetic is a deterministic mass-action solver using explicit Euler
// integration. Reaction propensity is the rate constant times the product of
// reactant quantities, with stoichiometry expressed by repetition.
type Kinetic struct {
	network model.ReactionNetwork
	species []string
}

// NewKinetic validates a reaction network and builds a solver for it.
func NewKinetic(network model.ReactionNetwork) (*Kinetic, error) {
	if len(network.Species) == 0 {
		return nil, fmt.Errorf("reaction network declares no species")
	}
	ids := make([]string, 0, len(network.Species))
	known := make(map[string]struct{}, len(network.Species))
	for _, sp := range network.Species {
		if sp.ID == "" {
			return nil, fmt.Errorf("species id is required")
		}
		if _, exists := known[sp.ID]; exists {
			return nil, fmt.Errorf("duplicate species id: %s", sp.ID)
		}
		known[sp.ID] = struct{}{}
		ids = append(ids, sp.ID)
	}
	for i, reaction := range network.Reactions {
		if reaction.Rate < 0 {
			return nil, fmt.Errorf("reaction %s has negative rate", reactionName(reaction, i))
		}
		for _, id := range reaction.Reactants {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("reaction %s references unknown reactant: %s", reactionName(reaction, i), id)
			}
		}
		for _, id := range reaction.Products {
			if _, ok := known[id]; !ok {
				return nil, fmt.Errorf("reaction %s references unknown product: %s", reactionName(reaction, i), id)
			}
		}
	}
	return &Kinetic{network: network, species: ids}, nil
}

func (k *Kinetic) SpeciesIDs() []string {
	return append([]string(nil), k.species...)
}

func (k *Kinetic) InitialState() model.Snapshot {
	initial := make(model.Snapshot, len(k.network.Species))
	for _, sp := range k.network.Species {
		initial[sp.ID] = sp.Initial
	}
	return initial
}

func (k *Kinetic) Step(ctx context.Context, species model.Snapshot, dt float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if dt <= 0 {
		return Result{}, fmt.Errorf("time step must be positive, got %f", dt)
	}

	current, err := mapping.VectorFrom(k.species, species)
	if err != nil {
		return Result{}, err
	}
	index := make(map[string]int, len(k.species))
	for i, id := range k.species {
		index[id] = i
	}

	deltas := make([]float64, len(current))
	rates := make(model.Snapshot, len(k.network.Reactions))
	for i, reaction := range k.network.Reactions {
		propensity := reaction.Rate
		for _, id := range reaction.Reactants {
			propensity *= current[index[id]]
		}
		rates[reactionName(reaction, i)] = propensity
		for _, id := range reaction.Reactants {
			deltas[index[id]] -= propensity * dt
		}
		for _, id := range reaction.Products {
			deltas[index[id]] += propensity * dt
		}
	}

	updated := make([]float64, len(current))
	for i := range current {
		updated[i] = current[i] + deltas[i]
	}

	speciesOut, err := mapping.VectorTo(k.species, updated)
	if err != nil {
		return Result{}, err
	}
	deltasOut, err := mapping.VectorTo(k.species, deltas)
	if err != nil {
		return Result{}, err
	}
	return Result{Species: speciesOut, Deltas: deltasOut, Rates: rates}, nil
}

func reactionName(reaction model.Reaction, i int) string {
	if reaction.Name != "" {
		return reaction.Name
	}
	return fmt.Sprintf("r%d", i)
}
