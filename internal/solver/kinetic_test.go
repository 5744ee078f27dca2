package solver

import (
	"context"
	"math"
	"testing"

	"biowire/internal/model"
)

func transcriptionNetwork() model.ReactionNetwork {
	return model.ReactionNetwork{
		Species: []model.SpeciesInit{
			{ID: "dna_G", Initial: 1},
			{ID: "rna_T", Initial: 0},
		},
		Reactions: []model.Reaction{
			{Name: "transcription", Reactants: []string{"dna_G"}, Products: []string{"dna_G", "rna_T"}, Rate: 0.5},
		},
	}
}

func TestNewKineticValidation(t *testing.T) {
	cases := []struct {
		name    string
		network model.ReactionNetwork
	}{
		{"no species", model.ReactionNetwork{}},
		{"duplicate species", model.ReactionNetwork{
			Species: []model.SpeciesInit{{ID: "a"}, {ID: "a"}},
		}},
		{"unknown reactant", model.ReactionNetwork{
			Species:   []model.SpeciesInit{{ID: "a"}},
			Reactions: []model.Reaction{{Reactants: []string{"b"}, Rate: 1}},
		}},
		{"unknown product", model.ReactionNetwork{
			Species:   []model.SpeciesInit{{ID: "a"}},
			Reactions: []model.Reaction{{Products: []string{"b"}, Rate: 1}},
		}},
		{"negative rate", model.ReactionNetwork{
			Species:   []model.SpeciesInit{{ID: "a"}},
			Reactions: []model.Reaction{{Reactants: []string{"a"}, Rate: -1}},
		}},
	}
	for _, tc := range cases {
		if _, err := NewKinetic(tc.network); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestKineticQueries(t *testing.T) {
	k, err := NewKinetic(transcriptionNetwork())
	if err != nil {
		t.Fatalf("new kinetic: %v", err)
	}

	ids := k.SpeciesIDs()
	if len(ids) != 2 || ids[0] != "dna_G" || ids[1] != "rna_T" {
		t.Fatalf("unexpected species order: %v", ids)
	}

	initial := k.InitialState()
	if initial["dna_G"] != 1 || initial["rna_T"] != 0 {
		t.Fatalf("unexpected initial state: %+v", initial)
	}
}

func TestKineticStepMassAction(t *testing.T) {
	k, err := NewKinetic(transcriptionNetwork())
	if err != nil {
		t.Fatalf("new kinetic: %v", err)
	}

	result, err := k.Step(context.Background(), model.Snapshot{"dna_G": 2, "rna_T": 1}, 0.1)
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	// propensity = 0.5 * dna_G = 1.0; dna_G is catalytic, rna_T gains dt*1.
	if math.Abs(result.Rates["transcription"]-1.0) > 1e-12 {
		t.Fatalf("unexpected rate: %+v", result.Rates)
	}
	if math.Abs(result.Deltas["dna_G"]) > 1e-12 {
		t.Fatalf("expected catalytic dna_G delta 0, got %f", result.Deltas["dna_G"])
	}
	if math.Abs(result.Deltas["rna_T"]-0.1) > 1e-12 {
		t.Fatalf("expected rna_T delta 0.1, got %f", result.Deltas["rna_T"])
	}
	if math.Abs(result.Species["rna_T"]-1.1) > 1e-12 {
		t.Fatalf("expected rna_T 1.1, got %f", result.Species["rna_T"])
	}
}

func TestKineticStepErrors(t *testing.T) {
	k, err := NewKinetic(transcriptionNetwork())
	if err != nil {
		t.Fatalf("new kinetic: %v", err)
	}

	if _, err := k.Step(context.Background(), model.Snapshot{"dna_G": 1}, 0.1); err == nil {
		t.Fatal("expected error for missing species quantity")
	}
	if _, err := k.Step(context.Background(), k.InitialState(), 0); err == nil {
		t.Fatal("expected error for non-positive dt")
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := k.Step(cancelled, k.InitialState(), 0.1); err == nil {
		t.Fatal("expected context error")
	}
}
