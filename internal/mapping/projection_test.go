package mapping

import (
	"math"
	"testing"

	"biowire/internal/model"
)

func TestNormalize(t *testing.T) {
	vec, err := Normalize([]float64{1, 1, 2})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if vec[0] != 0.25 || vec[1] != 0.25 || vec[2] != 0.5 {
		t.Fatalf("unexpected weights: %v", vec)
	}
}

func TestNormalizeZeroSum(t *testing.T) {
	if _, err := Normalize([]float64{0, 0}); err == nil {
		t.Fatal("expected zero-sum error")
	}
}

func TestIndicator(t *testing.T) {
	vec := Indicator([]string{"dna_G", "rna_T", "rna"}, []string{"rna_T"})
	want := []float64{0, 1, 0}
	for i := range want {
		if vec[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, vec)
		}
	}
}

func TestOuter(t *testing.T) {
	m := Outer([]float64{1, 0}, []float64{0.5, 0.5})
	if m[0][0] != 0.5 || m[0][1] != 0.5 || m[1][0] != 0 || m[1][1] != 0 {
		t.Fatalf("unexpected outer product: %v", m)
	}
}

// A one-hot source projected through a column-normalized projection must
// distribute its full quantity across the targets.
func TestOneHotProjectionConservesMass(t *testing.T) {
	sourceKeys := []string{"dna_G", "rna_T"}
	targetKeys := []string{"dna_G", "rna_T", "rna"}

	fn, err := IndicatorProjection(sourceKeys, targetKeys, []string{"rna_T"}, []string{"rna_T", "rna"})
	if err != nil {
		t.Fatalf("indicator projection: %v", err)
	}

	out, err := fn(model.Snapshot{"dna_G": 0, "rna_T": 1})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	var total float64
	for _, v := range out {
		total += v
	}
	if math.Abs(total-1) > 1e-12 {
		t.Fatalf("expected projected distribution summing to 1, got %f (%+v)", total, out)
	}
	if math.Abs(out["rna_T"]-0.5) > 1e-12 || math.Abs(out["rna"]-0.5) > 1e-12 {
		t.Fatalf("expected even split across rna_T and rna, got %+v", out)
	}
}

func TestIndicatorProjectionRejectsEmptySelection(t *testing.T) {
	_, err := IndicatorProjection([]string{"a"}, []string{"b"}, []string{"missing"}, []string{"b"})
	if err == nil {
		t.Fatal("expected error for source selection matching no species")
	}
	_, err = IndicatorProjection([]string{"a"}, []string{"b"}, []string{"a"}, []string{"missing"})
	if err == nil {
		t.Fatal("expected error for target selection matching no species")
	}
}

func TestMulVecNonSquare(t *testing.T) {
	m := Matrix{
		{1, 0, 2},
		{0, 1, 0},
	}
	out, err := m.MulVec([]float64{3, 4})
	if err != nil {
		t.Fatalf("mulvec: %v", err)
	}
	want := []float64{3, 4, 6}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
}
