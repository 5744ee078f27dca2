package mapping

import (
	"fmt"

	"biowire/internal/model"
)

// Matrix is a dense projection matrix: rows index source variables, columns
// index target variables. It need not be square or invertible.
type Matrix [][]float64

// NewMatrix allocates a zero matrix with the given dimensions.
func NewMatrix(rows, cols int) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("matrix dimensions must be positive, got %dx%d", rows, cols)
	}
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m, nil
}

// MulVec computes x * m for a row vector x of length rows(m).
func (m Matrix) MulVec(x []float64) ([]float64, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("matrix is empty")
	}
	if len(x) != len(m) {
		return nil, fmt.Errorf("vector length %d does not match %d matrix rows", len(x), len(m))
	}
	out := make([]float64, len(m[0]))
	for i, row := range m {
		if len(row) != len(out) {
			return nil, fmt.Errorf("ragged matrix row %d", i)
		}
		for j, w := range row {
			out[j] += x[i] * w
		}
	}
	return out, nil
}

// Outer builds the outer product a ⊗ b.
func Outer(a, b []float64) Matrix {
	m := make(Matrix, len(a))
	for i := range a {
		row := make([]float64, len(b))
		for j := range b {
			row[j] = a[i] * b[j]
		}
		m[i] = row
	}
	return m
}

// Indicator builds a 0/1 vector over keys selecting the members of include.
func Indicator(keys []string, include []string) []float64 {
	selected := make(map[string]struct{}, len(include))
	for _, key := range include {
		selected[key] = struct{}{}
	}
	vec := make([]float64, len(keys))
	for i, key := range keys {
		if _, ok := selected[key]; ok {
			vec[i] = 1
		}
	}
	return vec
}

// Normalize scales a vector so its entries sum to one. A zero-sum vector is
// a caller error: the resulting weights would be degenerate.
func Normalize(vec []float64) ([]float64, error) {
	var sum float64
	for _, v := range vec {
		sum += v
	}
	if sum == 0 {
		return nil, fmt.Errorf("cannot normalize zero-sum vector")
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v / sum
	}
	return out, nil
}

// Linear builds a mapping function that flattens the source snapshot by
// sourceKeys, multiplies through m, and expands the result over targetKeys.
func Linear(sourceKeys, targetKeys []string, m Matrix) (Func, error) {
	if len(m) != len(sourceKeys) {
		return nil, fmt.Errorf("projection has %d rows, want %d source keys", len(m), len(sourceKeys))
	}
	for i, row := range m {
		if len(row) != len(targetKeys) {
			return nil, fmt.Errorf("projection row %d has %d columns, want %d target keys", i, len(row), len(targetKeys))
		}
	}
	src := append([]string(nil), sourceKeys...)
	dst := append([]string(nil), targetKeys...)

	return func(snap model.Snapshot) (model.Snapshot, error) {
		vec, err := VectorFrom(src, snap)
		if err != nil {
			return nil, err
		}
		projected, err := m.MulVec(vec)
		if err != nil {
			return nil, err
		}
		return VectorTo(dst, projected)
	}, nil
}

// IndicatorProjection builds the normalized outer-product projection that
// redistributes quantity from the selected source species onto the selected
// target species, then wraps it as a mapping function.
func IndicatorProjection(sourceKeys, targetKeys, sourceSpecies, targetSpecies []string) (Func, error) {
	source, err := Normalize(Indicator(sourceKeys, sourceSpecies))
	if err != nil {
		return nil, fmt.Errorf("source selection %v matches no species: %w", sourceSpecies, err)
	}
	target, err := Normalize(Indicator(targetKeys, targetSpecies))
	if err != nil {
		return nil, fmt.Errorf("target selection %v matches no species: %w", targetSpecies, err)
	}
	return Linear(sourceKeys, targetKeys, Outer(source, target))
}
