// Package mapping provides the pure transforms that route one model's
// per-step deltas into another model's variable space.
package mapping

import (
	"fmt"

	"biowire/internal/model"
)

// Func is the mapping-function contract: a pure transform from one
// variable-keyed snapshot to another.
type Func = model.MapFunc

// KeyMissingError reports a species id expected by a vectorization step but
// absent from the supplied snapshot.
type KeyMissingError struct {
	Key string
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("snapshot is missing key %q", e.Key)
}

// VectorFrom flattens a snapshot into a dense vector ordered by keys. Every
// key must be present; absent keys fail rather than defaulting to zero.
func VectorFrom(keys []string, snap model.Snapshot) ([]float64, error) {
	vec := make([]float64, len(keys))
	for i, key := range keys {
		value, ok := snap[key]
		if !ok {
			return nil, &KeyMissingError{Key: key}
		}
		vec[i] = value
	}
	return vec, nil
}

// VectorTo expands a dense vector back into a snapshot keyed by keys.
func VectorTo(keys []string, vec []float64) (model.Snapshot, error) {
	if len(keys) != len(vec) {
		return nil, fmt.Errorf("vector length %d does not match %d keys", len(vec), len(keys))
	}
	snap := make(model.Snapshot, len(keys))
	for i, key := range keys {
		snap[key] = vec[i]
	}
	return snap, nil
}
