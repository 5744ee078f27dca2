package process

import (
	"context"
	"fmt"

	"biowire/internal/mapping"
	"biowire/internal/model"
)

// OneWay routes one model's per-step deltas into another model's input
// state through a mapping function. It holds no state across steps: the
// same source snapshot always produces the same target update.
//
// By convention the mapping's output is merged additively into the target
// species store, so mapping authors emit delta-shaped values unless the
// network deliberately overrides the merge semantics.
type OneWay struct {
	name       string
	sourceKeys []string
	targetKeys []string
	fn         mapping.Func
}

func NewOneWay(name string, sourceKeys, targetKeys []string, fn mapping.Func) (*OneWay, error) {
	if name == "" {
		return nil, fmt.Errorf("connector name is required")
	}
	if len(sourceKeys) == 0 {
		return nil, fmt.Errorf("connector %s: source keys are required", name)
	}
	if len(targetKeys) == 0 {
		return nil, fmt.Errorf("connector %s: target keys are required", name)
	}
	if fn == nil {
		return nil, fmt.Errorf("connector %s: mapping function is required", name)
	}
	return &OneWay{
		name:       name,
		sourceKeys: append([]string(nil), sourceKeys...),
		targetKeys: append([]string(nil), targetKeys...),
		fn:         fn,
	}, nil
}

func (c *OneWay) Name() string {
	return c.name
}

func (c *OneWay) SourceKeys() []string {
	return append([]string(nil), c.sourceKeys...)
}

func (c *OneWay) TargetKeys() []string {
	return append([]string(nil), c.targetKeys...)
}

func (c *OneWay) Ports() []Port {
	return []Port{
		{Name: PortSourceDeltas, Kind: PortInput},
		{Name: PortTargetState, Kind: PortOutput, Updater: UpdaterAccumulate},
	}
}

func (c *OneWay) Step(ctx context.Context, inputs map[string]model.Snapshot) (map[string]model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deltas, ok := inputs[PortSourceDeltas]
	if !ok {
		return nil, fmt.Errorf("connector %s: missing input port %s", c.name, PortSourceDeltas)
	}

	mapped, err := c.fn(deltas)
	if err != nil {
		// Mapping errors pass through unchanged so callers can match them.
		return nil, err
	}

	update := make(model.Snapshot, len(c.targetKeys))
	for _, key := range c.targetKeys {
		if value, ok := mapped[key]; ok {
			update[key] = value
		}
	}
	return map[string]model.Snapshot{PortTargetState: update}, nil
}
