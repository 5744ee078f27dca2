// Package engine is a minimal step-synchronized runtime for composed
// process networks. It owns the shared stores, routes port reads and writes
// through the topology, and orders process invocations so every store is
// written by its producer before same-step readers see it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"biowire/internal/model"
	"biowire/internal/process"
)

// Config assembles a runnable network from composer output.
type Config struct {
	Processes map[string]process.Process
	Topology  model.Topology
	Initial   model.State
	// TimeStep is the duration recorded per step in run series. Defaults
	// to 1 when unset.
	TimeStep float64
}

// Engine drives the network one synchronized step at a time. It is not safe
// for concurrent use; every store has exactly one replacing writer per step
// by construction, so no locking is needed inside a step.
type Engine struct {
	processes map[string]process.Process
	topology  model.Topology
	updaters  map[string]map[string]process.Updater
	order     []string
	stores    map[string]model.Snapshot
	timeStep  float64
	now       float64
}

func New(cfg Config) (*Engine, error) {
	if len(cfg.Processes) == 0 {
		return nil, errors.New("engine requires at least one process")
	}
	timeStep := cfg.TimeStep
	if timeStep == 0 {
		timeStep = 1
	}
	if timeStep < 0 {
		return nil, fmt.Errorf("time step must be positive, got %f", timeStep)
	}

	e := &Engine{
		processes: cfg.Processes,
		topology:  cfg.Topology.Clone(),
		updaters:  make(map[string]map[string]process.Updater, len(cfg.Processes)),
		stores:    make(map[string]model.Snapshot),
		timeStep:  timeStep,
	}
	for store, snap := range cfg.Initial {
		e.stores[store] = snap.Clone()
	}

	if err := e.validate(); err != nil {
		return nil, err
	}
	order, err := e.schedule()
	if err != nil {
		return nil, err
	}
	e.order = order
	return e, nil
}

// validate checks that every declared port is routed and that no store has
// more than one replacing writer per step.
func (e *Engine) validate() error {
	setWriters := make(map[string]string)
	for name, proc := range e.processes {
		ports, ok := e.topology[name]
		if !ok {
			return fmt.Errorf("process %s is missing from the topology", name)
		}
		updaters := make(map[string]process.Updater)
		for _, port := range proc.Ports() {
			binding, ok := ports[port.Name]
			if !ok {
				return fmt.Errorf("process %s port %s is not routed", name, port.Name)
			}
			if port.Kind != process.PortOutput {
				continue
			}
			updaters[port.Name] = port.Updater
			if port.Updater != process.UpdaterSet {
				continue
			}
			store := binding.Path.String()
			if owner, claimed := setWriters[store]; claimed && owner != name {
				return fmt.Errorf("store %s has two replacing writers: %s and %s", store, owner, name)
			}
			setWriters[store] = name
		}
		e.updaters[name] = updaters
	}
	return nil
}

// schedule orders processes so that replace-written stores are produced
// before any same-step reader runs. Accumulated writes become visible next
// step and impose no ordering.
func (e *Engine) schedule() ([]string, error) {
	names := make([]string, 0, len(e.processes))
	for name := range e.processes {
		names = append(names, name)
	}
	sort.Strings(names)

	producers := make(map[string][]string)
	for _, name := range names {
		for _, port := range e.processes[name].Ports() {
			if port.Kind == process.PortOutput && port.Updater == process.UpdaterSet {
				store := e.topology[name][port.Name].Path.String()
				producers[store] = append(producers[store], name)
			}
		}
	}

	deps := make(map[string]map[string]struct{}, len(names))
	for _, name := range names {
		deps[name] = make(map[string]struct{})
		for _, port := range e.processes[name].Ports() {
			if port.Kind != process.PortInput {
				continue
			}
			binding := e.topology[name][port.Name]
			stores := []string{binding.Path.String()}
			for _, path := range binding.Remap {
				stores = append(stores, path.String())
			}
			for _, store := range stores {
				for _, producer := range producers[store] {
					if producer != name {
						deps[name][producer] = struct{}{}
					}
				}
			}
		}
	}

	// Round-based so that a whole dependency level finishes before the
	// next begins: all models produce deltas before any connector reads.
	order := make([]string, 0, len(names))
	done := make(map[string]struct{}, len(names))
	for len(order) < len(names) {
		var round []string
		for _, name := range names {
			if _, finished := done[name]; finished {
				continue
			}
			ready := true
			for dep := range deps[name] {
				if _, finished := done[dep]; !finished {
					ready = false
					break
				}
			}
			if ready {
				round = append(round, name)
			}
		}
		if len(round) == 0 {
			return nil, fmt.Errorf("cyclic same-step store dependencies among processes")
		}
		for _, name := range round {
			done[name] = struct{}{}
		}
		order = append(order, round...)
	}
	return order, nil
}

// Step invokes every process once in dependency order. A failing process is
// skipped without touching its stores; the remaining processes still run,
// and the joined errors propagate to the caller.
func (e *Engine) Step(ctx context.Context) error {
	var errs []error
	for _, name := range e.order {
		proc := e.processes[name]
		inputs := e.gatherInputs(name, proc)
		updates, err := proc.Step(ctx, inputs)
		if err != nil {
			errs = append(errs, fmt.Errorf("process %s: %w", name, err))
			continue
		}
		e.applyUpdates(name, updates)
	}
	e.now += e.timeStep
	return errors.Join(errs...)
}

func (e *Engine) gatherInputs(name string, proc process.Process) map[string]model.Snapshot {
	inputs := make(map[string]model.Snapshot)
	for _, port := range proc.Ports() {
		if port.Kind != process.PortInput {
			continue
		}
		binding := e.topology[name][port.Name]
		snap := e.stores[binding.Path.String()].Clone()
		for key, path := range binding.Remap {
			if value, ok := e.stores[path.String()][key]; ok {
				snap[key] = value
			} else {
				delete(snap, key)
			}
		}
		inputs[port.Name] = snap
	}
	return inputs
}

func (e *Engine) applyUpdates(name string, updates map[string]model.Snapshot) {
	ports := make([]string, 0, len(updates))
	for port := range updates {
		ports = append(ports, port)
	}
	sort.Strings(ports)

	for _, portName := range ports {
		update := updates[portName]
		updater, declared := e.updaters[name][portName]
		if !declared {
			continue
		}
		binding := e.topology[name][portName]
		mainStore := binding.Path.String()

		if updater == process.UpdaterSet {
			// Replace the main store's contents; remapped keys land in
			// their own stores without clobbering foreign state.
			replaced := make(model.Snapshot, len(update))
			for key, value := range update {
				if path, remapped := binding.Remap[key]; remapped {
					e.setValue(path.String(), key, value)
					continue
				}
				replaced[key] = value
			}
			e.stores[mainStore] = replaced
			continue
		}

		for _, key := range sortedKeys(update) {
			store := mainStore
			if path, remapped := binding.Remap[key]; remapped {
				store = path.String()
			}
			e.addValue(store, key, update[key])
		}
	}
}

func (e *Engine) setValue(store, key string, value float64) {
	snap, ok := e.stores[store]
	if !ok {
		snap = make(model.Snapshot)
		e.stores[store] = snap
	}
	snap[key] = value
}

func (e *Engine) addValue(store, key string, value float64) {
	snap, ok := e.stores[store]
	if !ok {
		snap = make(model.Snapshot)
		e.stores[store] = snap
	}
	snap[key] += value
}

// Run advances the network the given number of steps, recording the shared
// state after each one.
func (e *Engine) Run(ctx context.Context, steps int) ([]model.TimePoint, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("step count must be positive, got %d", steps)
	}
	series := make([]model.TimePoint, 0, steps+1)
	series = append(series, model.TimePoint{Time: e.now, State: e.State()})
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return series, err
		}
		if err := e.Step(ctx); err != nil {
			return series, err
		}
		series = append(series, model.TimePoint{Time: e.now, State: e.State()})
	}
	return series, nil
}

// State returns a copy of every store's current contents.
func (e *Engine) State() model.State {
	out := make(model.State, len(e.stores))
	for store, snap := range e.stores {
		out[store] = snap.Clone()
	}
	return out
}

// Now reports the simulated time advanced so far.
func (e *Engine) Now() float64 {
	return e.now
}

func sortedKeys(snap model.Snapshot) []string {
	keys := make([]string, 0, len(snap))
	for key := range snap {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
