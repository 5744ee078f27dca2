package model

import "strings"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Snapshot is a point-in-time view of one store: variable id to quantity.
type Snapshot map[string]float64

// State maps store names to their current snapshots.
type State map[string]Snapshot

// MapFunc transforms one variable-keyed snapshot into another. It must be
// pure: no retained state, deterministic for a given input.
type MapFunc func(Snapshot) (Snapshot, error)

// StorePath identifies a shared store location as ordered namespace segments.
type StorePath []string

func (p StorePath) String() string {
	return strings.Join(p, "/")
}

func (p StorePath) Clone() StorePath {
	return append(StorePath(nil), p...)
}

// PortRule redirects a single variable on a port to a different store.
type PortRule struct {
	Key  string    `json:"key"`
	Path StorePath `json:"path"`
}

// PortMapping binds a process port to a store path. Remap entries route
// individual variables to other stores; they are merged in by topology
// editing and take precedence over Path for their key.
type PortMapping struct {
	Path  StorePath            `json:"path"`
	Remap map[string]StorePath `json:"remap,omitempty"`
}

func (m PortMapping) Clone() PortMapping {
	out := PortMapping{Path: m.Path.Clone()}
	if m.Remap != nil {
		out.Remap = make(map[string]StorePath, len(m.Remap))
		for key, path := range m.Remap {
			out.Remap[key] = path.Clone()
		}
	}
	return out
}

// Resolve returns the store path backing the given variable on this port.
func (m PortMapping) Resolve(key string) StorePath {
	if path, ok := m.Remap[key]; ok {
		return path
	}
	return m.Path
}

// Topology maps process name to port name to store binding.
type Topology map[string]map[string]PortMapping

func (t Topology) Clone() Topology {
	out := make(Topology, len(t))
	for process, ports := range t {
		cloned := make(map[string]PortMapping, len(ports))
		for port, mapping := range ports {
			cloned[port] = mapping.Clone()
		}
		out[process] = cloned
	}
	return out
}

// SpeciesInit declares one species of a reaction network with its initial
// quantity.
type SpeciesInit struct {
	ID      string  `json:"id" yaml:"id"`
	Initial float64 `json:"initial" yaml:"initial"`
}

// Reaction is a mass-action reaction. Reactants and products may repeat a
// species id to express stoichiometry above one.
type Reaction struct {
	Name      string   `json:"name,omitempty" yaml:"name,omitempty"`
	Reactants []string `json:"reactants" yaml:"reactants"`
	Products  []string `json:"products" yaml:"products"`
	Rate      float64  `json:"rate" yaml:"rate"`
}

// ReactionNetwork is the model definition consumed by the solver.
type ReactionNetwork struct {
	Species   []SpeciesInit `json:"species" yaml:"species"`
	Reactions []Reaction    `json:"reactions" yaml:"reactions"`
}

// ProjectionSpec declares a normalized indicator projection between two
// species subsets, resolved against the owning models' species lists when
// processes are built.
type ProjectionSpec struct {
	SourceSpecies []string `json:"source_species" yaml:"source_species"`
	TargetSpecies []string `json:"target_species" yaml:"target_species"`
}

// ModelConfig configures one named simulation component.
type ModelConfig struct {
	TimeStep float64         `json:"time_step" yaml:"time_step"`
	Network  ReactionNetwork `json:"network" yaml:"network"`
}

// ConnectionConfig declares a one-directional flow between two models.
// Exactly one of Map and Project must be set.
type ConnectionConfig struct {
	Source  string          `json:"source" yaml:"source"`
	Target  string          `json:"target" yaml:"target"`
	Map     MapFunc         `json:"-" yaml:"-"`
	Project *ProjectionSpec `json:"project,omitempty" yaml:"project,omitempty"`
}

// NetworkConfig is the full composer configuration.
type NetworkConfig struct {
	Models      map[string]ModelConfig `json:"models" yaml:"models"`
	Connections []ConnectionConfig     `json:"connections" yaml:"connections"`
}

// RunRecord describes one persisted simulation run.
type RunRecord struct {
	VersionedRecord
	ID           string   `json:"id"`
	CreatedAtUTC string   `json:"created_at_utc"`
	Steps        int      `json:"steps"`
	Models       []string `json:"models"`
}

// TimePoint is one recorded step of a run's shared state.
type TimePoint struct {
	Time  float64 `json:"time"`
	State State   `json:"state"`
}

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for key, value := range s {
		out[key] = value
	}
	return out
}

func (s State) Clone() State {
	out := make(State, len(s))
	for name, snap := range s {
		out[name] = snap.Clone()
	}
	return out
}
