// Package compose builds a step-synchronized simulation network from a
// declarative configuration: one wrapper process per model, one connector
// per declared connection, a topology routing every process port to a
// namespaced shared store, and a merged initial state.
package compose

import (
	"fmt"
	"sort"

	"biowire/internal/mapping"
	"biowire/internal/model"
	"biowire/internal/process"
	"biowire/internal/solver"
)

// Option adjusts network construction.
type Option func(*Network)

// WithSolverFactory replaces the built-in kinetic solver factory.
func WithSolverFactory(factory solver.Factory) Option {
	return func(n *Network) {
		n.factory = factory
	}
}

// Network is the composed process network. Configuration is validated
// eagerly at construction; after BuildProcesses the model and connection
// set is immutable. AddModel and AddConnection return rebuilt copies.
type Network struct {
	config  model.NetworkConfig
	factory solver.Factory

	modelNames []string
	solvers    map[string]solver.Solver
	topology   model.Topology

	built      bool
	models     map[string]*process.Model
	connectors map[string]*process.OneWay
}

// New validates the configuration and materializes the topology. Any
// reference to an unregistered model, duplicate ordered (source, target)
// pair, colliding store namespace or unbuildable solver fails here with
// ErrConfig, before any simulation step can run.
func New(config model.NetworkConfig, opts ...Option) (*Network, error) {
	n := &Network{
		config: cloneConfig(config),
		factory: func(network model.ReactionNetwork) (solver.Solver, error) {
			return solver.NewKinetic(network)
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.factory == nil {
		return nil, configErrorf("solver factory is required")
	}

	if err := n.validate(); err != nil {
		return nil, err
	}
	n.topology = n.initialTopology()
	return n, nil
}

func (n *Network) validate() error {
	names := make([]string, 0, len(n.config.Models))
	for name := range n.config.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	n.modelNames = names

	n.solvers = make(map[string]solver.Solver, len(names))
	stores := make(map[string]string, len(names)*3)
	for _, name := range names {
		if err := validateName("model", name); err != nil {
			return err
		}
		cfg := n.config.Models[name]
		if cfg.TimeStep <= 0 {
			return configErrorf("model %s: time step must be positive, got %f", name, cfg.TimeStep)
		}
		s, err := n.factory(cfg.Network)
		if err != nil {
			return configErrorf("model %s: %v", name, err)
		}
		n.solvers[name] = s

		for _, suffix := range []string{suffixSpecies, suffixDeltas, suffixRates} {
			store := storePath(name, suffix).String()
			if owner, exists := stores[store]; exists {
				return configErrorf("store path %s of model %s collides with model %s", store, name, owner)
			}
			stores[store] = name
		}
	}

	seen := make(map[string]struct{}, len(n.config.Connections))
	for _, conn := range n.config.Connections {
		if _, ok := n.config.Models[conn.Source]; !ok {
			return configErrorf("connection references unregistered source model: %s", conn.Source)
		}
		if _, ok := n.config.Models[conn.Target]; !ok {
			return configErrorf("connection references unregistered target model: %s", conn.Target)
		}
		key := ConnectorKey(conn.Source, conn.Target)
		if _, dup := seen[key]; dup {
			return configErrorf("duplicate connection %s -> %s", conn.Source, conn.Target)
		}
		seen[key] = struct{}{}
		if _, clash := n.config.Models[key]; clash {
			return configErrorf("connector key %s collides with a model name", key)
		}
		if conn.Map == nil && conn.Project == nil {
			return configErrorf("connection %s -> %s declares no mapping", conn.Source, conn.Target)
		}
		if conn.Map != nil && conn.Project != nil {
			return configErrorf("connection %s -> %s declares both a map and a projection", conn.Source, conn.Target)
		}
	}
	return nil
}

func (n *Network) initialTopology() model.Topology {
	topology := make(model.Topology, len(n.modelNames)+len(n.config.Connections))
	for _, name := range n.modelNames {
		topology[name] = map[string]model.PortMapping{
			process.PortSpecies:      {Path: storePath(name, suffixSpecies)},
			process.PortDeltaSpecies: {Path: storePath(name, suffixDeltas)},
			process.PortRates:        {Path: storePath(name, suffixRates)},
		}
	}
	for _, conn := range n.config.Connections {
		topology[ConnectorKey(conn.Source, conn.Target)] = map[string]model.PortMapping{
			process.PortSourceDeltas: {Path: storePath(conn.Source, suffixDeltas)},
			process.PortTargetState:  {Path: storePath(conn.Target, suffixSpecies)},
		}
	}
	return topology
}

// ModelNames lists the registered model names in sorted order.
func (n *Network) ModelNames() []string {
	return append([]string(nil), n.modelNames...)
}

// BuildProcesses instantiates one model process per configured model and
// one connector per configured connection, keyed by process name. Connector
// key spaces are resolved fresh from the owning models' species lists on
// every call.
func (n *Network) BuildProcesses() (map[string]process.Process, error) {
	models := make(map[string]*process.Model, len(n.modelNames))
	for _, name := range n.modelNames {
		cfg := n.config.Models[name]
		m, err := process.NewModel(name, cfg.TimeStep, n.solvers[name])
		if err != nil {
			return nil, configErrorf("model %s: %v", name, err)
		}
		models[name] = m
	}

	connectors := make(map[string]*process.OneWay, len(n.config.Connections))
	for _, conn := range n.config.Connections {
		sourceKeys := models[conn.Source].SpeciesIDs()
		targetKeys := models[conn.Target].SpeciesIDs()

		fn := conn.Map
		if fn == nil {
			built, err := mapping.IndicatorProjection(sourceKeys, targetKeys, conn.Project.SourceSpecies, conn.Project.TargetSpecies)
			if err != nil {
				return nil, configErrorf("connection %s -> %s: %v", conn.Source, conn.Target, err)
			}
			fn = built
		}

		key := ConnectorKey(conn.Source, conn.Target)
		connector, err := process.NewOneWay(key, sourceKeys, targetKeys, fn)
		if err != nil {
			return nil, configErrorf("connection %s -> %s: %v", conn.Source, conn.Target, err)
		}
		connectors[key] = connector
	}

	n.models = models
	n.connectors = connectors
	n.built = true

	processes := make(map[string]process.Process, len(models)+len(connectors))
	for name, m := range models {
		processes[name] = m
	}
	for name, c := range connectors {
		processes[name] = c
	}
	return processes, nil
}

// BuildTopology returns the network topology. It is a pure function of the
// configuration plus any topology edits; callers may invoke it repeatedly
// and mutate the result freely.
func (n *Network) BuildTopology() model.Topology {
	return n.topology.Clone()
}

// InitialState merges every model's initial quantities into its namespaced
// species store. Processes are built on first use if the caller has not
// already done so. Overlapping leaf keys across namespaces indicate a
// configuration bug and fail rather than silently overwriting.
func (n *Network) InitialState() (model.State, error) {
	if !n.built {
		if _, err := n.BuildProcesses(); err != nil {
			return nil, err
		}
	}

	state := make(model.State, len(n.modelNames))
	for _, name := range n.modelNames {
		store := storePath(name, suffixSpecies).String()
		if err := mergeSnapshot(state, store, n.models[name].InitialState()); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// AddModel returns a new network whose configuration additionally holds the
// named model. The receiver is left untouched.
func (n *Network) AddModel(name string, cfg model.ModelConfig) (*Network, error) {
	config := cloneConfig(n.config)
	if _, exists := config.Models[name]; exists {
		return nil, configErrorf("model already registered: %s", name)
	}
	if config.Models == nil {
		config.Models = make(map[string]model.ModelConfig, 1)
	}
	config.Models[name] = cfg
	return New(config, WithSolverFactory(n.factory))
}

// AddConnection returns a new network with the connection appended. The
// receiver is left untouched.
func (n *Network) AddConnection(conn model.ConnectionConfig) (*Network, error) {
	config := cloneConfig(n.config)
	config.Connections = append(config.Connections, conn)
	return New(config, WithSolverFactory(n.factory))
}

// AddMappings applies a batch of per-port store redirections. Either pass a
// prebuilt plan keyed by process then port, or name a single model with its
// species/rates rules; passing both is ambiguous and fails.
func (n *Network) AddMappings(plan map[string]map[string][]model.PortRule, modelName string, species, rates []model.PortRule) error {
	if plan != nil && modelName != "" {
		return configErrorf("plan and model arguments conflict for %s", modelName)
	}
	if plan == nil {
		if modelName == "" {
			return configErrorf("add mappings requires a plan or a model name")
		}
		plan = map[string]map[string][]model.PortRule{modelName: {}}
		if len(species) > 0 {
			plan[modelName][process.PortSpecies] = species
		}
		if len(rates) > 0 {
			plan[modelName][process.PortRates] = rates
		}
	}

	procs := make([]string, 0, len(plan))
	for name := range plan {
		procs = append(procs, name)
	}
	sort.Strings(procs)
	for _, proc := range procs {
		ports := make([]string, 0, len(plan[proc]))
		for port := range plan[proc] {
			ports = append(ports, port)
		}
		sort.Strings(ports)
		for _, port := range ports {
			for _, rule := range plan[proc][port] {
				if err := n.InsertTopology(proc, port, rule); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// InsertTopology redirects one variable of a model port to a different
// store path. Existing rules at the port are preserved; a rule for the same
// key replaces the earlier one (last inserted wins). Connector wiring is
// derived from the connection configuration and may not be edited.
func (n *Network) InsertTopology(procName, port string, rule model.PortRule) error {
	if _, isModel := n.config.Models[procName]; !isModel {
		if _, isConnector := n.topology[procName]; isConnector {
			return fmt.Errorf("%w: connector topology is derived from its connection", ErrNotSupported)
		}
		return configErrorf("unknown process: %s", procName)
	}
	ports, ok := n.topology[procName]
	if !ok {
		return configErrorf("unknown process: %s", procName)
	}
	binding, ok := ports[port]
	if !ok {
		return configErrorf("process %s has no port %s", procName, port)
	}
	if rule.Key == "" {
		return configErrorf("port rule key is required")
	}
	if len(rule.Path) == 0 {
		return configErrorf("port rule path is required")
	}

	if binding.Remap == nil {
		binding.Remap = make(map[string]model.StorePath, 1)
	}
	binding.Remap[rule.Key] = rule.Path.Clone()
	ports[port] = binding
	return nil
}

func cloneConfig(config model.NetworkConfig) model.NetworkConfig {
	out := model.NetworkConfig{
		Models:      make(map[string]model.ModelConfig, len(config.Models)),
		Connections: append([]model.ConnectionConfig(nil), config.Connections...),
	}
	for name, cfg := range config.Models {
		out.Models[name] = cfg
	}
	return out
}

func mergeSnapshot(state model.State, store string, snap model.Snapshot) error {
	existing, ok := state[store]
	if !ok {
		state[store] = snap.Clone()
		return nil
	}
	for key, value := range snap {
		if _, collides := existing[key]; collides {
			return configErrorf("initial state collision at %s/%s", store, key)
		}
		existing[key] = value
	}
	return nil
}
