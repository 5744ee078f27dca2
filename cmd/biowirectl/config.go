package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"biowire/internal/model"
	"biowire/internal/solver"
)

// envDefaults lets the store backend be configured once per environment
// instead of per invocation.
type envDefaults struct {
	Store  string `env:"BIOWIRE_STORE"`
	DBPath string `env:"BIOWIRE_DB_PATH"`
}

func loadEnvDefaults() (envDefaults, error) {
	defaults := envDefaults{DBPath: defaultDBPath}
	if err := env.Parse(&defaults); err != nil {
		return envDefaults{}, fmt.Errorf("parse environment: %w", err)
	}
	return defaults, nil
}

type fileModel struct {
	TimeStep float64 `yaml:"time_step" json:"time_step"`
	// Definition points at a reaction-network file, resolved relative to
	// the config file. Network declares it inline; exactly one is allowed.
	Definition string                 `yaml:"definition,omitempty" json:"definition,omitempty"`
	Network    *model.ReactionNetwork `yaml:"network,omitempty" json:"network,omitempty"`
}

type fileConnection struct {
	Source  string                `yaml:"source" json:"source"`
	Target  string                `yaml:"target" json:"target"`
	Project *model.ProjectionSpec `yaml:"project" json:"project"`
}

type fileConfig struct {
	Models      map[string]fileModel `yaml:"models" json:"models"`
	Connections []fileConnection     `yaml:"connections" json:"connections"`
}

// loadNetworkConfig reads a network configuration from a YAML or JSON file.
func loadNetworkConfig(path string) (model.NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.NetworkConfig{}, err
	}

	var parsed fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return model.NetworkConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &parsed); err != nil {
			return model.NetworkConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return model.NetworkConfig{}, fmt.Errorf("unsupported config format: %s", path)
	}

	config := model.NetworkConfig{Models: make(map[string]model.ModelConfig, len(parsed.Models))}
	baseDir := filepath.Dir(path)
	for name, m := range parsed.Models {
		if m.Definition != "" && m.Network != nil {
			return model.NetworkConfig{}, fmt.Errorf("model %s declares both a definition file and an inline network", name)
		}
		var network model.ReactionNetwork
		switch {
		case m.Network != nil:
			network = *m.Network
		case m.Definition != "":
			loaded, err := solver.LoadDefinition(resolvePath(baseDir, m.Definition))
			if err != nil {
				return model.NetworkConfig{}, fmt.Errorf("model %s: %w", name, err)
			}
			network = loaded
		default:
			return model.NetworkConfig{}, fmt.Errorf("model %s declares no reaction network", name)
		}
		config.Models[name] = model.ModelConfig{TimeStep: m.TimeStep, Network: network}
	}

	for _, conn := range parsed.Connections {
		config.Connections = append(config.Connections, model.ConnectionConfig{
			Source:  conn.Source,
			Target:  conn.Target,
			Project: conn.Project,
		})
	}
	return config, nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// parseOverride reads one "store/key=value" initial-state override.
func parseOverride(spec string) (store, key string, value float64, err error) {
	assign := strings.SplitN(spec, "=", 2)
	if len(assign) != 2 {
		return "", "", 0, fmt.Errorf("override %q must be store/key=value", spec)
	}
	location := strings.SplitN(assign[0], "/", 2)
	if len(location) != 2 || location[0] == "" || location[1] == "" {
		return "", "", 0, fmt.Errorf("override %q must be store/key=value", spec)
	}
	value, err = strconv.ParseFloat(assign[1], 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("override %q has a non-numeric value: %w", spec, err)
	}
	return location[0], location[1], value, nil
}

// overrideFlags collects repeated -set flags.
type overrideFlags map[string]map[string]float64

func (o overrideFlags) String() string {
	return fmt.Sprintf("%d overrides", len(o))
}

func (o overrideFlags) Set(spec string) error {
	store, key, value, err := parseOverride(spec)
	if err != nil {
		return err
	}
	if o[store] == nil {
		o[store] = make(map[string]float64)
	}
	o[store][key] = value
	return nil
}
