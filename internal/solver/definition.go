package solver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"biowire/internal/model"
)

// LoadDefinition reads a reaction-network definition from a YAML or JSON
// file, selected by extension.
func LoadDefinition(path string) (model.ReactionNetwork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ReactionNetwork{}, err
	}

	var network model.ReactionNetwork
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &network); err != nil {
			return model.ReactionNetwork{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &network); err != nil {
			return model.ReactionNetwork{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return model.ReactionNetwork{}, fmt.Errorf("unsupported definition format: %s", path)
	}

	// Reuse solver construction for structural validation.
	if _, err := NewKinetic(network); err != nil {
		return model.ReactionNetwork{}, fmt.Errorf("invalid definition %s: %w", path, err)
	}
	return network, nil
}
