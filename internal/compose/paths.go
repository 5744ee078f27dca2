package compose

import (
	"fmt"
	"strings"

	"biowire/internal/model"
)

// Store suffixes owned by each model's namespace.
const (
	suffixSpecies = "species"
	suffixDeltas  = "deltas"
	suffixRates   = "rates"
)

func validateName(kind, name string) error {
	if name == "" {
		return configErrorf("%s name is required", kind)
	}
	if strings.ContainsAny(name, "/ \t\n") {
		return configErrorf("%s name %q contains reserved characters", kind, name)
	}
	return nil
}

// storePath builds the namespaced store path for one of a model's stores.
// Callers must have validated the model name first.
func storePath(modelName, suffix string) model.StorePath {
	return model.StorePath{fmt.Sprintf("%s_%s", modelName, suffix)}
}

// ConnectorKey is the effective identity of the connection between an
// ordered (source, target) model pair.
func ConnectorKey(source, target string) string {
	return fmt.Sprintf("%s_%s_connector", source, target)
}
