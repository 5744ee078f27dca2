package solver

import (
	"os"
	"path/filepath"
	"testing"
)

const yamlDefinition = `species:
  - id: dna_G
    initial: 1
  - id: rna_T
reactions:
  - name: transcription
    reactants: [dna_G]
    products: [dna_G, rna_T]
    rate: 0.5
`

const jsonDefinition = `{
  "species": [{"id": "a", "initial": 2}],
  "reactions": [{"reactants": ["a"], "products": [], "rate": 1}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefinitionYAML(t *testing.T) {
	network, err := LoadDefinition(writeFile(t, "model.yaml", yamlDefinition))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if len(network.Species) != 2 || network.Species[0].ID != "dna_G" {
		t.Fatalf("unexpected species: %+v", network.Species)
	}
	if len(network.Reactions) != 1 || network.Reactions[0].Rate != 0.5 {
		t.Fatalf("unexpected reactions: %+v", network.Reactions)
	}
}

func TestLoadDefinitionJSON(t *testing.T) {
	network, err := LoadDefinition(writeFile(t, "model.json", jsonDefinition))
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if len(network.Species) != 1 || network.Species[0].Initial != 2 {
		t.Fatalf("unexpected species: %+v", network.Species)
	}
}

func TestLoadDefinitionRejectsUnknownFormat(t *testing.T) {
	if _, err := LoadDefinition(writeFile(t, "model.xml", "<sbml/>")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestLoadDefinitionRejectsInvalidNetwork(t *testing.T) {
	bad := `species:
  - id: a
reactions:
  - reactants: [missing]
    rate: 1
`
	if _, err := LoadDefinition(writeFile(t, "bad.yaml", bad)); err == nil {
		t.Fatal("expected validation error for unknown reactant")
	}
}
