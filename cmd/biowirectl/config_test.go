package main

import (
	"os"
	"path/filepath"
	"testing"
)

const networkConfigYAML = `models:
  "1":
    time_step: 10
    definition: model1.yaml
  "3":
    time_step: 10
    network:
      species:
        - id: dna_G
        - id: rna_T
        - id: rna
connections:
  - source: "1"
    target: "3"
    project:
      source_species: [rna_T]
      target_species: [rna_T]
`

const model1YAML = `species:
  - id: dna_G
    initial: 1
  - id: rna_T
    initial: 10
reactions:
  - name: transcription
    reactants: [dna_G]
    products: [dna_G, rna_T]
    rate: 0.01
`

func writeConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "network.yaml"), []byte(networkConfigYAML), 0o644); err != nil {
		t.Fatalf("write network config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "model1.yaml"), []byte(model1YAML), 0o644); err != nil {
		t.Fatalf("write model definition: %v", err)
	}
	return dir
}

func TestLoadNetworkConfig(t *testing.T) {
	dir := writeConfigDir(t)
	config, err := loadNetworkConfig(filepath.Join(dir, "network.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(config.Models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(config.Models))
	}
	if config.Models["1"].Network.Species[1].Initial != 10 {
		t.Fatalf("definition file not resolved: %+v", config.Models["1"])
	}
	if len(config.Models["3"].Network.Species) != 3 {
		t.Fatalf("inline network not parsed: %+v", config.Models["3"])
	}
	if len(config.Connections) != 1 || config.Connections[0].Project == nil {
		t.Fatalf("connections not parsed: %+v", config.Connections)
	}
}

func TestLoadNetworkConfigRejectsAmbiguousModel(t *testing.T) {
	dir := t.TempDir()
	bad := `models:
  "1":
    time_step: 1
    definition: x.yaml
    network:
      species: [{id: a}]
`
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadNetworkConfig(path); err == nil {
		t.Fatal("expected error for definition plus inline network")
	}
}

func TestLoadNetworkConfigRejectsMissingNetwork(t *testing.T) {
	dir := t.TempDir()
	bad := `models:
  "1":
    time_step: 1
`
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadNetworkConfig(path); err == nil {
		t.Fatal("expected error for model without a network")
	}
}

func TestParseOverride(t *testing.T) {
	store, key, value, err := parseOverride("1_species/dna_G=1.5")
	if err != nil {
		t.Fatalf("parse override: %v", err)
	}
	if store != "1_species" || key != "dna_G" || value != 1.5 {
		t.Fatalf("unexpected parse: %s %s %f", store, key, value)
	}

	for _, bad := range []string{"no-equals", "store=1", "/key=1", "store/=1", "store/key=x"} {
		if _, _, _, err := parseOverride(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestOverrideFlagsAccumulate(t *testing.T) {
	flags := overrideFlags{}
	if err := flags.Set("1_species/dna_G=1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := flags.Set("1_species/rna_T=10"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if flags["1_species"]["dna_G"] != 1 || flags["1_species"]["rna_T"] != 10 {
		t.Fatalf("unexpected overrides: %+v", flags)
	}
}
