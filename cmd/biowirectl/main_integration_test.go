package main

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRunCommandEndToEnd(t *testing.T) {
	dir := writeConfigDir(t)
	configPath := filepath.Join(dir, "network.yaml")

	err := run(context.Background(), []string{
		"run",
		"-config", configPath,
		"-store", "memory",
		"-steps", "3",
		"-run-id", "cli-test",
		"-set", "1_species/dna_G=1",
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
}

func TestTopologyCommand(t *testing.T) {
	dir := writeConfigDir(t)
	err := run(context.Background(), []string{
		"topology",
		"-config", filepath.Join(dir, "network.yaml"),
	})
	if err != nil {
		t.Fatalf("topology command: %v", err)
	}
}

func TestInitialStateCommand(t *testing.T) {
	dir := writeConfigDir(t)
	err := run(context.Background(), []string{
		"initial-state",
		"-config", filepath.Join(dir, "network.yaml"),
	})
	if err != nil {
		t.Fatalf("initial-state command: %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"nope"}); err == nil {
		t.Fatal("expected usage error")
	}
	if err := run(context.Background(), nil); err == nil {
		t.Fatal("expected usage error for missing command")
	}
}

func TestRunCommandRequiresConfig(t *testing.T) {
	if err := run(context.Background(), []string{"run", "-store", "memory"}); err == nil {
		t.Fatal("expected error without -config")
	}
}
