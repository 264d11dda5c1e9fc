//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pet-adoption-api"
	ConsumerName = "adoption-portal"

	StatePetsBaseline = "no pets are listed"
	StatePetExists    = "pet pet-101 is available"
	StatePetMissing   = "no pet with id pet-404"
	StatePetsSearch   = "pets exist for search queries"
)

const (
	ExistingPetID = "pet-101"
	MissingPetID  = "pet-404"
	SearchCity    = "Portland"
)

const (
	examplePetName  = "Fluffy Pact Cat"
	exampleImageURL = "https://example.pact/pets/fluffy.png"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the adoption portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePet is the pet both sides agree on.
func ExamplePet() map[string]any {
	return map[string]any{
		"id":          ExistingPetID,
		"name":        examplePetName,
		"type":        "Cat",
		"gender":      "Female",
		"size":        "Small",
		"description": "Sleeps in sunbeams",
		"images":      []string{exampleImageURL},
		"status":      "Available",
		"location":    map[string]any{"city": SearchCity},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
