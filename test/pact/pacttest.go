//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"
)

const (
	ProviderName = "pet-adoption-api"
	ConsumerName = "adoption-portal"

	StatePetsBaseline      = "available pets are listed"
	StatePetExists         = "an available pet exists"
	StatePetMissing        = "the pet does not exist"
	StateApplicationExists = "the adopter has a pending application for the pet"
)

// Consumers send these placeholder bearer tokens; the provider swaps them for
// tokens signed with its own secret before the request reaches the router.
const (
	AdopterToken = "Bearer pact-adopter-token"
	AdminToken   = "Bearer pact-admin-token"
)

// JWTSecret signs the tokens the provider substitutes for the placeholders.
const JWTSecret = "pact-secret"

var (
	ExistingPetID = uuid.MustParse("8a6e0804-2bd0-4672-b79d-d97027f9071a")
	MissingPetID  = uuid.MustParse("00000000-0000-4000-8000-000000000404")
	ApplicationID = uuid.MustParse("3f1c9a7e-5b2d-4e8f-9a6c-1d2e3f4a5b6c")
	AdminID       = uuid.MustParse("b1e2c3d4-0000-4000-8000-00000000a001")
	AdopterID     = uuid.MustParse("b1e2c3d4-0000-4000-8000-00000000a002")
)

const (
	ExamplePetName      = "Buddy"
	ExampleSpecies      = "Dog"
	ExampleBreed        = "Golden Retriever"
	ExampleAge          = 3.0
	ExampleGender       = "Male"
	ExampleDescription  = "Friendly and energetic, loves to play fetch."
	ExampleImageURL     = "https://example.pact/pets/buddy.jpg"
	ExampleMessage      = "We have a big garden and lots of time for walks."
	ExampleRetryMessage = "Applying again in case my first request was lost."
	ExampleTimestamp    = "2024-06-12T10:00:00Z"
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

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
