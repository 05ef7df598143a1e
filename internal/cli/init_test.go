package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stemma-io/stemma/pkg/stemma"
)

func readDescriptionFields(t *testing.T, dir string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "dataset_description.json"))
	if err != nil {
		t.Fatalf("Expected dataset_description.json to exist: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Expected valid description JSON: %v", err)
	}
	return fields
}

func TestRunInit_CreatesSkeleton(t *testing.T) {
	resetInitFlags()
	target := filepath.Join(t.TempDir(), "study")

	if err := runInit(initCmd, []string{target}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	fields := readDescriptionFields(t, target)
	if fields["Name"] != "study" {
		t.Errorf("Expected the name to come from the directory, got %v", fields["Name"])
	}
	if fields["SchemaVersion"] != "1.7.0" {
		t.Errorf("Expected the default schema version, got %v", fields["SchemaVersion"])
	}

	readme, err := os.ReadFile(filepath.Join(target, "README.md"))
	if err != nil {
		t.Fatalf("Expected README.md to exist: %v", err)
	}
	if !strings.Contains(string(readme), "# study") {
		t.Errorf("Expected the README title to carry the dataset name, got: %s", readme)
	}

	for _, dir := range []string{"code", "sourcedata"} {
		info, err := os.Stat(filepath.Join(target, dir))
		if err != nil || !info.IsDir() {
			t.Errorf("Expected %s/ directory to exist", dir)
		}
	}
}

func TestRunInit_NameAndSchemaVersionFlags(t *testing.T) {
	resetInitFlags()
	initName = "My Study"
	initSchemaVersion = "1.1.0"
	target := filepath.Join(t.TempDir(), "study")

	if err := runInit(initCmd, []string{target}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	fields := readDescriptionFields(t, target)
	if fields["Name"] != "My Study" {
		t.Errorf("Expected the name flag to win, got %v", fields["Name"])
	}
	if fields["SchemaVersion"] != "1.1.0" {
		t.Errorf("Expected the schema version flag to win, got %v", fields["SchemaVersion"])
	}
}

func TestRunInit_NonEmptyDirectory(t *testing.T) {
	resetInitFlags()
	target := t.TempDir()
	if err := os.WriteFile(filepath.Join(target, "existing.txt"), []byte("data"), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err := runInit(initCmd, []string{target})
	if !errors.Is(err, stemma.ErrOutputExists) {
		t.Fatalf("Expected ErrOutputExists, got: %v", err)
	}
	exitCode := stemma.ExitCodeForError(err)
	if exitCode != stemma.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d", stemma.ExitUsageError, exitCode)
	}
}

func TestRunInit_OutputValidatesCleanly(t *testing.T) {
	resetInitFlags()
	clearStemmaEnv(t)
	target := filepath.Join(t.TempDir(), "study")

	if err := runInit(initCmd, []string{target}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	resetValidateFlags()
	if err := runValidate(validateCmd, []string{target}); err != nil {
		t.Fatalf("Expected the fresh dataset to validate cleanly, got: %v", err)
	}
}
