package cli

import (
	"strings"
	"testing"

	"github.com/stemma-io/stemma/pkg/stemma"
)

func TestRequireDatasetPath_Missing(t *testing.T) {
	err := RequireDatasetPath(validateCmd, []string{})
	if err == nil {
		t.Fatal("Expected error for missing argument")
	}
	if !strings.Contains(err.Error(), "dataset_path") {
		t.Errorf("Expected the message to name the argument, got: %v", err)
	}
	exitCode := stemma.ExitCodeForError(err)
	if exitCode != stemma.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d", stemma.ExitUsageError, exitCode)
	}
}

func TestRequireDatasetPath_TooMany(t *testing.T) {
	err := RequireDatasetPath(validateCmd, []string{"a", "b"})
	if err == nil {
		t.Fatal("Expected error for too many arguments")
	}
	exitCode := stemma.ExitCodeForError(err)
	if exitCode != stemma.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d", stemma.ExitUsageError, exitCode)
	}
}

func TestRequireDatasetPath_Valid(t *testing.T) {
	if err := RequireDatasetPath(validateCmd, []string{"./study"}); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestRequireSourceAndTarget_Missing(t *testing.T) {
	for _, args := range [][]string{{}, {"./study"}} {
		err := RequireSourceAndTarget(convertCmd, args)
		if err == nil {
			t.Fatalf("Expected error for args %v", args)
		}
		exitCode := stemma.ExitCodeForError(err)
		if exitCode != stemma.ExitUsageError {
			t.Errorf("Expected exit code %d (usage), got %d for: %v", stemma.ExitUsageError, exitCode, err)
		}
	}
}

func TestRequireSourceAndTarget_TooMany(t *testing.T) {
	err := RequireSourceAndTarget(convertCmd, []string{"a", "b", "c"})
	if err == nil {
		t.Fatal("Expected error for too many arguments")
	}
	exitCode := stemma.ExitCodeForError(err)
	if exitCode != stemma.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d", stemma.ExitUsageError, exitCode)
	}
}

func TestRequireSourceAndTarget_Valid(t *testing.T) {
	if err := RequireSourceAndTarget(convertCmd, []string{"./study", "./out"}); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}
