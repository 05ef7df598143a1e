package tui

import (
	"os"

	"golang.org/x/term"

	"github.com/stemma-io/stemma/internal/config"
)

// Mode represents the interaction mode for stemma.
type Mode int

const (
	// ModeNonInteractive is used for CI pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// DetectMode determines whether stemma should run interactively.
//
// Returns ModeNonInteractive if:
//   - STEMMA_NON_INTERACTIVE=1 is set
//   - CI is set (common CI convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//   - stdin or stdout is not a terminal
//
// Returns ModeInteractive otherwise.
func DetectMode() Mode {
	if os.Getenv("STEMMA_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModeNonInteractive
	}

	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in
// interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}

// ColorEnabled reports whether output should be colorized under the given
// color mode. ColorAlways and ColorNever are unconditional; ColorAuto and
// an unset mode colorize only when stdout is a terminal and neither
// NO_COLOR nor CI is set.
func ColorEnabled(mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
			return false
		}
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}
