package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for miqa.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// DetectMode determines whether miqa should run in interactive or non-interactive mode.
//
// Returns ModeNonInteractive if:
//   - stdin or stderr is not a terminal (piped input, redirected output, CI/CD)
//   - MIQA_NON_INTERACTIVE=1 is set
//   - CI=true is set (common CI/CD convention)
//   - NO_COLOR is set (accessibility/automation indicator)
//
// Returns ModeInteractive otherwise. Progress rendering goes to stderr so
// that crawl output stays pipeable, which is why stderr is checked rather
// than stdout.
func DetectMode() Mode {
	if os.Getenv("MIQA_NON_INTERACTIVE") == "1" {
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
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}

	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
