package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode selects how progress is presented.
type Mode int

const (
	// ModeNonInteractive is used for cron jobs, CI and redirected output.
	ModeNonInteractive Mode = iota
	// ModeInteractive renders a live progress view on the terminal.
	ModeInteractive
)

// DetectMode returns ModeNonInteractive if any of these hold:
//   - BSSIMPORT_NON_INTERACTIVE=1 is set
//   - CI is set
//   - NO_COLOR is set
//   - stderr is not a terminal (the progress view renders there)
func DetectMode() Mode {
	if os.Getenv("BSSIMPORT_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports whether DetectMode returns ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
