package packaging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mode selects how the build step behaves.
type Mode int

const (
	// ModeWorkingCopy is for a version-controlled checkout; the build check
	// always runs.
	ModeWorkingCopy Mode = iota
	// ModeRelease is for an exported source tree; prebuilt targets are
	// trusted and the build step is skipped when they exist.
	ModeRelease
)

// String returns the flag value for the mode.
func (m Mode) String() string {
	switch m {
	case ModeWorkingCopy:
		return "working-copy"
	case ModeRelease:
		return "release"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode flag value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "working-copy", "dev":
		return ModeWorkingCopy, nil
	case "release":
		return ModeRelease, nil
	default:
		return 0, fmt.Errorf("unknown mode %q: expected working-copy or release", s)
	}
}

// DetectMode returns ModeWorkingCopy if root contains a .git entry, and
// ModeRelease otherwise.
func DetectMode(root string) Mode {
	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		return ModeWorkingCopy
	}
	return ModeRelease
}
