package runtime

import (
	"context"
	"fmt"
)

// Runner produces the extension build output.
type Runner interface {
	Build(ctx context.Context) error
}

// Output captures the result of one package manager invocation.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Supported package managers.
const (
	ManagerJlpm = "jlpm"
	ManagerYarn = "yarn"
	ManagerNpm  = "npm"
)

// DefaultBuildScript is the workspace script that produces the prebuilt
// extensions.
const DefaultBuildScript = "build:prod"

// Dispatch returns the Runner for the named package manager working in dir.
// Unknown names yield a Runner that always fails.
func Dispatch(manager, dir string) Runner {
	switch manager {
	case ManagerJlpm, ManagerYarn, ManagerNpm:
		return &PackageManager{Name: manager, Dir: dir, Script: DefaultBuildScript}
	default:
		return &unknownManager{name: manager}
	}
}

// unknownManager is returned when the package manager is not recognized.
type unknownManager struct {
	name string
}

func (u *unknownManager) Build(context.Context) error {
	return fmt.Errorf("unknown package manager %q: supported are %q, %q and %q",
		u.name, ManagerJlpm, ManagerYarn, ManagerNpm)
}
