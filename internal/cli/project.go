package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jupyterlab/labpack/internal/config"
	"github.com/jupyterlab/labpack/internal/labext"
	"github.com/jupyterlab/labpack/internal/packaging"
	"github.com/jupyterlab/labpack/internal/runtime"
	"github.com/spf13/cobra"
)

// flagKeys maps command flags to the config keys they override.
var flagKeys = map[string]string{
	"mode":            config.KeyMode,
	"prefix":          config.KeyPrefix,
	"out":             config.KeyOutDir,
	"package-manager": config.KeyPackageManager,
}

// project is the resolved state every packaging command works from.
type project struct {
	settings *config.Settings
	registry *labext.Registry
	layout   packaging.Layout
	mode     packaging.Mode
}

func (p *project) names() []string { return p.registry.Names() }

func (p *project) targets() []packaging.BuildTarget {
	return packaging.ComputeBuildTargets(p.layout, p.names())
}

func (p *project) specs() []packaging.DataFileSpec {
	return packaging.ComputeDataFileSpecs(p.layout, p.names())
}

func (p *project) packageData() []packaging.DataFileSpec {
	return packaging.ComputePackageDataSpecs(p.layout)
}

// staged returns everything the data_files step installs.
func (p *project) staged() []packaging.DataFileSpec {
	return append(p.specs(), p.packageData()...)
}

// loadProject resolves configuration for cmd, letting explicitly set flags
// win over the config file and environment.
func loadProject(cmd *cobra.Command) (*project, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	v, err := config.New(root, configFile)
	if err != nil {
		return nil, err
	}
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", flag, err)
			}
		}
	}

	settings, err := config.Decode(v, root)
	if err != nil {
		return nil, err
	}

	registry := labext.Default()
	if settings.ExtensionsFile != "" {
		registry, err = labext.LoadFile(settings.ExtensionsFile)
		if err != nil {
			return nil, err
		}
	}

	mode, err := resolveMode(settings.Mode, root)
	if err != nil {
		return nil, err
	}

	return &project{
		settings: settings,
		registry: registry,
		layout:   packaging.NewLayout(root, settings.PackageName),
		mode:     mode,
	}, nil
}

func resolveMode(value, root string) (packaging.Mode, error) {
	if value == config.ModeAuto || value == "" {
		return packaging.DetectMode(root), nil
	}
	return packaging.ParseMode(value)
}

// newBuilder returns the package manager runner for the project. Build output
// goes to stderr so stdout stays machine-readable.
func newBuilder(cmd *cobra.Command, p *project, forceInstall bool) packaging.Builder {
	r := runtime.Dispatch(p.settings.PackageManager, p.layout.ProjectRoot)
	if pm, ok := r.(*runtime.PackageManager); ok {
		pm.Script = p.settings.BuildScript
		pm.ForceInstall = forceInstall
		pm.Stdout = cmd.ErrOrStderr()
		pm.Stderr = cmd.ErrOrStderr()
		pm.Log = logger
	}
	return r
}
