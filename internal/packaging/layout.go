package packaging

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/jupyterlab/labpack/internal/labext"
	"github.com/jupyterlab/labpack/internal/manifest"
)

// ShareDir is the host's shared-extensions directory, relative to the
// installation prefix.
const ShareDir = "share/jupyter/labextensions"

// SitePackagesDir holds the Python package, relative to the installation
// prefix.
const SitePackagesDir = "site-packages"

// PatternAll copies a source directory recursively.
const PatternAll = "**"

// Layout locates the project on disk.
type Layout struct {
	// ProjectRoot holds install.json and the JavaScript workspace.
	ProjectRoot string
	// PackageDir is the Python package directory shipped as package data.
	PackageDir string
	// Module is the importable name of that package.
	Module string
	// BuildRoot holds one built extension directory per name.
	BuildRoot string
}

// NewLayout returns the layout of a project whose Python package directory is
// named after the distribution.
func NewLayout(projectRoot, packageName string) Layout {
	pkgDir := filepath.Join(projectRoot, packageName)
	return Layout{
		ProjectRoot: projectRoot,
		PackageDir:  pkgDir,
		Module:      PackageModule(packageName),
		BuildRoot:   filepath.Join(pkgDir, labext.SourceDir),
	}
}

// PackageModule returns the module name of a distribution: "-" becomes "_".
func PackageModule(packageName string) string {
	return strings.ReplaceAll(packageName, "-", "_")
}

// ExtensionDir returns the build output directory of the named extension.
func (l Layout) ExtensionDir(name string) string {
	return filepath.Join(l.BuildRoot, filepath.FromSlash(name))
}

// DataFileSpec describes files to copy into the installation: every match of
// Pattern in SourceDir lands in TargetDir, relative to the prefix.
type DataFileSpec struct {
	TargetDir string `json:"target_dir"`
	SourceDir string `json:"source_dir"`
	Pattern   string `json:"pattern"`
}

// BuildTarget is a file whose existence shows that an extension was built.
type BuildTarget struct {
	Extension string `json:"extension"`
	Path      string `json:"path"`
}

// InstallDir returns the install directory of the named extension, relative
// to the prefix.
func InstallDir(name string) string {
	return path.Join(ShareDir, name)
}

// ComputeDataFileSpecs returns two specs per name: the whole build output and
// the shared install descriptor, both targeting InstallDir(name).
func ComputeDataFileSpecs(layout Layout, names []string) []DataFileSpec {
	specs := make([]DataFileSpec, 0, 2*len(names))
	for _, name := range names {
		target := InstallDir(name)
		specs = append(specs,
			DataFileSpec{TargetDir: target, SourceDir: layout.ExtensionDir(name), Pattern: PatternAll},
			DataFileSpec{TargetDir: target, SourceDir: layout.ProjectRoot, Pattern: manifest.InstallFile},
		)
	}
	return specs
}

// ComputePackageDataSpecs returns the spec shipping the whole Python package
// directory, so the labextensions/<name> sources named by the discovery
// payload exist next to the installed module.
func ComputePackageDataSpecs(layout Layout) []DataFileSpec {
	return []DataFileSpec{{
		TargetDir: path.Join(SitePackagesDir, layout.Module),
		SourceDir: layout.PackageDir,
		Pattern:   PatternAll,
	}}
}

// ComputeBuildTargets returns the package descriptor path of each extension.
func ComputeBuildTargets(layout Layout, names []string) []BuildTarget {
	targets := make([]BuildTarget, 0, len(names))
	for _, name := range names {
		targets = append(targets, BuildTarget{
			Extension: name,
			Path:      filepath.Join(layout.ExtensionDir(name), manifest.PackageFile),
		})
	}
	return targets
}
