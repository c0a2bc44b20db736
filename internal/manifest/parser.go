package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
)

// ParsePackage reads a package.json file.
func ParsePackage(path string) (*PackageDescriptor, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return parseTyped[PackageDescriptor](data, path)
}

// ParseInstall reads an install.json file.
func ParseInstall(path string) (*InstallDescriptor, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return parseTyped[InstallDescriptor](data, path)
}

// NewInstallDescriptor returns the install descriptor for a Python
// distribution named pkg.
func NewInstallDescriptor(pkg string) *InstallDescriptor {
	return &InstallDescriptor{
		PackageManager:        "python",
		PackageName:           pkg,
		UninstallInstructions: fmt.Sprintf("Use your Python package manager (pip, conda, etc.) to uninstall the package %s", pkg),
	}
}

// WriteInstall writes d to path as indented JSON.
func WriteInstall(path string, d *InstallDescriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling install descriptor: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// CheckVersion returns an error if v is not a valid semantic version.
func CheckVersion(v string) error {
	if _, err := semver.StrictNewVersion(v); err != nil {
		return fmt.Errorf("version %q is not valid semver: %w", v, err)
	}
	return nil
}

// parseTyped unmarshals JSON data into a typed descriptor.
func parseTyped[T any](data []byte, path string) (*T, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
