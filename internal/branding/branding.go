// Package branding holds the identity of the labpack binary and of the
// distribution it packages, read from the embedded branding.yaml.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

// Brand is the decoded branding.yaml.
type Brand struct {
	CLIName        string `yaml:"cli_name"`
	DisplayName    string `yaml:"display_name"`
	Description    string `yaml:"description"`
	EnvPrefix      string `yaml:"env_prefix"`
	PackageName    string `yaml:"package_name"`
	PackageVersion string `yaml:"package_version"`
	ProjectURL     string `yaml:"project_url"`
}

// fallback is used for any field branding.yaml leaves empty.
var fallback = Brand{
	CLIName:        "labpack",
	DisplayName:    "labpack",
	Description:    "Package prebuilt JupyterLab renderer extensions for distribution",
	EnvPrefix:      "LABPACK",
	PackageName:    "jupyterlab-renderers",
	PackageVersion: "3.0.0",
	ProjectURL:     "https://github.com/jupyterlab/jupyter-renderers",
}

var current = sync.OnceValue(func() Brand {
	b := fallback
	if err := yaml.Unmarshal(rawBranding, &b); err != nil {
		return fallback
	}
	return b
})

// Get returns the embedded branding.
func Get() Brand { return current() }

func CLIName() string        { return current().CLIName }
func DisplayName() string    { return current().DisplayName }
func Description() string    { return current().Description }
func EnvPrefix() string      { return current().EnvPrefix }
func PackageName() string    { return current().PackageName }
func PackageVersion() string { return current().PackageVersion }

// EnvVar qualifies key with the env prefix: EnvVar("out_dir") is "LABPACK_OUT_DIR".
func EnvVar(key string) string {
	return current().EnvPrefix + "_" + strings.ToUpper(key)
}
