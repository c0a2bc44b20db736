package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/jupyterlab/labpack/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "labpack"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyPackageName    = "package_name"
	KeyVersion        = "version"
	KeyPackageManager = "package_manager"
	KeyBuildScript    = "build_script"
	KeyMode           = "mode"
	KeyPrefix         = "prefix"
	KeyOutDir         = "out_dir"
	KeyExtensionsFile = "extensions_file"
)

// Keys lists every configuration key in display order.
func Keys() []string {
	return []string{
		KeyPackageName, KeyVersion, KeyPackageManager, KeyBuildScript,
		KeyMode, KeyPrefix, KeyOutDir, KeyExtensionsFile,
	}
}

// ModeAuto picks the build mode from the project tree.
const ModeAuto = "auto"

// Settings is the resolved project configuration.
type Settings struct {
	ProjectRoot    string `mapstructure:"-"`
	PackageName    string `mapstructure:"package_name"`
	Version        string `mapstructure:"version"`
	PackageManager string `mapstructure:"package_manager"`
	BuildScript    string `mapstructure:"build_script"`
	Mode           string `mapstructure:"mode"`
	Prefix         string `mapstructure:"prefix"`
	OutDir         string `mapstructure:"out_dir"`
	ExtensionsFile string `mapstructure:"extensions_file"`
}

// FilePath returns the config file path for a project root.
func FilePath(projectRoot string) string {
	return filepath.Join(projectRoot, fileName+"."+fileType)
}

// New returns a Viper instance with defaults, environment overrides and the
// project config file loaded. An explicit configFile must exist; the default
// file is optional.
func New(projectRoot, configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	path := configFile
	if path == "" {
		path = FilePath(projectRoot)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyPackageName, branding.PackageName())
	v.SetDefault(KeyVersion, branding.PackageVersion())
	v.SetDefault(KeyPackageManager, "jlpm")
	v.SetDefault(KeyBuildScript, "build:prod")
	v.SetDefault(KeyMode, ModeAuto)
	v.SetDefault(KeyPrefix, filepath.Join("build", "stage"))
	v.SetDefault(KeyOutDir, "dist")
	v.SetDefault(KeyExtensionsFile, "")
}

// Decode resolves v into Settings. Relative paths are anchored at projectRoot.
func Decode(v *viper.Viper, projectRoot string) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	s.ProjectRoot = projectRoot

	s.Prefix = anchor(projectRoot, s.Prefix)
	s.OutDir = anchor(projectRoot, s.OutDir)
	if s.ExtensionsFile != "" {
		s.ExtensionsFile = anchor(projectRoot, s.ExtensionsFile)
	}

	if s.PackageName == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyPackageName)
	}
	return &s, nil
}

// Load reads the configuration of the project at projectRoot.
func Load(projectRoot, configFile string) (*Settings, error) {
	v, err := New(projectRoot, configFile)
	if err != nil {
		return nil, err
	}
	return Decode(v, projectRoot)
}

// Set writes a key-value pair to configFile, or to the project config file
// when configFile is empty, creating it if needed. Only the keys the file
// already holds and the new key are written, never defaults.
func Set(projectRoot, configFile, key, value string) error {
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("unknown config key %q", key)
	}

	path := configFile
	if path == "" {
		path = FilePath(projectRoot)
	}

	out := viper.New()
	out.SetConfigType(fileType)
	if _, err := os.Stat(path); err == nil {
		out.SetConfigFile(path)
		if err := out.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	out.Set(key, value)

	if err := out.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func anchor(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
