package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()

	s, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "jupyterlab-renderers", s.PackageName)
	assert.Equal(t, "jlpm", s.PackageManager)
	assert.Equal(t, "build:prod", s.BuildScript)
	assert.Equal(t, ModeAuto, s.Mode)
	assert.Equal(t, filepath.Join(root, "build", "stage"), s.Prefix)
	assert.Equal(t, filepath.Join(root, "dist"), s.OutDir)
	assert.Empty(t, s.ExtensionsFile)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	content := "package_manager: yarn\nmode: release\nout_dir: /tmp/out\nextensions_file: exts.yaml\n"
	require.NoError(t, os.WriteFile(FilePath(root), []byte(content), 0o644))

	s, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "yarn", s.PackageManager)
	assert.Equal(t, "release", s.Mode)
	assert.Equal(t, "/tmp/out", s.OutDir)
	assert.Equal(t, filepath.Join(root, "exts.yaml"), s.ExtensionsFile)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(FilePath(root), []byte("version: 3.0.0\n"), 0o644))
	t.Setenv("LABPACK_VERSION", "3.1.0")

	s, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "3.1.0", s.Version)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	root := t.TempDir()
	_, err := Load(root, filepath.Join(root, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(FilePath(root), []byte("mode: [unterminated\n"), 0o644))
	_, err := Load(root, "")
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	root := t.TempDir()

	require.NoError(t, Set(root, "", KeyPackageManager, "npm"))
	require.NoError(t, Set(root, "", KeyMode, "release"))

	s, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "npm", s.PackageManager)
	assert.Equal(t, "release", s.Mode)

	data, err := os.ReadFile(FilePath(root))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "build_script", "defaults must not be persisted")
}

func TestSet_ExplicitFile(t *testing.T) {
	root := t.TempDir()
	alt := filepath.Join(t.TempDir(), "alt.yaml")

	require.NoError(t, Set(root, alt, KeyOutDir, "out"))
	assert.NoFileExists(t, FilePath(root))

	s, err := Load(root, alt)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "out"), s.OutDir)

	def, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "dist"), def.OutDir)
}

func TestSet_UnknownKey(t *testing.T) {
	assert.Error(t, Set(t.TempDir(), "", "colour", "blue"))
}

func TestKeys_AllHaveDefaults(t *testing.T) {
	v, err := New(t.TempDir(), "")
	require.NoError(t, err)
	for _, k := range Keys() {
		assert.True(t, v.IsSet(k), k)
	}
}
