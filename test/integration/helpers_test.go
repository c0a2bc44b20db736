//go:build integration

package integration_test

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jupyterlab/labpack/internal/packaging"
	labruntime "github.com/jupyterlab/labpack/internal/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packageName = "jupyterlab-renderers"

// testEnv holds paths to an isolated project and installation prefix.
type testEnv struct {
	ProjectDir string
	PrefixDir  string
	OutDir     string
	Layout     packaging.Layout
}

// setupTestEnv creates a project with a workspace package.json and install.json,
// and puts a fake jlpm on PATH. On `jlpm run build:prod` the fake writes a
// built package.json for every name in $FAKE_BUILD_NAMES.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake package manager is a shell script")
	}

	env := &testEnv{
		ProjectDir: t.TempDir(),
		PrefixDir:  t.TempDir(),
		OutDir:     t.TempDir(),
	}
	env.Layout = packaging.NewLayout(env.ProjectDir, packageName)

	writeFile(t, filepath.Join(env.ProjectDir, "package.json"), `{"private": true, "workspaces": ["packages/*"]}`)
	writeFile(t, filepath.Join(env.Layout.PackageDir, "__init__.py"), "")
	writeFile(t, filepath.Join(env.ProjectDir, "install.json"), `{
  "packageManager": "python",
  "packageName": "jupyterlab-renderers",
  "uninstallInstructions": "Use your Python package manager (pip, conda, etc.) to uninstall the package jupyterlab-renderers"
}`)

	binDir := t.TempDir()
	script := `#!/bin/sh
echo "$@" >> calls.log
if [ "$1" = "run" ]; then
  for name in $FAKE_BUILD_NAMES; do
    dir="` + packageName + `/labextensions/$name"
    mkdir -p "$dir/static"
    echo "// entry" > "$dir/static/remoteEntry.js"
    printf '{"name": "%s", "version": "3.0.0", "jupyterlab": {"_build": {"load": "static/remoteEntry.js"}}}\n' "$name" > "$dir/package.json"
  done
fi
exit 0
`
	writeFile(t, filepath.Join(binDir, "jlpm"), script)
	require.NoError(t, os.Chmod(filepath.Join(binDir, "jlpm"), 0o755))
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	return env
}

// builder returns a quiet jlpm runner for the project.
func (e *testEnv) builder() *labruntime.PackageManager {
	return &labruntime.PackageManager{
		Name:   labruntime.ManagerJlpm,
		Dir:    e.ProjectDir,
		Script: labruntime.DefaultBuildScript,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
}

// buildCalls returns how many times the build script ran.
func (e *testEnv) buildCalls(t *testing.T) int {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.ProjectDir, "calls.log"))
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(data), "run build:prod")
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if assert.NoError(t, err) {
		assert.Contains(t, string(data), substr, path)
	}
}
