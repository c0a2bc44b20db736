package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jupyterlab/labpack/internal/packaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func stagedTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"share/jupyter/labextensions/@jupyterlab/fasta-extension/package.json":         `{"name": "@jupyterlab/fasta-extension"}`,
		"share/jupyter/labextensions/@jupyterlab/fasta-extension/install.json":         `{}`,
		"share/jupyter/labextensions/@jupyterlab/fasta-extension/static/remoteEntry.js": "// entry",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestFileName(t *testing.T) {
	name, err := FileName("jupyterlab-renderers", "3.0.0")
	require.NoError(t, err)
	assert.Equal(t, "jupyterlab-renderers-3.0.0.tar.xz", name)

	_, err = FileName("jupyterlab-renderers", "3.0")
	assert.Error(t, err)
}

func TestCreateAndList(t *testing.T) {
	root := stagedTree(t)
	dst := filepath.Join(t.TempDir(), "dist", "out.tar.xz")

	require.NoError(t, Create(dst, root, "jupyterlab-renderers-3.0.0"))

	names, err := List(dst)
	require.NoError(t, err)
	assert.Contains(t, names, "jupyterlab-renderers-3.0.0/")
	assert.Contains(t, names, "jupyterlab-renderers-3.0.0/share/jupyter/labextensions/@jupyterlab/fasta-extension/package.json")
	assert.Contains(t, names, "jupyterlab-renderers-3.0.0/share/jupyter/labextensions/@jupyterlab/fasta-extension/static/remoteEntry.js")

	var files int
	for _, n := range names {
		if n[len(n)-1] != '/' {
			files++
		}
	}
	assert.Equal(t, 3, files)
}

func TestCreate_Reproducible(t *testing.T) {
	root := stagedTree(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tar.xz")
	b := filepath.Join(dir, "b.tar.xz")

	require.NoError(t, Create(a, root, "pkg"))
	require.NoError(t, Create(b, root, "pkg"))

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestCreate_MissingRoot(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.tar.xz")
	assert.Error(t, Create(dst, filepath.Join(t.TempDir(), "missing"), "pkg"))
	assert.NoFileExists(t, dst)
}

func TestList_NotAnArchive(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bogus.tar.xz")
	require.NoError(t, os.WriteFile(p, []byte("not xz"), 0o644))
	_, err := List(p)
	assert.Error(t, err)
}

func TestCreate_SkipsItselfInsideRoot(t *testing.T) {
	root := stagedTree(t)
	dst := filepath.Join(root, "dist", "out.tar.xz")

	require.NoError(t, Create(dst, root, "pkg"))

	names, err := List(dst)
	require.NoError(t, err)
	assert.NotContains(t, names, "pkg/dist/out.tar.xz")
	assert.Contains(t, names, "pkg/share/jupyter/labextensions/@jupyterlab/fasta-extension/package.json")
}

func TestCreateFiles_PacksOnlyListedFiles(t *testing.T) {
	root := stagedTree(t)
	stray := filepath.Join(root, "share", "stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("left over"), 0o644))
	dst := filepath.Join(t.TempDir(), "out.tar.xz")

	files := []string{
		"share/jupyter/labextensions/@jupyterlab/fasta-extension/static/remoteEntry.js",
		"share/jupyter/labextensions/@jupyterlab/fasta-extension/package.json",
	}
	require.NoError(t, CreateFiles(dst, root, "pkg", files))

	names, err := List(dst)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pkg/",
		"pkg/share/",
		"pkg/share/jupyter/",
		"pkg/share/jupyter/labextensions/",
		"pkg/share/jupyter/labextensions/@jupyterlab/",
		"pkg/share/jupyter/labextensions/@jupyterlab/fasta-extension/",
		"pkg/share/jupyter/labextensions/@jupyterlab/fasta-extension/package.json",
		"pkg/share/jupyter/labextensions/@jupyterlab/fasta-extension/static/",
		"pkg/share/jupyter/labextensions/@jupyterlab/fasta-extension/static/remoteEntry.js",
	}, names)
}

func TestCreateFiles_RejectsEscapingPath(t *testing.T) {
	root := stagedTree(t)
	dst := filepath.Join(t.TempDir(), "out.tar.xz")
	assert.Error(t, CreateFiles(dst, root, "pkg", []string{"../outside.txt"}))
	assert.NoFileExists(t, dst)
}

func TestStep(t *testing.T) {
	root := stagedTree(t)
	dst := filepath.Join(t.TempDir(), "out.tar.xz")

	s := Step(dst, root, "pkg", nil)
	assert.Equal(t, packaging.StepArchive, s.Name)
	assert.Equal(t, []string{packaging.StepDataFiles}, s.Requires)

	require.NoError(t, s.Run(context.Background(), zap.NewNop()))
	assert.FileExists(t, dst)
}

func TestStep_UsesFilesAtRunTime(t *testing.T) {
	root := stagedTree(t)
	dst := filepath.Join(t.TempDir(), "out.tar.xz")

	var staged []string
	s := Step(dst, root, "pkg", func() []string { return staged })
	staged = []string{"share/jupyter/labextensions/@jupyterlab/fasta-extension/install.json"}

	require.NoError(t, s.Run(context.Background(), zap.NewNop()))
	names, err := List(dst)
	require.NoError(t, err)
	assert.Contains(t, names, "pkg/share/jupyter/labextensions/@jupyterlab/fasta-extension/install.json")
	assert.NotContains(t, names, "pkg/share/jupyter/labextensions/@jupyterlab/fasta-extension/package.json")
}
