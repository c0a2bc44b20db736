package stage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jupyterlab/labpack/internal/packaging"
	"go.uber.org/zap"
)

// excludedNames are never copied into the installation.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// Record lists installed files relative to the prefix, slash-separated and sorted.
type Record []string

// Install copies every spec into prefix. A spec whose source directory is
// missing, or whose pattern matches nothing, is an error.
func Install(prefix string, specs []packaging.DataFileSpec) (Record, error) {
	var rec Record
	for _, spec := range specs {
		files, err := installSpec(prefix, spec)
		if err != nil {
			return nil, err
		}
		rec = append(rec, files...)
	}
	sort.Strings(rec)
	return rec, nil
}

// RecordFile, at the prefix root, lists the files the last Installer run
// staged, one slash-separated path per line.
const RecordFile = ".labpack-record"

// ReadRecord returns the record left in prefix by a previous Installer run,
// or nil when there is none.
func ReadRecord(prefix string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(prefix, RecordFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading install record: %w", err)
	}
	var rec Record
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(line)) {
			return nil, fmt.Errorf("install record entry %q escapes %s", line, prefix)
		}
		rec = append(rec, line)
	}
	return rec, nil
}

func writeRecord(prefix string, rec Record) error {
	var b strings.Builder
	for _, f := range rec {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(prefix, RecordFile), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing install record: %w", err)
	}
	return nil
}

// Installer adapts Install to a packaging graph step. Files staged by the
// previous run (per RecordFile) and the spec target directories are removed
// first, so an extension dropped from the list does not linger in prefix.
// When rec is non-nil it receives the files this run staged.
func Installer(prefix string, rec *Record) packaging.InstallFunc {
	return func(ctx context.Context, log *zap.Logger, specs []packaging.DataFileSpec) error {
		if log == nil {
			log = zap.NewNop()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		previous, err := ReadRecord(prefix)
		if err != nil {
			return err
		}
		if err := removeFiles(prefix, previous); err != nil {
			return err
		}
		log.Debug("removed previously staged files", zap.Int("files", len(previous)))

		cleaned := make(map[string]bool)
		for _, spec := range specs {
			if cleaned[spec.TargetDir] {
				continue
			}
			cleaned[spec.TargetDir] = true
			if err := Remove(prefix, spec.TargetDir); err != nil && !os.IsNotExist(err) {
				return err
			}
		}

		staged, err := Install(prefix, specs)
		if err != nil {
			return err
		}
		if err := writeRecord(prefix, staged); err != nil {
			return err
		}
		if rec != nil {
			*rec = staged
		}
		log.Info("staged data files", zap.String("prefix", prefix), zap.Int("files", len(staged)))
		return nil
	}
}

// removeFiles deletes recorded files and any directories they leave empty,
// stopping at prefix.
func removeFiles(prefix string, rec Record) error {
	root := filepath.Clean(prefix)
	for _, rel := range rec {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
		for dir := filepath.Dir(p); dir != root && strings.HasPrefix(dir, root); dir = filepath.Dir(dir) {
			if os.Remove(dir) != nil {
				break
			}
		}
	}
	return nil
}

// Remove deletes an installed target directory below prefix. It returns an
// error satisfying os.IsNotExist when nothing is installed there.
func Remove(prefix, targetDir string) error {
	dir := filepath.Join(prefix, filepath.FromSlash(targetDir))

	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}

func installSpec(prefix string, spec packaging.DataFileSpec) ([]string, error) {
	info, err := os.Stat(spec.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("data files source %s: %w", spec.SourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data files source %s is not a directory", spec.SourceDir)
	}

	dst := filepath.Join(prefix, filepath.FromSlash(spec.TargetDir))

	var files []string
	if spec.Pattern == packaging.PatternAll {
		files, err = copyDir(spec.SourceDir, dst)
	} else {
		files, err = copyMatches(spec.SourceDir, dst, spec.Pattern)
	}
	if err != nil {
		return nil, fmt.Errorf("copying %s/%s to %s: %w", spec.SourceDir, spec.Pattern, dst, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %q in %s", spec.Pattern, spec.SourceDir)
	}

	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(prefix, f)
		if err != nil {
			return nil, err
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	return rel, nil
}

// copyMatches copies regular files at the top level of src whose names match
// pattern.
func copyMatches(src, dst, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || shouldExclude(entry.Name()) {
			continue
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
			continue
		}
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return nil, err
		}
		target := filepath.Join(dst, entry.Name())
		if err := copyFile(filepath.Join(src, entry.Name()), target); err != nil {
			return nil, err
		}
		written = append(written, target)
	}
	return written, nil
}

// copyDir recursively copies src to dst, excluding entries in excludedNames.
func copyDir(src, dst string) ([]string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, entry := range entries {
		if shouldExclude(entry.Name()) {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			files, err := copyDir(srcPath, dstPath)
			if err != nil {
				return nil, err
			}
			written = append(written, files...)
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, dstPath); err != nil {
				return nil, err
			}
			written = append(written, dstPath)
		}
		// Symlinks and special files are not packaged.
	}

	return written, nil
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	return os.WriteFile(dst, data, srcInfo.Mode().Perm())
}

func shouldExclude(name string) bool {
	return excludedNames[name]
}
