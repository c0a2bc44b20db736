// Package archive writes and reads the .tar.xz distribution archive built
// from a staged installation tree.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/jupyterlab/labpack/internal/packaging"
	"github.com/ulikunitz/xz"
	"go.uber.org/zap"
)

// Ext is the archive file extension.
const Ext = ".tar.xz"

// FileName returns the archive name for a distribution version. The version
// must be valid semver.
func FileName(pkg, version string) (string, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", version, err)
	}
	return pkg + "-" + v.String() + Ext, nil
}

// entryTime is the modification time stamped on every entry, honouring
// SOURCE_DATE_EPOCH for reproducible builds.
func entryTime() time.Time {
	if v := os.Getenv("SOURCE_DATE_EPOCH"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
	}
	return time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
}

// Create writes root as a .tar.xz archive at dst, with every entry placed
// under prefix/. Entries are written in lexical order. dst itself is never
// packed, even when it lies inside root.
func Create(dst, root, prefix string) error {
	return create(dst, root, func(tw *tar.Writer, self os.FileInfo, mtime time.Time) error {
		return writeTree(tw, root, prefix, self, mtime)
	})
}

// CreateFiles is like Create but packs only files, given as slash-separated
// paths relative to root, together with their parent directories.
func CreateFiles(dst, root, prefix string, files []string) error {
	return create(dst, root, func(tw *tar.Writer, _ os.FileInfo, mtime time.Time) error {
		return writeFiles(tw, root, prefix, files, mtime)
	})
}

func create(dst, root string, write func(*tar.Writer, os.FileInfo, time.Time) error) (err error) {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("archive root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root %s is not a directory", root)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", dst, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	self, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive %s: %w", dst, err)
	}

	xw, err := xz.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	if err := write(tw, self, entryTime()); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("finishing tar stream: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("finishing xz stream: %w", err)
	}
	return nil
}

func dirHeader(name string, mtime time.Time) *tar.Header {
	return &tar.Header{
		Typeflag: tar.TypeDir,
		Name:     name + "/",
		Mode:     0o755,
		ModTime:  mtime,
		Format:   tar.FormatPAX,
	}
}

func writeFile(tw *tar.Writer, name, p string, info os.FileInfo, mtime time.Time) error {
	if err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     int64(info.Mode().Perm()),
		Size:     info.Size(),
		ModTime:  mtime,
		Format:   tar.FormatPAX,
	}); err != nil {
		return err
	}
	return copyInto(tw, p)
}

func writeTree(tw *tar.Writer, root, prefix string, self os.FileInfo, mtime time.Time) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := path.Join(prefix, filepath.ToSlash(rel))

		switch {
		case d.IsDir():
			if rel == "." && prefix == "" {
				return nil
			}
			return tw.WriteHeader(dirHeader(name, mtime))
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			if os.SameFile(info, self) {
				return nil
			}
			return writeFile(tw, name, p, info, mtime)
		default:
			return nil
		}
	})
}

func writeFiles(tw *tar.Writer, root, prefix string, files []string, mtime time.Time) error {
	sorted := slices.Clone(files)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	written := make(map[string]bool)
	var dir func(rel string) error
	dir = func(rel string) error {
		if written[rel] || (rel == "." && prefix == "") {
			return nil
		}
		if rel != "." {
			if err := dir(path.Dir(rel)); err != nil {
				return err
			}
		}
		written[rel] = true
		return tw.WriteHeader(dirHeader(path.Join(prefix, rel), mtime))
	}

	for _, rel := range sorted {
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			return fmt.Errorf("archive entry %q escapes %s", rel, root)
		}
		if err := dir(path.Dir(rel)); err != nil {
			return err
		}
		p := filepath.Join(root, filepath.FromSlash(rel))
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("archive entry: %w", err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("archive entry %s is not a regular file", p)
		}
		if err := writeFile(tw, path.Join(prefix, rel), p, info, mtime); err != nil {
			return err
		}
	}
	return nil
}

func copyInto(w io.Writer, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// List returns the entry names of a .tar.xz archive in stored order.
func List(src string) ([]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading xz stream: %w", err)
	}
	tr := tar.NewReader(xr)

	var names []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar entry: %w", err)
		}
		names = append(names, hdr.Name)
	}
	return names, nil
}

// Step returns the packaging step that archives the staged prefix after the
// data files are installed. When files is non-nil only the paths it returns
// at run time are packed; otherwise the whole of root is.
func Step(dst, root, prefix string, files func() []string) packaging.Step {
	return packaging.Step{
		Name:     packaging.StepArchive,
		Requires: []string{packaging.StepDataFiles},
		Run: func(ctx context.Context, log *zap.Logger) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			if files != nil {
				err = CreateFiles(dst, root, prefix, files())
			} else {
				err = Create(dst, root, prefix)
			}
			if err != nil {
				return err
			}
			log.Info("wrote archive", zap.String("path", dst))
			return nil
		},
	}
}
