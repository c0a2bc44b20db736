package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// lockFiles are compared with node_modules to decide whether an install is due.
var lockFiles = []string{"package.json", "yarn.lock", "package-lock.json"}

// PackageManager runs `<name> install` followed by `<name> run <script>` in
// the project root.
type PackageManager struct {
	Name   string // executable name, e.g. "jlpm"
	Dir    string // project root holding package.json
	Script string // build script, defaults to DefaultBuildScript

	// ForceInstall runs the install step even when node_modules is current.
	ForceInstall bool

	// Stdout and Stderr can be set for testing; default to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	Log    *zap.Logger
}

// Build installs dependencies if needed and runs the build script.
func (p *PackageManager) Build(ctx context.Context) error {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := os.Stat(filepath.Join(p.Dir, "package.json")); err != nil {
		return fmt.Errorf("no package.json in %s: %w", p.Dir, err)
	}

	bin, err := exec.LookPath(p.Name)
	if err != nil {
		return fmt.Errorf("package manager %q not found: %w", p.Name, err)
	}

	if p.ForceInstall || ShouldInstall(p.Dir) {
		log.Info("installing JavaScript dependencies", zap.String("manager", p.Name), zap.String("dir", p.Dir))
		if err := p.check(p.Run(ctx, bin, "install")); err != nil {
			return err
		}
	} else {
		log.Debug("node_modules up to date, skipping install")
	}

	script := p.Script
	if script == "" {
		script = DefaultBuildScript
	}
	log.Info("running build script", zap.String("manager", p.Name), zap.String("script", script))
	return p.check(p.Run(ctx, bin, "run", script))
}

// Run executes bin with args in the project root, streaming output to the
// configured writers. A non-zero exit is reported in Output, not as an error.
func (p *PackageManager) Run(ctx context.Context, bin string, args ...string) (*Output, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = p.Dir

	stdout := p.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := p.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	err := cmd.Run()

	output := &Output{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			output.ExitCode = exitErr.ExitCode()
			return output, nil
		}
		return output, fmt.Errorf("executing %s %s: %w", p.Name, strings.Join(args, " "), err)
	}

	return output, nil
}

// check turns a non-zero exit into an error carrying the tail of stderr.
func (p *PackageManager) check(out *Output, err error) error {
	if err != nil {
		return err
	}
	if out.ExitCode != 0 {
		msg := lastLine(out.Stderr)
		if msg == "" {
			return fmt.Errorf("%s exited with status %d", p.Name, out.ExitCode)
		}
		return fmt.Errorf("%s exited with status %d: %s", p.Name, out.ExitCode, msg)
	}
	return nil
}

// ShouldInstall reports whether dependencies in dir need installing:
// node_modules is missing or older than package.json or a lock file.
func ShouldInstall(dir string) bool {
	modules, err := os.Stat(filepath.Join(dir, "node_modules"))
	if err != nil {
		return true
	}
	for _, name := range lockFiles {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if info.ModTime().After(modules.ModTime()) {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
