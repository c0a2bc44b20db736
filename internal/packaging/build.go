package packaging

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Builder runs the external dependency-install-and-build command. One
// invocation is expected to produce every build target.
type Builder interface {
	Build(ctx context.Context) error
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context) error

// Build calls f(ctx).
func (f BuilderFunc) Build(ctx context.Context) error { return f(ctx) }

// BuildFailure is returned when the build command fails or leaves targets
// missing. It is fatal to a packaging run.
type BuildFailure struct {
	Missing []string // target paths still absent after the build
	Err     error    // error from the build command, if any
}

func (e *BuildFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("build failed: %v", e.Err)
	}
	return fmt.Sprintf("build failed: missing targets: %s", strings.Join(e.Missing, ", "))
}

func (e *BuildFailure) Unwrap() error { return e.Err }

// MissingTargets returns the paths of targets that do not exist.
func MissingTargets(targets []BuildTarget) []string {
	var missing []string
	for _, t := range targets {
		if _, err := os.Stat(t.Path); err != nil {
			missing = append(missing, t.Path)
		}
	}
	return missing
}

// EnsureBuilt runs b once if any target is missing, then requires every
// target to exist. It does nothing when all targets are already present.
func EnsureBuilt(ctx context.Context, log *zap.Logger, targets []BuildTarget, b Builder) error {
	if log == nil {
		log = zap.NewNop()
	}

	missing := MissingTargets(targets)
	if len(missing) == 0 {
		log.Debug("all build targets present", zap.Int("targets", len(targets)))
		return nil
	}

	log.Info("build targets missing, running build",
		zap.Int("missing", len(missing)),
		zap.Int("targets", len(targets)))

	if err := b.Build(ctx); err != nil {
		return &BuildFailure{Err: err}
	}

	if missing := MissingTargets(targets); len(missing) > 0 {
		return &BuildFailure{Missing: missing}
	}

	log.Info("build complete", zap.Int("targets", len(targets)))
	return nil
}

// EnsureTargetsStep returns a build step that always runs EnsureBuilt.
func EnsureTargetsStep(targets []BuildTarget, b Builder) Step {
	return Step{
		Name: StepBuild,
		Run: func(ctx context.Context, log *zap.Logger) error {
			return EnsureBuilt(ctx, log, targets, b)
		},
	}
}

// SkipIfExists wraps step so that it is skipped entirely when every target
// already exists.
func SkipIfExists(targets []BuildTarget, step Step) Step {
	run := step.Run
	step.Run = func(ctx context.Context, log *zap.Logger) error {
		if log == nil {
			log = zap.NewNop()
		}
		if len(MissingTargets(targets)) == 0 {
			log.Info("skipping step, targets already exist", zap.Int("targets", len(targets)))
			return nil
		}
		return run(ctx, log)
	}
	return step
}

// NewBuildStep returns the build step for the given mode. In release mode the
// step is skipped when the prebuilt targets are already present, so a release
// tree can be packaged without the JavaScript toolchain.
func NewBuildStep(mode Mode, targets []BuildTarget, b Builder) Step {
	step := EnsureTargetsStep(targets, b)
	if mode == ModeRelease {
		return SkipIfExists(targets, step)
	}
	return step
}
