package packaging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Names of the steps in the packaging command graph.
const (
	StepBuild     = "jsdeps"
	StepDataFiles = "data_files"
	StepArchive   = "archive"
)

// Step is one command of the packaging graph.
type Step struct {
	Name     string
	Requires []string
	Run      func(ctx context.Context, log *zap.Logger) error
}

// InstallFunc copies data files into the installation.
type InstallFunc func(ctx context.Context, log *zap.Logger, specs []DataFileSpec) error

// Graph is a set of steps with ordering constraints. Steps are kept in
// insertion order, which breaks ties when ordering.
type Graph struct {
	steps []Step
	index map[string]int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// Add registers a step. Names must be unique.
func (g *Graph) Add(s Step) error {
	if s.Name == "" {
		return fmt.Errorf("step has no name")
	}
	if s.Run == nil {
		return fmt.Errorf("step %q has no run function", s.Name)
	}
	if _, ok := g.index[s.Name]; ok {
		return fmt.Errorf("step %q already registered", s.Name)
	}
	g.index[s.Name] = len(g.steps)
	g.steps = append(g.steps, s)
	return nil
}

// Has reports whether a step named name is registered.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Order returns the step names so that every step follows its requirements.
func (g *Graph) Order() ([]string, error) {
	indegree := make([]int, len(g.steps))
	dependents := make([][]int, len(g.steps))
	for i, s := range g.steps {
		for _, req := range s.Requires {
			j, ok := g.index[req]
			if !ok {
				return nil, fmt.Errorf("step %q requires unknown step %q", s.Name, req)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	order := make([]string, 0, len(g.steps))
	done := make([]bool, len(g.steps))
	for len(order) < len(g.steps) {
		next := -1
		for i := range g.steps {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("dependency cycle among packaging steps")
		}
		done[next] = true
		order = append(order, g.steps[next].Name)
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return order, nil
}

// Run executes the steps in order and stops at the first failure.
func (g *Graph) Run(ctx context.Context, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	order, err := g.Order()
	if err != nil {
		return err
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := g.steps[g.index[name]]
		log.Debug("running step", zap.String("step", name))
		if err := step.Run(ctx, log.With(zap.String("step", name))); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// AssemblePackageCommand composes the build step and the data-file install
// into a graph: jsdeps, then data_files. Nothing is executed.
func AssemblePackageCommand(specs []DataFileSpec, build Step, install InstallFunc) (*Graph, error) {
	if install == nil {
		return nil, fmt.Errorf("no data file installer")
	}

	g := NewGraph()

	build.Name = StepBuild
	build.Requires = nil
	if err := g.Add(build); err != nil {
		return nil, fmt.Errorf("registering build step: %w", err)
	}

	if err := g.Add(Step{
		Name:     StepDataFiles,
		Requires: []string{StepBuild},
		Run: func(ctx context.Context, log *zap.Logger) error {
			return install(ctx, log, specs)
		},
	}); err != nil {
		return nil, err
	}
	return g, nil
}
