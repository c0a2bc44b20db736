package labext

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"regexp"
	"sync"

	"go.yaml.in/yaml/v3"
)

// SourceDir is the directory, relative to the installed Python package, that
// holds the built extensions.
const SourceDir = "labextensions"

//go:embed extensions.yaml
var rawExtensions []byte

// npm package name, optionally scoped.
var namePattern = regexp.MustCompile(`^(@[a-z0-9~-][a-z0-9._~-]*/)?[a-z0-9~-][a-z0-9._~-]*$`)

// Entry identifies one bundled front-end extension. The JSON form is the
// payload the notebook host reads at startup.
type Entry struct {
	Name string `json:"-"`
	Src  string `json:"src"`
	Dest string `json:"dest"`
}

// listFile is the on-disk shape of an extension list.
type listFile struct {
	Extensions []string `yaml:"extensions"`
}

// Registry is a validated, ordered list of extension names.
type Registry struct {
	names []string
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded extension list.
// It panics if the embedded list is invalid.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(rawExtensions)
		if err != nil {
			panic(fmt.Sprintf("labext: embedded extension list: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// ListExtensions returns the manifest entries of the bundled extensions.
func ListExtensions() []Entry {
	return Default().Entries()
}

// Names returns the bundled extension names in declaration order.
func Names() []string {
	return Default().Names()
}

// Load parses and validates a YAML extension list.
func Load(data []byte) (*Registry, error) {
	var lf listFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing extension list: %w", err)
	}
	return New(lf.Extensions)
}

// LoadFile reads an extension list from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extension list %s: %w", path, err)
	}
	r, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// New validates names and returns a registry holding a copy of them.
func New(names []string) (*Registry, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("extension list is empty")
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if !namePattern.MatchString(name) {
			return nil, fmt.Errorf("invalid extension name %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate extension name %q", name)
		}
		seen[name] = true
	}

	r := &Registry{names: make([]string, len(names))}
	copy(r.names, names)
	return r, nil
}

// Names returns a copy of the extension names.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of extensions.
func (r *Registry) Len() int { return len(r.names) }

// Contains reports whether name is in the registry.
func (r *Registry) Contains(name string) bool {
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}

// Entries returns one manifest entry per extension. Dest equals the name, so
// dest uniqueness follows from name uniqueness.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.names))
	for _, name := range r.names {
		entries = append(entries, Entry{
			Name: name,
			Src:  path.Join(SourceDir, name),
			Dest: name,
		})
	}
	return entries
}

// PathsJSON renders the entries as the host discovery payload.
func (r *Registry) PathsJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r.Entries(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling extension paths: %w", err)
	}
	return data, nil
}
