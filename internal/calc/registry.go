package calc

import (
	"fmt"
	"sort"
)

// CurrentVersion is the version string resolved when no explicit version is
// requested.
const CurrentVersion = "current"

// Registry owns the mapping from version string to calculation version.
// It is populated once at startup and read-only afterwards, so concurrent
// reads need no locking. Construct one per process (or per test) and pass
// it by reference; there is no package-level instance.
type Registry struct {
	versions map[string]*Version
	current  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{versions: make(map[string]*Version)}
}

// NewDefaultRegistry creates a registry with the built-in 1.0.0 version
// registered as current.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.Register(NewVersion100()); err != nil {
		panic(err)
	}
	return r
}

// Register adds a version. The first registered version becomes current;
// re-registering a version string is an error (versions are added, never
// edited).
func (r *Registry) Register(v *Version) error {
	if v == nil || v.Version == "" {
		return fmt.Errorf("calculation version must be named")
	}
	if v.Set == nil {
		return fmt.Errorf("calculation version %q has no formula set", v.Version)
	}
	if _, exists := r.versions[v.Version]; exists {
		return fmt.Errorf("calculation version %q already registered", v.Version)
	}
	r.versions[v.Version] = v
	if r.current == "" {
		r.current = v.Version
	}
	return nil
}

// SetCurrent switches the version resolved for unpinned calculations.
func (r *Registry) SetCurrent(version string) error {
	if _, ok := r.versions[version]; !ok {
		return versionNotFound(version)
	}
	r.current = version
	return nil
}

// Get returns the requested version. Empty string and "current" resolve to
// the current version. Unregistered versions return NotFoundError.
func (r *Registry) Get(version string) (*Version, error) {
	if version == "" || version == CurrentVersion {
		version = r.current
	}
	v, ok := r.versions[version]
	if !ok {
		return nil, versionNotFound(version)
	}
	return v, nil
}

// Versions lists registered version strings in sorted order.
func (r *Registry) Versions() []string {
	out := make([]string, 0, len(r.versions))
	for v := range r.versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
