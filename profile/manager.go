package profile

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrProfileNotFound is returned by Get for an unknown profile name.
var ErrProfileNotFound = errors.New("profile not found")

//go:embed defaults/*.yaml
var defaults embed.FS

// Manager holds the known profiles by name.
type Manager struct {
	profiles map[string]Profile
	sources  map[string]string
}

// NewManager creates a manager with the built-in profiles.
func NewManager() (*Manager, error) {
	m := NewEmptyManager()
	if err := m.loadFS(defaults, "defaults", "builtin:"); err != nil {
		return nil, err
	}
	return m, nil
}

// NewEmptyManager creates a manager without any profile.
func NewEmptyManager() *Manager {
	return &Manager{
		profiles: make(map[string]Profile),
		sources:  make(map[string]string),
	}
}

// LoadDir reads every .yaml and .yml file in dir. A profile with the name
// of an existing one replaces it.
func (m *Manager) LoadDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("profile directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("profile directory %s is not a directory", dir)
	}
	return m.loadFS(os.DirFS(dir), ".", dir+string(filepath.Separator))
}

func (m *Manager) loadFS(fsys fs.FS, dir, origin string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read profiles: %w", err)
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("read profile %s: %w", e.Name(), err)
		}
		p, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		m.profiles[p.Name] = p
		m.sources[p.Name] = origin + e.Name()
	}
	return nil
}

// Add registers or replaces a profile.
func (m *Manager) Add(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.profiles[p.Name] = p
	m.sources[p.Name] = "runtime"
	return nil
}

// Get returns the profile named name.
func (m *Manager) Get(name string) (Profile, error) {
	p, ok := m.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}
	return p, nil
}

// Source returns where a profile was loaded from.
func (m *Manager) Source(name string) string {
	return m.sources[name]
}

// Names returns the profile names in sorted order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.profiles))
	for n := range m.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
