package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/ayusman/rasoi/internal/logging"
)

// ErrPluginNotFound is returned by Get for unknown names.
var ErrPluginNotFound = errors.New("plugin not found")

// Manager holds the plugins found under one directory.
type Manager struct {
	pluginDir string

	mu      sync.RWMutex
	plugins map[string]*Plugin
}

func NewManager(pluginDir string) *Manager {
	return &Manager{
		pluginDir: pluginDir,
		plugins:   make(map[string]*Plugin),
	}
}

// Discover rescans the directory. Every subdirectory with a readable
// plugin.json becomes a plugin; broken manifests are logged and skipped.
// A missing directory is not an error.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Plugin)

	info, err := os.Stat(m.pluginDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.pluginDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(m.pluginDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(dir, "plugin.json"))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			logging.Warn().Err(err).Str("dir", dir).Msg("skipping plugin: unreadable manifest")
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			logging.Warn().Err(err).Str("dir", dir).Msg("skipping plugin: invalid manifest")
			continue
		}
		if manifest.Name == "" || manifest.Executable == "" {
			logging.Warn().Str("dir", dir).Msg("skipping plugin: manifest needs name and executable")
			continue
		}

		m.plugins[manifest.Name] = &Plugin{
			Manifest:   manifest,
			Path:       dir,
			Executable: filepath.Join(dir, manifest.Executable),
		}
		logging.Debug().Str("plugin", manifest.Name).Str("version", manifest.Version).Msg("plugin discovered")
	}

	return nil
}

func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return p, nil
}

// List returns the plugins sorted by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Plugin, 0, len(m.plugins))
	for _, p := range m.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Manifest.Name < out[j].Manifest.Name })
	return out
}

func (m *Manager) PluginDir() string {
	return m.pluginDir
}
