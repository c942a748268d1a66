package config

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Manager owns the active Config and reloads it whenever the backing
// file changes on disk, so a long-lived SDK instance can pick up a
// rotated API key or a new stream URL without a restart.
type Manager struct {
	log  zerolog.Logger
	path string

	mu      sync.RWMutex
	current *Config

	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

// NewManager loads path (or DefaultConfig if it does not exist) and
// returns a Manager ready to serve Current(). It does not start
// watching until Watch is called.
func NewManager(path string, log zerolog.Logger) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manager{log: log, path: path, current: cfg}, nil
}

// Current returns a snapshot of the active config. The returned pointer
// is never mutated in place; reloads swap it wholesale.
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Watch begins watching the config file's directory for changes and
// reloads on Write/Create events, until ctx is cancelled or Stop is
// called. It watches the directory even when the config file does not
// exist yet, so a file created later is loaded on its Create event; it
// returns an error if the directory itself cannot be watched.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)
	return nil
}

// Stop closes the watcher and waits for the watch loop to exit.
func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	name := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				m.reload()
			}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warn().Err(err).Msg("config watcher error")
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reload() {
	cfg, err := Load(m.path)
	if err != nil {
		m.log.Warn().Err(err).Msg("config reload failed, keeping previous config")
		return
	}
	m.mu.Lock()
	m.current = cfg
	m.mu.Unlock()
	m.log.Info().Msg("config reloaded")
}
