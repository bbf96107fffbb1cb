package config

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/hearthline/cligate/pkg/provider"
)

// RegistryWatcher keeps a provider.Registry in sync with its backing YAML
// file. A write that fails to parse or validate logs and keeps serving the
// last-good Registry; readers never observe a partially-applied reload.
type RegistryWatcher struct {
	path    string
	current atomic.Pointer[provider.Registry]
	watcher *fsnotify.Watcher
	done    chan struct{}

	subscribersMu sync.Mutex
	subscribers   []func(*provider.Registry)
}

// NewRegistryWatcher loads path, builds its initial Registry, and starts
// watching the file for subsequent writes.
func NewRegistryWatcher(path string) (*RegistryWatcher, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	reg, err := provider.NewRegistry(cfg.Providers)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}

	rw := &RegistryWatcher{path: path, watcher: w, done: make(chan struct{})}
	rw.current.Store(reg)
	go rw.run()
	return rw, nil
}

// Registry returns the current, lock-free-readable Registry.
func (rw *RegistryWatcher) Registry() *provider.Registry {
	return rw.current.Load()
}

// OnChange registers fn to run with every successfully reloaded Registry,
// letting callers such as a provider.Dispatcher hot-swap their own
// reference (supplemented feature: registry hot-reload). fn is not called
// for the initial load; read Registry() for that.
func (rw *RegistryWatcher) OnChange(fn func(*provider.Registry)) {
	rw.subscribersMu.Lock()
	defer rw.subscribersMu.Unlock()
	rw.subscribers = append(rw.subscribers, fn)
}

func (rw *RegistryWatcher) run() {
	for {
		select {
		case ev, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			rw.reload()
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("config watcher error", "path", rw.path, "error", err)
		case <-rw.done:
			return
		}
	}
}

func (rw *RegistryWatcher) reload() {
	cfg, err := LoadConfig(rw.path)
	if err != nil {
		slog.Error("config reload failed, keeping previous registry", "path", rw.path, "error", err)
		return
	}
	reg, err := provider.NewRegistry(cfg.Providers)
	if err != nil {
		slog.Error("config reload produced an invalid registry, keeping previous", "path", rw.path, "error", err)
		return
	}
	rw.current.Store(reg)
	slog.Info("provider registry reloaded", "providers", len(reg.ListProviders()), "models", len(reg.ListModels()))

	rw.subscribersMu.Lock()
	subscribers := append([]func(*provider.Registry){}, rw.subscribers...)
	rw.subscribersMu.Unlock()
	for _, fn := range subscribers {
		fn(reg)
	}
}

// Close stops the watcher goroutine and releases the fsnotify handle.
func (rw *RegistryWatcher) Close() error {
	close(rw.done)
	return rw.watcher.Close()
}
