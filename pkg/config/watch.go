package config

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrRestartRequired is reported by a Watcher reload attempt when the new
// file changes a field that can't be applied without rebinding the listener
// (listen address) or relocating on-disk state (state directory).
var ErrRestartRequired = errors.New("config: change requires a restart (listen address or state directory)")

// Watcher reloads a config file when it changes and passes the result to
// OnReload. A reload that changes the listen address or the state directory
// is reported via OnError as ErrRestartRequired and not passed on; any other
// change reaches OnReload, which decides what to apply.
type Watcher struct {
	path     string
	fw       *fsnotify.Watcher
	done     chan struct{}
	OnReload func(cfg *Config)
	OnError  func(err error)
}

// NewWatcher starts watching path's containing directory (so editor
// save-by-rename patterns are still observed) for changes, debounces bursts
// of events, and invokes OnReload with the newly loaded Config after each
// write, create or rename of the file. baseline is compared against to
// reject restart-requiring edits.
func NewWatcher(path string, baseline *Config) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path: path,
		fw:   fw,
		done: make(chan struct{}),
	}

	go w.loop(path, baseline)

	return w, nil
}

func (w *Watcher) loop(path string, baseline *Config) {
	var debounce *time.Timer
	reload := func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			if w.OnError != nil {
				w.OnError(err)
			}
			return
		}
		if restartRequired(baseline, cfg) {
			if w.OnError != nil {
				w.OnError(ErrRestartRequired)
			}
			return
		}
		if w.OnReload != nil {
			w.OnReload(cfg)
		}
	}

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, reload)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		case <-w.done:
			return
		}
	}
}

// restartRequired reports whether cfg changes a field that cannot be
// hot-applied relative to baseline.
func restartRequired(baseline, cfg *Config) bool {
	return baseline.Proxy.Host != cfg.Proxy.Host ||
		baseline.Proxy.Port != cfg.Proxy.Port ||
		baseline.Lifecycle.StateDir != cfg.Lifecycle.StateDir
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}
