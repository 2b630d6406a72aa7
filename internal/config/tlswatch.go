package config

import (
	"crypto/tls"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stlalpha/mudnet/internal/logging"
)

// TLSWatcher hot-reloads a certificate/key pair from disk and serves the
// current one through GetCertificate, so a *tls.Config built once at
// startup keeps working after an operator rotates the files in place.
type TLSWatcher struct {
	keyPath string
	pemPath string
	cert    atomic.Pointer[tls.Certificate]
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewTLSWatcher loads cfg.Key/cfg.Pem once and starts watching both
// files' directory for changes.
func NewTLSWatcher(cfg TLSConfig) (*TLSWatcher, error) {
	w := &TLSWatcher{keyPath: cfg.Key, pemPath: cfg.Pem, done: make(chan struct{})}
	if err := w.reload(); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tlswatch: create watcher: %w", err)
	}
	w.watcher = fw

	for _, dir := range uniqueDirs(cfg.Key, cfg.Pem) {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("tlswatch: watch %s: %w", dir, err)
		}
	}

	go w.watchLoop()
	return w, nil
}

// GetCertificate is suitable for tls.Config.GetCertificate; it always
// returns whatever certificate was most recently loaded.
func (w *TLSWatcher) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cert := w.cert.Load()
	if cert == nil {
		return nil, fmt.Errorf("tlswatch: no certificate loaded")
	}
	return cert, nil
}

// Close stops the background watch goroutine.
func (w *TLSWatcher) Close() error {
	close(w.done)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *TLSWatcher) reload() error {
	cert, err := tls.LoadX509KeyPair(w.pemPath, w.keyPath)
	if err != nil {
		return fmt.Errorf("tlswatch: load key pair: %w", err)
	}
	w.cert.Store(&cert)
	return nil
}

func (w *TLSWatcher) watchLoop() {
	var debounce *time.Timer
	const debounceDuration = 500 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.keyPath && event.Name != w.pemPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDuration, func() {
				if err := w.reload(); err != nil {
					logging.Error("tls: reload %s/%s failed: %v", w.pemPath, w.keyPath, err)
					return
				}
				logging.Info("tls: certificate reloaded from %s", w.pemPath)
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("tls: watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

func uniqueDirs(paths ...string) []string {
	seen := make(map[string]struct{}, len(paths))
	var dirs []string
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}
