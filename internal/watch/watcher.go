// Package watch analyzes contracts as they appear or change in a directory.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const eventBuffer = 256

// Config configures directory watching
type Config struct {
	Debounce     time.Duration
	Extensions   []string
	ExcludeDirs  []string
	IgnorePaths  []string // files under these paths never produce events (report output)
	ScanExisting bool     // emit an event for every supported file already present at Start
}

// DefaultConfig watches every format the loader reads
func DefaultConfig() Config {
	return Config{
		Debounce:    500 * time.Millisecond,
		Extensions:  []string{".txt", ".md", ".docx", ".pdf", ".html", ".htm"},
		ExcludeDirs: []string{".git", "node_modules"},
	}
}

// Operation is the kind of change that triggered an event
type Operation string

const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
)

// Event is a supported file whose content changed
type Event struct {
	Path      string
	Operation Operation
}

// Watcher emits debounced, content-deduplicated file events
type Watcher struct {
	config     Config
	dir        string
	fsw        *fsnotify.Watcher
	logger     *slog.Logger
	extensions map[string]bool
	excludes   map[string]bool
	ignore     []string

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events  chan Event
	dropped atomic.Int64
}

// New creates a watcher for dir
func New(config Config, dir string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultConfig().Extensions
	}

	extensions := make(map[string]bool)
	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[strings.ToLower(ext)] = true
	}
	excludes := make(map[string]bool)
	for _, d := range config.ExcludeDirs {
		excludes[d] = true
	}
	var ignore []string
	for _, p := range config.IgnorePaths {
		if abs, err := filepath.Abs(p); err == nil {
			ignore = append(ignore, abs)
		}
	}

	return &Watcher{
		config:     config,
		dir:        dir,
		fsw:        fsw,
		logger:     logger,
		extensions: extensions,
		excludes:   excludes,
		ignore:     ignore,
		pending:    make(map[string]fsnotify.Op),
		hashes:     make(map[string]string),
		events:     make(chan Event, eventBuffer),
	}, nil
}

// Events returns the event channel; it is closed when the watcher stops
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start adds recursive watches and begins processing until ctx is done
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.walk(w.dir, true); err != nil {
		return err
	}

	go w.run(ctx)

	w.logger.Info("watching for contracts",
		"dir", w.dir,
		"debounce", w.config.Debounce,
		"extensions", w.config.Extensions)
	return nil
}

// Stop closes the underlying fsnotify watcher
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

// Dropped returns the number of events lost to a full channel
func (w *Watcher) Dropped() int64 {
	return w.dropped.Load()
}

// walk watches every directory under root and records existing file hashes.
// With ScanExisting those files are queued for the first flush.
func (w *Watcher) walk(root string, initial bool) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && w.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			if w.ignored(path) {
				return filepath.SkipDir
			}
			if err := w.fsw.Add(path); err != nil {
				w.logger.Warn("failed to watch directory", "path", path, "error", err)
			}
			return nil
		}

		if !w.supported(path) {
			return nil
		}
		if initial && !w.config.ScanExisting {
			if hash, err := fileHash(path); err == nil {
				w.setHash(path, hash)
			}
			return nil
		}
		w.queue(path, fsnotify.Create)
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if w.ignored(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if !w.skipDir(filepath.Base(ev.Name)) {
				// files copied in together with the directory are picked up here
				if err := w.walk(ev.Name, false); err != nil {
					w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
				}
			}
			return
		}
	}

	if !w.supported(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.hashMu.Lock()
		delete(w.hashes, ev.Name)
		w.hashMu.Unlock()
		return
	}

	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
		w.queue(ev.Name, ev.Op)
		w.logger.Debug("contract change detected", "path", ev.Name, "op", ev.Op.String())
	}
}

func (w *Watcher) queue(path string, op fsnotify.Op) {
	w.pendingMu.Lock()
	w.pending[path] |= op
	w.pendingMu.Unlock()
}

// flush emits one event per pending file whose content hash changed
func (w *Watcher) flush(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range batch {
		if ctx.Err() != nil {
			return
		}

		hash, err := fileHash(path)
		if err != nil {
			if !os.IsNotExist(err) {
				w.logger.Warn("failed to read changed file", "path", path, "error", err)
			}
			continue
		}

		w.hashMu.Lock()
		old, seen := w.hashes[path]
		w.hashes[path] = hash
		w.hashMu.Unlock()

		if seen && old == hash {
			continue
		}

		event := Event{Path: path, Operation: OpModify}
		if !seen || op.Has(fsnotify.Create) {
			event.Operation = OpCreate
		}
		w.send(event)
	}
}

func (w *Watcher) send(event Event) {
	select {
	case w.events <- event:
	default:
		n := w.dropped.Add(1)
		w.logger.Warn("event channel full, dropping event", "path", event.Path, "total_dropped", n)
	}
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	w.hashes[path] = hash
	w.hashMu.Unlock()
}

func (w *Watcher) supported(path string) bool {
	base := filepath.Base(path)
	// editor swap and lock files
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))] && !w.ignored(path)
}

func (w *Watcher) skipDir(name string) bool {
	return w.excludes[name] || (strings.HasPrefix(name, ".") && name != ".")
}

func (w *Watcher) ignored(path string) bool {
	if len(w.ignore) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, prefix := range w.ignore {
		if abs == prefix || strings.HasPrefix(abs, prefix+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
