// Package watcher monitors the snapshot inbox directory and imports
// snapshot files dropped into it. Another device exports a snapshot,
// the file lands in the inbox over whatever transport the user has
// (syncthing, scp, a shared folder), and the watcher merges it.
package watcher

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bluestormapp/bluestorm-server/internal/snapshot"
)

// Importer consumes a parsed snapshot. *snapshot.Engine satisfies it.
type Importer interface {
	Import(ctx context.Context, snap *snapshot.Snapshot) error
}

// Options tunes the inbox watcher.
type Options struct {
	// Path is the inbox directory. Created if missing.
	Path string
	// SettleDelay is how long a file must stay unchanged before it is
	// considered fully written. Snapshot files arrive over slow
	// transports, so writes can trickle in.
	SettleDelay time.Duration
	// ArchiveProcessed moves imported files into a processed/
	// subdirectory instead of deleting them.
	ArchiveProcessed bool
}

func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 2 * time.Second
	}
}

// pendingFile tracks an inbox file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// InboxWatcher watches one directory for snapshot files.
type InboxWatcher struct {
	importer Importer
	logger   *slog.Logger
	opts     Options

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates an inbox watcher. The inbox directory is created if it
// does not exist yet.
func New(importer Importer, logger *slog.Logger, opts Options) (*InboxWatcher, error) {
	opts.setDefaults()

	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(opts.Path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch inbox: %w", err)
	}

	return &InboxWatcher{
		importer: importer,
		logger:   logger,
		opts:     opts,
		watcher:  fsw,
		pending:  make(map[string]*pendingFile),
		done:     make(chan struct{}),
	}, nil
}

// Start processes files already in the inbox, then blocks handling
// filesystem events until the context is cancelled.
func (w *InboxWatcher) Start(ctx context.Context) error {
	w.scanExisting(ctx)

	w.wg.Add(1)
	go w.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// Stop releases the watcher's resources.
func (w *InboxWatcher) Stop() error {
	close(w.done)

	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	w.watcher.Close()
	w.wg.Wait()
	return nil
}

// scanExisting imports snapshot files that were dropped into the inbox
// while the server was down.
func (w *InboxWatcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.opts.Path)
	if err != nil {
		w.logger.Error("failed to read inbox", "path", w.opts.Path, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isSnapshotFile(entry.Name()) {
			continue
		}
		w.importFile(ctx, filepath.Join(w.opts.Path, entry.Name()))
	}
}

func (w *InboxWatcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("inbox watch error", "error", err)
		}
	}
}

func (w *InboxWatcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !isSnapshotFile(event.Name) {
		return
	}

	if event.Op&fsnotify.Remove != 0 {
		w.cancelPending(event.Name)
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		w.startSettling(ctx, event.Name)
	}
}

// startSettling arms (or re-arms) the settle timer for a file.
func (w *InboxWatcher) startSettling(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		delete(w.pending, path)
		return
	}

	p := &pendingFile{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		w.checkSettled(ctx, path)
	})
	w.pending[path] = p
}

func (w *InboxWatcher) checkSettled(ctx context.Context, path string) {
	w.mu.Lock()
	p, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != p.size || info.ModTime() != p.modTime {
		// Still being written, wait another round.
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(w.opts.SettleDelay, func() {
			w.checkSettled(ctx, path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()

	w.importFile(ctx, path)
}

func (w *InboxWatcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

// importFile parses and merges one snapshot file, then disposes of it.
// A file that fails to parse or import stays in place with a .failed
// suffix so it is not retried in a loop.
func (w *InboxWatcher) importFile(ctx context.Context, path string) {
	log := w.logger.With("file", filepath.Base(path))

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("failed to read snapshot file", "error", err)
		return
	}

	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Error("snapshot file is not valid JSON", "error", err)
		w.quarantine(path)
		return
	}

	if err := w.importer.Import(ctx, &snap); err != nil {
		log.Error("snapshot import failed", "error", err)
		w.quarantine(path)
		return
	}

	log.Info("snapshot imported from inbox")
	w.dispose(path)
}

func (w *InboxWatcher) dispose(path string) {
	if w.opts.ArchiveProcessed {
		dir := filepath.Join(w.opts.Path, "processed")
		if err := os.MkdirAll(dir, 0o755); err == nil {
			dest := filepath.Join(dir, filepath.Base(path))
			if err := os.Rename(path, dest); err == nil {
				return
			}
		}
	}
	if err := os.Remove(path); err != nil {
		w.logger.Warn("failed to remove processed snapshot", "file", filepath.Base(path), "error", err)
	}
}

func (w *InboxWatcher) quarantine(path string) {
	if err := os.Rename(path, path+".failed"); err != nil {
		w.logger.Warn("failed to quarantine snapshot file", "file", filepath.Base(path), "error", err)
	}
}

func isSnapshotFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".json")
}
