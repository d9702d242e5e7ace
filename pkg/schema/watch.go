package schema

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// DefaultDebounce is how long Watcher waits for file events to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher serves the schemas of a file or directory, as Load reads them,
// and reloads them when the files change. A reload that fails keeps the
// previous schemas.
type Watcher struct {
	path     string
	isDir    bool
	debounce time.Duration
	log      *slog.Logger
	hooks    []func(*Static, error)
	current  atomic.Pointer[Static]
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload. Non-positive values are ignored.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatcherLogger sets the logger. Nil is ignored.
func WithWatcherLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithReloadHook registers fn, called after every reload attempt with the
// new schemas or the load error.
func WithReloadHook(fn func(*Static, error)) WatcherOption {
	return func(w *Watcher) {
		if fn != nil {
			w.hooks = append(w.hooks, fn)
		}
	}
}

// NewWatcher loads path. Call Run to start watching it.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadSchema, err)
	}
	static, err := Load(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		isDir:    info.IsDir(),
		debounce: DefaultDebounce,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.current.Store(static)
	return w, nil
}

func (w *Watcher) FieldsInfo(ctx context.Context, entityType, bundle string) ([]validator.FieldSpec, error) {
	return w.current.Load().FieldsInfo(ctx, entityType, bundle)
}

// Current returns the schemas being served.
func (w *Watcher) Current() *Static {
	return w.current.Load()
}

// Run watches the schema files until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(ErrWatchFailed, err)
	}
	defer fw.Close()

	// Editors replace files by rename, so a single file is watched through its directory.
	dir := w.path
	if !w.isDir {
		dir = filepath.Dir(w.path)
	}
	if err := fw.Add(dir); err != nil {
		return errors.Join(ErrWatchFailed, err)
	}
	w.log.InfoContext(ctx, "watching schema files", slog.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.DebugContext(ctx, "schema file changed",
				slog.String("file", ev.Name),
				slog.String("op", ev.Op.String()),
			)
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnContext(ctx, "schema watcher error", logger.Error(err))

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(ev.Name)
	if !w.isDir {
		return name == w.path
	}
	base := filepath.Base(name)
	return !strings.HasPrefix(base, ".") && isSchemaFile(base)
}

func (w *Watcher) reload(ctx context.Context) {
	static, err := Load(w.path)
	if err != nil {
		w.log.WarnContext(ctx, "schema reload failed, keeping previous schemas", logger.Error(err))
	} else {
		w.current.Store(static)
		w.log.InfoContext(ctx, "schemas reloaded", slog.Int("schemas", len(static.Keys())))
	}
	for _, fn := range w.hooks {
		fn(static, err)
	}
}
