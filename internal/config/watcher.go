package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vyrodovalexey/linkrouter/internal/observability"
)

// DefaultDebounceDelay is how long the watcher waits for writes to
// settle before reloading.
const DefaultDebounceDelay = 100 * time.Millisecond

// ReloadCallback receives every route table that loaded and validated.
type ReloadCallback func(*RouterConfig)

// ErrorCallback receives load, validation and watch errors.
type ErrorCallback func(error)

// Watcher reloads a route table file when it changes.
type Watcher struct {
	path          string
	fsWatcher     *fsnotify.Watcher
	onReload      ReloadCallback
	onError       ErrorCallback
	logger        observability.Logger
	debounceDelay time.Duration
	loader        *Loader
	validator     *Validator

	// target is the file path resolves to through symlinks. Only the
	// watch goroutine reads it after Start.
	target string

	mu        sync.RWMutex
	current   *RouterConfig
	running   bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the debounce delay for file changes.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDelay = delay
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithErrorCallback sets the error callback for the watcher.
func WithErrorCallback(callback ErrorCallback) WatcherOption {
	return func(w *Watcher) {
		w.onError = callback
	}
}

// WithValidator replaces the default validator.
func WithValidator(v *Validator) WatcherOption {
	return func(w *Watcher) {
		w.validator = v
	}
}

// WithLoader replaces the default loader.
func WithLoader(l *Loader) WatcherOption {
	return func(w *Watcher) {
		w.loader = l
	}
}

// NewWatcher creates a watcher for the route table at path.
func NewWatcher(path string, onReload ReloadCallback, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:          absPath,
		fsWatcher:     fsWatcher,
		onReload:      onReload,
		debounceDelay: DefaultDebounceDelay,
		logger:        observability.NopLogger(),
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.loader == nil {
		w.loader = NewLoader()
	}
	if w.validator == nil {
		w.validator = NewValidator()
	}

	return w, nil
}

// Start loads the initial route table and begins watching. The
// initial table is not passed to the reload callback; read it with
// Config.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	cfg, err := w.load()
	if err != nil {
		return err
	}

	// Watch the directory: editors replace files by renaming over them.
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.target = resolveTarget(w.path)

	w.mu.Lock()
	w.current = cfg
	w.running = true
	w.mu.Unlock()

	w.logger.Info("watching route table",
		observability.String("path", w.path),
		observability.Int("routes", len(cfg.Spec.Routes)),
	)

	go w.watch(ctx)

	return nil
}

// Stop stops watching and releases the file watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.fsWatcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh

	return w.fsWatcher.Close()
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Config returns the last route table that loaded and validated.
func (w *Watcher) Config() *RouterConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.stoppedCh)

	var debounce *time.Timer
	var debounceCh <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("route table watcher stopped due to context cancellation")
			return

		case <-w.stopCh:
			w.logger.Info("route table watcher stopped")
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("route table changed",
				observability.String("path", event.Name),
				observability.String("op", event.Op.String()),
			)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(w.debounceDelay)
			debounceCh = debounce.C

		case <-debounceCh:
			debounceCh = nil
			w.reload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("route table watcher error", observability.Error(err))
			w.notifyError(err)
		}
	}
}

// relevant reports whether event changes the route table. Besides
// writes to the file itself this covers removal or rename of the entry
// and a swap of a symlink the path resolves through, as happens when a
// mounted directory is updated through its ..data link.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) == w.path {
		if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
			w.target = resolveTarget(w.path)
			return true
		}
		return false
	}

	target := resolveTarget(w.path)
	if target == w.target {
		return false
	}
	w.target = target
	return true
}

// resolveTarget follows symlinks in path. A path that does not resolve
// is returned unchanged.
func resolveTarget(path string) string {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return target
}

func (w *Watcher) reload() {
	w.logger.Info("reloading route table", observability.String("path", w.path))

	cfg, err := w.load()
	if err != nil {
		w.logger.Error("route table reload failed", observability.Error(err))
		w.notifyError(err)
		return
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info("route table reloaded",
		observability.Int("routes", len(cfg.Spec.Routes)),
	)

	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// ForceReload reloads immediately and invokes the reload callback.
func (w *Watcher) ForceReload() error {
	cfg, err := w.load()
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	if w.onReload != nil {
		w.onReload(cfg)
	}
	return nil
}

func (w *Watcher) load() (*RouterConfig, error) {
	cfg, err := w.loader.Load(w.path)
	if err != nil {
		return nil, err
	}
	if err := w.validator.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (w *Watcher) notifyError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
