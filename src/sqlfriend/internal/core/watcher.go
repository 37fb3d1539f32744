package core

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/atomic"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const _defaultDebounce = 100 * time.Millisecond

// ConfigWatcher re-applies logging.level whenever a file in the config directory changes.
// Events are debounced since editors often write a file in several steps.
type ConfigWatcher struct {
	dir      string
	debounce time.Duration
	level    zap.AtomicLevel
	logger   *zap.SugaredLogger

	watcher  *fsnotify.Watcher
	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// WatcherParams are the dependencies of the config watcher.
type WatcherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Level     zap.AtomicLevel
	Logger    *zap.SugaredLogger
}

// NewConfigWatcher watches the active config directory for the lifetime of the application.
func NewConfigWatcher(p WatcherParams) (*ConfigWatcher, error) {
	w, err := newConfigWatcher(getConfigDir(), _defaultDebounce, p.Level, p.Logger)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return w.Close()
		},
	})
	return w, nil
}

func newConfigWatcher(dir string, debounce time.Duration, level zap.AtomicLevel, logger *zap.SugaredLogger) (*ConfigWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &ConfigWatcher{
		dir:      dir,
		debounce: debounce,
		level:    level,
		logger:   logger.With("component", "config-watcher"),
		watcher:  fsw,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start begins processing file events.
func (w *ConfigWatcher) Start() {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run()
}

func (w *ConfigWatcher) run() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			}

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorw("config watcher error", "error", err)
		}
	}
}

func (w *ConfigWatcher) reload() {
	provider, err := loadConfig(w.dir)
	if err != nil {
		w.logger.Warnw("config reload failed", "dir", w.dir, "error", err)
		return
	}
	cfg, err := loadLoggingConfig(provider)
	if err != nil {
		w.logger.Warnw("config reload failed", "dir", w.dir, "error", err)
		return
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		w.logger.Warnw("invalid log level", "level", cfg.Level, "error", err)
		return
	}
	if level != w.level.Level() {
		w.logger.Infow("log level changed", "from", w.level.Level().String(), "to", level.String())
		w.level.SetLevel(level)
	}
}

// Close stops the watcher and releases resources.
func (w *ConfigWatcher) Close() error {
	w.stopOnce.Do(func() { close(w.stop) })
	err := w.watcher.Close()
	if w.started.Load() {
		<-w.done
	}
	return err
}
