package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/driver"
	"github.com/vk/contestflow/internal/driver/dummy"
	"github.com/vk/contestflow/internal/driver/local"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	config  *Config
	drivers *driver.Set
}

// Option customizes an App.
type Option func(*App)

// WithDrivers replaces the backend selected by Config.Backend.
func WithDrivers(set *driver.Set) Option {
	return func(a *App) { a.drivers = set }
}

// NewApp is the constructor for the main application. Reports go to outW and
// logs to logW, so a machine-readable report is never interleaved with log
// lines.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		config: cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.drivers == nil {
		a.drivers = newDrivers(cfg)
	}
	return a
}

func newDrivers(cfg *Config) *driver.Set {
	switch cfg.Backend {
	case "dummy":
		return dummy.NewSet()
	case "local":
		return local.NewSet(cfg.Root)
	}
	// NewConfig rejects anything else.
	panic(fmt.Sprintf("unsupported backend %q", cfg.Backend))
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) context(ctx context.Context, runID string) context.Context {
	return ctxlog.With(ctxlog.WithLogger(ctx, a.logger), "run_id", runID)
}
