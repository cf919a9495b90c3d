package app

import (
	"context"
	"io"

	"github.com/vk/lfdeploy/internal/config"
	"github.com/vk/lfdeploy/internal/ctxlog"
	"go.uber.org/zap"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger *zap.Logger
	cfg    *Config
	model  *config.Model
	loader config.Loader
}

// NewApp builds the logger and loads the project configuration. Log output
// goes to logW.
func NewApp(logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{logger: logger, cfg: cfg}
	m, err := a.loadModel(ctx)
	if err != nil {
		return nil, err
	}
	a.model = m
	logger.Debug("Configuration loaded.", zap.String("source", m.Source), zap.String("compiler", m.Compiler), zap.String("remote", m.Remote))
	return a, nil
}

// Model returns the merged project configuration.
func (a *App) Model() *config.Model {
	return a.model
}

// Close flushes the logger.
func (a *App) Close() {
	_ = a.logger.Sync()
}
