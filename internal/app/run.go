package app

import (
	"context"

	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fault"
	"github.com/vk/lfdeploy/internal/model"
	"github.com/vk/lfdeploy/internal/notify"
	"github.com/vk/lfdeploy/internal/pipeline"
	"go.uber.org/zap"
)

// Run executes one pipeline run for the configured source. The report is
// returned even when the run fails, unless the pipeline could not be set up.
func (a *App) Run(ctx context.Context) (*pipeline.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	unit, err := model.NewSourceUnit(a.cfg.Source)
	if err != nil {
		return nil, fault.Wrap(fault.ErrUsage, err, "source %s", a.cfg.Source)
	}

	var observer pipeline.Observer
	if n := a.model.Notify; n != nil {
		sio, err := notify.Dial(ctx, *n)
		if err != nil {
			a.logger.Warn("Notifier unavailable, continuing without it.", zap.Error(err))
		} else {
			defer sio.Close()
			observer = sio
		}
	}

	p, err := pipeline.New(pipeline.Options{
		Root:       a.cfg.Root,
		Config:     a.model,
		Runner:     a.cfg.Runner,
		Observer:   observer,
		NoTransfer: a.cfg.NoTransfer,
	})
	if err != nil {
		return nil, err
	}

	report, err := p.Run(ctx, unit, a.cfg.Mode)
	a.logger.Debug("App.Run method finished.")
	return report, err
}
