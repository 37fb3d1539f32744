package app

import (
	"context"
	"fmt"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/orchestrator"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RunParams are the dependencies of the orchestrator loop.
type RunParams struct {
	fx.In

	Lifecycle    fx.Lifecycle
	Orchestrator orchestrator.Orchestrator
	Console      console.Gateway
	Logger       *zap.SugaredLogger
}

// runOrchestrator keeps the orchestrator loop running between application start and stop.
func runOrchestrator(p RunParams) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				superviseOrchestrator(ctx, p.Orchestrator, p.Console, p.Logger)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// superviseOrchestrator restarts the loop after a session failure so the application outlives
// its language servers. It returns once ctx is done.
func superviseOrchestrator(ctx context.Context, o orchestrator.Orchestrator, c console.Gateway, logger *zap.SugaredLogger) {
	for {
		err := o.Run(ctx)
		if ctx.Err() != nil {
			if err != nil {
				logger.Warnw("orchestrator stopped with error", zap.Error(err))
			}
			return
		}
		if err == nil {
			return
		}
		logger.Errorw("language server session failed", zap.Error(err))
		c.Error(fmt.Sprintf("Language server session failed: %v", err))
	}
}
