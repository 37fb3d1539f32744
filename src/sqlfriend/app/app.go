package app

import (
	"context"
	"time"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/handler"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/clock"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/core"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/executor"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/fs"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/command"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/connection"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/document"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
)

// Module defines the sqlfriend application module.
var Module = fx.Options(
	fx.Invoke(runOrchestrator),
	console.Module, // outbounds
	handler.Module, // inbounds
	controller.Module,
	command.Module,
	connection.Module,
	document.Module,
	fs.Module,
	executor.Module,
	clock.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "sqlfriend",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Decorate(decorateConfigProvider),
)
