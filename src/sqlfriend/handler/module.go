package handler

import (
	"context"
	"io"
	"os"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/handler/repl"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the interactive REPL into an Fx application.
var Module = fx.Options(
	fx.Provide(repl.New),
	fx.Provide(func() Terminal {
		return Terminal{In: os.Stdin, Out: os.Stdout}
	}),
	fx.Invoke(startREPL),
)

// Terminal is where the REPL reads input and prints output.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// REPLParams are the dependencies of the REPL lifecycle.
type REPLParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Handler    repl.Handler
	Terminal   Terminal
	Logger     *zap.SugaredLogger
}

// startREPL runs the REPL for the lifetime of the application. The end of input shuts the
// application down.
func startREPL(p REPLParams) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				err := p.Handler.Run(ctx, p.Terminal.In, p.Terminal.Out)
				switch {
				case ctx.Err() != nil:
					// Stopped by the application.
				case err != nil:
					p.Logger.Errorw("repl stopped", zap.Error(err))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				default:
					_ = p.Shutdowner.Shutdown()
				}
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
