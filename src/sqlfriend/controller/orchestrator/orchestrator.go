// Package orchestrator replaces the live language server session on request and supervises its tasks.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/client"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/notification"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/session"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/fs"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/taskset"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/mapper"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Orchestrator owns the single live session.
type Orchestrator interface {
	// Spawn asks the running loop to replace the current session with kind connected to conn.
	// It blocks while a previous request is still queued.
	Spawn(ctx context.Context, kind entity.ServerKind, conn entity.Connection) error
	// Run handles spawn requests until ctx is done or a supervised task fails.
	// The failure is returned and the live session is shut down either way.
	Run(ctx context.Context) error
	// Shutdown stops the live session and waits until its process is reaped.
	Shutdown(ctx context.Context) error
}

// Params are inbound parameters to create an Orchestrator.
type Params struct {
	fx.In

	Starter session.Starter
	Client  client.Client
	Router  notification.Router
	FS      fs.FS
	Console console.Gateway
	Logger  *zap.SugaredLogger
	Stats   tally.Scope
}

type spawnCommand struct {
	kind entity.ServerKind
	conn entity.Connection
}

type orchestrator struct {
	starter session.Starter
	client  client.Client
	router  notification.Router
	fs      fs.FS
	console console.Gateway
	logger  *zap.SugaredLogger
	stats   tally.Scope

	commands chan spawnCommand

	mu      sync.Mutex
	current *session.Handle
}

// New returns an Orchestrator.
func New(p Params) Orchestrator {
	return &orchestrator{
		starter:  p.Starter,
		client:   p.Client,
		router:   p.Router,
		fs:       p.FS,
		console:  p.Console,
		logger:   p.Logger.With("component", "orchestrator"),
		stats:    p.Stats.SubScope("orchestrator"),
		commands: make(chan spawnCommand, 1),
	}
}

func (o *orchestrator) Spawn(ctx context.Context, kind entity.ServerKind, conn entity.Connection) error {
	select {
	case o.commands <- spawnCommand{kind: kind, conn: conn}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *orchestrator) Run(ctx context.Context) (err error) {
	set := taskset.New(ctx, o.logger)
	defer func() {
		err = multierr.Append(err, o.Shutdown(context.Background()))
		set.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-set.Failed():
			if errors.IsSessionFatal(err) {
				o.stats.Counter("fatal").Inc(1)
				o.logger.Errorw("language server session broke", zap.Error(err))
			} else {
				o.stats.Counter("task_failed").Inc(1)
				o.logger.Errorw("session task failed", zap.Error(err))
			}
			return err
		case cmd := <-o.commands:
			o.handle(set, cmd)
		}
	}
}

// handle reports failures on the console and keeps the loop alive.
func (o *orchestrator) handle(set *taskset.Set, cmd spawnCommand) {
	o.stats.Counter("commands").Inc(1)
	if err := o.spawn(set, cmd); err != nil {
		o.stats.Counter("command_failed").Inc(1)
		o.logger.Errorw("spawn command failed",
			"server", cmd.kind,
			"connection", cmd.conn.Name,
			zap.Error(err),
		)
		o.console.Error(fmt.Sprintf("Failed to connect to %s: %v", cmd.conn.Name, err))
		return
	}
	o.console.Standard(fmt.Sprintf("Connected to %s.", cmd.conn.Name))
}

func (o *orchestrator) spawn(set *taskset.Set, cmd spawnCommand) error {
	ctx := set.Context()
	if err := o.stopCurrent(ctx); err != nil {
		return fmt.Errorf("stopping previous language server: %w", err)
	}

	serverCmd, err := mapper.ServerKindToCommand(o.fs, cmd.kind, cmd.conn)
	if err != nil {
		return err
	}
	h, err := o.starter.Start(ctx, serverCmd, set)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.current = h
	o.mu.Unlock()

	o.client.Attach(h)
	set.Go(fmt.Sprintf("session-%d/notification-router", h.Pid()), func(ctx context.Context) error {
		return o.router.Run(ctx, h.Notifications())
	})

	return o.client.Initialize(ctx, serverCmd.InitializationOptions)
}

func (o *orchestrator) Shutdown(ctx context.Context) error {
	return o.stopCurrent(ctx)
}

func (o *orchestrator) stopCurrent(ctx context.Context) error {
	o.mu.Lock()
	h := o.current
	o.current = nil
	o.mu.Unlock()

	if h == nil {
		o.logger.Debug("no existing LSP server running, skipping shutdown")
		return nil
	}

	o.client.Detach()
	h.Cancel()
	select {
	case <-h.Done():
		o.logger.Debugw("previous language server stopped", "pid", h.Pid())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
