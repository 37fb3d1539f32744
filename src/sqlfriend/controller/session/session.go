// Package session owns one language server process and the four loops that bridge it to the client.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/correlation"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/executor"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/framing"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/fs"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/payload"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/taskset"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/mapper"
	"github.com/uber-go/tally"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_outboundBufferSize     = 16
	_notificationBufferSize = 16
	_stderrPrefix           = "lsp stderr"
	_maxStderrLine          = 1 << 20
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Starter spawns language server sessions.
type Starter interface {
	// Start spawns cmd and registers the session loops with tasks. The session ends when ctx
	// is done or Cancel is called on the returned handle.
	Start(ctx context.Context, cmd *mapper.ServerCommand, tasks taskset.Spawner) (*Handle, error)
}

// Params are inbound parameters to create a Starter.
type Params struct {
	fx.In

	Executor executor.Executor
	FS       fs.FS
	Console  console.Gateway
	Logger   *zap.SugaredLogger
	Stats    tally.Scope
}

type starter struct {
	executor executor.Executor
	fs       fs.FS
	console  console.Gateway
	logger   *zap.SugaredLogger
	stats    tally.Scope
}

// New returns a Starter.
func New(p Params) Starter {
	return &starter{
		executor: p.Executor,
		fs:       p.FS,
		console:  p.Console,
		logger:   p.Logger.With("component", "session"),
		stats:    p.Stats,
	}
}

// Handle is the live state of one spawned language server.
type Handle struct {
	cmd  *mapper.ServerCommand
	proc executor.Process
	fs   fs.FS

	ctx    context.Context
	cancel context.CancelFunc

	outbound      chan payload.Payload
	registry      *correlation.Registry
	notifications chan []byte
	stderr        io.Writer

	killOnce sync.Once
	done     chan struct{}

	logger      *zap.SugaredLogger
	stats       tally.Scope
	readerStats tally.Scope
}

func (s *starter) Start(ctx context.Context, cmd *mapper.ServerCommand, tasks taskset.Spawner) (*Handle, error) {
	proc, err := s.executor.Start(exec.Command(cmd.Path, cmd.Args...))
	if err != nil {
		s.stats.SubScope("session").Counter("spawn_failed").Inc(1)
		if cmd.ConfigDir != "" {
			err = multierr.Append(err, s.fs.RemoveAll(cmd.ConfigDir))
		}
		return nil, &errors.ProcessSpawnError{Command: cmd.String(), Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cmd:           cmd,
		proc:          proc,
		fs:            s.fs,
		ctx:           ctx,
		cancel:        cancel,
		outbound:      make(chan payload.Payload, _outboundBufferSize),
		registry:      correlation.New(),
		notifications: make(chan []byte, _notificationBufferSize),
		stderr:        s.console.GetLogWriter(entity.VerbosityDebug, _stderrPrefix),
		done:          make(chan struct{}),
		logger:        s.logger.With("pid", proc.Pid()),
		stats:         s.stats.SubScope("session"),
		readerStats:   s.stats.SubScope("reader"),
	}
	h.stats.Counter("spawned").Inc(1)
	h.logger.Infow("language server started", "command", cmd.String())

	prefix := fmt.Sprintf("session-%d", proc.Pid())
	tasks.GoWithContext(h.ctx, prefix+"/stdin-writer", h.writeStdin)
	tasks.GoWithContext(h.ctx, prefix+"/stdout-reader", h.readStdout)
	tasks.GoWithContext(h.ctx, prefix+"/stderr-forwarder", h.forwardStderr)
	tasks.GoWithContext(h.ctx, prefix+"/supervisor", h.supervise)
	return h, nil
}

// Pid returns the process id of the language server.
func (h *Handle) Pid() int {
	return h.proc.Pid()
}

// Command returns the command the session was started with.
func (h *Handle) Command() *mapper.ServerCommand {
	return h.cmd
}

// Send queues p for the stdin writer. It fails with ErrChannelClosed once the session ended.
func (h *Handle) Send(ctx context.Context, p payload.Payload) error {
	select {
	case <-h.ctx.Done():
		return fmt.Errorf("sending %s: %w", p.Method, errors.ErrChannelClosed)
	default:
	}
	select {
	case h.outbound <- p:
		return nil
	case <-h.ctx.Done():
		return fmt.Errorf("sending %s: %w", p.Method, errors.ErrChannelClosed)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register reserves a response slot for id. See correlation.Registry.
func (h *Handle) Register(id jsonrpc2.ID) <-chan *jsonrpc2.Response {
	return h.registry.Register(id)
}

// Unregister releases the response slot for id.
func (h *Handle) Unregister(id jsonrpc2.ID) {
	h.registry.Cancel(id)
}

// Notifications streams the raw body of every notification and server call.
// The channel is closed when the stdout reader exits.
func (h *Handle) Notifications() <-chan []byte {
	return h.notifications
}

// Closed is done once the session is cancelled.
func (h *Handle) Closed() <-chan struct{} {
	return h.ctx.Done()
}

// Cancel signals every session loop to stop. The supervisor then kills the process.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed once the process was killed and reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) writeStdin(ctx context.Context) error {
	stdin := h.proc.Stdin()
	defer stdin.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case p := <-h.outbound:
			h.logger.Debugw("stdin", "method", p.Method, "body", string(p.Data))
			if _, err := stdin.Write(framing.Encode(p.Data)); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("writing %s: %w", p.Method, err)
			}
		}
	}
}

func (h *Handle) readStdout(ctx context.Context) error {
	defer close(h.notifications)
	defer h.releasePending()

	r := bufio.NewReader(h.proc.Stdout())
	for {
		body, err := framing.ReadBody(r)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		h.logger.Debugw("stdout", "body", string(body))

		msg, err := jsonrpc2.DecodeMessage(body)
		if err != nil {
			h.readerStats.Counter("malformed").Inc(1)
			h.logger.Warn((&errors.MalformedMessageError{Body: body, Err: err}).Error())
			continue
		}

		switch m := msg.(type) {
		case *jsonrpc2.Response:
			if !h.registry.Resolve(m) {
				h.readerStats.Counter("unmatched_responses").Inc(1)
				h.logger.Debugw("dropping response without pending request", "id", m.ID())
			}
		default:
			select {
			case h.notifications <- body:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// releasePending wakes every request still waiting for a response from this session.
func (h *Handle) releasePending() {
	if n := h.registry.Pending(); n > 0 {
		h.readerStats.Counter("abandoned_requests").Inc(int64(n))
		h.logger.Debugw("abandoning pending requests", "count", n)
	}
	h.registry.Close()
}

func (h *Handle) forwardStderr(ctx context.Context) error {
	scanner := bufio.NewScanner(h.proc.Stderr())
	scanner.Buffer(make([]byte, 0, 4096), _maxStderrLine)
	for scanner.Scan() {
		line := scanner.Text()
		h.logger.Debugw("stderr", "line", line)
		fmt.Fprintln(h.stderr, line)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading stderr: %w", err)
	}
	return nil
}

func (h *Handle) supervise(ctx context.Context) error {
	<-ctx.Done()
	h.kill()
	return nil
}

// kill terminates the process exactly once and removes the session's config directory.
func (h *Handle) kill() {
	h.killOnce.Do(func() {
		err := h.proc.Kill()
		if h.cmd.ConfigDir != "" {
			err = multierr.Append(err, h.fs.RemoveAll(h.cmd.ConfigDir))
		}
		if err != nil {
			h.logger.Warnw("language server teardown failed", "error", err)
		}
		h.stats.Counter("killed").Inc(1)
		h.logger.Infow("language server stopped")
		close(h.done)
	})
}
