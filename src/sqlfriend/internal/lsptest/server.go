// Package lsptest provides an in-memory language server that stands in for a spawned process in tests.
package lsptest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/executor"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/framing"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/atomic"
)

// ErrNoReply makes a Handler leave a call unanswered.
var ErrNoReply = errors.New("no reply")

// Handler answers one call. Returning a *jsonrpc2.Error sends it as the response error.
type Handler func(params json.RawMessage) (interface{}, error)

// Message is one message received on the server's stdin.
type Message struct {
	ID     jsonrpc2.ID
	Method string
	Params json.RawMessage
}

// Server is a fake language server process backed by in-memory pipes.
// It answers initialize with an empty result unless another handler is installed.
type Server struct {
	pid int

	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	stderrR *io.PipeReader
	stderrW *io.PipeWriter

	mu       sync.Mutex
	handlers map[string]Handler
	received []Message
	writeMu  sync.Mutex

	kills    atomic.Int32
	killOnce sync.Once
	killed   chan struct{}
	served   chan struct{}
	replies  sync.WaitGroup
}

var _ executor.Process = (*Server)(nil)

// NewServer returns a running Server with the given pid.
func NewServer(pid int) *Server {
	s := &Server{
		pid:      pid,
		handlers: make(map[string]Handler),
		killed:   make(chan struct{}),
		served:   make(chan struct{}),
	}
	s.stdinR, s.stdinW = io.Pipe()
	s.stdoutR, s.stdoutW = io.Pipe()
	s.stderrR, s.stderrW = io.Pipe()
	s.handlers[protocol.MethodInitialize] = func(json.RawMessage) (interface{}, error) {
		return protocol.InitializeResult{ServerInfo: &protocol.ServerInfo{Name: "lsptest"}}, nil
	}
	go s.serve()
	return s
}

// Handle installs h for method, replacing any previous handler.
func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[method] = h
}

// Received returns every message read from stdin so far, in arrival order.
func (s *Server) Received() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.received))
	copy(out, s.received)
	return out
}

// Methods returns the method of every message read from stdin so far.
func (s *Server) Methods() []string {
	var methods []string
	for _, m := range s.Received() {
		methods = append(methods, m.Method)
	}
	return methods
}

// Notify pushes a notification to the client.
func (s *Server) Notify(method string, params interface{}) error {
	n, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		return err
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.WriteBody(body)
}

// WriteBody frames body and writes it to stdout.
func (s *Server) WriteBody(body []byte) error {
	return s.WriteRaw(framing.Encode(body))
}

// WriteRaw writes data to stdout without framing it.
func (s *Server) WriteRaw(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.stdoutW.Write(data)
	return err
}

// WriteStderr writes one line to stderr.
func (s *Server) WriteStderr(line string) error {
	_, err := fmt.Fprintln(s.stderrW, line)
	return err
}

// Crash closes stdout and stderr as if the process exited on its own.
func (s *Server) Crash() {
	s.stdoutW.Close()
	s.stderrW.Close()
}

// Kills returns how many times Kill was called.
func (s *Server) Kills() int {
	return int(s.kills.Load())
}

// Killed is closed by the first Kill.
func (s *Server) Killed() <-chan struct{} {
	return s.killed
}

func (s *Server) Pid() int              { return s.pid }
func (s *Server) Stdin() io.WriteCloser { return s.stdinW }
func (s *Server) Stdout() io.Reader     { return s.stdoutR }
func (s *Server) Stderr() io.Reader     { return s.stderrR }

// Kill closes every pipe and waits for the server goroutines to exit.
func (s *Server) Kill() error {
	s.kills.Inc()
	s.killOnce.Do(func() {
		close(s.killed)
		s.stdinR.Close()
		s.stdoutW.Close()
		s.stderrW.Close()
		<-s.served
		s.replies.Wait()
	})
	return nil
}

func (s *Server) serve() {
	defer close(s.served)

	r := bufio.NewReader(s.stdinR)
	for {
		body, err := framing.ReadBody(r)
		if err != nil {
			return
		}
		msg, err := jsonrpc2.DecodeMessage(body)
		if err != nil {
			continue
		}
		switch m := msg.(type) {
		case *jsonrpc2.Call:
			s.record(Message{ID: m.ID(), Method: m.Method(), Params: m.Params()})
			s.replies.Add(1)
			go s.reply(m)
		case *jsonrpc2.Notification:
			s.record(Message{Method: m.Method(), Params: m.Params()})
		}
	}
}

func (s *Server) record(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received = append(s.received, m)
}

func (s *Server) reply(call *jsonrpc2.Call) {
	defer s.replies.Done()

	s.mu.Lock()
	h, ok := s.handlers[call.Method()]
	s.mu.Unlock()
	if !ok {
		s.respond(call.ID(), nil, jsonrpc2.NewError(jsonrpc2.MethodNotFound, call.Method()))
		return
	}

	result, err := h(call.Params())
	if errors.Is(err, ErrNoReply) {
		return
	}
	s.respond(call.ID(), result, err)
}

func (s *Server) respond(id jsonrpc2.ID, result interface{}, err error) {
	if err != nil {
		var rpcErr *jsonrpc2.Error
		if !errors.As(err, &rpcErr) {
			err = jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
		}
		result = nil
	}
	resp, rerr := jsonrpc2.NewResponse(id, result, err)
	if rerr != nil {
		return
	}
	body, merr := json.Marshal(resp)
	if merr != nil {
		return
	}
	// Fails once the server was killed.
	_ = s.WriteBody(body)
}

// Factory hands out a new Server for every started command.
type Factory struct {
	setup func(*Server)

	mu       sync.Mutex
	servers  []*Server
	commands [][]string
	started  chan *Server
}

// NewFactory returns a Factory that calls setup on every new Server before it is returned.
func NewFactory(setup func(*Server)) *Factory {
	return &Factory{setup: setup, started: make(chan *Server, 16)}
}

// Start implements the executor start function.
func (f *Factory) Start(cmd *exec.Cmd) (executor.Process, error) {
	f.mu.Lock()
	s := NewServer(1000 + len(f.servers))
	f.servers = append(f.servers, s)
	f.commands = append(f.commands, cmd.Args)
	f.mu.Unlock()

	if f.setup != nil {
		f.setup(s)
	}
	select {
	case f.started <- s:
	default:
	}
	return s, nil
}

// Started delivers every Server as it is started.
func (f *Factory) Started() <-chan *Server {
	return f.started
}

// Servers returns every Server started so far.
func (f *Factory) Servers() []*Server {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*Server, len(f.servers))
	copy(out, f.servers)
	return out
}

// Commands returns the argv of every started command.
func (f *Factory) Commands() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([][]string, len(f.commands))
	copy(out, f.commands)
	return out
}
