// Package repl reads SQL and commands from a line-based terminal and prints what the language server reports.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/client"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/completer"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/orchestrator"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/command"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/connection"
	"github.com/uber-go/tally"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKey = "repl"

	// A line ending in this character asks for completion of the text before it.
	_completionTrigger = "\t"
	_usageWidth        = 35
)

// Handler serves one interactive session.
type Handler interface {
	// Run reads lines from in until it is exhausted or ctx is done, writing everything the user
	// should see to out.
	Run(ctx context.Context, in io.Reader, out io.Writer) error
}

// Config is the repl section of the configuration.
type Config struct {
	ServerKind string `yaml:"serverKind"`
}

// Params are inbound parameters to create a Handler.
type Params struct {
	fx.In

	Config       config.Provider
	Commands     command.Registry
	Connections  connection.Repository
	Orchestrator orchestrator.Orchestrator
	Client       client.Client
	Completer    completer.Completer
	Console      console.Gateway
	Logger       *zap.SugaredLogger
	Stats        tally.Scope
}

type handler struct {
	commands     command.Registry
	connections  connection.Repository
	orchestrator orchestrator.Orchestrator
	client       client.Client
	completer    completer.Completer
	console      console.Gateway
	logger       *zap.SugaredLogger
	stats        tally.Scope

	mu   sync.Mutex
	kind entity.ServerKind
}

// New returns a Handler.
func New(p Params) (Handler, error) {
	cfg := Config{}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("loading repl config: %w", err)
	}
	kind := entity.ServerKindSqls
	if cfg.ServerKind != "" {
		var err error
		if kind, err = entity.ParseServerKind(cfg.ServerKind); err != nil {
			return nil, err
		}
	}

	return &handler{
		commands:     p.Commands,
		connections:  p.Connections,
		orchestrator: p.Orchestrator,
		client:       p.Client,
		completer:    p.Completer,
		console:      p.Console,
		logger:       p.Logger.With("component", "repl"),
		stats:        p.Stats.SubScope("repl"),
		kind:         kind,
	}, nil
}

func (h *handler) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	w := &syncWriter{w: out}
	output, unsubscribeOutput := h.console.SubscribeOutput()
	diagnostics, unsubscribeDiagnostics := h.console.SubscribeDiagnostics()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printEvents(w, output, diagnostics)
	}()
	defer func() {
		unsubscribeOutput()
		unsubscribeDiagnostics()
		<-printed
	}()

	if conn, ok := h.connections.Current(); ok {
		if err := h.connect(ctx, conn); err != nil {
			return err
		}
	} else {
		h.console.Warn(fmt.Sprintf("No connection configured. Type %s%s for a list of commands.", command.Prefix, command.NameHelp))
	}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		readErr <- readLines(ctx, in, lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("reading input: %w", err)
				}
				return nil
			}
			if err := h.handleLine(ctx, w, line); err != nil {
				return err
			}
		}
	}
}

// readLines sends every line of in on lines and closes it at the end of input.
func readLines(ctx context.Context, in io.Reader, lines chan<- string) error {
	defer close(lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return nil
		}
	}
	return scanner.Err()
}

func printEvents(w io.Writer, output <-chan entity.OutputLine, diagnostics <-chan entity.DiagnosticReport) {
	for output != nil || diagnostics != nil {
		select {
		case line, ok := <-output:
			if !ok {
				output = nil
				continue
			}
			fmt.Fprintln(w, line.Text)
		case report, ok := <-diagnostics:
			if !ok {
				diagnostics = nil
				continue
			}
			fmt.Fprintln(w, report.Text)
		}
	}
}

func (h *handler) handleLine(ctx context.Context, w io.Writer, line string) error {
	h.stats.Counter("lines").Inc(1)
	switch {
	case strings.HasSuffix(line, _completionTrigger):
		h.complete(ctx, w, strings.TrimSuffix(line, _completionTrigger))
		return nil
	case h.commands.IsMaybeCommand(line):
		return h.execute(ctx, line)
	case strings.TrimSpace(line) == "":
		return nil
	case !h.client.IsInitialized():
		h.console.Warn(fmt.Sprintf("Not connected to a language server. Type %s%s for a list of commands.", command.Prefix, command.NameHelp))
		return nil
	}

	if err := h.client.OnEdit(ctx, line); err != nil {
		h.logger.Warnw("sending edit failed", zap.Error(err))
		h.console.Error(err.Error())
	}
	return nil
}

func (h *handler) complete(ctx context.Context, w io.Writer, line string) {
	h.stats.Counter("completions").Inc(1)
	start, candidates := h.completer.CompleteWithLogging(ctx, line, len(line))

	var b strings.Builder
	if len(candidates) == 0 {
		b.WriteString("no completions\n")
	}
	for _, c := range candidates {
		fmt.Fprintf(&b, "  %s\n", c.Display)
	}
	if len(candidates) == 1 {
		b.WriteString(line[:start] + candidates[0].Replacement + "\n")
	}
	io.WriteString(w, b.String())
}

// execute runs a command line. Only a failure to hand work to the orchestrator is returned;
// user mistakes are printed.
func (h *handler) execute(ctx context.Context, line string) error {
	h.stats.Counter("commands").Inc(1)
	name, arg, ok := h.commands.Parse(line)
	if !ok {
		h.console.Error(fmt.Sprintf("Unknown command %q. Type %s%s for a list of commands.", name, command.Prefix, command.NameHelp))
		return nil
	}

	switch name {
	case command.NameHelp:
		for _, l := range HelpLines(h.commands.All()) {
			h.console.Standard(l)
		}
	case command.NameList:
		connections := h.connections.List()
		if len(connections) == 0 {
			h.console.Standard("No connections configured.")
		}
		for _, c := range connections {
			h.console.Standard(fmt.Sprintf("%s: %s", c.Name, c.Settings))
		}
	case command.NameUse:
		return h.use(ctx, arg)
	case command.NameSetLSPServer:
		return h.setServer(ctx, arg)
	}
	return nil
}

func (h *handler) use(ctx context.Context, name string) error {
	if name == "" {
		h.usage(command.NameUse)
		return nil
	}
	conn, err := h.connections.SetCurrent(name)
	if err != nil {
		h.console.Error(err.Error())
		return nil
	}
	return h.connect(ctx, conn)
}

func (h *handler) setServer(ctx context.Context, name string) error {
	if name == "" {
		h.usage(command.NameSetLSPServer)
		return nil
	}
	kind, err := entity.ParseServerKind(name)
	if err != nil {
		h.console.Error(err.Error())
		return nil
	}

	h.mu.Lock()
	h.kind = kind
	h.mu.Unlock()
	h.console.Standard(fmt.Sprintf("Language server set to %s.", kind))

	if conn, ok := h.connections.Current(); ok {
		return h.connect(ctx, conn)
	}
	return nil
}

func (h *handler) connect(ctx context.Context, conn entity.Connection) error {
	h.mu.Lock()
	kind := h.kind
	h.mu.Unlock()

	h.console.Standard(fmt.Sprintf("Connecting to %s...", conn.Name))
	if err := h.orchestrator.Spawn(ctx, kind, conn); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("requesting %s session: %w", kind, err)
	}
	return nil
}

func (h *handler) usage(name string) {
	if c, ok := h.commands.Get(name); ok {
		h.console.Error("usage: " + c.Usage)
	}
}

// HelpLines renders one line per command, in the order given.
func HelpLines(commands []entity.Command) []string {
	lines := make([]string, 0, len(commands))
	for _, c := range commands {
		lines = append(lines, fmt.Sprintf("\t%-*s - %s", _usageWidth, c.Usage, c.Description))
	}
	return lines
}

// syncWriter serializes writes from the printer and the input loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
