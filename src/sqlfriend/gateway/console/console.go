package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/uber-go/tally"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKey = "console"

	_defaultBufferSize = 64
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Gateway fans user-visible output and diagnostic reports out to every subscriber.
// Publishing never blocks; a subscriber that falls behind loses lines.
type Gateway interface {
	Error(msg string)
	Warn(msg string)
	Standard(msg string)
	Debug(msg string)
	// Print publishes msg at verbosity v if it does not exceed the configured verbosity.
	Print(v entity.Verbosity, msg string)

	PublishDiagnostics(report entity.DiagnosticReport)

	// SubscribeOutput returns a stream of output lines and a function that ends the subscription.
	SubscribeOutput() (<-chan entity.OutputLine, func())
	// SubscribeDiagnostics returns a stream of diagnostic reports and a function that ends the subscription.
	SubscribeDiagnostics() (<-chan entity.DiagnosticReport, func())

	// GetLogWriter returns an io.Writer that publishes each written line at verbosity v.
	GetLogWriter(v entity.Verbosity, prefix string) io.Writer
}

// Config is the console section of the configuration.
type Config struct {
	Verbosity  string `yaml:"verbosity"`
	BufferSize int    `yaml:"bufferSize"`
}

// Params are inbound parameters to create the gateway.
type Params struct {
	fx.In

	Config config.Provider
	Logger *zap.SugaredLogger
	Stats  tally.Scope
}

type gateway struct {
	verbosity  entity.Verbosity
	bufferSize int

	mu          sync.Mutex
	outputs     map[uuid.UUID]chan entity.OutputLine
	diagnostics map[uuid.UUID]chan entity.DiagnosticReport

	logger *zap.SugaredLogger
	stats  tally.Scope
}

// New returns a console Gateway.
func New(p Params) (Gateway, error) {
	cfg := Config{}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("loading console config: %w", err)
	}
	v, err := ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return nil, err
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = _defaultBufferSize
	}

	return &gateway{
		verbosity:   v,
		bufferSize:  cfg.BufferSize,
		outputs:     make(map[uuid.UUID]chan entity.OutputLine),
		diagnostics: make(map[uuid.UUID]chan entity.DiagnosticReport),
		logger:      p.Logger.With("component", "console"),
		stats:       p.Stats.SubScope("console"),
	}, nil
}

// ParseVerbosity parses a verbosity name. The empty string selects standard.
func ParseVerbosity(name string) (entity.Verbosity, error) {
	switch strings.ToLower(name) {
	case "error":
		return entity.VerbosityError, nil
	case "warn", "warning":
		return entity.VerbosityWarn, nil
	case "", "standard":
		return entity.VerbosityStandard, nil
	case "debug":
		return entity.VerbosityDebug, nil
	}
	return 0, fmt.Errorf("unknown verbosity %q", name)
}

func (g *gateway) Error(msg string)    { g.Print(entity.VerbosityError, msg) }
func (g *gateway) Warn(msg string)     { g.Print(entity.VerbosityWarn, msg) }
func (g *gateway) Standard(msg string) { g.Print(entity.VerbosityStandard, msg) }
func (g *gateway) Debug(msg string)    { g.Print(entity.VerbosityDebug, msg) }

func (g *gateway) Print(v entity.Verbosity, msg string) {
	if v > g.verbosity {
		return
	}
	line := entity.OutputLine{Verbosity: v, Text: msg}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, ch := range g.outputs {
		select {
		case ch <- line:
		default:
			g.stats.Counter("output_dropped").Inc(1)
		}
	}
}

func (g *gateway) PublishDiagnostics(report entity.DiagnosticReport) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, ch := range g.diagnostics {
		select {
		case ch <- report:
		default:
			g.stats.Counter("diagnostics_dropped").Inc(1)
		}
	}
}

func (g *gateway) SubscribeOutput() (<-chan entity.OutputLine, func()) {
	id := uuid.Must(uuid.NewV4())
	ch := make(chan entity.OutputLine, g.bufferSize)

	g.mu.Lock()
	g.outputs[id] = ch
	g.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.outputs, id)
			close(ch)
		})
	}
}

func (g *gateway) SubscribeDiagnostics() (<-chan entity.DiagnosticReport, func()) {
	id := uuid.Must(uuid.NewV4())
	ch := make(chan entity.DiagnosticReport, g.bufferSize)

	g.mu.Lock()
	g.diagnostics[id] = ch
	g.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			delete(g.diagnostics, id)
			close(ch)
		})
	}
}

type logWriter struct {
	g         *gateway
	verbosity entity.Verbosity
	prefix    string
}

func (g *gateway) GetLogWriter(v entity.Verbosity, prefix string) io.Writer {
	return &logWriter{g: g, verbosity: v, prefix: prefix}
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(strings.TrimSuffix(string(p), "\n"), "\n") {
		if w.prefix != "" {
			line = fmt.Sprintf("[%s] %s", w.prefix, line)
		}
		w.g.Print(w.verbosity, line)
	}
	return len(p), nil
}
