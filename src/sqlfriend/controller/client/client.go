// Package client issues requests and notifications to the attached language server session.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/clock"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/payload"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/document"
	"github.com/uber-go/tally"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/atomic"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	_configKey = "lsp"

	_defaultRequestTimeout = 5 * time.Second
	_defaultDocumentURI    = "repl:///repl"

	// Whole-document sync makes per-edit versions unnecessary.
	_documentVersion = 1
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Session is the part of a language server session the client talks through.
type Session interface {
	Send(ctx context.Context, p payload.Payload) error
	Register(id jsonrpc2.ID) <-chan *jsonrpc2.Response
	Unregister(id jsonrpc2.ID)
	Closed() <-chan struct{}
}

// Client talks to the attached language server.
type Client interface {
	// Attach routes all further calls to s and marks the client uninitialized.
	Attach(s Session)
	// Detach drops the current session, if any.
	Detach()

	// Initialize runs initialize, initialized and didOpen in order against the attached session.
	Initialize(ctx context.Context, options interface{}) error
	// IsInitialized reports whether the handshake completed on the attached session.
	IsInitialized() bool

	// OnEdit stores text as the document content and sends it to the server.
	OnEdit(ctx context.Context, text string) error
	// RequestCompletion returns the labels the server suggests at a zero-indexed position.
	RequestCompletion(ctx context.Context, line, col uint32) ([]string, error)
}

// Config is the lsp section of the configuration.
type Config struct {
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	DocumentURI    string        `yaml:"documentURI"`
}

// Params are inbound parameters to create a Client.
type Params struct {
	fx.In

	Config   config.Provider
	Document document.Repository
	Clock    clock.Clock
	Logger   *zap.SugaredLogger
	Stats    tally.Scope
}

type client struct {
	timeout     time.Duration
	documentURI uri.URI

	mu          sync.RWMutex
	session     Session
	initialized atomic.Bool

	document document.Repository
	clock    clock.Clock
	logger   *zap.SugaredLogger
	stats    tally.Scope
}

// New returns a Client without a session.
func New(p Params) (Client, error) {
	cfg := Config{}
	if err := p.Config.Get(_configKey).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("loading lsp config: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = _defaultRequestTimeout
	}
	if cfg.DocumentURI == "" {
		cfg.DocumentURI = _defaultDocumentURI
	}

	return &client{
		timeout:     cfg.RequestTimeout,
		documentURI: uri.URI(cfg.DocumentURI),
		document:    p.Document,
		clock:       p.Clock,
		logger:      p.Logger.With("component", "client"),
		stats:       p.Stats.SubScope("client"),
	}, nil
}

func (c *client) Attach(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = s
	c.initialized.Store(false)
}

func (c *client) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = nil
	c.initialized.Store(false)
}

func (c *client) IsInitialized() bool {
	return c.initialized.Load()
}

func (c *client) current() (Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil, errors.ErrNoSession
	}
	return c.session, nil
}

func (c *client) Initialize(ctx context.Context, options interface{}) error {
	s, err := c.current()
	if err != nil {
		return &errors.HandshakeError{Step: protocol.MethodInitialize, Err: err}
	}

	initialize, err := payload.Initialize(options)
	if err != nil {
		return &errors.HandshakeError{Step: protocol.MethodInitialize, Err: err}
	}
	result, err := c.request(ctx, s, initialize)
	if err != nil {
		return &errors.HandshakeError{Step: protocol.MethodInitialize, Err: err}
	}
	// Only serverInfo is read from the result.
	var initResult struct {
		ServerInfo *protocol.ServerInfo `json:"serverInfo"`
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &initResult); err != nil {
			return &errors.HandshakeError{Step: protocol.MethodInitialize, Err: fmt.Errorf("decoding result: %w", err)}
		}
	}
	if initResult.ServerInfo != nil {
		c.logger.Infow("language server initialized", "server", initResult.ServerInfo.Name, "version", initResult.ServerInfo.Version)
	}

	// postgrestools reads its config file and connects to the database on initialized.
	initialized, err := payload.Initialized()
	if err == nil {
		err = s.Send(ctx, initialized)
	}
	if err != nil {
		return &errors.HandshakeError{Step: protocol.MethodInitialized, Err: err}
	}

	c.document.Set("")
	open, err := payload.DidOpen(c.documentURI, "")
	if err == nil {
		err = s.Send(ctx, open)
	}
	if err != nil {
		return &errors.HandshakeError{Step: protocol.MethodTextDocumentDidOpen, Err: err}
	}

	c.mu.RLock()
	if c.session == s {
		c.initialized.Store(true)
	}
	c.mu.RUnlock()
	c.stats.Counter("handshakes").Inc(1)
	return nil
}

func (c *client) OnEdit(ctx context.Context, text string) error {
	c.document.Set(text)

	s, err := c.current()
	if err != nil {
		return err
	}
	change, err := payload.DidChange(c.documentURI, _documentVersion, text)
	if err != nil {
		return err
	}
	return s.Send(ctx, change)
}

func (c *client) RequestCompletion(ctx context.Context, line, col uint32) ([]string, error) {
	s, err := c.current()
	if err != nil {
		return nil, err
	}
	p, err := payload.Completion(c.documentURI, line, col)
	if err != nil {
		return nil, err
	}
	result, err := c.request(ctx, s, p)
	if err != nil {
		return nil, err
	}
	return decodeCompletion(result)
}

// request sends p and blocks until its response, the request timeout, the end of the session or ctx.
func (c *client) request(ctx context.Context, s Session, p payload.Payload) (json.RawMessage, error) {
	c.stats.Counter("requests").Inc(1)

	// Registered before sending so a fast response is never missed.
	wait := s.Register(p.ID)
	if err := s.Send(ctx, p); err != nil {
		s.Unregister(p.ID)
		return nil, err
	}

	timer := c.clock.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-wait:
		if !ok {
			return nil, fmt.Errorf("awaiting %s: %w", p.Method, errors.ErrChannelClosed)
		}
		if err := resp.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Method, err)
		}
		return resp.Result(), nil
	case <-timer.C():
		s.Unregister(p.ID)
		c.stats.Counter("timeouts").Inc(1)
		return nil, &errors.RequestTimeoutError{Method: p.Method, Timeout: c.timeout}
	case <-s.Closed():
		s.Unregister(p.ID)
		return nil, fmt.Errorf("awaiting %s: %w", p.Method, errors.ErrChannelClosed)
	case <-ctx.Done():
		s.Unregister(p.ID)
		return nil, ctx.Err()
	}
}
