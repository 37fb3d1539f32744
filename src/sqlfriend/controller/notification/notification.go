// Package notification routes unsolicited language server notifications to the console.
package notification

import (
	"context"
	"encoding/json"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/document"
	"github.com/uber-go/tally"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Router consumes the notification stream of one session.
type Router interface {
	// Run routes every body received on notifications until the channel is closed or ctx is done.
	// Unrecognized notifications are logged and skipped.
	Run(ctx context.Context, notifications <-chan []byte) error
}

// Params are inbound parameters to create a Router.
type Params struct {
	fx.In

	Document document.Repository
	Console  console.Gateway
	Logger   *zap.SugaredLogger
	Stats    tally.Scope
}

type router struct {
	document document.Repository
	console  console.Gateway
	logger   *zap.SugaredLogger
	stats    tally.Scope
}

// New returns a Router.
func New(p Params) Router {
	return &router{
		document: p.Document,
		console:  p.Console,
		logger:   p.Logger.With("component", "notification-router"),
		stats:    p.Stats.SubScope("router"),
	}
}

func (r *router) Run(ctx context.Context, notifications <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case body, ok := <-notifications:
			if !ok {
				return nil
			}
			r.route(body)
		}
	}
}

func (r *router) route(body []byte) {
	if params, ok := decodeDiagnostics(body); ok {
		r.stats.Counter("diagnostics").Inc(1)
		text := r.document.Get()
		report := RenderDiagnostics(text, params.Diagnostics)
		if report == "" {
			return
		}
		r.console.PublishDiagnostics(entity.DiagnosticReport{URI: string(params.URI), Text: report})
		return
	}

	r.stats.Counter("unsupported").Inc(1)
	r.logger.Debugw("unsupported notification", "body", string(body))
	r.console.Debug("unsupported notification: " + string(body))
}

func decodeDiagnostics(body []byte) (protocol.PublishDiagnosticsParams, bool) {
	msg, err := jsonrpc2.DecodeMessage(body)
	if err != nil {
		return protocol.PublishDiagnosticsParams{}, false
	}
	n, ok := msg.(*jsonrpc2.Notification)
	if !ok || n.Method() != protocol.MethodTextDocumentPublishDiagnostics {
		return protocol.PublishDiagnosticsParams{}, false
	}
	var params protocol.PublishDiagnosticsParams
	if err := json.Unmarshal(n.Params(), &params); err != nil {
		return protocol.PublishDiagnosticsParams{}, false
	}
	return params, true
}
