// Package completer produces completion candidates for the REPL line.
package completer

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/client"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console"
	textmapper "github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/protocol"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/command"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/connection"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Candidate is one completion alternative.
type Candidate struct {
	// Display is shown when listing alternatives.
	Display string
	// Replacement is inserted into the line.
	Replacement string
}

// Completer completes commands locally and SQL through the language server.
type Completer interface {
	// Complete returns the byte offset in line where the replacement starts and the candidates at pos.
	Complete(ctx context.Context, line string, pos int) (int, []Candidate, error)
	// CompleteWithLogging is Complete with errors printed on the console instead of returned.
	CompleteWithLogging(ctx context.Context, line string, pos int) (int, []Candidate)
}

// Params are inbound parameters to create a Completer.
type Params struct {
	fx.In

	Client      client.Client
	Commands    command.Registry
	Connections connection.Repository
	Console     console.Gateway
	Logger      *zap.SugaredLogger
	Stats       tally.Scope
}

type completer struct {
	client      client.Client
	commands    command.Registry
	connections connection.Repository
	console     console.Gateway
	logger      *zap.SugaredLogger
	stats       tally.Scope
}

// New returns a Completer.
func New(p Params) Completer {
	return &completer{
		client:      p.Client,
		commands:    p.Commands,
		connections: p.Connections,
		console:     p.Console,
		logger:      p.Logger.With("component", "completer"),
		stats:       p.Stats.SubScope("completer"),
	}
}

func (c *completer) CompleteWithLogging(ctx context.Context, line string, pos int) (int, []Candidate) {
	start, candidates, err := c.Complete(ctx, line, pos)
	if err != nil {
		c.stats.Counter("errors").Inc(1)
		c.logger.Warnw("completion failed", zap.Error(err))
		c.console.Error(err.Error())
		return 0, nil
	}
	return start, candidates
}

func (c *completer) Complete(ctx context.Context, line string, pos int) (int, []Candidate, error) {
	if c.commands.IsMaybeCommand(line) || !c.client.IsInitialized() {
		c.stats.Counter("command").Inc(1)
		start, candidates := c.completeCommand(line)
		return start, candidates, nil
	}
	c.stats.Counter("lsp").Inc(1)
	return c.completeLSP(ctx, line, pos)
}

func (c *completer) completeLSP(ctx context.Context, line string, pos int) (int, []Candidate, error) {
	// The server needs at least one character to complete against.
	if line == "" {
		line = " "
	}
	if err := c.client.OnEdit(ctx, line); err != nil {
		return 0, nil, err
	}

	position, err := textmapper.NewTextOffsetMapper([]byte(line)).OffsetPosition(pos)
	if err != nil {
		return 0, nil, fmt.Errorf("completion position: %w", err)
	}
	labels, err := c.client.RequestCompletion(ctx, position.Line, position.Character)
	if err != nil {
		return 0, nil, err
	}

	candidates := make([]Candidate, 0, len(labels))
	for _, label := range labels {
		candidates = append(candidates, Candidate{Display: label, Replacement: label})
	}
	return findSQLTokenStart(line, pos), candidates, nil
}

func (c *completer) completeCommand(line string) (int, []Candidate) {
	var matching []Candidate
	for _, cmd := range c.commands.All() {
		full := command.Prefix + cmd.Name
		if strings.HasPrefix(full, line) {
			matching = append(matching, Candidate{Display: full, Replacement: full})
		}
	}
	if len(matching) > 0 {
		return 0, matching
	}

	usePrefix := command.Prefix + command.NameUse + " "
	if arg, ok := strings.CutPrefix(line, usePrefix); ok {
		return len(usePrefix), c.completeConnectionNames(arg)
	}
	serverPrefix := command.Prefix + command.NameSetLSPServer + " "
	if arg, ok := strings.CutPrefix(line, serverPrefix); ok {
		return len(serverPrefix), completeServerKinds(arg)
	}
	return 0, nil
}

func (c *completer) completeConnectionNames(arg string) []Candidate {
	var matching []Candidate
	for _, conn := range c.connections.List() {
		if strings.HasPrefix(conn.Name, arg) {
			matching = append(matching, Candidate{
				Display:     fmt.Sprintf("%s: %s", conn.Name, conn.Settings),
				Replacement: conn.Name,
			})
		}
	}
	return matching
}

func completeServerKinds(arg string) []Candidate {
	var matching []Candidate
	for _, kind := range entity.ServerKinds {
		if strings.HasPrefix(string(kind), arg) {
			matching = append(matching, Candidate{Display: string(kind), Replacement: string(kind)})
		}
	}
	return matching
}

// findSQLTokenStart returns the byte offset of the token ending at pos. Tokens are separated by
// whitespace or by the dot between a schema and an identifier.
func findSQLTokenStart(line string, pos int) int {
	if pos > len(line) {
		pos = len(line)
	}
	prefix := line[:pos]
	for len(prefix) > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix)
		if unicode.IsSpace(r) || r == '.' {
			return len(prefix)
		}
		prefix = prefix[:len(prefix)-size]
	}
	return 0
}
