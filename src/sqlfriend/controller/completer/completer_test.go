package completer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/client/clientmock"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console/consolemock"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/command"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/config"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const _connections = `
connections:
  - name: local
    settings:
      driver: sqlite
      filename: local.db
  - name: lake
    settings:
      driver: postgres
      host: localhost
      port: "5432"
      database: lake
  - name: warehouse
    settings:
      driver: mysql
      host: db
`

type fixture struct {
	client  *clientmock.MockClient
	console *consolemock.MockGateway
	stats   tally.TestScope
	c       Completer
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	provider, err := config.NewYAML(config.Source(strings.NewReader(_connections)))
	require.NoError(t, err)
	connections, err := connection.New(connection.Params{Config: provider, Stats: tally.NoopScope})
	require.NoError(t, err)

	f := &fixture{
		client:  clientmock.NewMockClient(ctrl),
		console: consolemock.NewMockGateway(ctrl),
		stats:   tally.NewTestScope("testing", make(map[string]string, 0)),
	}
	f.c = New(Params{
		Client:      f.client,
		Commands:    command.New(),
		Connections: connections,
		Console:     f.console,
		Logger:      zap.NewNop().Sugar(),
		Stats:       f.stats,
	})
	return f
}

func TestCompleteCommand(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantStart    int
		wantDisplay  []string
		wantReplaced []string
	}{
		{
			name:         "prefix only",
			line:         "/",
			wantDisplay:  []string{"/help", "/list", "/set_lsp_server", "/use"},
			wantReplaced: []string{"/help", "/list", "/set_lsp_server", "/use"},
		},
		{
			name:         "partial command",
			line:         "/us",
			wantDisplay:  []string{"/use"},
			wantReplaced: []string{"/use"},
		},
		{
			name:      "connection names",
			line:      "/use l",
			wantStart: 5,
			wantDisplay: []string{
				`local: Sqlite { filename: "local.db" }`,
				`lake: Postgres { host: "localhost", port: "5432", user: "", database: "lake" }`,
			},
			wantReplaced: []string{"local", "lake"},
		},
		{
			name:         "server kinds",
			line:         "/set_lsp_server sql",
			wantStart:    16,
			wantDisplay:  []string{"sqls", "sql-language-server"},
			wantReplaced: []string{"sqls", "sql-language-server"},
		},
		{
			name: "no match",
			line: "/drop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			// A command line never reaches the language server, initialized or not.
			f.client.EXPECT().IsInitialized().Return(true).AnyTimes()

			start, candidates, err := f.c.Complete(context.Background(), tt.line, len(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)

			var display, replaced []string
			for _, c := range candidates {
				display = append(display, c.Display)
				replaced = append(replaced, c.Replacement)
			}
			assert.Equal(t, tt.wantDisplay, display)
			assert.Equal(t, tt.wantReplaced, replaced)
		})
	}
}

func TestCompleteFallsBackToCommandsWhenUninitialized(t *testing.T) {
	f := newFixture(t)
	f.client.EXPECT().IsInitialized().Return(false)

	start, candidates, err := f.c.Complete(context.Background(), "SELECT ", 7)
	require.NoError(t, err)
	assert.Equal(t, 0, start)
	assert.Empty(t, candidates)
	assert.Equal(t, int64(1), f.stats.Snapshot().Counters()["testing.completer.command+"].Value())
}

func TestCompleteLSP(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		pos       int
		wantText  string
		wantLine  uint32
		wantCol   uint32
		wantStart int
	}{
		{name: "empty line", line: "", pos: 0, wantText: " "},
		{name: "new token", line: "SELECT ", pos: 7, wantText: "SELECT ", wantCol: 7, wantStart: 7},
		{name: "inside token", line: "SELECT na", pos: 9, wantText: "SELECT na", wantCol: 9, wantStart: 7},
		{name: "after schema", line: "SELECT * FROM public.", pos: 21, wantText: "SELECT * FROM public.", wantCol: 21, wantStart: 21},
		{name: "second line", line: "foo\nbar\nbaz", pos: 10, wantText: "foo\nbar\nbaz", wantLine: 2, wantCol: 2, wantStart: 8},
		{name: "crlf", line: "foo\r\nbar\r\nbaz", pos: 13, wantText: "foo\r\nbar\r\nbaz", wantLine: 2, wantCol: 3, wantStart: 10},
		{name: "utf-16 column", line: "SELECT '𝄞' ", pos: 14, wantText: "SELECT '𝄞' ", wantCol: 12, wantStart: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			gomock.InOrder(
				f.client.EXPECT().IsInitialized().Return(true),
				f.client.EXPECT().OnEdit(ctx, tt.wantText).Return(nil),
				f.client.EXPECT().RequestCompletion(ctx, tt.wantLine, tt.wantCol).Return([]string{"name", "id"}, nil),
			)

			start, candidates, err := f.c.Complete(ctx, tt.line, tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, []Candidate{{Display: "name", Replacement: "name"}, {Display: "id", Replacement: "id"}}, candidates)
		})
	}
}

func TestCompleteLSPErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("edit fails", func(t *testing.T) {
		f := newFixture(t)
		f.client.EXPECT().IsInitialized().Return(true)
		f.client.EXPECT().OnEdit(ctx, "SELECT").Return(errors.New("channel closed"))

		_, _, err := f.c.Complete(ctx, "SELECT", 6)
		assert.EqualError(t, err, "channel closed")
	})

	t.Run("position out of bounds", func(t *testing.T) {
		f := newFixture(t)
		f.client.EXPECT().IsInitialized().Return(true)
		f.client.EXPECT().OnEdit(ctx, "SELECT").Return(nil)

		_, _, err := f.c.Complete(ctx, "SELECT", 30)
		assert.ErrorContains(t, err, "invalid offset 30")
	})

	t.Run("request fails", func(t *testing.T) {
		f := newFixture(t)
		f.client.EXPECT().IsInitialized().Return(true)
		f.client.EXPECT().OnEdit(ctx, "SELECT").Return(nil)
		f.client.EXPECT().RequestCompletion(ctx, uint32(0), uint32(6)).Return(nil, errors.New("timed out"))

		_, _, err := f.c.Complete(ctx, "SELECT", 6)
		assert.EqualError(t, err, "timed out")
	})
}

func TestCompleteWithLogging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.client.EXPECT().IsInitialized().Return(true)
	f.client.EXPECT().OnEdit(ctx, "SELECT").Return(errors.New("no language server session"))
	f.console.EXPECT().Error("no language server session")

	start, candidates := f.c.CompleteWithLogging(ctx, "SELECT", 6)
	assert.Equal(t, 0, start)
	assert.Nil(t, candidates)
	assert.Equal(t, int64(1), f.stats.Snapshot().Counters()["testing.completer.errors+"].Value())
}

func TestFindSQLTokenStart(t *testing.T) {
	tests := []struct {
		line string
		pos  int
		want int
	}{
		{line: " ", pos: 0, want: 0},
		{line: "CREATE", pos: 6, want: 0},
		{line: "CREATE ", pos: 7, want: 7},
		{line: "public.", pos: 7, want: 7},
		{line: "SELECT a.b", pos: 9, want: 9},
		{line: "SELECT\tna", pos: 9, want: 7},
		{line: "é.x", pos: 4, want: 3},
		{line: "abc", pos: 10, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, findSQLTokenStart(tt.line, tt.pos), "%q at %d", tt.line, tt.pos)
	}
}
