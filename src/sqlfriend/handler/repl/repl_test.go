package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/client/clientmock"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/completer"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/controller/orchestrator/orchestratormock"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/gateway/console"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/command"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/repository/connection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/config"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const _testConfig = `
console:
  verbosity: standard
repl:
  serverKind: sqls
`

const _testConnections = `
connections:
  - name: local
    settings:
      driver: sqlite
      filename: local.db
  - name: warehouse
    settings:
      driver: postgres
      host: localhost
      port: "5432"
      database: dw
`

var (
	_local = entity.Connection{
		Name:     "local",
		Settings: entity.ConnectionSettings{Driver: entity.DriverSqlite, Filename: "local.db"},
	}
	_warehouse = entity.Connection{
		Name: "warehouse",
		Settings: entity.ConnectionSettings{
			Driver:   entity.DriverPostgres,
			Host:     "localhost",
			Port:     "5432",
			Database: "dw",
		},
	}
)

type fixture struct {
	handler      Handler
	client       *clientmock.MockClient
	orchestrator *orchestratormock.MockOrchestrator
	console      console.Gateway
	stats        tally.TestScope
}

func newFixture(t *testing.T, yaml string) *fixture {
	ctrl := gomock.NewController(t)
	provider, err := config.NewYAML(config.Source(strings.NewReader(yaml)))
	require.NoError(t, err)
	stats := tally.NewTestScope("testing", make(map[string]string, 0))
	logger := zap.NewNop().Sugar()

	gw, err := console.New(console.Params{Config: provider, Logger: logger, Stats: stats})
	require.NoError(t, err)
	connections, err := connection.New(connection.Params{Config: provider, Stats: stats})
	require.NoError(t, err)
	commands := command.New()
	c := clientmock.NewMockClient(ctrl)
	o := orchestratormock.NewMockOrchestrator(ctrl)

	h, err := New(Params{
		Config:       provider,
		Commands:     commands,
		Connections:  connections,
		Orchestrator: o,
		Client:       c,
		Completer: completer.New(completer.Params{
			Client:      c,
			Commands:    commands,
			Connections: connections,
			Console:     gw,
			Logger:      logger,
			Stats:       stats,
		}),
		Console: gw,
		Logger:  logger,
		Stats:   stats,
	})
	require.NoError(t, err)

	return &fixture{handler: h, client: c, orchestrator: o, console: gw, stats: stats}
}

func (f *fixture) run(t *testing.T, input string) string {
	var out bytes.Buffer
	require.NoError(t, f.handler.Run(context.Background(), strings.NewReader(input), &out))
	return out.String()
}

func TestCommands(t *testing.T) {
	f := newFixture(t, _testConfig+_testConnections)
	f.orchestrator.EXPECT().Spawn(gomock.Any(), entity.ServerKindSqls, _local).Return(nil)

	out := f.run(t, "/help\n/list\n/bogus\n/use\n/use nope\n")

	assert.Contains(t, out, "Connecting to local...\n")
	for _, line := range HelpLines(command.New().All()) {
		assert.Contains(t, out, line+"\n")
	}
	assert.Contains(t, out, "local: Sqlite { filename: \"local.db\" }\n")
	assert.Contains(t, out, "warehouse: Postgres { host: \"localhost\", port: \"5432\", user: \"\", database: \"dw\" }\n")
	assert.Contains(t, out, "Unknown command \"bogus\". Type /help for a list of commands.\n")
	assert.Contains(t, out, "usage: /use <connection_name>\n")
	assert.Contains(t, out, "connection \"nope\" doesn't exist\n")

	counters := f.stats.Snapshot().Counters()
	assert.Equal(t, int64(5), counters["testing.repl.lines+"].Value())
	assert.Equal(t, int64(5), counters["testing.repl.commands+"].Value())
}

func TestUseAndSetServer(t *testing.T) {
	f := newFixture(t, _testConfig+_testConnections)
	gomock.InOrder(
		f.orchestrator.EXPECT().Spawn(gomock.Any(), entity.ServerKindSqls, _local).Return(nil),
		f.orchestrator.EXPECT().Spawn(gomock.Any(), entity.ServerKindSqls, _warehouse).Return(nil),
		f.orchestrator.EXPECT().Spawn(gomock.Any(), entity.ServerKindPostgresTools, _warehouse).Return(nil),
	)

	out := f.run(t, "/use warehouse\n/set_lsp_server PostgresTools\n/set_lsp_server vim\n/set_lsp_server\n")

	assert.Contains(t, out, "Connecting to warehouse...\n")
	assert.Contains(t, out, "Language server set to postgrestools.\n")
	assert.Contains(t, out, "unknown language server \"vim\"")
	assert.Contains(t, out, "usage: /set_lsp_server <lsp_server>\n")
}

func TestEditAndComplete(t *testing.T) {
	f := newFixture(t, _testConfig)
	f.client.EXPECT().IsInitialized().Return(true).AnyTimes()
	gomock.InOrder(
		f.client.EXPECT().OnEdit(gomock.Any(), "SELECT 1").Return(nil),
		f.client.EXPECT().OnEdit(gomock.Any(), "SELECT na").Return(nil),
		f.client.EXPECT().RequestCompletion(gomock.Any(), uint32(0), uint32(9)).Return([]string{"name"}, nil),
		f.client.EXPECT().OnEdit(gomock.Any(), "SELECT ").Return(nil),
		f.client.EXPECT().RequestCompletion(gomock.Any(), uint32(0), uint32(7)).Return([]string{}, nil),
	)

	out := f.run(t, "SELECT 1\n\nSELECT na\t\nSELECT \t\n/us\t\n")

	assert.Contains(t, out, "No connection configured. Type /help for a list of commands.\n")
	assert.Contains(t, out, "  name\nSELECT name\n")
	assert.Contains(t, out, "no completions\n")
	assert.Contains(t, out, "  /use\n/use\n")
	assert.Equal(t, int64(3), f.stats.Snapshot().Counters()["testing.repl.completions+"].Value())
}

func TestEditWithoutSession(t *testing.T) {
	f := newFixture(t, _testConfig)
	f.client.EXPECT().IsInitialized().Return(false)

	out := f.run(t, "SELECT 1\n")
	assert.Contains(t, out, "Not connected to a language server. Type /help for a list of commands.\n")
}

func TestEditFailureIsPrinted(t *testing.T) {
	f := newFixture(t, _testConfig)
	f.client.EXPECT().IsInitialized().Return(true)
	f.client.EXPECT().OnEdit(gomock.Any(), "SELECT 1").Return(errors.New("channel closed"))

	out := f.run(t, "SELECT 1\n")
	assert.Contains(t, out, "channel closed\n")
}

func TestDiagnosticsArePrinted(t *testing.T) {
	f := newFixture(t, _testConfig+_testConnections)
	f.orchestrator.EXPECT().Spawn(gomock.Any(), entity.ServerKindSqls, _local).
		DoAndReturn(func(context.Context, entity.ServerKind, entity.Connection) error {
			f.console.PublishDiagnostics(entity.DiagnosticReport{URI: "repl:///repl", Text: "Error: syntax error"})
			return nil
		})

	out := f.run(t, "")
	assert.Contains(t, out, "Error: syntax error\n")
}

func TestSpawnFailureEndsRun(t *testing.T) {
	f := newFixture(t, _testConfig+_testConnections)
	f.orchestrator.EXPECT().Spawn(gomock.Any(), entity.ServerKindSqls, _local).Return(errors.New("queue closed"))

	err := f.handler.Run(context.Background(), strings.NewReader("/list\n"), io.Discard)
	assert.EqualError(t, err, "requesting sqls session: queue closed")
}

func TestRunStopsOnContext(t *testing.T) {
	f := newFixture(t, _testConfig)
	in, inWriter := io.Pipe()
	defer inWriter.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.handler.Run(ctx, in, io.Discard) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler did not stop")
	}
}

func TestNewRejectsUnknownServer(t *testing.T) {
	provider, err := config.NewYAML(config.Source(strings.NewReader("repl:\n  serverKind: vim\n")))
	require.NoError(t, err)
	_, err = New(Params{Config: provider, Logger: zap.NewNop().Sugar(), Stats: tally.NoopScope})
	assert.ErrorContains(t, err, "unknown language server \"vim\"")
}

func TestHelpLines(t *testing.T) {
	lines := HelpLines([]entity.Command{
		{Name: "help", Usage: "/help", Description: "Show this help message"},
		{Name: "use", Usage: "/use <connection_name>", Description: "Connect"},
	})
	assert.Equal(t, []string{
		"\t/help                               - Show this help message",
		"\t/use <connection_name>              - Connect",
	}, lines)
}
