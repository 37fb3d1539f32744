package main

import (
	"os"
	"testing"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/goleak"
)

func TestDependenciesAreSatisfied(t *testing.T) {
	assert.NoError(t, fx.ValidateApp(opts()))
}

func TestFlagsApply(t *testing.T) {
	t.Setenv(_envServerKind, "")
	t.Setenv(_envConnection, "")
	t.Setenv(core.ConfigDirEnv, "")

	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{
		"--config-dir", "/etc/sqlfriend",
		"--server-kind", "sql-language-server",
		"--connection", "warehouse",
	}))
	dir, err := cmd.Flags().GetString("config-dir")
	require.NoError(t, err)
	kind, err := cmd.Flags().GetString("server-kind")
	require.NoError(t, err)
	conn, err := cmd.Flags().GetString("connection")
	require.NoError(t, err)

	require.NoError(t, flags{configDir: dir, serverKind: kind, connection: conn}.apply())
	assert.Equal(t, "/etc/sqlfriend", os.Getenv(core.ConfigDirEnv))
	assert.Equal(t, "sql-language-server", os.Getenv(_envServerKind))
	assert.Equal(t, "warehouse", os.Getenv(_envConnection))
}

func TestFlagsRejectUnknownServer(t *testing.T) {
	t.Setenv(_envServerKind, "")

	err := flags{serverKind: "vim"}.apply()
	assert.ErrorContains(t, err, "unknown language server \"vim\"")
	assert.Equal(t, "", os.Getenv(_envServerKind))
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
