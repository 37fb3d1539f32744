package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/app"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/core"
	"go.uber.org/fx"
)

const (
	// Read by base.yaml through variable expansion.
	_envServerKind = "SQLFRIEND_SERVER_KIND"
	_envConnection = "SQLFRIEND_CONNECTION"
)

type flags struct {
	configDir  string
	serverKind string
	connection string
}

func opts() fx.Option {
	return fx.Options(
		app.Module,
	)
}

func newRootCommand() *cobra.Command {
	f := flags{}
	cmd := &cobra.Command{
		Use:   "sqlfriend",
		Short: "Interactive SQL prompt backed by a language server",
		Long: `sqlfriend reads SQL from stdin, keeps it in sync with a language server
(sqls, sql-language-server or postgrestools) and prints its diagnostics.

End a line with a tab to list completions. Type /help for the commands.`,
		Example: `  # Use the postgres connection called warehouse with postgrestools
  sqlfriend --connection warehouse --server-kind postgrestools`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.apply(); err != nil {
				return err
			}
			fx.New(opts()).Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&f.configDir, "config-dir", "", "directory holding meta.yaml (default $"+core.ConfigDirEnv+" or src/sqlfriend/config)")
	cmd.Flags().StringVar(&f.serverKind, "server-kind", "", "language server to start: sqls, sql-language-server or postgrestools")
	cmd.Flags().StringVar(&f.connection, "connection", "", "name of the configured connection to use at startup")
	return cmd
}

// apply exports the flags for the configuration loader.
func (f flags) apply() error {
	if f.serverKind != "" {
		if _, err := entity.ParseServerKind(f.serverKind); err != nil {
			return err
		}
		if err := os.Setenv(_envServerKind, f.serverKind); err != nil {
			return fmt.Errorf("setting server kind: %w", err)
		}
	}
	if f.connection != "" {
		if err := os.Setenv(_envConnection, f.connection); err != nil {
			return fmt.Errorf("setting connection: %w", err)
		}
	}
	if f.configDir != "" {
		if err := os.Setenv(core.ConfigDirEnv, f.configDir); err != nil {
			return fmt.Errorf("setting config directory: %w", err)
		}
	}
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
