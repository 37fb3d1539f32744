// Package command holds the registry of REPL commands.
package command

import (
	"sort"
	"strings"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"go.uber.org/fx"
)

// Prefix starts every command line.
const Prefix = "/"

const (
	NameHelp         = "help"
	NameList         = "list"
	NameUse          = "use"
	NameSetLSPServer = "set_lsp_server"
)

var _commands = []entity.Command{
	{
		Name:        NameHelp,
		Description: "Show this help message",
		Usage:       Prefix + NameHelp,
	},
	{
		Name:        NameList,
		Description: "List all configured connections",
		Usage:       Prefix + NameList,
	},
	{
		Name:        NameUse,
		Description: "Connect to a configured connection",
		Usage:       Prefix + NameUse + " <connection_name>",
	},
	{
		Name:        NameSetLSPServer,
		Description: "Set the language server (sqls, sql-language-server or postgrestools). Should be available in $PATH.",
		Usage:       Prefix + NameSetLSPServer + " <lsp_server>",
	},
}

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Registry is the immutable set of REPL commands.
type Registry interface {
	// All returns every command sorted by name.
	All() []entity.Command
	// Get returns the command called name.
	Get(name string) (entity.Command, bool)
	// IsMaybeCommand reports whether line is being typed as a command.
	IsMaybeCommand(line string) bool
	// Parse splits a command line into the command name and its argument.
	Parse(line string) (name string, arg string, ok bool)
}

type registry struct {
	commands []entity.Command
	byName   map[string]entity.Command
}

// New returns the command Registry.
func New() Registry {
	commands := make([]entity.Command, len(_commands))
	copy(commands, _commands)
	sort.Slice(commands, func(i, j int) bool { return commands[i].Name < commands[j].Name })

	byName := make(map[string]entity.Command, len(commands))
	for _, c := range commands {
		byName[c.Name] = c
	}
	return &registry{commands: commands, byName: byName}
}

func (r *registry) All() []entity.Command {
	out := make([]entity.Command, len(r.commands))
	copy(out, r.commands)
	return out
}

func (r *registry) Get(name string) (entity.Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

func (r *registry) IsMaybeCommand(line string) bool {
	return strings.HasPrefix(line, Prefix)
}

func (r *registry) Parse(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if !r.IsMaybeCommand(line) {
		return "", "", false
	}
	fields := strings.SplitN(strings.TrimPrefix(line, Prefix), " ", 2)
	if _, ok := r.byName[fields[0]]; !ok {
		return fields[0], "", false
	}
	var arg string
	if len(fields) == 2 {
		arg = strings.TrimSpace(fields[1])
	}
	return fields[0], arg, true
}
