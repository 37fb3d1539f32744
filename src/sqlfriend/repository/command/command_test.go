package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIsSorted(t *testing.T) {
	r := New()
	names := make([]string, 0)
	for _, c := range r.All() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"help", "list", "set_lsp_server", "use"}, names)

	// Callers cannot mutate the registry.
	all := r.All()
	all[0].Name = "changed"
	c, ok := r.Get("help")
	require.True(t, ok)
	assert.Equal(t, "help", c.Name)
}

func TestGet(t *testing.T) {
	r := New()
	c, ok := r.Get(NameUse)
	require.True(t, ok)
	assert.Equal(t, "/use <connection_name>", c.Usage)

	_, ok = r.Get("add")
	assert.False(t, ok)
}

func TestIsMaybeCommand(t *testing.T) {
	r := New()
	assert.True(t, r.IsMaybeCommand("/"))
	assert.True(t, r.IsMaybeCommand("/us"))
	assert.False(t, r.IsMaybeCommand("SELECT 1"))
	assert.False(t, r.IsMaybeCommand(" /help"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		name string
		arg  string
		ok   bool
	}{
		{line: "/help", name: "help", ok: true},
		{line: "/use local ", name: "use", arg: "local", ok: true},
		{line: "/set_lsp_server   postgrestools", name: "set_lsp_server", arg: "postgrestools", ok: true},
		{line: "/drop table", name: "drop", ok: false},
		{line: "SELECT 1", ok: false},
	}
	r := New()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, arg, ok := r.Parse(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.arg, arg)
		})
	}
}
