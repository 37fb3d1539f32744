// Package connection holds the configured database connections and the one in use.
package connection

import (
	"fmt"
	"sync"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/errors"
	"github.com/uber-go/tally"
	"go.uber.org/config"
	"go.uber.org/fx"
)

// CurrentConfigKey names the connection selected at startup.
const CurrentConfigKey = "connection"

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Repository is a read-only set of connections with a mutable selection.
type Repository interface {
	// List returns the connections in configuration order.
	List() []entity.Connection
	// Get returns the connection called name.
	Get(name string) (entity.Connection, error)
	// Current returns the selected connection. ok is false when nothing is selected.
	Current() (conn entity.Connection, ok bool)
	// SetCurrent selects the connection called name.
	SetCurrent(name string) (entity.Connection, error)
}

// Params are inbound parameters to create a Repository.
type Params struct {
	fx.In

	Config config.Provider
	Stats  tally.Scope
}

type repository struct {
	connections []entity.Connection

	mu      sync.Mutex
	current string

	stats tally.Scope
}

// New loads the connections from configuration. Without an explicit selection the first
// connection is current.
func New(p Params) (Repository, error) {
	var connections []entity.Connection
	if err := p.Config.Get(entity.ConnectionsConfigKey).Populate(&connections); err != nil {
		return nil, fmt.Errorf("loading connections: %w", err)
	}
	seen := make(map[string]struct{}, len(connections))
	for _, c := range connections {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[c.Name]; ok {
			return nil, fmt.Errorf("duplicate connection %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	r := &repository{
		connections: connections,
		stats:       p.Stats.SubScope("connection"),
	}
	r.stats.Gauge("configured").Update(float64(len(connections)))

	var current string
	if err := p.Config.Get(CurrentConfigKey).Populate(&current); err != nil {
		return nil, fmt.Errorf("loading current connection: %w", err)
	}
	if current == "" {
		if len(connections) > 0 {
			r.current = connections[0].Name
		}
		return r, nil
	}
	if _, err := r.SetCurrent(current); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *repository) List() []entity.Connection {
	out := make([]entity.Connection, len(r.connections))
	copy(out, r.connections)
	return out
}

func (r *repository) Get(name string) (entity.Connection, error) {
	for _, c := range r.connections {
		if c.Name == name {
			return c, nil
		}
	}
	return entity.Connection{}, &errors.ConnectionNotFoundError{Name: name}
}

func (r *repository) Current() (entity.Connection, bool) {
	r.mu.Lock()
	name := r.current
	r.mu.Unlock()

	if name == "" {
		return entity.Connection{}, false
	}
	c, err := r.Get(name)
	return c, err == nil
}

func (r *repository) SetCurrent(name string) (entity.Connection, error) {
	c, err := r.Get(name)
	if err != nil {
		r.stats.Counter("not_found").Inc(1)
		return entity.Connection{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = c.Name
	return c, nil
}
