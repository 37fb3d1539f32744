package document

import (
	"sync"

	"github.com/uber-go/tally"
	"go.uber.org/fx"
)

// Module is the Fx module for this package.
var Module = fx.Provide(New)

// Repository holds the text of the single document shared with the language server.
type Repository interface {
	// Get returns the last text set.
	Get() string
	// Set overwrites the text.
	Set(text string)
}

type repository struct {
	mu    sync.Mutex
	text  string
	stats tally.Scope
}

// New returns a Repository holding an empty document.
func New(stats tally.Scope) Repository {
	return &repository{
		stats: stats.SubScope("document"),
	}
}

// Get returns the last text set.
func (r *repository) Get() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.text
}

// Set overwrites the text.
func (r *repository) Set(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.text = text
	r.stats.Gauge("bytes").Update(float64(len(text)))
}
