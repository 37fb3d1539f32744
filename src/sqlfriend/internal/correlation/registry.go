// Package correlation matches responses read from a language server to the requests awaiting them.
package correlation

import (
	"sync"

	"go.lsp.dev/jsonrpc2"
)

// Registry holds one pending slot per in-flight request id.
// A Registry belongs to a single session and is discarded with it.
type Registry struct {
	mu      sync.Mutex
	pending map[jsonrpc2.ID]chan *jsonrpc2.Response
	closed  bool
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		pending: make(map[jsonrpc2.ID]chan *jsonrpc2.Response),
	}
}

// Register reserves a slot for id. It must be called before the request is sent so
// that a fast response cannot be missed. The returned channel receives at most one
// response and is closed without a value when the registry is closed.
func (r *Registry) Register(id jsonrpc2.ID) <-chan *jsonrpc2.Response {
	ch := make(chan *jsonrpc2.Response, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		close(ch)
		return ch
	}
	r.pending[id] = ch
	return ch
}

// Cancel releases the slot for id, e.g. after the caller timed out.
func (r *Registry) Cancel(id jsonrpc2.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, id)
}

// Resolve delivers resp to the request waiting on its id.
// It reports false when no request is waiting for that id.
func (r *Registry) Resolve(resp *jsonrpc2.Response) bool {
	r.mu.Lock()
	ch, ok := r.pending[resp.ID()]
	if ok {
		delete(r.pending, resp.ID())
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	ch <- resp
	return true
}

// Pending returns the number of requests awaiting a response.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.pending)
}

// Close releases every waiter. Later registrations are closed immediately.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for id, ch := range r.pending {
		close(ch)
		delete(r.pending, id)
	}
}
