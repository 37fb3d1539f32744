package correlation

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/jsonrpc2"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func response(t *testing.T, id jsonrpc2.ID, result interface{}) *jsonrpc2.Response {
	resp, err := jsonrpc2.NewResponse(id, result, nil)
	require.NoError(t, err)
	return resp
}

func TestResolve(t *testing.T) {
	r := New()
	id := jsonrpc2.NewStringID("a")
	ch := r.Register(id)
	assert.Equal(t, 1, r.Pending())

	assert.True(t, r.Resolve(response(t, id, "ok")))
	got, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, id, got.ID())
	assert.Equal(t, 0, r.Pending())

	// A second response with the same id has nobody waiting.
	assert.False(t, r.Resolve(response(t, id, "late")))
}

func TestResolveUnknown(t *testing.T) {
	r := New()
	assert.False(t, r.Resolve(response(t, jsonrpc2.NewStringID("nobody"), nil)))
}

func TestCancel(t *testing.T) {
	r := New()
	id := jsonrpc2.NewStringID("a")
	r.Register(id)
	r.Cancel(id)
	assert.Equal(t, 0, r.Pending())
	assert.False(t, r.Resolve(response(t, id, nil)))
}

func TestClose(t *testing.T) {
	r := New()
	ch := r.Register(jsonrpc2.NewStringID("a"))
	r.Close()
	r.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late := r.Register(jsonrpc2.NewStringID("b"))
	_, ok = <-late
	assert.False(t, ok)
}

func TestOutOfOrderResponses(t *testing.T) {
	r := New()
	const n = 50

	ids := make([]jsonrpc2.ID, n)
	chans := make([]<-chan *jsonrpc2.Response, n)
	for i := range ids {
		ids[i] = jsonrpc2.NewStringID(fmt.Sprintf("req-%d", i))
		chans[i] = r.Register(ids[i])
	}

	var wg sync.WaitGroup
	results := make([]int, n)
	for i := range chans {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := <-chans[i]
			var v int
			assert.NoError(t, json.Unmarshal(resp.Result(), &v))
			results[i] = v
		}(i)
	}

	for i := n - 1; i >= 0; i-- {
		require.True(t, r.Resolve(response(t, ids[i], i)))
	}
	wg.Wait()

	for i, v := range results {
		assert.Equal(t, i, v)
	}
}
