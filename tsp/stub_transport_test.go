package tsp

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubTransport is an in-memory transport for tests. Writes of the form
// "lhs = rhs" are echoed into a backing store so that subsequent queries of
// lhs return what was written; scripted responses take precedence over the
// store, and everything else answers "0".
type stubTransport struct {
	mu           sync.Mutex
	connected    bool
	queryTimeout time.Duration

	writes    []string
	queryCmds []string

	store     map[string]string
	responses map[string][]string

	// afterQuery, when set, runs after each query with the queried
	// expression. Tests use it to raise the abort signal mid-sequence.
	afterQuery func(expr string)
}

func newStubTransport() *stubTransport {
	return &stubTransport{
		store: map[string]string{
			"localnode.linefreq": "50",
		},
		responses: make(map[string][]string),
	}
}

func (st *stubTransport) Connect(_ context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.connected = true
	return nil
}

func (st *stubTransport) SetQueryTimeout(d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if d > 0 {
		st.queryTimeout = d
	}
}

func (st *stubTransport) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.connected = false
	return nil
}

func (st *stubTransport) WriteLine(line string) error {
	st.mu.Lock()
	st.writes = append(st.writes, line)
	if lhs, rhs, ok := strings.Cut(line, " = "); ok {
		st.store[lhs] = rhs
	}
	st.mu.Unlock()
	return nil
}

func (st *stubTransport) Query(cmd string) (string, error) {
	expr := strings.TrimSuffix(strings.TrimPrefix(cmd, "print("), ")")

	st.mu.Lock()
	st.queryCmds = append(st.queryCmds, cmd)
	resp := "0"
	if queued := st.responses[expr]; len(queued) > 0 {
		resp = queued[0]
		st.responses[expr] = queued[1:]
	} else if stored, ok := st.store[expr]; ok {
		resp = stored
	}
	hook := st.afterQuery
	st.mu.Unlock()

	if hook != nil {
		hook(expr)
	}

	return resp, nil
}

// script queues responses for queries of the given expression, consumed in
// order before the backing store is consulted.
func (st *stubTransport) script(expr string, responses ...string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.responses[expr] = append(st.responses[expr], responses...)
}

// put seeds the backing store.
func (st *stubTransport) put(expr, value string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.store[expr] = value
}

// reset clears the recorded traffic, keeping store and scripts.
func (st *stubTransport) reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.writes = nil
	st.queryCmds = nil
}

func (st *stubTransport) writeCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.writes)
}

func (st *stubTransport) queryCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.queryCmds)
}

// countWrites returns how many recorded write lines equal line exactly.
func (st *stubTransport) countWrites(line string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	count := 0
	for _, w := range st.writes {
		if w == line {
			count++
		}
	}
	return count
}

// countQueries returns how many queries asked for the given expression.
func (st *stubTransport) countQueries(expr string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	count := 0
	for _, q := range st.queryCmds {
		if q == "print("+expr+")" {
			count++
		}
	}
	return count
}

func (st *stubTransport) hasWrite(line string) bool {
	return st.countWrites(line) > 0
}

// newTestInstrument returns a connected instrument over a fresh stub
// transport, with the connect chord traffic already cleared from the record.
func newTestInstrument(t *testing.T, opts ...ConfigOption) (*Instrument, *stubTransport) {
	t.Helper()

	cfg, err := NewConfig(opts...)
	require.NoError(t, err)

	st := newStubTransport()
	inst, err := NewInstrument(st, cfg)
	require.NoError(t, err)
	require.NoError(t, inst.Connect(context.Background()))

	st.reset()

	return inst, st
}
