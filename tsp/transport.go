package tsp

import (
	"context"
	"time"
)

// Transport is the line-oriented link to the instrument. Implementations
// carry the connect/close lifecycle and the read timeout; the driver above
// them is strictly request/response with no pipelining.
//
// Query writes one command line and blocks for one reply line, with the
// trailing line terminator stripped. Its signature matches the gotmc
// query.Querier contract so transports plug into instrument tooling built
// against that interface.
type Transport interface {
	// Connect establishes the link. The context bounds connection setup only.
	Connect(ctx context.Context) error
	// WriteLine sends one newline-terminated command line.
	WriteLine(line string) error
	// Query sends one command line and returns the reply line.
	Query(cmd string) (string, error)
	// SetQueryTimeout sets the reply read timeout applied to queries. The
	// instrument pushes its configured timeout through this before Connect;
	// non-positive values are ignored.
	SetQueryTimeout(d time.Duration)
	// Close tears down the link.
	Close() error
}
