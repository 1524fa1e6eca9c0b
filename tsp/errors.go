package tsp

import (
	"errors"
	"fmt"
)

// Connection-level errors.
var (
	// ErrNotConnected indicates that a write or query was attempted while no
	// live transport is attached.
	ErrNotConnected = errors.New("tsp: instrument not connected")

	// ErrTimeout indicates that the transport did not deliver a reply line
	// within its read timeout.
	ErrTimeout = errors.New("tsp: transport read timeout")
)

// Namespace resolution errors.
var (
	// ErrReadOnly indicates that a write was attempted against a constant.
	ErrReadOnly = errors.New("tsp: attribute is read-only")

	// ErrNotGroup indicates that the accessed member is not a command group.
	ErrNotGroup = errors.New("tsp: member is not a command group")

	// ErrNotAttribute indicates that the accessed member is not a readable or
	// writable attribute.
	ErrNotAttribute = errors.New("tsp: member is not an attribute")

	// ErrNotFunction indicates that the accessed member is not callable.
	ErrNotFunction = errors.New("tsp: member is not a function")

	// ErrNotIndexed indicates that the accessed member is not an indexed
	// attribute list.
	ErrNotIndexed = errors.New("tsp: member is not an indexed attribute")
)

// Sweep and measurement errors.
var (
	// ErrUnknownChannel indicates that a channel other than smua or smub was
	// requested.
	ErrUnknownChannel = errors.New("tsp: unknown source-measure channel")

	// ErrSameChannel indicates that the sweep and fixed channels are identical.
	ErrSameChannel = errors.New("tsp: sweep and fixed channels must differ")

	// ErrZeroStep indicates a sweep configuration with a zero voltage step.
	ErrZeroStep = errors.New("tsp: sweep step must be non-zero")

	// ErrSweepTimeout indicates that the sweep status poll exceeded the
	// configured maximum wait.
	ErrSweepTimeout = errors.New("tsp: sweep did not complete before timeout")
)

// UnresolvedMemberError indicates that a member name did not classify as a
// function, property, constant, or command group. No instrument traffic occurs
// for unresolved members.
type UnresolvedMemberError struct {
	// Path is the full dotted path that failed to resolve.
	Path string
}

func (e *UnresolvedMemberError) Error() string {
	return fmt.Sprintf("tsp: unresolved member %q", e.Path)
}
