package tsp

import "sync/atomic"

// AbortSignal is a cooperative cancellation flag scoped to one instrument
// session. Any goroutine may set it at any time; the sweep sequencer and the
// measurement orchestrator observe it at fixed checkpoints only: before a
// sweep starts its configuration, and between sweeps of a measurement
// sequence.
//
// A running sweep is never interrupted, the instrument's trigger model cannot
// be stopped once started. The signal stays set until explicitly cleared;
// the orchestrator re-arms it at the start of each measurement sequence.
type AbortSignal struct {
	flag atomic.Bool
}

// Set raises the signal. Safe for concurrent use.
func (s *AbortSignal) Set() { s.flag.Store(true) }

// Clear re-arms the signal for a new measurement sequence.
func (s *AbortSignal) Clear() { s.flag.Store(false) }

// IsSet reports whether the signal has been raised.
func (s *AbortSignal) IsSet() bool { return s.flag.Load() }
