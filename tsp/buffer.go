package tsp

import (
	"fmt"

	"go.uber.org/multierr"
)

// ReadBuffer drains the named on-instrument reading buffer, e.g.
// "smua.nvbuffer1". It reads the buffer length, then each element in order
// (TSP buffers are 1-indexed), and clears the buffer for reuse before
// returning.
func (inst *Instrument) ReadBuffer(name string) ([]float64, error) {
	v, err := inst.Query(name + ".n")
	if err != nil {
		return nil, err
	}
	n := int(v.Float64())

	out := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		v, err := inst.Query(fmt.Sprintf("%s[%d]", name, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v.Float64())
	}

	if err := inst.Write(name + ".clear()"); err != nil {
		return nil, err
	}
	if err := inst.Write(name + ".clearcache()"); err != nil {
		return nil, err
	}

	return out, nil
}

// ClearBuffers clears both reading buffers of the given channels. With no
// channels it clears both channels of the instrument. Errors from individual
// clears are combined; all buffers are attempted regardless of failures.
func (inst *Instrument) ClearBuffers(channels ...Channel) error {
	if len(channels) == 0 {
		channels = []Channel{ChannelA, ChannelB}
	}

	var err error
	for _, ch := range channels {
		if !ch.Valid() {
			err = multierr.Append(err, fmt.Errorf("%w: %q", ErrUnknownChannel, ch))
			continue
		}
		for _, buf := range []string{"nvbuffer1", "nvbuffer2"} {
			name := string(ch) + "." + buf
			err = multierr.Append(err, inst.Write(name+".clear()"))
			err = multierr.Append(err, inst.Write(name+".clearcache()"))
		}
	}

	return err
}
