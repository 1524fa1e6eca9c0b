package tsp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptSweeps queues status-register responses for n completed sweeps. The
// buffers stay empty (length 0), which is all the orchestration tests need.
func scriptSweeps(st *stubTransport, n int) {
	for i := 0; i < n; i++ {
		st.script("status.operation.sweeping.condition", "2", "0")
	}
}

func TestTransferMeasurement(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t)
	scriptSweeps(st, 4)

	set, err := inst.TransferMeasurement(MeasurementConfig{
		Gate:            ChannelA,
		Drain:           ChannelB,
		Start:           10,
		Stop:            -60,
		Step:            1,
		Biases:          []float64{-5, -60},
		IntegrationTime: 0.1,
		Delay:           -1,
	})
	require.NoError(err)

	require.Equal(TransferSweep, set.Type)
	require.Len(set.Records, 4, "two biases, forward and reverse each")

	require.Equal(-5.0, set.Records[0].Bias)
	require.Equal(Forward, set.Records[0].Direction)
	require.Equal(-5.0, set.Records[1].Bias)
	require.Equal(Reverse, set.Records[1].Direction)
	require.Equal(-60.0, set.Records[2].Bias)
	require.Equal(Forward, set.Records[2].Direction)
	require.Equal(-60.0, set.Records[3].Bias)
	require.Equal(Reverse, set.Records[3].Direction)

	// The gate sweeps while the drain holds each bias.
	require.True(st.hasWrite("result = smua.trigger.source.linearv(10, -60, 71)"))
	require.True(st.hasWrite("result = smub.trigger.source.linearv(-5, -5, 71)"))
	require.True(st.hasWrite("result = smub.trigger.source.linearv(-60, -60, 71)"))
	// Reverse passes run the ramp backwards.
	require.True(st.hasWrite("result = smua.trigger.source.linearv(-60, 10, 71)"))

	// The instrument is reset into a safe state afterwards.
	require.True(st.hasWrite("result = reset()"))
	require.False(inst.Busy())
}

func TestOutputMeasurement(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t)
	scriptSweeps(st, 2)

	set, err := inst.OutputMeasurement(MeasurementConfig{
		Gate:            ChannelA,
		Drain:           ChannelB,
		Start:           0,
		Stop:            5,
		Step:            1,
		Biases:          []float64{-40},
		IntegrationTime: 0.1,
	})
	require.NoError(err)

	require.Equal(OutputSweep, set.Type)
	require.Len(set.Records, 2)
	require.Equal(-40.0, set.Records[0].Bias)

	// Output curves sweep the drain and bias the gate.
	require.True(st.hasWrite("result = smub.trigger.source.linearv(0, 5, 6)"))
	require.True(st.hasWrite("result = smua.trigger.source.linearv(-40, -40, 6)"))
}

func TestMeasurementAbortMidSequence(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t)
	scriptSweeps(st, 1)

	// Raise the abort signal once the first sweep's completion poll sees
	// the register drop back to zero.
	finishPolls := 0
	st.afterQuery = func(expr string) {
		if expr != "status.operation.sweeping.condition" {
			return
		}
		finishPolls++
		if finishPolls == 2 {
			inst.Abort().Set()
		}
	}

	set, err := inst.TransferMeasurement(MeasurementConfig{
		Gate:            ChannelA,
		Drain:           ChannelB,
		Start:           0,
		Stop:            5,
		Step:            1,
		Biases:          []float64{-5, -60},
		IntegrationTime: 0.1,
	})
	require.NoError(err)

	// The forward pass of the first bias completed before the abort and is
	// discarded per the abort-discard rule, the reverse pass never ran, and
	// the second bias was skipped. The partial set is returned, not an
	// error.
	require.Equal(TransferSweep, set.Type)
	require.Empty(set.Records)
	require.True(st.hasWrite("result = reset()"))

	// No sweep traffic for the second bias.
	require.False(st.hasWrite("result = smub.trigger.source.linearv(-60, -60, 6)"))
}

func TestMeasurementRearmsAbort(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t)
	scriptSweeps(st, 2)

	// A stale abort from a previous sequence is cleared when a new
	// measurement starts.
	inst.Abort().Set()

	set, err := inst.TransferMeasurement(MeasurementConfig{
		Gate:            ChannelA,
		Drain:           ChannelB,
		Start:           0,
		Stop:            5,
		Step:            1,
		Biases:          []float64{0},
		IntegrationTime: 0.1,
	})
	require.NoError(err)
	require.Len(set.Records, 2)
	require.False(inst.Abort().IsSet())
}
