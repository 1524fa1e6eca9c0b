package tsp

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSweepConfigPointCount(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		stop   float64
		step   float64
		points int
	}{
		{"descending 61 points", 0, -60, 1, 61},
		{"ascending 6 points", 0, 5, 1, 6},
		{"fractional step", 0, 1, 0.25, 5},
		{"single point", 2, 2, 1, 1},
		{"zero step degenerates", 0, 5, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SweepConfig{Start: tt.start, Stop: tt.stop, Step: tt.step}
			require.Equal(t, tt.points, cfg.PointCount())
		})
	}
}

func TestSweepConfigValidate(t *testing.T) {
	require := require.New(t)

	base := SweepConfig{Sweep: ChannelA, Fixed: ChannelB, Step: 1}
	require.NoError(base.validate())

	bad := base
	bad.Sweep = Channel("smuc")
	require.ErrorIs(bad.validate(), ErrUnknownChannel)

	bad = base
	bad.Fixed = ChannelA
	require.ErrorIs(bad.validate(), ErrSameChannel)

	bad = base
	bad.Step = 0
	require.ErrorIs(bad.validate(), ErrZeroStep)
}

// seedSweepBuffers seeds one completed 6-point sweep: the status register
// reports "2" (channel A sweeping) once and then "0", and all four buffers
// hold 6 samples.
func seedSweepBuffers(st *stubTransport) {
	st.script("status.operation.sweeping.condition", "2", "0")

	for _, buf := range []string{"smua.nvbuffer1", "smua.nvbuffer2", "smub.nvbuffer1", "smub.nvbuffer2"} {
		st.put(buf+".n", "6")
	}
	for i := 1; i <= 6; i++ {
		st.put(fmt.Sprintf("smua.nvbuffer2[%d]", i), fmt.Sprintf("%d", i-1))         // sweep voltage 0..5
		st.put(fmt.Sprintf("smua.nvbuffer1[%d]", i), fmt.Sprintf("%g", 1e-3*float64(i))) // sweep current
		st.put(fmt.Sprintf("smub.nvbuffer2[%d]", i), "0")                            // fixed voltage
		st.put(fmt.Sprintf("smub.nvbuffer1[%d]", i), fmt.Sprintf("%g", 1e-6*float64(i))) // fixed current
	}
}

func TestVoltageSweep(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t)
	seedSweepBuffers(st)

	result, err := inst.VoltageSweep(SweepConfig{
		Sweep:           ChannelA,
		Fixed:           ChannelB,
		Start:           0,
		Stop:            5,
		Step:            1,
		Mode:            SweepModeFixed,
		Bias:            0,
		IntegrationTime: 0.1,
		Delay:           -1,
		Pulsed:          false,
	})
	require.NoError(err)

	require.Len(result.SweepVoltage, 6)
	require.Len(result.SweepCurrent, 6)
	require.Len(result.FixedVoltage, 6)
	require.Len(result.FixedCurrent, 6)
	require.Equal([]float64{0, 1, 2, 3, 4, 5}, result.SweepVoltage)
	require.InDelta(1e-3, result.SweepCurrent[0], 1e-12)
	require.InDelta(6e-6, result.FixedCurrent[5], 1e-15)

	// Both sources ramp linearly; the fixed channel's ramp degenerates to a
	// constant.
	require.True(st.hasWrite("result = smua.trigger.source.linearv(0, 5, 6)"))
	require.True(st.hasWrite("result = smub.trigger.source.linearv(0, 0, 6)"))

	// 0.1 s at 50 Hz is 5 power-line cycles on both channels.
	require.True(st.hasWrite("smua.measure.nplc = 5"))
	require.True(st.hasWrite("smub.measure.nplc = 5"))

	// Trigger counts equal the point count.
	require.True(st.hasWrite("smua.trigger.count = 6"))
	require.True(st.hasWrite("smub.trigger.count = 6"))

	// Both measure triggers fire on the sweep channel's source-complete
	// event.
	require.Equal(2, st.countQueries("smua.trigger.SOURCE_COMPLETE_EVENT_ID"))

	// Event blender wiring: OR blender drives the source, AND blender gates
	// the end of pulse.
	require.True(st.hasWrite("trigger.blender[1].orenable = true"))
	require.True(st.hasWrite("trigger.blender[2].orenable = false"))

	// The sweep is started with a single broadcast software trigger.
	require.True(st.hasWrite("result = smua.trigger.initiate()"))
	require.True(st.hasWrite("result = smub.trigger.initiate()"))
	require.True(st.hasWrite("*trg"))

	// Two-phase completion poll: once for the start guard, once for the
	// finish.
	require.Equal(2, st.countQueries("status.operation.sweeping.condition"))

	// Every buffer is drained once and cleared twice: once by the drain,
	// once by the final cleanup.
	for _, buf := range []string{"smua.nvbuffer1", "smua.nvbuffer2", "smub.nvbuffer1", "smub.nvbuffer2"} {
		require.Equal(1, st.countQueries(buf+".n"), buf)
		require.Equal(2, st.countWrites(buf+".clear()"), buf)
		require.Equal(2, st.countWrites(buf+".clearcache()"), buf)
	}

	require.Equal(uint64(1), inst.Metrics().SweepCount.Load())
	require.False(inst.Busy())
}

func TestVoltageSweepTrailing(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t)
	seedSweepBuffers(st)

	_, err := inst.VoltageSweep(SweepConfig{
		Sweep:           ChannelA,
		Fixed:           ChannelB,
		Start:           0,
		Stop:            5,
		Step:            1,
		Mode:            SweepModeTrailing,
		IntegrationTime: 0.1,
		Delay:           -1,
	})
	require.NoError(err)

	// In trailing mode the second channel sweeps the same ramp.
	require.True(st.hasWrite("result = smub.trigger.source.linearv(0, 5, 6)"))
}

func TestVoltageSweepPulsed(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t)
	seedSweepBuffers(st)

	st.put("smua.SOURCE_IDLE", "0")
	st.put("smua.SOURCE_HOLD", "1")

	_, err := inst.VoltageSweep(SweepConfig{
		Sweep:           ChannelA,
		Fixed:           ChannelB,
		Start:           0,
		Stop:            5,
		Step:            1,
		IntegrationTime: 0.1,
		Pulsed:          true,
	})
	require.NoError(err)

	// Pulsed sweeps return the source to idle between points.
	require.True(st.hasWrite("smua.trigger.endpulse.action = 0"))
	require.True(st.hasWrite("smua.trigger.endsweep.action = 0"))
	require.Equal(1, st.countQueries("smua.SOURCE_IDLE"))
	require.Zero(st.countQueries("smua.SOURCE_HOLD"))
}

func TestVoltageSweepAborted(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t)

	inst.Abort().Set()
	result, err := inst.VoltageSweep(SweepConfig{
		Sweep: ChannelA,
		Fixed: ChannelB,
		Start: 0,
		Stop:  5,
		Step:  1,
	})
	require.NoError(err)

	require.Empty(result.SweepVoltage)
	require.Empty(result.SweepCurrent)
	require.Empty(result.FixedVoltage)
	require.Empty(result.FixedCurrent)
	require.Zero(st.writeCount(), "aborted sweep must not touch the instrument")
	require.Zero(st.queryCount())
}

func TestVoltageSweepTimeout(t *testing.T) {
	require := require.New(t)
	inst, _ := newTestInstrument(t,
		WithPollInterval(time.Millisecond),
		WithSweepTimeout(20*time.Millisecond),
	)

	// The status register stays at its pre-start zero: the sweep never
	// starts and the bounded poll gives up.
	_, err := inst.VoltageSweep(SweepConfig{
		Sweep:           ChannelA,
		Fixed:           ChannelB,
		Start:           0,
		Stop:            5,
		Step:            1,
		IntegrationTime: 0.1,
	})
	require.ErrorIs(err, ErrSweepTimeout)
}

func TestVoltageSweepTimeoutSpansBothPhases(t *testing.T) {
	require := require.New(t)
	inst, st := newTestInstrument(t,
		WithPollInterval(time.Millisecond),
		WithSweepTimeout(20*time.Millisecond),
	)

	// The start guard succeeds on its first poll, but only after the whole
	// budget has elapsed. A per-phase allowance would grant the finish poll
	// a fresh 20ms; the single deadline fails it before it ever queries.
	st.script("status.operation.sweeping.condition", "2")
	st.afterQuery = func(expr string) {
		if expr == "status.operation.sweeping.condition" {
			time.Sleep(30 * time.Millisecond)
		}
	}

	_, err := inst.VoltageSweep(SweepConfig{
		Sweep:           ChannelA,
		Fixed:           ChannelB,
		Start:           0,
		Stop:            5,
		Step:            1,
		IntegrationTime: 0.1,
	})
	require.ErrorIs(err, ErrSweepTimeout)
	require.Equal(1, st.countQueries("status.operation.sweeping.condition"))
}
