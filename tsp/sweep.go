package tsp

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/instrlab/go-tsp/internal/poll"
)

// SweepMode selects how the second channel behaves during a voltage sweep.
type SweepMode int

const (
	// SweepModeFixed holds the second channel at a constant bias voltage.
	SweepModeFixed SweepMode = iota
	// SweepModeTrailing sweeps the second channel simultaneously over the
	// same ramp as the sweep channel.
	SweepModeTrailing
)

// String returns the string representation of the sweep mode.
func (m SweepMode) String() string {
	switch m {
	case SweepModeFixed:
		return "fixed"
	case SweepModeTrailing:
		return "trailing"
	default:
		return "unknown"
	}
}

// SweepConfig describes one synchronized two-channel linear voltage sweep.
type SweepConfig struct {
	// Sweep is the channel whose source voltage is ramped.
	Sweep Channel
	// Fixed is the second channel, held at Bias or trailing per Mode.
	Fixed Channel

	// Start, Stop and Step define the linear ramp. The caller is responsible
	// for a step sign matching the start-to-stop direction; the point count
	// is computed from absolute values.
	Start float64
	Stop  float64
	Step  float64

	// Mode selects fixed-bias or trailing behavior of the second channel.
	Mode SweepMode
	// Bias is the constant voltage of the fixed channel in SweepModeFixed.
	Bias float64

	// IntegrationTime is the per-point measurement integration time in
	// seconds, converted to power-line cycles on the instrument.
	IntegrationTime float64
	// Delay is the settling delay before each measurement in seconds.
	Delay float64
	// Pulsed returns the source to idle between points instead of holding
	// the stepped voltage.
	Pulsed bool
}

// PointCount returns the number of sweep points, 1 + |stop-start| / |step|.
func (c SweepConfig) PointCount() int {
	if c.Step == 0 {
		return 1
	}
	return 1 + int(math.Abs((c.Stop-c.Start)/c.Step))
}

func (c SweepConfig) validate() error {
	if !c.Sweep.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, c.Sweep)
	}
	if !c.Fixed.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, c.Fixed)
	}
	if c.Sweep == c.Fixed {
		return ErrSameChannel
	}
	if c.Step == 0 {
		return ErrZeroStep
	}
	return nil
}

// SweepResult holds the four equal-length sample sequences captured during a
// sweep, or shorter sequences if the sweep was aborted before it started.
type SweepResult struct {
	SweepVoltage []float64
	SweepCurrent []float64
	FixedVoltage []float64
	FixedCurrent []float64
}

// sweepProgram accumulates the side-effecting remote writes that build up
// the trigger model. The first error stops all subsequent operations, so the
// configuration sequence below reads linearly.
type sweepProgram struct {
	inst *Instrument
	err  error
}

func (p *sweepProgram) get(path string) Value {
	if p.err != nil {
		return Value{}
	}
	v, err := p.inst.GetAttr(path)
	p.err = err
	return v
}

func (p *sweepProgram) set(path string, value any) {
	if p.err != nil {
		return
	}
	p.err = p.inst.SetAttr(path, value)
}

func (p *sweepProgram) call(path string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = p.inst.CallFunc(path, args...)
}

func (p *sweepProgram) write(line string) {
	if p.err != nil {
		return
	}
	p.err = p.inst.Write(line)
}

// VoltageSweep performs a synchronized two-channel linear voltage sweep with
// buffered measurement capture and returns the captured samples.
//
// The sweep channel's source steps from Start to Stop over PointCount
// points; the fixed channel either holds Bias or trails the same ramp. Both
// channels measure simultaneously: their measure triggers fire on the sweep
// channel's source-complete event, and an AND event blender keeps the next
// source step from starting before both channels finish measuring.
//
// The abort signal is checked once, before any instrument configuration; if
// already set, the sweep returns an empty result without touching the
// instrument. A running sweep cannot be interrupted, the trigger model
// executes to completion on the instrument.
func (inst *Instrument) VoltageSweep(cfg SweepConfig) (SweepResult, error) {
	if err := cfg.validate(); err != nil {
		return SweepResult{}, err
	}

	inst.busy.Store(true)
	defer inst.busy.Store(false)

	if inst.abort.IsSet() {
		inst.logger.Info("sweep aborted before start")
		return SweepResult{}, nil
	}

	points := cfg.PointCount()
	sw := string(cfg.Sweep)
	fx := string(cfg.Fixed)
	inst.logger.Info("voltage sweep",
		"sweep", sw, "fixed", fx,
		"start", cfg.Start, "stop", cfg.Stop, "points", points,
		"mode", cfg.Mode.String(), "pulsed", cfg.Pulsed)

	p := &sweepProgram{inst: inst}

	// Program both sources for a linear ramp. In fixed mode the second
	// channel's ramp degenerates to a constant.
	p.call(sw+".trigger.source.linearv", cfg.Start, cfg.Stop, points)
	p.set(sw+".trigger.source.action", p.get(sw+".ENABLE"))
	if cfg.Mode == SweepModeTrailing {
		p.call(fx+".trigger.source.linearv", cfg.Start, cfg.Stop, points)
	} else {
		p.call(fx+".trigger.source.linearv", cfg.Bias, cfg.Bias, points)
	}
	p.set(fx+".trigger.source.action", p.get(fx+".ENABLE"))

	// Integration time in power-line cycles, settling delay, current
	// autorange, and DC volts source function, identically on both channels.
	nplc := cfg.IntegrationTime * p.get("localnode.linefreq").Float64()
	p.set(sw+".measure.nplc", nplc)
	p.set(fx+".measure.nplc", nplc)
	p.set(sw+".measure.delay", cfg.Delay)
	p.set(fx+".measure.delay", cfg.Delay)
	p.set(sw+".measure.autorangei", p.get(sw+".AUTORANGE_ON"))
	p.set(fx+".measure.autorangei", p.get(fx+".AUTORANGE_ON"))
	p.set(sw+".source.func", p.get(sw+".OUTPUT_DCVOLTS"))
	p.set(fx+".source.func", p.get(fx+".OUTPUT_DCVOLTS"))

	// Start from empty reading buffers.
	for _, buf := range []string{sw + ".nvbuffer1", sw + ".nvbuffer2", fx + ".nvbuffer1", fx + ".nvbuffer2"} {
		p.call(buf + ".clear")
		p.call(buf + ".clearcache")
	}

	// Show live currents on the front panel during the sweep.
	p.set("display.smua.measure.func", p.get("display.MEASURE_DCAMPS"))
	p.set("display.smub.measure.func", p.get("display.MEASURE_DCAMPS"))

	// Trigger count is the number of points; the arm layer runs once.
	p.set(sw+".trigger.count", points)
	p.set(fx+".trigger.count", points)

	// Measure on both channels when the sweep channel completes a source
	// step, storing current into nvbuffer1 and voltage into nvbuffer2. Both
	// channels trigger on the sweep channel's event so the measurements
	// occur at the same time.
	p.set(sw+".trigger.measure.action", p.get(sw+".ENABLE"))
	p.set(fx+".trigger.measure.action", p.get(fx+".ENABLE"))
	p.call(sw+".trigger.measure.iv", sw+".nvbuffer1", sw+".nvbuffer2")
	p.call(fx+".trigger.measure.iv", fx+".nvbuffer1", fx+".nvbuffer2")
	p.set(sw+".trigger.measure.stimulus", p.get(sw+".trigger.SOURCE_COMPLETE_EVENT_ID"))
	p.set(fx+".trigger.measure.stimulus", p.get(sw+".trigger.SOURCE_COMPLETE_EVENT_ID"))

	// End-of-pulse and end-of-sweep action: hold keeps the stepped voltage
	// through the point (typical IV sweep), idle returns the source to zero
	// between points for pulsed sweeps.
	endActionConst := sw + ".SOURCE_HOLD"
	if cfg.Pulsed {
		endActionConst = sw + ".SOURCE_IDLE"
	}
	endAction := p.get(endActionConst)
	p.set(sw+".trigger.endpulse.action", endAction)
	p.set(fx+".trigger.endpulse.action", endAction)
	p.set(sw+".trigger.endsweep.action", endAction)
	p.set(fx+".trigger.endsweep.action", endAction)

	// Arm layer transitions on the broadcast *trg event.
	p.set(sw+".trigger.arm.stimulus", p.get("trigger.EVENT_ID"))

	// Blender 1 fires when the sweep channel first enters the trigger layer
	// OR completes a pulse; it drives the next source step.
	p.set("trigger.blender[1].orenable", true)
	p.set("trigger.blender[1].stimulus[1]", p.get(sw+".trigger.ARMED_EVENT_ID"))
	p.set("trigger.blender[1].stimulus[2]", p.get(sw+".trigger.PULSE_COMPLETE_EVENT_ID"))
	p.set(sw+".trigger.source.stimulus", p.get("trigger.blender[1].EVENT_ID"))

	// Blender 2 fires only when BOTH channels report measure-complete; it
	// drives the end-of-pulse transition so the next step cannot begin
	// before both measurements finish.
	p.set("trigger.blender[2].orenable", false)
	p.set("trigger.blender[2].stimulus[1]", p.get(sw+".trigger.MEASURE_COMPLETE_EVENT_ID"))
	p.set("trigger.blender[2].stimulus[2]", p.get(fx+".trigger.MEASURE_COMPLETE_EVENT_ID"))
	p.set(sw+".trigger.endpulse.stimulus", p.get("trigger.blender[2].EVENT_ID"))

	// Output on, arm both channels, and broadcast the software trigger.
	p.set(sw+".source.output", p.get(sw+".OUTPUT_ON"))
	p.set(fx+".source.output", p.get(fx+".OUTPUT_ON"))
	p.call(sw + ".trigger.initiate")
	p.call(fx + ".trigger.initiate")
	p.write("*trg")

	if p.err != nil {
		return SweepResult{}, p.err
	}

	if err := inst.waitSweepDone(); err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{}
	drain := []struct {
		dst *[]float64
		buf string
	}{
		{&result.SweepVoltage, sw + ".nvbuffer2"},
		{&result.SweepCurrent, sw + ".nvbuffer1"},
		{&result.FixedVoltage, fx + ".nvbuffer2"},
		{&result.FixedCurrent, fx + ".nvbuffer1"},
	}
	for _, d := range drain {
		samples, err := inst.ReadBuffer(d.buf)
		if err != nil {
			return SweepResult{}, err
		}
		*d.dst = samples
	}

	if err := inst.ClearBuffers(cfg.Sweep, cfg.Fixed); err != nil {
		return SweepResult{}, err
	}

	inst.metrics.incSweepCount()
	inst.logger.Info("voltage sweep complete", "points", len(result.SweepVoltage))

	return result, nil
}

// waitSweepDone polls the sweeping status condition register until the sweep
// completes. The register encodes which channels are still sweeping; it is
// zero both before the sweep starts and after it ends, so the poll runs in
// two phases: first until the condition becomes nonzero (the sweep has
// started), then until it returns to zero. A single zero-check right after
// arming would false-trigger on the pre-start idle state.
//
// The configured sweep timeout is one deadline across both phases, not a
// per-phase allowance.
func (inst *Instrument) waitSweepDone() error {
	condition := func(stop func(float64) bool) poll.Condition {
		return func() (bool, error) {
			v, err := inst.GetAttr("status.operation.sweeping.condition")
			if err != nil {
				return false, err
			}
			return stop(v.Float64()), nil
		}
	}

	var deadline time.Time
	if inst.cfg.sweepTimeout > 0 {
		deadline = time.Now().Add(inst.cfg.sweepTimeout)
	}

	phases := []poll.Condition{
		condition(func(status float64) bool { return status != 0 }),
		condition(func(status float64) bool { return status == 0 }),
	}
	for _, phase := range phases {
		maxWait := time.Duration(0)
		if !deadline.IsZero() {
			maxWait = time.Until(deadline)
			if maxWait <= 0 {
				return ErrSweepTimeout
			}
		}
		if err := poll.Until(phase, inst.cfg.pollInterval, maxWait); err != nil {
			return sweepPollErr(err)
		}
	}

	return nil
}

func sweepPollErr(err error) error {
	if errors.Is(err, poll.ErrDeadlineExceeded) {
		return ErrSweepTimeout
	}
	return err
}
