package tsp

import "math"

// SweepDirection tags a sweep pass within a measurement sequence.
type SweepDirection int

const (
	// Forward is the first pass, from start to stop.
	Forward SweepDirection = iota
	// Reverse is the second pass, from stop back to start.
	Reverse
)

// String returns the string representation of the sweep direction.
func (d SweepDirection) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// SweepType tags a measurement sequence as a transfer or output curve.
type SweepType int

const (
	// TransferSweep sweeps the gate while stepping the drain bias.
	TransferSweep SweepType = iota
	// OutputSweep sweeps the drain while stepping the gate bias.
	OutputSweep
)

// String returns the string representation of the sweep type.
func (t SweepType) String() string {
	switch t {
	case TransferSweep:
		return "transfer"
	case OutputSweep:
		return "output"
	default:
		return "unknown"
	}
}

// SweepRecord is one completed sweep pass within a measurement sequence,
// tagged with the fixed-channel bias it ran at and its direction.
type SweepRecord struct {
	Bias      float64
	Direction SweepDirection
	Result    SweepResult
}

// SweepSet is the ordered collection of sweep passes recorded by one
// measurement sequence. It is append-only while the sequence runs and
// immutable once returned.
type SweepSet struct {
	Type    SweepType
	Records []SweepRecord
}

func (s *SweepSet) append(bias float64, dir SweepDirection, result SweepResult) {
	s.Records = append(s.Records, SweepRecord{Bias: bias, Direction: dir, Result: result})
}

// MeasurementConfig describes a transfer- or output-curve measurement: a
// forward and reverse sweep of one channel at each bias value of the other.
//
// Start, Stop and Step apply to the swept channel (the gate for transfer
// curves, the drain for output curves); Biases lists the fixed-channel
// voltages, one forward/reverse sweep pair per entry.
type MeasurementConfig struct {
	Gate  Channel
	Drain Channel

	Start float64
	Stop  float64
	Step  float64

	Biases []float64

	// IntegrationTime is the per-point integration time in seconds.
	IntegrationTime float64
	// Delay is the settling delay before each measurement in seconds.
	Delay float64
	// Pulsed selects pulsed sweeps, see SweepConfig.
	Pulsed bool
}

// TransferMeasurement records a transfer curve: for each drain bias, a
// forward and a reverse gate sweep. The abort signal is re-armed at the
// start and checked at the top of each bias iteration; on abort the
// instrument is reset and the partially built set is returned without error.
// Aborted sweep passes are discarded, completed ones are kept.
func (inst *Instrument) TransferMeasurement(cfg MeasurementConfig) (*SweepSet, error) {
	inst.logger.Info("recording transfer curve",
		"from", cfg.Start, "to", cfg.Stop, "biases", cfg.Biases)

	return inst.measure(cfg, TransferSweep, cfg.Gate, cfg.Drain)
}

// OutputMeasurement records an output curve: for each gate bias, a forward
// and a reverse drain sweep. Abort semantics match TransferMeasurement.
func (inst *Instrument) OutputMeasurement(cfg MeasurementConfig) (*SweepSet, error) {
	inst.logger.Info("recording output curve",
		"from", cfg.Start, "to", cfg.Stop, "biases", cfg.Biases)

	return inst.measure(cfg, OutputSweep, cfg.Drain, cfg.Gate)
}

func (inst *Instrument) measure(cfg MeasurementConfig, typ SweepType, sweep, fixed Channel) (*SweepSet, error) {
	inst.busy.Store(true)
	defer inst.busy.Store(false)
	inst.abort.Clear()

	set := &SweepSet{Type: typ}
	step := math.Abs(cfg.Step)

	for _, bias := range cfg.Biases {
		if inst.abort.IsSet() {
			return set, inst.finishMeasurement()
		}

		passes := []struct {
			dir         SweepDirection
			start, stop float64
			step        float64
		}{
			{Forward, cfg.Start, cfg.Stop, -step},
			{Reverse, cfg.Stop, cfg.Start, step},
		}
		for _, pass := range passes {
			result, err := inst.VoltageSweep(SweepConfig{
				Sweep:           sweep,
				Fixed:           fixed,
				Start:           pass.start,
				Stop:            pass.stop,
				Step:            pass.step,
				Mode:            SweepModeFixed,
				Bias:            bias,
				IntegrationTime: cfg.IntegrationTime,
				Delay:           cfg.Delay,
				Pulsed:          cfg.Pulsed,
			})
			if err != nil {
				return set, err
			}
			// A pass cut short by an abort is discarded; everything captured
			// before the abort was signaled stays in the set.
			if !inst.abort.IsSet() {
				set.append(bias, pass.dir, result)
			}
		}
	}

	return set, inst.finishMeasurement()
}

// finishMeasurement resets the instrument, leaving both source channels in a
// safe power-on state, and plays the completion beep.
func (inst *Instrument) finishMeasurement() error {
	if err := inst.Reset(); err != nil {
		return err
	}
	if err := inst.beep(0.3, 2400); err != nil {
		inst.logger.Warn("completion beep failed", "error", err)
	}

	return nil
}
