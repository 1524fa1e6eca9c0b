package tsp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/instrlab/go-tsp/logger"
	"go.uber.org/multierr"
)

// Channel names a source-measure channel of the instrument.
type Channel string

// The two source-measure channels of the 2600 series.
const (
	ChannelA Channel = "smua"
	ChannelB Channel = "smub"
)

// Valid reports whether the channel is one of the instrument's channels.
func (c Channel) Valid() bool { return c == ChannelA || c == ChannelB }

// Instrument is the handle for one remote instrument session. It is the root
// of the command namespace and owns the transport, the query serialization
// lock, and all connection-scoped state: connected/busy flags, the abort
// signal, and the connection metrics.
//
// All remote I/O is strictly request/response on a single connection. Queries
// are serialized with a mutex held for one send+receive round-trip only;
// interleaved queries would otherwise corrupt request/response pairing.
type Instrument struct {
	*Node

	cfg       *Config
	transport Transport
	logger    logger.Logger

	queryMu   sync.Mutex
	connected atomic.Bool
	busy      atomic.Bool
	abort     AbortSignal
	metrics   ConnectionMetrics
}

// NewInstrument creates an instrument handle over the given transport. A nil
// cfg uses NewConfig defaults. The handle is not connected until Connect is
// called.
func NewInstrument(transport Transport, cfg *Config) (*Instrument, error) {
	if transport == nil {
		return nil, errors.New("tsp: transport is nil")
	}
	if cfg == nil {
		var err error
		cfg, err = NewConfig()
		if err != nil {
			return nil, err
		}
	}

	inst := &Instrument{
		cfg:       cfg,
		transport: transport,
		logger:    cfg.logger,
	}
	inst.Node = newNode(inst, "")

	return inst, nil
}

// Connect pushes the configured query timeout into the transport and
// establishes the link. On success the instrument plays the rising connect
// chord; a failed chord is logged and ignored, the link itself is already up.
func (inst *Instrument) Connect(ctx context.Context) error {
	inst.transport.SetQueryTimeout(inst.cfg.queryTimeout)
	if err := inst.transport.Connect(ctx); err != nil {
		return fmt.Errorf("tsp: connect: %w", err)
	}
	inst.connected.Store(true)
	inst.logger.Info("instrument connected")

	if err := inst.playChord(chordUp); err != nil {
		inst.logger.Warn("connect chord failed", "error", err)
	}

	return nil
}

// Disconnect plays the falling chord and tears down the transport link. The
// handle is invalid for remote I/O afterwards.
func (inst *Instrument) Disconnect() error {
	if !inst.connected.Load() {
		return nil
	}

	var err error
	if chordErr := inst.playChord(chordDown); chordErr != nil {
		inst.logger.Warn("disconnect chord failed", "error", chordErr)
	}

	inst.connected.Store(false)
	err = multierr.Append(err, inst.transport.Close())
	inst.logger.Info("instrument disconnected")

	return err
}

// Connected reports whether the transport link is up.
func (inst *Instrument) Connected() bool { return inst.connected.Load() }

// Busy reports whether a sweep or measurement sequence is in flight. It is a
// coarse status indicator for external callers, not a lock.
func (inst *Instrument) Busy() bool { return inst.busy.Load() }

// Abort returns the session's cooperative cancellation signal.
func (inst *Instrument) Abort() *AbortSignal { return &inst.abort }

// Metrics returns the connection metrics.
func (inst *Instrument) Metrics() *ConnectionMetrics { return &inst.metrics }

// Write sends one command line to the instrument, expecting no response.
func (inst *Instrument) Write(line string) error {
	if !inst.connected.Load() {
		return ErrNotConnected
	}

	inst.logger.Debug("write", "line", line)
	inst.metrics.incWriteCount()
	if err := inst.transport.WriteLine(line); err != nil {
		inst.metrics.incTransportErrCount()
		return err
	}

	return nil
}

// Query asks the remote evaluator to print the given expression and decodes
// the reply. The transport round-trip runs under the query lock.
func (inst *Instrument) Query(expr string) (Value, error) {
	if !inst.connected.Load() {
		return Value{}, ErrNotConnected
	}

	cmd := "print(" + expr + ")"
	inst.logger.Debug("query", "cmd", cmd)
	inst.metrics.incQueryCount()

	inst.queryMu.Lock()
	raw, err := inst.transport.Query(cmd)
	inst.queryMu.Unlock()
	if err != nil {
		inst.metrics.incTransportErrCount()
		return Value{}, err
	}

	return Decode(raw), nil
}

// Reset restores the instrument to its power-on defaults.
func (inst *Instrument) Reset() error {
	_, err := inst.Call("reset")
	return err
}

// SMUA returns the namespace node for channel A.
func (inst *Instrument) SMUA() (*Node, error) { return inst.channelNode(ChannelA) }

// SMUB returns the namespace node for channel B.
func (inst *Instrument) SMUB() (*Node, error) { return inst.channelNode(ChannelB) }

func (inst *Instrument) channelNode(ch Channel) (*Node, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
	}
	return inst.Group(string(ch))
}

// Lookup resolves a full dotted path to its namespace node, walking command
// groups and bracketed element indices, e.g. "trigger.blender[2]".
func (inst *Instrument) Lookup(path string) (*Node, error) {
	node := inst.Node
	if path == "" {
		return node, nil
	}

	for _, seg := range strings.Split(path, ".") {
		name, idx, hasIdx, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}
		node, err = node.Group(name)
		if err != nil {
			return nil, err
		}
		if hasIdx {
			node = node.Index(idx)
		}
	}

	return node, nil
}

// GetAttr reads the scalar or indexed attribute at the given dotted path.
func (inst *Instrument) GetAttr(path string) (Value, error) {
	parent, leaf, err := inst.resolveParent(path)
	if err != nil {
		return Value{}, err
	}

	name, idx, hasIdx, err := parseSegment(leaf)
	if err != nil {
		return Value{}, err
	}
	if hasIdx {
		list, err := parent.List(name)
		if err != nil {
			return Value{}, err
		}
		return list.Get(idx)
	}

	return parent.Get(name)
}

// SetAttr writes the scalar or indexed attribute at the given dotted path.
func (inst *Instrument) SetAttr(path string, value any) error {
	parent, leaf, err := inst.resolveParent(path)
	if err != nil {
		return err
	}

	name, idx, hasIdx, err := parseSegment(leaf)
	if err != nil {
		return err
	}
	if hasIdx {
		list, err := parent.List(name)
		if err != nil {
			return err
		}
		return list.Set(idx, value)
	}

	return parent.Set(name, value)
}

// CallFunc invokes the remote function at the given dotted path.
func (inst *Instrument) CallFunc(path string, args ...any) (Value, error) {
	parent, leaf, err := inst.resolveParent(path)
	if err != nil {
		return Value{}, err
	}
	return parent.Call(leaf, args...)
}

// resolveParent resolves all but the last segment of a dotted path and
// returns the parent node together with the raw leaf segment.
func (inst *Instrument) resolveParent(path string) (*Node, string, error) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return inst.Node, path, nil
	}

	parent, err := inst.Lookup(path[:i])
	if err != nil {
		return nil, "", err
	}

	return parent, path[i+1:], nil
}

// parseSegment splits one path segment into its member name and optional
// bracketed index, e.g. "blender[2]".
func parseSegment(seg string) (name string, idx int, hasIdx bool, err error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, 0, false, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, false, fmt.Errorf("tsp: malformed path segment %q", seg)
	}

	idx, err = strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil {
		return "", 0, false, fmt.Errorf("tsp: malformed path segment %q", seg)
	}

	return seg[:open], idx, true, nil
}

// LineFrequency reads the power-line frequency in Hz from the instrument.
func (inst *Instrument) LineFrequency() (float64, error) {
	v, err := inst.GetAttr("localnode.linefreq")
	if err != nil {
		return 0, err
	}
	return v.Float64(), nil
}

// SetIntegrationTime sets the measurement integration time of a channel,
// given in seconds and converted to power-line cycles using the instrument's
// line frequency.
func (inst *Instrument) SetIntegrationTime(ch Channel, seconds float64) error {
	node, err := inst.channelNode(ch)
	if err != nil {
		return err
	}

	freq, err := inst.LineFrequency()
	if err != nil {
		return err
	}

	measure, err := node.Group("measure")
	if err != nil {
		return err
	}

	return measure.Set("nplc", seconds*freq)
}

// ApplyVoltage turns the channel output on and sources the given voltage.
func (inst *Instrument) ApplyVoltage(ch Channel, voltage float64) error {
	node, err := inst.channelNode(ch)
	if err != nil {
		return err
	}
	source, err := node.Group("source")
	if err != nil {
		return err
	}

	on, err := node.Get("OUTPUT_ON")
	if err != nil {
		return err
	}
	if err := source.Set("output", on); err != nil {
		return err
	}

	return source.Set("levelv", voltage)
}

// ApplyCurrent turns the channel output on and sources the given current.
func (inst *Instrument) ApplyCurrent(ch Channel, current float64) error {
	node, err := inst.channelNode(ch)
	if err != nil {
		return err
	}
	source, err := node.Group("source")
	if err != nil {
		return err
	}

	if err := source.Set("leveli", current); err != nil {
		return err
	}

	on, err := node.Get("OUTPUT_ON")
	if err != nil {
		return err
	}

	return source.Set("output", on)
}

// RampToVoltage steps the channel's source level from its present voltage to
// target in increments of stepSize, measuring after each step and settling
// for delay between steps. The abort signal is observed between steps; an
// abort leaves the output at the last level reached.
func (inst *Instrument) RampToVoltage(ch Channel, target, stepSize float64, delay time.Duration) error {
	node, err := inst.channelNode(ch)
	if err != nil {
		return err
	}
	source, err := node.Group("source")
	if err != nil {
		return err
	}
	measure, err := node.Group("measure")
	if err != nil {
		return err
	}

	on, err := node.Get("OUTPUT_ON")
	if err != nil {
		return err
	}
	if err := source.Set("output", on); err != nil {
		return err
	}

	// Show live voltages on both front-panel displays while ramping.
	dcvolts, err := inst.GetAttr("display.MEASURE_DCVOLTS")
	if err != nil {
		return err
	}
	if err := inst.SetAttr("display.smua.measure.func", dcvolts); err != nil {
		return err
	}
	if err := inst.SetAttr("display.smub.measure.func", dcvolts); err != nil {
		return err
	}

	present, err := source.Get("levelv")
	if err != nil {
		return err
	}
	level := present.Float64()
	if level == target {
		return nil
	}

	step := math.Copysign(math.Abs(stepSize), target-level)
	for {
		if inst.abort.IsSet() {
			return nil
		}

		level += step
		if (step > 0 && level > target) || (step < 0 && level < target) {
			level = target
		}
		if err := source.Set("levelv", level); err != nil {
			return err
		}
		if _, err := measure.Call("v"); err != nil {
			return err
		}
		if level == target {
			break
		}
		time.Sleep(delay)
	}

	inst.logger.Info("ramp complete", "channel", ch, "voltage", target)

	return inst.beep(0.3, 2400)
}

type chordDirection int

const (
	chordUp chordDirection = iota
	chordDown
)

// playChord plays the three-note connect/disconnect chord on the front-panel
// beeper.
func (inst *Instrument) playChord(dir chordDirection) error {
	notes := []float64{1046.5, 1318.5, 1568}
	if dir == chordDown {
		notes = []float64{1568, 1318.5, 1046.5}
	}

	for _, freq := range notes {
		if err := inst.beep(0.3, freq); err != nil {
			return err
		}
	}

	return nil
}

func (inst *Instrument) beep(seconds, freq float64) error {
	beeper, err := inst.Group("beeper")
	if err != nil {
		return err
	}
	_, err = beeper.Call("beep", seconds, freq)

	return err
}
