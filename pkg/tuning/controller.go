package tuning

import (
	"fmt"
)

// Synthesizer commands one output channel of the clock generator. Values
// are in 0.01 Hz units, matching the Si5351 set-frequency resolution.
type Synthesizer interface {
	SetFrequency(channel int, centihertz uint64) error
}

// TransmitSwitch drives the transmit-enable output (T/R relay line).
type TransmitSwitch interface {
	SetTransmit(on bool) error
}

// Saver persists the fields of a tuning snapshot worth keeping across power
// cycles. Invoked only on step-size changes, not on every tuning step.
type Saver interface {
	Save(frequency uint32, stepIndex int) error
}

// ControllerConfig carries the band limits, step table, and synthesizer
// channel assignment for a Controller.
type ControllerConfig struct {
	FreqMin    uint32   // Hz, inclusive lower tuning bound
	FreqMax    uint32   // Hz, inclusive upper tuning bound
	IFOffset   uint32   // Hz, added to the dial frequency for the VFO channel
	StepTable  []uint32 // ordered step sizes in Hz, cycled by the push switch
	VFOChannel int      // synthesizer channel carrying the tunable output
}

// Controller applies debounced input events to the tuning state and keeps
// the synthesizer and transmit output in sync. It is not safe for
// concurrent use: the reactive loop is its only caller.
type Controller struct {
	cfg   ControllerConfig
	state State
	dirty bool

	synth Synthesizer
	tx    TransmitSwitch
	saver Saver
}

// NewController creates a controller with the given initial frequency and
// step index. The initial values are validated against the config; this is
// where a loaded settings record meets the band limits one last time.
func NewController(cfg ControllerConfig, frequency uint32, stepIndex int, synth Synthesizer, tx TransmitSwitch, saver Saver) (*Controller, error) {
	if len(cfg.StepTable) == 0 {
		return nil, fmt.Errorf("controller: empty step table")
	}
	if cfg.FreqMin >= cfg.FreqMax {
		return nil, fmt.Errorf("controller: invalid band limits %d..%d", cfg.FreqMin, cfg.FreqMax)
	}
	if frequency < cfg.FreqMin || frequency > cfg.FreqMax {
		return nil, fmt.Errorf("controller: initial frequency %d Hz outside %d..%d", frequency, cfg.FreqMin, cfg.FreqMax)
	}
	if stepIndex < 0 || stepIndex >= len(cfg.StepTable) {
		return nil, fmt.Errorf("controller: initial step index %d out of range", stepIndex)
	}

	return &Controller{
		cfg: cfg,
		state: State{
			Frequency: frequency,
			StepIndex: stepIndex,
			StepSize:  cfg.StepTable[stepIndex],
		},
		synth: synth,
		tx:    tx,
		saver: saver,
	}, nil
}

// Snapshot returns a copy of the current tuning state.
func (c *Controller) Snapshot() State {
	return c.state
}

// Apply handles one input event. The returned error is reportable but never
// leaves the state inconsistent: bound checks run before any mutation.
func (c *Controller) Apply(ev EventKind) error {
	switch ev {
	case EventTuneUp:
		return c.tuneUp()
	case EventTuneDown:
		return c.tuneDown()
	case EventStepCycle:
		return c.stepCycle()
	case EventPttAsserted:
		return c.setTransmit(true)
	case EventPttReleased:
		return c.setTransmit(false)
	default:
		return fmt.Errorf("controller: unknown event %d", int(ev))
	}
}

// tuneUp steps the frequency up by one step size, clamping silently at the
// upper band edge. The widened arithmetic keeps a large step near the top
// of uint32 from wrapping before the comparison.
func (c *Controller) tuneUp() error {
	next := uint64(c.state.Frequency) + uint64(c.state.StepSize)
	if next > uint64(c.cfg.FreqMax) {
		return nil
	}
	c.state.Frequency = uint32(next)
	c.dirty = true
	return c.commandVFO()
}

// tuneDown steps the frequency down by one step size, clamping silently at
// the lower band edge.
func (c *Controller) tuneDown() error {
	if uint64(c.state.Frequency) < uint64(c.cfg.FreqMin)+uint64(c.state.StepSize) {
		return nil
	}
	c.state.Frequency -= c.state.StepSize
	c.dirty = true
	return c.commandVFO()
}

// stepCycle advances to the next step size, wrapping at the end of the
// table, and persists the new selection. This is the only event that
// triggers a settings write: tuning changes between step cycles are not
// separately persisted, trading freshness for reduced storage wear.
func (c *Controller) stepCycle() error {
	c.state.StepIndex = (c.state.StepIndex + 1) % len(c.cfg.StepTable)
	c.state.StepSize = c.cfg.StepTable[c.state.StepIndex]
	c.dirty = true

	if c.saver == nil {
		return nil
	}
	if err := c.saver.Save(c.state.Frequency, c.state.StepIndex); err != nil {
		return fmt.Errorf("controller: save settings: %w", err)
	}
	return nil
}

// setTransmit switches between transmit and receive. Redundant events are
// dropped before touching the output: the transmit line drives a relay and
// must not be toggled needlessly.
func (c *Controller) setTransmit(on bool) error {
	if c.state.TxMode == on {
		return nil
	}
	c.state.TxMode = on
	c.dirty = true

	if c.tx == nil {
		return nil
	}
	if err := c.tx.SetTransmit(on); err != nil {
		return fmt.Errorf("controller: transmit switch: %w", err)
	}
	return nil
}

// CommandVFO (re)sends the current frequency to the synthesizer. Exposed so
// startup can push the loaded frequency before the first event arrives.
func (c *Controller) CommandVFO() error {
	return c.commandVFO()
}

// commandVFO converts the dial frequency to the synthesizer channel value:
// dial plus intermediate-frequency offset, in 0.01 Hz units. The frequency
// is already bounds-checked, so the synthesizer never sees an out-of-range
// value.
func (c *Controller) commandVFO() error {
	centihertz := (uint64(c.state.Frequency) + uint64(c.cfg.IFOffset)) * 100
	if err := c.synth.SetFrequency(c.cfg.VFOChannel, centihertz); err != nil {
		return fmt.Errorf("controller: set VFO frequency: %w", err)
	}
	return nil
}

// MarkDirty flags the rendered view as stale, forcing a redraw on the next
// scheduler pass. Used once at startup for the initial frame.
func (c *Controller) MarkDirty() {
	c.dirty = true
}
