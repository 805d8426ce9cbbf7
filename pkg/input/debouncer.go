package input

import (
	"time"

	"github.com/kt0dx/vfod/pkg/tuning"
)

// DefaultWindow is the reference debounce window for mechanical inputs.
const DefaultWindow = 50 * time.Millisecond

// line tracks one mechanical input line: last accepted level and the time
// it last changed. Level changes inside the debounce window are contact
// bounce and are ignored outright, so a line produces at most one accepted
// transition per window.
type line struct {
	level      bool // last accepted electrical level, true = high
	lastChange time.Time
}

// step feeds one raw sample. It reports a falling or rising edge only when
// the level differs from the last accepted one and the window has elapsed.
func (l *line) step(level bool, now time.Time, window time.Duration) (fell, rose bool) {
	if level == l.level {
		return false, false
	}
	if !l.lastChange.IsZero() && now.Sub(l.lastChange) < window {
		return false, false
	}
	fell = l.level && !level
	rose = !l.level && level
	l.level = level
	l.lastChange = now
	return fell, rose
}

// Debouncer converts raw per-iteration samples of the encoder push switch
// and the PTT line, plus directional tick counts from the quadrature decode
// primitive, into discrete tuning events. Both lines idle high (pull-ups);
// pressing or keying pulls them low.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	sw  line
	ptt line
}

// NewDebouncer creates a debouncer with the given window. A zero window
// falls back to the 50 ms default.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		window: window,
		now:    time.Now,
		sw:     line{level: true},
		ptt:    line{level: true},
	}
}

// Sample processes one reactive-loop iteration of raw input: the current
// switch and PTT levels and the net encoder tick count since the last call
// (positive = clockwise). It returns zero or more events, at most one per
// mechanical line. Rotary ticks are pre-quantized by the decode primitive
// and bypass the level-debounce timer entirely.
func (d *Debouncer) Sample(switchLevel, pttLevel bool, ticks int) []tuning.EventKind {
	now := d.now()
	var events []tuning.EventKind

	// Encoder push switch: momentary, edge-triggered on press only.
	if fell, _ := d.sw.step(switchLevel, now, d.window); fell {
		events = append(events, tuning.EventStepCycle)
	}

	// PTT: both edges matter, debounced independently of the switch.
	fell, rose := d.ptt.step(pttLevel, now, d.window)
	if fell {
		events = append(events, tuning.EventPttAsserted)
	}
	if rose {
		events = append(events, tuning.EventPttReleased)
	}

	for ; ticks > 0; ticks-- {
		events = append(events, tuning.EventTuneUp)
	}
	for ; ticks < 0; ticks++ {
		events = append(events, tuning.EventTuneDown)
	}

	return events
}
