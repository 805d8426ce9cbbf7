package hardware

// quadTable maps (previous state << 2 | current state) of the encoder's
// A/B phase pins to a movement increment. Invalid transitions (both bits
// flipping at once, i.e. a skipped state) contribute nothing.
var quadTable = [16]int8{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

// detentSteps is the number of quadrature state changes per mechanical
// detent on the reference encoder.
const detentSteps = 4

// Encoder turns raw A/B phase samples into directional tick counts, one
// tick per mechanical detent. This is the quadrature-decode primitive: its
// output is pre-quantized, so the consumer applies no further debouncing.
type Encoder struct {
	prev    uint8
	primed  bool
	partial int // quadrature steps accumulated toward the next detent
	ticks   int // whole detents not yet collected
}

// NewEncoder creates an encoder decoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Sample feeds one reading of the A and B phase pins.
func (e *Encoder) Sample(a, b bool) {
	state := uint8(0)
	if a {
		state |= 0x02
	}
	if b {
		state |= 0x01
	}

	if !e.primed {
		e.prev = state
		e.primed = true
		return
	}
	if state == e.prev {
		return
	}

	e.partial += int(quadTable[e.prev<<2|state])
	e.prev = state

	for e.partial >= detentSteps {
		e.partial -= detentSteps
		e.ticks++
	}
	for e.partial <= -detentSteps {
		e.partial += detentSteps
		e.ticks--
	}
}

// TakeTicks returns the net detents since the last call and resets the
// count. Positive is clockwise.
func (e *Encoder) TakeTicks() int {
	t := e.ticks
	e.ticks = 0
	return t
}
