package tuning

// EventKind identifies a discrete, debounced input event. Events carry no
// payload; rotation magnitude is expressed by repeating TuneUp/TuneDown.
type EventKind int

const (
	EventTuneUp EventKind = iota
	EventTuneDown
	EventStepCycle
	EventPttAsserted
	EventPttReleased
)

// String returns a human-readable event name for logging
func (k EventKind) String() string {
	switch k {
	case EventTuneUp:
		return "tune-up"
	case EventTuneDown:
		return "tune-down"
	case EventStepCycle:
		return "step-cycle"
	case EventPttAsserted:
		return "ptt-asserted"
	case EventPttReleased:
		return "ptt-released"
	default:
		return "unknown"
	}
}
