package tuning

// State is the authoritative tuning record: operating frequency, step
// selection, and transmit/receive mode. It is owned and mutated by exactly
// one Controller; everything else sees read-only snapshots.
type State struct {
	Frequency uint32 // Hz
	StepIndex int    // index into the controller's step table
	StepSize  uint32 // Hz, always stepTable[StepIndex]
	TxMode    bool   // true = transmit
}

// Reference band plan defaults (40 m CW/SSB segment). All of these can be
// overridden through the config file; the controller only sees the values
// handed to it.
const (
	DefaultFreqMin   = 7000000 // Hz
	DefaultFreqMax   = 7200000 // Hz
	DefaultFrequency = 7100000 // Hz
	DefaultIFOffset  = 9000000 // Hz, added before commanding the VFO channel
)

// DefaultStepTable is the ordered set of step sizes cycled by the encoder
// push switch. DefaultStepIndex selects the 1 kHz mid step.
var DefaultStepTable = []uint32{10, 100, 1000, 10000, 100000}

const DefaultStepIndex = 2
