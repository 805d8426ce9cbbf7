package settings

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Persisted record layout, fixed non-overlapping offsets:
//
//	0..3  frequency, unsigned little-endian, Hz
//	4     step index
//	5..6  magic sentinel, little-endian
//
// The magic marks "valid record present"; anything else in the region is
// treated as never-written storage.
const (
	Magic      = 0x5AA5
	RecordSize = 7

	offFrequency = 0
	offStepIndex = 4
	offMagic     = 5
)

// Region is the raw non-volatile byte region the store persists into. An
// *os.File satisfies it directly.
type Region interface {
	io.ReaderAt
	io.WriterAt
}

// Settings are the tuning fields kept across power cycles.
type Settings struct {
	Frequency uint32
	StepIndex int
}

// Limits bound what a loaded record is allowed to claim. A record outside
// these limits is discarded whole; no field of it is trusted.
type Limits struct {
	FreqMin   uint32
	FreqMax   uint32
	StepCount int
}

// ErrNoValidRecord reports that the region held no acceptable record and
// defaults were returned instead. Informational, not fatal.
var ErrNoValidRecord = errors.New("settings: no valid record")

// Store reads and writes the persisted tuning record.
type Store struct {
	region   Region
	limits   Limits
	defaults Settings
}

// NewStore creates a store over the given region. The defaults are what
// Load falls back to and must themselves satisfy the limits.
func NewStore(region Region, limits Limits, defaults Settings) (*Store, error) {
	if limits.StepCount <= 0 {
		return nil, fmt.Errorf("settings: step count must be positive")
	}
	if defaults.Frequency < limits.FreqMin || defaults.Frequency > limits.FreqMax {
		return nil, fmt.Errorf("settings: default frequency %d Hz outside %d..%d",
			defaults.Frequency, limits.FreqMin, limits.FreqMax)
	}
	if defaults.StepIndex < 0 || defaults.StepIndex >= limits.StepCount {
		return nil, fmt.Errorf("settings: default step index %d out of range", defaults.StepIndex)
	}
	return &Store{region: region, limits: limits, defaults: defaults}, nil
}

// Load reads and validates the record. On any violation (unreadable region,
// wrong magic, frequency out of band, step index past the table) it returns
// the defaults together with ErrNoValidRecord so the caller can log the
// fallback; a partially-initialized result is never returned.
func (s *Store) Load() (Settings, error) {
	buf := make([]byte, RecordSize)
	if _, err := s.region.ReadAt(buf, 0); err != nil {
		return s.defaults, ErrNoValidRecord
	}

	if binary.LittleEndian.Uint16(buf[offMagic:]) != Magic {
		return s.defaults, ErrNoValidRecord
	}

	loaded := Settings{
		Frequency: binary.LittleEndian.Uint32(buf[offFrequency:]),
		StepIndex: int(buf[offStepIndex]),
	}
	if loaded.Frequency < s.limits.FreqMin || loaded.Frequency > s.limits.FreqMax {
		return s.defaults, ErrNoValidRecord
	}
	if loaded.StepIndex >= s.limits.StepCount {
		return s.defaults, ErrNoValidRecord
	}

	return loaded, nil
}

// Save writes the full record in a single WriteAt. Fire-and-forget from the
// caller's perspective: a failed write is reported but nothing retries it.
func (s *Store) Save(frequency uint32, stepIndex int) error {
	if stepIndex < 0 || stepIndex > 0xFF {
		return fmt.Errorf("settings: step index %d not encodable", stepIndex)
	}

	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[offFrequency:], frequency)
	buf[offStepIndex] = byte(stepIndex)
	binary.LittleEndian.PutUint16(buf[offMagic:], Magic)

	if _, err := s.region.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("settings: write record: %w", err)
	}
	return nil
}

// Defaults returns the fallback settings the store was built with.
func (s *Store) Defaults() Settings {
	return s.defaults
}
