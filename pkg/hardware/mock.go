package hardware

import (
	"fmt"
	"sync"
)

// MockGPIO implements GPIOInterface for testing
type MockGPIO struct {
	pins map[int]bool
	mu   sync.RWMutex

	// SetCalls counts SetPin invocations per pin, letting tests assert an
	// output line was not toggled redundantly.
	SetCalls map[int]int

	FailInit bool
}

// NewMockGPIO creates a new mock GPIO interface
func NewMockGPIO() *MockGPIO {
	return &MockGPIO{
		pins:     make(map[int]bool),
		SetCalls: make(map[int]int),
	}
}

// Initialize initializes the mock GPIO
func (g *MockGPIO) Initialize() error {
	if g.FailInit {
		return fmt.Errorf("mock GPIO init failure")
	}
	return nil
}

// Close closes the mock GPIO
func (g *MockGPIO) Close() error {
	return nil
}

// SetPin sets a GPIO pin value
func (g *MockGPIO) SetPin(pin int, value bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pins[pin] = value
	g.SetCalls[pin]++
	return nil
}

// GetPin gets a GPIO pin value
func (g *MockGPIO) GetPin(pin int) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pins[pin], nil
}

// SetLevel lets a test drive an "input" line that GetPin then reports.
func (g *MockGPIO) SetLevel(pin int, level bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pins[pin] = level
}

// MockSynth implements SynthInterface for testing, recording every
// commanded channel frequency.
type MockSynth struct {
	mu        sync.Mutex
	last      map[int]uint64
	callCount int

	FailInit bool
	FailSet  bool
}

// NewMockSynth creates a new mock synthesizer
func NewMockSynth() *MockSynth {
	return &MockSynth{
		last: make(map[int]uint64),
	}
}

// Initialize initializes the mock synthesizer
func (s *MockSynth) Initialize() error {
	if s.FailInit {
		return fmt.Errorf("mock synth init failure")
	}
	return nil
}

// Close closes the mock synthesizer
func (s *MockSynth) Close() error {
	return nil
}

// SetFrequency records the commanded channel frequency
func (s *MockSynth) SetFrequency(channel int, centihertz uint64) error {
	if s.FailSet {
		return fmt.Errorf("mock synth set failure")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[channel] = centihertz
	s.callCount++
	return nil
}

// LastFrequency returns the last value commanded on a channel and whether
// the channel was commanded at all.
func (s *MockSynth) LastFrequency(channel int) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.last[channel]
	return v, ok
}

// CallCount returns the number of SetFrequency invocations
func (s *MockSynth) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

// MockDisplay implements DisplayInterface for testing
type MockDisplay struct {
	mu     sync.Mutex
	frames []string

	FailInit bool
}

// NewMockDisplay creates a new mock display
func NewMockDisplay() *MockDisplay {
	return &MockDisplay{}
}

// Initialize initializes the mock display
func (d *MockDisplay) Initialize() error {
	if d.FailInit {
		return fmt.Errorf("mock display init failure")
	}
	return nil
}

// Close closes the mock display
func (d *MockDisplay) Close() error {
	return nil
}

// Render records one frame
func (d *MockDisplay) Render(frequency uint32, stepSize uint32, txMode bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, fmt.Sprintf("%d/%d/%t", frequency, stepSize, txMode))
	return nil
}

// Frames returns the recorded frames
func (d *MockDisplay) Frames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.frames))
	copy(out, d.frames)
	return out
}
