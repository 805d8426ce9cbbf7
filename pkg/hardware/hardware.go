package hardware

import (
	"fmt"
	"sync"

	"github.com/kt0dx/vfod/pkg/logging"
)

// HardwareConfig represents hardware configuration
type HardwareConfig struct {
	EnableGPIO   bool
	EncoderAPin  int
	EncoderBPin  int
	SwitchPin    int
	PTTPin       int
	TxRelayPin   int
	StatusLEDPin int

	EnableDisplay bool

	I2CBus     string
	I2CAddress int
	CrystalHz  uint32
}

// GPIOInterface defines GPIO operations
type GPIOInterface interface {
	Initialize() error
	Close() error
	SetPin(pin int, value bool) error
	GetPin(pin int) (bool, error)
}

// SynthInterface defines clock synthesizer operations. Channel frequencies
// are in 0.01 Hz units.
type SynthInterface interface {
	Initialize() error
	Close() error
	SetFrequency(channel int, centihertz uint64) error
}

// DisplayInterface defines status display operations
type DisplayInterface interface {
	Initialize() error
	Close() error
	Render(frequency uint32, stepSize uint32, txMode bool) error
}

// Manager owns the peripherals and presents them to the control loop as
// capabilities: raw level reads, encoder tick counts, synthesizer channels,
// the transmit output, and the display.
type Manager struct {
	config HardwareConfig
	mutex  sync.RWMutex

	gpio    GPIOInterface
	synth   SynthInterface
	display DisplayInterface
	encoder *Encoder

	txActive    bool
	initialized bool
}

// NewManager creates a hardware manager over explicit peripheral
// implementations. Passing mocks is how tests (and GPIO-less development
// hosts) run the full loop.
func NewManager(config HardwareConfig, gpio GPIOInterface, synth SynthInterface, display DisplayInterface) *Manager {
	return &Manager{
		config:  config,
		gpio:    gpio,
		synth:   synth,
		display: display,
		encoder: NewEncoder(),
	}
}

// Initialize initializes all peripherals. Synthesizer or display failure is
// fatal to the caller: without them the transceiver cannot operate.
func (m *Manager) Initialize() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.initialized {
		return nil
	}

	logging.Info("hardware", "Initializing peripherals...")

	if err := m.gpio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize GPIO: %w", err)
	}
	logging.Infof("hardware", "GPIO initialized (encoder %d/%d, switch %d, PTT %d, relay %d)",
		m.config.EncoderAPin, m.config.EncoderBPin, m.config.SwitchPin,
		m.config.PTTPin, m.config.TxRelayPin)

	if err := m.synth.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize synthesizer: %w", err)
	}
	logging.Infof("hardware", "Synthesizer initialized (%s at 0x%02x)",
		m.config.I2CBus, m.config.I2CAddress)

	if err := m.display.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	logging.Info("hardware", "Display initialized")

	// Receive mode until the first PTT event says otherwise.
	if err := m.setTransmitLocked(false); err != nil {
		return fmt.Errorf("failed to release transmit output: %w", err)
	}

	m.initialized = true
	return nil
}

// Close shuts down all peripherals, forcing the transmit output off first
// so the rig never stays keyed across a daemon restart.
func (m *Manager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.initialized {
		return nil
	}

	if m.txActive {
		if err := m.setTransmitLocked(false); err != nil {
			logging.Errorf("hardware", "Error releasing transmit output: %v", err)
		}
	}

	if err := m.display.Close(); err != nil {
		logging.Errorf("hardware", "Error closing display: %v", err)
	}
	if err := m.synth.Close(); err != nil {
		logging.Errorf("hardware", "Error closing synthesizer: %v", err)
	}
	if err := m.gpio.Close(); err != nil {
		logging.Errorf("hardware", "Error closing GPIO: %v", err)
	}

	m.initialized = false
	logging.Info("hardware", "Peripherals shut down")
	return nil
}

// ReadLevels samples the encoder switch and PTT lines. High is the idle
// (pulled-up) level on both.
func (m *Manager) ReadLevels() (switchLevel, pttLevel bool, err error) {
	switchLevel, err = m.gpio.GetPin(m.config.SwitchPin)
	if err != nil {
		return false, false, fmt.Errorf("read switch pin: %w", err)
	}
	pttLevel, err = m.gpio.GetPin(m.config.PTTPin)
	if err != nil {
		return false, false, fmt.Errorf("read PTT pin: %w", err)
	}
	return switchLevel, pttLevel, nil
}

// PollEncoder samples the encoder phase pins once and returns the
// accumulated directional ticks since the previous call.
func (m *Manager) PollEncoder() (int, error) {
	a, err := m.gpio.GetPin(m.config.EncoderAPin)
	if err != nil {
		return 0, fmt.Errorf("read encoder A pin: %w", err)
	}
	b, err := m.gpio.GetPin(m.config.EncoderBPin)
	if err != nil {
		return 0, fmt.Errorf("read encoder B pin: %w", err)
	}
	m.encoder.Sample(a, b)
	return m.encoder.TakeTicks(), nil
}

// SetFrequency commands one synthesizer channel, in 0.01 Hz units.
func (m *Manager) SetFrequency(channel int, centihertz uint64) error {
	return m.synth.SetFrequency(channel, centihertz)
}

// SetTransmit drives the T/R relay line and the status LED. Only actual
// changes reach the pins; the relay has mechanical wear.
func (m *Manager) SetTransmit(on bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.setTransmitLocked(on)
}

func (m *Manager) setTransmitLocked(on bool) error {
	if m.txActive == on && m.initialized {
		return nil
	}

	if err := m.gpio.SetPin(m.config.TxRelayPin, on); err != nil {
		return fmt.Errorf("set transmit relay: %w", err)
	}
	if m.config.StatusLEDPin > 0 {
		if err := m.gpio.SetPin(m.config.StatusLEDPin, on); err != nil {
			logging.Errorf("hardware", "Error setting status LED: %v", err)
		}
	}

	m.txActive = on
	logging.Infof("hardware", "Transmit %s (relay pin %d)",
		map[bool]string{true: "ON", false: "OFF"}[on], m.config.TxRelayPin)
	return nil
}

// Transmitting returns the current transmit output state.
func (m *Manager) Transmitting() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.txActive
}

// Render draws one frame on the display.
func (m *Manager) Render(frequency uint32, stepSize uint32, txMode bool) error {
	return m.display.Render(frequency, stepSize, txMode)
}

// GetConfig returns the hardware configuration
func (m *Manager) GetConfig() HardwareConfig {
	return m.config
}

// IsInitialized returns whether the peripherals are up
func (m *Manager) IsInitialized() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.initialized
}
