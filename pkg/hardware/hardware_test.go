package hardware

import (
	"testing"
)

func testHardwareConfig() HardwareConfig {
	return HardwareConfig{
		EnableGPIO:   true,
		EncoderAPin:  17,
		EncoderBPin:  27,
		SwitchPin:    22,
		PTTPin:       23,
		TxRelayPin:   18,
		StatusLEDPin: 24,
		I2CBus:       "/dev/i2c-1",
		I2CAddress:   0x60,
		CrystalHz:    25000000,
	}
}

func newTestManager() (*Manager, *MockGPIO, *MockSynth, *MockDisplay) {
	gpio := NewMockGPIO()
	synth := NewMockSynth()
	display := NewMockDisplay()
	m := NewManager(testHardwareConfig(), gpio, synth, display)
	return m, gpio, synth, display
}

func TestManagerInitialize(t *testing.T) {
	m, gpio, _, _ := newTestManager()

	if m.IsInitialized() {
		t.Error("Expected manager to not be initialized initially")
	}

	if err := m.Initialize(); err != nil {
		t.Fatalf("Failed to initialize manager: %v", err)
	}

	if !m.IsInitialized() {
		t.Error("Expected manager to be initialized")
	}

	// Initialization forces the transmit output to a known released state.
	if level, _ := gpio.GetPin(18); level {
		t.Error("Expected transmit relay released after init")
	}
	if m.Transmitting() {
		t.Error("Expected receive mode after init")
	}

	// Double initialization is a no-op
	if err := m.Initialize(); err != nil {
		t.Errorf("Expected idempotent initialize, got: %v", err)
	}
}

func TestManagerInitializeFailures(t *testing.T) {
	t.Run("GPIO Failure", func(t *testing.T) {
		gpio := NewMockGPIO()
		gpio.FailInit = true
		m := NewManager(testHardwareConfig(), gpio, NewMockSynth(), NewMockDisplay())
		if err := m.Initialize(); err == nil {
			t.Error("Expected GPIO init failure to be fatal")
		}
	})

	t.Run("Synth Failure", func(t *testing.T) {
		synth := NewMockSynth()
		synth.FailInit = true
		m := NewManager(testHardwareConfig(), NewMockGPIO(), synth, NewMockDisplay())
		if err := m.Initialize(); err == nil {
			t.Error("Expected synthesizer init failure to be fatal")
		}
	})

	t.Run("Display Failure", func(t *testing.T) {
		display := NewMockDisplay()
		display.FailInit = true
		m := NewManager(testHardwareConfig(), NewMockGPIO(), NewMockSynth(), display)
		if err := m.Initialize(); err == nil {
			t.Error("Expected display init failure to be fatal")
		}
	})
}

func TestManagerTransmitOutput(t *testing.T) {
	m, gpio, _, _ := newTestManager()
	if err := m.Initialize(); err != nil {
		t.Fatalf("Failed to initialize manager: %v", err)
	}

	relaySets := gpio.SetCalls[18]

	if err := m.SetTransmit(true); err != nil {
		t.Fatalf("Failed to key transmit: %v", err)
	}
	if !m.Transmitting() {
		t.Error("Expected transmit active")
	}
	if level, _ := gpio.GetPin(18); !level {
		t.Error("Expected relay pin high")
	}
	if level, _ := gpio.GetPin(24); !level {
		t.Error("Expected status LED lit in transmit")
	}

	// Redundant keying must not touch the relay again
	if err := m.SetTransmit(true); err != nil {
		t.Fatalf("Redundant SetTransmit failed: %v", err)
	}
	if got := gpio.SetCalls[18]; got != relaySets+1 {
		t.Errorf("Expected 1 relay write, got %d", got-relaySets)
	}

	if err := m.SetTransmit(false); err != nil {
		t.Fatalf("Failed to release transmit: %v", err)
	}
	if level, _ := gpio.GetPin(18); level {
		t.Error("Expected relay pin low")
	}
	if got := gpio.SetCalls[18]; got != relaySets+2 {
		t.Errorf("Expected 2 relay writes total, got %d", got-relaySets)
	}
}

func TestManagerCloseForcesTransmitOff(t *testing.T) {
	m, gpio, _, _ := newTestManager()
	if err := m.Initialize(); err != nil {
		t.Fatalf("Failed to initialize manager: %v", err)
	}

	if err := m.SetTransmit(true); err != nil {
		t.Fatalf("Failed to key transmit: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Failed to close manager: %v", err)
	}

	if level, _ := gpio.GetPin(18); level {
		t.Error("Expected relay released on close")
	}
	if m.IsInitialized() {
		t.Error("Expected manager to be shut down")
	}
}

func TestManagerReadLevels(t *testing.T) {
	m, gpio, _, _ := newTestManager()
	if err := m.Initialize(); err != nil {
		t.Fatalf("Failed to initialize manager: %v", err)
	}

	gpio.SetLevel(22, true)
	gpio.SetLevel(23, false)

	switchLevel, pttLevel, err := m.ReadLevels()
	if err != nil {
		t.Fatalf("Failed to read levels: %v", err)
	}
	if !switchLevel {
		t.Error("Expected switch level high")
	}
	if pttLevel {
		t.Error("Expected PTT level low")
	}
}

func TestManagerPollEncoder(t *testing.T) {
	m, gpio, _, _ := newTestManager()
	if err := m.Initialize(); err != nil {
		t.Fatalf("Failed to initialize manager: %v", err)
	}

	// Rest position, then one clockwise detent sampled step by step.
	gpio.SetLevel(17, false)
	gpio.SetLevel(27, false)
	if _, err := m.PollEncoder(); err != nil {
		t.Fatalf("Failed to poll encoder: %v", err)
	}

	steps := [][2]bool{
		{true, false}, {true, true}, {false, true}, {false, false},
	}
	total := 0
	for _, s := range steps {
		gpio.SetLevel(17, s[0])
		gpio.SetLevel(27, s[1])
		ticks, err := m.PollEncoder()
		if err != nil {
			t.Fatalf("Failed to poll encoder: %v", err)
		}
		total += ticks
	}

	if total != 1 {
		t.Errorf("Expected 1 tick for one detent, got %d", total)
	}
}

func TestManagerSetFrequency(t *testing.T) {
	m, _, synth, _ := newTestManager()
	if err := m.Initialize(); err != nil {
		t.Fatalf("Failed to initialize manager: %v", err)
	}

	if err := m.SetFrequency(0, 1610000000); err != nil {
		t.Fatalf("Failed to set frequency: %v", err)
	}

	got, ok := synth.LastFrequency(0)
	if !ok {
		t.Fatal("Expected channel 0 to be commanded")
	}
	if got != 1610000000 {
		t.Errorf("Expected 1610000000 cHz, got %d", got)
	}
}

func TestManagerRender(t *testing.T) {
	m, _, _, display := newTestManager()
	if err := m.Initialize(); err != nil {
		t.Fatalf("Failed to initialize manager: %v", err)
	}

	if err := m.Render(7100000, 1000, false); err != nil {
		t.Fatalf("Failed to render: %v", err)
	}

	frames := display.Frames()
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0] != "7100000/1000/false" {
		t.Errorf("Unexpected frame: %s", frames[0])
	}
}
