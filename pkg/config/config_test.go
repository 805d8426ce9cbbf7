package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "vfod-config-test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	t.Run("Valid Config", func(t *testing.T) {
		configContent := `
tuning:
  freq_min_hz: 7000000
  freq_max_hz: 7200000
  default_hz: 7030000
  if_offset_hz: 8998500
  step_table_hz: [100, 1000, 10000]
  default_step_index: 1

input:
  encoder_a_pin: 5
  encoder_b_pin: 6
  switch_pin: 13
  ptt_pin: 19
  debounce_ms: 40
  poll_interval_ms: 1

synth:
  i2c_bus: "/dev/i2c-0"
  i2c_address: 0x60
  crystal_hz: 27000000

hardware:
  enable_gpio: true
  tx_relay_pin: 26
  status_led_pin: 21
  enable_display: true

settings:
  path: "/tmp/vfod-settings.bin"

logging:
  level: "debug"
  console: true
`
		configPath := filepath.Join(tempDir, "valid.yaml")
		if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if config.Tuning.DefaultHz != 7030000 {
			t.Errorf("Expected default_hz 7030000, got %d", config.Tuning.DefaultHz)
		}
		if config.Tuning.IFOffsetHz != 8998500 {
			t.Errorf("Expected if_offset_hz 8998500, got %d", config.Tuning.IFOffsetHz)
		}
		if len(config.Tuning.StepTableHz) != 3 {
			t.Errorf("Expected 3 step table entries, got %d", len(config.Tuning.StepTableHz))
		}
		if config.Input.DebounceMs != 40 {
			t.Errorf("Expected debounce_ms 40, got %d", config.Input.DebounceMs)
		}
		if config.Synth.CrystalHz != 27000000 {
			t.Errorf("Expected crystal_hz 27000000, got %d", config.Synth.CrystalHz)
		}
		if !config.Hardware.EnableGPIO {
			t.Error("Expected GPIO to be enabled")
		}
		if config.Settings.Path != "/tmp/vfod-settings.bin" {
			t.Errorf("Unexpected settings path %s", config.Settings.Path)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("Expected valid config, got: %v", err)
		}
	})

	t.Run("Defaults Applied", func(t *testing.T) {
		configPath := filepath.Join(tempDir, "minimal.yaml")
		if err := os.WriteFile(configPath, []byte("{}\n"), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if config.Tuning.FreqMinHz != 7000000 || config.Tuning.FreqMaxHz != 7200000 {
			t.Errorf("Expected 40m band defaults, got %d..%d",
				config.Tuning.FreqMinHz, config.Tuning.FreqMaxHz)
		}
		if config.Tuning.DefaultHz != 7100000 {
			t.Errorf("Expected default frequency 7100000, got %d", config.Tuning.DefaultHz)
		}
		if len(config.Tuning.StepTableHz) != 5 {
			t.Errorf("Expected 5 default steps, got %d", len(config.Tuning.StepTableHz))
		}
		if config.Tuning.DefaultStepIndex != 2 {
			t.Errorf("Expected mid step index 2, got %d", config.Tuning.DefaultStepIndex)
		}
		if config.Input.DebounceMs != 50 {
			t.Errorf("Expected 50 ms debounce default, got %d", config.Input.DebounceMs)
		}
		if config.Synth.I2CAddress != 0x60 {
			t.Errorf("Expected Si5351 default address 0x60, got 0x%02x", config.Synth.I2CAddress)
		}
		if config.Synth.VFOChannel != 0 || config.Synth.BFOChannel != 2 {
			t.Errorf("Expected channels 0/2, got %d/%d",
				config.Synth.VFOChannel, config.Synth.BFOChannel)
		}
		if config.Logging.Level != "info" {
			t.Errorf("Expected info log level default, got %s", config.Logging.Level)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("Expected defaults to validate, got: %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(tempDir, "does-not-exist.yaml"))
		if err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		configPath := filepath.Join(tempDir, "broken.yaml")
		if err := os.WriteFile(configPath, []byte("tuning: [not a map\n"), 0644); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}

		_, err := LoadConfig(configPath)
		if err == nil {
			t.Error("Expected error for malformed YAML")
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		config := &Config{}
		config.Tuning.FreqMinHz = 7000000
		config.Tuning.FreqMaxHz = 7200000
		config.Tuning.DefaultHz = 7100000
		config.Tuning.StepTableHz = []uint32{10, 100, 1000}
		config.Tuning.DefaultStepIndex = 1
		config.Input.PollIntervalMs = 2
		config.Synth.VFOChannel = 0
		config.Synth.BFOChannel = 2
		return config
	}

	t.Run("Valid", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Errorf("Expected no error, got: %v", err)
		}
	})

	t.Run("Inverted Band", func(t *testing.T) {
		config := base()
		config.Tuning.FreqMinHz = 7300000
		if err := config.Validate(); err == nil {
			t.Error("Expected error for inverted band limits")
		}
	})

	t.Run("Default Outside Band", func(t *testing.T) {
		config := base()
		config.Tuning.DefaultHz = 14000000
		if err := config.Validate(); err == nil {
			t.Error("Expected error for default outside band")
		}
	})

	t.Run("Empty Step Table", func(t *testing.T) {
		config := base()
		config.Tuning.StepTableHz = nil
		if err := config.Validate(); err == nil {
			t.Error("Expected error for empty step table")
		}
	})

	t.Run("Zero Step", func(t *testing.T) {
		config := base()
		config.Tuning.StepTableHz = []uint32{10, 0, 1000}
		if err := config.Validate(); err == nil {
			t.Error("Expected error for zero step size")
		}
	})

	t.Run("Step Index Out Of Range", func(t *testing.T) {
		config := base()
		config.Tuning.DefaultStepIndex = 3
		if err := config.Validate(); err == nil {
			t.Error("Expected error for out-of-range step index")
		}
	})

	t.Run("Shared Synth Channel", func(t *testing.T) {
		config := base()
		config.Synth.BFOChannel = 0
		if err := config.Validate(); err == nil {
			t.Error("Expected error for shared VFO/BFO channel")
		}
	})

	t.Run("GPIO Without Pins", func(t *testing.T) {
		config := base()
		config.Hardware.EnableGPIO = true
		err := config.Validate()
		if err == nil {
			t.Fatal("Expected error for missing pins")
		}
		if !strings.Contains(err.Error(), "pin") {
			t.Errorf("Expected pin error, got: %v", err)
		}
	})
}
