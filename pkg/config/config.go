package config

import (
	"fmt"
	"os"

	"github.com/kt0dx/vfod/pkg/tuning"
	"gopkg.in/yaml.v2"
)

// Config represents the vfod configuration
type Config struct {
	Tuning struct {
		FreqMinHz        uint32   `yaml:"freq_min_hz"`
		FreqMaxHz        uint32   `yaml:"freq_max_hz"`
		DefaultHz        uint32   `yaml:"default_hz"`
		IFOffsetHz       uint32   `yaml:"if_offset_hz"`
		BFOHz            uint32   `yaml:"bfo_hz"`
		StepTableHz      []uint32 `yaml:"step_table_hz"`
		DefaultStepIndex int      `yaml:"default_step_index"`
	} `yaml:"tuning"`

	Input struct {
		EncoderAPin    int `yaml:"encoder_a_pin"`
		EncoderBPin    int `yaml:"encoder_b_pin"`
		SwitchPin      int `yaml:"switch_pin"`
		PTTPin         int `yaml:"ptt_pin"`
		DebounceMs     int `yaml:"debounce_ms"`
		PollIntervalMs int `yaml:"poll_interval_ms"`
	} `yaml:"input"`

	Synth struct {
		I2CBus     string `yaml:"i2c_bus"`
		I2CAddress int    `yaml:"i2c_address"`
		CrystalHz  uint32 `yaml:"crystal_hz"`
		VFOChannel int    `yaml:"vfo_channel"`
		BFOChannel int    `yaml:"bfo_channel"`
	} `yaml:"synth"`

	Hardware struct {
		EnableGPIO    bool `yaml:"enable_gpio"`
		TxRelayPin    int  `yaml:"tx_relay_pin"`
		StatusLEDPin  int  `yaml:"status_led_pin"`
		EnableDisplay bool `yaml:"enable_display"`
	} `yaml:"hardware"`

	Settings struct {
		Path string `yaml:"path"`
	} `yaml:"settings"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
		Console    bool   `yaml:"console"`
		Structured bool   `yaml:"structured"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	if config.Tuning.FreqMinHz == 0 {
		config.Tuning.FreqMinHz = tuning.DefaultFreqMin // 40m band
	}
	if config.Tuning.FreqMaxHz == 0 {
		config.Tuning.FreqMaxHz = tuning.DefaultFreqMax
	}
	if config.Tuning.DefaultHz == 0 {
		config.Tuning.DefaultHz = tuning.DefaultFrequency
	}
	if config.Tuning.IFOffsetHz == 0 {
		config.Tuning.IFOffsetHz = tuning.DefaultIFOffset
	}
	if config.Tuning.BFOHz == 0 {
		config.Tuning.BFOHz = tuning.DefaultIFOffset
	}
	if len(config.Tuning.StepTableHz) == 0 {
		config.Tuning.StepTableHz = append([]uint32(nil), tuning.DefaultStepTable...)
		config.Tuning.DefaultStepIndex = tuning.DefaultStepIndex // 1 kHz
	}
	if config.Input.DebounceMs == 0 {
		config.Input.DebounceMs = 50
	}
	if config.Input.PollIntervalMs == 0 {
		config.Input.PollIntervalMs = 2
	}
	if config.Input.EncoderAPin == 0 {
		config.Input.EncoderAPin = 17
	}
	if config.Input.EncoderBPin == 0 {
		config.Input.EncoderBPin = 27
	}
	if config.Input.SwitchPin == 0 {
		config.Input.SwitchPin = 22
	}
	if config.Input.PTTPin == 0 {
		config.Input.PTTPin = 23
	}
	if config.Synth.I2CBus == "" {
		config.Synth.I2CBus = "/dev/i2c-1"
	}
	if config.Synth.I2CAddress == 0 {
		config.Synth.I2CAddress = 0x60 // Si5351 default
	}
	if config.Synth.CrystalHz == 0 {
		config.Synth.CrystalHz = 25000000
	}
	if config.Synth.VFOChannel == 0 && config.Synth.BFOChannel == 0 {
		config.Synth.VFOChannel = 0
		config.Synth.BFOChannel = 2
	}
	if config.Hardware.TxRelayPin == 0 {
		config.Hardware.TxRelayPin = 18
	}
	if config.Hardware.StatusLEDPin == 0 {
		config.Hardware.StatusLEDPin = 24
	}
	if config.Settings.Path == "" {
		config.Settings.Path = "/var/lib/vfod/settings.bin"
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = 10 // megabytes
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = 3
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = 28 // days
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tuning.FreqMinHz >= c.Tuning.FreqMaxHz {
		return fmt.Errorf("freq_min_hz %d must be below freq_max_hz %d",
			c.Tuning.FreqMinHz, c.Tuning.FreqMaxHz)
	}
	if c.Tuning.DefaultHz < c.Tuning.FreqMinHz || c.Tuning.DefaultHz > c.Tuning.FreqMaxHz {
		return fmt.Errorf("default_hz %d outside band %d..%d",
			c.Tuning.DefaultHz, c.Tuning.FreqMinHz, c.Tuning.FreqMaxHz)
	}
	if len(c.Tuning.StepTableHz) == 0 {
		return fmt.Errorf("step_table_hz must not be empty")
	}
	if len(c.Tuning.StepTableHz) > 256 {
		return fmt.Errorf("step_table_hz has %d entries, persisted index is one byte", len(c.Tuning.StepTableHz))
	}
	for i, step := range c.Tuning.StepTableHz {
		if step == 0 {
			return fmt.Errorf("step_table_hz[%d] must not be zero", i)
		}
	}
	if c.Tuning.DefaultStepIndex < 0 || c.Tuning.DefaultStepIndex >= len(c.Tuning.StepTableHz) {
		return fmt.Errorf("default_step_index %d out of range for %d steps",
			c.Tuning.DefaultStepIndex, len(c.Tuning.StepTableHz))
	}
	if c.Input.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative")
	}
	if c.Input.PollIntervalMs <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive")
	}
	if c.Synth.VFOChannel == c.Synth.BFOChannel {
		return fmt.Errorf("vfo_channel and bfo_channel must differ")
	}
	if c.Hardware.EnableGPIO {
		pins := map[string]int{
			"encoder_a_pin": c.Input.EncoderAPin,
			"encoder_b_pin": c.Input.EncoderBPin,
			"switch_pin":    c.Input.SwitchPin,
			"ptt_pin":       c.Input.PTTPin,
			"tx_relay_pin":  c.Hardware.TxRelayPin,
		}
		for name, pin := range pins {
			if pin <= 0 {
				return fmt.Errorf("%s is required when GPIO is enabled", name)
			}
		}
	}
	return nil
}
