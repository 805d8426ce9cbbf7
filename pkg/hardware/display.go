package hardware

import (
	"fmt"

	"github.com/kt0dx/vfod/pkg/logging"
)

// ConsoleDisplay implements DisplayInterface by logging each frame. It
// stands in for the front-panel LCD on development hosts and headless
// installs; a panel driver replaces it behind the same interface.
type ConsoleDisplay struct{}

// NewConsoleDisplay creates a console display
func NewConsoleDisplay() *ConsoleDisplay {
	return &ConsoleDisplay{}
}

// Initialize initializes the console display
func (d *ConsoleDisplay) Initialize() error {
	return nil
}

// Close closes the console display
func (d *ConsoleDisplay) Close() error {
	return nil
}

// Render logs one frame: dial frequency, step size, and T/R mode
func (d *ConsoleDisplay) Render(frequency uint32, stepSize uint32, txMode bool) error {
	mode := "RX"
	if txMode {
		mode = "TX"
	}
	logging.Infof("display", "%s  step %s  %s",
		FormatFrequency(frequency), FormatStep(stepSize), mode)
	return nil
}

// FormatFrequency renders a frequency the way the front panel shows it,
// e.g. "7.100.000".
func FormatFrequency(hz uint32) string {
	mhz := hz / 1000000
	khz := hz / 1000 % 1000
	rem := hz % 1000
	return fmt.Sprintf("%d.%03d.%03d", mhz, khz, rem)
}

// FormatStep renders a step size compactly, e.g. "1k" or "10".
func FormatStep(hz uint32) string {
	switch {
	case hz >= 1000000 && hz%1000000 == 0:
		return fmt.Sprintf("%dM", hz/1000000)
	case hz >= 1000 && hz%1000 == 0:
		return fmt.Sprintf("%dk", hz/1000)
	default:
		return fmt.Sprintf("%d", hz)
	}
}
