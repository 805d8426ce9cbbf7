package hardware

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kt0dx/vfod/pkg/logging"
)

// pinDirection is the sysfs direction string for an exported pin
type pinDirection string

const (
	dirIn  pinDirection = "in"
	dirOut pinDirection = "out"
)

// LinuxGPIO implements GPIOInterface using Linux sysfs GPIO
type LinuxGPIO struct {
	exported map[int]pinDirection
	mutex    sync.Mutex
}

// NewLinuxGPIO creates a new Linux GPIO interface
func NewLinuxGPIO() *LinuxGPIO {
	return &LinuxGPIO{
		exported: make(map[int]pinDirection),
	}
}

// Initialize checks that sysfs GPIO is available on this system
func (g *LinuxGPIO) Initialize() error {
	if _, err := os.Stat("/sys/class/gpio"); os.IsNotExist(err) {
		return fmt.Errorf("GPIO not available on this system")
	}
	logging.Info("gpio", "Linux sysfs GPIO initialized")
	return nil
}

// Close unexports all pins claimed during operation
func (g *LinuxGPIO) Close() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	for pin := range g.exported {
		if err := os.WriteFile("/sys/class/gpio/unexport", []byte(strconv.Itoa(pin)), 0644); err != nil {
			logging.Errorf("gpio", "Failed to unexport pin %d: %v", pin, err)
		}
	}
	g.exported = make(map[int]pinDirection)
	return nil
}

// SetPin drives an output pin high or low, exporting it as an output on
// first use
func (g *LinuxGPIO) SetPin(pin int, value bool) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if err := g.claim(pin, dirOut); err != nil {
		return err
	}

	valueStr := "0"
	if value {
		valueStr = "1"
	}
	valuePath := fmt.Sprintf("/sys/class/gpio/gpio%d/value", pin)
	if err := os.WriteFile(valuePath, []byte(valueStr), 0644); err != nil {
		return fmt.Errorf("failed to set pin %d value: %w", pin, err)
	}
	return nil
}

// GetPin reads an input pin level, exporting it as an input on first use
func (g *LinuxGPIO) GetPin(pin int) (bool, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if err := g.claim(pin, dirIn); err != nil {
		return false, err
	}

	valuePath := fmt.Sprintf("/sys/class/gpio/gpio%d/value", pin)
	data, err := os.ReadFile(valuePath)
	if err != nil {
		return false, fmt.Errorf("failed to read pin %d value: %w", pin, err)
	}
	return strings.TrimSpace(string(data)) == "1", nil
}

// claim exports a pin and sets its direction, once. A pin already claimed
// with a different direction is a wiring bug, not something to paper over.
func (g *LinuxGPIO) claim(pin int, dir pinDirection) error {
	if have, ok := g.exported[pin]; ok {
		if have != dir {
			return fmt.Errorf("pin %d already claimed as %s", pin, have)
		}
		return nil
	}

	pinPath := fmt.Sprintf("/sys/class/gpio/gpio%d", pin)
	if _, err := os.Stat(pinPath); os.IsNotExist(err) {
		if err := os.WriteFile("/sys/class/gpio/export", []byte(strconv.Itoa(pin)), 0644); err != nil {
			return fmt.Errorf("failed to export GPIO pin %d: %w", pin, err)
		}
		// The kernel creates the pin directory asynchronously.
		appeared := false
		for i := 0; i < 10; i++ {
			if _, err := os.Stat(pinPath); err == nil {
				appeared = true
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if !appeared {
			return fmt.Errorf("pin %d directory did not appear after export", pin)
		}
	}

	directionPath := fmt.Sprintf("/sys/class/gpio/gpio%d/direction", pin)
	if err := os.WriteFile(directionPath, []byte(dir), 0644); err != nil {
		return fmt.Errorf("failed to set pin %d direction to %s: %w", pin, dir, err)
	}

	g.exported[pin] = dir
	logging.Debugf("gpio", "Claimed pin %d as %s", pin, dir)
	return nil
}
