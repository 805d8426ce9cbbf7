package hardware

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// I2C_SLAVE from linux/i2c-dev.h
const i2cSlave = 0x0703

// I2CDevice is a single target on a Linux i2c-dev bus
type I2CDevice struct {
	file *os.File
	addr int
}

// OpenI2CDevice opens the bus device node and binds it to one target
// address
func OpenI2CDevice(bus string, addr int) (*I2CDevice, error) {
	f, err := os.OpenFile(bus, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", bus, err)
	}

	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, addr); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to select I2C address 0x%02x: %w", addr, err)
	}

	return &I2CDevice{file: f, addr: addr}, nil
}

// WriteReg writes a register address followed by its data bytes
func (d *I2CDevice) WriteReg(reg uint8, data ...byte) error {
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, reg)
	buf = append(buf, data...)

	if _, err := d.file.Write(buf); err != nil {
		return fmt.Errorf("failed to write register 0x%02x on 0x%02x: %w", reg, d.addr, err)
	}
	return nil
}

// Close closes the bus file descriptor
func (d *I2CDevice) Close() error {
	return d.file.Close()
}
