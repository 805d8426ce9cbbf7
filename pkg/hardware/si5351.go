package hardware

import (
	"fmt"

	"github.com/kt0dx/vfod/pkg/logging"
)

// Si5351 register map, the subset this driver programs
const (
	regOutputEnable = 3   // one disable bit per output, active low enable
	regClkCtrlBase  = 16  // CLK0..CLK7 control
	regMSNABase     = 26  // PLLA feedback multisynth parameters
	regMSNBBase     = 34  // PLLB feedback multisynth parameters
	regMSBase       = 42  // output multisynth parameters, 8 bytes per output
	regPLLReset     = 177 //
	regCrystalLoad  = 183
)

// PLL operating range and denominator resolution
const (
	pllMinCentihertz = 60000000000 // 600 MHz
	pllMaxCentihertz = 90000000000 // 900 MHz
	fracDenominator  = 1048575     // 20-bit denominator, maximum resolution
	minOutputDivider = 8
	maxOutputDivider = 900
)

// Si5351 drives an Si5351A clock generator over I2C. Each output channel
// gets its own PLL assignment (CLK0 on PLLA, CLK1/CLK2 on PLLB) so the VFO
// and BFO can move independently.
type Si5351 struct {
	bus       string
	addr      int
	crystalHz uint32

	dev     *I2CDevice
	enabled uint8 // disable-bit mask currently in the output enable register
}

// NewSi5351 creates a driver for the generator at addr on the given bus.
func NewSi5351(bus string, addr int, crystalHz uint32) *Si5351 {
	return &Si5351{
		bus:       bus,
		addr:      addr,
		crystalHz: crystalHz,
		enabled:   0xFF, // everything disabled until first use
	}
}

// Initialize opens the bus and brings the chip to a known state: all
// outputs disabled and powered down, crystal load capacitance set.
func (s *Si5351) Initialize() error {
	dev, err := OpenI2CDevice(s.bus, s.addr)
	if err != nil {
		return err
	}
	s.dev = dev

	if err := s.dev.WriteReg(regOutputEnable, 0xFF); err != nil {
		return fmt.Errorf("si5351: disable outputs: %w", err)
	}
	for clk := uint8(0); clk < 8; clk++ {
		if err := s.dev.WriteReg(regClkCtrlBase+clk, 0x80); err != nil {
			return fmt.Errorf("si5351: power down CLK%d: %w", clk, err)
		}
	}
	// 10 pF load, reserved bits per datasheet
	if err := s.dev.WriteReg(regCrystalLoad, 0xD2); err != nil {
		return fmt.Errorf("si5351: set crystal load: %w", err)
	}

	logging.Infof("synth", "Si5351 at 0x%02x ready (%d Hz crystal)", s.addr, s.crystalHz)
	return nil
}

// Close disables all outputs and releases the bus
func (s *Si5351) Close() error {
	if s.dev == nil {
		return nil
	}
	if err := s.dev.WriteReg(regOutputEnable, 0xFF); err != nil {
		logging.Errorf("synth", "Error disabling outputs: %v", err)
	}
	err := s.dev.Close()
	s.dev = nil
	return err
}

// SetFrequency programs one output channel, in 0.01 Hz units. The PLL runs
// fractional against the crystal; the output multisynth runs in integer
// mode for the cleanest clock.
func (s *Si5351) SetFrequency(channel int, centihertz uint64) error {
	if s.dev == nil {
		return fmt.Errorf("si5351: not initialized")
	}
	if channel < 0 || channel > 2 {
		return fmt.Errorf("si5351: channel %d out of range", channel)
	}
	if centihertz == 0 {
		return fmt.Errorf("si5351: zero frequency")
	}

	// Largest even divider keeping the PLL at or below its ceiling.
	div := pllMaxCentihertz / centihertz
	if div%2 == 1 {
		div--
	}
	if div < minOutputDivider || div > maxOutputDivider {
		return fmt.Errorf("si5351: %d cHz not reachable (divider %d)", centihertz, div)
	}
	pll := centihertz * div
	if pll < pllMinCentihertz {
		return fmt.Errorf("si5351: %d cHz puts PLL below range", centihertz)
	}

	// Feedback multiplier a + b/c against the crystal.
	xtal := uint64(s.crystalHz) * 100
	a := pll / xtal
	b := (pll % xtal) * fracDenominator / xtal
	if a < 15 || a > 90 {
		return fmt.Errorf("si5351: PLL multiplier %d out of range", a)
	}

	pllBase := uint8(regMSNABase)
	pllSelect := uint8(0x00) // CLK control: PLLA
	resetBit := uint8(0x20)  // PLLA reset
	if channel != 0 {
		pllBase = regMSNBBase
		pllSelect = 0x20
		resetBit = 0x80
	}

	if err := s.dev.WriteReg(pllBase, packMultisynth(a, b, fracDenominator)...); err != nil {
		return fmt.Errorf("si5351: program PLL: %w", err)
	}

	msReg := uint8(regMSBase + 8*channel)
	if err := s.dev.WriteReg(msReg, packMultisynth(div, 0, 1)...); err != nil {
		return fmt.Errorf("si5351: program multisynth %d: %w", channel, err)
	}

	// Integer mode, selected PLL, 8 mA drive.
	ctrl := uint8(0x4C) | pllSelect | 0x03
	if err := s.dev.WriteReg(regClkCtrlBase+uint8(channel), ctrl); err != nil {
		return fmt.Errorf("si5351: clock control %d: %w", channel, err)
	}
	if err := s.dev.WriteReg(regPLLReset, resetBit); err != nil {
		return fmt.Errorf("si5351: PLL reset: %w", err)
	}

	// Enable the output if this is its first frequency.
	disableBit := uint8(1) << uint(channel)
	if s.enabled&disableBit != 0 {
		s.enabled &^= disableBit
		if err := s.dev.WriteReg(regOutputEnable, s.enabled); err != nil {
			return fmt.Errorf("si5351: enable output %d: %w", channel, err)
		}
	}

	logging.Debugf("synth", "CLK%d = %d.%02d Hz (divider %d, PLL mult %d+%d/%d)",
		channel, centihertz/100, centihertz%100, div, a, b, uint64(fracDenominator))
	return nil
}

// packMultisynth encodes a multisynth ratio a + b/c into the 8-byte
// register layout shared by the PLL feedback and output dividers.
func packMultisynth(a, b, c uint64) []byte {
	p1 := 128*a + 128*b/c - 512
	p2 := 128*b - c*(128*b/c)
	p3 := c

	return []byte{
		byte(p3 >> 8),
		byte(p3),
		byte(p1 >> 16 & 0x03),
		byte(p1 >> 8),
		byte(p1),
		byte(p3 >> 12 & 0xF0 | p2 >> 16 & 0x0F),
		byte(p2 >> 8),
		byte(p2),
	}
}
