package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kt0dx/vfod/pkg/config"
	"github.com/kt0dx/vfod/pkg/hardware"
	"github.com/kt0dx/vfod/pkg/input"
	"github.com/kt0dx/vfod/pkg/logging"
	"github.com/kt0dx/vfod/pkg/settings"
	"github.com/kt0dx/vfod/pkg/tuning"
)

// VFODaemon wires the peripherals, the debouncer, and the frequency
// controller into the single reactive control loop.
type VFODaemon struct {
	config *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	hw         *hardware.Manager
	region     *settings.FileRegion
	store      *settings.Store
	controller *tuning.Controller
	debouncer  *input.Debouncer
	scheduler  *tuning.RenderScheduler
}

// NewVFODaemon creates a daemon instance. Real peripherals are used when
// GPIO is enabled; otherwise mocks keep the loop runnable on a development
// host without the hardware attached.
func NewVFODaemon(cfg *config.Config) (*VFODaemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	hwConfig := hardware.HardwareConfig{
		EnableGPIO:    cfg.Hardware.EnableGPIO,
		EncoderAPin:   cfg.Input.EncoderAPin,
		EncoderBPin:   cfg.Input.EncoderBPin,
		SwitchPin:     cfg.Input.SwitchPin,
		PTTPin:        cfg.Input.PTTPin,
		TxRelayPin:    cfg.Hardware.TxRelayPin,
		StatusLEDPin:  cfg.Hardware.StatusLEDPin,
		EnableDisplay: cfg.Hardware.EnableDisplay,
		I2CBus:        cfg.Synth.I2CBus,
		I2CAddress:    cfg.Synth.I2CAddress,
		CrystalHz:     cfg.Synth.CrystalHz,
	}

	var gpio hardware.GPIOInterface
	var synth hardware.SynthInterface
	if cfg.Hardware.EnableGPIO {
		gpio = hardware.NewLinuxGPIO()
		synth = hardware.NewSi5351(cfg.Synth.I2CBus, cfg.Synth.I2CAddress, cfg.Synth.CrystalHz)
	} else {
		logging.Info("daemon", "GPIO disabled, using mock peripherals")
		gpio = hardware.NewMockGPIO()
		synth = hardware.NewMockSynth()
	}

	var display hardware.DisplayInterface
	if cfg.Hardware.EnableDisplay {
		display = hardware.NewConsoleDisplay()
	} else {
		display = hardware.NewMockDisplay()
	}

	return &VFODaemon{
		config:    cfg,
		ctx:       ctx,
		cancel:    cancel,
		hw:        hardware.NewManager(hwConfig, gpio, synth, display),
		debouncer: input.NewDebouncer(time.Duration(cfg.Input.DebounceMs) * time.Millisecond),
	}, nil
}

// Start initializes the peripherals, restores persisted settings, pushes
// the startup frequencies, and launches the control loop. Peripheral
// initialization failure is fatal: without the synthesizer and display
// there is nothing to control.
func (d *VFODaemon) Start() error {
	if err := d.hw.Initialize(); err != nil {
		return fmt.Errorf("hardware initialization failed: %w", err)
	}

	region, err := settings.OpenFileRegion(d.config.Settings.Path)
	if err != nil {
		return fmt.Errorf("failed to open settings storage: %w", err)
	}
	d.region = region

	d.store, err = settings.NewStore(region,
		settings.Limits{
			FreqMin:   d.config.Tuning.FreqMinHz,
			FreqMax:   d.config.Tuning.FreqMaxHz,
			StepCount: len(d.config.Tuning.StepTableHz),
		},
		settings.Settings{
			Frequency: d.config.Tuning.DefaultHz,
			StepIndex: d.config.Tuning.DefaultStepIndex,
		})
	if err != nil {
		return fmt.Errorf("failed to create settings store: %w", err)
	}

	saved, err := d.store.Load()
	if errors.Is(err, settings.ErrNoValidRecord) {
		logging.Infof("daemon", "No valid settings record, using defaults (%d Hz, step index %d)",
			saved.Frequency, saved.StepIndex)
	} else {
		logging.Infof("daemon", "Restored settings: %d Hz, step index %d",
			saved.Frequency, saved.StepIndex)
	}

	d.controller, err = tuning.NewController(
		tuning.ControllerConfig{
			FreqMin:    d.config.Tuning.FreqMinHz,
			FreqMax:    d.config.Tuning.FreqMaxHz,
			IFOffset:   d.config.Tuning.IFOffsetHz,
			StepTable:  d.config.Tuning.StepTableHz,
			VFOChannel: d.config.Synth.VFOChannel,
		},
		saved.Frequency, saved.StepIndex, d.hw, d.hw, d.store)
	if err != nil {
		return fmt.Errorf("failed to create controller: %w", err)
	}
	d.scheduler = tuning.NewRenderScheduler(d.hw)

	// The BFO channel is fixed: set once here, never touched again.
	bfoCentihertz := uint64(d.config.Tuning.BFOHz) * 100
	if err := d.hw.SetFrequency(d.config.Synth.BFOChannel, bfoCentihertz); err != nil {
		return fmt.Errorf("failed to set BFO frequency: %w", err)
	}

	if err := d.controller.CommandVFO(); err != nil {
		return fmt.Errorf("failed to set startup VFO frequency: %w", err)
	}

	// First frame before any input arrives.
	d.controller.MarkDirty()
	if err := d.scheduler.Flush(d.controller); err != nil {
		logging.Warnf("daemon", "Initial render failed: %v", err)
	}

	d.wg.Add(1)
	go d.controlLoop()

	return nil
}

// Stop shuts the loop down and releases the hardware. Closing the manager
// forces the transmit relay off, so a daemon restart never leaves the rig
// keyed.
func (d *VFODaemon) Stop() error {
	d.cancel()
	d.wg.Wait()

	if d.hw != nil {
		if err := d.hw.Close(); err != nil {
			logging.Errorf("daemon", "Hardware shutdown error: %v", err)
		}
	}
	if d.region != nil {
		if err := d.region.Close(); err != nil {
			logging.Errorf("daemon", "Settings storage close error: %v", err)
		}
	}
	return nil
}

// controlLoop is the reactive cycle: sample raw inputs, debounce, dispatch
// events, render if anything changed. One goroutine, one iteration per
// poll tick; nothing here blocks.
func (d *VFODaemon) controlLoop() {
	defer d.wg.Done()

	ticker := time.NewTicker(time.Duration(d.config.Input.PollIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.iterate()
		}
	}
}

// iterate runs one reactive-loop cycle
func (d *VFODaemon) iterate() {
	ticks, err := d.hw.PollEncoder()
	if err != nil {
		logging.Warnf("daemon", "Encoder read failed: %v", err)
		return
	}
	switchLevel, pttLevel, err := d.hw.ReadLevels()
	if err != nil {
		logging.Warnf("daemon", "Input read failed: %v", err)
		return
	}

	for _, ev := range d.debouncer.Sample(switchLevel, pttLevel, ticks) {
		logging.Debugf("daemon", "Event: %s", ev)
		if err := d.controller.Apply(ev); err != nil {
			// Reportable, never fatal: the state itself stays consistent.
			logging.Warnf("daemon", "Event %s: %v", ev, err)
		}
	}

	if err := d.scheduler.Flush(d.controller); err != nil {
		logging.Warnf("daemon", "Render failed: %v", err)
	}
}
