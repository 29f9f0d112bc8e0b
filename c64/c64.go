// Package c64 ties the CPU, bus, VIC-II timing driver, cartridge and
// frame handshake together into a runnable system, the same way
// atari2600.VCS wires tia.Chip + pia6532.Chip + cpu.Chip in the
// teacher emulator this module is descended from.
package c64

import (
	"fmt"
	"log"

	"github.com/mjholtkamp/c64core/bus"
	"github.com/mjholtkamp/c64core/cart"
	"github.com/mjholtkamp/c64core/cpu"
	"github.com/mjholtkamp/c64core/frame"
	"github.com/mjholtkamp/c64core/io"
	"github.com/mjholtkamp/c64core/irq"
	"github.com/mjholtkamp/c64core/vic"
)

// SystemDef defines the pieces needed to assemble a runnable C64.
type SystemDef struct {
	CPU cpu.CPUType
	VIC vic.Variant

	BasicROM  []uint8 // Exactly 8192 bytes if present.
	KernalROM []uint8 // Exactly 8192 bytes if present.
	CharROM   []uint8 // Exactly 4096 bytes if present.

	Cart *cart.Cartridge // Optional, from cart.LoadBin/LoadCRT.

	SID  io.Device // Optional; out of core scope, specified only at its bus interface.
	CIA1 io.Device
	CIA2 io.Device

	// ExternalIRQ/ExternalNMI let a host wire in a device (CIA timer,
	// freeze button) that asserts the CPU's interrupt lines without the
	// CPU needing to know about it directly.
	ExternalIRQ irq.Sender
	ExternalNMI irq.Sender

	// Debug, if true, emits Debug() output from the CPU to the standard
	// logger on every Step.
	Debug bool
}

// System is a fully wired, runnable Commodore 64: CPU executing against
// the banked Bus, with the VIC-II timing driver advanced by each
// instruction's cycle count and a Handshake the caller polls to learn
// when a frame is ready to render.
type System struct {
	CPU   *cpu.Chip
	Bus   *bus.Bus
	VIC   *vic.Chip
	Frame *frame.Handshake

	debug bool
}

// Init returns a powered-on System with PC loaded from the RESET vector.
func Init(def *SystemDef) (*System, error) {
	vicChip := vic.Init(&vic.ChipDef{Variant: def.VIC})
	vicChip.PowerOn()

	b, err := bus.New(&bus.Def{
		BasicROM:  def.BasicROM,
		KernalROM: def.KernalROM,
		CharROM:   def.CharROM,
		VIC:       vicChip,
		SID:       def.SID,
		CIA1:      def.CIA1,
		CIA2:      def.CIA2,
		Cart:      def.Cart,
	})
	if err != nil {
		return nil, fmt.Errorf("can't initialize bus: %v", err)
	}

	c, err := cpu.Init(&cpu.ChipDef{
		Cpu:   def.CPU,
		Ram:   b,
		Irq:   def.ExternalIRQ,
		Nmi:   def.ExternalNMI,
		Debug: def.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("can't initialize cpu: %v", err)
	}

	return &System{
		CPU:   c,
		Bus:   b,
		VIC:   vicChip,
		Frame: frame.New(),
		debug: def.Debug,
	}, nil
}

// Step executes exactly one CPU instruction (or serviced interrupt),
// advances the VIC-II raster by the cycles it consumed, and raises the
// frame handshake if that advance wrapped a frame. Any error latched by
// a bus I/O device is logged and otherwise ignored, matching the
// spec's "CPU never aborts on its own" contract for BusDeviceError.
func (s *System) Step() (uint8, error) {
	if s.debug {
		if d := s.CPU.Debug(); d != "" {
			log.Printf("CPU: %s", d)
		}
	}
	cycles, err := s.CPU.Step()
	if err != nil {
		return cycles, err
	}
	line := s.VIC.RasterY
	s.VIC.Tick(cycles)
	if s.VIC.RasterY < line { // One step is far shorter than a raster line, so this is the frame wrap.
		s.Frame.SetReady()
	}
	if busErr := s.Bus.Err(); busErr != nil {
		log.Printf("bus device error: %v", busErr)
	}
	return cycles, nil
}

// RunFrame steps the CPU until a full VIC-II frame has been produced
// (or the handshake's stop signal is observed), clearing the VIC's own
// frame_ready once it has propagated it to the Handshake. It is a
// convenience for callers (tests, headless drivers) that don't want to
// manage their own Step loop; a renderer-driven host typically calls
// Step directly from its own producer goroutine instead.
func (s *System) RunFrame() error {
	for !s.Frame.Stopped() {
		if _, err := s.Step(); err != nil {
			return err
		}
		if s.VIC.FrameReady() {
			s.VIC.ClearFrameReady()
			return nil
		}
	}
	return nil
}
