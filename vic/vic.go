// Package vic implements the VIC-II raster/frame timing driver: given
// consumed CPU cycles it advances a raster beam and raises frame_ready
// on VBlank. It does not render anything itself; Snapshot.ToImage is an
// optional convenience for callers that want a quick visual dump of the
// raw video/color RAM without writing a full renderer.
package vic

import (
	"image"
	"image/color"
	"sync/atomic"

	"golang.org/x/image/colornames"
)

// Variant selects the per-chip raster geometry.
type Variant int

const (
	PAL6569 Variant = iota
	NTSC6567R8
	NTSC6567R56A
)

func (v Variant) String() string {
	switch v {
	case PAL6569:
		return "PAL-6569"
	case NTSC6567R8:
		return "NTSC-6567R8"
	case NTSC6567R56A:
		return "NTSC-6567R56A"
	default:
		return "unknown"
	}
}

type geometry struct {
	lines        uint16
	cyclesPerLine uint16
}

var geometries = map[Variant]geometry{
	PAL6569:      {lines: 312, cyclesPerLine: 63},
	NTSC6567R8:   {lines: 263, cyclesPerLine: 65},
	NTSC6567R56A: {lines: 262, cyclesPerLine: 64},
}

// Chip implements the raster/frame-complete timer. RasterY and
// CycleInLine are owned exclusively by the producer (CPU) thread;
// FrameReady is the one field shared cross-thread and must only ever be
// touched through its atomic accessors.
type Chip struct {
	variant Variant
	geo     geometry

	RasterY     uint16
	CycleInLine uint16

	frameReady uint32 // atomic bool: 0 = clear, 1 = set.

	// regs is the VIC-II register file as presented to the bus's I/O
	// window ($D000-$D02E meaningfully, mirrored through $D3FF).
	regs [64]uint8
}

// ChipDef configures a new Chip.
type ChipDef struct {
	Variant Variant
}

// Init returns a Chip ready to tick from raster line 0.
func Init(def *ChipDef) *Chip {
	return &Chip{
		variant: def.Variant,
		geo:     geometries[def.Variant],
	}
}

// PowerOn implements io.Device: clears the register file and raster
// position. FrameReady is left clear.
func (c *Chip) PowerOn() {
	for i := range c.regs {
		c.regs[i] = 0
	}
	c.RasterY = 0
	c.CycleInLine = 0
	atomic.StoreUint32(&c.frameReady, 0)
}

// Read implements io.Device for the VIC-II register window. Raster
// line bits 0-7 are mirrored at $D012 (register 0x12) as real hardware
// does; callers needing bit 8 would OR it in from $D011 bit 7, which
// this emulation does not yet set (no interlace/bad-line modeling).
func (c *Chip) Read(addr uint16) uint8 {
	if addr == 0x12 {
		return uint8(c.RasterY)
	}
	return c.regs[addr&0x3F]
}

// Write implements io.Device.
func (c *Chip) Write(addr uint16, val uint8) {
	c.regs[addr&0x3F] = val
}

// Tick advances the raster by cpuCycles cycles of CPU time, wrapping
// lines and, on a full-frame wrap, raising FrameReady. It is called
// once per CPU.Step() by the driver loop with that step's returned
// cycle count.
func (c *Chip) Tick(cpuCycles uint8) {
	c.CycleInLine += uint16(cpuCycles)
	for c.CycleInLine >= c.geo.cyclesPerLine {
		c.CycleInLine -= c.geo.cyclesPerLine
		c.RasterY++
		if c.RasterY >= c.geo.lines {
			c.RasterY = 0
			c.SetFrameReady()
		}
	}
}

// SetFrameReady raises the cross-thread frame-complete flag with
// release semantics: RAM and register writes made by the CPU thread up
// to this point happen-before any consumer that observes the flag set.
func (c *Chip) SetFrameReady() {
	atomic.StoreUint32(&c.frameReady, 1)
}

// FrameReady reports (with acquire semantics) whether a frame is
// waiting to be consumed.
func (c *Chip) FrameReady() bool {
	return atomic.LoadUint32(&c.frameReady) == 1
}

// ClearFrameReady clears the flag; the consumer calls this immediately
// after copying its snapshot.
func (c *Chip) ClearFrameReady() {
	atomic.StoreUint32(&c.frameReady, 0)
}

// Snapshot is an immutable copy of the state a renderer needs: the full
// 64 KiB RAM view and the VIC-II register file, taken atomically by the
// consumer once FrameReady is observed set.
type Snapshot struct {
	RAM  [65536]uint8
	Regs [64]uint8
}

// vicPalette is the standard 16-color VIC-II palette, keyed to the
// nearest named colors from golang.org/x/image/colornames rather than
// hand-picked RGB triples.
var vicPalette = color.Palette{
	colornames.Black, colornames.White, colornames.Firebrick, colornames.Cyan,
	colornames.Purple, colornames.Green, colornames.Blue, colornames.Yellow,
	colornames.Orange, colornames.Brown, colornames.Lightpink, colornames.Darkgray,
	colornames.Gray, colornames.Lightgreen, colornames.Lightblue, colornames.Lightgray,
}

// ToImage renders a crude visual dump of Snapshot's video matrix
// ($0400-$07E7, the default unexpanded text screen location) as a
// 320x200 paletted image, one 8x8 cell per character code's low 4
// bits indexing vicPalette. It exists only as a convenience for
// debugging and tests; a real renderer interprets character/bitmap/
// sprite data itself per §6 of the bus's external interface and does
// not need this helper.
func (s *Snapshot) ToImage() *image.Paletted {
	const (
		cols = 40
		rows = 25
		cell = 8
	)
	img := image.NewPaletted(image.Rect(0, 0, cols*cell, rows*cell), vicPalette)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			ch := s.RAM[0x0400+row*cols+col]
			idx := uint8(ch & 0x0F)
			for y := 0; y < cell; y++ {
				for x := 0; x < cell; x++ {
					img.SetColorIndex(col*cell+x, row*cell+y, idx)
				}
			}
		}
	}
	return img
}
