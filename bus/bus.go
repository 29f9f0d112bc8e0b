// Package bus implements the C64 64 KiB banked address space: a flat
// RAM backing store overlaid by BASIC/KERNAL/CHAR ROM images, VIC/SID/
// CIA I/O windows and an optional cartridge mapping, all selected by a
// 5-bit banking selector recomputed on every write to $0001 or change
// of the cartridge's EXROM/GAME lines.
package bus

import (
	"github.com/mjholtkamp/c64core/cart"
	"github.com/mjholtkamp/c64core/errs"
	"github.com/mjholtkamp/c64core/io"
	"github.com/mjholtkamp/c64core/memory"
)

const (
	processorPort = uint16(0x0001)

	loramBit  = uint8(0x01)
	hiramBit  = uint8(0x02)
	charenBit = uint8(0x04)
)

// Def wires up a Bus's backing stores and memory-mapped devices. Any
// device left nil reads as open-bus (the last value seen on the data
// bus) and silently discards writes.
type Def struct {
	BasicROM []uint8 // Exactly 8192 bytes if present.
	KernalROM []uint8 // Exactly 8192 bytes if present.
	CharROM  []uint8 // Exactly 4096 bytes if present.

	VIC         io.Device // $D000-$D3FF
	SID         io.Device // $D400-$D7FF
	CIA1        io.Device // $DC00-$DCFF
	CIA2        io.Device // $DD00-$DDFF
	CartControl io.Device // $DE00-$DFFF, only consulted when Cart is non-nil.

	Cart *cart.Cartridge // Optional installed cartridge.
}

// Bus implements memory.Bank over the full C64 64 KiB map.
type Bus struct {
	ram   memory.Bank
	basic memory.Bank
	kernal memory.Bank
	char  memory.Bank

	vic, sid, cia1, cia2, cartCtrl io.Device

	cart *cart.Cartridge

	lastDatabus uint8
	lastErr     error
}

// New constructs a Bus. The RAM bank is always a full 64 KiB and starts
// zeroed; PowerOn randomizes it and seeds the processor port. ROM images
// are copied in as read-only banks via memory.NewROMBank.
func New(def *Def) (*Bus, error) {
	ram, err := memory.New8BitRAMBank(1<<16, nil)
	if err != nil {
		return nil, err
	}
	b := &Bus{
		ram:  ram,
		vic:  def.VIC,
		sid:  def.SID,
		cia1: def.CIA1,
		cia2: def.CIA2,
		cartCtrl: def.CartControl,
		cart: def.Cart,
	}
	if def.BasicROM != nil {
		b.basic = memory.NewROMBank(def.BasicROM, nil)
	}
	if def.KernalROM != nil {
		b.kernal = memory.NewROMBank(def.KernalROM, nil)
	}
	if def.CharROM != nil {
		b.char = memory.NewROMBank(def.CharROM, nil)
	}
	return b, nil
}

// PowerOn implements memory.Bank: randomizes RAM, then seeds the
// processor-port data direction register ($0000) and data register
// ($0001) with the real C64's power-on values (DDR=$2F, port=$37),
// so the default "no cartridge" map (BASIC/KERNAL/I-O all banked in)
// holds deterministically rather than depending on whatever garbage
// PowerOn's randomization left at $0001. ROM images and any installed
// cartridge are left untouched.
func (b *Bus) PowerOn() {
	b.ram.PowerOn()
	b.ram.Write(0x0000, 0x2F)
	b.ram.Write(processorPort, 0x37)
}

// Parent implements memory.Bank: the Bus is always the root of its chain.
func (b *Bus) Parent() memory.Bank { return nil }

// DatabusVal implements memory.Bank.
func (b *Bus) DatabusVal() uint8 { return b.lastDatabus }

// Err returns and clears the most recent errs.BusDeviceError latched by
// a Read/Write dispatched to an io.ErrorableDevice. Callers (the c64
// driver loop) poll this after Read/Write much the way they poll
// Debug() on other chips.
func (b *Bus) Err() error {
	e := b.lastErr
	b.lastErr = nil
	return e
}

func (b *Bus) selector() (loram, hiram, charen bool) {
	v := b.ram.Read(processorPort)
	return v&loramBit != 0, v&hiramBit != 0, v&charenBit != 0
}

// exromGame returns the cartridge's current EXROM/GAME lines, or the
// no-cartridge default (EXROM=1, GAME=1) when none is installed.
func (b *Bus) exromGame() (exrom, game bool) {
	if b.cart == nil {
		return true, true
	}
	return b.cart.EXROM, b.cart.GAME
}

// SetBankLines is exposed for cartridges (Action Replay) that drive
// EXROM/GAME dynamically from their control register; it is a no-op
// placeholder for recomputation since this Bus derives the lines live
// from b.cart on every access rather than caching them.
func (b *Bus) SetBankLines(exrom, game bool) {
	if b.cart != nil {
		b.cart.EXROM, b.cart.GAME = exrom, game
	}
}

// Read resolves addr through the current bank selection. Reads of
// unmapped ROM/RAM are side-effect free; reads in the I/O window may
// have side effects performed by the underlying device.
func (b *Bus) Read(addr uint16) uint8 {
	_, hiram, charen := b.selector()
	exrom, game := b.exromGame()

	var v uint8
	switch {
	case addr < 0x8000:
		v = b.ram.Read(addr)
	case addr <= 0x9FFF: // $8000-$9FFF: ROML window.
		if b.cart != nil && !exrom {
			v = b.cart.ReadROML(addr - 0x8000)
		} else {
			v = b.ram.Read(addr)
		}
	case addr <= 0xBFFF: // $A000-$BFFF: BASIC or 16K-mode ROMH.
		switch {
		case b.cart != nil && !exrom && !game:
			v = b.cart.ReadROMH(addr - 0xA000)
		case hiram && b.basic != nil:
			v = b.basic.Read(addr - 0xA000)
		default:
			v = b.ram.Read(addr)
		}
	case addr <= 0xCFFF:
		v = b.ram.Read(addr)
	case addr <= 0xDFFF: // $D000-$DFFF: CHAR ROM or I/O.
		switch {
		case !charen:
			if b.char != nil {
				v = b.char.Read(addr - 0xD000)
			} else {
				v = b.ram.Read(addr)
			}
		default:
			v = b.readIO(addr)
		}
	default: // $E000-$FFFF: KERNAL or Ultimax ROMH.
		switch {
		case b.cart != nil && exrom && !game:
			v = b.cart.ReadROMH(addr - 0xE000)
		case hiram && b.kernal != nil:
			v = b.kernal.Read(addr - 0xE000)
		default:
			v = b.ram.Read(addr)
		}
	}
	b.lastDatabus = v
	return v
}

// Write always updates the underlying RAM and, within the I/O and
// cartridge-control windows, forwards to the claiming device. A write
// to a ROM-shadowed region therefore becomes visible the moment the ROM
// banks back out, per spec.
func (b *Bus) Write(addr uint16, val uint8) {
	b.ram.Write(addr, val)
	b.lastDatabus = val

	_, _, charen := b.selector()
	exrom, _ := b.exromGame()
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF && b.cart != nil && !exrom:
		b.cart.WriteROML(addr-0x8000, val)
	case addr >= 0xD000 && addr <= 0xDFFF && charen:
		if addr >= 0xDE00 && b.cart != nil {
			b.writeDevice(b.cartCtrl, addr-0xDE00, val)
			b.cart.HandleControlWrite(addr-0xDE00, val)
			return
		}
		b.writeDevice(b.ioDeviceFor(addr), b.ioOffset(addr), val)
	}
}

func (b *Bus) ioDeviceFor(addr uint16) io.Device {
	switch {
	case addr <= 0xD3FF:
		return b.vic
	case addr <= 0xD7FF:
		return b.sid
	case addr <= 0xDBFF:
		return nil // Color RAM: backed directly by the RAM bank above.
	case addr <= 0xDCFF:
		return b.cia1
	case addr <= 0xDDFF:
		return b.cia2
	default:
		if b.cart == nil {
			return nil
		}
		return b.cartCtrl
	}
}

func (b *Bus) ioOffset(addr uint16) uint16 {
	switch {
	case addr <= 0xD3FF:
		return (addr - 0xD000) & 0x3F // VIC registers mirror every 64 bytes.
	case addr <= 0xD7FF:
		return addr - 0xD400
	case addr <= 0xDCFF:
		return addr - 0xDC00
	case addr <= 0xDDFF:
		return addr - 0xDD00
	default:
		return addr - 0xDE00
	}
}

func (b *Bus) readIO(addr uint16) uint8 {
	dev := b.ioDeviceFor(addr)
	if dev == nil {
		if addr >= 0xD800 && addr <= 0xDBFF {
			return b.ram.Read(addr) // Color RAM: backed directly by the RAM bank.
		}
		return b.lastDatabus // Unclaimed: open bus.
	}
	v := dev.Read(b.ioOffset(addr))
	b.latchErr(dev, addr)
	return v
}

func (b *Bus) writeDevice(dev io.Device, offset uint16, val uint8) {
	if dev == nil {
		return
	}
	dev.Write(offset, val)
	b.latchErr(dev, offset)
}

func (b *Bus) latchErr(dev io.Device, addr uint16) {
	if e, ok := dev.(io.ErrorableDevice); ok {
		if err := e.LastError(); err != nil {
			b.lastErr = errs.BusDeviceError{Addr: addr, Err: err}
		}
	}
}

// ReadWord reads a little-endian word, crossing page boundaries normally.
func (b *Bus) ReadWord(addr uint16) uint16 {
	lo := b.Read(addr)
	hi := b.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteWord writes a little-endian word.
func (b *Bus) WriteWord(addr uint16, w uint16) {
	b.Write(addr, uint8(w&0xFF))
	b.Write(addr+1, uint8(w>>8))
}
