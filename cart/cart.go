// Package cart implements C64 cartridge auto-detection and the ROML/
// ROMH/EXROM/GAME mapping a Cartridge presents to the bus, grounded on
// the teacher's convertprg/c64basic header-parsing style (fixed binary
// layouts read with encoding/binary) adapted to the CRT container and
// Action Replay bank-switching format.
package cart

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mjholtkamp/c64core/errs"
)

// Kind identifies the cartridge mapping mode installed.
type Kind int

const (
	None Kind = iota
	Normal8K
	Normal16K
	Ultimax
	ActionReplay
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Normal8K:
		return "Normal8K"
	case Normal16K:
		return "Normal16K"
	case Ultimax:
		return "Ultimax"
	case ActionReplay:
		return "ActionReplay"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var cbm80Signature = []byte{0xC3, 0xC2, 0xCD, 0x38, 0x30}

const (
	hwNormal       = 0
	hwActionReplay = 1

	arBankSize = 8192
	arRAMSize  = 8192
	arBanks    = 4
)

// Cartridge is an installed cartridge image plus the mutable state
// (bank select, RAM enable, freeze latch) that Action Replay's control
// register drives. The zero value is not useful; construct via LoadBin
// or LoadCRT.
type Cartridge struct {
	Kind Kind

	// EXROM, GAME are the two pull-up lines read by the bus's banking
	// selector. Normal8K/16K/Ultimax set these once at load; ActionReplay
	// mutates them on every control-register write.
	EXROM, GAME bool

	romL []uint8 // $8000-$9FFF window, Normal8K/16K/ActionReplay.
	romH []uint8 // $A000-$BFFF (16K) or $E000-$FFFF (Ultimax) window.

	// Action Replay state.
	arBanksData [arBanks][arBankSize]uint8
	arRAM       [arRAMSize]uint8
	arBank      int
	arRAMEnable bool
	arFrozen    bool
}

// LoadBin auto-detects a raw .bin cartridge image per the three
// recognized shapes (CBM80 8K, Ultimax 8K, plain 16K) and returns
// errs.InvalidCartridge for anything else.
func LoadBin(data []uint8) (*Cartridge, error) {
	switch {
	case len(data) == 8192 && len(data) >= 9 && bytes.Equal(data[4:9], cbm80Signature):
		c := &Cartridge{Kind: Normal8K, EXROM: false, GAME: true}
		c.romL = append([]uint8(nil), data...)
		return c, nil

	case len(data) == 8192 && resetVectorInKernalRange(data):
		c := &Cartridge{Kind: Ultimax, EXROM: true, GAME: false}
		c.romH = append([]uint8(nil), data...)
		return c, nil

	case len(data) == 16384:
		c := &Cartridge{Kind: Normal16K, EXROM: false, GAME: false}
		c.romL = append([]uint8(nil), data[:8192]...)
		c.romH = append([]uint8(nil), data[8192:]...)
		return c, nil

	default:
		return nil, errs.InvalidCartridge{Reason: fmt.Sprintf("length %d matches no known .bin layout", len(data))}
	}
}

func resetVectorInKernalRange(data []uint8) bool {
	if len(data) < 0x1FFE {
		return false
	}
	reset := uint16(data[0x1FFC]) | uint16(data[0x1FFD])<<8
	return reset >= 0xE000
}

const crtSignature = "C64 CARTRIDGE   "

// crtHeader mirrors the 64-byte CRT file header, all multi-byte fields
// big-endian per the format's community-standard layout.
type crtHeader struct {
	Signature   [16]byte
	HeaderLen   uint32
	Version     uint16
	HardwareType uint16
	EXROM       uint8
	GAME        uint8
	Reserved    [6]byte
	Name        [32]byte
}

type chipHeader struct {
	Signature [4]byte
	PacketLen uint32
	ChipType  uint16
	Bank      uint16
	LoadAddr  uint16
	ROMSize   uint16
}

// LoadCRT parses a CRT-format cartridge image: the 64-byte header
// followed by one or more CHIP packets. Only hardware type 0 (Normal)
// and 1 (Action Replay) are implemented; anything else is
// errs.UnsupportedCartridge.
func LoadCRT(data []uint8) (*Cartridge, error) {
	r := bytes.NewReader(data)
	var hdr crtHeader
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, errs.InvalidCartridge{Reason: "truncated CRT header"}
	}
	if string(hdr.Signature[:]) != crtSignature {
		return nil, errs.InvalidCartridge{Reason: "bad CRT signature"}
	}

	switch hdr.HardwareType {
	case hwNormal:
		return loadNormalCRT(data, &hdr)
	case hwActionReplay:
		return loadActionReplayCRT(data, &hdr)
	default:
		return nil, errs.UnsupportedCartridge{HardwareType: hdr.HardwareType}
	}
}

func chipPackets(data []uint8, headerLen uint32) ([]chipHeader, [][]uint8, error) {
	var headers []chipHeader
	var bodies [][]uint8
	off := int(headerLen)
	for off < len(data) {
		if off+16 > len(data) {
			return nil, nil, errs.InvalidCartridge{Reason: "truncated CHIP packet header"}
		}
		var ch chipHeader
		if err := binary.Read(bytes.NewReader(data[off:off+16]), binary.BigEndian, &ch); err != nil {
			return nil, nil, errs.InvalidCartridge{Reason: "malformed CHIP packet"}
		}
		if string(ch.Signature[:]) != "CHIP" {
			return nil, nil, errs.InvalidCartridge{Reason: "bad CHIP signature"}
		}
		bodyStart := off + 16
		bodyEnd := bodyStart + int(ch.ROMSize)
		if bodyEnd > len(data) {
			return nil, nil, errs.InvalidCartridge{Reason: "CHIP packet ROM overruns file"}
		}
		headers = append(headers, ch)
		bodies = append(bodies, data[bodyStart:bodyEnd])
		off += int(ch.PacketLen)
	}
	return headers, bodies, nil
}

func loadNormalCRT(data []uint8, hdr *crtHeader) (*Cartridge, error) {
	headers, bodies, err := chipPackets(data, hdr.HeaderLen)
	if err != nil {
		return nil, err
	}
	c := &Cartridge{Kind: Normal8K, EXROM: hdr.EXROM != 0, GAME: hdr.GAME != 0}
	switch {
	case !c.EXROM && !c.GAME:
		c.Kind = Normal16K
	case c.EXROM && !c.GAME:
		c.Kind = Ultimax
	}
	for i, ch := range headers {
		body := bodies[i]
		switch {
		case ch.LoadAddr >= 0x8000 && ch.LoadAddr < 0xA000:
			c.romL = body
		default:
			c.romH = body
		}
	}
	return c, nil
}

// loadActionReplayCRT installs up to four 8K banks from CHIP packets
// (bank field selects the slot) into an ActionReplay cartridge with its
// own 8K battery RAM and control register.
func loadActionReplayCRT(data []uint8, hdr *crtHeader) (*Cartridge, error) {
	headers, bodies, err := chipPackets(data, hdr.HeaderLen)
	if err != nil {
		return nil, err
	}
	c := &Cartridge{Kind: ActionReplay, EXROM: false, GAME: true}
	for i, ch := range headers {
		if int(ch.Bank) >= arBanks {
			continue
		}
		copy(c.arBanksData[ch.Bank][:], bodies[i])
	}
	return c, nil
}

// ReadROML returns the byte at offset (0-based from $8000) in the
// currently mapped low cartridge window.
func (c *Cartridge) ReadROML(offset uint16) uint8 {
	if c.Kind == ActionReplay {
		if c.arRAMEnable {
			return c.arRAM[offset&(arRAMSize-1)]
		}
		return c.arBanksData[c.arBank][offset&(arBankSize-1)]
	}
	if int(offset) < len(c.romL) {
		return c.romL[offset]
	}
	return 0
}

// ReadROMH returns the byte at offset (0-based from $A000, or $E000 in
// Ultimax mode) in the currently mapped high cartridge window.
func (c *Cartridge) ReadROMH(offset uint16) uint8 {
	if int(offset) < len(c.romH) {
		return c.romH[offset]
	}
	return 0
}

// WriteROML writes offset (0-based from $8000) into Action Replay's
// battery RAM when ram_enable is set; it is a no-op for every other
// Kind and for ActionReplay with RAM disabled, since ROM banks are
// read-only.
func (c *Cartridge) WriteROML(offset uint16, val uint8) {
	if c.Kind == ActionReplay && c.arRAMEnable {
		c.arRAM[offset&(arRAMSize-1)] = val
	}
}

// Action Replay control register bits at $DE00.
const (
	arBank0      = 0x01
	arBank1      = 0x02
	arExromBit   = 0x04
	arGameBit    = 0x08
	arRAMEnable  = 0x10
	arResetBit   = 0x20
	arFreezeClear = 0x40
)

// HandleControlWrite updates an Action Replay cartridge's bank select,
// EXROM/GAME lines, and RAM-enable latch from a $DE00 write. It is a
// no-op for every other Kind: Normal8K/16K/Ultimax have no control
// register.
func (c *Cartridge) HandleControlWrite(offset uint16, val uint8) {
	if c.Kind != ActionReplay || offset != 0 {
		return
	}
	c.arBank = int(val & (arBank0 | arBank1))
	c.EXROM = val&arExromBit != 0
	c.GAME = val&arGameBit != 0
	c.arRAMEnable = val&arRAMEnable != 0
	if val&arFreezeClear != 0 {
		c.arFrozen = false
	}
}

// Freeze latches the cartridge's freeze state, as triggered by an
// external freeze-button NMI source; ReadROML then serves from RAM if
// ram_enable is set.
func (c *Cartridge) Freeze() {
	if c.Kind == ActionReplay {
		c.arFrozen = true
	}
}

// Frozen reports whether the freeze button has latched and not yet been
// cleared by a control-register write with freeze_clear set.
func (c *Cartridge) Frozen() bool { return c.arFrozen }
