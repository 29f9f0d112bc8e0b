package cpu

// groupMode names the eight addressing-mode slots that the classic
// aaabbbcc opcode encoding cycles through for the ALU instruction group
// (ORA/AND/EOR/ADC/STA/LDA/CMP/SBC). Kept distinct from a general
// addrMode type since several other instructions (shifts, INC/DEC,
// LDX/STX) use an irregular subset of these and are tabulated by hand.
type groupMode int

const (
	gmIndX groupMode = iota // (zp,X)
	gmZP                    // zp
	gmImm                   // #immediate
	gmAbs                   // abs
	gmIndY                  // (zp),Y
	gmZPX                   // zp,X
	gmAbsY                  // abs,Y
	gmAbsX                  // abs,X
)

var loadCycles = [8]uint8{
	gmIndX: 6, gmZP: 3, gmImm: 2, gmAbs: 4,
	gmIndY: 5, gmZPX: 4, gmAbsY: 4, gmAbsX: 4,
}

var storeCycles = [8]uint8{
	gmIndX: 6, gmZP: 3, gmAbs: 4,
	gmIndY: 6, gmZPX: 4, gmAbsY: 5, gmAbsX: 5,
}

func (p *Chip) immediate() uint8 {
	v := p.read(p.PC)
	p.PC++
	return v
}

func (p *Chip) resolveZP() uint16 {
	v := p.read(p.PC)
	p.PC++
	return uint16(v)
}

// resolveZPIndexed implements zero-page,X and zero-page,Y. The index
// always wraps within page zero, never carrying into page one.
func (p *Chip) resolveZPIndexed(reg uint8) uint16 {
	v := p.read(p.PC)
	p.PC++
	return uint16(v + reg)
}

func (p *Chip) resolveAbs() uint16 {
	lo := p.read(p.PC)
	p.PC++
	hi := p.read(p.PC)
	p.PC++
	return uint16(hi)<<8 | uint16(lo)
}

// resolveAbsIndexed implements absolute,X and absolute,Y. crossed
// reports whether the addition changed the high byte, the condition
// that costs a reader (but never a writer) one extra cycle.
func (p *Chip) resolveAbsIndexed(reg uint8) (addr uint16, crossed bool) {
	base := p.resolveAbs()
	addr = base + uint16(reg)
	return addr, (addr & 0xFF00) != (base & 0xFF00)
}

// resolveIndirectX implements (zp,X): the pointer lookup itself wraps
// within zero page before being dereferenced as a full 16-bit address.
func (p *Chip) resolveIndirectX() uint16 {
	zp := p.read(p.PC)
	p.PC++
	ptr := zp + p.X
	lo := p.read(uint16(ptr))
	hi := p.read(uint16(ptr + 1))
	return uint16(hi)<<8 | uint16(lo)
}

// resolveIndirectY implements (zp),Y: the zero-page pointer lookup
// wraps in zero page, then Y is added to the resulting full address
// without any further wrap.
func (p *Chip) resolveIndirectY() (addr uint16, crossed bool) {
	zp := p.read(p.PC)
	p.PC++
	lo := p.read(uint16(zp))
	hi := p.read(uint16(zp + 1))
	base := uint16(hi)<<8 | uint16(lo)
	addr = base + uint16(p.Y)
	return addr, (addr & 0xFF00) != (base & 0xFF00)
}

// resolveIndirectZP implements the CMOS-only (zp) mode: like (zp,X) but
// with no index applied before the pointer dereference.
func (p *Chip) resolveIndirectZP() uint16 {
	zp := p.read(p.PC)
	p.PC++
	lo := p.read(uint16(zp))
	hi := p.read(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}

// resolveJMPIndirect implements JMP ($nnnn). On NMOS variants the high
// byte is read from (ptr & 0xFF00) | ((ptr+1) & 0xFF) — the classic
// page-wrap bug. On CMOS the pointer increments normally and the
// handler accounts one extra cycle for the fixup read.
func (p *Chip) resolveJMPIndirect(ptr uint16) uint16 {
	lo := p.read(ptr)
	var hiAddr uint16
	if p.cpuType.isNMOS() {
		hiAddr = (ptr & 0xFF00) | uint16(uint8(ptr&0xFF)+1)
	} else {
		hiAddr = ptr + 1
	}
	hi := p.read(hiAddr)
	return uint16(hi)<<8 | uint16(lo)
}

// loadOperand fetches the operand byte for one of the eight ALU group
// addressing modes, returning any page-cross penalty for read forms.
func (p *Chip) loadOperand(gm groupMode) (v uint8, extra uint8) {
	switch gm {
	case gmIndX:
		return p.read(p.resolveIndirectX()), 0
	case gmZP:
		return p.read(p.resolveZP()), 0
	case gmImm:
		return p.immediate(), 0
	case gmAbs:
		return p.read(p.resolveAbs()), 0
	case gmIndY:
		addr, crossed := p.resolveIndirectY()
		if crossed {
			extra = 1
		}
		return p.read(addr), extra
	case gmZPX:
		return p.read(p.resolveZPIndexed(p.X)), 0
	case gmAbsY:
		addr, crossed := p.resolveAbsIndexed(p.Y)
		if crossed {
			extra = 1
		}
		return p.read(addr), extra
	case gmAbsX:
		addr, crossed := p.resolveAbsIndexed(p.X)
		if crossed {
			extra = 1
		}
		return p.read(addr), extra
	}
	return 0, 0
}

// storeAddr resolves the effective address for a store-form instruction.
// Store addressing never carries a page-cross penalty (the worst case
// cycle count is always charged), which is why storeCycles has no extra
// field the way loadCycles implicitly does via loadOperand.
func (p *Chip) storeAddr(gm groupMode) uint16 {
	switch gm {
	case gmIndX:
		return p.resolveIndirectX()
	case gmZP:
		return p.resolveZP()
	case gmAbs:
		return p.resolveAbs()
	case gmIndY:
		addr, _ := p.resolveIndirectY()
		return addr
	case gmZPX:
		return p.resolveZPIndexed(p.X)
	case gmAbsY:
		addr, _ := p.resolveAbsIndexed(p.Y)
		return addr
	case gmAbsX:
		addr, _ := p.resolveAbsIndexed(p.X)
		return addr
	}
	return 0
}
