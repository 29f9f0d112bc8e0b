package cpu

// Read-modify-write ALU primitives used by the shift/rotate and
// increment/decrement instruction families. Each returns the new value
// and sets flags as a side effect; the caller handles the memory
// read/write (including the NMOS dummy-write-of-the-old-value quirk).

func (p *Chip) doASL(v uint8) uint8 {
	p.carryCheck(v&0x80 != 0)
	r := v << 1
	p.nzCheck(r)
	return r
}

func (p *Chip) doROL(v uint8) uint8 {
	c := p.P & P_CARRY
	p.carryCheck(v&0x80 != 0)
	r := (v << 1) | c
	p.nzCheck(r)
	return r
}

func (p *Chip) doLSR(v uint8) uint8 {
	p.carryCheck(v&0x01 != 0)
	r := v >> 1
	p.nzCheck(r)
	return r
}

func (p *Chip) doROR(v uint8) uint8 {
	c := (p.P & P_CARRY) << 7
	p.carryCheck(v&0x01 != 0)
	r := (v >> 1) | c
	p.nzCheck(r)
	return r
}

func (p *Chip) doINC(v uint8) uint8 {
	r := v + 1
	p.nzCheck(r)
	return r
}

func (p *Chip) doDEC(v uint8) uint8 {
	r := v - 1
	p.nzCheck(r)
	return r
}

// rmwEntry builds a memory read-modify-write table entry. On NMOS
// variants the bus sees a spurious write of the original value before
// the real write lands, matching real hardware's extra tick; CMOS
// omits it.
func rmwEntry(name string, gm groupMode, cycles uint8, op func(p *Chip, v uint8) uint8) opEntry {
	return opEntry{mnemonic: name, exec: func(p *Chip) uint8 {
		addr := p.storeAddr(gm)
		old := p.read(addr)
		nv := op(p, old)
		if p.cpuType.isNMOS() {
			p.write(addr, old)
		}
		p.write(addr, nv)
		return cycles
	}}
}

// accEntry builds an accumulator-mode entry (ASL A / ROL A / LSR A / ROR A).
func accEntry(name string, op func(p *Chip, v uint8) uint8) opEntry {
	return opEntry{mnemonic: name, exec: func(p *Chip) uint8 {
		p.A = op(p, p.A)
		return 2
	}}
}

func buildRMWGroup(t *[256]opEntry) {
	// ASL
	t[0x06] = rmwEntry("ASL", gmZP, 5, (*Chip).doASL)
	t[0x0A] = accEntry("ASL", (*Chip).doASL)
	t[0x0E] = rmwEntry("ASL", gmAbs, 6, (*Chip).doASL)
	t[0x16] = rmwEntry("ASL", gmZPX, 6, (*Chip).doASL)
	t[0x1E] = rmwEntry("ASL", gmAbsX, 7, (*Chip).doASL)

	// ROL
	t[0x26] = rmwEntry("ROL", gmZP, 5, (*Chip).doROL)
	t[0x2A] = accEntry("ROL", (*Chip).doROL)
	t[0x2E] = rmwEntry("ROL", gmAbs, 6, (*Chip).doROL)
	t[0x36] = rmwEntry("ROL", gmZPX, 6, (*Chip).doROL)
	t[0x3E] = rmwEntry("ROL", gmAbsX, 7, (*Chip).doROL)

	// LSR
	t[0x46] = rmwEntry("LSR", gmZP, 5, (*Chip).doLSR)
	t[0x4A] = accEntry("LSR", (*Chip).doLSR)
	t[0x4E] = rmwEntry("LSR", gmAbs, 6, (*Chip).doLSR)
	t[0x56] = rmwEntry("LSR", gmZPX, 6, (*Chip).doLSR)
	t[0x5E] = rmwEntry("LSR", gmAbsX, 7, (*Chip).doLSR)

	// ROR
	t[0x66] = rmwEntry("ROR", gmZP, 5, (*Chip).doROR)
	t[0x6A] = accEntry("ROR", (*Chip).doROR)
	t[0x6E] = rmwEntry("ROR", gmAbs, 6, (*Chip).doROR)
	t[0x76] = rmwEntry("ROR", gmZPX, 6, (*Chip).doROR)
	t[0x7E] = rmwEntry("ROR", gmAbsX, 7, (*Chip).doROR)

	// STX (zp,X slot is actually zp,Y for this instruction)
	t[0x86] = storeEntry("STX", gmZP, func(p *Chip) uint8 { return p.X })
	t[0x96] = opEntry{mnemonic: "STX", exec: func(p *Chip) uint8 {
		p.write(p.resolveZPIndexed(p.Y), p.X)
		return 4
	}}
	t[0x8E] = storeEntry("STX", gmAbs, func(p *Chip) uint8 { return p.X })

	// LDX (immediate, zp, zp,Y, abs, abs,Y)
	t[0xA2] = opEntry{mnemonic: "LDX", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.X, p.immediate())
		return 2
	}}
	t[0xA6] = opEntry{mnemonic: "LDX", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.X, p.read(p.resolveZP()))
		return 3
	}}
	t[0xB6] = opEntry{mnemonic: "LDX", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.X, p.read(p.resolveZPIndexed(p.Y)))
		return 4
	}}
	t[0xAE] = opEntry{mnemonic: "LDX", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.X, p.read(p.resolveAbs()))
		return 4
	}}
	t[0xBE] = opEntry{mnemonic: "LDX", exec: func(p *Chip) uint8 {
		addr, crossed := p.resolveAbsIndexed(p.Y)
		p.loadRegister(&p.X, p.read(addr))
		if crossed {
			return 5
		}
		return 4
	}}

	// DEC
	t[0xC6] = rmwEntry("DEC", gmZP, 5, (*Chip).doDEC)
	t[0xCE] = rmwEntry("DEC", gmAbs, 6, (*Chip).doDEC)
	t[0xD6] = rmwEntry("DEC", gmZPX, 6, (*Chip).doDEC)
	t[0xDE] = rmwEntry("DEC", gmAbsX, 7, (*Chip).doDEC)

	// INC
	t[0xE6] = rmwEntry("INC", gmZP, 5, (*Chip).doINC)
	t[0xEE] = rmwEntry("INC", gmAbs, 6, (*Chip).doINC)
	t[0xF6] = rmwEntry("INC", gmZPX, 6, (*Chip).doINC)
	t[0xFE] = rmwEntry("INC", gmAbsX, 7, (*Chip).doINC)
}
