package cpu

// buildControlGroup fills BIT, JMP (absolute and indirect), STY, LDY,
// CPX, CPY, BRK, JSR, RTI and RTS — the irregular cc=00-column
// instructions plus the three subroutine/interrupt-return opcodes.
func buildControlGroup(t *[256]opEntry) {
	t[0x24] = opEntry{mnemonic: "BIT", exec: func(p *Chip) uint8 {
		p.bit(p.read(p.resolveZP()))
		return 3
	}}
	t[0x2C] = opEntry{mnemonic: "BIT", exec: func(p *Chip) uint8 {
		p.bit(p.read(p.resolveAbs()))
		return 4
	}}

	t[0x4C] = opEntry{mnemonic: "JMP", exec: func(p *Chip) uint8 {
		p.PC = p.resolveAbs()
		return 3
	}}
	t[0x6C] = opEntry{mnemonic: "JMP", exec: func(p *Chip) uint8 {
		ptr := p.resolveAbs()
		p.PC = p.resolveJMPIndirect(ptr)
		if p.cpuType == CPU_CMOS_65C02 {
			return 6
		}
		return 5
	}}

	t[0x84] = storeEntry("STY", gmZP, func(p *Chip) uint8 { return p.Y })
	t[0x94] = opEntry{mnemonic: "STY", exec: func(p *Chip) uint8 {
		p.write(p.resolveZPIndexed(p.X), p.Y)
		return 4
	}}
	t[0x8C] = storeEntry("STY", gmAbs, func(p *Chip) uint8 { return p.Y })

	t[0xA0] = opEntry{mnemonic: "LDY", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.Y, p.immediate())
		return 2
	}}
	t[0xA4] = opEntry{mnemonic: "LDY", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.Y, p.read(p.resolveZP()))
		return 3
	}}
	t[0xB4] = opEntry{mnemonic: "LDY", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.Y, p.read(p.resolveZPIndexed(p.X)))
		return 4
	}}
	t[0xAC] = opEntry{mnemonic: "LDY", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.Y, p.read(p.resolveAbs()))
		return 4
	}}
	t[0xBC] = opEntry{mnemonic: "LDY", exec: func(p *Chip) uint8 {
		addr, crossed := p.resolveAbsIndexed(p.X)
		p.loadRegister(&p.Y, p.read(addr))
		if crossed {
			return 5
		}
		return 4
	}}

	t[0xC0] = opEntry{mnemonic: "CPY", exec: func(p *Chip) uint8 { p.compare(p.Y, p.immediate()); return 2 }}
	t[0xC4] = opEntry{mnemonic: "CPY", exec: func(p *Chip) uint8 { p.compare(p.Y, p.read(p.resolveZP())); return 3 }}
	t[0xCC] = opEntry{mnemonic: "CPY", exec: func(p *Chip) uint8 { p.compare(p.Y, p.read(p.resolveAbs())); return 4 }}

	t[0xE0] = opEntry{mnemonic: "CPX", exec: func(p *Chip) uint8 { p.compare(p.X, p.immediate()); return 2 }}
	t[0xE4] = opEntry{mnemonic: "CPX", exec: func(p *Chip) uint8 { p.compare(p.X, p.read(p.resolveZP())); return 3 }}
	t[0xEC] = opEntry{mnemonic: "CPX", exec: func(p *Chip) uint8 { p.compare(p.X, p.read(p.resolveAbs())); return 4 }}

	t[0x00] = opEntry{mnemonic: "BRK", exec: func(p *Chip) uint8 {
		return p.runInterrupt(IRQ_VECTOR, true)
	}}
	t[0x20] = opEntry{mnemonic: "JSR", exec: func(p *Chip) uint8 {
		target := p.resolveAbs()
		ret := p.PC - 1
		p.pushStack(uint8(ret >> 8))
		p.pushStack(uint8(ret & 0xFF))
		p.PC = target
		return 6
	}}
	t[0x40] = opEntry{mnemonic: "RTI", exec: func(p *Chip) uint8 {
		p.P = p.popStack()
		p.P |= P_S1
		p.P &^= P_B
		lo := p.popStack()
		hi := p.popStack()
		p.PC = uint16(hi)<<8 | uint16(lo)
		return 6
	}}
	t[0x60] = opEntry{mnemonic: "RTS", exec: func(p *Chip) uint8 {
		lo := p.popStack()
		hi := p.popStack()
		p.PC = (uint16(hi)<<8 | uint16(lo)) + 1
		return 6
	}}
}

// bit implements the BIT instruction: Z from A&v, N/V copied straight
// from bits 7/6 of the operand (not the AND result).
func (p *Chip) bit(v uint8) {
	p.zeroCheck(p.A & v)
	p.negativeCheck(v)
	p.overflowCheck(v&P_OVERFLOW != 0)
}
