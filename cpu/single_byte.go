package cpu

// buildSingleByte fills every implied-mode, no-operand opcode: the stack
// push/pull instructions (3 cycles to push, 4 to pull) and the 2-cycle
// register transfers, flag set/clear, and the
// increment/decrement register pair not already covered by the RMW
// group (those operate on A/X/Y directly, not on memory).
func buildSingleByte(t *[256]opEntry) {
	reg := func(name string, op uint8, fn func(p *Chip)) {
		t[op] = opEntry{mnemonic: name, exec: func(p *Chip) uint8 {
			fn(p)
			return 2
		}}
	}

	t[0x08] = opEntry{mnemonic: "PHP", exec: func(p *Chip) uint8 {
		p.pushStack(p.P | P_S1 | P_B)
		return 3
	}}
	t[0x28] = opEntry{mnemonic: "PLP", exec: func(p *Chip) uint8 {
		p.P = p.popStack()
		p.P |= P_S1
		p.P &^= P_B
		return 4
	}}
	t[0x48] = opEntry{mnemonic: "PHA", exec: func(p *Chip) uint8 {
		p.pushStack(p.A)
		return 3
	}}
	t[0x68] = opEntry{mnemonic: "PLA", exec: func(p *Chip) uint8 {
		p.loadRegister(&p.A, p.popStack())
		return 4
	}}

	reg("DEY", 0x88, func(p *Chip) { p.loadRegister(&p.Y, p.Y-1) })
	reg("TAY", 0xA8, func(p *Chip) { p.loadRegister(&p.Y, p.A) })
	reg("INY", 0xC8, func(p *Chip) { p.loadRegister(&p.Y, p.Y+1) })
	reg("INX", 0xE8, func(p *Chip) { p.loadRegister(&p.X, p.X+1) })

	reg("TXA", 0x8A, func(p *Chip) { p.loadRegister(&p.A, p.X) })
	reg("TXS", 0x9A, func(p *Chip) { p.S = p.X }) // TXS never touches flags.
	reg("TAX", 0xAA, func(p *Chip) { p.loadRegister(&p.X, p.A) })
	reg("TSX", 0xBA, func(p *Chip) { p.loadRegister(&p.X, p.S) })
	reg("DEX", 0xCA, func(p *Chip) { p.loadRegister(&p.X, p.X-1) })
	reg("NOP", 0xEA, func(p *Chip) {})

	reg("CLC", 0x18, func(p *Chip) { p.carryCheck(false) })
	reg("SEC", 0x38, func(p *Chip) { p.carryCheck(true) })
	reg("CLI", 0x58, func(p *Chip) { p.P &^= P_INTERRUPT })
	reg("SEI", 0x78, func(p *Chip) { p.P |= P_INTERRUPT })
	reg("TYA", 0x98, func(p *Chip) { p.loadRegister(&p.A, p.Y) })
	reg("CLV", 0xB8, func(p *Chip) { p.overflowCheck(false) })
	reg("CLD", 0xD8, func(p *Chip) { p.P &^= P_DECIMAL })
	reg("SED", 0xF8, func(p *Chip) { p.P |= P_DECIMAL })
}
