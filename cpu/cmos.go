package cpu

// applyCMOSOverlay adds the 65C02 extensions on top of the shared
// instruction groups: BRA, STZ, PHX/PHY/PLX/PLY, TSB/TRB, the extra
// BIT addressing modes, accumulator INC/DEC, JMP (abs,X), and the (zp)
// indirect addressing mode for the ALU group. RMB/SMB/BBR/BBS (the
// bit-test-and-branch family) are intentionally not implemented — see
// DESIGN.md for why.
func applyCMOSOverlay(t *[256]opEntry) {
	// BRA: unconditional relative branch, always 3 cycles (4 across a
	// page boundary), never 2 — there is no "not taken" case.
	t[0x80] = opEntry{mnemonic: "BRA", exec: func(p *Chip) uint8 {
		disp := int8(p.immediate())
		base := p.PC
		target := uint16(int32(base) + int32(disp))
		p.PC = target
		if (target & 0xFF00) != (base & 0xFF00) {
			return 4
		}
		return 3
	}}

	// STZ: store zero.
	t[0x64] = storeEntry("STZ", gmZP, func(p *Chip) uint8 { return 0 })
	t[0x74] = opEntry{mnemonic: "STZ", exec: func(p *Chip) uint8 {
		p.write(p.resolveZPIndexed(p.X), 0)
		return 4
	}}
	t[0x9C] = storeEntry("STZ", gmAbs, func(p *Chip) uint8 { return 0 })
	t[0x9E] = opEntry{mnemonic: "STZ", exec: func(p *Chip) uint8 {
		addr, _ := p.resolveAbsIndexed(p.X)
		p.write(addr, 0)
		return 5
	}}

	// PHX/PHY/PLX/PLY: stack push/pull for X and Y, same shape as PHA/PLA.
	t[0xDA] = opEntry{mnemonic: "PHX", exec: func(p *Chip) uint8 { p.pushStack(p.X); return 3 }}
	t[0x5A] = opEntry{mnemonic: "PHY", exec: func(p *Chip) uint8 { p.pushStack(p.Y); return 3 }}
	t[0xFA] = opEntry{mnemonic: "PLX", exec: func(p *Chip) uint8 { p.loadRegister(&p.X, p.popStack()); return 4 }}
	t[0x7A] = opEntry{mnemonic: "PLY", exec: func(p *Chip) uint8 { p.loadRegister(&p.Y, p.popStack()); return 4 }}

	// INC/DEC A: the 6502 had no accumulator form; CMOS adds it reusing
	// the same doINC/doDEC primitives as the memory forms.
	t[0x1A] = accEntry("INC", (*Chip).doINC)
	t[0x3A] = accEntry("DEC", (*Chip).doDEC)

	// TSB/TRB: test-and-set-bits / test-and-reset-bits. Z is set from
	// A&memory (as BIT does) but N/V are left untouched; memory is then
	// OR'd or AND-NOT'd with A.
	tsbTrb := func(name string, set bool, op uint8, gm groupMode, cyc uint8) {
		t[op] = opEntry{mnemonic: name, exec: func(p *Chip) uint8 {
			addr := p.storeAddr(gm)
			v := p.read(addr)
			p.zeroCheck(v & p.A)
			if set {
				v |= p.A
			} else {
				v &^= p.A
			}
			p.write(addr, v)
			return cyc
		}}
	}
	tsbTrb("TSB", true, 0x04, gmZP, 5)
	tsbTrb("TSB", true, 0x0C, gmAbs, 6)
	tsbTrb("TRB", false, 0x14, gmZP, 5)
	tsbTrb("TRB", false, 0x1C, gmAbs, 6)

	// BIT gains immediate, zp,X and abs,X forms on CMOS. The immediate
	// form (like the CMP family) only ever affects Z, never N/V, since
	// there is no memory operand to read N/V from.
	t[0x89] = opEntry{mnemonic: "BIT", exec: func(p *Chip) uint8 {
		p.zeroCheck(p.A & p.immediate())
		return 2
	}}
	t[0x34] = opEntry{mnemonic: "BIT", exec: func(p *Chip) uint8 {
		p.bit(p.read(p.resolveZPIndexed(p.X)))
		return 4
	}}
	t[0x3C] = opEntry{mnemonic: "BIT", exec: func(p *Chip) uint8 {
		addr, crossed := p.resolveAbsIndexed(p.X)
		p.bit(p.read(addr))
		if crossed {
			return 5
		}
		return 4
	}}

	// JMP (abs,X): CMOS-only indexed-indirect jump.
	t[0x7C] = opEntry{mnemonic: "JMP", exec: func(p *Chip) uint8 {
		ptr := p.resolveAbs() + uint16(p.X)
		lo := p.read(ptr)
		hi := p.read(ptr + 1)
		p.PC = uint16(hi)<<8 | uint16(lo)
		return 6
	}}

	// (zp) indirect: the CMOS-only non-indexed indirect addressing mode,
	// added to every instruction in the ALU group that has room for it
	// (the opcode slot that would otherwise be (zp,X)'s low-nibble-2
	// sibling, 0x_2 for each row — NMOS leaves these as illegal/NOP).
	zpIndEntry := func(name string, op uint8, aluOp func(p *Chip, v uint8)) {
		t[op] = opEntry{mnemonic: name, exec: func(p *Chip) uint8 {
			aluOp(p, p.read(p.resolveIndirectZP()))
			if (name == "ADC" || name == "SBC") && p.P&P_DECIMAL != 0 {
				return 6
			}
			return 5
		}}
	}
	zpIndEntry("ORA", 0x12, (*Chip).aluORA)
	zpIndEntry("AND", 0x32, (*Chip).aluAND)
	zpIndEntry("EOR", 0x52, (*Chip).aluEOR)
	zpIndEntry("ADC", 0x72, (*Chip).aluADC)
	t[0x92] = opEntry{mnemonic: "STA", exec: func(p *Chip) uint8 {
		p.write(p.resolveIndirectZP(), p.A)
		return 5
	}}
	zpIndEntry("LDA", 0xB2, (*Chip).aluLDA)
	zpIndEntry("CMP", 0xD2, func(p *Chip, v uint8) { p.compare(p.A, v) })
	zpIndEntry("SBC", 0xF2, (*Chip).aluSBC)
}
