package cpu

// ALU operations shared by the addressing-mode table in table.go. These
// mirror the teacher's iADC/iSBC BCD fixup arithmetic exactly, generalized
// from the 6502/6502A/6502C-only Ricoh exception (out of this module's
// four-variant scope) to the plain NMOS-vs-CMOS split spec.md defines:
// in BCD mode NMOS leaves N/Z undefined-but-deterministic (ADC takes N
// from the sum before the high-nibble fixup and Z from the binary sum,
// SBC takes both from the binary result), CMOS sets them from the
// decimal result.

func (p *Chip) aluORA(v uint8) { p.loadRegister(&p.A, p.A|v) }
func (p *Chip) aluAND(v uint8) { p.loadRegister(&p.A, p.A&v) }
func (p *Chip) aluEOR(v uint8) { p.loadRegister(&p.A, p.A^v) }

func (p *Chip) aluLDA(v uint8) { p.loadRegister(&p.A, v) }

// compare implements CMP/CPX/CPY: reg - v, flags only, no store.
func (p *Chip) compare(reg, v uint8) {
	p.carryCheck(reg >= v)
	p.nzCheck(reg - v)
}

func (p *Chip) aluCMP(v uint8) { p.compare(p.A, v) }

// aluADC implements ADC including BCD mode. Grounded on the teacher's
// cpu.iADC: low-nibble fixup, high-nibble fixup, overflow computed from
// the sum before the high-nibble fixup, carry from the fixed-up sum.
func (p *Chip) aluADC(v uint8) {
	carry := p.P & P_CARRY
	if p.P&P_DECIMAL != 0 {
		aL := (p.A & 0x0F) + (v & 0x0F) + carry
		if aL >= 0x0A {
			aL = ((aL + 0x06) & 0x0F) + 0x10
		}
		sum := uint16(p.A&0xF0) + uint16(v&0xF0) + uint16(aL)
		if sum >= 0xA0 {
			sum += 0x60
		}
		res := uint8(sum & 0xFF)
		seq := (p.A & 0xF0) + (v & 0xF0) + aL
		bin := p.A + v + carry
		p.overflowCheck((p.A^seq)&(v^seq)&0x80 != 0)
		p.carryCheck(sum >= 0x100)
		if p.cpuType == CPU_CMOS_65C02 {
			p.nzCheck(res)
		} else {
			p.negativeCheck(seq)
			p.zeroCheck(bin)
		}
		p.A = res
		return
	}
	sum := uint16(p.A) + uint16(v) + uint16(carry)
	res := uint8(sum)
	p.overflowCheck((p.A^res)&(v^res)&0x80 != 0)
	p.carryCheck(sum >= 0x100)
	p.loadRegister(&p.A, res)
}

// aluSBC implements SBC including BCD mode, grounded on the teacher's
// cpu.iSBC. Binary mode is delegated to aluADC with the operand
// one's-complemented, same as real hardware.
func (p *Chip) aluSBC(v uint8) {
	carry := p.P & P_CARRY
	if p.P&P_DECIMAL != 0 {
		aL := int16(p.A&0x0F) - int16(v&0x0F) + int16(carry) - 1
		if aL < 0 {
			aL = ((aL - 0x06) & 0x0F) - 0x10
		}
		sum := int16(p.A&0xF0) - int16(v&0xF0) + aL
		if sum < 0 {
			sum -= 0x60
		}
		res := uint8(sum & 0xFF)

		notV := ^v
		b := p.A + notV + carry
		binSum := uint16(p.A) + uint16(notV) + uint16(carry)
		p.overflowCheck((p.A^b)&(notV^b)&0x80 != 0)
		p.carryCheck(binSum >= 0x100)
		if p.cpuType == CPU_CMOS_65C02 {
			p.nzCheck(res)
		} else {
			p.negativeCheck(b)
			p.zeroCheck(b)
		}
		p.A = res
		return
	}
	p.aluADC(^v)
}

// aluEntry builds a table entry for one of the eight regular ALU
// addressing-mode slots. CMOS ADC/SBC in decimal mode cost one extra
// cycle, accounted here since this is the one seam every ALU op passes
// through.
func aluEntry(name string, gm groupMode, op func(p *Chip, v uint8)) opEntry {
	base := loadCycles[gm]
	return opEntry{mnemonic: name, exec: func(p *Chip) uint8 {
		v, extra := p.loadOperand(gm)
		op(p, v)
		if (name == "ADC" || name == "SBC") && p.cpuType == CPU_CMOS_65C02 && p.P&P_DECIMAL != 0 {
			extra++
		}
		return base + extra
	}}
}

// storeEntry builds a table entry for a store-form instruction (STA) at
// one of the seven addressing modes that support it (no immediate).
func storeEntry(name string, gm groupMode, reg func(p *Chip) uint8) opEntry {
	base := storeCycles[gm]
	return opEntry{mnemonic: name, exec: func(p *Chip) uint8 {
		addr := p.storeAddr(gm)
		p.write(addr, reg(p))
		return base
	}}
}
