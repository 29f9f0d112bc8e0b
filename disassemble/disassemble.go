// Package disassemble implements a disassembler for the cpu package's
// NMOS/CMOS opcode tables, grounded on the teacher's Step(pc, mem) shape:
// read forward from pc, never follow control flow, return the text and
// how far to advance.
package disassemble

import (
	"fmt"

	"github.com/mjholtkamp/c64core/cpu"
	"github.com/mjholtkamp/c64core/memory"
)

// mode identifies how an opcode's operand bytes (if any) are formatted.
type mode int

const (
	modeImplied mode = iota
	modeAccumulator
	modeImmediate
	modeZP
	modeZPX
	modeZPY
	modeIndX
	modeIndY
	modeIndZP // CMOS (zp)
	modeAbs
	modeAbsX
	modeAbsY
	modeIndirect // JMP (abs)
	modeIndirectX
	modeRelative
)

func (m mode) length() int {
	switch m {
	case modeImplied, modeAccumulator:
		return 1
	case modeImmediate, modeZP, modeZPX, modeZPY, modeIndX, modeIndY, modeIndZP, modeRelative:
		return 2
	default:
		return 3
	}
}

// entry describes one opcode slot purely for disassembly purposes; it
// mirrors cpu's own table shape but carries a mode instead of a handler.
type entry struct {
	mnemonic string
	mode     mode
}

// aluGroupModes mirrors the bbb-to-addressing-mode mapping cpu.buildALUGroup
// uses internally, since disassemble has no access to cpu's unexported
// groupMode type or tables.
var aluGroupModes = [8]mode{modeIndX, modeZP, modeImmediate, modeAbs, modeIndY, modeZPX, modeAbsY, modeAbsX}
var aluNames = [8]string{"ORA", "AND", "EOR", "ADC", "STA", "LDA", "CMP", "SBC"}

func buildNMOSTable() [256]entry {
	var t [256]entry
	for aaa := uint8(0); aaa < 8; aaa++ {
		for bbb := uint8(0); bbb < 8; bbb++ {
			op := aaa<<5 | bbb<<2 | 0x01
			if aaa == 4 && bbb == 2 {
				continue // No STA #immediate.
			}
			t[op] = entry{aluNames[aaa], aluGroupModes[bbb]}
		}
	}

	shift := func(name string, zp, acc, abs, zpx, absx uint8) {
		t[zp] = entry{name, modeZP}
		t[acc] = entry{name, modeAccumulator}
		t[abs] = entry{name, modeAbs}
		t[zpx] = entry{name, modeZPX}
		t[absx] = entry{name, modeAbsX}
	}
	shift("ASL", 0x06, 0x0A, 0x0E, 0x16, 0x1E)
	shift("ROL", 0x26, 0x2A, 0x2E, 0x36, 0x3E)
	shift("LSR", 0x46, 0x4A, 0x4E, 0x56, 0x5E)
	shift("ROR", 0x66, 0x6A, 0x6E, 0x76, 0x7E)

	t[0x86] = entry{"STX", modeZP}
	t[0x96] = entry{"STX", modeZPY}
	t[0x8E] = entry{"STX", modeAbs}
	t[0xA2] = entry{"LDX", modeImmediate}
	t[0xA6] = entry{"LDX", modeZP}
	t[0xB6] = entry{"LDX", modeZPY}
	t[0xAE] = entry{"LDX", modeAbs}
	t[0xBE] = entry{"LDX", modeAbsY}

	inc := func(name string, zp, abs, zpx, absx uint8) {
		t[zp] = entry{name, modeZP}
		t[abs] = entry{name, modeAbs}
		t[zpx] = entry{name, modeZPX}
		t[absx] = entry{name, modeAbsX}
	}
	inc("DEC", 0xC6, 0xCE, 0xD6, 0xDE)
	inc("INC", 0xE6, 0xEE, 0xF6, 0xFE)

	t[0x24] = entry{"BIT", modeZP}
	t[0x2C] = entry{"BIT", modeAbs}
	t[0x4C] = entry{"JMP", modeAbs}
	t[0x6C] = entry{"JMP", modeIndirect}
	t[0x84] = entry{"STY", modeZP}
	t[0x94] = entry{"STY", modeZPX}
	t[0x8C] = entry{"STY", modeAbs}
	t[0xA0] = entry{"LDY", modeImmediate}
	t[0xA4] = entry{"LDY", modeZP}
	t[0xB4] = entry{"LDY", modeZPX}
	t[0xAC] = entry{"LDY", modeAbs}
	t[0xBC] = entry{"LDY", modeAbsX}
	t[0xC0] = entry{"CPY", modeImmediate}
	t[0xC4] = entry{"CPY", modeZP}
	t[0xCC] = entry{"CPY", modeAbs}
	t[0xE0] = entry{"CPX", modeImmediate}
	t[0xE4] = entry{"CPX", modeZP}
	t[0xEC] = entry{"CPX", modeAbs}
	t[0x00] = entry{"BRK", modeImplied}
	t[0x20] = entry{"JSR", modeAbs}
	t[0x40] = entry{"RTI", modeImplied}
	t[0x60] = entry{"RTS", modeImplied}

	branches := map[uint8]string{
		0x10: "BPL", 0x30: "BMI", 0x50: "BVC", 0x70: "BVS",
		0x90: "BCC", 0xB0: "BCS", 0xD0: "BNE", 0xF0: "BEQ",
	}
	for op, name := range branches {
		t[op] = entry{name, modeRelative}
	}

	single := map[uint8]string{
		0x08: "PHP", 0x28: "PLP", 0x48: "PHA", 0x68: "PLA",
		0x88: "DEY", 0xA8: "TAY", 0xC8: "INY", 0xE8: "INX",
		0x8A: "TXA", 0x9A: "TXS", 0xAA: "TAX", 0xBA: "TSX",
		0xCA: "DEX", 0xEA: "NOP", 0x18: "CLC", 0x38: "SEC",
		0x58: "CLI", 0x78: "SEI", 0x98: "TYA", 0xB8: "CLV",
		0xD8: "CLD", 0xF8: "SED",
	}
	for op, name := range single {
		t[op] = entry{name, modeImplied}
	}
	return t
}

func buildCMOSTable() [256]entry {
	t := buildNMOSTable()
	// This package's NMOS builder only assigns documented instructions
	// (aaa/bbb regulars + the hand lists above), so the NMOS illegal-opcode
	// family is already absent; layer the CMOS-only opcodes on top.
	t[0x80] = entry{"BRA", modeRelative}
	t[0x64] = entry{"STZ", modeZP}
	t[0x74] = entry{"STZ", modeZPX}
	t[0x9C] = entry{"STZ", modeAbs}
	t[0x9E] = entry{"STZ", modeAbsX}
	t[0xDA] = entry{"PHX", modeImplied}
	t[0x5A] = entry{"PHY", modeImplied}
	t[0xFA] = entry{"PLX", modeImplied}
	t[0x7A] = entry{"PLY", modeImplied}
	t[0x1A] = entry{"INC", modeAccumulator}
	t[0x3A] = entry{"DEC", modeAccumulator}
	t[0x04] = entry{"TSB", modeZP}
	t[0x0C] = entry{"TSB", modeAbs}
	t[0x14] = entry{"TRB", modeZP}
	t[0x1C] = entry{"TRB", modeAbs}
	t[0x89] = entry{"BIT", modeImmediate}
	t[0x34] = entry{"BIT", modeZPX}
	t[0x3C] = entry{"BIT", modeAbsX}
	t[0x7C] = entry{"JMP", modeIndirectX}
	t[0x12] = entry{"ORA", modeIndZP}
	t[0x32] = entry{"AND", modeIndZP}
	t[0x52] = entry{"EOR", modeIndZP}
	t[0x72] = entry{"ADC", modeIndZP}
	t[0x92] = entry{"STA", modeIndZP}
	t[0xB2] = entry{"LDA", modeIndZP}
	t[0xD2] = entry{"CMP", modeIndZP}
	t[0xF2] = entry{"SBC", modeIndZP}
	return t
}

var nmosTable = buildNMOSTable()
var cmosTable = buildCMOSTable()

// Step disassembles the instruction at pc and returns its text plus how
// many bytes forward the PC should move to reach the next instruction.
// It always reads up to two bytes past pc, so pc+2 must be a valid
// address even for single-byte opcodes. variant selects which of the
// NMOS/CMOS opcode tables to read mnemonics/modes from; every slot with
// no entry in that table (NMOS unofficial opcodes included) disassembles
// as a one-byte "NOP" rather than failing.
func Step(pc uint16, r memory.Bank, variant cpu.CPUType) (string, int) {
	op := r.Read(pc)
	b1 := r.Read(pc + 1)
	b2 := r.Read(pc + 2)

	table := &nmosTable
	if variant == cpu.CPU_CMOS_65C02 {
		table = &cmosTable
	}
	e := table[op]
	if e.mnemonic == "" {
		return fmt.Sprintf("%.2X        NOP", op), 1
	}

	switch e.mode {
	case modeImplied:
		return fmt.Sprintf("%.2X        %s", op, e.mnemonic), 1
	case modeAccumulator:
		return fmt.Sprintf("%.2X        %s A", op, e.mnemonic), 1
	case modeImmediate:
		return fmt.Sprintf("%.2X %.2X     %s #$%.2X", op, b1, e.mnemonic, b1), 2
	case modeZP:
		return fmt.Sprintf("%.2X %.2X     %s $%.2X", op, b1, e.mnemonic, b1), 2
	case modeZPX:
		return fmt.Sprintf("%.2X %.2X     %s $%.2X,X", op, b1, e.mnemonic, b1), 2
	case modeZPY:
		return fmt.Sprintf("%.2X %.2X     %s $%.2X,Y", op, b1, e.mnemonic, b1), 2
	case modeIndX:
		return fmt.Sprintf("%.2X %.2X     %s ($%.2X,X)", op, b1, e.mnemonic, b1), 2
	case modeIndY:
		return fmt.Sprintf("%.2X %.2X     %s ($%.2X),Y", op, b1, e.mnemonic, b1), 2
	case modeIndZP:
		return fmt.Sprintf("%.2X %.2X     %s ($%.2X)", op, b1, e.mnemonic, b1), 2
	case modeRelative:
		target := uint16(int32(pc) + 2 + int32(int8(b1)))
		return fmt.Sprintf("%.2X %.2X     %s $%.4X", op, b1, e.mnemonic, target), 2
	case modeAbs:
		return fmt.Sprintf("%.2X %.2X %.2X  %s $%.4X", op, b1, b2, e.mnemonic, uint16(b2)<<8|uint16(b1)), 3
	case modeAbsX:
		return fmt.Sprintf("%.2X %.2X %.2X  %s $%.4X,X", op, b1, b2, e.mnemonic, uint16(b2)<<8|uint16(b1)), 3
	case modeAbsY:
		return fmt.Sprintf("%.2X %.2X %.2X  %s $%.4X,Y", op, b1, b2, e.mnemonic, uint16(b2)<<8|uint16(b1)), 3
	case modeIndirect:
		return fmt.Sprintf("%.2X %.2X %.2X  %s ($%.4X)", op, b1, b2, e.mnemonic, uint16(b2)<<8|uint16(b1)), 3
	case modeIndirectX:
		return fmt.Sprintf("%.2X %.2X %.2X  %s ($%.4X,X)", op, b1, b2, e.mnemonic, uint16(b2)<<8|uint16(b1)), 3
	default:
		return fmt.Sprintf("%.2X        ???", op), 1
	}
}
