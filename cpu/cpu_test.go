package cpu

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/mjholtkamp/c64core/errs"
	"github.com/mjholtkamp/c64core/memory"
)

type flatMemory struct {
	addr       [65536]uint8
	databusVal uint8
}

func (r *flatMemory) Read(addr uint16) uint8 {
	r.databusVal = r.addr[addr]
	return r.databusVal
}
func (r *flatMemory) Write(addr uint16, val uint8) {
	r.databusVal = val
	r.addr[addr] = val
}
func (r *flatMemory) PowerOn()            {}
func (r *flatMemory) Parent() memory.Bank { return nil }
func (r *flatMemory) DatabusVal() uint8   { return r.databusVal }

func newTestChip(t *testing.T, variant CPUType) (*Chip, *flatMemory) {
	t.Helper()
	m := &flatMemory{}
	c, err := Init(&ChipDef{Cpu: variant, Ram: m})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return c, m
}

func TestReset(t *testing.T) {
	m := &flatMemory{}
	m.addr[RESET_VECTOR] = 0x00
	m.addr[RESET_VECTOR+1] = 0x80
	c, err := Init(&ChipDef{Cpu: CPU_NMOS_6502, Ram: m})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if c.PC != 0x8000 {
		t.Errorf("PC = %#x, want 0x8000", c.PC)
	}
	if c.S != 0xFD {
		t.Errorf("S = %#x, want 0xFD", c.S)
	}
	if c.P != P_S1|P_INTERRUPT {
		t.Errorf("P = %#x, want %#x", c.P, P_S1|P_INTERRUPT)
	}
}

func TestInitRejectsInvalidVariantAndNilRAM(t *testing.T) {
	if _, err := Init(&ChipDef{Cpu: CPU_MAX, Ram: &flatMemory{}}); err == nil {
		t.Error("Init with CPU_MAX = nil error, want error")
	}
	if _, err := Init(&ChipDef{Cpu: CPU_NMOS_6502, Ram: nil}); err == nil {
		t.Error("Init with nil Ram = nil error, want error")
	}
}

// aluCase exercises one opcode/addressing-mode combination end to end:
// load a small program, run exactly one Step, and assert the resulting
// register/flag/cycle state. Mismatches dump the full Chip via spew for
// quick visual diffing against the expected fixture.
type aluCase struct {
	name    string
	variant CPUType
	setup   func(c *Chip, m *flatMemory)
	program []uint8
	wantA   uint8
	wantP   uint8
	wantCyc uint8
}

func TestALUGroupOpcodes(t *testing.T) {
	tests := []aluCase{
		{
			name:    "ORA immediate",
			variant: CPU_NMOS_6502,
			setup:   func(c *Chip, m *flatMemory) { c.A = 0x0F },
			program: []uint8{0x09, 0xF0}, // ORA #$F0
			wantA:   0xFF, wantP: P_S1 | P_INTERRUPT | P_NEGATIVE, wantCyc: 2,
		},
		{
			name:    "AND zero page",
			variant: CPU_NMOS_6502,
			setup: func(c *Chip, m *flatMemory) {
				c.A = 0xFF
				m.addr[0x0010] = 0x0F
			},
			program: []uint8{0x25, 0x10}, // AND $10
			wantA:   0x0F, wantP: P_S1 | P_INTERRUPT, wantCyc: 3,
		},
		{
			name:    "EOR immediate produces zero",
			variant: CPU_NMOS_6502,
			setup:   func(c *Chip, m *flatMemory) { c.A = 0x55 },
			program: []uint8{0x49, 0x55}, // EOR #$55
			wantA:   0x00, wantP: P_S1 | P_INTERRUPT | P_ZERO, wantCyc: 2,
		},
		{
			name:    "LDA absolute,X with page cross",
			variant: CPU_NMOS_6502,
			setup: func(c *Chip, m *flatMemory) {
				c.X = 0xFF
				m.addr[0x2100] = 0x99 // 0x2001 + 0xFF == 0x2100
			},
			program: []uint8{0xBD, 0x01, 0x20}, // LDA $2001,X
			wantA:   0x99, wantP: P_S1 | P_INTERRUPT | P_NEGATIVE, wantCyc: 5,
		},
		{
			name:    "CMP equal sets Z and C",
			variant: CPU_NMOS_6502,
			setup:   func(c *Chip, m *flatMemory) { c.A = 0x40 },
			program: []uint8{0xC9, 0x40}, // CMP #$40
			wantA:   0x40, wantP: P_S1 | P_INTERRUPT | P_ZERO | P_CARRY, wantCyc: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, m := newTestChip(t, tc.variant)
			c.PC = 0x2000
			for i, b := range tc.program {
				m.addr[0x2000+uint16(i)] = b
			}
			tc.setup(c, m)
			cycles, err := c.Step()
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			if cycles != tc.wantCyc {
				t.Errorf("cycles = %d, want %d", cycles, tc.wantCyc)
			}
			if c.A != tc.wantA || c.P != tc.wantP {
				t.Errorf("got A=%#x P=%#x, want A=%#x P=%#x\nstate: %s",
					c.A, c.P, tc.wantA, tc.wantP, spew.Sdump(c))
			}
		})
	}
}

func TestADCBinaryAndBCD(t *testing.T) {
	for _, tc := range []struct {
		name       string
		variant    CPUType
		a, m, p    uint8
		wantA      uint8
		wantCarry  bool
		wantCycles uint8
	}{
		{"binary no carry", CPU_NMOS_6502, 0x05, 0x03, 0, 0x08, false, 2},
		{"binary with carry out", CPU_NMOS_6502, 0xFF, 0x01, 0, 0x00, true, 2},
		{"BCD 0x09+0x01 NMOS", CPU_NMOS_6502, 0x09, 0x01, P_DECIMAL, 0x10, false, 2},
		{"BCD 0x09+0x01 CMOS extra cycle", CPU_CMOS_65C02, 0x09, 0x01, P_DECIMAL, 0x10, false, 3},
		{"BCD 0x99+0x01 carries", CPU_NMOS_6502, 0x99, 0x01, P_DECIMAL, 0x00, true, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, m := newTestChip(t, tc.variant)
			c.PC = 0x3000
			m.addr[0x3000] = 0x69 // ADC #imm
			m.addr[0x3001] = tc.m
			c.A = tc.a
			c.P |= tc.p
			cycles, err := c.Step()
			if err != nil {
				t.Fatalf("Step: %v", err)
			}
			if c.A != tc.wantA {
				t.Errorf("A = %#x, want %#x", c.A, tc.wantA)
			}
			if (c.P&P_CARRY != 0) != tc.wantCarry {
				t.Errorf("C = %v, want %v", c.P&P_CARRY != 0, tc.wantCarry)
			}
			if cycles != tc.wantCycles {
				t.Errorf("cycles = %d, want %d", cycles, tc.wantCycles)
			}
		})
	}
}

func TestSBCMirrorsADC(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0x3000
	m.addr[0x3000] = 0xE9 // SBC #imm
	m.addr[0x3001] = 0x01
	c.A = 0x05
	c.P |= P_CARRY // No borrow going in.
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.A != 0x04 {
		t.Errorf("A = %#x, want 0x04", c.A)
	}
	if c.P&P_CARRY == 0 {
		t.Error("C clear, want set (no borrow out)")
	}
}

func TestRMWGroupASLZeroPage(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0x4000
	m.addr[0x4000] = 0x06 // ASL $10
	m.addr[0x4001] = 0x10
	m.addr[0x0010] = 0x81
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if m.addr[0x0010] != 0x02 {
		t.Errorf("mem[$10] = %#x, want 0x02", m.addr[0x0010])
	}
	if c.P&P_CARRY == 0 {
		t.Error("C clear after ASL of 0x81, want set")
	}
	if cycles != 5 {
		t.Errorf("cycles = %d, want 5", cycles)
	}
}

func TestRMWAcrossVariants(t *testing.T) {
	// NMOS RMW instructions perform a spurious write of the unmodified
	// value before the real write; CMOS does not. We can't observe the
	// dummy write directly on a flatMemory, so this just confirms the
	// final state matches on both variants (the dummy write is exercised
	// internally by rmw.go's p.cpuType.isNMOS() gate).
	for _, variant := range []CPUType{CPU_NMOS_6502, CPU_CMOS_65C02} {
		c, m := newTestChip(t, variant)
		c.PC = 0x4000
		m.addr[0x4000] = 0xE6 // INC $10
		m.addr[0x4001] = 0x10
		m.addr[0x0010] = 0x7F
		if _, err := c.Step(); err != nil {
			t.Fatalf("Step (%v): %v", variant, err)
		}
		if m.addr[0x0010] != 0x80 {
			t.Errorf("variant %v: mem[$10] = %#x, want 0x80", variant, m.addr[0x0010])
		}
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0x5000
	m.addr[0x5000] = 0x20 // JSR $6000
	m.addr[0x5001] = 0x00
	m.addr[0x5002] = 0x60
	m.addr[0x6000] = 0x60 // RTS
	if _, err := c.Step(); err != nil {
		t.Fatalf("JSR: %v", err)
	}
	if c.PC != 0x6000 {
		t.Fatalf("PC after JSR = %#x, want 0x6000", c.PC)
	}
	if _, err := c.Step(); err != nil {
		t.Fatalf("RTS: %v", err)
	}
	if c.PC != 0x5003 {
		t.Errorf("PC after RTS = %#x, want 0x5003", c.PC)
	}
}

func TestRTIRestoresPWithBForcedClear(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0x7000
	m.addr[0x7000] = 0x40 // RTI
	c.pushStack(0x70)     // PC hi
	c.pushStack(0x00)     // PC lo
	c.pushStack(0xFF)     // P, all bits set including B.
	if _, err := c.Step(); err != nil {
		t.Fatalf("RTI: %v", err)
	}
	if c.PC != 0x7000 {
		t.Errorf("PC after RTI = %#x, want 0x7000", c.PC)
	}
	if c.P&P_B != 0 {
		t.Error("B set after RTI, want forced clear")
	}
	if c.P&P_S1 == 0 {
		t.Error("bit 5 clear after RTI, want forced set")
	}
}

func TestNMIAndIRQPriority(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0x8000
	m.addr[0x8000] = 0xEA // NOP, never reached: both interrupts pending.
	m.addr[NMI_VECTOR] = 0x00
	m.addr[NMI_VECTOR+1] = 0x90
	m.addr[IRQ_VECTOR] = 0x00
	m.addr[IRQ_VECTOR+1] = 0xA0
	c.P &^= P_INTERRUPT // IRQ not masked.
	c.NMI()
	c.IRQ()
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 7 {
		t.Errorf("cycles = %d, want 7", cycles)
	}
	if c.PC != 0x9000 {
		t.Errorf("PC = %#x, want 0x9000 (NMI serviced first)", c.PC)
	}
	// Servicing the NMI set I. IRQ is level-sensitive and still asserted,
	// so it is serviced on the next boundary once I is clear again.
	c.P &^= P_INTERRUPT
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.PC != 0xA000 {
		t.Errorf("PC = %#x, want 0xA000 (IRQ serviced second)", c.PC)
	}
}

func TestIRQMaskedByInterruptFlag(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0x8000
	m.addr[0x8000] = 0xEA // NOP
	c.P |= P_INTERRUPT
	c.IRQ()
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.PC != 0x8001 {
		t.Errorf("PC = %#x, want 0x8001 (IRQ should stay masked)", c.PC)
	}
}

func TestBRKPushesBSetAndAdvancesPCByTwo(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0x8000
	m.addr[0x8000] = 0x00 // BRK
	m.addr[IRQ_VECTOR] = 0x00
	m.addr[IRQ_VECTOR+1] = 0xB0
	if _, err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.PC != 0xB000 {
		t.Errorf("PC = %#x, want 0xB000", c.PC)
	}
	pushedP := m.addr[0x0100+uint16(c.S)+1]
	if pushedP&P_B == 0 {
		t.Error("pushed P has B clear, want set for BRK")
	}
	lo := m.addr[0x0100+uint16(c.S)+2]
	hi := m.addr[0x0100+uint16(c.S)+3]
	if got := uint16(hi)<<8 | uint16(lo); got != 0x8002 {
		t.Errorf("pushed return PC = %#x, want 0x8002", got)
	}
}

func TestCMOSExtensions(t *testing.T) {
	c, m := newTestChip(t, CPU_CMOS_65C02)
	c.PC = 0x9000
	m.addr[0x9000] = 0x80 // BRA +5
	m.addr[0x9001] = 0x05
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("BRA: %v", err)
	}
	if c.PC != 0x9007 {
		t.Errorf("PC after BRA = %#x, want 0x9007", c.PC)
	}
	if cycles != 3 {
		t.Errorf("BRA cycles = %d, want 3", cycles)
	}

	c.PC = 0xA000
	m.addr[0xA000] = 0x64 // STZ $10
	m.addr[0xA001] = 0x10
	m.addr[0x0010] = 0xFF
	if _, err := c.Step(); err != nil {
		t.Fatalf("STZ: %v", err)
	}
	if m.addr[0x0010] != 0x00 {
		t.Errorf("mem[$10] after STZ = %#x, want 0x00", m.addr[0x0010])
	}
}

func TestNMOSUnassignedOpcodeFallsBackToStableNOP(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0xB000
	m.addr[0xB000] = 0x1A // Unassigned on NMOS (CMOS-only INC A).
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles < 2 {
		t.Errorf("cycles = %d, want >= 2", cycles)
	}
	if c.PC != 0xB001 {
		t.Errorf("PC = %#x, want 0xB001 (single-byte NOP)", c.PC)
	}
}

func TestCMOSUnassignedOpcodeIsOneNOP(t *testing.T) {
	c, m := newTestChip(t, CPU_CMOS_65C02)
	c.PC = 0xC000
	m.addr[0xC000] = 0xFF // Unassigned on CMOS (ISC abs,X on NMOS).
	cycles, err := c.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if cycles != 2 {
		t.Errorf("cycles = %d, want 2", cycles)
	}
	if c.PC != 0xC001 {
		t.Errorf("PC = %#x, want 0xC001", c.PC)
	}
}

func TestStrictOpcodesError(t *testing.T) {
	m := &flatMemory{}
	c, err := Init(&ChipDef{Cpu: CPU_NMOS_6502, Ram: m, StrictOpcodes: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	c.PC = 0xD000
	m.addr[0xD000] = 0x02 // NMOS JAM/KIL, unassigned.
	_, err = c.Step()
	want := errs.InvalidOpcode{Opcode: 0x02, PC: 0xD000}
	if diff := deep.Equal(err, want); diff != nil {
		t.Errorf("Step() error diff: %v\nfull error: %s", diff, spew.Sdump(err))
	}
}

func TestExecuteAccumulatesCyclesAcrossInstructions(t *testing.T) {
	c, m := newTestChip(t, CPU_NMOS_6502)
	c.PC = 0xE000
	for i := range m.addr[0xE000:0xE010] {
		m.addr[0xE000+uint16(i)] = 0xEA // NOP
	}
	if err := c.Execute(10); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if c.Cycles < 10 {
		t.Errorf("Cycles = %d, want >= 10", c.Cycles)
	}
}

func TestRandomizeRegistersChangesState(t *testing.T) {
	c, _ := newTestChip(t, CPU_NMOS_6502)
	c.A, c.X, c.Y = 0, 0, 0
	c.RandomizeRegisters()
	if c.A == 0 && c.X == 0 && c.Y == 0 {
		t.Error("A/X/Y all still 0 after RandomizeRegisters (astronomically unlikely, check the wiring)")
	}
}
