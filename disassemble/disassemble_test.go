package disassemble

import (
	"strings"
	"testing"

	"github.com/mjholtkamp/c64core/cpu"
	"github.com/mjholtkamp/c64core/memory"
)

type flatMemory struct {
	addr [65536]uint8
}

func (r *flatMemory) Read(addr uint16) uint8       { return r.addr[addr] }
func (r *flatMemory) Write(addr uint16, val uint8) { r.addr[addr] = val }
func (r *flatMemory) PowerOn()                     {}
func (r *flatMemory) Parent() memory.Bank          { return nil }
func (r *flatMemory) DatabusVal() uint8            { return 0 }

func TestStepImmediateLength(t *testing.T) {
	m := &flatMemory{}
	m.addr[0x1000] = 0xA9 // LDA #$05
	m.addr[0x1001] = 0x05
	text, n := Step(0x1000, m, cpu.CPU_NMOS_6502)
	if n != 2 {
		t.Errorf("length = %d, want 2", n)
	}
	if !strings.Contains(text, "LDA") || !strings.Contains(text, "#$05") {
		t.Errorf("text = %q, want LDA #$05", text)
	}
}

func TestStepAbsoluteLength(t *testing.T) {
	m := &flatMemory{}
	m.addr[0x1000] = 0x4C // JMP $1234
	m.addr[0x1001] = 0x34
	m.addr[0x1002] = 0x12
	text, n := Step(0x1000, m, cpu.CPU_NMOS_6502)
	if n != 3 {
		t.Errorf("length = %d, want 3", n)
	}
	if !strings.Contains(text, "JMP") || !strings.Contains(text, "$1234") {
		t.Errorf("text = %q, want JMP $1234", text)
	}
}

func TestStepImpliedLength(t *testing.T) {
	m := &flatMemory{}
	m.addr[0x1000] = 0xEA // NOP
	text, n := Step(0x1000, m, cpu.CPU_NMOS_6502)
	if n != 1 {
		t.Errorf("length = %d, want 1", n)
	}
	if !strings.Contains(text, "NOP") {
		t.Errorf("text = %q, want NOP", text)
	}
}

func TestStepRelativeComputesTarget(t *testing.T) {
	m := &flatMemory{}
	m.addr[0x10F0] = 0x90 // BCC
	m.addr[0x10F1] = 0x20 // +32
	text, n := Step(0x10F0, m, cpu.CPU_NMOS_6502)
	if n != 2 {
		t.Errorf("length = %d, want 2", n)
	}
	if !strings.Contains(text, "$1112") {
		t.Errorf("text = %q, want target $1112", text)
	}
}

func TestStepCMOSOnlyOpcode(t *testing.T) {
	m := &flatMemory{}
	m.addr[0x2000] = 0x80 // BRA on CMOS
	m.addr[0x2001] = 0x02
	text, n := Step(0x2000, m, cpu.CPU_CMOS_65C02)
	if n != 2 {
		t.Errorf("length = %d, want 2", n)
	}
	if !strings.Contains(text, "BRA") {
		t.Errorf("text = %q, want BRA", text)
	}
}

func TestStepUnassignedNMOSFallsBackToNOP(t *testing.T) {
	m := &flatMemory{}
	m.addr[0x3000] = 0x1A // NMOS unassigned slot.
	text, n := Step(0x3000, m, cpu.CPU_NMOS_6502)
	if n != 1 {
		t.Errorf("length = %d, want 1", n)
	}
	if !strings.Contains(text, "NOP") {
		t.Errorf("text = %q, want NOP", text)
	}
}
