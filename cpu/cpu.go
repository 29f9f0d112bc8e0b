// Package cpu defines the 6502/65C02 architecture and provides the
// methods needed to run the CPU and interface with it for emulation.
package cpu

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mjholtkamp/c64core/errs"
	"github.com/mjholtkamp/c64core/irq"
	"github.com/mjholtkamp/c64core/memory"
)

// CPUType is an enumeration of the valid CPU variants.
type CPUType int

const (
	CPU_UNIMPLEMENTED CPUType = iota // Start of valid cpu enumerations.
	CPU_NMOS_6502                    // Basic NMOS 6502 including the documented unofficial opcodes.
	CPU_NMOS_6502A                   // Behaviorally identical to CPU_NMOS_6502; binned trivia only.
	CPU_NMOS_6502C                   // Behaviorally identical to CPU_NMOS_6502; binned trivia only.
	CPU_CMOS_65C02                   // 65C02 CMOS: BRA/STZ/PHX/PHY/PLX/PLY/TSB/TRB, (zp) indirect, no illegal opcodes.
	CPU_MAX                          // End of CPU enumerations.
)

func (t CPUType) String() string {
	switch t {
	case CPU_NMOS_6502:
		return "NMOS-6502"
	case CPU_NMOS_6502A:
		return "NMOS-6502A"
	case CPU_NMOS_6502C:
		return "NMOS-6502C"
	case CPU_CMOS_65C02:
		return "CMOS-65C02"
	}
	return "UNIMPLEMENTED"
}

// isNMOS reports whether this variant carries the NMOS illegal-opcode
// table and the JMP-indirect page-wrap bug.
func (t CPUType) isNMOS() bool {
	return t == CPU_NMOS_6502 || t == CPU_NMOS_6502A || t == CPU_NMOS_6502C
}

const (
	NMI_VECTOR   = uint16(0xFFFA)
	RESET_VECTOR = uint16(0xFFFC)
	IRQ_VECTOR   = uint16(0xFFFE)

	P_NEGATIVE  = uint8(0x80)
	P_OVERFLOW  = uint8(0x40)
	P_S1        = uint8(0x20) // Always 1.
	P_B         = uint8(0x10) // Only meaningful in the byte pushed to the stack.
	P_DECIMAL   = uint8(0x08)
	P_INTERRUPT = uint8(0x04)
	P_ZERO      = uint8(0x02)
	P_CARRY     = uint8(0x01)
)

// InvalidCPUState is returned when the CPU reaches a state that should be
// structurally unreachable (malformed table entry, bad Init args).
type InvalidCPUState struct {
	Reason string
}

func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Chip holds the complete architectural state of one 6502/65C02 core.
// Everything here mutates only from within Step/Execute/Reset/NMI/IRQ;
// the bus it reads/writes through is owned externally.
type Chip struct {
	A  uint8  // Accumulator register.
	X  uint8  // X register.
	Y  uint8  // Y register.
	S  uint8  // Stack pointer; stack lives at $0100+S.
	P  uint8  // Status register.
	PC uint16 // Program counter.

	Cycles uint64 // Monotonic count of cycles elapsed since Reset.

	cpuType CPUType
	ram     memory.Bank

	irq irq.Sender // Optional external IRQ source polled at each boundary, in addition to p.IRQ().
	nmi irq.Sender // Optional external NMI source, edge-checked the same way.

	pendingIRQ bool // Level-sensitive; cleared only by ClearIRQ or Reset (the external irq source is polled separately).
	pendingNMI bool // Edge-latched; cleared once serviced.

	strictOpcodes bool // If true, an unmapped opcode slot raises errs.InvalidOpcode instead of falling back to NOP.
	breakIsError  bool // If true, BRK raises errs.CPUBreakError instead of running the interrupt sequence.

	trace    func(pc uint16, op uint8, mnemonic string, cycles uint8)
	debug    bool
	debugBuf string
}

// ChipDef defines a 65xx processor to be constructed by Init.
type ChipDef struct {
	// Cpu selects the instruction table and variant-specific behavior.
	Cpu CPUType
	// Ram is the bus this CPU reads and writes through.
	Ram memory.Bank
	// Irq is an optional external IRQ source polled at each instruction boundary.
	Irq irq.Sender
	// Nmi is an optional external NMI source, edge-checked at each boundary.
	Nmi irq.Sender
	// StrictOpcodes causes undefined opcode slots to return errs.InvalidOpcode
	// instead of silently executing the documented NOP fallback.
	StrictOpcodes bool
	// BreakIsError causes BRK to return errs.CPUBreakError instead of running
	// the normal interrupt sequence. Used by test harnesses that want to stop
	// a program at a BRK sentinel.
	BreakIsError bool
	// Trace, if non-nil, is called after every instruction (including
	// serviced interrupts, where op is 0 and mnemonic is "NMI"/"IRQ").
	Trace func(pc uint16, op uint8, mnemonic string, cycles uint8)
	// Debug turns on accumulation of a human-readable trace into Debug().
	Debug bool
}

// Init creates a new 65xx CPU of the requested variant in power-on state.
func Init(def *ChipDef) (*Chip, error) {
	if def.Cpu <= CPU_UNIMPLEMENTED || def.Cpu >= CPU_MAX {
		return nil, InvalidCPUState{fmt.Sprintf("CPU type %d is invalid", def.Cpu)}
	}
	if def.Ram == nil {
		return nil, InvalidCPUState{"Ram must be non-nil"}
	}
	p := &Chip{
		cpuType:       def.Cpu,
		ram:           def.Ram,
		irq:           def.Irq,
		nmi:           def.Nmi,
		strictOpcodes: def.StrictOpcodes,
		breakIsError:  def.BreakIsError,
		trace:         def.Trace,
		debug:         def.Debug,
	}
	p.ram.PowerOn()
	_ = p.Reset()
	return p, nil
}

// Reset performs a power-on/RESET sequence: PC is loaded from RESET_VECTOR,
// S is set to $FD, P is set to 0x24 (I=1, unused bit 5 = 1), and pending
// interrupts are cleared. RAM contents are untouched.
func (p *Chip) Reset() error {
	p.S = 0xFD
	p.P = P_S1 | P_INTERRUPT
	p.pendingIRQ = false
	p.pendingNMI = false
	p.PC = p.readWord(RESET_VECTOR)
	return nil
}

// NMI latches a pending non-maskable interrupt, serviced at the next
// instruction boundary regardless of the I flag.
func (p *Chip) NMI() {
	p.pendingNMI = true
}

// IRQ asserts the level-sensitive interrupt line. Serviced at the next
// boundary iff P.I == 0; remains asserted until ClearIRQ is called.
func (p *Chip) IRQ() {
	p.pendingIRQ = true
}

// ClearIRQ deasserts the IRQ line (the source's interrupt condition cleared).
func (p *Chip) ClearIRQ() {
	p.pendingIRQ = false
}

// Debug returns the accumulated human-readable trace since the last call
// and resets the buffer. Always empty unless ChipDef.Debug was set.
func (p *Chip) Debug() string {
	d := p.debugBuf
	p.debugBuf = ""
	return d
}

func (p *Chip) logTrace(op uint8, mnemonic string, cycles uint8, pcAtFetch uint16) {
	if p.trace != nil {
		p.trace(pcAtFetch, op, mnemonic, cycles)
	}
	if p.debug {
		p.debugBuf += fmt.Sprintf("%.4X: %.2X %-4s A:%.2X X:%.2X Y:%.2X S:%.2X P:%.2X CYC:%d\n",
			pcAtFetch, op, mnemonic, p.A, p.X, p.Y, p.S, p.P, cycles)
	}
}

// irqAsserted reports whether either the internal or the optional external
// IRQ source is currently held.
func (p *Chip) irqAsserted() bool {
	if p.pendingIRQ {
		return true
	}
	return p.irq != nil && p.irq.Raised()
}

// nmiAsserted reports whether the internal latch or the optional external
// NMI source has fired.
func (p *Chip) nmiAsserted() bool {
	if p.pendingNMI {
		return true
	}
	return p.nmi != nil && p.nmi.Raised()
}

// Step executes exactly one instruction, or services one pending
// interrupt, and returns the cycles consumed. Priority at the boundary is
// NMI over IRQ over the next opcode fetch. RESET is not serviced by Step;
// callers invoke Reset() directly, matching spec.
func (p *Chip) Step() (uint8, error) {
	if p.nmiAsserted() {
		p.pendingNMI = false
		pc := p.PC
		cyc := p.runInterrupt(NMI_VECTOR, false)
		p.Cycles += uint64(cyc)
		p.logTrace(0, "NMI", cyc, pc)
		return cyc, nil
	}
	if p.irqAsserted() && p.P&P_INTERRUPT == 0 {
		pc := p.PC
		cyc := p.runInterrupt(IRQ_VECTOR, false)
		p.Cycles += uint64(cyc)
		p.logTrace(0, "IRQ", cyc, pc)
		return cyc, nil
	}

	pcAtFetch := p.PC
	op := p.read(p.PC)
	p.PC++

	entry := p.table()[op]
	if entry.mnemonic == "" {
		if p.strictOpcodes {
			return 0, errs.InvalidOpcode{Opcode: op, PC: pcAtFetch}
		}
		entry = p.nopFallback(op)
	}

	if entry.mnemonic == "BRK" && p.breakIsError {
		return 0, errs.CPUBreakError{PC: pcAtFetch}
	}

	cycles := entry.exec(p)
	p.Cycles += uint64(cycles)
	p.logTrace(op, entry.mnemonic, cycles, pcAtFetch)
	return cycles, nil
}

// Execute runs Step in a loop until at least maxCycles have been consumed.
// Since an instruction here is atomic (indivisible), Execute cannot stop
// mid-instruction; it raises errs.CycleExhaustion only for the degenerate
// maxCycles==0 request, which by definition can never be satisfied since
// every instruction/interrupt consumes at least 2 cycles.
func (p *Chip) Execute(maxCycles uint64) error {
	if maxCycles == 0 {
		return errs.CycleExhaustion{Budget: 0, Consumed: 0}
	}
	var consumed uint64
	for consumed < maxCycles {
		c, err := p.Step()
		if err != nil {
			return err
		}
		consumed += uint64(c)
	}
	return nil
}

func (p *Chip) read(addr uint16) uint8 {
	return p.ram.Read(addr)
}

func (p *Chip) write(addr uint16, val uint8) {
	p.ram.Write(addr, val)
}

// readWord reads a little-endian word. It does NOT honor the NMOS
// JMP-indirect page-wrap bug; that quirk is only applied by the JMP
// ($nnnn) handler's own address resolution, per spec.
func (p *Chip) readWord(addr uint16) uint16 {
	lo := p.read(addr)
	hi := p.read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (p *Chip) pushStack(v uint8) {
	p.write(0x0100+uint16(p.S), v)
	p.S--
}

func (p *Chip) popStack() uint8 {
	p.S++
	return p.read(0x0100 + uint16(p.S))
}

// runInterrupt performs the 7-cycle push-PC/push-P/set-I/load-vector
// sequence shared by NMI, IRQ and BRK. brk is true only when called from
// the BRK handler, which pushes P with B=1; NMI/IRQ always push B=0.
func (p *Chip) runInterrupt(vector uint16, brk bool) uint8 {
	if brk {
		// PC already advanced past the opcode byte by Step's fetch; BRK
		// treats the following byte as padding and skips it too.
		p.PC++
	}
	p.pushStack(uint8(p.PC >> 8))
	p.pushStack(uint8(p.PC & 0xFF))
	push := p.P | P_S1
	if brk {
		push |= P_B
	} else {
		push &^= P_B
	}
	p.pushStack(push)
	p.P |= P_INTERRUPT
	if p.cpuType == CPU_CMOS_65C02 {
		p.P &^= P_DECIMAL
	}
	p.PC = p.readWord(vector)
	return 7
}

// --- Flag helpers ---

func (p *Chip) zeroCheck(v uint8) {
	if v == 0 {
		p.P |= P_ZERO
	} else {
		p.P &^= P_ZERO
	}
}

func (p *Chip) negativeCheck(v uint8) {
	if v&0x80 != 0 {
		p.P |= P_NEGATIVE
	} else {
		p.P &^= P_NEGATIVE
	}
}

func (p *Chip) nzCheck(v uint8) {
	p.zeroCheck(v)
	p.negativeCheck(v)
}

func (p *Chip) carryCheck(set bool) {
	if set {
		p.P |= P_CARRY
	} else {
		p.P &^= P_CARRY
	}
}

func (p *Chip) overflowCheck(set bool) {
	if set {
		p.P |= P_OVERFLOW
	} else {
		p.P &^= P_OVERFLOW
	}
}

func (p *Chip) loadRegister(reg *uint8, v uint8) {
	*reg = v
	p.nzCheck(v)
}

// RandomizeRegisters sets A/X/Y to random values, mirroring real hardware's
// undefined power-on register state. Not called automatically by Init
// since deterministic tests depend on a known starting point; harnesses
// that want visual6502-style randomized boot can call this after Init.
func (p *Chip) RandomizeRegisters() {
	rand.Seed(time.Now().UnixNano())
	p.A = uint8(rand.Intn(256))
	p.X = uint8(rand.Intn(256))
	p.Y = uint8(rand.Intn(256))
}
