// Package pipeline provides the 5-stage Y86-64 pipeline: pipeline registers,
// the Fetch, Decode, Execute, Memory and Writeback stages, the forwarding
// network and the clock driver.
package pipeline

import (
	"fmt"
	"io"

	"github.com/sarchlab/y86sim/insts"
)

// Register is a pipeline register. It latches a set of fields: stages
// write the pending input during clock-low, and the input only becomes the
// visible output when the register is committed during clock-high.
type Register[T any] struct {
	input  T
	output T
	bubble T
}

// NewRegister creates a register whose output starts as the bubble value.
func NewRegister[T any](bubble T) *Register[T] {
	return &Register[T]{input: bubble, output: bubble, bubble: bubble}
}

// SetInput stages a value to be latched at the next commit.
func (r *Register[T]) SetInput(v T) {
	r.input = v
}

// Input returns the pending value.
func (r *Register[T]) Input() T {
	return r.input
}

// Output returns the value latched at the last commit.
func (r *Register[T]) Output() T {
	return r.output
}

// Normal latches the pending input.
func (r *Register[T]) Normal() {
	r.output = r.input
}

// Stall keeps the current output and drops the pending input.
func (r *Register[T]) Stall() {
	r.input = r.output
}

// Bubble latches the bubble value, turning the slot into a nop.
func (r *Register[T]) Bubble() {
	r.output = r.bubble
	r.input = r.bubble
}

// Apply commits the register according to a control signal.
func (r *Register[T]) Apply(c Control) {
	switch c {
	case ControlStall:
		r.Stall()
	case ControlBubble:
		r.Bubble()
	default:
		r.Normal()
	}
}

// Init forces both the pending and the visible value.
func (r *Register[T]) Init(v T) {
	r.input = v
	r.output = v
}

// Reset restores the bubble value.
func (r *Register[T]) Reset() {
	r.Init(r.bubble)
}

// FFields are the fields of the F register, in front of Fetch.
type FFields struct {
	PredPC uint64
}

// DFields are the fields of the D register, between Fetch and Decode.
type DFields struct {
	Stat insts.Status
	Op   insts.Op
	Fn   insts.Fn
	RA   insts.Reg
	RB   insts.Reg
	ValC uint64
	ValP uint64
}

// Instruction returns the fetched instruction held in D, for disassembly.
func (d DFields) Instruction() *insts.Instruction {
	return &insts.Instruction{
		Op:   d.Op,
		Fn:   d.Fn,
		RA:   d.RA,
		RB:   d.RB,
		ValC: d.ValC,
		Len:  insts.Length(d.Op),
	}
}

// EFields are the fields of the E register, between Decode and Execute.
type EFields struct {
	Stat insts.Status
	Op   insts.Op
	Fn   insts.Fn
	ValC uint64
	ValA uint64
	ValB uint64
	DstE insts.Reg
	DstM insts.Reg
	SrcA insts.Reg
	SrcB insts.Reg
}

// MFields are the fields of the M register, between Execute and Memory.
type MFields struct {
	Stat insts.Status
	Op   insts.Op
	Cnd  bool
	ValE uint64
	ValA uint64
	DstE insts.Reg
	DstM insts.Reg
}

// WFields are the fields of the W register, between Memory and Writeback.
type WFields struct {
	Stat insts.Status
	Op   insts.Op
	ValE uint64
	ValM uint64
	DstE insts.Reg
	DstM insts.Reg
}

// Registers holds the five pipeline registers.
type Registers struct {
	F *Register[FFields]
	D *Register[DFields]
	E *Register[EFields]
	M *Register[MFields]
	W *Register[WFields]
}

// NewRegisters creates pipeline registers that all hold bubbles.
func NewRegisters() *Registers {
	return &Registers{
		F: NewRegister(FFields{}),
		D: NewRegister(DFields{
			Stat: insts.StatusAOK, Op: insts.OpNOP,
			RA: insts.RegNone, RB: insts.RegNone,
		}),
		E: NewRegister(EFields{
			Stat: insts.StatusAOK, Op: insts.OpNOP,
			DstE: insts.RegNone, DstM: insts.RegNone,
			SrcA: insts.RegNone, SrcB: insts.RegNone,
		}),
		M: NewRegister(MFields{
			Stat: insts.StatusAOK, Op: insts.OpNOP,
			DstE: insts.RegNone, DstM: insts.RegNone,
		}),
		W: NewRegister(WFields{
			Stat: insts.StatusAOK, Op: insts.OpNOP,
			DstE: insts.RegNone, DstM: insts.RegNone,
		}),
	}
}

// Reset returns every register to its bubble value.
func (r *Registers) Reset() {
	r.F.Reset()
	r.D.Reset()
	r.E.Reset()
	r.M.Reset()
	r.W.Reset()
}

// Dump writes the visible contents of every register.
func (r *Registers) Dump(w io.Writer) {
	f, d, e, m, wb := r.F.Output(), r.D.Output(), r.E.Output(), r.M.Output(), r.W.Output()

	fmt.Fprintf(w, "F: predPC: %016x\n", f.PredPC)
	fmt.Fprintf(w, "D: stat: %s icode: %s ifun: %x rA: %s rB: %s valC: %016x valP: %016x\n"+
		"   inst: %s\n",
		d.Stat, d.Op, uint8(d.Fn), d.RA, d.RB, d.ValC, d.ValP, d.Instruction())
	fmt.Fprintf(w, "E: stat: %s icode: %s ifun: %x valC: %016x valA: %016x valB: %016x\n"+
		"   dstE: %s dstM: %s srcA: %s srcB: %s\n",
		e.Stat, e.Op, uint8(e.Fn), e.ValC, e.ValA, e.ValB, e.DstE, e.DstM, e.SrcA, e.SrcB)
	fmt.Fprintf(w, "M: stat: %s icode: %s Cnd: %t valE: %016x valA: %016x dstE: %s dstM: %s\n",
		m.Stat, m.Op, m.Cnd, m.ValE, m.ValA, m.DstE, m.DstM)
	fmt.Fprintf(w, "W: stat: %s icode: %s valE: %016x valM: %016x dstE: %s dstM: %s\n",
		wb.Stat, wb.Op, wb.ValE, wb.ValM, wb.DstE, wb.DstM)
}
