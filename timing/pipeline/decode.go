package pipeline

import (
	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

// DecodeStage maps register fields to operand roles and reads operands,
// taking in-flight results from later stages before the register file.
type DecodeStage struct {
	regFile *emu.RegFile

	// forwardLoads adds the loaded values m_valM and W_valM to the
	// forwarding sources.
	forwardLoads bool
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(regFile *emu.RegFile, forwardLoads bool) *DecodeStage {
	return &DecodeStage{regFile: regFile, forwardLoads: forwardLoads}
}

// SrcA returns the register read as operand A.
func SrcA(op insts.Op, rA insts.Reg) insts.Reg {
	switch op {
	case insts.OpRRMOVQ, insts.OpRMMOVQ, insts.OpOPQ, insts.OpPUSHQ:
		return rA
	case insts.OpPOPQ, insts.OpRET:
		return insts.RSP
	default:
		return insts.RegNone
	}
}

// SrcB returns the register read as operand B.
func SrcB(op insts.Op, rB insts.Reg) insts.Reg {
	switch op {
	case insts.OpOPQ, insts.OpRMMOVQ, insts.OpMRMOVQ:
		return rB
	case insts.OpPUSHQ, insts.OpPOPQ, insts.OpCALL, insts.OpRET:
		return insts.RSP
	default:
		return insts.RegNone
	}
}

// DstE returns the register written with the ALU result.
func DstE(op insts.Op, rB insts.Reg) insts.Reg {
	switch op {
	case insts.OpRRMOVQ, insts.OpIRMOVQ, insts.OpOPQ:
		return rB
	case insts.OpPUSHQ, insts.OpPOPQ, insts.OpCALL, insts.OpRET:
		return insts.RSP
	default:
		return insts.RegNone
	}
}

// DstM returns the register written with the value read from memory.
func DstM(op insts.Op, rA insts.Reg) insts.Reg {
	switch op {
	case insts.OpMRMOVQ, insts.OpPOPQ:
		return rA
	default:
		return insts.RegNone
	}
}

// Forward resolves the value of src. The youngest in-flight producer wins:
// the value Execute computes this cycle, then the M register, then the W
// register, and finally the register file. RegNone resolves to 0.
func (s *DecodeStage) Forward(src insts.Reg, bus *Bus, m MFields, w WFields) uint64 {
	if src == insts.RegNone {
		return 0
	}

	switch {
	case src == bus.EDstE:
		return bus.EValE
	case s.forwardLoads && src == m.DstM:
		return bus.MValM
	case src == m.DstE:
		return m.ValE
	case s.forwardLoads && src == w.DstM:
		return w.ValM
	case src == w.DstE:
		return w.ValE
	}

	v, err := s.regFile.ReadReg(src)
	if err != nil {
		return 0
	}
	return v
}

// Decode builds the E register input for the instruction in D.
func (s *DecodeStage) Decode(d DFields, bus *Bus, m MFields, w WFields) EFields {
	e := EFields{
		Stat: d.Stat,
		Op:   d.Op,
		Fn:   d.Fn,
		ValC: d.ValC,
		SrcA: SrcA(d.Op, d.RA),
		SrcB: SrcB(d.Op, d.RB),
		DstE: DstE(d.Op, d.RB),
		DstM: DstM(d.Op, d.RA),
	}

	// call pushes and a jump falls back to the address after itself, so
	// both carry valP where other instructions carry operand A.
	if d.Op == insts.OpCALL || d.Op == insts.OpJXX {
		e.ValA = d.ValP
	} else {
		e.ValA = s.Forward(e.SrcA, bus, m, w)
	}
	e.ValB = s.Forward(e.SrcB, bus, m, w)

	return e
}

// ClockLow decodes the instruction in D into E.
func (s *DecodeStage) ClockLow(regs *Registers, bus *Bus) bool {
	e := s.Decode(regs.D.Output(), bus, regs.M.Output(), regs.W.Output())

	bus.DSrcA = e.SrcA
	bus.DSrcB = e.SrcB
	regs.E.SetInput(e)

	return false
}

// ClockHigh commits E.
func (s *DecodeStage) ClockHigh(regs *Registers, signals ControlSignals) {
	regs.E.Apply(signals.E)
}
