package pipeline

import (
	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

// FetchStage selects the PC, reads the instruction bytes and predicts the
// next PC.
type FetchStage struct {
	memory *emu.Memory
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(memory *emu.Memory) *FetchStage {
	return &FetchStage{memory: memory}
}

// SelectPC picks the fetch address. A mispredicted branch in Memory wins
// over a ret in Writeback, which wins over the predicted PC.
func SelectPC(f FFields, m MFields, w WFields) uint64 {
	switch {
	case m.Op == insts.OpJXX && !m.Cnd:
		return m.ValA
	case w.Op == insts.OpRET:
		return w.ValM
	default:
		return f.PredPC
	}
}

// PCIncrement returns the address of the next sequential instruction.
func PCIncrement(pc uint64, needRegIDs, needValC bool) uint64 {
	pc++
	if needRegIDs {
		pc++
	}
	if needValC {
		pc += 8
	}
	return pc
}

// PredictPC predicts jumps and calls taken and everything else as falling
// through.
func PredictPC(op insts.Op, valC, valP uint64) uint64 {
	if op == insts.OpJXX || op == insts.OpCALL {
		return valC
	}
	return valP
}

// Fetch decodes the instruction at pc. An address error leaves every field
// empty and marks the instruction ADR.
func (s *FetchStage) Fetch(pc uint64) DFields {
	d := DFields{
		Stat: insts.StatusAOK,
		Op:   insts.OpNOP,
		RA:   insts.RegNone,
		RB:   insts.RegNone,
	}

	b, err := s.memory.Read8(pc)
	if err != nil {
		d.Stat = insts.StatusADR
		return d
	}

	op := insts.Op(emu.GetBits(uint64(b), 4, 7))
	fn := insts.Fn(emu.GetBits(uint64(b), 0, 3))

	if !op.Valid() {
		d.Stat = insts.StatusINS
		d.Op = op
		d.Fn = fn
		d.ValP = pc + 1
		return d
	}

	needRegIDs := insts.NeedsRegIDs(op)
	needValC := insts.NeedsValC(op)

	rA, rB := insts.RegNone, insts.RegNone
	valCAddr := pc + 1
	if needRegIDs {
		regs, err := s.memory.Read8(pc + 1)
		if err != nil {
			d.Stat = insts.StatusADR
			return d
		}
		rA = insts.Reg(emu.GetBits(uint64(regs), 4, 7))
		rB = insts.Reg(emu.GetBits(uint64(regs), 0, 3))
		valCAddr++
	}

	var valC uint64
	if needValC {
		valC, err = s.memory.Read64(valCAddr)
		if err != nil {
			d.Stat = insts.StatusADR
			return d
		}
	}

	d.Op = op
	d.Fn = fn
	d.RA = rA
	d.RB = rB
	d.ValC = valC
	d.ValP = PCIncrement(pc, needRegIDs, needValC)
	if op == insts.OpHALT {
		d.Stat = insts.StatusHLT
	}

	return d
}

// ClockLow fetches the next instruction into D and the predicted PC into F.
func (s *FetchStage) ClockLow(regs *Registers, _ *Bus) bool {
	pc := SelectPC(regs.F.Output(), regs.M.Output(), regs.W.Output())
	d := s.Fetch(pc)

	predPC := pc
	if d.Stat != insts.StatusADR {
		predPC = PredictPC(d.Op, d.ValC, d.ValP)
	}

	regs.F.SetInput(FFields{PredPC: predPC})
	regs.D.SetInput(d)

	return false
}

// ClockHigh commits F and D.
func (s *FetchStage) ClockHigh(regs *Registers, signals ControlSignals) {
	regs.F.Apply(signals.F)
	regs.D.Apply(signals.D)
}
