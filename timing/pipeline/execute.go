package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

// stackWord is the stack adjustment of push, pop, call and ret.
const stackWord = 8

// ExecuteStage runs the ALU, evaluates conditions and sets the condition
// codes.
type ExecuteStage struct {
	cc     *emu.CondCodes
	hazard *HazardUnit
	logger *logrus.Logger

	// Condition codes computed this cycle, committed at clock-high.
	setCC     bool
	pendingCC emu.CondCodes
}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage(cc *emu.CondCodes, hazard *HazardUnit) *ExecuteStage {
	return &ExecuteStage{cc: cc, hazard: hazard, logger: logrus.StandardLogger()}
}

// SetLogger sets the logger that reports condition code failures.
func (s *ExecuteStage) SetLogger(logger *logrus.Logger) {
	s.logger = logger
}

// ALUA selects the first ALU operand.
func ALUA(op insts.Op, valA, valC uint64) uint64 {
	switch op {
	case insts.OpRRMOVQ, insts.OpOPQ:
		return valA
	case insts.OpIRMOVQ, insts.OpRMMOVQ, insts.OpMRMOVQ:
		return valC
	case insts.OpCALL, insts.OpPUSHQ:
		return ^uint64(stackWord - 1)
	case insts.OpRET, insts.OpPOPQ:
		return stackWord
	default:
		return 0
	}
}

// ALUB selects the second ALU operand.
func ALUB(op insts.Op, valB uint64) uint64 {
	switch op {
	case insts.OpRMMOVQ, insts.OpMRMOVQ, insts.OpOPQ,
		insts.OpCALL, insts.OpPUSHQ, insts.OpRET, insts.OpPOPQ:
		return valB
	default:
		return 0
	}
}

// ALUFun selects the ALU operation. Only OPq chooses; everything else adds.
func ALUFun(op insts.Op, fn insts.Fn) insts.Fn {
	if op == insts.OpOPQ {
		return fn
	}
	return insts.FnADD
}

// ALU computes the result of fn. Subtraction takes opA from opB.
func ALU(opA, opB uint64, fn insts.Fn) uint64 {
	switch fn {
	case insts.FnADD:
		return opA + opB
	case insts.FnSUB:
		return opB - opA
	case insts.FnXOR:
		return opA ^ opB
	case insts.FnAND:
		return opA & opB
	default:
		return 0
	}
}

// Flags computes the condition codes of an ALU operation.
func Flags(opA, opB, result uint64, fn insts.Fn) emu.CondCodes {
	cc := emu.CondCodes{
		ZF: result == 0,
		SF: emu.Sign(result) == 1,
	}
	switch fn {
	case insts.FnADD:
		cc.OF = emu.AddOverflow(opA, opB)
	case insts.FnSUB:
		cc.OF = emu.SubOverflow(opA, opB)
	}
	return cc
}

// Cond evaluates the condition of cmovXX and jXX against cc. Other
// instructions are unconditional, except nop and halt which never are.
func Cond(op insts.Op, fn insts.Fn, cc *emu.CondCodes) bool {
	switch op {
	case insts.OpRRMOVQ, insts.OpJXX:
		return cc.Check(insts.Cond(fn))
	case insts.OpNOP, insts.OpHALT:
		return false
	default:
		return true
	}
}

// EffectiveDstE cancels the write of a conditional move whose condition
// does not hold.
func EffectiveDstE(op insts.Op, cnd bool, dstE insts.Reg) insts.Reg {
	if op == insts.OpRRMOVQ && !cnd {
		return insts.RegNone
	}
	return dstE
}

// Execute computes the M register input for the instruction in E and
// reports whether it updates the condition codes. The condition codes read
// for cmovXX and jXX are the committed ones.
func (s *ExecuteStage) Execute(e EFields) (MFields, bool, emu.CondCodes) {
	fn := ALUFun(e.Op, e.Fn)
	aluA := ALUA(e.Op, e.ValA, e.ValC)
	aluB := ALUB(e.Op, e.ValB)
	valE := ALU(aluA, aluB, fn)

	setCC := e.Op == insts.OpOPQ && e.Stat == insts.StatusAOK
	var flags emu.CondCodes
	if setCC {
		flags = Flags(aluA, aluB, valE, fn)
	}

	cnd := Cond(e.Op, e.Fn, s.cc)

	m := MFields{
		Stat: e.Stat,
		Op:   e.Op,
		Cnd:  cnd,
		ValE: valE,
		ValA: e.ValA,
		DstE: EffectiveDstE(e.Op, cnd, e.DstE),
		DstM: e.DstM,
	}
	return m, setCC, flags
}

// ClockLow executes the instruction in E and publishes valE and dstE for
// Decode.
func (s *ExecuteStage) ClockLow(regs *Registers, bus *Bus) bool {
	m, setCC, flags := s.Execute(regs.E.Output())

	s.setCC = setCC && !s.hazard.Excepting(regs, bus)
	s.pendingCC = flags

	bus.EValE = m.ValE
	bus.EDstE = m.DstE
	bus.ECnd = m.Cnd
	regs.M.SetInput(m)

	return false
}

// ClockHigh commits M and the condition codes.
func (s *ExecuteStage) ClockHigh(regs *Registers, signals ControlSignals) {
	if s.setCC {
		s.commitCC()
		s.setCC = false
	}
	regs.M.Apply(signals.M)
}

func (s *ExecuteStage) commitCC() {
	flags := []struct {
		kind  emu.Flag
		value bool
	}{
		{emu.FlagZF, s.pendingCC.ZF},
		{emu.FlagSF, s.pendingCC.SF},
		{emu.FlagOF, s.pendingCC.OF},
	}

	for _, f := range flags {
		if err := s.cc.SetFlag(f.kind, f.value); err != nil {
			s.logger.WithError(err).Error("failed to set condition code")
		}
	}
}
