package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

const wordSize = 8

// MemoryStage performs at most one data memory access per instruction.
type MemoryStage struct {
	memory *emu.Memory
	logger *logrus.Logger

	// Store computed this cycle, performed at clock-high.
	writePending bool
	writeAddr    uint64
	writeValue   uint64
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{memory: memory, logger: logrus.StandardLogger()}
}

// SetLogger sets the logger that reports failed stores.
func (s *MemoryStage) SetLogger(logger *logrus.Logger) {
	s.logger = logger
}

// Addr returns the data address of the instruction.
func Addr(op insts.Op, valE, valA uint64) uint64 {
	switch op {
	case insts.OpRMMOVQ, insts.OpPUSHQ, insts.OpCALL, insts.OpMRMOVQ:
		return valE
	case insts.OpPOPQ, insts.OpRET:
		return valA
	default:
		return 0
	}
}

// MemRead reports whether the instruction reads data memory.
func MemRead(op insts.Op) bool {
	return op == insts.OpMRMOVQ || op == insts.OpPOPQ || op == insts.OpRET
}

// MemWrite reports whether the instruction writes data memory.
func MemWrite(op insts.Op) bool {
	return op == insts.OpRMMOVQ || op == insts.OpPUSHQ || op == insts.OpCALL
}

// Access computes the W register input for the instruction in M. Loads
// happen immediately; a store is validated and returned for clock-high.
// Instructions that already failed never touch memory.
func (s *MemoryStage) Access(m MFields) (w WFields, store bool, addr uint64) {
	w = WFields{
		Stat: m.Stat,
		Op:   m.Op,
		ValE: m.ValE,
		DstE: m.DstE,
		DstM: m.DstM,
	}
	if m.Stat != insts.StatusAOK {
		return w, false, 0
	}

	addr = Addr(m.Op, m.ValE, m.ValA)

	switch {
	case MemRead(m.Op):
		valM, err := s.memory.Read64(addr)
		if err != nil {
			w.Stat = insts.StatusADR
			return w, false, addr
		}
		w.ValM = valM
	case MemWrite(m.Op):
		if err := s.memory.Check(addr, wordSize); err != nil {
			w.Stat = insts.StatusADR
			return w, false, addr
		}
		store = true
	}

	return w, store, addr
}

// ClockLow accesses memory for the instruction in M and publishes valM and
// the resulting status.
func (s *MemoryStage) ClockLow(regs *Registers, bus *Bus) bool {
	m := regs.M.Output()
	w, store, addr := s.Access(m)

	s.writePending = store
	s.writeAddr = addr
	s.writeValue = m.ValA

	bus.MValM = w.ValM
	bus.MStat = w.Stat
	regs.W.SetInput(w)

	return false
}

// ClockHigh performs the pending store and commits W.
func (s *MemoryStage) ClockHigh(regs *Registers, signals ControlSignals) {
	if s.writePending {
		// The range was checked at clock-low.
		if err := s.memory.Write64(s.writeAddr, s.writeValue); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"addr": s.writeAddr,
			}).Error("store failed")
		}
		s.writePending = false
	}
	regs.W.Apply(signals.W)
}
