package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

// WritebackStage writes results to the register file and detects the end
// of the program.
type WritebackStage struct {
	regFile *emu.RegFile
	logger  *logrus.Logger
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile, logger: logrus.StandardLogger()}
}

// SetLogger sets the logger that reports failed register writes.
func (s *WritebackStage) SetLogger(logger *logrus.Logger) {
	s.logger = logger
}

// Done reports whether the instruction in W stops the pipeline: a halt, or
// an instruction that failed with an address or instruction error.
func Done(w WFields) bool {
	return w.Op == insts.OpHALT || w.Stat.IsException()
}

// ClockLow reports whether the pipeline should stop.
func (s *WritebackStage) ClockLow(regs *Registers, _ *Bus) bool {
	return Done(regs.W.Output())
}

// Writeback writes valE to dstE and valM to dstM. Failed instructions and
// halt write nothing.
func (s *WritebackStage) Writeback(w WFields) {
	if w.Stat != insts.StatusAOK || w.Op == insts.OpHALT {
		return
	}
	s.write(w.DstE, w.ValE)
	s.write(w.DstM, w.ValM)
}

func (s *WritebackStage) write(dst insts.Reg, value uint64) {
	if dst == insts.RegNone {
		return
	}
	if err := s.regFile.WriteReg(dst, value); err != nil {
		s.logger.WithError(err).Error("register write failed")
	}
}

// ClockHigh writes back the instruction in W. It runs before Memory
// commits the next instruction into W.
func (s *WritebackStage) ClockHigh(regs *Registers, _ ControlSignals) {
	s.Writeback(regs.W.Output())
}
