package pipeline

import (
	"bytes"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired: non-nop
	// instructions that reached Writeback with status AOK, plus halt.
	// Instructions that failed with ADR or INS are not counted.
	Instructions uint64
	// Stalls is the number of cycles in which Fetch was stalled.
	Stalls uint64
	// Bubbles is the number of bubbles injected into Decode or Execute.
	Bubbles uint64
	// Mispredictions is the number of mispredicted conditional jumps.
	Mispredictions uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithHazardUnit enables or disables stalls and bubbles. Enabled by
// default. Disabling it leaves the pure forwarding datapath.
func WithHazardUnit(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.hazardEnabled = enabled
	}
}

// WithLogger sets the logger used for cycle traces and stop reports.
func WithLogger(logger *logrus.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMaxCycles bounds Run. Zero means no bound.
func WithMaxCycles(n uint64) PipelineOption {
	return func(p *Pipeline) {
		p.maxCycles = n
	}
}

// WithTrace dumps the pipeline registers at debug level after every cycle.
func WithTrace(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.trace = enabled
	}
}

// Pipeline implements the 5-stage Y86-64 pipeline.
// Stages: Fetch (F) -> Decode (D) -> Execute (E) -> Memory (M) -> Writeback (W)
type Pipeline struct {
	regs   *Registers
	stages [NumStages]Stage

	hazardUnit    *HazardUnit
	hazardEnabled bool

	// Shared resources
	regFile *emu.RegFile
	cc      *emu.CondCodes
	memory  *emu.Memory

	logger    *logrus.Logger
	trace     bool
	maxCycles uint64

	stats  Statistics
	halted bool
	status insts.Status
}

// NewPipeline creates a new 5-stage pipeline over the given state.
func NewPipeline(
	regFile *emu.RegFile,
	cc *emu.CondCodes,
	memory *emu.Memory,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		regs:          NewRegisters(),
		regFile:       regFile,
		cc:            cc,
		memory:        memory,
		hazardEnabled: true,
		logger:        logrus.StandardLogger(),
		status:        insts.StatusAOK,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.hazardUnit = NewHazardUnit(p.hazardEnabled)

	execute := NewExecuteStage(cc, p.hazardUnit)
	execute.SetLogger(p.logger)
	mem := NewMemoryStage(memory)
	mem.SetLogger(p.logger)
	writeback := NewWritebackStage(regFile)
	writeback.SetLogger(p.logger)

	p.stages = [NumStages]Stage{
		FetchIdx:     NewFetchStage(memory),
		DecodeIdx:    NewDecodeStage(regFile, p.hazardEnabled),
		ExecuteIdx:   execute,
		MemoryIdx:    mem,
		WritebackIdx: writeback,
	}

	return p
}

// PC returns the predicted PC latched in F.
func (p *Pipeline) PC() uint64 {
	return p.regs.F.Output().PredPC
}

// SetPC sets the address of the first instruction fetched.
func (p *Pipeline) SetPC(pc uint64) {
	p.regs.F.Init(FFields{PredPC: pc})
}

// Registers returns the pipeline registers.
func (p *Pipeline) Registers() *Registers {
	return p.regs
}

// HazardUnit returns the hazard unit.
func (p *Pipeline) HazardUnit() *HazardUnit {
	return p.hazardUnit
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Halted returns true once an instruction stopped the pipeline.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Status returns the status of the instruction that stopped the pipeline,
// or AOK while it is running.
func (p *Pipeline) Status() insts.Status {
	return p.status
}

// Run executes the pipeline until it stops or reaches the cycle limit.
// Returns the final status.
func (p *Pipeline) Run() insts.Status {
	for !p.halted {
		if p.LimitReached() {
			p.logger.WithFields(logrus.Fields{
				"cycles": p.stats.Cycles,
			}).Warn("cycle limit reached")
			break
		}
		p.Tick()
	}
	return p.status
}

// LimitReached reports whether the pipeline has used up its cycle limit.
func (p *Pipeline) LimitReached() bool {
	return p.maxCycles > 0 && p.stats.Cycles >= p.maxCycles
}

// RunCycles executes the pipeline for the specified number of cycles.
// Returns true if still running, false if halted.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}

// Tick executes one clock cycle.
//
// Clock-low runs the stages from Writeback back to Fetch. Every stage reads
// the values latched at the previous clock-high; Decode additionally reads
// what Execute and Memory computed this cycle through the bus. The hazard
// unit then decides which registers latch, stall or bubble, and clock-high
// commits them all. Writeback commits first so the register file is written
// from the instruction that occupied W during this cycle.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}

	p.stats.Cycles++
	bus := NewBus()

	done := false
	for i := NumStages - 1; i >= 0; i-- {
		if p.stages[i].ClockLow(p.regs, bus) {
			done = true
		}
	}

	w := p.regs.W.Output()
	if Retired(w) {
		p.stats.Instructions++
	}

	if done {
		p.stop(w)
		return
	}

	signals := p.hazardUnit.Compute(p.regs, bus)
	p.count(signals)

	for i := NumStages - 1; i >= 0; i-- {
		p.stages[i].ClockHigh(p.regs, signals)
	}

	if p.trace && p.logger.IsLevelEnabled(logrus.DebugLevel) {
		var buf bytes.Buffer
		p.regs.Dump(&buf)
		p.logger.WithFields(logrus.Fields{
			"cycle": p.stats.Cycles,
		}).Debug("\n" + buf.String())
	}
}

// Retired reports whether the instruction in W counts as executed.
func Retired(w WFields) bool {
	if w.Op == insts.OpHALT {
		return true
	}
	return w.Op != insts.OpNOP && w.Stat == insts.StatusAOK
}

func (p *Pipeline) count(signals ControlSignals) {
	if signals.F == ControlStall {
		p.stats.Stalls++
	}
	if signals.D == ControlBubble {
		p.stats.Bubbles++
	}
	if signals.E == ControlBubble {
		p.stats.Bubbles++
		if p.regs.E.Output().Op == insts.OpJXX {
			p.stats.Mispredictions++
		}
	}
}

func (p *Pipeline) stop(w WFields) {
	p.halted = true
	p.status = w.Stat
	if w.Op == insts.OpHALT {
		p.status = insts.StatusHLT
	}

	p.logger.WithFields(logrus.Fields{
		"cycle":  p.stats.Cycles,
		"status": p.status.String(),
	}).Info("pipeline stopped")
}

// Reset clears the pipeline registers, statistics and stop state. The
// architectural state is left to its owner.
func (p *Pipeline) Reset() {
	p.regs.Reset()
	p.stats = Statistics{}
	p.halted = false
	p.status = insts.StatusAOK
}
