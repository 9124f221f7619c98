package pipeline

// Stage is one of the five pipeline stages.
//
// ClockLow is combinational: it reads the visible outputs of the pipeline
// registers plus the same-cycle values on the bus, and stages inputs for
// the registers it feeds. It returns true when the pipeline should stop.
//
// ClockHigh commits the registers the stage feeds, applying the control
// signals, and performs the stage's architectural state updates.
type Stage interface {
	ClockLow(regs *Registers, bus *Bus) bool
	ClockHigh(regs *Registers, signals ControlSignals)
}

// Stage indices, in program order.
const (
	FetchIdx = iota
	DecodeIdx
	ExecuteIdx
	MemoryIdx
	WritebackIdx
	NumStages
)
