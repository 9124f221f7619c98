package pipeline

import "github.com/sarchlab/y86sim/insts"

// Bus carries the values stages compute during clock-low that other stages
// read in the same cycle. Stages run from Writeback back to Fetch, so each
// field is written before anything reads it.
type Bus struct {
	// Written by Memory.
	MValM uint64
	MStat insts.Status

	// Written by Execute.
	EValE uint64
	EDstE insts.Reg
	ECnd  bool

	// Written by Decode, read by the hazard unit.
	DSrcA insts.Reg
	DSrcB insts.Reg
}

// NewBus returns a bus with every register id set to RegNone.
func NewBus() *Bus {
	return &Bus{
		MStat: insts.StatusAOK,
		EDstE: insts.RegNone,
		DSrcA: insts.RegNone,
		DSrcB: insts.RegNone,
	}
}

// Control is the clock-high action applied to one pipeline register.
type Control int

const (
	// ControlNormal latches the pending input.
	ControlNormal Control = iota
	// ControlStall holds the current value.
	ControlStall
	// ControlBubble replaces the value with a nop.
	ControlBubble
)

func (c Control) String() string {
	switch c {
	case ControlStall:
		return "stall"
	case ControlBubble:
		return "bubble"
	default:
		return "normal"
	}
}

// ControlSignals holds the control applied to each pipeline register.
type ControlSignals struct {
	F Control
	D Control
	E Control
	M Control
	W Control
}

// HazardUnit computes the stall and bubble signals of the pipeline. A
// disabled unit leaves every register on ControlNormal, which is the pure
// forwarding datapath.
type HazardUnit struct {
	enabled bool
}

// NewHazardUnit creates a hazard unit.
func NewHazardUnit(enabled bool) *HazardUnit {
	return &HazardUnit{enabled: enabled}
}

// Enabled reports whether the unit produces stalls and bubbles.
func (h *HazardUnit) Enabled() bool {
	return h.enabled
}

// LoadUse reports whether the instruction in Execute loads a register that
// the instruction in Decode reads. The loaded value only exists after
// Memory, too late to forward into this cycle's Decode.
func (h *HazardUnit) LoadUse(regs *Registers, bus *Bus) bool {
	e := regs.E.Output()
	if e.Op != insts.OpMRMOVQ && e.Op != insts.OpPOPQ {
		return false
	}
	if e.DstM == insts.RegNone {
		return false
	}
	return e.DstM == bus.DSrcA || e.DstM == bus.DSrcB
}

// Mispredicted reports whether the branch in Execute was predicted taken
// but is not taken.
func (h *HazardUnit) Mispredicted(regs *Registers, bus *Bus) bool {
	return regs.E.Output().Op == insts.OpJXX && !bus.ECnd
}

// ReturnInFlight reports whether a ret is in Decode, Execute or Memory.
// The return address is known only once the ret reaches Writeback.
func (h *HazardUnit) ReturnInFlight(regs *Registers) bool {
	return regs.D.Output().Op == insts.OpRET ||
		regs.E.Output().Op == insts.OpRET ||
		regs.M.Output().Op == insts.OpRET
}

// Compute derives the control signals for this cycle.
func (h *HazardUnit) Compute(regs *Registers, bus *Bus) ControlSignals {
	signals := ControlSignals{}
	if !h.enabled {
		return signals
	}

	loadUse := h.LoadUse(regs, bus)
	mispredicted := h.Mispredicted(regs, bus)
	ret := h.ReturnInFlight(regs)
	wStat := regs.W.Output().Stat

	if loadUse || ret {
		signals.F = ControlStall
	}

	if loadUse {
		signals.D = ControlStall
	} else if mispredicted || ret {
		signals.D = ControlBubble
	}

	if mispredicted || loadUse {
		signals.E = ControlBubble
	}

	// Nothing younger than an excepting instruction may reach Memory.
	if bus.MStat.IsException() || wStat.IsException() {
		signals.M = ControlBubble
	}

	if wStat.IsException() {
		signals.W = ControlStall
	}

	return signals
}

// Excepting reports whether an exception is in Memory or Writeback, which
// blocks condition code updates from Execute.
func (h *HazardUnit) Excepting(regs *Registers, bus *Bus) bool {
	if !h.enabled {
		return false
	}
	return bus.MStat.IsException() || regs.W.Output().Stat.IsException()
}
