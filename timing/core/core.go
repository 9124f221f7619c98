// Package core provides the cycle-accurate CPU core model.
// It wraps the pipeline in an akita ticking component so the pipeline is
// clocked by an akita engine at a fixed frequency.
package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
	"github.com/sarchlab/y86sim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of stall cycles.
	Stalls uint64
	// Mispredictions is the number of squashed branch predictions.
	Mispredictions uint64
}

// Core represents a cycle-accurate CPU core model.
// Every akita tick runs one pipeline cycle.
type Core struct {
	*sim.TickingComponent

	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	engine sim.Engine
}

// NewCore creates a Core named name, clocked at freq by engine, over the
// given architectural state.
func NewCore(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	regFile *emu.RegFile,
	cc *emu.CondCodes,
	memory *emu.Memory,
	opts ...pipeline.PipelineOption,
) *Core {
	c := &Core{
		Pipeline: pipeline.NewPipeline(regFile, cc, memory, opts...),
		engine:   engine,
	}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	return c
}

// SetPC sets the program counter.
func (c *Core) SetPC(pc uint64) {
	c.Pipeline.SetPC(pc)
}

// Tick executes one pipeline cycle. It reports progress until the pipeline
// stops or runs out of cycles, which lets the engine run out of events.
func (c *Core) Tick() bool {
	if c.Pipeline.Halted() || c.Pipeline.LimitReached() {
		return false
	}

	c.Pipeline.Tick()

	return !c.Pipeline.Halted() && !c.Pipeline.LimitReached()
}

// Halted returns true once an instruction stopped the core.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Status returns the status the core stopped with.
func (c *Core) Status() insts.Status {
	return c.Pipeline.Status()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	pipeStats := c.Pipeline.Stats()
	return Stats{
		Cycles:         pipeStats.Cycles,
		Instructions:   pipeStats.Instructions,
		Stalls:         pipeStats.Stalls,
		Mispredictions: pipeStats.Mispredictions,
	}
}

// Run schedules the first tick and runs the engine until the core stops.
// Returns the final status.
func (c *Core) Run() (insts.Status, error) {
	c.TickLater()

	if err := c.engine.Run(); err != nil {
		return c.Status(), err
	}

	return c.Status(), nil
}

// Now returns the simulated time of the engine.
func (c *Core) Now() sim.VTimeInSec {
	return c.engine.CurrentTime()
}

// Reset clears all core state.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}
