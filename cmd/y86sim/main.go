// Package main provides the y86sim command line simulator.
// It loads a Y86-64 object listing (.yo) and runs it on the 5-stage
// pipeline, then reports the final status and the state that changed.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/y86sim/config"
	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
	"github.com/sarchlab/y86sim/loader"
	"github.com/sarchlab/y86sim/timing/core"
	"github.com/sarchlab/y86sim/timing/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	maxCycles  uint64
	noHazard   bool
	verbose    bool
	trace      bool
	akita      bool
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("y86sim", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts options
	flags.StringVar(&opts.configPath, "config", "", "Path to simulator configuration JSON file")
	flags.Uint64Var(&opts.maxCycles, "max-cycles", 0, "Stop after this many cycles (overrides config)")
	flags.BoolVar(&opts.noHazard, "no-hazard", false, "Disable stalls and bubbles (forwarding only)")
	flags.BoolVar(&opts.verbose, "v", false, "Verbose output, including the program disassembly")
	flags.BoolVar(&opts.trace, "trace", false, "Dump the pipeline registers every cycle")
	flags.BoolVar(&opts.akita, "akita", false, "Clock the pipeline with the akita engine")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() < 1 {
		_, _ = fmt.Fprintf(stderr, "Usage: y86sim [options] <program.yo>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		flags.PrintDefaults()
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	logger := newLogger(cfg, stderr)
	programPath := flags.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	memory := emu.NewMemory(cfg.MemorySize)
	if err := prog.LoadInto(memory); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}
	initial := emu.NewMemory(cfg.MemorySize)
	_ = prog.LoadInto(initial)

	logger.WithFields(logrus.Fields{
		"program":  programPath,
		"segments": len(prog.Segments),
		"bytes":    prog.Size(),
	}).Info("program loaded")

	if opts.verbose {
		_, _ = fmt.Fprintln(stderr, "Disassembly:")
		prog.Disassemble(stderr)
	}

	regFile := &emu.RegFile{}
	cc := emu.NewCondCodes()
	pipeOpts := []pipeline.PipelineOption{
		pipeline.WithHazardUnit(cfg.HazardUnit),
		pipeline.WithMaxCycles(cfg.MaxCycles),
		pipeline.WithTrace(cfg.Trace),
		pipeline.WithLogger(logger),
	}

	var stats pipeline.Statistics
	var status insts.Status
	if opts.akita {
		engine := sim.NewSerialEngine()
		freq := sim.Freq(cfg.FrequencyMHz) * sim.MHz
		c := core.NewCore("Core", engine, freq, regFile, cc, memory, pipeOpts...)

		status, err = c.Run()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error running engine: %v\n", err)
			return 1
		}
		stats = c.Pipeline.Stats()

		logger.WithFields(logrus.Fields{
			"time": float64(c.Now()),
		}).Info("engine finished")
	} else {
		pipe := pipeline.NewPipeline(regFile, cc, memory, pipeOpts...)
		status = pipe.Run()
		stats = pipe.Stats()
	}

	report(stdout, programPath, status, stats, regFile, cc, initial, memory)

	if status != insts.StatusHLT {
		return 1
	}
	return 0
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.maxCycles > 0 {
		cfg.MaxCycles = opts.maxCycles
	}
	if opts.noHazard {
		cfg.HazardUnit = false
	}
	if opts.trace {
		cfg.Trace = true
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	if opts.verbose && !opts.trace {
		cfg.LogLevel = logrus.InfoLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, _ := cfg.Level()
	logger.SetLevel(level)

	return logger
}

// report prints the final state. Registers are listed when nonzero and
// memory words when they differ from the loaded image.
func report(
	out io.Writer,
	programPath string,
	status insts.Status,
	stats pipeline.Statistics,
	regFile *emu.RegFile,
	cc *emu.CondCodes,
	initial, memory *emu.Memory,
) {
	_, _ = fmt.Fprintf(out, "Program: %s\n", programPath)
	_, _ = fmt.Fprintf(out, "Status: %s\n", status)
	_, _ = fmt.Fprintf(out, "Cycles: %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(out, "Instructions: %d\n", stats.Instructions)
	_, _ = fmt.Fprintf(out, "CPI: %.2f\n", stats.CPI())
	_, _ = fmt.Fprintf(out, "Stalls: %d  Bubbles: %d  Mispredictions: %d\n",
		stats.Stalls, stats.Bubbles, stats.Mispredictions)
	_, _ = fmt.Fprintf(out, "Condition codes: %s\n", cc)

	_, _ = fmt.Fprintln(out, "Changes to registers:")
	for r := insts.Reg(0); r < insts.NumRegs; r++ {
		if v := regFile.X[r]; v != 0 {
			_, _ = fmt.Fprintf(out, "%-5s 0x%016x\n", r.String()+":", v)
		}
	}

	_, _ = fmt.Fprintln(out, "Changes to memory:")
	for addr := uint64(0); addr+8 <= memory.Size(); addr += 8 {
		before, _ := initial.Read64(addr)
		after, _ := memory.Read64(addr)
		if before != after {
			_, _ = fmt.Fprintf(out, "0x%04x: 0x%016x 0x%016x\n", addr, before, after)
		}
	}
}
