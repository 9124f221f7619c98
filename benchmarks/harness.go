// Package benchmarks provides the Y86-64 pipeline benchmark harness.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
	"github.com/sarchlab/y86sim/timing/pipeline"
)

// Version is reported in JSON benchmark reports.
const Version = "0.1.0"

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the total cycle count from the pipeline
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of instructions that reached
	// Writeback
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of cycles Fetch was stalled
	StallCycles uint64 `json:"stall_cycles"`

	// Bubbles is the number of bubbles injected
	Bubbles uint64 `json:"bubbles"`

	// Mispredictions is the number of mispredicted branches
	Mispredictions uint64 `json:"mispredictions"`

	// Status is the final pipeline status
	Status string `json:"status"`

	// RAX is the final value of %rax
	RAX uint64 `json:"rax"`

	// Passed reports whether the program halted with the expected %rax
	Passed bool `json:"passed"`

	// Error is set when the benchmark could not be loaded
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the architectural state before the program runs
	Setup func(regFile *emu.RegFile, memory *emu.Memory)

	// Program is the Y86-64 machine code, loaded at address 0
	Program []byte

	// ExpectedRAX is the expected final value of %rax
	ExpectedRAX uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// HazardUnit enables pipeline stalls and bubbles
	HazardUnit bool

	// MaxCycles bounds each benchmark. Zero means unbounded.
	MaxCycles uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Logger receives pipeline logs (default: warnings only)
	Logger *logrus.Logger
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		HazardUnit: true,
		MaxCycles:  100000,
		Output:     os.Stdout,
	}
}

// Harness runs timing benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
		config.Logger.SetLevel(logrus.WarnLevel)
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}

	return results
}

// runBenchmark executes a single benchmark on fresh state.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	regFile := &emu.RegFile{}
	cc := emu.NewCondCodes()
	memory := emu.NewMemory(0)

	if err := memory.Load(0, bench.Program); err != nil {
		result.Error = err.Error()
		return result
	}
	if bench.Setup != nil {
		bench.Setup(regFile, memory)
	}

	pipe := pipeline.NewPipeline(regFile, cc, memory,
		pipeline.WithHazardUnit(h.config.HazardUnit),
		pipeline.WithMaxCycles(h.config.MaxCycles),
		pipeline.WithLogger(h.config.Logger),
	)

	start := time.Now()
	status := pipe.Run()
	result.WallTime = time.Since(start)

	stats := pipe.Stats()
	result.SimulatedCycles = stats.Cycles
	result.InstructionsRetired = stats.Instructions
	result.CPI = stats.CPI()
	result.StallCycles = stats.Stalls
	result.Bubbles = stats.Bubbles
	result.Mispredictions = stats.Mispredictions
	result.Status = status.String()
	result.RAX = regFile.X[insts.RAX]
	result.Passed = status == insts.StatusHLT && result.RAX == bench.ExpectedRAX

	h.config.Logger.WithFields(logrus.Fields{
		"benchmark": bench.Name,
		"cycles":    stats.Cycles,
		"passed":    result.Passed,
	}).Debug("benchmark finished")

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	out := h.config.Output

	_, _ = fmt.Fprintln(out, "=== Y86-64 Pipeline Benchmark Results ===")
	_, _ = fmt.Fprintln(out, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(out, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(out, "  Description: %s\n", r.Description)
		if r.Error != "" {
			_, _ = fmt.Fprintf(out, "  Error: %s\n", r.Error)
			_, _ = fmt.Fprintln(out, "")
			continue
		}
		_, _ = fmt.Fprintf(out, "  Status: %s  %%rax: 0x%x  Passed: %t\n", r.Status, r.RAX, r.Passed)
		_, _ = fmt.Fprintln(out, "  --- Timing ---")
		_, _ = fmt.Fprintf(out, "  Simulated Cycles:     %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(out, "  Instructions Retired: %d\n", r.InstructionsRetired)
		_, _ = fmt.Fprintf(out, "  CPI:                  %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(out, "  Stall Cycles:         %d\n", r.StallCycles)
		_, _ = fmt.Fprintf(out, "  Bubbles:              %d\n", r.Bubbles)
		_, _ = fmt.Fprintf(out, "  Mispredictions:       %d\n", r.Mispredictions)
		_, _ = fmt.Fprintf(out, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(out, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,instructions,cpi,stalls,bubbles,mispredictions,status,rax,passed")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%.3f,%d,%d,%d,%s,%d,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.InstructionsRetired,
			r.CPI,
			r.StallCycles,
			r.Bubbles,
			r.Mispredictions,
			r.Status,
			r.RAX,
			r.Passed,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	Timestamp  string `json:"timestamp"`
	Version    string `json:"version"`
	HazardUnit bool   `json:"hazard_unit"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Passed            int           `json:"passed"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalInstructions += r.InstructionsRetired
		summary.TotalWallTime += r.WallTime
		if r.Passed {
			summary.Passed++
		}
	}
	if summary.TotalInstructions > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalInstructions)
	}
	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Version:    Version,
			HazardUnit: h.config.HazardUnit,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
