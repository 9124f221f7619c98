// Command benchmark runs the y86sim pipeline benchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: human-readable)
//	-json       Output results as a JSON report
//	-no-hazard  Disable stalls and bubbles (forwarding only)
//	-core       Run only the core benchmarks
//
// Example:
//
//	# Compare the pipeline with and without the hazard unit
//	go run ./cmd/benchmark -csv > with.csv
//	go run ./cmd/benchmark -csv -no-hazard > without.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/y86sim/benchmarks"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as a JSON report")
	noHazard := flag.Bool("no-hazard", false, "Disable stalls and bubbles")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.HazardUnit = !*noHazard
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("y86sim Pipeline Benchmark Harness")
		fmt.Println("=================================")
		fmt.Printf("Hazard unit: %v\n", config.HazardUnit)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Passed: %d/%d\n", summary.Passed, summary.TotalBenchmarks)
		fmt.Printf("Average CPI: %.3f\n", summary.AverageCPI)
	}
}
