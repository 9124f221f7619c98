// Package main provides the entry point for y86sim.
// y86sim is a cycle-level Y86-64 five-stage pipeline simulator built on Akita.
//
// For the full CLI, use: go run ./cmd/y86sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("y86sim - Y86-64 Pipeline Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: y86sim [options] <program.yo>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config      Path to simulator configuration JSON file")
	fmt.Println("  -max-cycles  Stop after this many cycles")
	fmt.Println("  -no-hazard   Disable stalls and bubbles (forwarding only)")
	fmt.Println("  -akita       Clock the pipeline with the akita engine")
	fmt.Println("  -trace       Dump the pipeline registers every cycle")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/y86sim' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/benchmark' for the pipeline benchmarks.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/y86sim' instead.")
	}
}
