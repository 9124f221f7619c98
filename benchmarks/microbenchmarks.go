package benchmarks

import (
	_ "embed"
	"strings"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
	"github.com/sarchlab/y86sim/loader"
)

//go:embed programs/asum.yo
var asumListing string

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// targets a specific pipeline characteristic.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		loopSimulation(),
		branchMispredict(),
		arraySum(),
	}
}

// GetCoreBenchmarks returns a minimal set of benchmarks for quick
// validation: a loop, call/return and branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopSimulation(),
		functionCalls(),
		branchMispredict(),
	}
}

// 1. Arithmetic Sequential - independent adds, no hazards
func arithmeticSequential() Benchmark {
	targets := []insts.Reg{insts.RAX, insts.RCX, insts.RDX, insts.RBX}

	parts := make([][]byte, 0, 21)
	for i := range 20 {
		parts = append(parts, insts.EncodeOPQ(insts.FnADD, insts.R8, targets[i%len(targets)]))
	}
	parts = append(parts, insts.EncodeHALT())

	return Benchmark{
		Name:        "arithmetic_sequential",
		Description: "20 adds rotating over 4 registers - measures ALU throughput",
		Setup: func(regFile *emu.RegFile, _ *emu.Memory) {
			_ = regFile.WriteReg(insts.R8, 1)
		},
		Program:     insts.BuildProgram(parts...),
		ExpectedRAX: 5,
	}
}

// 2. Dependency Chain - every add reads the previous result
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent adds (rax += r8) - measures forwarding",
		Program:     buildDependencyChain(20),
		ExpectedRAX: 20,
	}
}

func buildDependencyChain(n int) []byte {
	parts := make([][]byte, 0, n+2)
	parts = append(parts, insts.EncodeIRMOVQ(1, insts.R8))
	for range n {
		parts = append(parts, insts.EncodeOPQ(insts.FnADD, insts.R8, insts.RAX))
	}
	parts = append(parts, insts.EncodeHALT())
	return insts.BuildProgram(parts...)
}

// 3. Memory Sequential - store/load pairs, each load feeding the next store
func memorySequential() Benchmark {
	parts := [][]byte{
		insts.EncodeIRMOVQ(0x400, insts.RBX),
		insts.EncodeIRMOVQ(42, insts.RAX),
	}
	for i := range uint64(10) {
		parts = append(parts,
			insts.EncodeRMMOVQ(insts.RAX, 8*i, insts.RBX),
			insts.EncodeMRMOVQ(8*i, insts.RBX, insts.RAX),
		)
	}
	parts = append(parts, insts.EncodeHALT())

	return Benchmark{
		Name:        "memory_sequential",
		Description: "10 store/load pairs to sequential addresses - measures load/use stalls",
		Program:     insts.BuildProgram(parts...),
		ExpectedRAX: 42,
	}
}

// 4. Function Calls - call/ret pairs
func functionCalls() Benchmark {
	const calls = 5
	// The function body follows the calls and the halt.
	fn := insts.Length(insts.OpIRMOVQ) + calls*insts.Length(insts.OpCALL) + insts.Length(insts.OpHALT)

	parts := [][]byte{insts.EncodeIRMOVQ(0x800, insts.RSP)}
	for range calls {
		parts = append(parts, insts.EncodeCALL(fn))
	}
	parts = append(parts,
		insts.EncodeHALT(),
		insts.EncodeIRMOVQ(1, insts.R8),
		insts.EncodeOPQ(insts.FnADD, insts.R8, insts.RAX),
		insts.EncodeRET(),
	)

	return Benchmark{
		Name:        "function_calls",
		Description: "5 calls to a function adding 1 - measures ret stalls",
		Program:     insts.BuildProgram(parts...),
		ExpectedRAX: calls,
	}
}

// 5. Loop - a counted loop, taken branch on every iteration but the last
func loopSimulation() Benchmark {
	const loop = 22

	return Benchmark{
		Name:        "loop",
		Description: "10 iterations of add/sub/jne - measures the not-taken exit",
		Program: insts.BuildProgram(
			insts.EncodeIRMOVQ(10, insts.RSI),
			insts.EncodeIRMOVQ(1, insts.R9),
			insts.EncodeOPQ(insts.FnXOR, insts.RAX, insts.RAX),
			// loop:
			insts.EncodeOPQ(insts.FnADD, insts.R9, insts.RAX),
			insts.EncodeOPQ(insts.FnSUB, insts.R9, insts.RSI),
			insts.EncodeJXX(insts.CondNE, loop),
			insts.EncodeHALT(),
		),
		ExpectedRAX: 10,
	}
}

// 6. Branch Mispredict - a forward branch that is almost never taken
func branchMispredict() Benchmark {
	const (
		loop = 22
		done = 46
	)

	return Benchmark{
		Name:        "branch_mispredict",
		Description: "8 iterations of a loop whose exit test is predicted taken",
		Program: insts.BuildProgram(
			insts.EncodeIRMOVQ(8, insts.RSI),
			insts.EncodeIRMOVQ(1, insts.R9),
			insts.EncodeOPQ(insts.FnXOR, insts.RAX, insts.RAX),
			// loop:
			insts.EncodeOPQ(insts.FnAND, insts.RSI, insts.RSI),
			insts.EncodeJXX(insts.CondE, done),
			insts.EncodeOPQ(insts.FnADD, insts.R9, insts.RAX),
			insts.EncodeOPQ(insts.FnSUB, insts.R9, insts.RSI),
			insts.EncodeJXX(insts.CondAlways, loop),
			// done:
			insts.EncodeHALT(),
		),
		ExpectedRAX: 8,
	}
}

// 7. Array Sum - the classic asum listing
func arraySum() Benchmark {
	return Benchmark{
		Name:        "array_sum",
		Description: "sum of a 4-element array through call, loop and loads",
		Program:     listingImage(asumListing),
		ExpectedRAX: 0xabcdabcdabcd,
	}
}

// listingImage flattens a listing into a memory image starting at 0.
func listingImage(listing string) []byte {
	prog, err := loader.LoadYO(strings.NewReader(listing))
	if err != nil {
		panic(err)
	}

	var end uint64
	for _, seg := range prog.Segments {
		end = max(end, seg.End())
	}

	image := make([]byte, end)
	for _, seg := range prog.Segments {
		copy(image[seg.Addr:], seg.Data)
	}
	return image
}
