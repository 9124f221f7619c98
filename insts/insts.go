// Package insts provides Y86-64 instruction definitions and decoding.
//
// Every instruction starts with one byte whose high nibble is the
// instruction code (Op) and whose low nibble is the function (Fn). It may be
// followed by a register specifier byte (rA in the high nibble, rB in the
// low nibble) and by an 8-byte little-endian constant (valC):
//
//	halt                 00
//	nop                  10
//	cmovXX rA, rB        2fn rArB
//	irmovq V, rB         30 FrB V
//	rmmovq rA, D(rB)     40 rArB D
//	mrmovq D(rB), rA     50 rArB D
//	OPq rA, rB           6fn rArB
//	jXX Dest             7fn Dest
//	call Dest            80 Dest
//	ret                  90
//	pushq rA             A0 rAF
//	popq rA              B0 rAF
package insts

import "fmt"

// Op is the instruction code held in the high nibble of the first byte.
type Op uint8

// Y86-64 instruction codes.
const (
	OpHALT   Op = 0x0
	OpNOP    Op = 0x1
	OpRRMOVQ Op = 0x2 // rrmovq and the cmovXX family
	OpIRMOVQ Op = 0x3
	OpRMMOVQ Op = 0x4
	OpMRMOVQ Op = 0x5
	OpOPQ    Op = 0x6
	OpJXX    Op = 0x7
	OpCALL   Op = 0x8
	OpRET    Op = 0x9
	OpPUSHQ  Op = 0xA
	OpPOPQ   Op = 0xB
)

var opNames = [...]string{
	OpHALT:   "halt",
	OpNOP:    "nop",
	OpRRMOVQ: "rrmovq",
	OpIRMOVQ: "irmovq",
	OpRMMOVQ: "rmmovq",
	OpMRMOVQ: "mrmovq",
	OpOPQ:    "opq",
	OpJXX:    "jxx",
	OpCALL:   "call",
	OpRET:    "ret",
	OpPUSHQ:  "pushq",
	OpPOPQ:   "popq",
}

// Valid reports whether op is one of the defined instruction codes.
func (op Op) Valid() bool {
	return op <= OpPOPQ
}

func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("op(%#x)", uint8(op))
	}
	return opNames[op]
}

// Fn is the instruction function held in the low nibble of the first byte.
// For OPq it selects the ALU operation; for cmovXX and jXX it selects the
// condition (see Cond).
type Fn uint8

// ALU function selectors.
const (
	FnADD Fn = 0x0
	FnSUB Fn = 0x1
	FnAND Fn = 0x2
	FnXOR Fn = 0x3
)

// Cond is a branch / conditional move condition.
type Cond uint8

// Y86-64 conditions.
const (
	CondAlways Cond = 0x0 // jmp, rrmovq
	CondLE     Cond = 0x1 // (SF ^ OF) | ZF
	CondL      Cond = 0x2 // SF ^ OF
	CondE      Cond = 0x3 // ZF
	CondNE     Cond = 0x4 // !ZF
	CondGE     Cond = 0x5 // !(SF ^ OF)
	CondG      Cond = 0x6 // !(SF ^ OF) & !ZF
)

var condSuffix = [...]string{
	CondAlways: "",
	CondLE:     "le",
	CondL:      "l",
	CondE:      "e",
	CondNE:     "ne",
	CondGE:     "ge",
	CondG:      "g",
}

// Suffix returns the mnemonic suffix of the condition ("" for always).
func (c Cond) Suffix() string {
	if int(c) >= len(condSuffix) {
		return fmt.Sprintf("?%d", uint8(c))
	}
	return condSuffix[c]
}

// Reg is a register identifier.
type Reg uint8

// Program registers.
const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// NumRegs is the number of program registers.
const NumRegs = 16

// RegNone marks an operand slot that names no register. It lies outside
// the 0-15 range so it can never alias a real register.
const RegNone Reg = 0xFF

var regNames = [NumRegs]string{
	"%rax", "%rcx", "%rdx", "%rbx", "%rsp", "%rbp", "%rsi", "%rdi",
	"%r8", "%r9", "%r10", "%r11", "%r12", "%r13", "%r14", "%r15",
}

// Valid reports whether r names a program register.
func (r Reg) Valid() bool {
	return r < NumRegs
}

func (r Reg) String() string {
	if r == RegNone {
		return "none"
	}
	if !r.Valid() {
		return fmt.Sprintf("r?%d", uint8(r))
	}
	return regNames[r]
}

// Status is the per-instruction status code carried down the pipeline.
type Status uint8

// Status codes.
const (
	StatusAOK Status = 1 // normal operation
	StatusHLT Status = 2 // halt instruction encountered
	StatusADR Status = 3 // invalid address
	StatusINS Status = 4 // invalid instruction
)

func (s Status) String() string {
	switch s {
	case StatusAOK:
		return "AOK"
	case StatusHLT:
		return "HLT"
	case StatusADR:
		return "ADR"
	case StatusINS:
		return "INS"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// IsException reports whether the status stops normal execution.
func (s Status) IsException() bool {
	return s == StatusHLT || s == StatusADR || s == StatusINS
}

// NeedsRegIDs reports whether the instruction carries a register
// specifier byte.
func NeedsRegIDs(op Op) bool {
	switch op {
	case OpRRMOVQ, OpOPQ, OpPUSHQ, OpPOPQ, OpIRMOVQ, OpRMMOVQ, OpMRMOVQ:
		return true
	default:
		return false
	}
}

// NeedsValC reports whether the instruction carries an 8-byte constant.
func NeedsValC(op Op) bool {
	switch op {
	case OpIRMOVQ, OpRMMOVQ, OpMRMOVQ, OpJXX, OpCALL:
		return true
	default:
		return false
	}
}

// Length returns the encoded size of an instruction in bytes: 1, 2, 9 or 10.
func Length(op Op) uint64 {
	n := uint64(1)
	if NeedsRegIDs(op) {
		n++
	}
	if NeedsValC(op) {
		n += 8
	}
	return n
}
