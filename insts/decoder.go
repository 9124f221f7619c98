package insts

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidOp is returned when the first byte does not hold a known
// instruction code.
var ErrInvalidOp = errors.New("invalid instruction code")

// ErrTruncated is returned when fewer bytes are available than the
// instruction code requires.
var ErrTruncated = errors.New("truncated instruction")

// Instruction represents a decoded Y86-64 instruction.
type Instruction struct {
	Op   Op     // Instruction code
	Fn   Fn     // Instruction function
	RA   Reg    // Register specifier A, RegNone if absent
	RB   Reg    // Register specifier B, RegNone if absent
	ValC uint64 // Constant word, 0 if absent
	Len  uint64 // Encoded length in bytes
}

// Cond returns the function field interpreted as a condition.
func (i *Instruction) Cond() Cond {
	return Cond(i.Fn)
}

// Decoder decodes Y86-64 machine code into Instructions.
type Decoder struct{}

// NewDecoder creates a new Y86-64 decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes the instruction at the start of code.
func (d *Decoder) Decode(code []byte) (*Instruction, error) {
	if len(code) == 0 {
		return nil, ErrTruncated
	}

	inst := &Instruction{
		Op: Op(code[0] >> 4),
		Fn: Fn(code[0] & 0xF),
		RA: RegNone,
		RB: RegNone,
	}
	if !inst.Op.Valid() {
		return nil, fmt.Errorf("%w: %#02x", ErrInvalidOp, code[0])
	}

	inst.Len = Length(inst.Op)
	if uint64(len(code)) < inst.Len {
		return nil, fmt.Errorf("%w: %s needs %d bytes, have %d",
			ErrTruncated, inst.Op, inst.Len, len(code))
	}

	off := 1
	if NeedsRegIDs(inst.Op) {
		inst.RA = Reg(code[1] >> 4)
		inst.RB = Reg(code[1] & 0xF)
		off++
	}
	if NeedsValC(inst.Op) {
		inst.ValC = binary.LittleEndian.Uint64(code[off : off+8])
	}

	return inst, nil
}

var aluNames = [...]string{
	FnADD: "addq",
	FnSUB: "subq",
	FnAND: "andq",
	FnXOR: "xorq",
}

// String renders the instruction in assembler syntax.
func (i *Instruction) String() string {
	switch i.Op {
	case OpHALT, OpNOP, OpRET:
		return i.Op.String()
	case OpRRMOVQ:
		name := "rrmovq"
		if i.Cond() != CondAlways {
			name = "cmov" + i.Cond().Suffix()
		}
		return fmt.Sprintf("%s %s, %s", name, i.RA, i.RB)
	case OpIRMOVQ:
		return fmt.Sprintf("irmovq $%d, %s", int64(i.ValC), i.RB)
	case OpRMMOVQ:
		return fmt.Sprintf("rmmovq %s, %d(%s)", i.RA, int64(i.ValC), i.RB)
	case OpMRMOVQ:
		return fmt.Sprintf("mrmovq %d(%s), %s", int64(i.ValC), i.RB, i.RA)
	case OpOPQ:
		if int(i.Fn) < len(aluNames) {
			return fmt.Sprintf("%s %s, %s", aluNames[i.Fn], i.RA, i.RB)
		}
		return fmt.Sprintf("opq?%d %s, %s", i.Fn, i.RA, i.RB)
	case OpJXX:
		if i.Cond() == CondAlways {
			return fmt.Sprintf("jmp %#x", i.ValC)
		}
		return fmt.Sprintf("j%s %#x", i.Cond().Suffix(), i.ValC)
	case OpCALL:
		return fmt.Sprintf("call %#x", i.ValC)
	case OpPUSHQ, OpPOPQ:
		return fmt.Sprintf("%s %s", i.Op, i.RA)
	default:
		return i.Op.String()
	}
}
