package insts

import "encoding/binary"

// Encode returns the machine code of inst. Absent register specifiers
// encode as 0xF.
func Encode(inst Instruction) []byte {
	code := make([]byte, 0, Length(inst.Op))
	code = append(code, byte(inst.Op)<<4|byte(inst.Fn)&0xF)

	if NeedsRegIDs(inst.Op) {
		code = append(code, regNibble(inst.RA)<<4|regNibble(inst.RB))
	}
	if NeedsValC(inst.Op) {
		code = binary.LittleEndian.AppendUint64(code, inst.ValC)
	}

	return code
}

func regNibble(r Reg) byte {
	if r == RegNone {
		return 0xF
	}
	return byte(r) & 0xF
}

// Helper functions for building Y86-64 programs.

// EncodeHALT encodes halt.
func EncodeHALT() []byte {
	return Encode(Instruction{Op: OpHALT})
}

// EncodeNOP encodes nop.
func EncodeNOP() []byte {
	return Encode(Instruction{Op: OpNOP})
}

// EncodeRRMOVQ encodes rrmovq rA, rB.
func EncodeRRMOVQ(rA, rB Reg) []byte {
	return EncodeCMOV(CondAlways, rA, rB)
}

// EncodeCMOV encodes cmovXX rA, rB.
func EncodeCMOV(cond Cond, rA, rB Reg) []byte {
	return Encode(Instruction{Op: OpRRMOVQ, Fn: Fn(cond), RA: rA, RB: rB})
}

// EncodeIRMOVQ encodes irmovq $v, rB.
func EncodeIRMOVQ(v uint64, rB Reg) []byte {
	return Encode(Instruction{Op: OpIRMOVQ, RA: RegNone, RB: rB, ValC: v})
}

// EncodeRMMOVQ encodes rmmovq rA, d(rB).
func EncodeRMMOVQ(rA Reg, d uint64, rB Reg) []byte {
	return Encode(Instruction{Op: OpRMMOVQ, RA: rA, RB: rB, ValC: d})
}

// EncodeMRMOVQ encodes mrmovq d(rB), rA.
func EncodeMRMOVQ(d uint64, rB, rA Reg) []byte {
	return Encode(Instruction{Op: OpMRMOVQ, RA: rA, RB: rB, ValC: d})
}

// EncodeOPQ encodes addq, subq, andq or xorq rA, rB.
func EncodeOPQ(fn Fn, rA, rB Reg) []byte {
	return Encode(Instruction{Op: OpOPQ, Fn: fn, RA: rA, RB: rB})
}

// EncodeJXX encodes jXX dest.
func EncodeJXX(cond Cond, dest uint64) []byte {
	return Encode(Instruction{Op: OpJXX, Fn: Fn(cond), ValC: dest})
}

// EncodeCALL encodes call dest.
func EncodeCALL(dest uint64) []byte {
	return Encode(Instruction{Op: OpCALL, ValC: dest})
}

// EncodeRET encodes ret.
func EncodeRET() []byte {
	return Encode(Instruction{Op: OpRET})
}

// EncodePUSHQ encodes pushq rA.
func EncodePUSHQ(rA Reg) []byte {
	return Encode(Instruction{Op: OpPUSHQ, RA: rA, RB: RegNone})
}

// EncodePOPQ encodes popq rA.
func EncodePOPQ(rA Reg) []byte {
	return Encode(Instruction{Op: OpPOPQ, RA: rA, RB: RegNone})
}

// BuildProgram concatenates encoded instructions.
func BuildProgram(parts ...[]byte) []byte {
	var program []byte
	for _, p := range parts {
		program = append(program, p...)
	}
	return program
}
