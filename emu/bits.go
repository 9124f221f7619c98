package emu

// Bit numbers run from 0 (least significant) to 63. Ranges are inclusive
// at both ends: GetBits(x, 4, 7) is the high nibble of the low byte.

const (
	wordBits  = 64
	wordBytes = 8
)

func validRange(low, high int) bool {
	return low >= 0 && high < wordBits && low <= high
}

// rangeMask returns a mask with bits low through high set.
func rangeMask(low, high int) uint64 {
	width := high - low + 1
	if width == wordBits {
		return ^uint64(0)
	}
	return ((uint64(1) << width) - 1) << low
}

// GetBits returns bits low through high of source, shifted down to bit 0.
// It returns 0 if the range is invalid.
func GetBits(source uint64, low, high int) uint64 {
	if !validRange(low, high) {
		return 0
	}
	return (source & rangeMask(low, high)) >> low
}

// SetBits sets bits low through high of source to 1. It returns source
// unchanged if the range is invalid.
func SetBits(source uint64, low, high int) uint64 {
	if !validRange(low, high) {
		return source
	}
	return source | rangeMask(low, high)
}

// ClearBits clears bits low through high of source. It returns source
// unchanged if the range is invalid.
func ClearBits(source uint64, low, high int) uint64 {
	if !validRange(low, high) {
		return source
	}
	return source &^ rangeMask(low, high)
}

// CopyBits copies length bits of source starting at srcLow into dest
// starting at destLow. It returns dest unchanged if either range falls
// outside the word.
func CopyBits(source, dest uint64, srcLow, destLow, length int) uint64 {
	if length <= 0 || srcLow < 0 || destLow < 0 ||
		srcLow+length > wordBits || destLow+length > wordBits {
		return dest
	}
	bits := GetBits(source, srcLow, srcLow+length-1)
	dest = ClearBits(dest, destLow, destLow+length-1)
	return dest | bits<<destLow
}

// GetByte returns byte byteNum (0 is the low order byte) of source, or 0 if
// byteNum is out of range.
func GetByte(source uint64, byteNum int) uint8 {
	if byteNum < 0 || byteNum >= wordBytes {
		return 0
	}
	return uint8(source >> (byteNum * 8))
}

// SetByte sets every bit of byte byteNum of source to 1. It returns source
// unchanged if byteNum is out of range.
func SetByte(source uint64, byteNum int) uint64 {
	if byteNum < 0 || byteNum >= wordBytes {
		return source
	}
	return SetBits(source, byteNum*8, byteNum*8+7)
}

// PutByte replaces byte byteNum of source with value. It returns source
// unchanged if byteNum is out of range.
func PutByte(source uint64, value uint8, byteNum int) uint64 {
	if byteNum < 0 || byteNum >= wordBytes {
		return source
	}
	return CopyBits(uint64(value), source, 0, byteNum*8, 8)
}

// BuildLong assembles a word from little-endian bytes: bytes[0] becomes the
// low order byte.
func BuildLong(bytes [wordBytes]uint8) uint64 {
	var word uint64
	for i := wordBytes - 1; i >= 0; i-- {
		word = word<<8 | uint64(bytes[i])
	}
	return word
}

// Sign returns the sign bit of source read as a two's complement value.
func Sign(source uint64) uint64 {
	return source >> 63
}

// AddOverflow reports whether op1 + op2 overflows as a signed 64-bit sum.
func AddOverflow(op1, op2 uint64) bool {
	sum := op1 + op2
	return Sign(op1) == Sign(op2) && Sign(sum) != Sign(op1)
}

// SubOverflow reports whether op2 - op1 overflows as a signed 64-bit
// difference. The operand order matches the ALU, which subtracts its first
// operand from its second.
func SubOverflow(op1, op2 uint64) bool {
	diff := op2 - op1
	return Sign(op1) != Sign(op2) && Sign(diff) != Sign(op2)
}
