// Package emu provides the architectural state of a Y86-64 machine: the
// register file, the condition codes, memory, and the bit utilities the
// pipeline stages use to pick instructions apart.
package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/y86sim/insts"
)

// ErrInvalidRegister is returned for register ids outside 0-15, including
// insts.RegNone.
var ErrInvalidRegister = errors.New("invalid register")

// RegFile represents the Y86-64 register file.
// It contains 16 general-purpose 64-bit registers.
type RegFile struct {
	// X holds the general-purpose registers, indexed by insts.Reg.
	X [insts.NumRegs]uint64
}

// ReadReg reads a register value.
func (r *RegFile) ReadReg(id insts.Reg) (uint64, error) {
	if !id.Valid() {
		return 0, fmt.Errorf("%w: read %s", ErrInvalidRegister, id)
	}
	return r.X[id], nil
}

// WriteReg writes a value to a register.
func (r *RegFile) WriteReg(id insts.Reg, value uint64) error {
	if !id.Valid() {
		return fmt.Errorf("%w: write %s", ErrInvalidRegister, id)
	}
	r.X[id] = value
	return nil
}

// Reset clears every register.
func (r *RegFile) Reset() {
	r.X = [insts.NumRegs]uint64{}
}
