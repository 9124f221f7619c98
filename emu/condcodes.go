package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/y86sim/insts"
)

// ErrInvalidFlag is returned for an unknown condition code kind.
var ErrInvalidFlag = errors.New("invalid condition code flag")

// Flag names one condition code bit.
type Flag uint8

// Condition code flags.
const (
	FlagZF Flag = iota // result was zero
	FlagSF             // result was negative
	FlagOF             // two's complement overflow
)

// CondCodes holds the Y86-64 condition codes. Only OPq instructions write
// them.
type CondCodes struct {
	ZF bool
	SF bool
	OF bool
}

// NewCondCodes returns condition codes in their reset state (ZF set).
func NewCondCodes() *CondCodes {
	cc := &CondCodes{}
	cc.Reset()
	return cc
}

// Reset restores the reset state: ZF=1, SF=0, OF=0.
func (c *CondCodes) Reset() {
	c.ZF = true
	c.SF = false
	c.OF = false
}

// Flag returns the value of one flag.
func (c *CondCodes) Flag(kind Flag) (bool, error) {
	switch kind {
	case FlagZF:
		return c.ZF, nil
	case FlagSF:
		return c.SF, nil
	case FlagOF:
		return c.OF, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrInvalidFlag, kind)
	}
}

// SetFlag sets the value of one flag.
func (c *CondCodes) SetFlag(kind Flag, value bool) error {
	switch kind {
	case FlagZF:
		c.ZF = value
	case FlagSF:
		c.SF = value
	case FlagOF:
		c.OF = value
	default:
		return fmt.Errorf("%w: %d", ErrInvalidFlag, kind)
	}
	return nil
}

// Check evaluates a jXX / cmovXX condition against the flags. Unknown
// conditions evaluate to false.
func (c *CondCodes) Check(cond insts.Cond) bool {
	lt := c.SF != c.OF

	switch cond {
	case insts.CondAlways:
		return true
	case insts.CondLE:
		return lt || c.ZF
	case insts.CondL:
		return lt
	case insts.CondE:
		return c.ZF
	case insts.CondNE:
		return !c.ZF
	case insts.CondGE:
		return !lt
	case insts.CondG:
		return !lt && !c.ZF
	default:
		return false
	}
}

func (c *CondCodes) String() string {
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return fmt.Sprintf("ZF=%d SF=%d OF=%d", b(c.ZF), b(c.SF), b(c.OF))
}
