package emu

import (
	"errors"
	"fmt"
)

// DefaultMemorySize is the size of the Y86-64 address space in bytes.
const DefaultMemorySize = 0x1000

// ErrAddressOutOfRange is returned for accesses that fall outside memory.
var ErrAddressOutOfRange = errors.New("address out of range")

// Memory is a flat, byte-addressable, little-endian memory.
type Memory struct {
	data []byte
}

// NewMemory creates a zero-filled memory of the given size. A size of 0
// selects DefaultMemorySize.
func NewMemory(size uint64) *Memory {
	if size == 0 {
		size = DefaultMemorySize
	}
	return &Memory{data: make([]byte, size)}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() uint64 {
	return uint64(len(m.data))
}

// Check reports whether n bytes starting at addr are addressable.
func (m *Memory) Check(addr, n uint64) error {
	if addr >= m.Size() || n > m.Size()-addr {
		return fmt.Errorf("%w: %#x (%d bytes)", ErrAddressOutOfRange, addr, n)
	}
	return nil
}

// Read8 reads one byte.
func (m *Memory) Read8(addr uint64) (uint8, error) {
	if err := m.Check(addr, 1); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// Write8 writes one byte.
func (m *Memory) Write8(addr uint64, value uint8) error {
	if err := m.Check(addr, 1); err != nil {
		return err
	}
	m.data[addr] = value
	return nil
}

// Read64 reads a little-endian 64-bit word.
func (m *Memory) Read64(addr uint64) (uint64, error) {
	if err := m.Check(addr, wordBytes); err != nil {
		return 0, err
	}
	var bytes [wordBytes]uint8
	copy(bytes[:], m.data[addr:addr+wordBytes])
	return BuildLong(bytes), nil
}

// Write64 writes a little-endian 64-bit word. Nothing is written if any
// byte of the word is out of range.
func (m *Memory) Write64(addr uint64, value uint64) error {
	if err := m.Check(addr, wordBytes); err != nil {
		return err
	}
	for i := 0; i < wordBytes; i++ {
		m.data[addr+uint64(i)] = GetByte(value, i)
	}
	return nil
}

// Load copies data into memory starting at addr.
func (m *Memory) Load(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := m.Check(addr, uint64(len(data))); err != nil {
		return err
	}
	copy(m.data[addr:], data)
	return nil
}

// Reset zero-fills memory.
func (m *Memory) Reset() {
	clear(m.data)
}
