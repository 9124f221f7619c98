// Package loader reads Y86-64 object listings (.yo files) produced by the
// Y86-64 assembler.
//
// Each listing line has an address, the encoded bytes and the source text:
//
//	0x014: 30f20a00000000000000 | irmovq $10,%rdx
//
// Lines without an address, or with an address but no bytes, carry only
// comments and labels and are skipped.
package loader

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
)

// ErrMalformedLine is returned for a listing line that cannot be parsed.
var ErrMalformedLine = errors.New("malformed listing line")

// Segment is a run of contiguous bytes from the listing.
type Segment struct {
	// Addr is the address of the first byte.
	Addr uint64
	// Data contains the encoded bytes.
	Data []byte
}

// End returns the address after the last byte.
func (s Segment) End() uint64 {
	return s.Addr + uint64(len(s.Data))
}

// Program is a parsed listing. Execution starts at address 0.
type Program struct {
	// Segments are sorted in listing order; adjacent lines are merged.
	Segments []Segment
}

// Size returns the total number of bytes in the program.
func (p *Program) Size() uint64 {
	var n uint64
	for _, seg := range p.Segments {
		n += uint64(len(seg.Data))
	}
	return n
}

// Load parses the listing at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}
	defer func() { _ = f.Close() }()

	return LoadYO(f)
}

// LoadYO parses a listing.
func LoadYO(r io.Reader) (*Program, error) {
	prog := &Program{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		addr, data, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(data) == 0 {
			continue
		}

		prog.add(addr, data)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing: %w", err)
	}

	return prog, nil
}

func (p *Program) add(addr uint64, data []byte) {
	if n := len(p.Segments); n > 0 && p.Segments[n-1].End() == addr {
		p.Segments[n-1].Data = append(p.Segments[n-1].Data, data...)
		return
	}
	p.Segments = append(p.Segments, Segment{Addr: addr, Data: data})
}

// parseLine returns the address and bytes of one listing line. A line
// without bytes returns nil data.
func parseLine(line string) (uint64, []byte, error) {
	code, _, _ := strings.Cut(line, "|")
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, nil, nil
	}

	addrText, dataText, ok := strings.Cut(code, ":")
	if !ok || !strings.HasPrefix(addrText, "0x") {
		return 0, nil, fmt.Errorf("%w: %q", ErrMalformedLine, code)
	}

	addr, err := strconv.ParseUint(addrText[2:], 16, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: bad address %q", ErrMalformedLine, addrText)
	}

	dataText = strings.TrimSpace(dataText)
	if dataText == "" {
		return addr, nil, nil
	}

	data, err := hex.DecodeString(dataText)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: bad bytes %q", ErrMalformedLine, dataText)
	}

	return addr, data, nil
}

// LoadInto copies every segment into memory.
func (p *Program) LoadInto(memory *emu.Memory) error {
	for _, seg := range p.Segments {
		if err := memory.Load(seg.Addr, seg.Data); err != nil {
			return fmt.Errorf("failed to load segment at 0x%x: %w", seg.Addr, err)
		}
	}
	return nil
}

// Disassemble writes one line per decoded instruction of every segment.
// Bytes that do not decode, such as data words, are written as .byte.
func (p *Program) Disassemble(w io.Writer) {
	decoder := insts.NewDecoder()

	for _, seg := range p.Segments {
		for off := uint64(0); off < uint64(len(seg.Data)); {
			addr := seg.Addr + off

			inst, err := decoder.Decode(seg.Data[off:])
			if err != nil {
				_, _ = fmt.Fprintf(w, "0x%03x: .byte 0x%02x\n", addr, seg.Data[off])
				off++
				continue
			}

			_, _ = fmt.Fprintf(w, "0x%03x: %s\n", addr, inst)
			off += inst.Len
		}
	}
}
