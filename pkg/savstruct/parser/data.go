package parser

import (
	"fmt"
	"io"
	"math"
)

// Bytecode compression opcodes.
const (
	opPadding  = 0
	opEnd      = 252
	opRaw      = 253
	opSpaces   = 254
	opSysmis   = 255
	opcodeSize = 8
)

// slotSource yields the 8-byte slots of the case data in file byte order.
// It returns io.EOF at the end of the data.
type slotSource interface {
	next() ([8]byte, error)
}

// plainSlots reads uncompressed slots.
type plainSlots struct {
	d *decoder
}

func (p *plainSlots) next() ([8]byte, error) {
	var slot [8]byte
	// ReadFull reports io.EOF only when no byte was read.
	n, err := io.ReadFull(p.d.r, slot[:])
	p.d.offset += int64(n)
	return slot, err
}

// bytecodeSlots expands bytecode compressed slots.
type bytecodeSlots struct {
	d       *decoder
	bias    float64
	opcodes [opcodeSize]byte
	pos     int
	done    bool
}

func newBytecodeSlots(d *decoder, bias float64) *bytecodeSlots {
	return &bytecodeSlots{d: d, bias: bias, pos: opcodeSize}
}

func (b *bytecodeSlots) next() ([8]byte, error) {
	var slot [8]byte

	for !b.done {
		if b.pos == opcodeSize {
			n, err := io.ReadFull(b.d.r, b.opcodes[:])
			b.d.offset += int64(n)
			if err != nil {
				return slot, err
			}
			b.pos = 0
		}

		op := b.opcodes[b.pos]
		b.pos++

		switch op {
		case opPadding:
			continue
		case opEnd:
			b.done = true
		case opRaw:
			if err := b.d.read(slot[:]); err != nil {
				return slot, err
			}
			return slot, nil
		case opSpaces:
			return [8]byte{' ', ' ', ' ', ' ', ' ', ' ', ' ', ' '}, nil
		case opSysmis:
			b.d.order.PutUint64(slot[:], math.Float64bits(sysmis))
			return slot, nil
		default:
			b.d.order.PutUint64(slot[:], math.Float64bits(float64(op)-b.bias))
			return slot, nil
		}
	}

	return slot, io.EOF
}

// readCases reads every case, returning one value slice per variable.
func (d *decoder) readCases(h header, dict *dictionary) ([][]any, error) {
	var src slotSource = &plainSlots{d: d}
	if h.compression == 1 {
		src = newBytecodeSlots(d, h.bias)
	}

	columns := make([][]any, len(dict.vars))
	if h.ncases > 0 {
		capacity := min(int(h.ncases), maxPreallocatedValues/len(dict.vars))
		for i := range columns {
			columns[i] = make([]any, 0, capacity)
		}
	}

	for row := 0; h.ncases < 0 || row < int(h.ncases); row++ {
		for vi, v := range dict.vars {
			raw := make([]byte, 0, v.slots*8)
			for s := range v.slots {
				slot, err := src.next()
				if err == io.EOF && vi == 0 && s == 0 {
					if h.ncases < 0 {
						return columns, nil
					}
					return nil, NewRecordError("case data", d.offset, fmt.Errorf("%w: found %d of %d cases", io.ErrUnexpectedEOF, row, h.ncases))
				}
				if err != nil {
					if err == io.EOF {
						err = io.ErrUnexpectedEOF
					}
					return nil, NewRecordError("case data", d.offset, fmt.Errorf("case %d, variable %s: %w", row+1, v.longName, err))
				}
				raw = append(raw, slot[:]...)
			}

			var value any
			if v.isString() {
				value = d.stringValue(v, raw)
			} else {
				value = d.numericValue(v, d.slotFloat(raw))
			}
			columns[vi] = append(columns[vi], value)
		}
	}

	return columns, nil
}
