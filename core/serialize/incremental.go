package serialize

import (
	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
)

// IncrementalDecoder lets a caller feed a serialized stream in chunks as it
// arrives off the wire (e.g. a network socket), rather than requiring the
// whole buffer up front. It is the resumable counterpart to Decode: every
// call to Feed picks up exactly where the last one left off, suspending at
// whatever op was about to run when the buffer ran dry.
//
// There is no sentinel handle and no subtree substitution: the decoder's
// op/value stacks are ordinary Go slices that simply survive between calls,
// so "suspend" is just "return with ops non-empty and no bytes consumed
// past the last complete step".
type IncrementalDecoder struct {
	alloc  *allocator.Allocator
	ops    []opKind
	values []allocator.Ptr
	done   bool
	result allocator.Ptr
}

// NewIncrementalDecoder creates a decoder ready to receive bytes via Feed.
func NewIncrementalDecoder(alloc *allocator.Allocator) *IncrementalDecoder {
	return &IncrementalDecoder{alloc: alloc, ops: []opKind{opParse}}
}

// Feed consumes as much of data as forms complete steps, returning how many
// bytes it consumed. The caller keeps whatever suffix of data was not
// consumed, appends more bytes as they arrive, and calls Feed again. Call
// Done to check whether the top-level value is complete.
func (d *IncrementalDecoder) Feed(data []byte) (consumed int, err error) {
	if d.done {
		return 0, nil
	}
	pos := 0

	for len(d.ops) > 0 {
		op := d.ops[len(d.ops)-1]

		switch op {
		case opCons:
			if len(d.values) < 2 {
				return pos, clvmerr.New(clvmerr.KindInternalError, "incremental decode: cons with too few completed values")
			}
			d.ops = d.ops[:len(d.ops)-1]
			n := len(d.values)
			right, left := d.values[n-1], d.values[n-2]
			d.values = d.values[:n-2]
			p, perr := d.alloc.NewPair(left, right)
			if perr != nil {
				return pos, perr
			}
			d.values = append(d.values, p)

		case opParse:
			if pos >= len(data) {
				return pos, nil
			}
			b := data[pos]
			switch b {
			case markerPair:
				pos++
				d.ops[len(d.ops)-1] = opCons
				d.ops = append(d.ops, opParse, opParse)

			case markerBackref:
				payload, next, needMore, rerr := peekAtom(data, pos+1)
				if rerr != nil {
					return pos, rerr
				}
				if needMore {
					return pos, nil
				}
				resolved, rerr := resolveBackref(d.alloc, d.values, payload)
				if rerr != nil {
					return pos, rerr
				}
				d.ops = d.ops[:len(d.ops)-1]
				d.values = append(d.values, resolved)
				pos = next

			default:
				payload, next, needMore, aerr := peekAtom(data, pos)
				if aerr != nil {
					return pos, aerr
				}
				if needMore {
					return pos, nil
				}
				p, aerr := d.alloc.NewAtom(payload)
				if aerr != nil {
					return pos, aerr
				}
				d.ops = d.ops[:len(d.ops)-1]
				d.values = append(d.values, p)
				pos = next
			}
		}
	}

	d.done = true
	if len(d.values) != 1 {
		return pos, clvmerr.New(clvmerr.KindInternalError, "incremental decode finished with %d values, expected 1", len(d.values))
	}
	d.result = d.values[0]
	return pos, nil
}

// Done reports whether the top-level value is fully parsed, and if so,
// returns it.
func (d *IncrementalDecoder) Done() (allocator.Ptr, bool) {
	return d.result, d.done
}

// peekAtom is readAtom's resumable counterpart: it distinguishes "the
// stream doesn't have enough bytes buffered yet" (needMore, not an error)
// from a genuinely malformed encoding (a real error, e.g. a reserved
// size-prefix byte), since only the former should make Feed suspend rather
// than fail.
func peekAtom(data []byte, pos int) (payload []byte, next int, needMore bool, err error) {
	if pos >= len(data) {
		return nil, 0, true, nil
	}
	b := data[pos]
	if b == markerNil || b < 0x80 {
		p, n, e := readAtom(data, pos)
		return p, n, false, e
	}

	var headerLen int
	switch {
	case b < 0xc0:
		headerLen = 1
	case b < 0xe0:
		headerLen = 2
	case b < 0xf0:
		headerLen = 3
	case b < 0xf8:
		headerLen = 4
	case b < 0xfc:
		headerLen = 5
	default:
		return nil, 0, false, clvmerr.New(clvmerr.KindBadEncoding, "reserved size-prefix byte 0x%02x at offset %d", b, pos)
	}
	if pos+headerLen > len(data) {
		return nil, 0, true, nil
	}

	p, n, e := readAtom(data, pos)
	if e != nil {
		// The only remaining failure mode once the header itself is fully
		// buffered is a truncated payload: wait for more bytes.
		return nil, 0, true, nil
	}
	return p, n, false, nil
}
