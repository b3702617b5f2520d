package serialize

import (
	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
)

// Encode serializes node in the plain form: no back-references, one byte
// (or length-prefixed run) per atom, 0xff per pair, visited depth-first
// with an explicit stack rather than recursion.
func Encode(alloc *allocator.Allocator, node allocator.Ptr) ([]byte, error) {
	var buf []byte
	stack := []allocator.Ptr{node}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s := alloc.SExp(p)
		if s.Kind == allocator.KindPair {
			buf = append(buf, markerPair)
			stack = append(stack, s.Right, s.Left)
			continue
		}
		var err error
		buf, err = appendAtom(buf, alloc.Atom(p))
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// opKind is one step of the decoder's explicit operator stack.
type opKind int

const (
	opParse opKind = iota
	opCons
)

// Decode parses data into a tree, returning the root handle and the number
// of bytes consumed. It accepts both plain and back-reference streams
// (spec.md §4.2: "every back-reference-free stream is valid input to the
// back-reference decoder"), since there is only one decoding algorithm;
// back-references are simply one more marker byte it understands.
func Decode(alloc *allocator.Allocator, data []byte) (allocator.Ptr, int, error) {
	ops := []opKind{opParse}
	var values []allocator.Ptr
	pos := 0

	for len(ops) > 0 {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]

		switch op {
		case opCons:
			n := len(values)
			right, left := values[n-1], values[n-2]
			values = values[:n-2]
			p, err := alloc.NewPair(left, right)
			if err != nil {
				return 0, 0, err
			}
			values = append(values, p)

		case opParse:
			if pos >= len(data) {
				return 0, 0, clvmerr.New(clvmerr.KindBadEncoding, "truncated input: expected a value at offset %d", pos)
			}
			b := data[pos]
			switch b {
			case markerPair:
				pos++
				ops = append(ops, opCons, opParse, opParse)
			case markerBackref:
				pos++
				pathBytes, next, err := readAtom(data, pos)
				if err != nil {
					return 0, 0, err
				}
				pos = next
				resolved, err := resolveBackref(alloc, values, pathBytes)
				if err != nil {
					return 0, 0, err
				}
				values = append(values, resolved)
			default:
				payload, next, err := readAtom(data, pos)
				if err != nil {
					return 0, 0, err
				}
				pos = next
				p, err := alloc.NewAtom(payload)
				if err != nil {
					return 0, 0, err
				}
				values = append(values, p)
			}
		}
	}

	if len(values) != 1 {
		return 0, 0, clvmerr.New(clvmerr.KindInternalError, "decode left %d values on the stack, expected 1", len(values))
	}
	return values[0], pos, nil
}

// DecodeAll is Decode plus a trailing-bytes check: the whole input must be
// consumed by exactly one value.
func DecodeAll(alloc *allocator.Allocator, data []byte) (allocator.Ptr, error) {
	root, n, err := Decode(alloc, data)
	if err != nil {
		return 0, err
	}
	if n != len(data) {
		return 0, clvmerr.New(clvmerr.KindBadEncoding, "%d trailing bytes after a complete value", len(data)-n)
	}
	return root, nil
}
