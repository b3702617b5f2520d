// Package dialect defines the opcode-to-operator dispatch table that the
// evaluator consults: the quote/apply/softfork keyword bytes, the base
// operator set, the unknown-opcode policy, and the softfork extension sets
// that become active inside a softfork guard (spec.md §4.5).
//
// Grounded on opal-lang-opal/runtime/decorators/registry.go's name->handler
// registry, adapted from a mutable global registry of string-keyed
// decorators to an immutable, per-instance table keyed by a single opcode
// byte: dispatch here sits on the consensus path, so it must be constructed
// once and never mutated by a concurrent registration call.
package dialect

import (
	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
)

// Canonical keyword opcodes (spec.md §4.5).
const (
	QuoteKw    byte = 0x01
	ApplyKw    byte = 0x02
	SoftforkKw byte = 0x24 // 36, shared with the base opcode table below
)

// Base opcode assignments (spec.md §6.4). Deviating from these values is a
// consensus-breaking change.
const (
	OpIf            byte = 3
	OpCons          byte = 4
	OpFirst         byte = 5
	OpRest          byte = 6
	OpListp         byte = 7
	OpRaise         byte = 8
	OpEq            byte = 9
	OpGrBytes       byte = 10
	OpSha256        byte = 11
	OpSubstr        byte = 12
	OpStrlen        byte = 13
	OpConcat        byte = 14
	OpAdd           byte = 16
	OpSubtract      byte = 17
	OpMultiply      byte = 18
	OpDivide        byte = 19
	OpDivmod        byte = 20
	OpGr            byte = 21
	OpAsh           byte = 22
	OpLsh           byte = 23
	OpLogand        byte = 24
	OpLogior        byte = 25
	OpLogxor        byte = 26
	OpLognot        byte = 27
	OpPointAdd      byte = 29
	OpPubkeyForExp  byte = 30
	OpNot           byte = 32
	OpAny           byte = 33
	OpAll           byte = 34
	OpSoftfork      byte = 36
)

// OperatorFunc is the contract every operator implements (spec.md §4.4):
// given the allocator, the already-evaluated argument list, and the
// remaining cost budget, it returns the cost it consumed and its result, or
// a *clvmerr.Error pinned to the offending node.
type OperatorFunc func(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (cost uint64, result allocator.Ptr, err error)

// OperatorSet is a table from opcode byte to operator implementation. It is
// the unit softfork_extension hands back: everything in it becomes callable
// in addition to the base set for the lifetime of one softfork guard.
type OperatorSet map[byte]OperatorFunc

// UnknownOpPolicy selects how a dialect reacts to an opcode absent from its
// operator set.
type UnknownOpPolicy int

const (
	// Strict rejects any opcode not in the table with UnknownOperator.
	Strict UnknownOpPolicy = iota
	// Permissive invokes OpUnknown (spec.md §4.5's op_unknown fallback).
	Permissive
)

// Dialect bundles the keyword bytes, the base operator table, the
// unknown-opcode policy, and the extension sets a softfork guard may select.
type Dialect struct {
	QuoteKw    byte
	ApplyKw    byte
	SoftforkKw byte

	operators  OperatorSet
	policy     UnknownOpPolicy
	extensions map[uint32]OperatorSet
	permissive bool // softfork argument-validation strictness, spec.md §4.5
}

// New builds a Dialect over the given base operator set, with the keyword
// bytes set to the spec's canonical assignments (they are exported fields
// a caller may overwrite). Use the With* methods to customize policy and
// extensions before use.
func New(operators OperatorSet) *Dialect {
	return &Dialect{
		QuoteKw:    QuoteKw,
		ApplyKw:    ApplyKw,
		SoftforkKw: OpSoftfork,
		operators:  operators,
		policy:     Strict,
		extensions: make(map[uint32]OperatorSet),
	}
}

// WithUnknownOpPolicy sets the strict/permissive unknown-opcode behavior.
func (d *Dialect) WithUnknownOpPolicy(p UnknownOpPolicy) *Dialect {
	d.policy = p
	return d
}

// WithPermissiveSoftfork relaxes softfork argument validation (spec.md
// §4.5's permissive flag), used by the seed scenario in spec.md §8.
func (d *Dialect) WithPermissiveSoftfork(permissive bool) *Dialect {
	d.permissive = permissive
	return d
}

// Permissive reports the softfork argument-validation strictness currently
// configured.
func (d *Dialect) Permissive() bool {
	return d.permissive
}

// WithExtension registers the operator set activated by `(softfork cost n
// ...)` when the extension selector equals n.
func (d *Dialect) WithExtension(n uint32, ops OperatorSet) *Dialect {
	d.extensions[n] = ops
	return d
}

// Lookup resolves opcode to its operator function, consulting the
// extension table first if extra is non-nil (a softfork extension currently
// in scope) and then the base table, so an extension entry shadows a base
// entry with the same opcode. It returns UnknownOperator in strict mode,
// or OpUnknown's nil-for-cost fallback in permissive mode.
func (d *Dialect) Lookup(opcode byte, extra OperatorSet) (OperatorFunc, error) {
	if extra != nil {
		if fn, ok := extra[opcode]; ok {
			return fn, nil
		}
	}
	if fn, ok := d.operators[opcode]; ok {
		return fn, nil
	}
	if d.policy == Permissive {
		return opUnknown(opcode), nil
	}
	return nil, clvmerr.New(clvmerr.KindUnknownOperator, "unknown operator opcode 0x%02x", opcode)
}

// Extension resolves a softfork selector to its operator set (spec.md
// §4.3's softfork guard). The bool is false for an unregistered selector.
func (d *Dialect) Extension(n uint32) (OperatorSet, bool) {
	ops, ok := d.extensions[n]
	return ops, ok
}

// opUnknownCostMultiplier multiplies an unknown opcode's high nibble plus
// one to form its base cost (argument bytes are then added at one per
// byte), per spec.md §4.5's "determined by the
// opcode's high-nibble" op_unknown fallback.
const opUnknownCostMultiplier = 1

// opUnknown returns the permissive-mode fallback for an opcode absent from
// every operator table: it consumes every argument atom's bytes (so the
// cost still scales with program size) and always yields nil.
func opUnknown(opcode byte) OperatorFunc {
	highNibble := uint64(opcode >> 4)
	return func(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
		cost := (highNibble + 1) * opUnknownCostMultiplier
		cur := args
		for {
			head, tail, ok := alloc.Next(cur)
			if !ok {
				break
			}
			cost += uint64(alloc.AtomLen(head))
			if cost > maxCost {
				return 0, 0, clvmerr.New(clvmerr.KindCostExceeded, "op_unknown exceeded max cost")
			}
			cur = tail
		}
		return cost, alloc.Nil(), nil
	}
}
