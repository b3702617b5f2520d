// Package clvmerr defines the error model shared by every component of the
// evaluator. Every error carries a symbolic Kind plus the node the engine
// was processing when it arose (the "pin"), so a caller can report the
// offending subtree verbatim.
package clvmerr

import "fmt"

// Kind enumerates the error categories from spec.md §7.
type Kind string

const (
	// Structural
	KindInvalidOpArg        Kind = "INVALID_OP_ARG"
	KindFirstOfNonCons      Kind = "FIRST_OF_NON_CONS"
	KindRestOfNonCons       Kind = "REST_OF_NON_CONS"
	KindInvalidNilTerminator Kind = "INVALID_NIL_TERMINATOR"
	KindPathIntoAtom        Kind = "PATH_INTO_ATOM"

	// Encoding
	KindBadEncoding      Kind = "BAD_ENCODING"
	KindAtomTooLarge     Kind = "ATOM_TOO_LARGE"
	KindNonMinimalInteger Kind = "NON_MINIMAL_INTEGER"

	// Numeric
	KindNegativeAmount Kind = "NEGATIVE_AMOUNT"
	KindDivByZero      Kind = "DIV_BY_ZERO"
	KindShiftOutOfRange Kind = "SHIFT_OUT_OF_RANGE"
	KindIntTooLarge    Kind = "INT_TOO_LARGE"

	// Crypto
	KindInvalidG1Point        Kind = "INVALID_G1_POINT"
	KindInvalidG2Point        Kind = "INVALID_G2_POINT"
	KindSignatureVerifyFailed Kind = "SIGNATURE_VERIFY_FAILED"

	// Budget
	KindCostExceeded        Kind = "COST_EXCEEDED"
	KindSoftforkCostMismatch Kind = "SOFTFORK_COST_MISMATCH"

	// Operator
	KindUnknownOperator          Kind = "UNKNOWN_OPERATOR"
	KindUnknownSoftforkExtension Kind = "UNKNOWN_SOFTFORK_EXTENSION"
	KindClvmRaise                Kind = "CLVM_RAISE"

	// Resource
	KindHeapFull                    Kind = "HEAP_FULL"
	KindPairLimit                   Kind = "PAIR_LIMIT"
	KindValueStackLimitReached      Kind = "VALUE_STACK_LIMIT_REACHED"
	KindEnvironmentStackLimitReached Kind = "ENVIRONMENT_STACK_LIMIT_REACHED"

	// Internal
	KindInternalError Kind = "INTERNAL_ERROR"
)

// NodePin identifies the node the evaluator was processing when an error
// arose. Bytes is the node's canonical serialization (spec.md §4.2), filled
// in lazily by whichever layer has an Allocator in scope; Handle is the
// allocator-local identifier, meaningless outside the Allocator that
// produced it.
type NodePin struct {
	Handle int32
	Bytes  []byte
}

// Error is the error type returned by every exported entry point in this
// module: Allocator, Serializer, Evaluator and operator implementations.
type Error struct {
	Kind  Kind
	Msg   string
	Node  NodePin
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap allows error unwrapping via errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with no pinned node. Callers that have a node handle
// in scope should use NewAt instead so the pin survives to the caller.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// NewAt creates an Error pinned to the given handle.
func NewAt(kind Kind, handle int32, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Node: NodePin{Handle: handle}}
}

// Wrap creates an Error pinned to the given handle, wrapping a cause.
func Wrap(kind Kind, handle int32, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Node: NodePin{Handle: handle}, Cause: cause}
}

// WithBytes attaches the node's serialized bytes to the pin and returns the
// same error, for chaining at the point where an Allocator is available to
// serialize the pinned handle.
func (e *Error) WithBytes(b []byte) *Error {
	e.Node.Bytes = b
	return e
}

// Is reports whether err is a *Error of the given kind, for use with
// errors.Is-style call sites that only care about the category.
func Is(err error, kind Kind) bool {
	var ce *Error
	if e, ok := err.(*Error); ok {
		ce = e
	} else {
		return false
	}
	return ce.Kind == kind
}
