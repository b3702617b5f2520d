// Package eval implements the CLVM reduction machine (spec.md §4.3): the
// non-recursive evaluator that walks a program/environment pair to a
// result, charging cost as it goes and aborting with CostExceeded the
// instant the running total would cross max_cost.
//
// Grounded on run_program.rs's RunProgramContext/Operation state machine,
// adapted from its val_stack/env_stack/op_stack trio to two explicit
// stacks (a value stack and a combined operation/environment stack, each
// entry in the latter already carrying the environment it needs) since Go
// has no enum-with-payload shorthand as ergonomic as Rust's for the
// Operation type; the flattening changes nothing observable; it is the
// same bounded-depth machine; every tree walk still costs one push per
// node instead of one native call frame.
package eval

import (
	"math/big"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/bigint"
	"github.com/chia-network/go-clvm/core/dialect"
	"github.com/chia-network/go-clvm/core/path"
	"github.com/chia-network/go-clvm/internal/invariant"
	"github.com/chia-network/go-clvm/ops"
)

type taskKind int

const (
	kEval taskKind = iota
	kDispatch
	kSoftforkExit
)

// task is one pending unit of work. Only the fields relevant to its kind
// are meaningful; the zero value of the rest is never read.
type task struct {
	kind taskKind

	// kEval: evaluate expr against env, push the result to the value
	// stack. extra is the softfork extension operator set in scope, or
	// nil outside any guard.
	expr, env allocator.Ptr
	extra     dialect.OperatorSet

	// kDispatch: argCount values have just been pushed to the value
	// stack (leftmost operand first, deepest); pop them, cons them back
	// into a proper argument list, and either call the named operator,
	// (isApply) begin evaluating the applied program, or (isSoftfork)
	// interpret them as a softfork guard's cost/extension/program/env.
	// node pins errors to the original form.
	node       allocator.Ptr
	opcode     byte
	argCount   int
	isApply    bool
	isSoftfork bool

	// kSoftforkExit: the guard's own evaluation has just completed and
	// pushed one (discarded) value. Validate its cost was exactly
	// expectedCost, restore the allocator to checkpoint regardless, and
	// push Nil as the softfork form's result.
	expectedCost uint64
	checkpoint   allocator.Checkpoint
	prevMaxCost  uint64
	costAtEntry  uint64
}

// TraceHook observes every expression the machine is about to evaluate. It
// must not mutate alloc or otherwise influence cost or result - it exists
// for diagnostics (SPEC_FULL.md §6), not for altering evaluation.
type TraceHook func(alloc *allocator.Allocator, expr, env allocator.Ptr)

// Option configures a RunProgram invocation.
type Option func(*machine)

// WithTraceHook installs a pre-evaluation observer. It runs once per
// expression the machine visits, before that expression's cost is charged.
func WithTraceHook(hook TraceHook) Option {
	return func(m *machine) { m.traceHook = hook }
}

type machine struct {
	alloc   *allocator.Allocator
	dialect *dialect.Dialect

	opStack  []task
	valStack []allocator.Ptr

	cost    uint64
	maxCost uint64

	traceHook TraceHook
}

// RunProgram evaluates program against env under dialect, aborting once the
// running cost would exceed maxCost (spec.md §4.3, §6.2). It never
// recurses: program structure of any depth is walked via the explicit
// stacks above, bounded only by ops.StackSizeLimit.
func RunProgram(alloc *allocator.Allocator, d *dialect.Dialect, program, env allocator.Ptr, maxCost uint64, opts ...Option) (uint64, allocator.Ptr, error) {
	m := &machine{alloc: alloc, dialect: d, maxCost: maxCost}
	for _, o := range opts {
		o(m)
	}
	if err := m.pushEval(program, env, nil); err != nil {
		return 0, 0, err
	}
	return m.run()
}

func (m *machine) run() (uint64, allocator.Ptr, error) {
	for len(m.opStack) > 0 {
		t := m.popOp()
		var err error
		switch t.kind {
		case kEval:
			err = m.stepEval(t)
		case kDispatch:
			err = m.stepDispatch(t)
		case kSoftforkExit:
			err = m.stepSoftforkExit(t)
		default:
			invariant.Invariant(false, "unknown task kind %d", t.kind)
		}
		if err != nil {
			return m.cost, 0, err
		}
	}
	invariant.Invariant(len(m.valStack) == 1, "evaluation finished with %d values on the value stack, want 1", len(m.valStack))
	return m.cost, m.valStack[0], nil
}

func (m *machine) popOp() task {
	t := m.opStack[len(m.opStack)-1]
	m.opStack = m.opStack[:len(m.opStack)-1]
	return t
}

func (m *machine) pushOp(t task) error {
	if uint64(len(m.opStack)+1) > ops.StackSizeLimit {
		return clvmerr.New(clvmerr.KindEnvironmentStackLimitReached, "operation stack exceeded limit of %d", ops.StackSizeLimit)
	}
	m.opStack = append(m.opStack, t)
	return nil
}

func (m *machine) pushEval(expr, env allocator.Ptr, extra dialect.OperatorSet) error {
	return m.pushOp(task{kind: kEval, expr: expr, env: env, extra: extra})
}

func (m *machine) pushVal(p allocator.Ptr) error {
	if uint64(len(m.valStack)+1) > ops.StackSizeLimit {
		return clvmerr.New(clvmerr.KindValueStackLimitReached, "value stack exceeded limit of %d", ops.StackSizeLimit)
	}
	m.valStack = append(m.valStack, p)
	return nil
}

// charge adds delta to the running cost, failing with CostExceeded (pinned
// to pin) the instant it would cross maxCost.
func (m *machine) charge(delta uint64, pin allocator.Ptr) error {
	if m.cost+delta > m.maxCost {
		return clvmerr.NewAt(clvmerr.KindCostExceeded, int32(pin), "cost exceeded max cost of %d", m.maxCost)
	}
	m.cost += delta
	return nil
}

func (m *machine) stepEval(t task) error {
	if m.traceHook != nil {
		m.traceHook(m.alloc, t.expr, t.env)
	}
	if m.alloc.SExp(t.expr).Kind == allocator.KindAtom {
		return m.evalPath(t.expr, t.env)
	}
	return m.evalPair(t)
}

// evalPath evaluates an atom expression: it is a path selecting a node out
// of env (spec.md §3.4), costed per traverse_path.rs's formula.
func (m *machine) evalPath(expr, env allocator.Ptr) error {
	b := m.alloc.Atom(expr)
	zeroBytes := path.LeadingZeroBytes(b)
	steps, _ := path.Steps(b)
	cost := ops.TraverseBaseCost +
		uint64(zeroBytes)*ops.TraverseCostPerZeroByte +
		ops.TraverseCostPerBit*uint64(len(steps)+1)
	if err := m.charge(cost, expr); err != nil {
		return err
	}
	result, err := path.Walk(m.alloc, env, b)
	if err != nil {
		return err
	}
	return m.pushVal(result)
}

// evalPair evaluates a pair expression: (operator . operands). operator is
// resolved through the "((X) ...)" literal-operator shorthand first, then
// dispatched as quote, apply, softfork, or a regular opcode.
func (m *machine) evalPair(t task) error {
	s := m.alloc.SExp(t.expr)
	operatorNode := s.Left
	tail := s.Right

	for {
		opS := m.alloc.SExp(operatorNode)
		if opS.Kind == allocator.KindAtom {
			break
		}
		if m.alloc.SExp(opS.Right).Kind != allocator.KindAtom || m.alloc.AtomLen(opS.Right) != 0 {
			return clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(operatorNode), "in ((X)...) syntax X must be a lone list")
		}
		operatorNode = opS.Left
	}

	opcode, err := opcodeOf(m.alloc, operatorNode)
	if err != nil {
		return err
	}

	switch opcode {
	case m.dialect.QuoteKw:
		if err := m.charge(ops.QuoteCost, t.expr); err != nil {
			return err
		}
		return m.pushVal(tail)
	case m.dialect.SoftforkKw:
		return m.beginCall(t, tail, 0, false, true)
	case m.dialect.ApplyKw:
		return m.beginCall(t, tail, 0, true, false)
	default:
		return m.beginCall(t, tail, opcode, false, false)
	}
}

// opcodeOf reads operatorNode's atom as the unsigned opcode byte the
// dialect dispatches on. Every base and extension opcode this module
// assigns fits in a single byte (spec.md §6.4); anything else cannot
// possibly be registered, so it is always rejected, independent of the
// dialect's unknown-opcode policy.
func opcodeOf(alloc *allocator.Allocator, operatorNode allocator.Ptr) (byte, error) {
	if alloc.SExp(operatorNode).Kind != allocator.KindAtom {
		return 0, clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(operatorNode), "operator must be an atom")
	}
	b := alloc.Atom(operatorNode)
	n := bigint.FromAtom(b)
	if n.Sign() < 0 || n.Cmp(big.NewInt(255)) > 0 {
		return 0, clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(operatorNode), "operator atom out of range")
	}
	return byte(n.Int64()), nil
}

// beginCall schedules the evaluation of every operand in tail, left to
// right, followed by a kDispatch that calls opcode (or, if isApply, enters
// the applied program; or, if isSoftfork, interprets the evaluated operands
// as a softfork guard) once they have all resolved. softfork's operands are
// evaluated exactly like any other operator's (original_source's
// eval_op_atom makes no exception for the softfork_kw operator atom; only
// apply_op's handling of the already-evaluated operand list special-cases
// it), so, unlike apply, no fixed arity is enforced here - a wrong operand
// count is a softfork-specific error, diagnosed once the values are in
// hand.
func (m *machine) beginCall(t task, tail allocator.Ptr, opcode byte, isApply, isSoftfork bool) error {
	exprs, err := operandExprs(m.alloc, tail)
	if err != nil {
		return err
	}
	if isApply && len(exprs) != 2 {
		return clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(t.expr), "apply takes exactly 2 arguments, got %d", len(exprs))
	}
	if err := m.pushOp(task{kind: kDispatch, node: t.expr, opcode: opcode, argCount: len(exprs), isApply: isApply, isSoftfork: isSoftfork, extra: t.extra}); err != nil {
		return err
	}
	for i := len(exprs) - 1; i >= 0; i-- {
		if err := m.pushEval(exprs[i], t.env, t.extra); err != nil {
			return err
		}
	}
	return nil
}

func (m *machine) stepDispatch(t task) error {
	invariant.Precondition(len(m.valStack) >= t.argCount, "dispatch expects %d evaluated operands, found %d", t.argCount, len(m.valStack))
	vals := append([]allocator.Ptr(nil), m.valStack[len(m.valStack)-t.argCount:]...)
	m.valStack = m.valStack[:len(m.valStack)-t.argCount]

	if t.isApply {
		if err := m.charge(ops.OpCost+ops.ApplyCost, t.node); err != nil {
			return err
		}
		return m.pushEval(vals[0], vals[1], t.extra)
	}
	if t.isSoftfork {
		return m.dispatchSoftfork(t, vals)
	}

	argsPtr := allocator.Nil
	for i := len(vals) - 1; i >= 0; i-- {
		p, err := m.alloc.NewPair(vals[i], argsPtr)
		if err != nil {
			return err
		}
		argsPtr = p
	}

	fn, err := m.dialect.Lookup(t.opcode, t.extra)
	if err != nil {
		return err
	}
	if m.cost+ops.OpCost > m.maxCost {
		return clvmerr.NewAt(clvmerr.KindCostExceeded, int32(t.node), "cost exceeded max cost of %d", m.maxCost)
	}
	opCost, result, err := fn(m.alloc, argsPtr, m.maxCost-m.cost-ops.OpCost)
	if err != nil {
		return err
	}
	if err := m.charge(ops.OpCost+opCost, t.node); err != nil {
		return err
	}
	return m.pushVal(result)
}

// operandExprs walks an (unevaluated) operand list into a slice of its
// element expressions, left to right, rejecting anything but a proper,
// nil-terminated list.
func operandExprs(alloc *allocator.Allocator, list allocator.Ptr) ([]allocator.Ptr, error) {
	var out []allocator.Ptr
	cur := list
	for {
		s := alloc.SExp(cur)
		if s.Kind != allocator.KindPair {
			if alloc.AtomLen(cur) != 0 {
				return nil, clvmerr.NewAt(clvmerr.KindInvalidNilTerminator, int32(cur), "operand list must be nil-terminated")
			}
			return out, nil
		}
		out = append(out, s.Left)
		cur = s.Right
	}
}

// dispatchSoftfork implements the `(softfork cost ext prog env)` special
// form (spec.md §4.5) once its operands have already been evaluated by the
// same left-to-right mechanism every other operator's operands go through
// (original_source's apply_op softfork branch runs on operand_list *after*
// eval_op_atom has evaluated it - prog and env here are values, not the raw
// forms written in the guard). The cost argument is parsed and validated
// unconditionally - those errors propagate even in a permissive dialect,
// since a cost commitment the evaluator cannot even parse can never be
// honored. The extension selector and guard program, by contrast, are
// swallowed into a no-op (cost charged, result nil) when the dialect is
// permissive and they are malformed or name an extension it doesn't
// recognize: this is what lets old validators stay in consensus with a
// softfork they don't implement yet, provided the block producer declared
// the right cost.
func (m *machine) dispatchSoftfork(t task, vals []allocator.Ptr) error {
	if err := m.charge(ops.OpCost, t.node); err != nil {
		return err
	}
	if len(vals) == 0 || m.alloc.SExp(vals[0]).Kind != allocator.KindAtom {
		return clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(t.node), "softfork requires a cost argument")
	}
	costBig := bigint.FromAtom(m.alloc.Atom(vals[0]))
	if costBig.Sign() <= 0 || !costBig.IsUint64() {
		return clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(vals[0]), "softfork cost must be a positive integer")
	}
	expectedCost := costBig.Uint64()
	if expectedCost > m.maxCost-m.cost {
		return clvmerr.NewAt(clvmerr.KindCostExceeded, int32(t.node), "softfork declared cost exceeds remaining budget")
	}

	extSet, progNode, envNode, guardOK := m.parseSoftforkGuard(vals)
	if !guardOK {
		if !m.dialect.Permissive() {
			return clvmerr.NewAt(clvmerr.KindUnknownSoftforkExtension, int32(t.node), "malformed or unrecognized softfork extension")
		}
		if err := m.charge(expectedCost, t.node); err != nil {
			return err
		}
		return m.pushVal(m.alloc.Nil())
	}

	// costAtEntry is captured before GuardCost is charged: the declared
	// cost must cover GuardCost plus whatever the guard program itself
	// costs, matching spec.md's "expected terminal cost (current +
	// cost)" - not just the guard program's own cost in isolation.
	costAtEntry := m.cost
	if err := m.charge(ops.GuardCost, t.node); err != nil {
		return err
	}
	cp := m.alloc.Checkpoint()
	exit := task{
		kind:         kSoftforkExit,
		node:         t.node,
		expectedCost: expectedCost,
		checkpoint:   cp,
		prevMaxCost:  m.maxCost,
		costAtEntry:  costAtEntry,
	}
	m.maxCost = costAtEntry + expectedCost
	if err := m.pushOp(exit); err != nil {
		return err
	}
	return m.pushEval(progNode, envNode, extSet)
}

// parseSoftforkGuard decodes the extension selector, guard program, and
// guard environment from an already-evaluated softfork operand list: it
// must be exactly (cost ext prog env), where ext names a registered
// extension. ok is false for any structural problem - wrong arity, a
// non-atom or non-minimally-encoded selector, or an unregistered extension
// id - the only errors dispatchSoftfork's caller may swallow.
func (m *machine) parseSoftforkGuard(vals []allocator.Ptr) (extSet dialect.OperatorSet, prog, env allocator.Ptr, ok bool) {
	if len(vals) != 4 {
		return nil, allocator.Nil, allocator.Nil, false
	}
	extNode := vals[1]
	if m.alloc.SExp(extNode).Kind != allocator.KindAtom {
		return nil, allocator.Nil, allocator.Nil, false
	}
	extVal, ok := parseU32NoLeadingZero(m.alloc.Atom(extNode))
	if !ok {
		return nil, allocator.Nil, allocator.Nil, false
	}
	set, found := m.dialect.Extension(extVal)
	if !found {
		return nil, allocator.Nil, allocator.Nil, false
	}
	return set, vals[2], vals[3], true
}

// parseU32NoLeadingZero decodes b as a u32 with no redundant leading zero
// byte (spec.md §4.3: "ext selects an extension operator set (u32; leading
// zeros disallowed)"), unlike allocator.SmallNumber, which accepts
// non-minimal encodings for its general-purpose fast path.
func parseU32NoLeadingZero(b []byte) (uint32, bool) {
	if len(b) > 4 || (len(b) > 0 && b[0] == 0) {
		return 0, false
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v, true
}

func (m *machine) stepSoftforkExit(t task) error {
	invariant.Precondition(len(m.valStack) >= 1, "softfork exit expects a discarded guard result on the value stack")
	m.valStack = m.valStack[:len(m.valStack)-1]

	consumed := m.cost - t.costAtEntry
	m.maxCost = t.prevMaxCost
	m.alloc.Restore(t.checkpoint)

	if consumed != t.expectedCost {
		return clvmerr.NewAt(clvmerr.KindSoftforkCostMismatch, int32(t.node), "softfork guard consumed %d, declared %d", consumed, t.expectedCost)
	}
	return m.pushVal(m.alloc.Nil())
}
