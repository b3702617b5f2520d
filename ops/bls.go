// BLS12-381 operators (spec.md §4.4), grounded on
// original_source/src/bls_ops.rs: point_add/pubkey_for_exp are the legacy
// opcode aliases for g1_add and "multiply the G1 generator by a scalar";
// the bls_g1_*/bls_g2_*/bls_map_to_g{1,2}/bls_pairing_identity/bls_verify
// family follows directly. Adapted from bls_ops.rs's bls12_381 crate calls
// to github.com/kilic/bls12381's G1/G2/Engine API (SPEC_FULL.md §3), a
// pure-Go curve library.
package ops

import (
	"math/big"

	"github.com/kilic/bls12381"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
)

const dstG2 = "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_AUG_"

func g1FromAtom(alloc *allocator.Allocator, p allocator.Ptr, name string) (*bls12381.PointG1, error) {
	if err := requireAtom(alloc, p, name); err != nil {
		return nil, err
	}
	g1 := bls12381.NewG1()
	pt, err := g1.FromCompressed(alloc.Atom(p))
	if err != nil {
		return nil, clvmerr.NewAt(clvmerr.KindInvalidG1Point, int32(p), "%s: invalid G1 point", name)
	}
	return pt, nil
}

func g2FromAtom(alloc *allocator.Allocator, p allocator.Ptr, name string) (*bls12381.PointG2, error) {
	if err := requireAtom(alloc, p, name); err != nil {
		return nil, err
	}
	g2 := bls12381.NewG2()
	pt, err := g2.FromCompressed(alloc.Atom(p))
	if err != nil {
		return nil, clvmerr.NewAt(clvmerr.KindInvalidG2Point, int32(p), "%s: invalid G2 point", name)
	}
	return pt, nil
}

func newG1Atom(alloc *allocator.Allocator, p *bls12381.PointG1, cost uint64) (uint64, allocator.Ptr, error) {
	b := bls12381.NewG1().ToCompressed(p)
	atom, err := alloc.NewAtom(b)
	if err != nil {
		return 0, 0, err
	}
	return cost + MallocCostPerByte*uint64(len(b)), atom, nil
}

func newG2Atom(alloc *allocator.Allocator, p *bls12381.PointG2, cost uint64) (uint64, allocator.Ptr, error) {
	b := bls12381.NewG2().ToCompressed(p)
	atom, err := alloc.NewAtom(b)
	if err != nil {
		return 0, 0, err
	}
	return cost + MallocCostPerByte*uint64(len(b)), atom, nil
}

// PointAdd implements the legacy `point_add` opcode: G1 point addition over
// a variable-arity argument list, identity for zero arguments.
func PointAdd(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "point_add")
	if err != nil {
		return 0, 0, err
	}
	g1 := bls12381.NewG1()
	acc := g1.Zero()
	cost := PointAddBaseCost
	for _, a := range list {
		pt, err := g1FromAtom(alloc, a, "point_add")
		if err != nil {
			return 0, 0, err
		}
		cost += PointAddCostPerArg
		if err := checkCost(cost, maxCost, "point_add"); err != nil {
			return 0, 0, err
		}
		g1.Add(acc, acc, pt)
	}
	return newG1Atom(alloc, acc, cost)
}

// PubkeyForExp implements the legacy `pubkey_for_exp` opcode: the G1
// generator multiplied by a scalar, reduced modulo the group order.
func PubkeyForExp(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "pubkey_for_exp")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "pubkey_for_exp"); err != nil {
		return 0, 0, err
	}
	e, err := atomInt(alloc, list[0], "pubkey_for_exp")
	if err != nil {
		return 0, 0, err
	}
	cost := PubkeyForExpBaseCost + PubkeyForExpCostPerByte*uint64(alloc.AtomLen(list[0]))
	if err := checkCost(cost, maxCost, "pubkey_for_exp"); err != nil {
		return 0, 0, err
	}
	order := bls12381.NewG1().Q()
	scalar := new(big.Int).Mod(e, order)
	g1 := bls12381.NewG1()
	result := g1.New()
	g1.MulScalar(result, g1.One(), scalar)
	return newG1Atom(alloc, result, cost)
}

// BLSG1Add implements `bls_g1_add`, same cost table as legacy point_add.
func BLSG1Add(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	return PointAdd(alloc, args, maxCost)
}

// BLSG1Subtract implements `bls_g1_subtract`: first point minus the rest.
func BLSG1Subtract(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_g1_subtract")
	if err != nil {
		return 0, 0, err
	}
	g1 := bls12381.NewG1()
	acc := g1.Zero()
	cost := BLSG1SubtractBaseCost
	for i, a := range list {
		pt, err := g1FromAtom(alloc, a, "bls_g1_subtract")
		if err != nil {
			return 0, 0, err
		}
		cost += BLSG1SubtractCostPerArg
		if err := checkCost(cost, maxCost, "bls_g1_subtract"); err != nil {
			return 0, 0, err
		}
		if i == 0 {
			g1.Add(acc, acc, pt)
			continue
		}
		neg := g1.New()
		g1.Neg(neg, pt)
		g1.Add(acc, acc, neg)
	}
	return newG1Atom(alloc, acc, cost)
}

// BLSG1Multiply implements `bls_g1_multiply point scalar`.
func BLSG1Multiply(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_g1_multiply")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 2, "bls_g1_multiply"); err != nil {
		return 0, 0, err
	}
	pt, err := g1FromAtom(alloc, list[0], "bls_g1_multiply")
	if err != nil {
		return 0, 0, err
	}
	scalar, err := atomInt(alloc, list[1], "bls_g1_multiply")
	if err != nil {
		return 0, 0, err
	}
	cost := BLSG1MultiplyBaseCost + BLSG1MultiplyCostPerByte*uint64(alloc.AtomLen(list[1]))
	if err := checkCost(cost, maxCost, "bls_g1_multiply"); err != nil {
		return 0, 0, err
	}
	g1 := bls12381.NewG1()
	result := g1.New()
	g1.MulScalar(result, pt, scalar)
	return newG1Atom(alloc, result, cost)
}

// BLSG1Negate implements `bls_g1_negate point`.
func BLSG1Negate(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_g1_negate")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "bls_g1_negate"); err != nil {
		return 0, 0, err
	}
	pt, err := g1FromAtom(alloc, list[0], "bls_g1_negate")
	if err != nil {
		return 0, 0, err
	}
	if err := checkCost(BLSG1NegateBaseCost, maxCost, "bls_g1_negate"); err != nil {
		return 0, 0, err
	}
	g1 := bls12381.NewG1()
	result := g1.New()
	g1.Neg(result, pt)
	return newG1Atom(alloc, result, BLSG1NegateBaseCost)
}

// BLSG2Add implements `bls_g2_add`.
func BLSG2Add(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_g2_add")
	if err != nil {
		return 0, 0, err
	}
	g2 := bls12381.NewG2()
	acc := g2.Zero()
	cost := BLSG2AddBaseCost
	for _, a := range list {
		pt, err := g2FromAtom(alloc, a, "bls_g2_add")
		if err != nil {
			return 0, 0, err
		}
		cost += BLSG2AddCostPerArg
		if err := checkCost(cost, maxCost, "bls_g2_add"); err != nil {
			return 0, 0, err
		}
		g2.Add(acc, acc, pt)
	}
	return newG2Atom(alloc, acc, cost)
}

// BLSG2Subtract implements `bls_g2_subtract`.
func BLSG2Subtract(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_g2_subtract")
	if err != nil {
		return 0, 0, err
	}
	g2 := bls12381.NewG2()
	acc := g2.Zero()
	cost := BLSG2SubtractBaseCost
	for i, a := range list {
		pt, err := g2FromAtom(alloc, a, "bls_g2_subtract")
		if err != nil {
			return 0, 0, err
		}
		cost += BLSG2SubtractCostPerArg
		if err := checkCost(cost, maxCost, "bls_g2_subtract"); err != nil {
			return 0, 0, err
		}
		if i == 0 {
			g2.Add(acc, acc, pt)
			continue
		}
		neg := g2.New()
		g2.Neg(neg, pt)
		g2.Add(acc, acc, neg)
	}
	return newG2Atom(alloc, acc, cost)
}

// BLSG2Multiply implements `bls_g2_multiply point scalar`.
func BLSG2Multiply(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_g2_multiply")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 2, "bls_g2_multiply"); err != nil {
		return 0, 0, err
	}
	pt, err := g2FromAtom(alloc, list[0], "bls_g2_multiply")
	if err != nil {
		return 0, 0, err
	}
	scalar, err := atomInt(alloc, list[1], "bls_g2_multiply")
	if err != nil {
		return 0, 0, err
	}
	cost := BLSG2MultiplyBaseCost + BLSG2MultiplyCostPerByte*uint64(alloc.AtomLen(list[1]))
	if err := checkCost(cost, maxCost, "bls_g2_multiply"); err != nil {
		return 0, 0, err
	}
	g2 := bls12381.NewG2()
	result := g2.New()
	g2.MulScalar(result, pt, scalar)
	return newG2Atom(alloc, result, cost)
}

// BLSG2Negate implements `bls_g2_negate point`.
func BLSG2Negate(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_g2_negate")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "bls_g2_negate"); err != nil {
		return 0, 0, err
	}
	pt, err := g2FromAtom(alloc, list[0], "bls_g2_negate")
	if err != nil {
		return 0, 0, err
	}
	if err := checkCost(BLSG2NegateBaseCost, maxCost, "bls_g2_negate"); err != nil {
		return 0, 0, err
	}
	g2 := bls12381.NewG2()
	result := g2.New()
	g2.Neg(result, pt)
	return newG2Atom(alloc, result, BLSG2NegateBaseCost)
}

// BLSMapToG1 implements `bls_map_to_g1 msg [dst]`: hash-to-curve onto G1.
func BLSMapToG1(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_map_to_g1")
	if err != nil {
		return 0, 0, err
	}
	if len(list) != 1 && len(list) != 2 {
		return 0, 0, clvmerr.New(clvmerr.KindInvalidOpArg, "bls_map_to_g1 takes 1 or 2 arguments")
	}
	if err := requireAtom(alloc, list[0], "bls_map_to_g1"); err != nil {
		return 0, 0, err
	}
	msg := alloc.Atom(list[0])
	dst := []byte(dstG2)
	if len(list) == 2 {
		if err := requireAtom(alloc, list[1], "bls_map_to_g1"); err != nil {
			return 0, 0, err
		}
		dst = alloc.Atom(list[1])
	}
	cost := BLSMapToG1BaseCost + BLSMapToG1CostPerByte*uint64(len(msg)) + BLSMapToG1CostPerDSTByte*uint64(len(dst))
	if err := checkCost(cost, maxCost, "bls_map_to_g1"); err != nil {
		return 0, 0, err
	}
	pt := bls12381.NewG1().HashToCurve(msg, dst)
	return newG1Atom(alloc, pt, cost)
}

// BLSMapToG2 implements `bls_map_to_g2 msg [dst]`: hash-to-curve onto G2.
func BLSMapToG2(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_map_to_g2")
	if err != nil {
		return 0, 0, err
	}
	if len(list) != 1 && len(list) != 2 {
		return 0, 0, clvmerr.New(clvmerr.KindInvalidOpArg, "bls_map_to_g2 takes 1 or 2 arguments")
	}
	if err := requireAtom(alloc, list[0], "bls_map_to_g2"); err != nil {
		return 0, 0, err
	}
	msg := alloc.Atom(list[0])
	dst := []byte(dstG2)
	if len(list) == 2 {
		if err := requireAtom(alloc, list[1], "bls_map_to_g2"); err != nil {
			return 0, 0, err
		}
		dst = alloc.Atom(list[1])
	}
	cost := BLSMapToG2BaseCost + BLSMapToG2CostPerByte*uint64(len(msg)) + BLSMapToG2CostPerDSTByte*uint64(len(dst))
	if err := checkCost(cost, maxCost, "bls_map_to_g2"); err != nil {
		return 0, 0, err
	}
	pt := bls12381.NewG2().HashToCurve(msg, dst)
	return newG2Atom(alloc, pt, cost)
}

// BLSPairingIdentity implements `bls_pairing_identity …`: true (nil on
// success per spec.md §4.4's success-returns-nil convention) iff the
// product of e(g1_i, g2_i) over every (g1, g2) argument pair equals the
// identity element in GT.
func BLSPairingIdentity(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_pairing_identity")
	if err != nil {
		return 0, 0, err
	}
	if len(list)%2 != 0 {
		return 0, 0, clvmerr.New(clvmerr.KindInvalidOpArg, "bls_pairing_identity requires an even number of arguments")
	}
	nargs := uint64(len(list) / 2)
	cost := BLSPairingBaseCost + BLSPairingCostPerArg*nargs
	if err := checkCost(cost, maxCost, "bls_pairing_identity"); err != nil {
		return 0, 0, err
	}
	engine := bls12381.NewEngine()
	for i := 0; i < len(list); i += 2 {
		g1pt, err := g1FromAtom(alloc, list[i], "bls_pairing_identity")
		if err != nil {
			return 0, 0, err
		}
		g2pt, err := g2FromAtom(alloc, list[i+1], "bls_pairing_identity")
		if err != nil {
			return 0, 0, err
		}
		engine.AddPair(g1pt, g2pt)
	}
	if !engine.Check() {
		return 0, 0, clvmerr.NewAt(clvmerr.KindSignatureVerifyFailed, int32(args), "bls_pairing_identity: product is not the identity")
	}
	return cost, alloc.Nil(), nil
}

// BLSVerify implements `bls_verify sig pubkey1 msg1 pubkey2 msg2 ...`: an
// aggregate BLS signature check, e(g1, sig) == product(e(pubkey_i, H(msg_i))).
func BLSVerify(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "bls_verify")
	if err != nil {
		return 0, 0, err
	}
	if len(list) < 1 || len(list)%2 != 1 {
		return 0, 0, clvmerr.New(clvmerr.KindInvalidOpArg, "bls_verify requires sig followed by pubkey/message pairs")
	}
	sig, err := g2FromAtom(alloc, list[0], "bls_verify")
	if err != nil {
		return 0, 0, err
	}
	npairs := uint64((len(list) - 1) / 2)
	cost := BLSPairingBaseCost + BLSPairingCostPerArg*(npairs+1)
	if err := checkCost(cost, maxCost, "bls_verify"); err != nil {
		return 0, 0, err
	}

	g1 := bls12381.NewG1()
	engine := bls12381.NewEngine()
	generatorNeg := g1.New()
	g1.Neg(generatorNeg, g1.One())
	engine.AddPair(generatorNeg, sig)

	for i := 1; i < len(list); i += 2 {
		pubkey, err := g1FromAtom(alloc, list[i], "bls_verify")
		if err != nil {
			return 0, 0, err
		}
		if err := requireAtom(alloc, list[i+1], "bls_verify"); err != nil {
			return 0, 0, err
		}
		msg := alloc.Atom(list[i+1])
		h := bls12381.NewG2().HashToCurve(msg, []byte(dstG2))
		engine.AddPair(pubkey, h)
	}
	if !engine.Check() {
		return 0, 0, clvmerr.NewAt(clvmerr.KindSignatureVerifyFailed, int32(args), "bls_verify failed")
	}
	return cost, alloc.Nil(), nil
}
