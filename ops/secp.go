// secp256k1/secp256r1 signature verification (spec.md §4.4), grounded on
// original_source/src/secp_ops.rs's op_secp256p1_verify/op_secp256k1_verify
// shape ("pubkey msg sig", verify against a prehashed message), adapted
// from its k256/p256 crates to the two pure-Go/stdlib equivalents named in
// SPEC_FULL.md §3: decred's secp256k1 for the k1 curve, stdlib
// crypto/ecdsa + crypto/elliptic for the r1 (P256) curve.
package ops

import (
	"crypto/ecdsa"
	"crypto/elliptic"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	dsaK1 "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
)

// Secp256k1Verify implements `secp256k1_verify pubkey msg sig`: msg is
// already a 32-byte digest (the original's verify_prehash convention), sig
// is a DER-encoded signature, pubkey is SEC1-compressed.
func Secp256k1Verify(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "secp256k1_verify")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 3, "secp256k1_verify"); err != nil {
		return 0, 0, err
	}
	cost := Secp256k1VerifyCost
	if err := checkCost(cost, maxCost, "secp256k1_verify"); err != nil {
		return 0, 0, err
	}
	pubkeyBytes := alloc.Atom(list[0])
	msg := alloc.Atom(list[1])
	sigBytes := alloc.Atom(list[2])

	pubkey, perr := secp256k1.ParsePubKey(pubkeyBytes)
	if perr != nil {
		return 0, 0, clvmerr.NewAt(clvmerr.KindInvalidG1Point, int32(list[0]), "secp256k1_verify: invalid public key")
	}
	sig, serr := dsaK1.ParseDERSignature(sigBytes)
	if serr != nil {
		return 0, 0, clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(list[2]), "secp256k1_verify: invalid signature")
	}
	if !sig.Verify(msg, pubkey) {
		return 0, 0, clvmerr.NewAt(clvmerr.KindSignatureVerifyFailed, int32(args), "secp256k1_verify failed")
	}
	return cost, alloc.Nil(), nil
}

// Secp256r1Verify implements `secp256r1_verify pubkey msg sig` over P256.
func Secp256r1Verify(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "secp256r1_verify")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 3, "secp256r1_verify"); err != nil {
		return 0, 0, err
	}
	cost := Secp256r1VerifyCost
	if err := checkCost(cost, maxCost, "secp256r1_verify"); err != nil {
		return 0, 0, err
	}
	pubkeyBytes := alloc.Atom(list[0])
	msg := alloc.Atom(list[1])
	sigBytes := alloc.Atom(list[2])

	curve := elliptic.P256()
	x, y := elliptic.UnmarshalCompressed(curve, pubkeyBytes)
	if x == nil {
		return 0, 0, clvmerr.NewAt(clvmerr.KindInvalidG1Point, int32(list[0]), "secp256r1_verify: invalid public key")
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	if !ecdsa.VerifyASN1(pub, msg, sigBytes) {
		return 0, 0, clvmerr.NewAt(clvmerr.KindSignatureVerifyFailed, int32(args), "secp256r1_verify failed")
	}
	return cost, alloc.Nil(), nil
}
