package ops

import (
	"encoding/base64"

	"golang.org/x/crypto/sha3"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
)

// Base64URLEncode implements the base64 softfork extension's encode operator:
// the URL-safe, unpadded base64 encoding of the concatenation of its argument
// atoms' bytes.
//
// Grounded on base64_ops.rs's op_base64url_encode.
func Base64URLEncode(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	cost := Base64EncodeBaseCost
	var buf []byte
	cur := args
	for {
		head, tail, ok := alloc.Next(cur)
		if !ok {
			break
		}
		if err := requireAtom(alloc, head, "base64url_encode"); err != nil {
			return 0, 0, err
		}
		b := alloc.Atom(head)
		cost += Base64EncodeCostPerArg + uint64(len(b))*Base64DecodeCostPerByte
		if err := checkCost(cost, maxCost, "base64url_encode"); err != nil {
			return 0, 0, err
		}
		buf = append(buf, b...)
		cur = tail
	}
	if len(buf) == 0 {
		return cost, alloc.Nil(), nil
	}
	enc := base64.RawURLEncoding.EncodeToString(buf)
	cost += MallocCostPerByte * uint64(len(enc))
	if err := checkCost(cost, maxCost, "base64url_encode"); err != nil {
		return 0, 0, err
	}
	p, err := alloc.NewAtom([]byte(enc))
	if err != nil {
		return 0, 0, err
	}
	return cost, p, nil
}

// Base64URLDecode implements the base64 softfork extension's decode operator:
// the inverse of Base64URLEncode, rejecting malformed input.
//
// Grounded on base64_ops.rs's op_base64url_decode.
func Base64URLDecode(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "base64url_decode")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "base64url_decode"); err != nil {
		return 0, 0, err
	}
	if err := requireAtom(alloc, list[0], "base64url_decode"); err != nil {
		return 0, 0, err
	}
	input := alloc.Atom(list[0])
	cost := Base64DecodeBaseCost + uint64(len(input))*Base64DecodeCostPerByte
	if err := checkCost(cost, maxCost, "base64url_decode"); err != nil {
		return 0, 0, err
	}
	if len(input) == 0 {
		return cost, alloc.Nil(), nil
	}
	out, err := base64.RawURLEncoding.DecodeString(string(input))
	if err != nil {
		return 0, 0, clvmerr.NewAt(clvmerr.KindBadEncoding, int32(list[0]), "base64url_decode: invalid input")
	}
	cost += MallocCostPerByte * uint64(len(out))
	if err := checkCost(cost, maxCost, "base64url_decode"); err != nil {
		return 0, 0, err
	}
	p, err := alloc.NewAtom(out)
	if err != nil {
		return 0, 0, err
	}
	return cost, p, nil
}

// Keccak256 implements the keccak256 softfork extension operator: the
// Keccak-256 digest of the concatenation of its argument atoms' bytes.
//
// Grounded on keccak256_ops.rs's op_keccak256.
func Keccak256(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	cost := Keccak256BaseCost
	h := sha3.NewLegacyKeccak256()
	var byteCount uint64
	cur := args
	for {
		head, tail, ok := alloc.Next(cur)
		if !ok {
			break
		}
		cost += Keccak256CostPerArg
		if err := checkCost(cost+byteCount*Keccak256CostPerByte, maxCost, "keccak256"); err != nil {
			return 0, 0, err
		}
		if err := requireAtom(alloc, head, "keccak256"); err != nil {
			return 0, 0, err
		}
		b := alloc.Atom(head)
		byteCount += uint64(len(b))
		h.Write(b)
		cur = tail
	}
	cost += byteCount * Keccak256CostPerByte
	digest := h.Sum(nil)
	cost += MallocCostPerByte * uint64(len(digest))
	if err := checkCost(cost, maxCost, "keccak256"); err != nil {
		return 0, 0, err
	}
	p, err := alloc.NewAtom(digest)
	if err != nil {
		return 0, 0, err
	}
	return cost, p, nil
}
