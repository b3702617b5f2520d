// Package bigint bridges minimally-encoded atoms and signed
// arbitrary-precision integers (spec.md §3.3, §9).
//
// Atoms are interpreted as big-endian two's-complement signed integers.
// math.big is the direct ecosystem equivalent of the original's bespoke
// bigint (original_source/src/number.rs, src/number_gmp.rs) - no
// third-party bignum library in the pack or ecosystem improves on it for
// this use.
package bigint

import "math/big"

// FromAtom interprets b as a big-endian two's-complement signed integer.
// The empty atom denotes zero.
func FromAtom(b []byte) *big.Int {
	n := new(big.Int)
	if len(b) == 0 {
		return n
	}
	n.SetBytes(b)
	if b[0]&0x80 != 0 {
		// Negative: n currently holds the unsigned magnitude of the raw
		// bytes; subtract 2^(8*len(b)) to get the two's-complement value.
		full := new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8)
		n.Sub(n, full)
	}
	return n
}

// ToAtom encodes n as a minimally-encoded big-endian two's-complement
// atom: leading 0x00 bytes are stripped unless needed to keep the high bit
// clear (positive sign), leading 0xff bytes are stripped unless needed to
// keep the high bit set (negative sign). Zero encodes as the empty atom.
func ToAtom(n *big.Int) []byte {
	if n.Sign() == 0 {
		return nil
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0x00}, b...)
		}
		return b
	}

	// Negative: encode via two's complement over the smallest byte length
	// that fits, then strip redundant leading 0xff bytes.
	mag := new(big.Int).Neg(n) // magnitude, > 0
	nbytes := (mag.BitLen() + 8) / 8
	full := new(big.Int).Lsh(big.NewInt(1), uint(nbytes)*8)
	twos := new(big.Int).Add(full, n) // full + n, n is negative

	b := twos.Bytes()
	for len(b) < nbytes {
		b = append([]byte{0xff}, b...)
	}
	for len(b) > 1 && b[0] == 0xff && b[1]&0x80 != 0 {
		b = b[1:]
	}
	return b
}

// IsMinimal reports whether b is the minimal two's-complement encoding of
// the integer it represents - used by strict-mode callers (spec.md §8.4,
// §7 NonMinimalInteger).
func IsMinimal(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	if len(b) == 1 {
		return true
	}
	if b[0] == 0x00 && b[1]&0x80 == 0 {
		return false
	}
	if b[0] == 0xff && b[1]&0x80 != 0 {
		return false
	}
	return true
}

// BoundedInt32 converts b to an int32, failing if the represented value
// does not fit - used by operators that take a bounded count (e.g. substr
// indices, shift counts).
func BoundedInt32(b []byte) (int32, bool) {
	n := FromAtom(b)
	if !n.IsInt64() {
		return 0, false
	}
	v := n.Int64()
	if v < -(1<<31) || v > (1<<31)-1 {
		return 0, false
	}
	return int32(v), true
}
