package ops

import (
	"github.com/chia-network/go-clvm/core/dialect"
)

// BaseOperatorSet wires every base-opcode operator implemented in this
// package into the table the evaluator dispatches against (spec.md §6.4).
// Grounded on dialect.go's OperatorSet being "the unit softfork_extension
// hands back" - the base set is the same kind of table, just always in
// scope.
func BaseOperatorSet() dialect.OperatorSet {
	return dialect.OperatorSet{
		dialect.OpIf:           If,
		dialect.OpCons:         Cons,
		dialect.OpFirst:        First,
		dialect.OpRest:         Rest,
		dialect.OpListp:        Listp,
		dialect.OpRaise:        Raise,
		dialect.OpEq:           Eq,
		dialect.OpGrBytes:      GrBytes,
		dialect.OpSha256:       Sha256,
		dialect.OpSubstr:       Substr,
		dialect.OpStrlen:       Strlen,
		dialect.OpConcat:       Concat,
		dialect.OpAdd:          Add,
		dialect.OpSubtract:     Subtract,
		dialect.OpMultiply:     Multiply,
		dialect.OpDivide:       Divide,
		dialect.OpDivmod:       Divmod,
		dialect.OpGr:           Gr,
		dialect.OpAsh:          Ash,
		dialect.OpLsh:          Lsh,
		dialect.OpLogand:       Logand,
		dialect.OpLogior:       Logior,
		dialect.OpLogxor:       Logxor,
		dialect.OpLognot:       Lognot,
		dialect.OpPointAdd:     PointAdd,
		dialect.OpPubkeyForExp: PubkeyForExp,
		dialect.OpNot:          Not,
		dialect.OpAny:          Any,
		dialect.OpAll:          All,
	}
}

// Softfork extension selectors (spec.md §4.5's softfork guard, SPEC_FULL.md
// §4's supplemented extension registrations). These are consensus-visible
// once a dialect registers them: a guard's `(softfork cost ext ...)` form
// names one of these by number.
const (
	ExtBase64  uint32 = 1
	ExtKeccak  uint32 = 2
	ExtBLSG2   uint32 = 3
	ExtSecp256 uint32 = 4
)

// Opcodes used inside the extension operator sets below. Each must avoid
// the base opcodes and also the quote/apply/softfork keyword bytes (1, 2,
// 36): those are intercepted in evalPair before any operator table is ever
// consulted, so an extension opcode reusing one of them would be
// permanently unreachable. Starting the range at 40 (above the highest base
// opcode, OpSoftfork=36) keeps every extension opcode clear of both hazards.
const (
	OpBase64Encode byte = 40
	OpBase64Decode byte = 41
	OpKeccak256    byte = 42
	OpBLSG1Add     byte = 43
	OpBLSG1Sub     byte = 44
	OpBLSG1Mul     byte = 45
	OpBLSG1Neg     byte = 46
	OpBLSG2Add     byte = 47
	OpBLSG2Sub     byte = 48
	OpBLSG2Mul     byte = 49
	OpBLSG2Neg     byte = 50
	OpBLSMapToG1   byte = 51
	OpBLSMapToG2   byte = 52
	OpBLSPairing   byte = 53
	OpBLSVerify    byte = 54
	OpSecp256k1    byte = 55
	OpSecp256r1    byte = 56
)

// Base64Extension is the operator set activated by softfork extension id
// ExtBase64 (SPEC_FULL.md §4).
func Base64Extension() dialect.OperatorSet {
	return dialect.OperatorSet{
		OpBase64Encode: Base64URLEncode,
		OpBase64Decode: Base64URLDecode,
	}
}

// KeccakExtension is the operator set activated by softfork extension id
// ExtKeccak (SPEC_FULL.md §4).
func KeccakExtension() dialect.OperatorSet {
	return dialect.OperatorSet{
		OpKeccak256: Keccak256,
	}
}

// BLSExtension gathers the BLS12-381 bls_g1_*, bls_g2_*, map-to-curve,
// pairing and verify operators that are not part of the always-on base set
// behind a softfork extension, for dialects
// that prefer to gate the more expensive curve operations (SPEC_FULL.md §4).
func BLSExtension() dialect.OperatorSet {
	return dialect.OperatorSet{
		OpBLSG1Add:   BLSG1Add,
		OpBLSG1Sub:   BLSG1Subtract,
		OpBLSG1Mul:   BLSG1Multiply,
		OpBLSG1Neg:   BLSG1Negate,
		OpBLSG2Add:   BLSG2Add,
		OpBLSG2Sub:   BLSG2Subtract,
		OpBLSG2Mul:   BLSG2Multiply,
		OpBLSG2Neg:   BLSG2Negate,
		OpBLSMapToG1: BLSMapToG1,
		OpBLSMapToG2: BLSMapToG2,
		OpBLSPairing: BLSPairingIdentity,
		OpBLSVerify:  BLSVerify,
	}
}

// Secp256Extension gathers the secp256k1/secp256r1 signature verification
// operators behind a softfork extension (SPEC_FULL.md §4).
func Secp256Extension() dialect.OperatorSet {
	return dialect.OperatorSet{
		OpSecp256k1: Secp256k1Verify,
		OpSecp256r1: Secp256r1Verify,
	}
}

// DefaultDialect builds the standard dialect: the base operator set plus
// every softfork extension this package implements, registered under their
// canonical selector numbers (SPEC_FULL.md §4).
func DefaultDialect() *dialect.Dialect {
	d := dialect.New(BaseOperatorSet())
	d.WithExtension(ExtBase64, Base64Extension())
	d.WithExtension(ExtKeccak, KeccakExtension())
	d.WithExtension(ExtBLSG2, BLSExtension())
	d.WithExtension(ExtSecp256, Secp256Extension())
	return d
}
