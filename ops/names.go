package ops

import "github.com/chia-network/go-clvm/core/dialect"

// Names maps every opcode in BaseOperatorSet to its canonical source-text
// operator name (spec.md §6.4), the inverse of what a parser does with an
// operator atom. The quote, apply and softfork keyword bytes have no entry.
// Used by the disassembler to print `(+ 2 3)` instead of `(16 2 3)`.
var Names = map[byte]string{
	dialect.OpIf:           "i",
	dialect.OpCons:         "c",
	dialect.OpFirst:        "f",
	dialect.OpRest:         "r",
	dialect.OpListp:        "l",
	dialect.OpRaise:        "x",
	dialect.OpEq:           "=",
	dialect.OpGrBytes:      ">s",
	dialect.OpSha256:       "sha256",
	dialect.OpSubstr:       "substr",
	dialect.OpStrlen:       "strlen",
	dialect.OpConcat:       "concat",
	dialect.OpAdd:          "+",
	dialect.OpSubtract:     "-",
	dialect.OpMultiply:     "*",
	dialect.OpDivide:       "/",
	dialect.OpDivmod:       "divmod",
	dialect.OpGr:           ">",
	dialect.OpAsh:          "ash",
	dialect.OpLsh:          "lsh",
	dialect.OpLogand:       "logand",
	dialect.OpLogior:       "logior",
	dialect.OpLogxor:       "logxor",
	dialect.OpLognot:       "lognot",
	dialect.OpPointAdd:     "point_add",
	dialect.OpPubkeyForExp: "pubkey_for_exp",
	dialect.OpNot:          "not",
	dialect.OpAny:          "any",
	dialect.OpAll:          "all",
}

// NameToOpcode is Names inverted, built once at package init.
var NameToOpcode = func() map[string]byte {
	m := make(map[string]byte, len(Names))
	for op, name := range Names {
		m[name] = op
	}
	return m
}()

// AllNames lists every known operator name, in no particular order - the
// candidate set a "did you mean" lookup fuzzy-matches against.
func AllNames() []string {
	names := make([]string, 0, len(Names))
	for _, name := range Names {
		names = append(names, name)
	}
	return names
}
