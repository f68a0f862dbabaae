package tprf

import (
	"bytes"

	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/suite"
)

// revocationSentinel is the literal byte string conventionally sent to a
// device being revoked (spec §3, §9 glossary: "session1 '1'").
var revocationSentinel = []byte("1")

// isRevocationSentinel reports whether raw is the literal revocation marker,
// as opposed to an ordinary session1 value that happens to hash to one.
func isRevocationSentinel(raw []byte) bool {
	return bytes.Equal(raw, revocationSentinel)
}

// sessionScalar derives the field scalar a session value hashes to. The
// sentinel is special-cased to the multiplicative identity directly, rather
// than run through the general hash, since "hashed to the field's
// multiplicative identity" (spec glossary) describes the convention's
// effect, not a coincidental hash collision.
func sessionScalar(s suite.Suite, mod *field.Modulus, raw []byte) field.Element {
	if isRevocationSentinel(raw) {
		return field.FromUint64(mod, 1)
	}
	return s.HashToField(mod, "session1", raw)
}
