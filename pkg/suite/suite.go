// Package suite is the narrow seam (spec §6) through which this system
// consumes external cryptographic primitives: a hash function, a block
// cipher mode (AES-256-CBC, without a MAC), and a cryptographic PRNG. Every other package depends
// only on this interface, never directly on crypto/sha256 or crypto/aes, so
// the primitives can be swapped without touching the protocol logic — the
// same seam gdwrd-esrp's engine/crypto split provides for SRP.
package suite

import (
	"io"

	"github.com/luxfi/tprf/pkg/field"
)

// Suite is the full set of external primitives this system needs.
type Suite interface {
	// HashToField hashes label and parts into a single F_q element. Used for
	// H(pw), H(session1) and H(session2) alike: this system broadcasts the
	// password hash across all n PRF input components rather than hashing
	// each independently (see pkg/prf's doc comment for why that's what
	// makes the blinding rebind exactly).
	HashToField(mod *field.Modulus, label string, parts ...[]byte) field.Element

	// KDF derives a 256-bit AES key from the PRF output rw, per spec §4.5:
	// K = SHA-256(little-endian 8-byte encoding of rw).
	KDF(rw uint64) [32]byte

	// Seal encrypts plaintext under key with a fresh random IV, returning
	// ciphertext and IV separately, per spec §4.5 (AES-256-CBC).
	Seal(key [32]byte, plaintext []byte) (ciphertext, iv []byte, err error)

	// Unseal decrypts ciphertext under key and iv. An error (including a
	// padding error) means verification failed.
	Unseal(key [32]byte, ciphertext, iv []byte) ([]byte, error)

	// Rand returns n cryptographically random bytes.
	Rand(n int) ([]byte, error)

	// Reader exposes the suite's entropy source for callers that need an
	// io.Reader directly (e.g. field.RandVector).
	Reader() io.Reader

	// TraceID derives a short, non-normative tag for logging/test transcripts
	// from arbitrary context bytes. Never used for protocol-critical values.
	TraceID(parts ...[]byte) string
}
