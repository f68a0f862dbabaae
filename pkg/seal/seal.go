// Package seal implements the verification oracle of spec §4.5: a ciphertext
// of a known plaintext token under a key derived from rw. Unsealing
// correctly is the pass/fail signal of the whole protocol.
package seal

import (
	"bytes"
	"fmt"

	"github.com/luxfi/tprf/pkg/suite"
)

// Token is the fixed plaintext sealed at registration and checked at every
// verification.
const Token = "Hello"

// Verifier is the server's stored sealed verifier: a ciphertext and IV
// encrypting Token under KDF(rw).
type Verifier struct {
	Ciphertext []byte
	IV         []byte
}

// Seal encrypts Token under KDF(rw) with a fresh random IV.
func Seal(s suite.Suite, rw uint64) (Verifier, error) {
	key := s.KDF(rw)
	ct, iv, err := s.Seal(key, []byte(Token))
	if err != nil {
		return Verifier{}, fmt.Errorf("seal: %w", err)
	}
	return Verifier{Ciphertext: ct, IV: iv}, nil
}

// Unseal decrypts v under KDF(rw) and reports whether the plaintext is
// exactly Token. A decryption/padding error and a wrong-token decryption are
// both treated as a failed verification, per spec §4.5.
func Unseal(s suite.Suite, rw uint64, v Verifier) bool {
	key := s.KDF(rw)
	plain, err := s.Unseal(key, v.Ciphertext, v.IV)
	if err != nil {
		return false
	}
	return bytes.Equal(plain, []byte(Token))
}
