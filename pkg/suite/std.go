package suite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/luxfi/tprf/pkg/field"
	"github.com/zeebo/blake3"
)

// StdSuite is the production Suite: SHA-256 for hashing and the KDF,
// AES-256-CBC with PKCS#7 padding for the seal, crypto/rand for entropy.
// blake3 is used only for the non-normative TraceID tag, never for anything
// H(...) feeds into the field.
type StdSuite struct {
	rand io.Reader
}

// NewStdSuite builds the default Suite. A nil reader defaults to
// crypto/rand.Reader.
func NewStdSuite(r io.Reader) *StdSuite {
	if r == nil {
		r = rand.Reader
	}
	return &StdSuite{rand: r}
}

func (s *StdSuite) Reader() io.Reader { return s.rand }

func (s *StdSuite) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.rand, buf); err != nil {
		return nil, fmt.Errorf("suite: rand: %w", err)
	}
	return buf, nil
}

// HashToField hashes label||parts with SHA-256 and reduces the first 8 bytes
// of the digest, read little-endian, modulo q — the scalar analogue of the
// original source's hash_to_ZZp_single.
func (s *StdSuite) HashToField(mod *field.Modulus, label string, parts ...[]byte) field.Element {
	h := sha256.New()
	h.Write([]byte(label))
	for _, p := range parts {
		h.Write(p)
	}
	digest := h.Sum(nil)
	x := binary.LittleEndian.Uint64(digest[:8])
	return field.FromUint64(mod, x)
}

// KDF implements K = SHA-256(LE64(rw)), spec §4.5.
func (s *StdSuite) KDF(rw uint64) [32]byte {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], rw)
	return sha256.Sum256(le[:])
}

// Seal encrypts plaintext with AES-256-CBC under a fresh random IV, using
// PKCS#7 padding to round out to the block size.
func (s *StdSuite) Seal(key [32]byte, plaintext []byte) (ciphertext, iv []byte, err error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, nil, fmt.Errorf("suite: new cipher: %w", err)
	}

	iv, err = s.Rand(aes.BlockSize)
	if err != nil {
		return nil, nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, iv, nil
}

// Unseal decrypts and un-pads a ciphertext sealed by Seal. Any padding or
// length error is reported, letting the caller fold it into
// perr.VerificationMismatch.
func (s *StdSuite) Unseal(key [32]byte, ciphertext, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("suite: new cipher: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("suite: ciphertext length %d is not a multiple of the block size", len(ciphertext))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("suite: iv length %d != block size", len(iv))
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	return pkcs7Unpad(plain)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - (len(data) % blockSize)
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	n := len(data)
	if n == 0 {
		return nil, fmt.Errorf("suite: empty plaintext")
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > n || padLen > aes.BlockSize {
		return nil, fmt.Errorf("suite: invalid padding length %d", padLen)
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("suite: malformed padding bytes")
		}
	}
	return data[:n-padLen], nil
}

// TraceID derives a short hex tag (the first 8 bytes of an unkeyed blake3
// hash of the concatenated context bytes) — a fast, non-normative label,
// never fed into H(pw)/H(session*).
func (s *StdSuite) TraceID(parts ...[]byte) string {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p)
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
