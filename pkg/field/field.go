// Package field implements modular arithmetic over F_q and the two-stage
// deterministic rounding the LWR PRF is built on.
//
// Every value that crosses a component boundary (a share, a partial
// evaluation, a reconstructed secret) is stored as a saferith.Nat, the same
// canonical fixed-width representation the teacher uses for scalar field
// elements, even though the modular arithmetic itself runs over math/big
// (see DESIGN.md for why: the modulus here is an arbitrary runtime prime,
// not a fixed named curve's scalar field).
package field

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Modulus is a prime (or prime-power-of-two) modulus defining an F_q.
type Modulus struct {
	big *big.Int
}

// NewModulus builds a Modulus from a machine integer. q must be >= 2.
func NewModulus(q uint64) *Modulus {
	if q < 2 {
		panic("field: modulus must be >= 2")
	}
	return &Modulus{big: new(big.Int).SetUint64(q)}
}

// Uint64 returns the canonical machine-integer representation of m, when it
// fits. Moduli in this system are always small enough to fit a uint64.
func (m *Modulus) Uint64() uint64 {
	return m.big.Uint64()
}

func (m *Modulus) reduce(x *big.Int) *big.Int {
	z := new(big.Int).Mod(x, m.big)
	if z.Sign() < 0 {
		z.Add(z, m.big)
	}
	return z
}

// Element is a member of F_q, canonically represented in [0, q).
type Element struct {
	mod *Modulus
	nat *saferith.Nat
}

// Zero returns the additive identity of F_q.
func Zero(m *Modulus) Element {
	return FromBig(m, big.NewInt(0))
}

// FromUint64 builds an element from a machine integer, reducing mod q.
func FromUint64(m *Modulus, x uint64) Element {
	return FromBig(m, new(big.Int).SetUint64(x))
}

// FromBig builds an element from a big.Int, reducing mod q.
func FromBig(m *Modulus, x *big.Int) Element {
	canon := m.reduce(x)
	return Element{
		mod: m,
		nat: new(saferith.Nat).SetBig(canon, canon.BitLen()+1),
	}
}

// Rand draws a uniformly random element of F_q using r as the entropy
// source (expected to be a cryptographic PRNG such as crypto/rand.Reader).
func Rand(m *Modulus, r io.Reader) (Element, error) {
	x, err := rand.Int(r, m.big)
	if err != nil {
		return Element{}, fmt.Errorf("field: rand: %w", err)
	}
	return FromBig(m, x), nil
}

// Modulus returns the element's field.
func (e Element) Modulus() *Modulus { return e.mod }

// Big returns the canonical big.Int representative in [0, q).
func (e Element) Big() *big.Int {
	if e.nat == nil {
		return big.NewInt(0)
	}
	return e.nat.Big()
}

// Uint64 returns the canonical machine-integer representative. Callers must
// ensure q fits in a uint64, which this system's parameters always do.
func (e Element) Uint64() uint64 {
	return e.Big().Uint64()
}

// Equal reports whether e and o represent the same field element.
func (e Element) Equal(o Element) bool {
	return e.Big().Cmp(o.Big()) == 0
}

// Add returns e + o mod q.
func (e Element) Add(o Element) Element {
	return FromBig(e.mod, new(big.Int).Add(e.Big(), o.Big()))
}

// Sub returns e - o mod q.
func (e Element) Sub(o Element) Element {
	return FromBig(e.mod, new(big.Int).Sub(e.Big(), o.Big()))
}

// Mul returns e * o mod q.
func (e Element) Mul(o Element) Element {
	return FromBig(e.mod, new(big.Int).Mul(e.Big(), o.Big()))
}

// Inv returns the multiplicative inverse of e mod q. Panics if e has no
// inverse (e is zero, or shares a factor with a non-prime q), which is a
// programming error in this system.
func (e Element) Inv() Element {
	inv := new(big.Int).ModInverse(e.Big(), e.mod.big)
	if inv == nil {
		panic("field: element has no inverse under this modulus")
	}
	return FromBig(e.mod, inv)
}

// String renders the element in decimal, for diagnostics.
func (e Element) String() string {
	return e.Big().String()
}
