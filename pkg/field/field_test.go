package field_test

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/tprf/pkg/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementArithmetic(t *testing.T) {
	m := field.NewModulus(17)
	a := field.FromUint64(m, 10)
	b := field.FromUint64(m, 12)

	assert.Equal(t, uint64(5), a.Add(b).Uint64()) // 22 mod 17
	assert.Equal(t, uint64(15), a.Sub(b).Uint64()) // -2 mod 17
	assert.Equal(t, uint64(1), a.Mul(b).Uint64())  // 120 mod 17 = 1

	inv := a.Inv()
	assert.True(t, a.Mul(inv).Equal(field.FromUint64(m, 1)))
}

func TestVectorInnerProduct(t *testing.T) {
	m := field.NewModulus(97)
	x := field.Vector{field.FromUint64(m, 2), field.FromUint64(m, 3)}
	y := field.Vector{field.FromUint64(m, 5), field.FromUint64(m, 7)}

	got := x.Inner(y)
	assert.Equal(t, uint64(2*5+3*7), got.Uint64())
}

func TestRandVectorIsUniformDimension(t *testing.T) {
	m := field.NewModulus(1 << 31)
	v, err := field.RandVector(m, 8, rand.Reader)
	require.NoError(t, err)
	assert.Len(t, v, 8)
}

func TestRoundToIdentity(t *testing.T) {
	assert.Equal(t, uint64(41), field.RoundTo(41, 1024, 1024))
}

func TestRoundToHalfUpBoundary(t *testing.T) {
	// round_to(M-1, M, 1) = 1, half-up at the boundary.
	const M = 1 << 10
	assert.Equal(t, uint64(1), field.RoundTo(M-1, M, 1))
}

func TestRoundToScaling(t *testing.T) {
	// Scaling down by a factor of 4: values round to the nearer output bucket.
	got := field.RoundTo(0, 16, 4)
	assert.Equal(t, uint64(0), got)

	got = field.RoundTo(15, 16, 4)
	assert.Equal(t, uint64(0), got) // 15*4=60, +8=68, /16=4, mod 4 = 0
}

func TestRoundToPanicsOnInvalidModulusPair(t *testing.T) {
	assert.Panics(t, func() {
		field.RoundTo(1, 4, 16)
	})
}
