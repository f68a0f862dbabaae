package suite_test

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashToFieldIsDeterministic(t *testing.T) {
	s := suite.NewStdSuite(nil)
	mod := field.NewModulus(1<<31 - 1)

	a := s.HashToField(mod, "session1", []byte("hunter2"))
	b := s.HashToField(mod, "session1", []byte("hunter2"))
	assert.True(t, a.Equal(b))

	c := s.HashToField(mod, "session2", []byte("hunter2"))
	assert.False(t, a.Equal(c), "distinct labels must domain-separate")
}

func TestKDFIsDeterministicAndDistinct(t *testing.T) {
	s := suite.NewStdSuite(nil)
	k1 := s.KDF(42)
	k2 := s.KDF(42)
	assert.Equal(t, k1, k2)

	k3 := s.KDF(43)
	assert.NotEqual(t, k1, k3)
}

func TestSealUnsealRoundTrip(t *testing.T) {
	s := suite.NewStdSuite(rand.Reader)
	key := s.KDF(7)

	ciphertext, iv, err := s.Seal(key, []byte("Hello"))
	require.NoError(t, err)

	plain, err := s.Unseal(key, ciphertext, iv)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), plain)
}

func TestUnsealFailsUnderWrongKey(t *testing.T) {
	s := suite.NewStdSuite(rand.Reader)
	ciphertext, iv, err := s.Seal(s.KDF(7), []byte("Hello"))
	require.NoError(t, err)

	_, err = s.Unseal(s.KDF(8), ciphertext, iv)
	assert.Error(t, err)
}

func TestTraceIDIsStableAndDistinct(t *testing.T) {
	s := suite.NewStdSuite(nil)
	a := s.TraceID([]byte("round-1"))
	b := s.TraceID([]byte("round-1"))
	c := s.TraceID([]byte("round-2"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
