package wire_test

import (
	"testing"

	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/party"
	"github.com/luxfi/tprf/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := wire.VerificationRequest{
		Session2: []byte("session-2"),
		Alpha:    wire.VectorMap{0: 5, 1: 9},
	}
	env, err := wire.Encode(wire.KindVerificationRequest, 1, 2, payload)
	require.NoError(t, err)

	line, err := env.Marshal()
	require.NoError(t, err)

	got, err := wire.Unmarshal(line)
	require.NoError(t, err)
	assert.Equal(t, wire.KindVerificationRequest, got.Kind)
	assert.Equal(t, party.ID(1), got.From)
	assert.Equal(t, party.ID(2), got.To)

	var decoded wire.VerificationRequest
	require.NoError(t, got.Decode(&decoded))
	assert.Equal(t, payload.Session2, decoded.Session2)
	assert.Equal(t, payload.Alpha, decoded.Alpha)
}

func TestVectorMapRoundTrip(t *testing.T) {
	mod := field.NewModulus(97)
	v := field.Vector{field.FromUint64(mod, 3), field.FromUint64(mod, 50), field.FromUint64(mod, 96)}

	m := wire.ToVectorMap(v)
	got := wire.FromVectorMap(mod, len(v), m)
	assert.True(t, v.Equal(got))
}
