package transcript_test

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/tprf/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCapturesPhaseOutcomes(t *testing.T) {
	r := transcript.NewRecorder()
	r.OnPhaseStart("registration")
	r.OnPhaseEnd("registration", nil)
	r.OnPhaseStart("verification")
	r.OnPhaseEnd("verification", errors.New("boom"))

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "registration", entries[0].Phase)
	assert.True(t, entries[0].OK)
	assert.Equal(t, "verification", entries[1].Phase)
	assert.False(t, entries[1].OK)
	assert.Equal(t, "boom", entries[1].Err)
}

func TestMarshalProducesValidCbor(t *testing.T) {
	r := transcript.NewRecorder()
	r.OnPhaseStart("registration")
	r.OnPhaseEnd("registration", nil)

	b, err := r.Marshal()
	require.NoError(t, err)

	var decoded []transcript.Entry
	require.NoError(t, cbor.Unmarshal(b, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "registration", decoded[0].Phase)
}
