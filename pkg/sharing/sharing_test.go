package sharing_test

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/tprf/pkg/combinatorics"
	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/party"
	"github.com/luxfi/tprf/pkg/sharing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitReconstructsSecret(t *testing.T) {
	mod := field.NewModulus(1<<31 - 1)
	s, err := field.RandVector(mod, 4, rand.Reader)
	require.NoError(t, err)

	sd, ss, err := sharing.Split(s, rand.Reader)
	require.NoError(t, err)
	assert.True(t, s.Equal(sd.Add(ss)))
}

func TestDisperseAndReconstructEveryGroup(t *testing.T) {
	const n, threshold, T = 4, 3, 5
	mod := field.NewModulus(1<<31 - 1)
	table := combinatorics.NewTable()

	s, err := field.RandVector(mod, n, rand.Reader)
	require.NoError(t, err)
	sd, ss, err := sharing.Split(s, rand.Reader)
	require.NoError(t, err)

	repo := sharing.NewRepository(mod, n, threshold, T, table)
	require.NoError(t, repo.Disperse(sd, ss, rand.Reader))

	for g := uint64(1); g <= repo.GroupCount(); g++ {
		got, err := repo.Reconstruct(g)
		require.NoError(t, err)
		assert.True(t, sd.Equal(got), "group %d did not reconstruct sd", g)
	}
}

func TestThresholdTwoDegeneratesCorrectly(t *testing.T) {
	const n, threshold, T = 3, 2, 4
	mod := field.NewModulus(1<<31 - 1)
	table := combinatorics.NewTable()

	s, err := field.RandVector(mod, n, rand.Reader)
	require.NoError(t, err)
	sd, ss, err := sharing.Split(s, rand.Reader)
	require.NoError(t, err)

	repo := sharing.NewRepository(mod, n, threshold, T, table)
	require.NoError(t, repo.Disperse(sd, ss, rand.Reader))

	for g := uint64(1); g <= repo.GroupCount(); g++ {
		got, err := repo.Reconstruct(g)
		require.NoError(t, err)
		assert.True(t, sd.Equal(got))
	}
}

func TestRotatePartyScalesShares(t *testing.T) {
	const n, threshold, T = 4, 3, 5
	mod := field.NewModulus(1<<31 - 1)
	table := combinatorics.NewTable()

	s, err := field.RandVector(mod, n, rand.Reader)
	require.NoError(t, err)
	sd, ss, err := sharing.Split(s, rand.Reader)
	require.NoError(t, err)

	repo := sharing.NewRepository(mod, n, threshold, T, table)
	require.NoError(t, repo.Disperse(sd, ss, rand.Reader))

	sigma := field.FromUint64(mod, 7)
	for id := party.ID(1); id <= party.ID(T); id++ {
		repo.RotateParty(id, sigma)
	}

	for g := uint64(1); g <= repo.GroupCount(); g++ {
		got, err := repo.Reconstruct(g)
		require.NoError(t, err)
		assert.True(t, sd.Scale(sigma).Equal(got), "rotation linearity failed for group %d", g)
	}
}
