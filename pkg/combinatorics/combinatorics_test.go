package combinatorics_test

import (
	"testing"

	"github.com/luxfi/tprf/pkg/combinatorics"
	"github.com/luxfi/tprf/pkg/party"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankSanity(t *testing.T) {
	tbl := combinatorics.NewTable()

	g, err := tbl.Rank(party.IDSlice{1, 2, 3}, 3, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, g)

	g, err = tbl.Rank(party.IDSlice{3, 4, 5}, 3, 5)
	require.NoError(t, err)
	assert.EqualValues(t, tbl.C(5, 3), g)
	assert.EqualValues(t, 10, g)

	members, err := tbl.Unrank(4, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, party.IDSlice{1, 3, 4}, members)
}

func TestRankUnrankBijection(t *testing.T) {
	tbl := combinatorics.NewTable()
	const T, threshold = 7, 4
	count := tbl.GroupCount(T, threshold)

	for g := uint64(1); g <= count; g++ {
		members, err := tbl.Unrank(g, threshold, T)
		require.NoError(t, err)
		require.Len(t, members, threshold)

		got, err := tbl.Rank(members, threshold, T)
		require.NoError(t, err)
		assert.Equal(t, g, got)
	}
}

func TestUnrankOutOfRange(t *testing.T) {
	tbl := combinatorics.NewTable()
	_, err := tbl.Unrank(0, 3, 5)
	assert.Error(t, err)

	count := tbl.GroupCount(5, 3)
	_, err = tbl.Unrank(count+1, 3, 5)
	assert.Error(t, err)
}

func TestGroupCountMatchesBinomial(t *testing.T) {
	tbl := combinatorics.NewTable()
	assert.EqualValues(t, 10, tbl.GroupCount(5, 2))
	assert.EqualValues(t, 1, tbl.GroupCount(5, 5))
	assert.EqualValues(t, 1, tbl.GroupCount(5, 0))
}
