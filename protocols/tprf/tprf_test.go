package tprf_test

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/tprf/pkg/party"
	"github.com/luxfi/tprf/pkg/perr"
	"github.com/luxfi/tprf/pkg/suite"
	"github.com/luxfi/tprf/protocols/tprf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHarness(t *testing.T) (*tprf.User, *tprf.Server, map[party.ID]*tprf.Device, tprf.Params) {
	t.Helper()
	params := tprf.Params{Q: 1<<31 - 1, Q1: 1 << 30, P: 1 << 16, N: 4, T: 5, Threshold: 3}
	require.NoError(t, params.Validate())

	s := suite.NewStdSuite(rand.Reader)
	server := tprf.NewServer(params, s, nil)

	devices := make(map[party.ID]*tprf.Device, params.NDevices())
	devList := make([]*tprf.Device, 0, params.NDevices())
	for id := party.ID(1); id <= party.ID(params.NDevices()); id++ {
		d := tprf.NewDevice(id, params, s, nil)
		devices[id] = d
		devList = append(devList, d)
	}

	user := tprf.NewUser(params, s, server, devList, rand.Reader, nil)
	require.NoError(t, user.Register("hunter2"))
	return user, server, devices, params
}

func TestHappyPathVerification(t *testing.T) {
	user, _, _, _ := newHarness(t)
	ok, err := user.Verify([]party.ID{1, 2})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRevokedDeviceRejectsVerificationRequest(t *testing.T) {
	user, _, devices, _ := newHarness(t)
	require.NoError(t, user.KeyUpdate(party.IDSlice{3}))

	_, err := devices[3].HandleVerificationRequest(1, nil, []byte("session2"))
	var perrErr *perr.Error
	require.ErrorAs(t, err, &perrErr)
	assert.Equal(t, perr.DeviceRevoked, perrErr.Kind)
}

func TestPostRotationReVerificationSucceeds(t *testing.T) {
	user, _, _, _ := newHarness(t)
	require.NoError(t, user.KeyUpdate(party.IDSlice{4}))

	ok, err := user.Verify([]party.ID{1, 2})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInsufficientQuorumAfterRevocation(t *testing.T) {
	user, server, _, _ := newHarness(t)
	require.NoError(t, user.KeyUpdate(party.IDSlice{3}))

	_, err := user.Verify([]party.ID{3, 2})
	require.Error(t, err)
	var perrErr *perr.Error
	require.ErrorAs(t, err, &perrErr)
	assert.Equal(t, perr.InsufficientQuorum, perrErr.Kind)
	assert.False(t, server.IsActive(3))
}

func TestStatusReflectsMembership(t *testing.T) {
	user, _, _, _ := newHarness(t)
	require.NoError(t, user.KeyUpdate(party.IDSlice{2}))

	active, revoked := user.Status()
	assert.False(t, active.Contains(2))
	assert.True(t, revoked.Contains(2))
}
