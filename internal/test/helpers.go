// Package test provides small fixtures shared by the integration suites,
// mirroring the teacher's internal/test helper package.
package test

import "github.com/luxfi/tprf/pkg/party"

// PartyIDs returns the device IDs {1..n}, the server excluded.
func PartyIDs(n int) party.IDSlice {
	ids := make(party.IDSlice, n)
	for i := range ids {
		ids[i] = party.ID(i + 1)
	}
	return ids
}

// The Default* constants are a convenience parameter set matching spec §8 scenario 1:
// n=4, T=5 (4 devices + 1 server), t=3.
const (
	DefaultQ         = 1<<31 - 1
	DefaultQ1        = 1 << 30
	DefaultP         = 1 << 16
	DefaultN         = 4
	DefaultT         = 5
	DefaultThreshold = 3
)
