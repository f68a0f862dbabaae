// Package tprf implements the protocol orchestrator of spec §4.6: the
// Registration, Verification and Key-Update state machine binding the User,
// Server and Device roles together over the message schema of pkg/wire.
package tprf

import (
	"fmt"

	"github.com/luxfi/tprf/pkg/perr"
)

// Params are the process-wide constants of spec §3: a prime modulus q, an
// intermediate modulus q1, an output modulus p (q > q1 > p), a vector
// dimension n, a total party count T (devices + 1 server) and a threshold t.
type Params struct {
	Q         uint64
	Q1        uint64
	P         uint64
	N         int
	T         int
	Threshold int
}

// Validate checks the modulus ordering and the t/T/n relationships of spec
// §3/§7 (InvalidParameter). It does not check that Q, Q1, P are powers of
// two: callers that need bit-shift rounding must ensure that themselves, but
// the integer-division RoundTo this package uses (pkg/field.RoundTo) is
// correct for any modulus pair with Q1 <= Q.
func (p Params) Validate() error {
	if p.Q1 >= p.Q || p.P >= p.Q1 {
		return perr.New(perr.InvalidParameter, fmt.Sprintf("modulus ordering violated: q=%d q1=%d p=%d", p.Q, p.Q1, p.P))
	}
	if p.N <= 0 {
		return perr.New(perr.InvalidParameter, fmt.Sprintf("invalid vector dimension n=%d", p.N))
	}
	if p.T < 2 {
		return perr.New(perr.InvalidParameter, fmt.Sprintf("invalid party count T=%d", p.T))
	}
	if p.Threshold < 2 || p.Threshold > p.T {
		return perr.New(perr.InvalidParameter, fmt.Sprintf("invalid threshold t=%d for T=%d", p.Threshold, p.T))
	}
	return nil
}

// NDevices returns the number of device parties, T-1 (the remaining party is
// the server).
func (p Params) NDevices() int {
	return p.T - 1
}
