package field

import (
	"fmt"
	"math/big"
)

// RoundTo implements the LWR two-stage rounding primitive:
//
//	round_to(x, mIn, mOut) = floor((x*mOut + mIn/2) / mIn) mod mOut
//
// This is the normative integer-division definition (spec §4.1/§9): any
// shift-based implementation must match it bit-for-bit, so only this
// definition is provided. mIn must be >= mOut; violating that is a
// programming error, not a runtime condition, hence the panic rather than an
// error return. The moduli are not required to be powers of two: the formula
// is applied to any pair as given.
func RoundTo(x, mIn, mOut uint64) uint64 {
	if mOut > mIn {
		panic(fmt.Sprintf("field: invalid modulus pair for RoundTo: mIn=%d < mOut=%d", mIn, mOut))
	}
	if mIn == mOut {
		return x % mOut
	}

	num := new(big.Int).SetUint64(x)
	num.Mul(num, new(big.Int).SetUint64(mOut))
	num.Add(num, new(big.Int).SetUint64(mIn/2))

	q := new(big.Int).Div(num, new(big.Int).SetUint64(mIn))
	q.Mod(q, new(big.Int).SetUint64(mOut))
	return q.Uint64()
}
