// Package prf implements the LWR inner-product PRF of spec §4.4: the direct
// evaluation used for sealing, and the blinded partial evaluation plus
// asymmetric combiner used for threshold reconstruction.
//
// This spec treats H(pw) as a single F_q scalar broadcast across all n PRF
// input components (spec §3: "hash of the password is a single field
// scalar"), rather than n independently-hashed components. That choice is
// what makes the blinding rebind exactly: alpha is itself a broadcast
// scalar, so multiplying the partial inner product by H(session2) after the
// fact recovers <H(pw), share> regardless of what the (non-broadcast) share
// vector looks like: <Broadcast(alpha), share> * H(session2)
// = alpha * H(session2) * sum(share) = H(pw) * sum(share).
package prf

import "github.com/luxfi/tprf/pkg/field"

// Alpha computes the blinding element alpha = H(pw) * H(session2)^-1 in
// F_q, per spec §3. Both inputs are scalars; the caller broadcasts alpha
// into a vector before sending it, per spec §4.4.
func Alpha(hpw, hsession2 field.Element) field.Element {
	return hpw.Mul(hsession2.Inv())
}

// DirectEval computes rw = round_to(round_to(<hpw, s>, q, q1), q1, p), the
// reference evaluation used when sealing the verifier at registration and
// after every rotation (spec §4.4: two-stage, unconditionally).
func DirectEval(hpw, s field.Vector, q, q1, p uint64) uint64 {
	inner := hpw.Inner(s)
	stage1 := field.RoundTo(inner.Uint64(), q, q1)
	return field.RoundTo(stage1, q1, p)
}

// PartialEval computes one party's contribution beta_i to a threshold
// reconstruction: the inner product of the broadcast blinding vector
// alphaVec with this party's share, rebound into the H(pw) domain by
// multiplying by H(session2), then rounded q -> q1 (spec §4.4).
func PartialEval(alphaVec field.Vector, share field.Vector, hsession2 field.Element, q, q1 uint64) uint64 {
	inner := alphaVec.Inner(share)
	rebound := inner.Mul(hsession2)
	return field.RoundTo(rebound.Uint64(), q, q1)
}

// Reconstruct combines a group's ordered partial evaluations into rw':
//
//	interim = beta[0] - sum(beta[1:])   (mod q1)
//	rw'     = round_to(interim, q1, p)
//
// betas must be ordered exactly as the group's canonical member order (the
// smallest-member-first share construction rule of spec §4.3), so betas[0]
// is always the contribution of m_1.
func Reconstruct(betas []uint64, q1, p uint64) uint64 {
	mod := field.NewModulus(q1)
	interim := field.FromUint64(mod, betas[0])
	for _, b := range betas[1:] {
		interim = interim.Sub(field.FromUint64(mod, b))
	}
	return field.RoundTo(interim.Uint64(), q1, p)
}
