// Package sharing implements the Sharing Engine of spec §4.3: the outer
// (2,2) split of the master secret and the inner additive-replicated
// dispersion of the device share across every t-subset of parties.
package sharing

import (
	"fmt"
	"io"

	"github.com/luxfi/tprf/pkg/combinatorics"
	"github.com/luxfi/tprf/pkg/field"
	"github.com/luxfi/tprf/pkg/party"
)

// Split performs the outer (2,2) split: Sd is drawn uniformly, Ss = S - Sd.
// Both are marginally uniform; together they reconstruct S exactly.
func Split(s field.Vector, r io.Reader) (sd, ss field.Vector, err error) {
	if len(s) == 0 {
		return nil, nil, fmt.Errorf("sharing: empty secret")
	}
	sd, err = field.RandVector(s[0].Modulus(), len(s), r)
	if err != nil {
		return nil, nil, fmt.Errorf("sharing: split: %w", err)
	}
	ss = s.Sub(sd)
	return sd, ss, nil
}

// key identifies one party's share within one group.
type key struct {
	Party party.ID
	Group uint64
}

// Repository is the combinatorial group-indexed share store of spec §3: a
// mapping (party_id, group_id) -> V, arranged as a flat arena rather than the
// doubly-nested party->group map of the original source (spec §9).
type Repository struct {
	mod   *field.Modulus
	n     int
	t, T  int
	table *combinatorics.Table
	store map[key]field.Vector
}

// NewRepository builds an empty repository for the given field, vector
// dimension, threshold and party count.
func NewRepository(mod *field.Modulus, n, t, T int, table *combinatorics.Table) *Repository {
	return &Repository{
		mod:   mod,
		n:     n,
		t:     t,
		T:     T,
		table: table,
		store: make(map[key]field.Vector),
	}
}

// GroupCount returns C(T, t), the number of groups in this repository.
func (r *Repository) GroupCount() uint64 {
	return r.table.GroupCount(r.T, r.t)
}

// Disperse implements shareSecret (spec §4.3): for every group g, the t
// members {m_1 < ... < m_t} receive shares such that
// R[m_1][g] - sum_{i>1} R[m_i][g] = sd. Members 2..t get uniformly random
// shares, EXCEPT the server, whose slot always holds the fixed outer share ss
// (spec §3: "the server additionally stores R[T][g] = Ss for every g") rather
// than a freshly drawn one — the server never reconstructs sd on its own, so
// its contribution to the group sum must be the same ss in every group it
// belongs to, not an independent random value. Member 1 (the smallest index,
// never the server per spec §9) gets the derived share.
func (r *Repository) Disperse(sd, ss field.Vector, rnd io.Reader) error {
	server := party.Server(r.T)
	count := r.GroupCount()
	for g := uint64(1); g <= count; g++ {
		members, err := r.table.Unrank(g, r.t, r.T)
		if err != nil {
			return fmt.Errorf("sharing: disperse: %w", err)
		}

		sum := field.NewVector(r.mod, r.n)
		for _, m := range members[1:] {
			var share field.Vector
			if m == server {
				share = ss
			} else {
				share, err = field.RandVector(r.mod, r.n, rnd)
				if err != nil {
					return fmt.Errorf("sharing: disperse: %w", err)
				}
			}
			r.store[key{m, g}] = share
			sum = sum.Add(share)
		}
		r.store[key{members[0], g}] = sd.Add(sum)
	}
	return nil
}

// ShareOf returns the share a party holds within a given group.
func (r *Repository) ShareOf(id party.ID, g uint64) (field.Vector, bool) {
	v, ok := r.store[key{id, g}]
	return v, ok
}

// RotateParty multiplies every share belonging to id by sigma in place,
// implementing the multiplicative rotation of spec §4.7. A revoked device
// calls this with sigma = 1 (a no-op on the values, but the caller still
// marks the device revoked).
func (r *Repository) RotateParty(id party.ID, sigma field.Element) {
	count := r.GroupCount()
	for g := uint64(1); g <= count; g++ {
		k := key{id, g}
		if v, ok := r.store[k]; ok {
			r.store[k] = v.Scale(sigma)
		}
	}
}

// Reconstruct combines the shares of a group's t members into their shared
// secret sd (or sd*sigma after rotation): the smallest member's share minus
// the sum of the rest, per spec §4.3/§4.4. Used directly by tests; the PRF
// engine implements the same rule over partial PRF evaluations rather than
// raw shares.
func (r *Repository) Reconstruct(g uint64) (field.Vector, error) {
	members, err := r.table.Unrank(g, r.t, r.T)
	if err != nil {
		return nil, fmt.Errorf("sharing: reconstruct: %w", err)
	}
	m1, ok := r.ShareOf(members[0], g)
	if !ok {
		return nil, fmt.Errorf("sharing: reconstruct: missing share for party %d group %d", members[0], g)
	}
	out := m1
	for _, m := range members[1:] {
		share, ok := r.ShareOf(m, g)
		if !ok {
			return nil, fmt.Errorf("sharing: reconstruct: missing share for party %d group %d", m, g)
		}
		out = out.Sub(share)
	}
	return out, nil
}
