// Package combinatorics enumerates, ranks and unranks the t-subsets of
// {1..T} in canonical (smallest-element-first) lexicographic order, giving
// every group of t parties a stable 1-based group_id in [1, C(T,t)].
package combinatorics

import (
	"fmt"
	"sync"

	"github.com/luxfi/tprf/pkg/party"
)

// Table is a memo of C(n,r), filled lazily as values are first requested and
// guarded by a mutex so one Table can be shared between goroutines.
type Table struct {
	mu    sync.Mutex
	cache map[[2]int]uint64
}

// NewTable returns an empty binomial-coefficient memo table.
func NewTable() *Table {
	return &Table{cache: make(map[[2]int]uint64)}
}

// C returns C(n, r), the number of r-subsets of an n-set. C(n, r) is 0 when
// r > n or either argument is negative.
func (t *Table) C(n, r int) uint64 {
	if r > n || n < 0 || r < 0 {
		return 0
	}
	if r == 0 || r == n {
		return 1
	}
	if r == 1 || r == n-1 {
		return uint64(n)
	}

	key := [2]int{n, r}
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.cache[key]; ok {
		return v
	}
	// Pascal's rule; recursion re-enters C and thus re-locks, so recurse via
	// a lock-free helper instead of t.C to avoid deadlocking on t.mu.
	v := t.cUnlocked(n-1, r) + t.cUnlocked(n-1, r-1)
	t.cache[key] = v
	return v
}

func (t *Table) cUnlocked(n, r int) uint64 {
	if r > n || n < 0 || r < 0 {
		return 0
	}
	if r == 0 || r == n {
		return 1
	}
	if r == 1 || r == n-1 {
		return uint64(n)
	}
	key := [2]int{n, r}
	if v, ok := t.cache[key]; ok {
		return v
	}
	v := t.cUnlocked(n-1, r) + t.cUnlocked(n-1, r-1)
	t.cache[key] = v
	return v
}

// GroupCount returns C(T, t), the total number of distinct t-subsets (and
// hence the valid range [1, GroupCount] for a group_id).
func (t *Table) GroupCount(T, t2 int) uint64 {
	return t.C(T, t2)
}

// Unrank returns the t-subset of {1..T} ranked g in canonical
// smallest-element-first lexicographic order, 1-based.
//
// Walks i = 1..T; at each i, if the remaining rank exceeds C(T-i, t-chosen-1)
// then i is skipped and that binomial is subtracted from g, otherwise i is
// included. Terminates once t members are chosen.
func (t *Table) Unrank(g uint64, threshold, T int) (party.IDSlice, error) {
	count := t.GroupCount(T, threshold)
	if g < 1 || g > count {
		return nil, fmt.Errorf("combinatorics: group_id %d out of range [1, %d]", g, count)
	}

	members := make(party.IDSlice, 0, threshold)
	chosen := 0
	for i := 1; i <= T && chosen < threshold; i++ {
		remaining := T - i
		needed := threshold - chosen - 1
		skip := t.C(remaining, needed)
		if g > skip {
			g -= skip
			continue
		}
		members = append(members, party.ID(i))
		chosen++
	}
	return members, nil
}

// Rank returns the 1-based group_id of the given t-subset of {1..T} in
// canonical smallest-element-first lexicographic order. members need not be
// pre-sorted.
func (t *Table) Rank(members party.IDSlice, threshold, T int) (uint64, error) {
	if len(members) != threshold {
		return 0, fmt.Errorf("combinatorics: expected %d members, got %d", threshold, len(members))
	}
	sorted := members.Sorted()

	g := uint64(1)
	chosen := 0
	for i := 1; i <= T && chosen < threshold; i++ {
		if sorted.Contains(party.ID(i)) {
			chosen++
			continue
		}
		needed := threshold - chosen - 1
		g += t.C(T-i, needed)
	}
	return g, nil
}
