// Package party defines party identifiers for the threshold PRF protocol.
//
// Parties are numbered 1..T. IDs 1..T-1 are devices; ID T is always the
// server. Keeping the server as the largest ID lets the rest of the system
// rely on a simple ordering invariant instead of a separate role tag.
package party

import "sort"

// ID identifies one of the T parties participating in a group.
type ID int

// IsDevice reports whether id is a device (as opposed to the server).
func (id ID) IsDevice(total int) bool {
	return int(id) >= 1 && int(id) < total
}

// IsServer reports whether id is the server for a system of total parties.
func (id ID) IsServer(total int) bool {
	return int(id) == total
}

// Server returns the server's ID for a system of total parties.
func Server(total int) ID {
	return ID(total)
}

// IDSlice is a sortable list of party IDs.
type IDSlice []ID

func (s IDSlice) Len() int           { return len(s) }
func (s IDSlice) Less(i, j int) bool { return s[i] < s[j] }
func (s IDSlice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// Sorted returns a sorted copy of s.
func (s IDSlice) Sorted() IDSlice {
	out := make(IDSlice, len(s))
	copy(out, s)
	sort.Sort(out)
	return out
}

// Contains reports whether id appears in s.
func (s IDSlice) Contains(id ID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}
