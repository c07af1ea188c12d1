package memory

import "strings"

// RegionHandle opaquely identifies a memory region. Handles are minted
// from a process-wide atomic counter and never reused.
type RegionHandle uint64

// Permission is a bitset over the operations a region grants.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
	PermShare
)

// String renders the set bits as a pipe-joined label list, e.g. "read|write".
func (p Permission) String() string {
	if p == 0 {
		return "none"
	}
	var parts []string
	if p&PermRead != 0 {
		parts = append(parts, "read")
	}
	if p&PermWrite != 0 {
		parts = append(parts, "write")
	}
	if p&PermExecute != 0 {
		parts = append(parts, "execute")
	}
	if p&PermShare != 0 {
		parts = append(parts, "share")
	}
	return strings.Join(parts, "|")
}

// IsSubsetOf reports whether every bit set in p is also set in other —
// the rule a borrower's grant must satisfy against its owner's.
func (p Permission) IsSubsetOf(other Permission) bool {
	return p&other == p
}

// Borrower records one outstanding borrow of a region.
type Borrower struct {
	Label      string
	Permission Permission
}

// Region is a process-wide memory region tracked by the bridge. Base is
// an opaque identifier, not a dereferenceable address — this bridge
// coordinates ownership and lifetime, it does not itself allocate raw
// memory.
type Region struct {
	Handle      RegionHandle
	Base        uint64
	Size        int
	Alignment   int
	Owner       string
	Permissions Permission
	RefCount    int
	Shared      bool
	Borrowers   []Borrower
}

// Info is a point-in-time, race-free snapshot of a Region returned by
// Query — callers never receive the live *Region.
type Info struct {
	Handle      RegionHandle
	Size        int
	Owner       string
	Permissions Permission
	RefCount    int
	Shared      bool
	Borrowers   []Borrower
}

func (r *Region) snapshot() Info {
	borrowers := make([]Borrower, len(r.Borrowers))
	copy(borrowers, r.Borrowers)
	return Info{
		Handle:      r.Handle,
		Size:        r.Size,
		Owner:       r.Owner,
		Permissions: r.Permissions,
		RefCount:    r.RefCount,
		Shared:      r.Shared,
		Borrowers:   borrowers,
	}
}

func (r *Region) borrowerIndex(label string) int {
	for i, b := range r.Borrowers {
		if b.Label == label {
			return i
		}
	}
	return -1
}
