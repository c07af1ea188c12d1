// Package memory implements the cross-language memory bridge (spec
// component C2): region allocation, ownership and borrowing, reference
// counting, and GC coordination callbacks.
package memory

import "fmt"

// RegionNotFoundError is returned when a handle does not resolve to a
// live region.
type RegionNotFoundError struct {
	Handle RegionHandle
}

func (e *RegionNotFoundError) Error() string {
	return fmt.Sprintf("memory: region %d not found", e.Handle)
}

// PermissionEscalationError is returned when a borrower requests
// permissions that are not a subset of the owner's.
type PermissionEscalationError struct {
	Handle     RegionHandle
	Owner      Permission
	Requested  Permission
	BorrowerID string
}

func (e *PermissionEscalationError) Error() string {
	return fmt.Sprintf("memory: borrower %q requested %s on region %d, exceeds owner grant %s",
		e.BorrowerID, e.Requested, e.Handle, e.Owner)
}

// StillBorrowedError is returned when release is attempted on a region
// that has live borrowers and force was not supplied.
type StillBorrowedError struct {
	Handle       RegionHandle
	BorrowCount  int
}

func (e *StillBorrowedError) Error() string {
	return fmt.Sprintf("memory: region %d still has %d borrower(s)", e.Handle, e.BorrowCount)
}

// CapacityExceededError is returned when a configured memory pool size
// would be exceeded by an acquire.
type CapacityExceededError struct {
	Requested int
	Available int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("memory: pool capacity exceeded: requested %d, available %d", e.Requested, e.Available)
}

// InvalidParameterError is returned for structurally invalid requests.
type InvalidParameterError struct {
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("memory: invalid parameter: %s", e.Reason)
}
