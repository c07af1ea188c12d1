package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/obinexus/libpolycall/eventbus"
	"github.com/obinexus/libpolycall/observability"
)

// Logger is the narrow structured-logging surface this package depends
// on; satisfied by eventbus.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// SensitivityClassifier answers whether values of a given canonical
// type id must be copy-on-acquire when shared, rather than zero-copy.
// The memory bridge accepts this as a narrow dependency-inverted
// interface so that C2 never imports the security package directly,
// keeping the declared C1→C2→C3→C4 dependency order acyclic.
type SensitivityClassifier interface {
	IsSensitive(typeID string) bool
}

// AlwaysZeroCopy is a SensitivityClassifier that never requires a copy;
// used when no security layer is wired in (e.g. standalone tests).
type AlwaysZeroCopy struct{}

// IsSensitive always returns false.
func (AlwaysZeroCopy) IsSensitive(string) bool { return false }

// Bridge is the process-wide region index (spec component C2).
type Bridge struct {
	mu      sync.RWMutex
	regions map[RegionHandle]*Region

	poolSize  int
	allocated int

	nextHandle  uint64
	classifier  SensitivityClassifier
	bus         *eventbus.Bus
	logger      Logger
}

// New creates a memory bridge with the given pool size limit (0 means
// unbounded), sensitivity classifier, event bus for GC/audit dispatch,
// and logger.
func New(poolSize int, classifier SensitivityClassifier, bus *eventbus.Bus, logger Logger) *Bridge {
	if classifier == nil {
		classifier = AlwaysZeroCopy{}
	}
	if bus == nil {
		bus = eventbus.New(nil)
	}
	return &Bridge{
		regions:    make(map[RegionHandle]*Region),
		poolSize:   poolSize,
		classifier: classifier,
		bus:        bus,
		logger:     logger,
	}
}

// Acquire allocates a new region with the given size, alignment, owner
// label, and initial permission bitset. RefCount starts at 1 (the
// owner's implicit reference).
func (b *Bridge) Acquire(size, alignment int, owner string, perms Permission) (RegionHandle, error) {
	if size <= 0 {
		return 0, &InvalidParameterError{Reason: "region size must be positive"}
	}
	if owner == "" {
		return 0, &InvalidParameterError{Reason: "region owner must be non-empty"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.poolSize > 0 && b.allocated+size > b.poolSize {
		return 0, &CapacityExceededError{Requested: size, Available: b.poolSize - b.allocated}
	}

	handle := RegionHandle(atomic.AddUint64(&b.nextHandle, 1))
	b.regions[handle] = &Region{
		Handle:      handle,
		Base:        uint64(handle) << 16, // opaque, distinguishable-only identifier
		Size:        size,
		Alignment:   alignment,
		Owner:       owner,
		Permissions: perms,
		RefCount:    1,
	}
	b.allocated += size

	if b.logger != nil {
		b.logger.Debug("region_acquired", "handle", uint64(handle), "owner", owner, "size", size)
	}
	observability.RecordMemoryEvent("acquire")
	return handle, nil
}

// IncRef increments a region's reference count.
func (b *Bridge) IncRef(handle RegionHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.regions[handle]
	if !ok {
		return &RegionNotFoundError{Handle: handle}
	}
	r.RefCount++
	return nil
}

// DecRef decrements a region's reference count. It never frees the
// region itself — Release is the only operation that does. Release does
// not consult the reference count: it frees the region whenever no
// borrower remains (or when force is set), whatever the count is.
func (b *Bridge) DecRef(handle RegionHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.regions[handle]
	if !ok {
		return &RegionNotFoundError{Handle: handle}
	}
	if r.RefCount > 0 {
		r.RefCount--
	}
	return nil
}

// AddBorrower grants label a borrow of handle with the requested
// permission, which must be a subset of the owner's permission set.
// Borrower permissions are intersected, never extended.
func (b *Bridge) AddBorrower(handle RegionHandle, label string, requested Permission) error {
	if label == "" {
		return &InvalidParameterError{Reason: "borrower label must be non-empty"}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.regions[handle]
	if !ok {
		return &RegionNotFoundError{Handle: handle}
	}
	if !requested.IsSubsetOf(r.Permissions) {
		return &PermissionEscalationError{Handle: handle, Owner: r.Permissions, Requested: requested, BorrowerID: label}
	}

	if idx := r.borrowerIndex(label); idx >= 0 {
		r.Borrowers[idx].Permission = requested
		return nil
	}

	r.Borrowers = append(r.Borrowers, Borrower{Label: label, Permission: requested})
	r.Shared = true
	r.RefCount++
	return nil
}

// RemoveBorrower releases label's borrow of handle. Circular sharing
// between borrowers never affects the owner's own reference — only the
// borrower's slot and the count it contributed are removed.
func (b *Bridge) RemoveBorrower(handle RegionHandle, label string) error {
	b.mu.Lock()
	reclaimable := false
	var region *Region

	r, ok := b.regions[handle]
	if !ok {
		b.mu.Unlock()
		return &RegionNotFoundError{Handle: handle}
	}
	idx := r.borrowerIndex(label)
	if idx < 0 {
		b.mu.Unlock()
		return &InvalidParameterError{Reason: "no such borrower: " + label}
	}
	r.Borrowers = append(r.Borrowers[:idx], r.Borrowers[idx+1:]...)
	if r.RefCount > 0 {
		r.RefCount--
	}
	if len(r.Borrowers) == 0 && r.RefCount <= 1 {
		reclaimable = true
		region = r
	}
	b.mu.Unlock()

	if reclaimable {
		b.bus.Publish(context.Background(), eventbus.RegionReclaimableEvent{
			RegionHandle: uint64(handle),
			Language:     region.Owner,
		})
	}
	return nil
}

// Query returns a race-free snapshot of a region's current state.
func (b *Bridge) Query(handle RegionHandle) (Info, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.regions[handle]
	if !ok {
		return Info{}, &RegionNotFoundError{Handle: handle}
	}
	return r.snapshot(), nil
}

// Release logically frees a region. Unless force is set, it fails with
// StillBorrowedError while any borrower remains. With force, the region
// is freed regardless, an audit event is published describing the
// policy violation, and any remaining borrowers are invalidated (their
// subsequent operations on this handle will see RegionNotFoundError).
func (b *Bridge) Release(handle RegionHandle, force bool) error {
	b.mu.Lock()
	r, ok := b.regions[handle]
	if !ok {
		b.mu.Unlock()
		return &RegionNotFoundError{Handle: handle}
	}

	if len(r.Borrowers) > 0 && !force {
		b.mu.Unlock()
		return &StillBorrowedError{Handle: handle, BorrowCount: len(r.Borrowers)}
	}

	forced := len(r.Borrowers) > 0 && force
	delete(b.regions, handle)
	b.allocated -= r.Size
	owner := r.Owner
	b.mu.Unlock()

	if forced {
		b.bus.Publish(context.Background(), eventbus.AuditEvent{
			Timestamp:      time.Now().UTC(),
			SourceLanguage: owner,
			Action:         "policy_violation",
			Allowed:        true,
			Detail:         "region released by force with live borrowers",
		})
	}
	if b.logger != nil {
		b.logger.Debug("region_released", "handle", uint64(handle), "forced", forced)
	}
	observability.RecordMemoryEvent("release")
	return nil
}

// Share makes handle's value available to borrower under requested
// permission, honoring the security layer's copy-on-acquire policy for
// values of a sensitive canonical type: sensitive values are copied into
// a fresh owned region for the borrower rather than shared by reference;
// non-sensitive values are shared zero-copy via AddBorrower.
func (b *Bridge) Share(handle RegionHandle, borrower string, requested Permission, typeID string) (RegionHandle, error) {
	if !b.classifier.IsSensitive(typeID) {
		if err := b.AddBorrower(handle, borrower, requested); err != nil {
			return 0, err
		}
		return handle, nil
	}

	b.mu.RLock()
	r, ok := b.regions[handle]
	if !ok {
		b.mu.RUnlock()
		return 0, &RegionNotFoundError{Handle: handle}
	}
	size, perms := r.Size, r.Permissions
	b.mu.RUnlock()

	if !requested.IsSubsetOf(perms) {
		return 0, &PermissionEscalationError{Handle: handle, Owner: perms, Requested: requested, BorrowerID: borrower}
	}
	return b.Acquire(size, 0, borrower, requested)
}

// RegisterGCNotifier subscribes handler to reclaimable-region
// notifications scoped to language. The returned func unsubscribes.
// Handlers always run outside the bridge's own lock.
func (b *Bridge) RegisterGCNotifier(language string, handler func(handle RegionHandle)) func() {
	return b.bus.Subscribe(eventbus.TopicRegionReclaimable, func(ctx context.Context, event eventbus.Event) error {
		ev, ok := event.(eventbus.RegionReclaimableEvent)
		if !ok || ev.Language != language {
			return nil
		}
		handler(RegionHandle(ev.RegionHandle))
		return nil
	})
}

// Count returns the number of live regions.
func (b *Bridge) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.regions)
}
