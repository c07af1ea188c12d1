package eventbus

import "time"

// Topic name constants for the events the FFI core publishes internally.
const (
	// TopicAuditEvent carries every ffi/security audit event to external
	// subscribers (the embedder's own logging/SIEM pipeline).
	TopicAuditEvent = "ffi.audit_event"
	// TopicRegionReclaimable carries a per-language GC notifier callback
	// ("this language's last reference to a shared region is gone").
	TopicRegionReclaimable = "ffi.region_reclaimable"
)

// AuditEvent is published on TopicAuditEvent whenever ffi/security records
// an access check, call, register/unregister, share/release, or policy
// violation.
type AuditEvent struct {
	Timestamp      time.Time
	SourceLanguage string
	TargetLanguage string
	FunctionName   string
	Action         string
	Allowed        bool
	Missing        []string
	Detail         string
}

// Topic implements Event.
func (AuditEvent) Topic() string { return TopicAuditEvent }

// RegionReclaimableEvent is published by a language's GC notifier when its
// last live reference to a shared region has been collected.
type RegionReclaimableEvent struct {
	RegionHandle uint64
	Language     string
}

// Topic implements Event.
func (RegionReclaimableEvent) Topic() string { return TopicRegionReclaimable }
