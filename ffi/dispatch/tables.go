package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/obinexus/libpolycall/ffi/bridge"
	"github.com/obinexus/libpolycall/ffi/types"
)

// languageEntry is one registered language bridge. callMu serializes
// calls into adapters that have not declared CapabilityThreadSafe,
// implementing the spec's "adapter-scoped lock" scheduling model.
type languageEntry struct {
	label        string
	adapter      bridge.Adapter
	capabilities bridge.Capability
	callMu       sync.Mutex
}

func (le *languageEntry) threadSafe() bool {
	return le.capabilities.Has(bridge.CapabilityThreadSafe)
}

// FunctionRecord is the immutable metadata recorded at function
// registration.
type FunctionRecord struct {
	Name           string
	Callee         bridge.Callee
	Signature      *types.Signature
	SourceLanguage string
	Flags          uint32
}

// functionEntry wraps a FunctionRecord with an in-flight call counter.
// Unregister removes the map entry immediately so no new lookup can
// reach it; a call already holding a pointer to the entry (captured
// before removal) runs to completion unaffected, which is the "deferred
// deletion until no in-flight call references the record" the registry
// contract calls for — Go's own reference semantics provide the
// deferral, and inflight exists so tests and diagnostics can observe it.
type functionEntry struct {
	record   FunctionRecord
	inflight int32
}

// tables holds the language and function registries behind one mutex,
// matching spec.md §5's "registry mutations are serialized" and
// "registry → security → memory bridge → audit → performance" lock
// ordering: this is the first lock any dispatch path acquires.
type tables struct {
	mu        sync.RWMutex
	languages map[string]*languageEntry
	functions map[string]*functionEntry

	functionCapacity int
}

func newTables(functionCapacity int) *tables {
	return &tables{
		languages:        make(map[string]*languageEntry),
		functions:        make(map[string]*functionEntry),
		functionCapacity: functionCapacity,
	}
}

// registerLanguage adds label's adapter to the language table.
// Registering the same label twice fails.
func (t *tables) registerLanguage(label string, adapter bridge.Adapter, capabilities bridge.Capability) error {
	if label == "" {
		return &InvalidParameterError{Reason: "language label must be non-empty"}
	}
	if adapter == nil {
		return &InvalidParameterError{Reason: "adapter must be non-nil"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.languages[label]; exists {
		return &AlreadyRegisteredError{Kind: "language", Name: label}
	}
	t.languages[label] = &languageEntry{label: label, adapter: adapter, capabilities: capabilities}
	return nil
}

// unregisterLanguage removes label's bridge from the table, if present.
func (t *tables) unregisterLanguage(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.languages, label)
}

func (t *tables) lookupLanguage(label string) (*languageEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	le, ok := t.languages[label]
	return le, ok
}

func (t *tables) languageCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.languages)
}

// registerFunction exposes a function under name. Name uniqueness is
// enforced; exceeding the configured function capacity fails without
// mutating the table.
func (t *tables) registerFunction(record FunctionRecord) error {
	if record.Name == "" {
		return &InvalidParameterError{Reason: "function name must be non-empty"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.functions[record.Name]; exists {
		return &AlreadyRegisteredError{Kind: "function", Name: record.Name}
	}
	if t.functionCapacity > 0 && len(t.functions) >= t.functionCapacity {
		return &CapacityExceededError{Table: "function", Capacity: t.functionCapacity}
	}
	t.functions[record.Name] = &functionEntry{record: record}
	return nil
}

// unregisterFunction removes name's record, if present. A call already
// in flight against the old entry is unaffected — see functionEntry.
func (t *tables) unregisterFunction(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.functions, name)
}

func (t *tables) lookupFunction(name string) (*functionEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fe, ok := t.functions[name]
	return fe, ok
}

func (t *tables) functionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.functions)
}

func (t *tables) functionNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.functions))
	for name := range t.functions {
		names = append(names, name)
	}
	return names
}

func (t *tables) languageNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.languages))
	for name := range t.languages {
		names = append(names, name)
	}
	return names
}

func (fe *functionEntry) enter() {
	atomic.AddInt32(&fe.inflight, 1)
}

func (fe *functionEntry) leave() {
	atomic.AddInt32(&fe.inflight, -1)
}

func (fe *functionEntry) inFlight() int32 {
	return atomic.LoadInt32(&fe.inflight)
}
