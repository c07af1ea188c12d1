package security

import (
	"sync"

	"github.com/obinexus/libpolycall/eventbus"
)

// FunctionSecurity is the security metadata recorded at function
// registration: the permissions a caller must hold and the isolation
// level the function declares.
type FunctionSecurity struct {
	Name       string
	Required   Permission
	Isolation  Level
}

// Config configures a Context at Initialize time. DefaultDeny governs
// the outcome when no ACL entry matches a call. MaxIsolation is the
// configured ceiling a call's effective isolation level may not exceed.
type Config struct {
	DefaultDeny  bool
	MaxIsolation Level
	Policy       Policy
}

// VerifyResult is the outcome of an access check.
type VerifyResult struct {
	Allowed bool
	Missing []string
	Reason  string
}

// Context is a security context (spec component C3): ACL matching,
// permission evaluation, isolation enforcement, and audit, behind an
// explicit lifecycle state machine.
type Context struct {
	mu    sync.RWMutex
	state State

	cfg       Config
	acl       []ACLEntry
	functions map[string]FunctionSecurity
	sensitive map[string]bool

	Audit *AuditLog
}

// NewContext creates a context in the uninitialized state.
func NewContext(audit *AuditLog) *Context {
	if audit == nil {
		audit = NewAuditLog(1024, nil, eventbus.New(nil), nil)
	}
	return &Context{
		state:     StateUninitialized,
		functions: make(map[string]FunctionSecurity),
		sensitive: make(map[string]bool),
		Audit:     audit,
	}
}

// MarkSensitive flags typeID as requiring copy-on-acquire when shared
// across languages. Used by the embedder to wire canonical types that
// carry secrets or otherwise must not be shared zero-copy.
func (c *Context) MarkSensitive(typeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sensitive[typeID] = true
}

// Initialize transitions the context to active with the given policy
// configuration. Only valid from uninitialized.
func (c *Context) Initialize(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateUninitialized {
		return &InvalidStateError{State: c.state, Op: "initialize"}
	}
	if !cfg.MaxIsolation.Valid() {
		cfg.MaxIsolation = LevelProcess
	}
	c.cfg = cfg
	c.state = StateActive
	return nil
}

// State returns the context's current lifecycle state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Context) requireActiveLocked(op string) error {
	if c.state != StateActive {
		return &InvalidStateError{State: c.state, Op: op}
	}
	return nil
}

// AddACLEntry appends entry to the ordered ACL list.
func (c *Context) AddACLEntry(entry ACLEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActiveLocked("add ACL entry"); err != nil {
		return err
	}
	c.acl = append(c.acl, entry)
	return nil
}

// RegisterFunction records a function's required permissions and
// isolation level, and installs an implicit ACL entry (any caller
// language, the function's declared permission requirement) so calls to
// it are governed even with no explicit ACL rule. Explicit rules added
// via AddACLEntry before this call take precedence by virtue of
// first-match ordering.
func (c *Context) RegisterFunction(name string, required Permission, isolation Level) error {
	if name == "" {
		return &InvalidParameterError{Reason: "function name must be non-empty"}
	}
	if !isolation.Valid() {
		isolation = LevelNone
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireActiveLocked("register function"); err != nil {
		return err
	}
	if _, exists := c.functions[name]; exists {
		return &AlreadyRegisteredError{Name: name}
	}
	c.functions[name] = FunctionSecurity{Name: name, Required: required, Isolation: isolation}
	c.acl = append(c.acl, ACLEntry{
		FunctionPattern:       name,
		CallerLanguagePattern: "*",
		Required:              required,
		Enabled:               true,
	})
	return nil
}

// UnregisterFunction removes a function's security record, so the
// function's declared isolation is no longer applied. Its implicit ACL
// entry is left in place and still matches calls to name; a later
// RegisterFunction under the same name appends a second entry, which
// first-match ordering places behind the old one.
func (c *Context) UnregisterFunction(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.functions, name)
}

// VerifyAccess checks whether sourceLanguage may call functionName given
// callerIsolation (the caller's own declared isolation level). It
// returns IsolationViolationError as a hard failure; permission denial
// is reported as a non-error VerifyResult with Allowed=false, matching
// spec.md's {allowed, missing_permissions, reason} contract.
func (c *Context) VerifyAccess(functionName, sourceLanguage, callerContext string, callerIsolation Level) (VerifyResult, error) {
	c.mu.RLock()
	if err := c.requireActiveLocked("verify access"); err != nil {
		c.mu.RUnlock()
		return VerifyResult{}, err
	}
	fn, fnKnown := c.functions[functionName]
	entry, matched := firstMatch(c.acl, functionName, sourceLanguage, callerContext)
	granted := c.cfg.Policy.GrantedPermissions(sourceLanguage, callerContext)
	maxIsolation := c.cfg.MaxIsolation
	defaultDeny := c.cfg.DefaultDeny
	c.mu.RUnlock()

	result := VerifyResult{}
	switch {
	case matched:
		result.Missing = Missing(entry.Required, granted)
		result.Allowed = len(result.Missing) == 0
		if !result.Allowed {
			result.Reason = "caller missing required permissions"
		} else {
			result.Reason = "matched ACL entry"
		}
	case defaultDeny:
		result.Allowed = false
		result.Reason = "no matching ACL entry; default policy is deny"
	default:
		result.Allowed = true
		result.Reason = "no matching ACL entry; default policy is allow"
	}

	if result.Allowed && fnKnown {
		effective := Max(callerIsolation, fn.Isolation)
		if effective.Exceeds(maxIsolation) {
			c.recordVerify(functionName, sourceLanguage, false, result.Missing, "isolation violation")
			return VerifyResult{}, &IsolationViolationError{Effective: effective, Maximum: maxIsolation, Function: functionName}
		}
	}

	c.recordVerify(functionName, sourceLanguage, result.Allowed, result.Missing, result.Reason)
	return result, nil
}

func (c *Context) recordVerify(functionName, sourceLanguage string, allowed bool, missing []string, reason string) {
	c.Audit.Record(eventbus.AuditEvent{
		SourceLanguage: sourceLanguage,
		FunctionName:   functionName,
		Action:         "access_check",
		Allowed:        allowed,
		Missing:        missing,
		Detail:         reason,
	})
}

// RecordEvent lets callers outside this package (the dispatch core)
// route audit events — calls, registrations, shares, releases — through
// the same ring buffer and sinks.
func (c *Context) RecordEvent(event eventbus.AuditEvent) {
	c.Audit.Record(event)
}

// Terminate moves the context from active to terminating.
func (c *Context) Terminate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return &InvalidStateError{State: c.state, Op: "terminate"}
	}
	c.state = StateTerminating
	return nil
}

// Destroy moves the context from terminating to destroyed.
func (c *Context) Destroy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateTerminating {
		return &InvalidStateError{State: c.state, Op: "destroy"}
	}
	c.state = StateDestroyed
	return nil
}

// IsSensitive implements memory.SensitivityClassifier: reports whether
// typeID was flagged via MarkSensitive.
func (c *Context) IsSensitive(typeID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sensitive[typeID]
}
