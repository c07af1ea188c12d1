package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/obinexus/libpolycall/eventbus"
	"github.com/obinexus/libpolycall/ffi/perf"
	"github.com/obinexus/libpolycall/ffi/security"
	"github.com/obinexus/libpolycall/ffi/types"
	"github.com/obinexus/libpolycall/observability"
)

// CallOptions carries the per-call information the registry doesn't
// already know from the function record: the caller's source language
// (when it differs from the function's own declared source), its
// security context, and its declared isolation level.
type CallOptions struct {
	SourceLanguage  string
	CallerContext   string
	CallerIsolation security.Level
}

// Call dispatches name against targetLanguage with args, following the
// eight-step algorithm in spec.md §4.4: function lookup, language
// lookup, signature validation, security verification, cache check,
// bridge invocation, cache store, audit.
func (c *Context) Call(ctx context.Context, name, targetLanguage string, args []types.CanonicalValue, opts CallOptions) (types.CanonicalValue, error) {
	start := time.Now()
	status := "error"
	defer func() {
		observability.RecordCall(name, targetLanguage, status, float64(time.Since(start).Microseconds())/1000.0)
	}()

	// Step 1: function lookup.
	fe, ok := c.tables.lookupFunction(name)
	if !ok {
		return types.CanonicalValue{}, &FunctionNotFoundError{Name: name}
	}
	fe.enter()
	defer fe.leave()
	record := fe.record

	// Step 2: target language lookup.
	le, ok := c.tables.lookupLanguage(targetLanguage)
	if !ok {
		return types.CanonicalValue{}, &LanguageNotRegisteredError{Language: targetLanguage}
	}

	// Step 3: signature compatibility, before any conversion or
	// invocation so a mismatch never leaves partial state.
	if err := c.checkSignature(record, args); err != nil {
		return types.CanonicalValue{}, err
	}

	sourceLanguage := opts.SourceLanguage
	if sourceLanguage == "" {
		sourceLanguage = record.SourceLanguage
	}

	// Step 4: security verification. An unset CallerIsolation defaults to
	// LevelNone (no additional restriction), the same normalization
	// Context.RegisterFunction applies to a function's own isolation —
	// the ceiling, not a per-call assertion, is what fails closed.
	callerIsolation := opts.CallerIsolation
	if !callerIsolation.Valid() {
		callerIsolation = security.LevelNone
	}
	verify, err := c.Security.VerifyAccess(name, sourceLanguage, opts.CallerContext, callerIsolation)
	if err != nil {
		return types.CanonicalValue{}, err
	}
	if !verify.Allowed {
		observability.RecordSecurityEvent(name, "denied")
		return types.CanonicalValue{}, &PermissionDeniedError{
			Function: name,
			Source:   sourceLanguage,
			Missing:  verify.Missing,
			Reason:   verify.Reason,
		}
	}
	observability.RecordSecurityEvent(name, "allowed")

	// Step 5: cache check.
	var fingerprint string
	var cacheable bool
	if c.Cache != nil {
		fingerprint, cacheable = perf.Fingerprint(name, args)
		if cacheable {
			if cached, hit := c.Cache.Get(name, fingerprint); hit {
				observability.RecordCacheEvent(name, "hit")
				c.auditCall(name, sourceLanguage, targetLanguage, true, "cache hit")
				status = "success"
				return cached, nil
			}
			observability.RecordCacheEvent(name, "miss")
		}
	}

	// Step 6: invoke via the target bridge contract, serialized behind
	// the adapter's own lock unless it declared thread-safety.
	ctx, span := c.Tracer.StartCall(ctx, name, sourceLanguage, targetLanguage)
	if !le.threadSafe() {
		le.callMu.Lock()
		defer le.callMu.Unlock()
	}
	result, callErr := le.adapter.Call(ctx, name, args)
	span.SetCacheHit(false)
	span.End(callErr)

	if callErr != nil {
		c.auditCall(name, sourceLanguage, targetLanguage, false, callErr.Error())
		return types.CanonicalValue{}, &BridgeFaultError{Function: name, Language: targetLanguage, Cause: callErr}
	}

	// Step 7: cache store.
	if c.Cache != nil && cacheable {
		c.Cache.Put(name, fingerprint, result)
	}

	// Step 8: audit.
	c.auditCall(name, sourceLanguage, targetLanguage, true, "call succeeded")

	status = "success"
	return result, nil
}

func (c *Context) auditCall(functionName, sourceLanguage, targetLanguage string, allowed bool, detail string) {
	c.Security.RecordEvent(eventbus.AuditEvent{
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		FunctionName:   functionName,
		Action:         "call",
		Allowed:        allowed,
		Detail:         detail,
	})
}

// checkSignature validates argument count (accounting for optional and
// variadic parameters) and per-argument type compatibility against
// record's declared signature. A nil signature accepts any arguments.
func (c *Context) checkSignature(record FunctionRecord, args []types.CanonicalValue) error {
	sig := record.Signature
	if sig == nil {
		return nil
	}

	if len(args) < sig.RequiredArity() {
		return &SignatureMismatchError{
			Function: record.Name,
			Reason:   fmt.Sprintf("expected at least %d arguments, got %d", sig.RequiredArity(), len(args)),
		}
	}
	if !sig.Variadic && len(args) > len(sig.Params) {
		return &SignatureMismatchError{
			Function: record.Name,
			Reason:   fmt.Sprintf("expected at most %d arguments, got %d", len(sig.Params), len(args)),
		}
	}

	fixed := sig.FixedArity()
	for i := 0; i < fixed && i < len(args); i++ {
		param := sig.Params[i]
		if !c.typeCompatible(args[i].TypeID, param.TypeID) {
			return &SignatureMismatchError{
				Function: record.Name,
				Reason:   fmt.Sprintf("argument %d: type %q is not compatible with declared type %q", i, args[i].TypeID, param.TypeID),
			}
		}
	}

	if sig.Variadic && len(sig.Params) > 0 {
		tail := sig.Params[len(sig.Params)-1]
		for i := fixed; i < len(args); i++ {
			if !c.typeCompatible(args[i].TypeID, tail.TypeID) {
				return &SignatureMismatchError{
					Function: record.Name,
					Reason:   fmt.Sprintf("variadic argument %d: type %q is not compatible with declared type %q", i, args[i].TypeID, tail.TypeID),
				}
			}
		}
	}

	return nil
}

func (c *Context) typeCompatible(argTypeID, paramTypeID string) bool {
	return argTypeID == paramTypeID || c.Types.Compatible(argTypeID, paramTypeID)
}
