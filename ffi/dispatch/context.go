package dispatch

import (
	"context"
	"io"

	"github.com/obinexus/libpolycall/config"
	"github.com/obinexus/libpolycall/eventbus"
	"github.com/obinexus/libpolycall/ffi/bridge"
	"github.com/obinexus/libpolycall/ffi/memory"
	"github.com/obinexus/libpolycall/ffi/perf"
	"github.com/obinexus/libpolycall/ffi/security"
	"github.com/obinexus/libpolycall/ffi/types"
)

// Logger is the structured logging surface every FFI subsystem shares.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// securityLevelCeilings maps the coarse config.SecurityLevel knob to
// the isolation ceiling the security layer enforces. Finer per-function
// isolation is still declared individually at RegisterFunction time;
// this is only the hard maximum a call's effective level may not
// exceed.
var securityLevelCeilings = map[config.SecurityLevel]security.Level{
	config.SecurityNone:    security.LevelNone,
	config.SecurityLow:     security.LevelShared,
	config.SecurityMedium:  security.LevelModule,
	config.SecurityHigh:    security.LevelProcess,
	config.SecurityMaximum: security.LevelProcess,
}

// Config is the configuration a Context is built from: the init-time
// struct from the config package, plus the wiring knobs (policy
// document, audit file sink, shared event bus, logger) that package has
// no business owning.
type Config struct {
	Init   config.Config
	Policy security.Policy

	AuditFileSink io.Writer
	Bus           *eventbus.Bus
	Logger        Logger
}

// Defaults returns a Config built from config.Default().
func Defaults() Config {
	return Config{Init: config.Default()}
}

// Context is the FFI core registry and dispatcher (spec component C4):
// the language and function tables, plus the wired-together C1
// (types), C2 (memory), C3 (security), and C5 (performance) subsystems
// every Call passes through.
type Context struct {
	cfg    Config
	tables *tables

	Types    *types.Engine
	Memory   *memory.Bridge
	Security *security.Context
	Cache    *perf.Cache
	Tracer   *perf.Tracer

	typeCapacity int
	bus          *eventbus.Bus
	logger       Logger
}

// NewContext wires a complete FFI core from cfg, translating
// config.SecurityLevel into the security layer's isolation ceiling via
// securityLevelCeilings.
func NewContext(cfg Config) (*Context, error) {
	if cfg.Bus == nil {
		cfg.Bus = eventbus.New(nil)
	}
	init := cfg.Init

	engine := types.NewEngine()

	audit := security.NewAuditLog(init.AuditRingSize, cfg.AuditFileSink, cfg.Bus, nil)
	secCtx := security.NewContext(audit)
	maxIsolation, ok := securityLevelCeilings[init.SecurityLevel]
	if !ok {
		maxIsolation = security.LevelProcess
	}
	if err := secCtx.Initialize(security.Config{
		DefaultDeny:  init.DefaultDeny,
		MaxIsolation: maxIsolation,
		Policy:       cfg.Policy,
	}); err != nil {
		return nil, err
	}

	memBridge := memory.New(init.MemoryPoolSize, secCtx, cfg.Bus, nil)

	var cache *perf.Cache
	if init.EnablePerformanceCache {
		cache = perf.NewCache(init.PerformanceCacheCapacity)
	}

	return &Context{
		cfg:          cfg,
		tables:       newTables(init.FunctionCapacity),
		Types:        engine,
		Memory:       memBridge,
		Security:     secCtx,
		Cache:        cache,
		Tracer:       perf.NewTracer(),
		typeCapacity: init.TypeCapacity,
		bus:          cfg.Bus,
		logger:       cfg.Logger,
	}, nil
}

// RegisterType registers a type descriptor, enforcing the configured
// type capacity the underlying registry does not itself know about.
func (c *Context) RegisterType(desc *types.Descriptor) error {
	if c.typeCapacity > 0 && c.Types.Types.Count() >= c.typeCapacity {
		return &CapacityExceededError{Table: "type", Capacity: c.typeCapacity}
	}
	return c.Types.Types.Register(desc)
}

// RegisterLanguage registers adapter under label with the given
// capability flags and runs its Initialize hook. Registering the same
// label twice fails without invoking Initialize a second time.
func (c *Context) RegisterLanguage(ctx context.Context, label string, adapter bridge.Adapter, capabilities bridge.Capability) error {
	if err := c.tables.registerLanguage(label, adapter, capabilities); err != nil {
		return err
	}
	if err := adapter.Initialize(ctx, bridge.InitContext{
		Language:     label,
		Capabilities: capabilities,
		UserData:     c.cfg.Init.UserData,
	}); err != nil {
		c.tables.unregisterLanguage(label)
		return err
	}
	return nil
}

// UnregisterLanguage removes label's bridge and runs its Cleanup hook.
func (c *Context) UnregisterLanguage(ctx context.Context, label string) {
	le, ok := c.tables.lookupLanguage(label)
	c.tables.unregisterLanguage(label)
	if ok {
		le.adapter.Cleanup(ctx)
	}
}

// RegisterFunction exposes a function (spec.md §4.4 "expose a
// function"): name, callee handle, signature, declared source language
// and flags. It also installs the function's security record so
// VerifyAccess has isolation/permission metadata to check.
func (c *Context) RegisterFunction(record FunctionRecord, required security.Permission, isolation security.Level) error {
	if err := c.tables.registerFunction(record); err != nil {
		return err
	}
	if err := c.Security.RegisterFunction(record.Name, required, isolation); err != nil {
		c.tables.unregisterFunction(record.Name)
		return err
	}
	return nil
}

// UnregisterFunction removes name's record from both the function table
// and the security layer. An in-flight call against the old record
// completes unaffected; see functionEntry.
func (c *Context) UnregisterFunction(name string) {
	c.tables.unregisterFunction(name)
	c.Security.UnregisterFunction(name)
	if c.Cache != nil {
		c.Cache.BumpGeneration(name)
	}
}

// LanguageCount returns the number of registered language bridges.
func (c *Context) LanguageCount() int { return c.tables.languageCount() }

// FunctionCount returns the number of registered functions.
func (c *Context) FunctionCount() int { return c.tables.functionCount() }

// LanguageNames returns the labels of every registered language.
func (c *Context) LanguageNames() []string { return c.tables.languageNames() }

// FunctionNames returns the names of every registered function.
func (c *Context) FunctionNames() []string { return c.tables.functionNames() }
