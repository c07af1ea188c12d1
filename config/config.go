// Package config provides the FFI core's init-time configuration: an
// immutable struct of capacities, security posture, and audit/cache
// sizing (spec.md §6), with YAML load/save and defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecurityLevel is the coarse security posture knob spec.md §6 names.
// It maps to the security layer's MaxIsolation ceiling at wiring time —
// see securityLevelCeilings in dispatch.NewContext.
type SecurityLevel string

const (
	SecurityNone    SecurityLevel = "none"
	SecurityLow     SecurityLevel = "low"
	SecurityMedium  SecurityLevel = "medium"
	SecurityHigh    SecurityLevel = "high"
	SecurityMaximum SecurityLevel = "maximum"
)

// AuditLevel is the audit verbosity knob spec.md §6 names. The value is
// loaded, saved and carried in Config, but no package reads it: the
// audit ring buffer and its sinks receive every event at every level.
type AuditLevel string

const (
	AuditNone    AuditLevel = "none"
	AuditError   AuditLevel = "error"
	AuditWarning AuditLevel = "warning"
	AuditInfo    AuditLevel = "info"
	AuditDebug   AuditLevel = "debug"
	AuditTrace   AuditLevel = "trace"
)

// Config is the immutable configuration struct spec.md §6 describes,
// exactly the field set named there plus the stated defaults.
type Config struct {
	FunctionCapacity int `yaml:"function_capacity"`
	TypeCapacity     int `yaml:"type_capacity"`
	MemoryPoolSize   int `yaml:"memory_pool_size"`

	SecurityLevel SecurityLevel `yaml:"security_level"`
	DefaultDeny   bool          `yaml:"default_deny"`

	AuditLevel    AuditLevel `yaml:"audit_level"`
	AuditRingSize int        `yaml:"audit_ring_size"`

	EnablePerformanceCache   bool `yaml:"enable_performance_cache"`
	PerformanceCacheCapacity int  `yaml:"performance_cache_capacity"`

	// UserData is an opaque pointer the embedder may stash; the dispatch
	// Context hands it to each adapter in bridge.InitContext.UserData when
	// the language is registered. It is never serialized.
	UserData any `yaml:"-"`
}

// Default returns spec.md §6's documented defaults.
func Default() Config {
	return Config{
		FunctionCapacity:         64,
		TypeCapacity:             128,
		MemoryPoolSize:           1 << 20,
		SecurityLevel:            SecurityMedium,
		DefaultDeny:              true,
		AuditLevel:               AuditError,
		AuditRingSize:            1024,
		EnablePerformanceCache:   true,
		PerformanceCacheCapacity: 256,
	}
}

// Load reads and parses a configuration document from path, filling any
// field the document omits with its default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save serializes cfg to path as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// FromMap builds a Config starting from Default(), overriding any field
// present in overrides. Unknown keys are ignored; malformed values are
// ignored and the default for that field is kept — matching the
// permissive map-based override style embedders reach for when wiring
// configuration from a loosely-typed source (env vars, CLI flags, a
// higher-level settings object).
func FromMap(overrides map[string]any) Config {
	c := Default()

	if v, ok := intValue(overrides, "function_capacity"); ok {
		c.FunctionCapacity = v
	}
	if v, ok := intValue(overrides, "type_capacity"); ok {
		c.TypeCapacity = v
	}
	if v, ok := intValue(overrides, "memory_pool_size"); ok {
		c.MemoryPoolSize = v
	}
	if v, ok := overrides["security_level"].(string); ok {
		c.SecurityLevel = SecurityLevel(v)
	}
	if v, ok := overrides["default_deny"].(bool); ok {
		c.DefaultDeny = v
	}
	if v, ok := overrides["audit_level"].(string); ok {
		c.AuditLevel = AuditLevel(v)
	}
	if v, ok := intValue(overrides, "audit_ring_size"); ok {
		c.AuditRingSize = v
	}
	if v, ok := overrides["enable_performance_cache"].(bool); ok {
		c.EnablePerformanceCache = v
	}
	if v, ok := intValue(overrides, "performance_cache_capacity"); ok {
		c.PerformanceCacheCapacity = v
	}
	if v, ok := overrides["user_data"]; ok {
		c.UserData = v
	}

	return c
}

func intValue(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
