package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	c := Default()
	cases := map[string]any{
		"FunctionCapacity":         64,
		"TypeCapacity":             128,
		"MemoryPoolSize":           1 << 20,
		"AuditRingSize":            1024,
		"PerformanceCacheCapacity": 256,
	}
	got := map[string]any{
		"FunctionCapacity":         c.FunctionCapacity,
		"TypeCapacity":             c.TypeCapacity,
		"MemoryPoolSize":           c.MemoryPoolSize,
		"AuditRingSize":            c.AuditRingSize,
		"PerformanceCacheCapacity": c.PerformanceCacheCapacity,
	}
	for k, want := range cases {
		if got[k] != want {
			t.Errorf("%s: got %v, want %v", k, got[k], want)
		}
	}
	if c.SecurityLevel != SecurityMedium {
		t.Errorf("SecurityLevel: got %v, want %v", c.SecurityLevel, SecurityMedium)
	}
	if !c.DefaultDeny {
		t.Error("expected DefaultDeny true by default")
	}
	if c.AuditLevel != AuditError {
		t.Errorf("AuditLevel: got %v, want %v", c.AuditLevel, AuditError)
	}
	if !c.EnablePerformanceCache {
		t.Error("expected EnablePerformanceCache true by default")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	c := Default()
	c.FunctionCapacity = 999
	c.SecurityLevel = SecurityHigh

	path := filepath.Join(t.TempDir(), "polycall.yaml")
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.FunctionCapacity != 999 {
		t.Errorf("FunctionCapacity: got %d, want 999", loaded.FunctionCapacity)
	}
	if loaded.SecurityLevel != SecurityHigh {
		t.Errorf("SecurityLevel: got %v, want %v", loaded.SecurityLevel, SecurityHigh)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does_not_exist.yaml")); err == nil {
		t.Fatal("expected error loading a nonexistent file")
	}
}

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("function_capacity: 10\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.FunctionCapacity != 10 {
		t.Errorf("FunctionCapacity: got %d, want 10", c.FunctionCapacity)
	}
	if c.TypeCapacity != 128 {
		t.Errorf("expected omitted TypeCapacity to keep its default, got %d", c.TypeCapacity)
	}
}

func TestFromMapOverridesOnlyPresentKeys(t *testing.T) {
	c := FromMap(map[string]any{
		"function_capacity": 5,
		"security_level":    "maximum",
		"default_deny":      false,
	})
	if c.FunctionCapacity != 5 {
		t.Errorf("FunctionCapacity: got %d, want 5", c.FunctionCapacity)
	}
	if c.SecurityLevel != SecurityMaximum {
		t.Errorf("SecurityLevel: got %v, want %v", c.SecurityLevel, SecurityMaximum)
	}
	if c.DefaultDeny {
		t.Error("expected DefaultDeny overridden to false")
	}
	if c.TypeCapacity != 128 {
		t.Errorf("expected untouched TypeCapacity to keep its default, got %d", c.TypeCapacity)
	}
}

func TestFromMapAcceptsFloat64ForJSONNumbers(t *testing.T) {
	c := FromMap(map[string]any{"audit_ring_size": float64(2048)})
	if c.AuditRingSize != 2048 {
		t.Errorf("AuditRingSize: got %d, want 2048", c.AuditRingSize)
	}
}
