package redact_test

import (
	"testing"

	"github.com/zoobzio/redact"
)

type CacheTestUser struct {
	Name string `json:"name" column:"name" redact:"name"`
}

func TestUse_Caching(t *testing.T) {
	redact.Reset()

	p1, err := redact.Use[CacheTestUser]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	p2, err := redact.Use[CacheTestUser]()
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}

	if p1 != p2 {
		t.Error("Use() should return cached plan")
	}
}

func TestReset(t *testing.T) {
	p1, _ := redact.Use[CacheTestUser]()

	redact.Reset()

	p2, _ := redact.Use[CacheTestUser]()

	if p1 == p2 {
		t.Error("Reset() should clear cache, new plan expected")
	}
}

func TestDefaultPlan(t *testing.T) {
	p1, err := redact.DefaultPlan()
	if err != nil {
		t.Fatalf("DefaultPlan() error: %v", err)
	}
	p2, _ := redact.Use[redact.Record]()
	if p1 != p2 {
		t.Error("DefaultPlan() should share the Record plan cache entry")
	}
	if len(p1.Columns()) != 29 {
		t.Errorf("DefaultPlan() has %d columns, want 29", len(p1.Columns()))
	}
}
