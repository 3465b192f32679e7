package redact

import (
	"reflect"
	"sync"
)

var (
	registry   = make(map[reflect.Type]any)
	registryMu sync.RWMutex
)

// Use returns a cached plan or builds a new one.
// The plan is cached by type.
func Use[T any]() (*Plan[T], error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[typ]; ok {
		registryMu.RUnlock()
		return cached.(*Plan[T]), nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[typ]; ok {
		return cached.(*Plan[T]), nil
	}

	plan, err := NewPlan[T]()
	if err != nil {
		return nil, err
	}

	registry[typ] = plan
	return plan, nil
}

// Reset clears the plan registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[reflect.Type]any)
}

// DefaultPlan returns the cached plan for Record.
func DefaultPlan() (*Plan[Record], error) {
	return Use[Record]()
}
