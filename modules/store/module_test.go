package store

import (
	"context"
	"testing"

	"github.com/go-monolith/mono/pkg/types"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func TestModule_Lifecycle(t *testing.T) {
	s := NewMemoryStore()
	m := NewModule(s, BackendMemory, &mockLogger{})
	ctx := context.Background()

	if name := m.Name(); name != "store" {
		t.Errorf("Name() = %q, want 'store'", name)
	}
	if m.Store() != s {
		t.Error("Store() did not return the wrapped backend")
	}
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	health := m.Health(ctx)
	if !health.Healthy {
		t.Errorf("Health() = %+v, want healthy", health)
	}
	if health.Details["backend"] != BackendMemory {
		t.Errorf("Health().Details[backend] = %v, want %q", health.Details["backend"], BackendMemory)
	}

	if err := m.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if health := m.Health(ctx); health.Healthy {
		t.Error("Health() after Stop should be unhealthy")
	}
}

func TestModule_StartWithoutStore(t *testing.T) {
	m := NewModule(nil, BackendMemory, &mockLogger{})
	if err := m.Start(context.Background()); err == nil {
		t.Error("Start() should fail without a store")
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
