package store

import (
	"context"
	"fmt"

	domain "github.com/example/mini-network-chat/domain/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module owns the lifecycle of the configured store backend.
type Module struct {
	store   domain.Store
	backend string
	logger  types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule wraps an opened store.
func NewModule(s domain.Store, backend string, logger types.Logger) *Module {
	return &Module{
		store:   s,
		backend: backend,
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "store"
}

// Store returns the backend for injection into other modules.
func (m *Module) Store() domain.Store {
	return m.store
}

// Start verifies the backend is reachable.
func (m *Module) Start(ctx context.Context) error {
	if m.store == nil {
		return fmt.Errorf("store not configured")
	}
	if err := m.store.Ping(ctx); err != nil {
		return fmt.Errorf("store %s unreachable: %w", m.backend, err)
	}
	m.logger.Info("Store module started", "backend", m.backend)
	return nil
}

// Stop closes the backend.
func (m *Module) Stop(_ context.Context) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.Close(); err != nil {
		m.logger.Error("Failed to close store", "backend", m.backend, "error", err)
		return fmt.Errorf("failed to close store: %w", err)
	}
	m.logger.Info("Store module stopped", "backend", m.backend)
	return nil
}

// Health pings the backend.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}
	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}

	details := map[string]any{"backend": m.backend}
	if n, err := m.store.CountUsers(ctx); err == nil {
		details["users"] = n
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: details,
	}
}
