package api

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/example/mini-network-chat/modules/chat"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config holds HTTP server settings.
type Config struct {
	Port            int
	RequestTimeout  time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration
	StaticDir       string
	ClearEnabled    bool
	AccessLog       bool
}

// DefaultConfig returns the development server settings.
func DefaultConfig() Config {
	return Config{
		Port:            3000,
		RequestTimeout:  30 * time.Second,
		RateLimitMax:    30,
		RateLimitWindow: time.Minute,
		StaticDir:       "./public",
		ClearEnabled:    true,
		AccessLog:       true,
	}
}

// Module serves the chat HTTP API with Fiber.
type Module struct {
	config         Config
	app            *fiber.App
	chatPort       chat.ChatPort
	limiterStorage fiber.Storage
	logger         types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new API module.
func NewModule(cfg Config, logger types.Logger) *Module {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Module{
		config: cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"chat"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "chat":
		m.chatPort = chat.NewChatAdapter(container)
	}
}

// SetChatPort overrides the chat port, bypassing the service container.
func (m *Module) SetChatPort(port chat.ChatPort) {
	m.chatPort = port
}

// SetLimiterStorage shares rate limit counters through storage instead of
// process memory.
func (m *Module) SetLimiterStorage(storage fiber.Storage) {
	m.limiterStorage = storage
}

// newApp builds the Fiber app with middleware and routes.
func (m *Module) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Mini Network Chat",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           m.config.RequestTimeout,
		WriteTimeout:          m.config.RequestTimeout,
	})

	app.Use(recover.New())
	if m.config.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(preflight)
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: allowMethods,
		AllowHeaders: allowHeaders,
	}))

	m.setupRoutes(app)
	return app
}

// Start starts the HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.chatPort == nil {
		return fmt.Errorf("chatPort dependency not set")
	}

	m.app = m.newApp()
	addr := fmt.Sprintf(":%d", m.config.Port)

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", addr, "clearEnabled", m.config.ClearEnabled)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	m.logger.Info("HTTP server stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.config.Port,
		},
	}
}

// staticDirExists reports whether dir can be served.
func staticDirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// rateLimit returns the per-IP limiter for write endpoints, or nil when
// disabled.
func (m *Module) rateLimit() fiber.Handler {
	if m.config.RateLimitMax <= 0 {
		return nil
	}
	return limiter.New(limiter.Config{
		Max:        m.config.RateLimitMax,
		Expiration: m.config.RateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "ratelimit:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Success: false,
				Error:   "Too many requests",
			})
		},
		Storage: m.limiterStorage,
	})
}
