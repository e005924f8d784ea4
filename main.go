package main

import (
	"context"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/example/mini-network-chat/modules/api"
	"github.com/example/mini-network-chat/modules/bot"
	"github.com/example/mini-network-chat/modules/chat"
	"github.com/example/mini-network-chat/modules/store"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/gofiber/storage/redis/v3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := loadConfig()

	log.Println("=== Mini Network Chat ===")
	log.Printf("Environment: %s", cfg.Env)
	log.Printf("Store backend: %s", cfg.Store.Backend)
	log.Printf("HTTP Port: %d", cfg.API.Port)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Backend, err)
	}

	storeModule := store.NewModule(st, cfg.Store.Backend, logger.WithModule("store"))
	chatModule := chat.NewModule(st, logger.WithModule("chat"), chat.WithMaxMessages(cfg.MaxMessages))
	apiModule := api.NewModule(cfg.API, logger.WithModule("api"))

	var limiterStorage *redis.Storage
	if cfg.Store.Backend == store.BackendRedis && cfg.API.RateLimitMax > 0 {
		limiterStorage = newLimiterStorage(cfg.Store)
		apiModule.SetLimiterStorage(limiterStorage)
	}

	// Order: storage first, then the chat core, then its consumers.
	app.Register(storeModule)
	app.Register(chatModule)
	if cfg.BotEnabled {
		app.Register(bot.NewModule(cfg.Bot, logger.WithModule("bot")))
	}
	app.Register(apiModule)

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := app.Stop(ctx); err != nil {
					return err
				}
				if limiterStorage != nil {
					return limiterStorage.Close()
				}
				return nil
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// newLimiterStorage shares rate limit counters across instances through the
// same Redis that holds the chat.
func newLimiterStorage(cfg store.Config) *redis.Storage {
	host, port := parseRedisAddr(cfg.RedisAddr)
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: cfg.RedisPassword,
		Database: cfg.RedisDB,
		PoolSize: 10,
	})
}

// parseRedisAddr parses "host:port" into host and port.
// Returns defaults (127.0.0.1:6379) for invalid or missing values.
func parseRedisAddr(addr string) (string, int) {
	const defaultHost = "127.0.0.1"
	const defaultPort = 6379

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return defaultHost, defaultPort
	}
	if host == "" {
		host = defaultHost
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = defaultPort
	}
	return host, port
}

func printStartupInfo(cfg Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("  - Max messages: %d", cfg.MaxMessages)
	log.Printf("  - Bot replies: %t", cfg.BotEnabled)
	log.Printf("  - Admin clear: %t", cfg.API.ClearEnabled)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.API.Port)
	log.Println("  POST   /api/join                - Join with a username")
	log.Println("  POST   /api/message             - Send a message")
	log.Println("  GET    /api/messages?since=ID   - Poll for new messages")
	if cfg.API.ClearEnabled {
		log.Println("  POST   /api/clear               - Clear users and messages")
	}
	log.Println("  GET    /health                  - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
