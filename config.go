package main

import (
	"log"
	"os"
	"strconv"
	"time"

	domain "github.com/example/mini-network-chat/domain/chat"
	"github.com/example/mini-network-chat/modules/api"
	"github.com/example/mini-network-chat/modules/bot"
	"github.com/example/mini-network-chat/modules/store"
)

// Config is the process configuration read from the environment.
type Config struct {
	Env         string
	Store       store.Config
	API         api.Config
	MaxMessages int
	BotEnabled  bool
	Bot         bot.Config
}

// Production reports whether the process runs in production mode.
func (c Config) Production() bool {
	return c.Env == "production"
}

// loadConfig reads the configuration, falling back to defaults for unset or
// invalid values.
func loadConfig() Config {
	env := getEnv("APP_ENV", "development")

	apiCfg := api.DefaultConfig()
	apiCfg.Port = getEnvInt("HTTP_PORT", apiCfg.Port)
	apiCfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", apiCfg.RequestTimeout)
	apiCfg.RateLimitMax = getEnvInt("RATE_LIMIT_MAX", apiCfg.RateLimitMax)
	apiCfg.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", apiCfg.RateLimitWindow)
	apiCfg.StaticDir = getEnv("STATIC_DIR", apiCfg.StaticDir)
	apiCfg.ClearEnabled = getEnvBool("ADMIN_CLEAR_ENABLED", env == "development")
	apiCfg.AccessLog = env != "production"

	storeCfg := store.DefaultConfig()
	storeCfg.Backend = getEnv("STORE_BACKEND", storeCfg.Backend)
	storeCfg.RedisAddr = getEnv("REDIS_ADDR", storeCfg.RedisAddr)
	storeCfg.RedisPassword = getEnv("REDIS_PASSWORD", storeCfg.RedisPassword)
	storeCfg.RedisDB = getEnvInt("REDIS_DB", storeCfg.RedisDB)
	storeCfg.KeyPrefix = getEnv("REDIS_KEY_PREFIX", storeCfg.KeyPrefix)
	storeCfg.DBPath = getEnv("DB_PATH", storeCfg.DBPath)

	botCfg := bot.DefaultConfig()
	botCfg.Probability = getEnvFloat("BOT_PROBABILITY", botCfg.Probability)
	botCfg.Delay = getEnvDuration("BOT_DELAY", botCfg.Delay)

	return Config{
		Env:         env,
		Store:       storeCfg,
		API:         apiCfg,
		MaxMessages: getEnvInt("MAX_MESSAGES", domain.DefaultMaxMessages),
		BotEnabled:  getEnvBool("BOT_ENABLED", false),
		Bot:         botCfg,
	}
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvFloat returns environment variable as float64 or default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid float value for %s: %s, using default: %g", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
