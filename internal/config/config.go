package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates all service configuration.
type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	Payment       PaymentConfig
	Notifications NotificationConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	notifications, err := loadNotificationConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:        server,
		Store:         loadStoreConfig(),
		Payment:       loadPaymentConfig(),
		Notifications: notifications,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":3000" or "127.0.0.1:3000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StoreConfig selects the session store backend. An empty RedisURL means
// sessions live in process memory.
type StoreConfig struct {
	RedisURL string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL"))}
}

// PaymentConfig describes how payment page links are built.
type PaymentConfig struct {
	FrontendURL string
}

func loadPaymentConfig() PaymentConfig {
	return PaymentConfig{
		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
	}
}

// NotificationConfig toggles the websocket push channel.
type NotificationConfig struct {
	Enabled bool
}

func loadNotificationConfig() (NotificationConfig, error) {
	enabled, err := parseBoolEnv("NOTIFICATIONS_ENABLED", true)
	if err != nil {
		return NotificationConfig{}, err
	}
	return NotificationConfig{Enabled: enabled}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}
