package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the server's runtime configuration, read from the environment
// with an optional .env file on top.
type Config struct {
	Addr        string
	DatabaseURL string

	// LobbyCapacity is the connection-layer player cap per session.
	LobbyCapacity int

	// LobbyTTL is how long a lobby survives without a host heartbeat.
	LobbyTTL time.Duration

	HeartbeatInterval time.Duration
	PollInterval      time.Duration
}

func Load() Config {
	// Missing .env is fine; plain env vars still apply.
	_ = godotenv.Load()

	return Config{
		Addr:              envStr("LOBBYSYNC_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		LobbyCapacity:     envInt("LOBBYSYNC_CAPACITY", 4),
		LobbyTTL:          envDur("LOBBYSYNC_LOBBY_TTL", 90*time.Second),
		HeartbeatInterval: envDur("LOBBYSYNC_HEARTBEAT_INTERVAL", 15*time.Second),
		PollInterval:      envDur("LOBBYSYNC_POLL_INTERVAL", 1500*time.Millisecond),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
