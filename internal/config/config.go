// Package config loads process configuration from the environment, with
// defaults suited to local development. No third-party config library in
// the pack fits a handful of scalar settings better than flag-free env
// lookups, so this ambient concern stays stdlib.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/lumenex/matchbook/internal/storage"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr      string
	WSAddr        string
	LogLevel      string
	LogPretty     bool
	StorageDSN    string
	StorageKind   storage.Driver
	Tickers       []string
	SnapshotDepth int
}

// FromEnv loads Config from the environment, applying development-friendly
// defaults for anything unset.
func FromEnv() Config {
	return Config{
		HTTPAddr:      getEnv("MATCHBOOK_HTTP_ADDR", ":8080"),
		WSAddr:        getEnv("MATCHBOOK_WS_ADDR", ":8081"),
		LogLevel:      getEnv("MATCHBOOK_LOG_LEVEL", "info"),
		LogPretty:     getEnvBool("MATCHBOOK_LOG_PRETTY", true),
		StorageDSN:    getEnv("MATCHBOOK_STORAGE_DSN", "file::memory:?cache=shared"),
		StorageKind:   storage.Driver(getEnv("MATCHBOOK_STORAGE_DRIVER", string(storage.SQLite))),
		Tickers:       splitCSV(getEnv("MATCHBOOK_TICKERS", "EQUITY")),
		SnapshotDepth: getEnvInt("MATCHBOOK_SNAPSHOT_DEPTH", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
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

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
