package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port string

	// Upload limits
	MaxUploadBytes int

	// Optional directory of static files to serve at /
	StaticDir string
}

func Load() Config {
	return Config{
		Port:           envOr("PORT", "8000"),
		MaxUploadBytes: envInt("MAX_UPLOAD_BYTES", 40<<20),
		StaticDir:      os.Getenv("STATIC_DIR"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
