package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthHMACSecret string
	TokenTTLHours  int

	// TZOffsetMinutes is the fixed exam timezone, east of UTC. Every
	// stored date/time string is interpreted in this zone.
	TZOffsetMinutes int
	GraceMinutes    int

	CORSOrigins []string

	LogLevel  string // debug|info|warn|error
	LogFormat string // text|json
}

// FromEnv builds the config from the environment, honoring a local
// .env file when present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		DBDriver:        envOr("DB_DRIVER", "sqlite"),
		DBDSN:           envOr("DB_DSN", ""),
		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		TokenTTLHours:   envInt("TOKEN_TTL_HOURS", 8),
		TZOffsetMinutes: envInt("TZ_OFFSET_MINUTES", 180),
		GraceMinutes:    envInt("GRACE_MINUTES", 5),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:3000"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogFormat:       envOr("LOG_FORMAT", "text"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
