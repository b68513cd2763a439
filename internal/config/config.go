// Package config resolves server settings from flags, the environment and an
// optional .env file. Flags win over environment variables.
package config

import (
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabasePostgres = "postgres"
	DatabaseMemory   = "memory"
)

type Config struct {
	Port           int
	DatabaseType   string
	DatabaseURL    string
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	TokenTTL       time.Duration
	GoogleClientID string
	AllowedOrigins []string
	CSRFKey        []byte
	VoteRateLimit  float64
	VoteRateBurst  int
	LogLevel       slog.Level
}

// Load reads .env when present, then parses args against env-derived defaults.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse(args)
}

// Parse is Load without the .env file.
func Parse(args []string) (Config, error) {
	var (
		cfg      Config
		origins  string
		csrfKey  string
		logLevel string
	)

	port, err := envInt("PORT", 8080)
	if err != nil {
		return Config{}, err
	}
	burst, err := envInt("VOTE_RATE_BURST", 10)
	if err != nil {
		return Config{}, err
	}
	rateLimit, err := envFloat("VOTE_RATE_LIMIT", 5)
	if err != nil {
		return Config{}, err
	}
	ttl, err := envDuration("TOKEN_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("upstart", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", port, "Server port")
	fs.StringVar(&cfg.DatabaseType, "db-type", envString("DATABASE_TYPE", DatabasePostgres), "Database type (postgres or memory)")
	fs.StringVar(&cfg.DatabaseURL, "db-url", os.Getenv("DATABASE_URL"), "Database URL")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT signing secret (prefer env)")
	fs.StringVar(&cfg.JWTIssuer, "jwt-issuer", envString("JWT_ISSUER", "upstart-api"), "JWT issuer")
	fs.StringVar(&cfg.JWTAudience, "jwt-audience", envString("JWT_AUDIENCE", "upstart-app"), "JWT audience")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", ttl, "Access token lifetime")
	fs.StringVar(&cfg.GoogleClientID, "google-client-id", os.Getenv("GOOGLE_CLIENT_ID"), "Google OAuth client id")
	fs.StringVar(&origins, "allowed-origins", envString("ALLOWED_ORIGINS", "*"), "Comma separated CORS origins")
	fs.StringVar(&csrfKey, "csrf-key", os.Getenv("CSRF_KEY"), "32 byte CSRF authentication key (prefer env)")
	fs.Float64Var(&cfg.VoteRateLimit, "vote-rate", rateLimit, "Votes per second allowed per client IP")
	fs.IntVar(&cfg.VoteRateBurst, "vote-burst", burst, "Vote burst allowed per client IP")
	fs.StringVar(&logLevel, "log-level", envString("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	switch cfg.DatabaseType {
	case DatabaseMemory:
	case DatabasePostgres:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = postgresURLFromEnv()
		}
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required (use -db-url, DATABASE_URL or POSTGRES_* env)")
		}
	default:
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("token ttl must be positive")
	}
	if cfg.VoteRateLimit <= 0 || cfg.VoteRateBurst <= 0 {
		return Config{}, errors.New("vote rate limit and burst must be positive")
	}

	cfg.AllowedOrigins = splitList(origins)

	switch {
	case csrfKey == "":
		sum := sha256.Sum256([]byte("csrf:" + cfg.JWTSecret))
		cfg.CSRFKey = sum[:]
	case len(csrfKey) != 32:
		return Config{}, errors.New("CSRF_KEY must be exactly 32 bytes")
	default:
		cfg.CSRFKey = []byte(csrfKey)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", logLevel)
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// postgresURLFromEnv composes a URL from the POSTGRES_* variables, returning
// "" unless the host is set.
func postgresURLFromEnv() string {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		envString("POSTGRES_PORT", "5432"),
		os.Getenv("POSTGRES_DB"),
	)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
