package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIURL = "https://v2.api.noroff.dev"

type Config struct {
	ListenAddr string
	BaseURL    string

	// venue service
	APIURL        string
	APIKey        string
	APITimeout    time.Duration
	RatePerSecond float64
	RateBurst     int
	PageLimit     int

	// client state; memory store when DatabaseURL is empty
	DatabaseURL    string
	CookieHashKey  []byte
	CookieBlockKey []byte
	StateEncKey    []byte // 32 bytes, seals tokens at rest when set
	StateFile      string

	// venue cache; in-process when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// booking events; disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string

	LogLevel   string
	LogFormat  string
	FluentHost string
	FluentPort int
}

// Load reads the given .env files (missing ones are skipped) and then the
// environment. Variables already set in the environment win.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:    envDefault("LISTEN_ADDR", ":8080"),
		BaseURL:       envDefault("BASE_URL", "http://localhost:8080"),
		APIURL:        strings.TrimRight(envDefault("HOLIDAZE_API_URL", DefaultAPIURL), "/"),
		APIKey:        strings.TrimSpace(os.Getenv("HOLIDAZE_API_KEY")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StateFile:     strings.TrimSpace(os.Getenv("STATE_FILE")),
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AMQPURL:       strings.TrimSpace(os.Getenv("AMQP_URL")),
		AMQPExchange:  envDefault("AMQP_EXCHANGE", "holidaze.events"),
		LogLevel:      envDefault("LOG_LEVEL", "info"),
		LogFormat:     envDefault("LOG_FORMAT", "text"),
		FluentHost:    strings.TrimSpace(os.Getenv("FLUENT_HOST")),
	}

	timeoutSec, err := envInt("API_TIMEOUT_SECONDS", 10)
	if err != nil {
		return Config{}, err
	}
	if timeoutSec < 1 {
		return Config{}, fmt.Errorf("invalid API_TIMEOUT_SECONDS")
	}
	cfg.APITimeout = time.Duration(timeoutSec) * time.Second

	if cfg.RatePerSecond, err = envFloat("API_RATE_PER_SECOND", 5); err != nil {
		return Config{}, err
	}
	if cfg.RateBurst, err = envInt("API_RATE_BURST", 10); err != nil {
		return Config{}, err
	}
	if cfg.PageLimit, err = envInt("PAGE_LIMIT", 100); err != nil {
		return Config{}, err
	}
	if cfg.PageLimit < 1 || cfg.PageLimit > 100 {
		return Config{}, fmt.Errorf("PAGE_LIMIT must be between 1 and 100 (got %d)", cfg.PageLimit)
	}
	if cfg.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	ttl, err := envInt("CACHE_TTL_SECONDS", 60)
	if err != nil {
		return Config{}, err
	}
	cfg.CacheTTL = time.Duration(ttl) * time.Second
	if cfg.FluentPort, err = envInt("FLUENT_PORT", 24224); err != nil {
		return Config{}, err
	}

	if cfg.CookieHashKey, err = optionalB64("COOKIE_HASH_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.CookieBlockKey, err = optionalB64("COOKIE_BLOCK_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.StateEncKey, err = optionalB64("STATE_ENC_KEY"); err != nil {
		return Config{}, err
	}
	if cfg.StateEncKey != nil && len(cfg.StateEncKey) != 32 {
		return Config{}, fmt.Errorf("STATE_ENC_KEY must decode to 32 bytes (got %d)", len(cfg.StateEncKey))
	}
	return cfg, nil
}

// RequireCookieKeys is checked by the web server only; the CLI has no cookies.
func (c Config) RequireCookieKeys() error {
	if len(c.CookieHashKey) == 0 || len(c.CookieBlockKey) == 0 {
		return fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY are required (32 and 32/16/24/32 bytes base64)")
	}
	switch len(c.CookieBlockKey) {
	case 16, 24, 32:
	default:
		return fmt.Errorf("COOKIE_BLOCK_KEY must decode to 16, 24 or 32 bytes (got %d)", len(c.CookieBlockKey))
	}
	return nil
}

func envDefault(k, d string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	return v
}

func envInt(k string, d int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}

func envFloat(k string, d float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return f, nil
}

// optionalB64 decodes k when set. The value may also be a path to a file
// holding the key, for mounted secrets.
func optionalB64(k string) ([]byte, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return nil, nil
	}
	if b, err := os.ReadFile(v); err == nil {
		v = strings.TrimSpace(string(b))
	}
	if b, err := base64.StdEncoding.DecodeString(v); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
