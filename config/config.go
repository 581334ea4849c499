package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment, after an optional .env.
type Config struct {
	Port           string
	Origin         string
	Currency       string
	DefaultStoreID string

	BackendKind    string
	BackendURL     string
	BackendAPIKey  string
	BackendRetries int

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CartTTL        time.Duration
	ReportCacheTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	Debug    bool
	LogFile  string
	Location *time.Location
}

const (
	BackendREST  = "rest"
	BackendMongo = "mongo"
)

// Load reads .env when present. The bool reports whether one was found.
func Load() (Config, bool, error) {
	found := godotenv.Load() == nil
	cfg, err := FromEnv(os.Getenv)
	return cfg, found, err
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{get: getenv}

	cfg := Config{
		Port:           e.str("PORT", ":8080"),
		Origin:         e.str("APP_ORIGIN", "http://localhost:8080"),
		Currency:       e.str("CURRENCY_PREFIX", "Rs."),
		DefaultStoreID: e.str("DEFAULT_STORE_ID", ""),
		BackendKind:    strings.ToLower(e.str("BACKEND_KIND", BackendMongo)),
		BackendURL:     e.str("BACKEND_URL", ""),
		BackendAPIKey:  e.str("BACKEND_API_KEY", ""),
		BackendRetries: e.integer("BACKEND_RETRIES", 2),
		MongoURI:       e.str("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        e.str("MONGO_DB", "storefront"),
		RedisAddr:      e.str("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  e.str("REDIS_PASSWORD", ""),
		RedisDB:        e.integer("REDIS_DB", 0),
		CartTTL:        e.duration("CART_TTL", 12*time.Hour),
		ReportCacheTTL: e.duration("REPORT_CACHE_TTL", 5*time.Minute),
		RateLimitRPS:   e.number("RATE_LIMIT_RPS", 5),
		RateLimitBurst: e.integer("RATE_LIMIT_BURST", 10),
		Debug:          e.flag("DEBUG", false),
		LogFile:        e.str("LOG_FILE", ""),
	}

	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}

	tz := e.str("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("TIMEZONE: %v", err))
	}
	cfg.Location = loc

	switch cfg.BackendKind {
	case BackendMongo:
	case BackendREST:
		if cfg.BackendURL == "" {
			e.errs = append(e.errs, "BACKEND_URL is required for the rest backend")
		}
	default:
		e.errs = append(e.errs, fmt.Sprintf("BACKEND_KIND %q is not rest or mongo", cfg.BackendKind))
	}

	if len(e.errs) > 0 {
		return cfg, fmt.Errorf("config: %s", strings.Join(e.errs, "; "))
	}
	return cfg, nil
}

type env struct {
	get  func(string) string
	errs []string
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return n
}

func (e *env) number(key string, def float64) float64 {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return n
}

func (e *env) flag(key string, def bool) bool {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return b
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Sprintf("%s: %v", key, err))
		return def
	}
	return d
}
