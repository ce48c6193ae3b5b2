package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultDatabaseDriver   = "memory"
	defaultMongoURI         = "mongodb://localhost:27017"
	defaultMongoDatabase    = "storefront"
	defaultCacheDriver      = "memory"
	defaultRedisAddr        = "localhost:6379"
	defaultJWTSecret        = "change-me-in-production"
	defaultAppPort          = "8080"
	defaultAppEnv           = "local"
	defaultSearchCacheTTL   = 60 * time.Second
	defaultBrowseFetchLimit = 200
	defaultRateLimit        = 200
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, then .env, then the process environment
// over the built-in defaults. Later sources win.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":           defaultAppPort,
		"APP_ENV":            defaultAppEnv,
		"DB_DRIVER":          defaultDatabaseDriver,
		"MONGO_URI":          defaultMongoURI,
		"MONGO_DATABASE":     defaultMongoDatabase,
		"CACHE_DRIVER":       defaultCacheDriver,
		"CACHE_PREFIX":       "storefront",
		"REDIS_ADDR":         defaultRedisAddr,
		"REDIS_PASSWORD":     "",
		"SEARCH_CACHE_TTL":   defaultSearchCacheTTL.String(),
		"BROWSE_FETCH_LIMIT": strconv.Itoa(defaultBrowseFetchLimit),
		"JWT_SECRET":         defaultJWTSecret,
		"LOG_MONGO_URI":      "",
		"RATE_LIMIT":         strconv.Itoa(defaultRateLimit),
	}
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// IsProduction reports whether APP_ENV names a production deployment.
func IsProduction() bool {
	switch strings.ToLower(AppEnv()) {
	case "production", "prod":
		return true
	}
	return false
}

// ── Database ─────────────────────────────────────────────────────────────────

// DatabaseDriver selects the catalog store: "memory" or "mongo".
func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "memory", "mongo":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDatabase() string {
	_ = Load()
	return get("MONGO_DATABASE", defaultMongoDatabase)
}

// ── Cache ────────────────────────────────────────────────────────────────────

// CacheDriver selects the result cache: "memory" or "redis".
func CacheDriver() string {
	_ = Load()

	driver := strings.ToLower(get("CACHE_DRIVER", defaultCacheDriver))
	switch driver {
	case "memory", "redis":
		return driver
	default:
		return defaultCacheDriver
	}
}

func CachePrefix() string {
	_ = Load()
	return get("CACHE_PREFIX", "storefront")
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// SearchCacheTTL is how long a computed search result may be served
// from cache. Accepts Go duration strings ("45s") or plain seconds ("45").
func SearchCacheTTL() time.Duration {
	_ = Load()
	return Duration("SEARCH_CACHE_TTL", defaultSearchCacheTTL)
}

// BrowseFetchLimit caps the category set fetched for browse pages.
func BrowseFetchLimit() int {
	_ = Load()
	return Int("BROWSE_FETCH_LIMIT", defaultBrowseFetchLimit)
}

// ── HTTP ─────────────────────────────────────────────────────────────────────

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

// Validate rejects settings that must never reach a production deploy.
func Validate() error {
	if IsProduction() && JWTSecret() == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", AppEnv())
	}
	return nil
}

// RateLimitPerMinute is the per-IP request budget.
func RateLimitPerMinute() int {
	_ = Load()
	return Int("RATE_LIMIT", defaultRateLimit)
}

// LogMongoURI enables the MongoDB log sink when non-empty.
func LogMongoURI() string {
	_ = Load()
	return get("LOG_MONGO_URI", "")
}

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	for key := range loaded {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case float64:
			out[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(v)
		}
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Int reads an integer key; unparsable or non-positive values yield fallback.
func Int(key string, fallback int) int {
	n, err := strconv.Atoi(Get(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Duration reads a duration key, accepting either "90s" or "90".
func Duration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// Set overrides a key at runtime. Intended for tests and CLI flags.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
