package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	StorageFile  = "file"
	StorageMySQL = "mysql"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	StorageBackend string
	DataDir        string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	LayoutPath     string
	StaticDir      string
	AllowedOrigins []string
	TrustedProxies []string
	WriteRPS       int
	SeedSource     string
	SeedWorkers    int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric config value")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		StorageBackend: strings.ToLower(env("STORAGE_BACKEND", StorageFile)),
		DataDir:        env("DATA_DIR", "./data"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/mall?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		LayoutPath:     env("LAYOUT_PATH", ""),
		StaticDir:      env("STATIC_DIR", ""),
		AllowedOrigins: list(env("WS_ALLOWED_ORIGINS", "")),
		TrustedProxies: list(env("TRUSTED_PROXIES", "")),
		WriteRPS:       atoi("WRITE_RPS", 10),
		SeedSource:     env("SEED_SOURCE", ""),
		SeedWorkers:    atoi("SEED_WORKERS", 4),
	}
	if c.StorageBackend != StorageFile && c.StorageBackend != StorageMySQL {
		log.Warn().Str("backend", c.StorageBackend).Msg("unknown STORAGE_BACKEND, using file")
		c.StorageBackend = StorageFile
	}
	if c.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty, read cache disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func list(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
