package shared_test

import (
	"testing"
	"time"

	"mall_admin/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	c := shared.Load()
	if c.HTTPAddr != ":8080" || c.StorageBackend != shared.StorageFile || c.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "MySQL")
	t.Setenv("CACHE_TTL_SECONDS", "30")
	t.Setenv("WRITE_RPS", "abc")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 172.16.0.0/12")
	c := shared.Load()
	if c.StorageBackend != shared.StorageMySQL {
		t.Fatalf("backend = %q", c.StorageBackend)
	}
	if c.CacheTTL != 30*time.Second {
		t.Fatalf("ttl = %v", c.CacheTTL)
	}
	if c.WriteRPS != 10 {
		t.Fatalf("bad int should fall back to default, got %d", c.WriteRPS)
	}
	if len(c.AllowedOrigins) != 2 || c.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", c.AllowedOrigins)
	}
	if len(c.TrustedProxies) != 2 || c.TrustedProxies[1] != "172.16.0.0/12" {
		t.Fatalf("proxies = %v", c.TrustedProxies)
	}
}

func TestLoad_UnknownBackendFallsBack(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	if c := shared.Load(); c.StorageBackend != shared.StorageFile {
		t.Fatalf("backend = %q", c.StorageBackend)
	}
}
