package seedsource_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"mall_admin/internal/adapters/seedsource"
)

func TestFetch_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(503)
		default:
			_, _ = w.Write([]byte(`{"shops":[]}`))
		}
	}))
	defer ts.Close()

	cl := seedsource.New(100) // high RPS for tests
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.Load(ctx, ts.URL+"/seed.json")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(got) != `{"shops":[]}` {
		t.Fatalf("unexpected payload: %s", got)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestFetch_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := seedsource.New(100).Fetch(context.Background(), ts.URL)
	if !errors.Is(err, seedsource.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetch_ClientErrorNotRetried(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	if _, err := seedsource.New(100).Fetch(context.Background(), ts.URL); err == nil {
		t.Fatalf("expected error for 403")
	}
	if hits != 1 {
		t.Fatalf("403 must not be retried, got %d calls", hits)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(p, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cl := seedsource.New(1)
	b, err := cl.Load(context.Background(), p)
	if err != nil || string(b) != `{}` {
		t.Fatalf("Load: %v %q", err, b)
	}
	if _, err := cl.Load(context.Background(), p+".missing"); !errors.Is(err, seedsource.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
