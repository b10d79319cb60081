package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinaskak/storefront-backend/pkg/logger"
)

type memoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]string
	ttls    map[string]time.Duration
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{
		entries: map[string]string{},
		ttls:    map[string]time.Duration{},
	}
}

func (m *memoryIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return false, nil
	}
	m.entries[key] = value.(string)
	m.ttls[key] = ttl
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "storefront:idempotency:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func testMiddlewareLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func idempotencyRouter(store *memoryIdempotencyStore, handler http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(Idempotency(store, testMiddlewareLogger()))
	r.Post("/api/v1/checkout", handler)
	r.Post("/api/v1/cart/add", handler)
	r.Get("/api/v1/cart", handler)
	return r
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := idempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"checkoutId":"abc"}}`))
	})

	body := `{"email":"jon@example.is"}`
	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(first, req)

	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, 1, calls)

	second := httptest.NewRecorder()
	repeat := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	repeat.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(second, repeat)

	assert.Equal(t, 1, calls, "handler must not run twice for the same key")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryIdempotencyStore()
	router := idempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":null}`))
	})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(`{"quantity":1}`))
	first.Header.Set("Idempotency-Key", "key-2")
	router.ServeHTTP(httptest.NewRecorder(), first)

	rec := httptest.NewRecorder()
	conflicting := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(`{"quantity":5}`))
	conflicting.Header.Set("Idempotency-Key", "key-2")
	router.ServeHTTP(rec, conflicting)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "IDEMPOTENCY_KEY_REUSED")
}

func TestIdempotencySkipsRequestsWithoutKey(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := idempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	for range [2]struct{}{} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(`{}`))
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2, calls)
	assert.Empty(t, store.entries)
}

func TestIdempotencySkipsUncoveredRoutes(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := idempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Idempotency-Key", "key-3")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1, calls)
	assert.Empty(t, store.entries)
}

func TestIdempotencyTTLPerRoute(t *testing.T) {
	store := newMemoryIdempotencyStore()
	router := idempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	checkout := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	checkout.Header.Set("Idempotency-Key", "key-4")
	router.ServeHTTP(httptest.NewRecorder(), checkout)

	add := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", strings.NewReader(`{}`))
	add.Header.Set("Idempotency-Key", "key-5")
	router.ServeHTTP(httptest.NewRecorder(), add)

	var sawCritical, sawDefault bool
	for _, ttl := range store.ttls {
		switch ttl {
		case criticalIdempotencyTTL:
			sawCritical = true
		case defaultIdempotencyTTL:
			sawDefault = true
		}
	}
	assert.True(t, sawCritical, "checkout should use the 7d TTL")
	assert.True(t, sawDefault, "cart mutations should use the 24h TTL")
}
