package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSeenStore struct {
	seen map[string]bool
	err  error
}

func (s *fakeSeenStore) RequestKey(route, key string) string { return route + ":" + key }

func (s *fakeSeenStore) Seen(ctx context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return true, nil
	}
	s.seen[key] = true
	return false, nil
}

func serve(m *Middleware, key string) *httptest.ResponseRecorder {
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/orders/o1/confirm-payment", nil)
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_PassesWithoutKey(t *testing.T) {
	m := NewMiddleware(slog.New(slog.DiscardHandler), &fakeSeenStore{seen: map[string]bool{}})
	assert.Equal(t, http.StatusOK, serve(m, "").Code)
}

func TestMiddleware_RejectsReplay(t *testing.T) {
	m := NewMiddleware(slog.New(slog.DiscardHandler), &fakeSeenStore{seen: map[string]bool{}})
	assert.Equal(t, http.StatusOK, serve(m, "k1").Code)
	assert.Equal(t, http.StatusConflict, serve(m, "k1").Code)
	assert.Equal(t, http.StatusOK, serve(m, "k2").Code)
}

func TestMiddleware_FailsOpenOnStoreError(t *testing.T) {
	m := NewMiddleware(slog.New(slog.DiscardHandler), &fakeSeenStore{err: errors.New("redis down")})
	assert.Equal(t, http.StatusOK, serve(m, "k1").Code)
}
