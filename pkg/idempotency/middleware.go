package idempotency

import (
	"context"
	"log/slog"
	"net/http"
)

type SeenStore interface {
	RequestKey(route, key string) string
	Seen(ctx context.Context, key string) (bool, error)
}

// Middleware rejects replays of requests carrying an Idempotency-Key header.
// Requests without the header pass through untouched, and store outages fail
// open: a flaky redis must not block payments.
type Middleware struct {
	log   *slog.Logger
	store SeenStore
}

func NewMiddleware(log *slog.Logger, store SeenStore) *Middleware {
	return &Middleware{log: log, store: store}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		seen, err := m.store.Seen(r.Context(), m.store.RequestKey(r.Method+" "+r.URL.Path, key))
		if err != nil {
			m.log.Error("idempotency check failed", "err", err)
			next.ServeHTTP(w, r)
			return
		}
		if seen {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"success":false,"error":"duplicate request"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
