package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

const (
	// OwnerIDHeader carries the acting owner's id. Authentication proper
	// lives in the surrounding platform; this service only scopes data.
	OwnerIDHeader = "X-Owner-ID"
	ownerIDKey    = contextKey("owner_id")
)

// OwnerFromContext returns the owner id stored by OwnerScope, or
// uuid.Nil when absent.
func OwnerFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ownerIDKey).(uuid.UUID)
	return id
}

// OwnerScope requires a valid X-Owner-ID header and stores the parsed
// id in context. Every data route is owner-scoped.
func OwnerScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(OwnerIDHeader)
		id, err := uuid.Parse(raw)
		if raw == "" || err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid " + OwnerIDHeader + " header"})
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
