package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rmoralesp/fieldstock-backend/pkg/logger"
)

const userIDHeader = "X-User-Id"

// Identity trusts the user id forwarded by the authenticating proxy.
// Requests without one run as the system actor.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(userIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			if _, err := uuid.Parse(raw); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUserID(r.Context(), raw)
			if logg != nil {
				ctx = logg.WithUserID(ctx, raw)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
