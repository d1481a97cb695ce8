package middleware

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/expense-reports/internal"
	"github.com/frahmantamala/expense-reports/pkg/logger"
)

// UserContext is the pass-through guard. It trusts X-User-ID and falls back to
// defaultUserID, so every request reaches the handlers with a user attached.
func UserContext(defaultUserID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := defaultUserID
			if raw := r.Header.Get("X-User-ID"); raw != "" {
				parsed, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || parsed <= 0 {
					writeAppError(w, internal.ErrUnauthenticated.WithDetails(map[string]string{"header": "X-User-ID"}))
					return
				}
				userID = parsed
			}

			ctx := internal.ContextWithUserID(r.Context(), userID)
			ctx = logger.With(ctx, "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
