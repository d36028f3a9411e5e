package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/randevux/booking-service/internal/api/handlers"
)

// UserIDHeader заголовок, который ставит gateway после аутентификации
const UserIDHeader = "X-User-ID"

type contextKey string

const userIDKey contextKey = "userID"

// Auth требует положительный числовой X-User-ID и кладет его в контекст запроса
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			handlers.RespondUnauthorized(w, "missing "+UserIDHeader+" header")
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "invalid "+UserIDHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID сохраняет пользователя в ctx
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID достает пользователя из ctx
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
