package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/courtside/bookingd/internal/logger"
	"github.com/courtside/bookingd/internal/service"
)

type contextKey string

const callerKey contextKey = "caller"

type AuthMiddleware struct {
	auth *service.AuthService
	log  *logger.Logger
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
		log:  logger.New("auth-middleware"),
	}
}

// RequireAuth resolves the bearer token once per request and stores the
// caller identity in the request context. Missing, malformed, and expired
// tokens are all rejected with the same response.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token := authHeader
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = authHeader[7:]
		}

		caller, err := m.auth.Authenticate(token)
		if err != nil {
			m.log.Debug("rejected token: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func Caller(ctx context.Context) (service.Identity, bool) {
	caller, ok := ctx.Value(callerKey).(service.Identity)
	return caller, ok
}
