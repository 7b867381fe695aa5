package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

const realm = `Basic realm="notepad", charset="UTF-8"`

// Authenticator is satisfied by *Users.
type Authenticator interface {
	Authenticate(username, password string) (User, error)
}

// Middleware rejects requests without valid HTTP Basic credentials and
// stores the authenticated user in the request context.
func Middleware(a Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}
			u, err := a.Authenticate(username, password)
			if err != nil {
				log.Warn("authentication failed",
					zap.String("username", username),
					zap.String("remote", r.RemoteAddr))
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user stored by Middleware.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", realm)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
