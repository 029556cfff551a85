package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"affordability-assessment/internal/logger"
	"affordability-assessment/internal/repository"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

var ErrNoUser = errors.New("userID not found in context")

type TokenFinder interface {
	FindByPlainToken(ctx context.Context, plain string) (*repository.AccessToken, error)
}

// bearerOrQuery reads the token from the Authorization header, falling back to ?token=
// for websocket clients that cannot set headers.
func bearerOrQuery(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); tok != "" {
			return tok
		}
	}
	return r.URL.Query().Get("token")
}

// TokenMiddleware resolves a personal access token to a user id stored in the request context.
func TokenMiddleware(tokens TokenFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plain := bearerOrQuery(r)
			if plain == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tok, err := tokens.FindByPlainToken(r.Context(), plain)
			if err != nil {
				if !errors.Is(err, repository.ErrInvalidToken) {
					logger.Errorf("[AUTH] token lookup failed: %v", err)
				}
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if tok.Expired(time.Now()) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			logger.Debugf("[AUTH] %s %s user=%d token=%d", r.Method, r.URL.Path, tok.UserID, tok.ID)

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), tok.UserID)))
		})
	}
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok {
		return 0, ErrNoUser
	}
	return userID, nil
}
