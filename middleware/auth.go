package middleware

import (
	"context"
	"drawshare/auth"
	"drawshare/core"
	"drawshare/handlers/httpx"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

type contextKey string

const CallerContextKey = contextKey("caller")

// WithCaller returns a context carrying the authenticated user.
func WithCaller(ctx context.Context, user *core.User) context.Context {
	return context.WithValue(ctx, CallerContextKey, user)
}

// Caller returns the user resolved by AuthJWT, or nil.
func Caller(ctx context.Context) *core.User {
	user, _ := ctx.Value(CallerContextKey).(*core.User)
	return user
}

// AuthJWT resolves the caller from the session cookie and rejects the
// request with 401 when that is not possible.
func AuthJWT(issuer *auth.Issuer, users core.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.SessionToken(r)
			if !ok {
				httpx.Error(w, r, core.Unauthorized("Not authorized, please log in."))
				return
			}

			claims, err := issuer.Parse(r.Context(), token)
			if err != nil {
				httpx.Error(w, r, err)
				return
			}

			user, err := users.FindUserByID(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					logrus.WithField("user_id", claims.Subject).Warn("Token subject no longer exists")
					httpx.Error(w, r, core.Unauthorized("Not authorized, invalid token."))
					return
				}
				httpx.Error(w, r, core.Upstream("Could not verify the session, please try again later.", err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), user)))
		})
	}
}
