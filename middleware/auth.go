package middleware

import (
	"context"
	"net/http"
	"strconv"
	"wikiforum/internal/auth"
	"wikiforum/internal/user/model"
	"wikiforum/pkg/logger"
)

type contextKey string

const (
	UserKey contextKey = "user"

	// SessionCookie holds "<user id>|<hmac>".
	SessionCookie = "user_id"
)

// UserLookup resolves the id carried by a session cookie.
type UserLookup interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

// Session reads the signed user_id cookie and, when it verifies and names an existing
// user, stores that user in the request context. Every failure just means "logged out".
func Session(signer *auth.Signer, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			value, ok := signer.Unsign(cookie.Value)
			if !ok {
				logger.Sugar.Debugf("Ignoring session cookie with bad signature")
				next.ServeHTTP(w, r)
				return
			}
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			u, err := users.ByID(r.Context(), id)
			if err != nil {
				logger.Sugar.Debugf("Session user %d not loaded: %v", id, err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// CurrentUser returns the logged-in user, or nil.
func CurrentUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(UserKey).(*model.User)
	return u
}

// SetSession issues the signed session cookie for u.
func SetSession(w http.ResponseWriter, signer *auth.Signer, u *model.User) {
	http.SetCookie(w, &http.Cookie{
		Name:  SessionCookie,
		Value: signer.Sign(strconv.FormatInt(u.ID, 10)),
		Path:  "/",
	})
}

func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/"})
}
