package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/turtacn/CohortMap/internal/application/orgchart"
)

// SessionHeader carries the session id for clients that do not keep cookies.
const SessionHeader = "X-Session-ID"

type sessionContextKey struct{}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Session resolves the caller's session id from the X-Session-ID header or
// the session cookie, in that order.  Ids that could not have been issued by
// the server are dropped so requests fall back to the default dataset.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				if c, err := r.Cookie(cfg.CookieName); err == nil {
					id = c.Value
				}
			}
			if id != "" && orgchart.ValidSessionID(id) {
				r = r.WithContext(WithSessionID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSessionID returns a copy of ctx carrying id.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, id)
}

// SessionIDFromContext returns the session id resolved by Session, or "".
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionContextKey{}).(string)
	return id
}

// SetSessionCookie issues the session cookie for id.
func SetSessionCookie(w http.ResponseWriter, cfg SessionConfig, id string) {
	c := &http.Cookie{
		Name:     cfg.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.TTL > 0 {
		c.MaxAge = int(cfg.TTL.Seconds())
	}
	http.SetCookie(w, c)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, cfg SessionConfig) {
	http.SetCookie(w, &http.Cookie{Name: cfg.CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: cfg.Secure})
}

//Personal.AI order the ending
