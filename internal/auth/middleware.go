package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fintra/internal/apperr"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

const CookieName = "access_token"

type ctxKey string

const identityKey ctxKey = "identity"

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.Authenticated()
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Resolve runs the gate on the access_token cookie and stores the result in
// the request context. Only a cryptographically invalid token or a store
// failure stops the request here; anonymous requests continue.
func Resolve(gate *Gate, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw string
			if c, err := r.Cookie(CookieName); err == nil {
				raw = c.Value
			}

			id, err := gate.Authenticate(r.Context(), raw)
			if err != nil {
				if errors.Is(err, apperr.ErrAuthentication) {
					ClearCookie(w)
				}
				if apperr.Status(err) >= http.StatusInternalServerError {
					log.WithFields(logrus.Fields{
						"request_id": middleware.GetReqID(r.Context()),
						"path":       r.URL.Path,
					}).WithError(err).Error("session lookup failed")
				}
				writeError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireIdentity rejects anonymous requests with 403.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			writeError(w, apperr.New(apperr.ErrAuthorization, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func SetCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.Status(err))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": apperr.Message(err),
	})
}
