package api

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pogoda/internal/weather"
)

const sessionCookieName = "pogoda_session"

type sessionKey struct{}

// NewSessionMiddleware attaches a weather.Session to every /v1/ request.
// The session id travels in a cookie signed with secret; a missing, forged or
// expired cookie starts a new session.
func NewSessionMiddleware(sessions *weather.Sessions, secret []byte, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/v1/") {
				next.ServeHTTP(w, r)
				return
			}

			var sess *weather.Session
			if id, ok := verifySessionCookie(r, secret); ok {
				sess, _ = sessions.Get(id)
			}
			if sess == nil {
				var id string
				id, sess = sessions.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    id + "." + hex.EncodeToString(signSessionID(secret, id)),
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				slog.Debug("session created", "active", sessions.Len())
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
		})
	}
}

func sessionFrom(ctx context.Context) *weather.Session {
	sess, _ := ctx.Value(sessionKey{}).(*weather.Session)
	return sess
}

func verifySessionCookie(r *http.Request, secret []byte) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	id, sig, ok := strings.Cut(c.Value, ".")
	if !ok || id == "" {
		return "", false
	}
	sigBytes, err := hex.DecodeString(sig)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(sigBytes, signSessionID(secret, id)) {
		return "", false
	}
	return id, true
}

func signSessionID(secret []byte, id string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(sessionCookieName))
	mac.Write([]byte("\n"))
	mac.Write([]byte(id))
	return mac.Sum(nil)
}
