package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// SessionCookie is the cookie carrying the admin session token.
const SessionCookie = "o1sub_session"

// SessionClaims is the signed payload of an admin session.
type SessionClaims struct {
	Subject string `json:"sub"`
	Exp     int64  `json:"exp"`
	Nonce   string `json:"nonce"`
}

type sessionKey struct{}

func SignSession(secret string, claims SessionClaims) (string, error) {
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	payloadEnc := base64.RawURLEncoding.EncodeToString(payloadJSON)
	return payloadEnc + "." + hmacSign(secret, payloadEnc), nil
}

func hmacSign(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifySession(secret, token string) (*SessionClaims, error) {
	payloadEnc, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, errors.New("invalid session")
	}
	expected := hmacSign(secret, payloadEnc)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return nil, errors.New("invalid signature")
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadEnc)
	if err != nil {
		return nil, err
	}
	var claims SessionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, err
	}
	if claims.Exp != 0 && time.Now().Unix() > claims.Exp {
		return nil, errors.New("session expired")
	}
	return &claims, nil
}

// RequireSession redirects requests without a valid session cookie to loginPath.
func RequireSession(secret, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			claims, err := VerifySession(secret, cookie.Value)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionSubject returns the subject of the verified session, if any.
func SessionSubject(ctx context.Context) string {
	if v, ok := ctx.Value(sessionKey{}).(string); ok {
		return v
	}
	return ""
}
