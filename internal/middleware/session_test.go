package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignAndVerifySession(t *testing.T) {
	claims := SessionClaims{Subject: "admin", Exp: time.Now().Add(time.Hour).Unix(), Nonce: "n1"}
	token, err := SignSession("secret", claims)
	if err != nil {
		t.Fatalf("SignSession() error: %v", err)
	}
	parsed, err := VerifySession("secret", token)
	if err != nil {
		t.Fatalf("VerifySession() error: %v", err)
	}
	if *parsed != claims {
		t.Fatalf("VerifySession() = %+v, want %+v", parsed, claims)
	}
	if _, err := VerifySession("other", token); err == nil {
		t.Fatal("VerifySession() expected invalid signature error")
	}
	if _, err := VerifySession("secret", "garbage"); err == nil {
		t.Fatal("VerifySession() expected error for malformed token")
	}
}

func TestVerifySessionExpired(t *testing.T) {
	token, _ := SignSession("secret", SessionClaims{Subject: "admin", Exp: time.Now().Add(-time.Minute).Unix()})
	if _, err := VerifySession("secret", token); err == nil {
		t.Fatal("VerifySession() expected expiration error")
	}
}

func TestRequireSession(t *testing.T) {
	var subject string
	h := RequireSession("secret", "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SessionSubject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("missing cookie: got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	token, _ := SignSession("secret", SessionClaims{Subject: "admin", Exp: time.Now().Add(time.Hour).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || subject != "admin" {
		t.Fatalf("valid cookie: got %d subject %q", rr.Code, subject)
	}
}
