package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/unknownmsv/O1Sub/internal/ledger"
	"github.com/unknownmsv/O1Sub/internal/subscription"
)

type App struct {
	Service  *subscription.Service
	Links    *subscription.Links
	Registry *subscription.Registry
	Ledger   *ledger.Ledger
	Logger   zerolog.Logger

	AdminPassword string
	SessionSecret string
	SessionTTL    time.Duration
	PublicBaseURL string
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, errorResponse{Error: message})
}

func (a *App) text(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// formValue returns a trimmed, NFC-normalized form field so names typed on
// different clients map to the same key.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(norm.NFC.String(r.FormValue(key)))
}

// baseURL is the externally visible origin of the service.
func (a *App) baseURL(r *http.Request) string {
	if a.PublicBaseURL != "" {
		return a.PublicBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
