package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unknownmsv/O1Sub/internal/domain"
)

func (a *App) Usage(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Ledger.Snapshot())
}

func (a *App) PublicSubscription(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	// An absent name is anonymous; a present but empty one is its own identity.
	identity := domain.AnonymousIdentity
	if q := r.URL.Query(); q.Has("name") {
		identity = q.Get("name")
	}

	body, err := a.Service.Public(r.Context(), category, identity)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "Subscription type not found")
		return
	case errors.Is(err, domain.ErrQuotaExceeded):
		a.error(w, http.StatusTooManyRequests, "Usage limit reached")
		return
	case err != nil:
		a.Logger.Error().Err(err).Str("category", category).Msg("resolve public subscription failed")
		a.error(w, http.StatusInternalServerError, "Internal error")
		return
	}
	a.text(w, body)
}

func (a *App) CustomSubscription(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := a.Service.Custom(r.Context(), name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "Custom subscription not found")
		return
	case err != nil:
		a.Logger.Error().Err(err).Str("name", name).Msg("resolve custom subscription failed")
		a.error(w, http.StatusInternalServerError, "Internal error")
		return
	}
	a.text(w, body)
}
