package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/unknownmsv/O1Sub/internal/domain"
)

type customSubView struct {
	Name            string       `json:"name"`
	Configs         []string     `json:"configs"`
	Usage           *domain.User `json:"usage"`
	SubscriptionURL string       `json:"subscription_url"`
}

func makePath(name string) string {
	return "/sub/make/" + url.PathEscape(name)
}

func (a *App) MakeHome(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"action": "/sub/make",
		"field":  "sub_name",
	})
}

func (a *App) MakeCreate(w http.ResponseWriter, r *http.Request) {
	name := formValue(r, "sub_name")
	if name == "" {
		a.error(w, http.StatusBadRequest, "Subscription name cannot be empty.")
		return
	}
	created, err := a.Registry.Create(r.Context(), name)
	if err != nil {
		a.Logger.Error().Err(err).Str("name", name).Msg("create custom subscription failed")
		a.error(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if created {
		a.Logger.Info().Str("name", name).Msg("custom subscription created")
	}
	http.Redirect(w, r, makePath(name), http.StatusSeeOther)
}

func (a *App) MakeShow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	configs, ok := a.Registry.Read(name)
	if !ok {
		http.Redirect(w, r, "/sub/make", http.StatusSeeOther)
		return
	}
	view := customSubView{
		Name:            name,
		Configs:         configs,
		SubscriptionURL: a.baseURL(r) + "/sub/custom/" + url.PathEscape(name),
	}
	if user, ok := a.Ledger.Get(name); ok {
		view.Usage = &user
	}
	a.json(w, http.StatusOK, view)
}

func (a *App) MakeAppend(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	added, err := a.Registry.Append(r.Context(), name, r.FormValue("configs"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Redirect(w, r, "/sub/make", http.StatusSeeOther)
		return
	case err != nil:
		a.Logger.Error().Err(err).Str("name", name).Msg("append configs failed")
		a.error(w, http.StatusInternalServerError, "Internal error")
		return
	}
	a.Logger.Info().Str("name", name).Int("added", added).Msg("configs added")
	http.Redirect(w, r, makePath(name), http.StatusSeeOther)
}

func (a *App) MakeDelete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	removed, err := a.Registry.Remove(r.Context(), name, r.FormValue("config"))
	if err != nil {
		a.Logger.Error().Err(err).Str("name", name).Msg("delete config failed")
		a.error(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if !removed {
		a.Logger.Debug().Str("name", name).Msg("config to delete not found")
	}
	http.Redirect(w, r, makePath(name), http.StatusSeeOther)
}
