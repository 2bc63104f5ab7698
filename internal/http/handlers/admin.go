package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/unknownmsv/O1Sub/internal/domain"
	"github.com/unknownmsv/O1Sub/internal/middleware"
)

const adminSubject = "admin"

type adminView struct {
	Users         domain.Users   `json:"users"`
	Subscriptions domain.LinkSet `json:"subscriptions"`
}

func (a *App) LoginPage(w http.ResponseWriter, r *http.Request) {
	loggedIn := false
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		_, err := middleware.VerifySession(a.SessionSecret, cookie.Value)
		loggedIn = err == nil
	}
	a.json(w, http.StatusOK, map[string]any{
		"logged_in": loggedIn,
		"field":     "password",
	})
}

func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.AdminPassword)) != 1 {
		a.Logger.Warn().Str("ip", middleware.ClientIP(r)).Msg("admin login rejected")
		a.error(w, http.StatusUnauthorized, "Incorrect password.")
		return
	}
	expires := time.Now().Add(a.SessionTTL)
	token, err := middleware.SignSession(a.SessionSecret, middleware.SessionClaims{
		Subject: adminSubject,
		Exp:     expires.Unix(),
		Nonce:   uuid.NewString(),
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign session failed")
		a.error(w, http.StatusInternalServerError, "Internal error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	a.Logger.Info().Str("ip", middleware.ClientIP(r)).Msg("admin logged in")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *App) AdminHome(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, adminView{
		Users:         a.Ledger.Snapshot(),
		Subscriptions: a.Links.Snapshot(),
	})
}

func (a *App) AdminAddUser(w http.ResponseWriter, r *http.Request) {
	username := formValue(r, "username")
	err := a.Ledger.Create(r.Context(), username)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		a.Logger.Info().Msg("add user skipped: empty username")
	case errors.Is(err, domain.ErrAlreadyExists):
		a.Logger.Info().Str("username", username).Msg("add user skipped: already exists")
	case err != nil:
		a.adminFailure(w, err, "add user failed")
		return
	default:
		a.Logger.Info().Str("username", username).Msg("user added")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *App) AdminSetLimit(w http.ResponseWriter, r *http.Request) {
	username := formValue(r, "username")
	limit, err := strconv.Atoi(formValue(r, "limit"))
	if err != nil {
		a.Logger.Info().Str("username", username).Msg("set limit skipped: limit is not a number")
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	err = a.Ledger.SetLimit(r.Context(), username, limit)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.Logger.Info().Str("username", username).Msg("set limit skipped: unknown user")
	case err != nil:
		a.adminFailure(w, err, "set limit failed")
		return
	default:
		a.Logger.Info().Str("username", username).Int("limit", limit).Msg("limit updated")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *App) AdminAddLink(w http.ResponseWriter, r *http.Request) {
	category := formValue(r, "sub_type")
	link := formValue(r, "sub_url")
	if err := a.Links.Add(r.Context(), category, link); err != nil {
		if !errors.Is(err, domain.ErrInvalidInput) && !errors.Is(err, domain.ErrAlreadyExists) {
			a.adminFailure(w, err, "add link failed")
			return
		}
		a.Logger.Info().Err(err).Str("category", category).Msg("add link skipped")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *App) AdminDeleteLink(w http.ResponseWriter, r *http.Request) {
	category := formValue(r, "sub_type")
	link := formValue(r, "sub_url")
	if err := a.Links.Remove(r.Context(), category, link); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			a.adminFailure(w, err, "delete link failed")
			return
		}
		a.Logger.Info().Str("category", category).Msg("delete link skipped: not present")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (a *App) adminFailure(w http.ResponseWriter, err error, msg string) {
	a.Logger.Error().Err(err).Msg(msg)
	a.error(w, http.StatusInternalServerError, "Internal error")
}
