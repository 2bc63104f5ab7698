package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/unknownmsv/O1Sub/internal/http/handlers"
	"github.com/unknownmsv/O1Sub/internal/middleware"
)

// Options configures the cross-cutting middleware around the handlers.
type Options struct {
	Logger         zerolog.Logger
	CountryLookup  middleware.CountryLookup
	CORSOrigins    []string
	LoginPerMinute int
	Proxies        *middleware.ProxyTrust
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP(opts.Proxies),
		chimw.Recoverer,
		middleware.Logger(opts.Logger, opts.CountryLookup),
	)

	r.Get("/healthz", app.Health)

	r.Route("/sub", func(r chi.Router) {
		r.Use(middleware.CORS(opts.CORSOrigins))

		r.Get("/usage", app.Usage)
		r.Get("/custom/{name}", app.CustomSubscription)

		r.Get("/make", app.MakeHome)
		r.Post("/make", app.MakeCreate)
		r.Get("/make/{name}", app.MakeShow)
		r.Post("/make/{name}", app.MakeAppend)
		r.Post("/make/{name}/delete", app.MakeDelete)

		r.Get("/{category}", app.PublicSubscription)
	})

	r.Get("/login", app.LoginPage)
	r.With(middleware.RateLimit(opts.LoginPerMinute, time.Minute)).Post("/login", app.Login)
	r.Get("/logout", app.Logout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireSession(app.SessionSecret, "/login"))

		r.Get("/", app.AdminHome)
		r.Post("/add_user", app.AdminAddUser)
		r.Post("/set_limit", app.AdminSetLimit)
		r.Post("/add_sub", app.AdminAddLink)
		r.Post("/delete_sub", app.AdminDeleteLink)
	})

	return r
}
