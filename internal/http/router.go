package http

import (
	"net/http"

	"naikenten/internal/auth"
	"naikenten/internal/config"
	"naikenten/internal/http/handler"
	mw "naikenten/internal/http/middleware"
	"naikenten/internal/store"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, st *store.Store, jwtSvc *auth.JWT) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{JWT: jwtSvc, PasswordHash: cfg.AdminPasswordHash}
	r.Post("/auth/login", ah.Login)

	catalog := &handler.CatalogHandler{Store: st, SharedID: cfg.SharedSpaceID}
	r.Get("/spaces.json", catalog.Dataset)
	r.Route("/api", func(r chi.Router) {
		r.Get("/spaces", catalog.Spaces)
		r.Get("/facets", catalog.Facets)
		r.Get("/cards", catalog.Cards)
		r.Get("/timeline", catalog.Timeline)
	})

	// uploaded images
	r.Handle("/img/*", http.StripPrefix("/img/", http.FileServer(http.Dir(cfg.ImageDir))))

	admin := &handler.AdminHandler{Store: st, Uploads: store.Uploads{Dir: cfg.ImageDir}}
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/mark", admin.Mark)
		r.Post("/mark_multiple", admin.MarkMultiple)
		r.Post("/mark_preview", admin.MarkPreview)
		r.Post("/publish_update", admin.PublishUpdate)
		r.Post("/save", admin.Save)
		r.Post("/revert", admin.Revert)
	})

	return r
}
