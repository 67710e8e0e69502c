package router

import (
	"github.com/Totarae/shortlinks/internal/handlers"
	"github.com/Totarae/shortlinks/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(handler.FrontendURL))
	r.Use(middleware.GzipMiddleware)

	r.Get("/healthz", handler.Healthz)
	r.Get("/ping", handler.Ping)

	r.Route("/api/links", func(r chi.Router) {
		r.Post("/", handler.CreateLink)
		r.Get("/", handler.ListLinks)
		r.Get("/{code}", handler.GetLink)
		r.Delete("/{code}", handler.DeleteLink)
	})

	r.Get("/{code}", handler.Redirect)
	return r
}
