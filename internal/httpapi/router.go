package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cloud-ru/erp-finance-summary/internal/config"
	"github.com/cloud-ru/erp-finance-summary/internal/metrics"
)

// RouterParams группирует зависимости для построения HTTP роутера
type RouterParams struct {
	Logger  *zap.Logger
	Config  *config.Config
	Handler *Handler
}

// NewRouter создает chi роутер
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(params.Config, params.Logger) {
		r.Use(mw)
	}

	h := params.Handler
	r.Get("/healthz", h.healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/tools/{tool}", h.runTool)

		r.Group(func(r chi.Router) {
			r.Use(h.withAccess)
			r.Get("/navigation", h.navigation)
			r.Delete("/access/{userID}", h.invalidateAccess)

			r.Route("/{resource}", func(r chi.Router) {
				r.Use(h.requireModule)
				r.Post("/preview", h.preview)
				r.Post("/", h.create)
				r.Put("/{id}", h.update)
			})
		})
	})

	return r
}
