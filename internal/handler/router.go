package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	notifyHandler "github.com/novapay/backend/internal/handler/notify"
	paymentHandler "github.com/novapay/backend/internal/handler/payment"
	middlewarePkg "github.com/novapay/backend/internal/middleware"
	"github.com/novapay/backend/internal/notify"
	paymentService "github.com/novapay/backend/internal/service/payment"
)

// NewRouter wires HTTP routes to core services. A nil registry disables the
// push channel; polling via /api/session-status still works.
func NewRouter(paySvc *paymentService.Service, registry *notify.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	payHandler := paymentHandler.New(paySvc)

	r.Route("/api", func(api chi.Router) {
		payHandler.RegisterRoutes(api)
	})

	if registry != nil {
		wsHandler := notifyHandler.New(registry)
		wsHandler.RegisterRoutes(r)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Backend is running"))
	})

	return r
}
