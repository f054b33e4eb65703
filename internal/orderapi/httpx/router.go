package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chemabeez/honey-orders/internal/orderapi/httpx/middlewares"
)

// NewRouter wires the middleware stack and routes. The two business
// endpoints are registered for all methods because they implement their
// own method guard (405 with an Allow header and a JSON body, which chi's
// default 405 does not produce).
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.HandleFunc("/api/order", handler.CreateOrder)
	r.HandleFunc("/api/mpesa/callback", handler.MpesaCallback)
	r.Get("/healthz", handler.Healthz)
	return r
}
