package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/chemabeez/honey-orders/internal/pkg/requestmeta"
)

// AttachRequestMetadata copies the chi request ID into the context under a
// typed key so handlers and log lines can reference it without reaching
// back into chi.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		ctx := requestmeta.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
