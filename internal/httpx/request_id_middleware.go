package httpx

import (
	"net/http"

	"github.com/google/uuid"

	"bookcatalog/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware reuses an inbound X-Request-Id or mints one, and binds a
// request-scoped logger to the context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, requestID)
		ctx := ContextWithRequestID(r.Context(), requestID)
		ctx = logging.WithRequestID(ctx, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
