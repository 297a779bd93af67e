// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	"github.com/ManuGH/dayloop/internal/log"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logging writes one debug line per request; server errors are logged at warn.
func Logging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger := log.WithComponentFromContext(r.Context(), "ops")
			ev := logger.Debug()
			if sw.statusCode >= http.StatusInternalServerError {
				ev = logger.Warn()
			}
			ev.Str(log.FieldEvent, "http.request").
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.statusCode).
				Int("bytes", sw.bytesWritten).
				Dur("duration", time.Since(start)).
				Msg("ops request served")
		})
	}
}
