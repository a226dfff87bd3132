package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// AccessLog пишет строку лога на каждый запрос. 5xx пишутся уровнем Error.
func AccessLog(log Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			format := "HTTP %s %s - status=%d bytes=%d duration_ms=%d request_id=%s"
			args := []interface{}{
				r.Method, r.URL.Path, sw.code(), sw.bytes,
				time.Since(start).Milliseconds(), RequestIDFromContext(r.Context()),
			}
			if sw.code() >= http.StatusInternalServerError {
				log.Error(format, args...)
				return
			}
			log.Info(format, args...)
		})
	}
}
