package http

import (
	"net/http"
	"strings"
)

// ContentTypeJSON rejects body-carrying requests that do not declare a JSON
// content type.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// actorFrom resolves who performed a mutating request. The X-User-ID header
// wins over the request-body field so gateway-injected identity cannot be
// spoofed by the payload.
func actorFrom(r *http.Request, bodyValue string) string {
	if v := r.Header.Get("X-User-ID"); v != "" {
		return v
	}
	return bodyValue
}
