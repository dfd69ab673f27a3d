package middleware

import (
	"context"
	"net/http"
	"strings"
)

// HTMXInfo captures request metadata from HX-* headers.
type HTMXInfo struct {
	IsHTMX      bool
	CurrentURL  string
	Target      string
	TriggerID   string
	TriggerName string
}

// HTMX inspects HX-* headers and annotates the context.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := HTMXInfo{
			IsHTMX:      strings.EqualFold(r.Header.Get("HX-Request"), "true"),
			CurrentURL:  r.Header.Get("HX-Current-URL"),
			Target:      r.Header.Get("HX-Target"),
			TriggerID:   r.Header.Get("HX-Trigger"),
			TriggerName: r.Header.Get("HX-Trigger-Name"),
		}
		ctx := context.WithValue(r.Context(), ctxKeyHTMX, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HTMXInfoFromContext retrieves HTMX metadata; zero value if absent.
func HTMXInfoFromContext(ctx context.Context) HTMXInfo {
	info, _ := ctx.Value(ctxKeyHTMX).(HTMXInfo)
	return info
}

// IsHTMX returns whether this is an htmx request.
func IsHTMX(ctx context.Context) bool {
	return HTMXInfoFromContext(ctx).IsHTMX
}

// RequireHTMX answers 404 to direct navigation on fragment routes.
func RequireHTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsHTMX(r.Context()) {
			http.NotFound(w, r)
			return
		}
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r)
	})
}
