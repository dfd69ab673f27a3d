package middleware

import (
	"net/http"
	"strings"
)

// VaryLocale sets Vary header for Accept-Language on dynamic responses.
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

// Locale records the reader's language preference (?hl, then Accept-Language).
// Nothing is persisted: every mount infers its locale afresh.
func Locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pref := LocalePreference{
			Explicit:       strings.ToLower(strings.TrimSpace(r.URL.Query().Get("hl"))),
			AcceptLanguage: r.Header.Get("Accept-Language"),
		}
		next.ServeHTTP(w, r.WithContext(WithLocalePreference(r.Context(), pref)))
	})
}
