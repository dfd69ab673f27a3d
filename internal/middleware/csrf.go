package middleware

import (
	"crypto/subtle"
	"net/http"
)

const (
	// CSRFHeader carries the token on fetch and htmx requests.
	CSRFHeader = "X-CSRF-Token"
	// CSRFField carries the token in form bodies, which is all sendBeacon can send.
	CSRFField = "csrf_token"
)

// CSRF verifies that unsafe requests echo the session's token.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		token := GetSession(r).CSRFToken
		got := r.Header.Get(CSRFHeader)
		if got == "" && isFormBody(r) {
			got = r.PostFormValue(CSRFField)
		}
		if token == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			WriteError(w, r, http.StatusForbidden, "invalid_csrf", "invalid CSRF token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isFormBody(r *http.Request) bool {
	switch mediaType(r.Header.Get("Content-Type")) {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	}
	return false
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
