package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newSessions(t *testing.T) *Sessions {
	t.Helper()
	s, err := NewSessions(SessionConfig{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
		Now:     func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, err)
	return s
}

func TestSessionStartsAndRoundTrips(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t)
	var seen *SessionData
	h := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen.ID)
	require.NotEmpty(t, seen.CSRFToken)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].HttpOnly)
	first := *seen

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, first.ID, seen.ID)
	require.Empty(t, rec.Result().Cookies(), "existing sessions are not rewritten")
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t)
	var seen *SessionData
	h := sessions.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r)
	}))

	value, err := sessions.Encode(SessionData{ID: "victim", CSRFToken: "t"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessions.CookieName(), Value: value[:len(value)-2] + "xx"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, "victim", seen.ID)
}

func TestNewSessionsValidatesBlockKey(t *testing.T) {
	t.Parallel()

	_, err := NewSessions(SessionConfig{BlockKey: []byte("short")})
	require.ErrorIs(t, err, ErrInvalidSessionConfig)

	s, err := NewSessions(SessionConfig{})
	require.NoError(t, err, "hash key is generated when absent")
	require.Equal(t, defaultSessionCookie, s.CookieName())
}

func csrfRequest(t *testing.T, sessions *Sessions, method string, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	value, err := sessions.Encode(SessionData{ID: "s1", CSRFToken: "tok"})
	require.NoError(t, err)

	req := httptest.NewRequest(method, "/x", strings.NewReader(body))
	req.AddCookie(&http.Cookie{Name: sessions.CookieName(), Value: value})
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h := HTMX(sessions.Middleware(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))))
	h.ServeHTTP(rec, req)
	return rec
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	sessions := newSessions(t)

	rec := csrfRequest(t, sessions, http.MethodGet, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, "safe methods pass")

	rec = csrfRequest(t, sessions, http.MethodPost, "", map[string]string{CSRFHeader: "tok"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	form := url.Values{CSRFField: {"tok"}}.Encode()
	rec = csrfRequest(t, sessions, http.MethodPost, form, map[string]string{"Content-Type": "application/x-www-form-urlencoded"})
	require.Equal(t, http.StatusNoContent, rec.Code, "beacon form bodies carry the token")

	rec = csrfRequest(t, sessions, http.MethodPost, "", map[string]string{CSRFHeader: "nope", "HX-Request": "true"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_csrf", body.Error)

	rec = csrfRequest(t, sessions, http.MethodPost, "", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestHTMXAndRequireHTMX(t *testing.T) {
	t.Parallel()

	var info HTMXInfo
	h := HTMX(RequireHTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = HTMXInfoFromContext(r.Context())
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "site-nav")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, info.IsHTMX)
	require.Equal(t, "site-nav", info.Target)
	require.Equal(t, "HX-Request", rec.Header().Get("Vary"))
}

func TestLocalePreference(t *testing.T) {
	t.Parallel()

	var pref LocalePreference
	h := VaryLocale(Locale(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pref = LocalePreferenceFromContext(r.Context())
	})))
	req := httptest.NewRequest(http.MethodGet, "/?hl=EN", nil)
	req.Header.Set("Accept-Language", "es-AR")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, LocalePreference{Explicit: "en", AcceptLanguage: "es-AR"}, pref)
	require.Equal(t, "Accept-Language", rec.Header().Get("Vary"))
}

func TestAssetsWithCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "nav.js"), []byte("console.log(1)"), 0o644))

	h := AssetsWithCache(dir, "/assets", false)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/js/nav.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age")

	req := httptest.NewRequest(http.MethodGet, "/assets/js/nav.js", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	AssetsWithCache(dir, "/assets", true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/js/nav.js", nil))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Empty(t, rec.Header().Get("ETag"))
}

func TestWriteErrorNegotiates(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept", "text/html, application/json;q=0.9")
	rec := httptest.NewRecorder()
	WriteError(rec, req, http.StatusNotFound, "unknown_section", "no such section")
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, ErrorResponse{Error: "unknown_section", Message: "no such section"}, body)
}
