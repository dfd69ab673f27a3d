package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "github.com/BrandonAlanDev/Portfolio2025/internal/middleware"
	"github.com/BrandonAlanDev/Portfolio2025/internal/nav"
	"github.com/BrandonAlanDev/Portfolio2025/internal/observability"
	"github.com/BrandonAlanDev/Portfolio2025/internal/page"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
	"github.com/BrandonAlanDev/Portfolio2025/internal/seo"
)

const maxReportBytes = 64 << 10

// StateResponse is the JSON answer of page endpoints.
type StateResponse struct {
	PageID  string             `json:"pageId"`
	State   nav.State          `json:"state"`
	Changed bool               `json:"changed"`
	Stale   bool               `json:"stale"`
	Ignored []string           `json:"ignored,omitempty"`
	Scroll  *nav.ScrollCommand `json:"scroll,omitempty"`

	// Bounds echoes the geometry the page now holds after a scroll report.
	Bounds map[string]section.Bounds `json:"bounds,omitempty"`
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	pref := mw.LocalePreferenceFromContext(r.Context())
	p, err := s.pages.Mount(r.Context(), page.MountOptions{
		SessionID:      sess.ID,
		AcceptLanguage: pref.AcceptLanguage,
		Locale:         pref.Explicit,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := s.view(r, p, sess.CSRFToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	// every document gets its own page id
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Language", data.Locale)
	s.html(w, r, http.StatusOK, "base", data)
}

// lookup resolves {pageID} for the caller's session.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*page.Page, bool) {
	p, err := s.pages.Lookup(chi.URLParam(r, "pageID"), mw.GetSession(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return p, true
}

func (s *Server) scroll(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var report page.Report
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBytes)).Decode(&report); err != nil {
		mw.WriteError(w, r, http.StatusBadRequest, "invalid_report", "malformed scroll report")
		return
	}
	res, err := p.Report(r.Context(), report)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	snap := p.Snapshot()
	mw.WriteJSON(w, http.StatusOK, StateResponse{
		PageID:  p.ID,
		State:   snap.State,
		Changed: res.Changed(),
		Stale:   snap.Stale,
		Ignored: p.IgnoredIDs(),
		Bounds:  p.Bounds(),
	})
}

func (s *Server) activate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res, err := p.Dispatch(r.Context(), nav.Activate{ID: chi.URLParam(r, "sectionID")})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var scroll *nav.ScrollCommand
	if cmd, ok := p.PendingScroll(); ok {
		scroll = &cmd
	}
	if !mw.IsHTMX(r.Context()) && mw.WantsJSON(r) {
		mw.WriteJSON(w, http.StatusOK, StateResponse{
			PageID:  p.ID,
			State:   res.After,
			Changed: res.Changed(),
			Scroll:  scroll,
		})
		return
	}
	if scroll != nil {
		w.Header().Set("HX-Trigger", seo.JSON(map[string]any{"nav:scroll": scroll}))
	}
	s.fragment(w, r, p, "nav")
}

func (s *Server) toggleMenu(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res, err := p.Dispatch(r.Context(), nav.ToggleMenu{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !mw.IsHTMX(r.Context()) && mw.WantsJSON(r) {
		mw.WriteJSON(w, http.StatusOK, StateResponse{PageID: p.ID, State: res.After, Changed: res.Changed()})
		return
	}
	s.fragment(w, r, p, "nav")
}

func (s *Server) setLocale(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	res, err := p.Dispatch(r.Context(), nav.SetLocale{Locale: chi.URLParam(r, "locale")})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Language", res.After.Locale)
	if !mw.IsHTMX(r.Context()) && mw.WantsJSON(r) {
		mw.WriteJSON(w, http.StatusOK, StateResponse{PageID: p.ID, State: res.After, Changed: res.Changed(), Stale: true})
		return
	}
	w.Header().Set("HX-Trigger", seo.JSON(map[string]any{"nav:locale": map[string]string{"locale": res.After.Locale}}))
	s.fragment(w, r, p, "body")
}

// body re-renders the page body for the current state, used after a locale
// change delivered over the socket.
func (s *Server) body(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Language", p.State().Locale)
	s.fragment(w, r, p, "body")
}

func (s *Server) unmount(w http.ResponseWriter, r *http.Request) {
	err := s.pages.Unmount(r.Context(), chi.URLParam(r, "pageID"), mw.GetSession(r).ID)
	if err != nil && !errors.Is(err, page.ErrNotFound) {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fragment(w http.ResponseWriter, r *http.Request, p *page.Page, name string) {
	data, err := s.view(r, p, mw.GetSession(r).CSRFToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.html(w, r, http.StatusOK, name, data)
}

func (s *Server) html(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := s.render.Render(w, status, name, data); err != nil {
		observability.FromContext(r.Context()).Error("render failed", zap.String("template", name), zap.Error(err))
		mw.WriteError(w, r, http.StatusInternalServerError, "render_failed", http.StatusText(http.StatusInternalServerError))
	}
}
