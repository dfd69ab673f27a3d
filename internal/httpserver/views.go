package httpserver

import (
	"html/template"
	"net/http"

	"github.com/BrandonAlanDev/Portfolio2025/internal/content"
	"github.com/BrandonAlanDev/Portfolio2025/internal/nav"
	"github.com/BrandonAlanDev/Portfolio2025/internal/page"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
	"github.com/BrandonAlanDev/Portfolio2025/internal/seo"
)

// SectionView is one rendered <section>.
type SectionView struct {
	ID    string
	Title string
}

// HomeData is the view model of the whole document and of its fragments.
type HomeData struct {
	PageID      string
	CSRFToken   string
	HXHeaders   string
	Locale      string
	OtherLocale string
	Dev         bool

	Nav       []nav.RenderedItem
	Active    string
	MenuOpen  bool
	MenuClass string
	Sections  []SectionView

	// class hints read by the client when it applies state pushed over the socket
	LinkActiveClass   string
	LinkInactiveClass string
	MenuOpenClass     string
	MenuClosedClass   string

	Profile content.Profile
	Meta    seo.Meta

	WSPath      string
	ScrollPath  string
	BodyPath    string
	UnmountPath string

	labels section.LabelSource
}

// T resolves a UI label in the page locale.
func (d HomeData) T(key string) string {
	if d.labels == nil {
		return key
	}
	return d.labels.T(d.Locale, key)
}

// Section returns the rendered title of id.
func (d HomeData) Section(id string) SectionView {
	for _, s := range d.Sections {
		if s.ID == id {
			return s
		}
	}
	return SectionView{ID: id}
}

// ActivatePath is the htmx endpoint that activates id.
func (d HomeData) ActivatePath(id string) string {
	return "/pages/" + d.PageID + "/activate/" + id
}

// MenuPath is the htmx endpoint toggling the collapsed menu.
func (d HomeData) MenuPath() string { return "/pages/" + d.PageID + "/menu" }

// LocalePath is the htmx endpoint switching to locale.
func (d HomeData) LocalePath(locale string) string {
	return "/pages/" + d.PageID + "/locale/" + locale
}

func (s *Server) view(r *http.Request, p *page.Page, csrf string) (HomeData, error) {
	state := p.State()
	profile, err := s.content.Profile(state.Locale)
	if err != nil {
		return HomeData{}, err
	}
	registry := s.pages.Registry()

	d := HomeData{
		PageID:            p.ID,
		CSRFToken:         csrf,
		HXHeaders:         seo.JSON(map[string]string{"X-CSRF-Token": csrf}),
		Locale:            state.Locale,
		OtherLocale:       otherLocale(registry, state.Locale),
		Dev:               s.dev,
		Nav:               p.Items(),
		Active:            state.ActiveSectionID,
		MenuOpen:          state.MenuOpen,
		MenuClass:         nav.MenuClass(state),
		LinkActiveClass:   nav.LinkClassActive,
		LinkInactiveClass: nav.LinkClassInactive,
		MenuOpenClass:     nav.MenuClassOpen,
		MenuClosedClass:   nav.MenuClassClosed,
		Profile:           profile,
		WSPath:            "/pages/" + p.ID + "/ws",
		ScrollPath:        "/pages/" + p.ID + "/scroll",
		BodyPath:          "/pages/" + p.ID + "/body",
		UnmountPath:       "/pages/" + p.ID + "/unmount",
		labels:            s.labels,
	}
	for _, id := range registry.IDs() {
		title, err := registry.TitleFor(id, state.Locale)
		if err != nil {
			return HomeData{}, err
		}
		d.Sections = append(d.Sections, SectionView{ID: id, Title: title})
	}
	d.Meta = s.meta(r, d)
	return d, nil
}

// otherLocale picks the toggle target: the next supported locale in order.
func otherLocale(registry *section.Registry, current string) string {
	locales := registry.Locales()
	for i, l := range locales {
		if l == current {
			return locales[(i+1)%len(locales)]
		}
	}
	return registry.DefaultLocale()
}

func (s *Server) meta(r *http.Request, d HomeData) seo.Meta {
	base := baseURL(r)
	m := seo.Meta{
		Title:       d.T("site.title"),
		Description: d.T("site.description"),
		Canonical:   base + "/",
		OG: seo.OpenGraph{
			Title:       d.T("site.title"),
			Description: d.T("site.description"),
			Image:       base + d.Profile.Portrait,
			Type:        "profile",
			Locale:      d.Locale,
		},
	}
	for _, l := range s.pages.Registry().Locales() {
		m.Alternates = append(m.Alternates, seo.Alternate{Hreflang: l, Href: base + "/?hl=" + l})
	}
	var sameAs []string
	for _, n := range d.Profile.Networks {
		sameAs = append(sameAs, n.URL)
	}
	m.JSONLD = []template.JS{
		seo.Script(seo.Person(d.Profile.Name, base+"/", base+d.Profile.Portrait, d.Profile.Roles, sameAs)),
		seo.Script(seo.WebSite(d.T("site.title"), base+"/", d.Locale)),
	}
	return m
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
