// Package content loads the portfolio copy (biography, projects, contact
// details) for each locale from YAML files.
package content

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// Link is an outbound anchor.
type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Logo is a technology badge in the home marquee.
type Logo struct {
	Name string `yaml:"name"`
	Src  string `yaml:"src"`
}

// Project is one project card.
type Project struct {
	Title   string
	Summary template.HTML
	Image   string
	Repo    string
}

// ContactEntry is a direct-contact row. Copy enables the copy-to-clipboard button.
type ContactEntry struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
	Href  string `yaml:"href"`
	Copy  bool   `yaml:"copy"`
}

// Link returns Href as a trusted URL when it uses one of the schemes contact rows
// link with, and "" otherwise.
func (c ContactEntry) Link() template.URL {
	u, err := url.Parse(strings.TrimSpace(c.Href))
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "mailto", "tel", "http", "https":
		return template.URL(u.String())
	}
	return ""
}

// Profile is the rendered copy of the page in one locale.
type Profile struct {
	Locale     string
	Name       string
	Roles      []string
	Portrait   string
	Links      []Link
	About      template.HTML
	Highlights []string
	Logos      []Logo
	Projects   []Project
	Contact    []ContactEntry
	Networks   []Link
}

type profileFile struct {
	Name       string         `yaml:"name"`
	Roles      []string       `yaml:"roles"`
	Portrait   string         `yaml:"portrait"`
	Links      []Link         `yaml:"links"`
	About      string         `yaml:"about"`
	Highlights []string       `yaml:"highlights"`
	Logos      []Logo         `yaml:"logos"`
	Projects   []projectFile  `yaml:"projects"`
	Contact    []ContactEntry `yaml:"contact"`
	Networks   []Link         `yaml:"networks"`
}

type projectFile struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Image   string `yaml:"image"`
	Repo    string `yaml:"repo"`
}

// Renderer turns markdown into sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer returns a GFM renderer whose output passes the UGC policy.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts src. Empty input renders empty.
func (r *Renderer) Render(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Parse decodes one profile document and renders its markdown fields.
func (r *Renderer) Parse(locale string, data []byte) (Profile, error) {
	var raw profileFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Profile{}, fmt.Errorf("decode %s profile: %w", locale, err)
	}
	if strings.TrimSpace(raw.Name) == "" {
		return Profile{}, fmt.Errorf("%s profile: name is required", locale)
	}
	about, err := r.Render(raw.About)
	if err != nil {
		return Profile{}, fmt.Errorf("%s profile about: %w", locale, err)
	}
	p := Profile{
		Locale:     locale,
		Name:       strings.TrimSpace(raw.Name),
		Roles:      raw.Roles,
		Portrait:   raw.Portrait,
		Links:      raw.Links,
		About:      about,
		Highlights: raw.Highlights,
		Logos:      raw.Logos,
		Contact:    raw.Contact,
		Networks:   raw.Networks,
	}
	for i, pf := range raw.Projects {
		summary, err := r.Render(pf.Summary)
		if err != nil {
			return Profile{}, fmt.Errorf("%s profile project %d: %w", locale, i, err)
		}
		p.Projects = append(p.Projects, Project{
			Title:   pf.Title,
			Summary: summary,
			Image:   pf.Image,
			Repo:    pf.Repo,
		})
	}
	return p, nil
}
