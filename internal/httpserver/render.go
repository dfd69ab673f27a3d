package httpserver

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BrandonAlanDev/Portfolio2025/internal/seo"
)

// Renderer executes the site templates. In dev mode templates are reparsed on
// every render so edits show up without a restart.
type Renderer struct {
	dir string
	dev bool

	once  sync.Once
	cache *template.Template
	err   error
}

// NewRenderer parses dir eagerly unless dev is set.
func NewRenderer(dir string, dev bool) (*Renderer, error) {
	r := &Renderer{dir: dir, dev: dev}
	if !dev {
		if _, err := r.templates(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var funcMap = template.FuncMap{
	"year": func() int { return time.Now().Year() },
	"json": seo.JSON,
}

func (r *Renderer) parse() (*template.Template, error) {
	// ParseGlob doesn't support **, so walk the tree.
	var files []string
	if err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", r.dir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func (r *Renderer) templates() (*template.Template, error) {
	if r.dev {
		return r.parse()
	}
	r.once.Do(func() { r.cache, r.err = r.parse() })
	return r.cache, r.err
}

// Render executes the named template into a buffer, then writes it with status.
// Nothing is written when execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	t, err := r.templates()
	if err != nil {
		return fmt.Errorf("template parse: %w", err)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("template exec %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}
