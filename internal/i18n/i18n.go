package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Bundle holds one label table per supported locale.
type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
}

// Load reads <dir>/<locale>.json for every supported locale.
func Load(dir string, fallback string, supported []string) (*Bundle, error) {
	return LoadFS(os.DirFS(dir), fallback, supported)
}

// LoadFS is Load over an arbitrary filesystem (embedded assets, tests).
func LoadFS(fsys fs.FS, fallback string, supported []string) (*Bundle, error) {
	fallback = normalize(fallback)
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  fallback,
		supported: map[string]struct{}{},
	}
	if len(supported) == 0 {
		supported = []string{"es", "en"}
	}
	for _, l := range supported {
		l = normalize(l)
		if l == "" {
			continue
		}
		b.supported[l] = struct{}{}
		raw, err := fs.ReadFile(fsys, l+".json")
		if err != nil {
			// allow missing file for non-default locales
			if l == fallback || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load locale %s: %w", l, err)
			}
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
	}
	if _, ok := b.dict[fallback]; !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	return b, nil
}

// Supported returns the supported locale tags in sorted order.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.supported))
	for k := range b.supported {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang is one of the configured tags (exact match).
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// Has reports whether lang carries its own translation for key.
func (b *Bundle) Has(lang, key string) bool {
	m, ok := b.dict[lang]
	if !ok {
		return false
	}
	_, ok = m[key]
	return ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Match maps a single language tag onto a supported locale by its base language,
// so "es-AR" and "ES" both select "es".
func (b *Bundle) Match(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", false
	}
	if l := normalize(tag); b.IsSupported(l) {
		return l, true
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	base, _ := parsed.Base()
	if l := base.String(); b.IsSupported(l) {
		return l, true
	}
	return "", false
}

// Resolve chooses best language from Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	// ParseAcceptLanguage drops q=0 entries and sorts by q, keeping header order on ties.
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil {
		tags = parseLenient(acceptLang)
	}
	for _, t := range tags {
		base, conf := t.Base()
		if conf == language.No {
			continue
		}
		if l := base.String(); b.IsSupported(l) {
			return l
		}
	}
	return b.fallback
}

// parseLenient reads a header ParseAcceptLanguage rejected entry by entry,
// skipping tags that do not parse. An unreadable q keeps the default of 1.
func parseLenient(acceptLang string) []language.Tag {
	type pref struct {
		tag language.Tag
		q   float64
	}
	var prefs []pref
	for _, raw := range strings.Split(acceptLang, ",") {
		entry := strings.TrimSpace(raw)
		q := 1.0
		if sc := strings.IndexByte(entry, ';'); sc != -1 {
			for _, param := range strings.Split(entry[sc+1:], ";") {
				name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
				if !ok || !strings.EqualFold(strings.TrimSpace(name), "q") {
					continue
				}
				if v, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && v >= 0 && v <= 1 {
					q = v
				}
			}
			entry = strings.TrimSpace(entry[:sc])
		}
		if entry == "" || q == 0 {
			continue
		}
		t, err := language.Parse(entry)
		if err != nil {
			continue
		}
		prefs = append(prefs, pref{tag: t, q: q})
	}
	sort.SliceStable(prefs, func(i, j int) bool { return prefs[i].q > prefs[j].q })
	tags := make([]language.Tag, 0, len(prefs))
	for _, p := range prefs {
		tags = append(tags, p.tag)
	}
	return tags
}

func normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
