// Package seo builds head metadata and JSON-LD for the portfolio page.
package seo

import (
	"encoding/json"
	"html/template"
)

// OpenGraph holds og:* values.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	Locale      string
}

// Alternate is one hreflang link.
type Alternate struct {
	Hreflang string
	Href     string
}

// Meta is everything the document head renders.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Alternates  []Alternate
	OG          OpenGraph
	JSONLD      []template.JS
}

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Script marshals a JSON-LD payload for a <script type="application/ld+json"> body.
func Script(v any) template.JS {
	return template.JS(JSON(v))
}

// Person returns a schema.org Person.
func Person(name, url, imageURL string, jobTitles, sameAs []string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if len(jobTitles) > 0 {
		m["jobTitle"] = jobTitles
	}
	if len(sameAs) > 0 {
		m["sameAs"] = sameAs
	}
	return m
}

// WebSite returns a minimal schema.org WebSite.
func WebSite(name, url, language string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if language != "" {
		m["inLanguage"] = language
	}
	return m
}
