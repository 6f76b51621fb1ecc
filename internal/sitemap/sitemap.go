// Package sitemap builds the sitemap.xml artifact from the static pages and
// the published markdown articles.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Namespace is the sitemaps.org schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Route is a page of the site listed in the sitemap.
type Route struct {
	Path       string
	Title      string
	ChangeFreq string
	Priority   float64
}

// StaticRoutes lists the marketing pages in navigation order.
func StaticRoutes() []Route {
	return []Route{
		{Path: "/", Title: "Accueil", ChangeFreq: "weekly", Priority: 1.0},
		{Path: "/services", Title: "Services", ChangeFreq: "monthly", Priority: 0.8},
		{Path: "/actualites", Title: "Actualités", ChangeFreq: "daily", Priority: 0.8},
		{Path: "/a-propos", Title: "À propos", ChangeFreq: "monthly", Priority: 0.6},
		{Path: "/contact", Title: "Contact", ChangeFreq: "yearly", Priority: 0.5},
		{Path: "/mentions-legales", Title: "Mentions légales", ChangeFreq: "yearly", Priority: 0.3},
	}
}

// URL is one <url> entry.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// URLSet is the sitemap document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Build returns one entry per static route followed by one entry per article,
// articles ordered by slug. The same inputs always give the same document.
func Build(baseURL string, routes []Route, articles []Article) URLSet {
	base := strings.TrimRight(baseURL, "/")
	set := URLSet{Xmlns: Namespace, URLs: make([]URL, 0, len(routes)+len(articles))}
	for _, r := range routes {
		set.URLs = append(set.URLs, URL{
			Loc:        base + r.Path,
			ChangeFreq: r.ChangeFreq,
			Priority:   formatPriority(r.Priority),
		})
	}
	sorted := append([]Article(nil), articles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Slug < sorted[j].Slug })
	for _, a := range sorted {
		entry := URL{
			Loc:        base + "/actualites/" + a.Slug,
			ChangeFreq: "monthly",
			Priority:   formatPriority(0.7),
		}
		if mod := a.LastModified(); !mod.IsZero() {
			entry.LastMod = mod.UTC().Format(time.DateOnly)
		}
		set.URLs = append(set.URLs, entry)
	}
	return set
}

// Write encodes set as an indented XML document with its header.
func Write(w io.Writer, set URLSet) error {
	if set.Xmlns == "" {
		set.Xmlns = Namespace
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("sitemap: encode: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func formatPriority(p float64) string {
	if p <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", p)
}
