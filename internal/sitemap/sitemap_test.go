package sitemap_test

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gouvernance-ai/gouvernance/internal/sitemap"
)

func contentFS() fstest.MapFS {
	return fstest.MapFS{
		"2026/reglement.md": {Data: []byte("---\nslug: reglement-ia\ntitle: Règlement IA\ndate: 2026-03-02\nupdated: 2026-03-10\n---\nCorps\n")},
		"registre.md":       {Data: []byte("---\nslug: registre\ndate: 2026-02-01\n---\nCorps\n")},
		"brouillon.md":      {Data: []byte("---\nslug: brouillon\ndraft: true\n---\n")},
		"sans-slug.md":      {Data: []byte("---\ntitle: Sans slug\n---\n")},
		"sans-entete.md":    {Data: []byte("# Pas d'en-tête\n")},
		"notes.txt":         {Data: []byte("---\nslug: ignore\n---\n")},
	}
}

func TestLoadArticlesSkipsDraftsAndSluglessFiles(t *testing.T) {
	articles, err := sitemap.LoadArticlesFS(contentFS(), nil)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "registre", articles[0].Slug)
	assert.Equal(t, "reglement-ia", articles[1].Slug)
	assert.Equal(t, "2026-03-10", articles[1].LastModified().Format("2006-01-02"))
}

func TestLoadArticlesSkipsUndecodableFrontMatter(t *testing.T) {
	fsys := fstest.MapFS{
		"ok.md":     {Data: []byte("---\nslug: ok\ndate: 2026-01-05\n---\n")},
		"quoted.md": {Data: []byte("---\nslug: \"cite\"\n---\n")},
		"fr.md":     {Data: []byte("---\nslug: fr\ndate: 15 janvier 2024\n---\n")},
		"broken.md": {Data: []byte("---\nslug: [unterminated\n---\n")},
	}
	articles, err := sitemap.LoadArticlesFS(fsys, nil)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "cite", articles[0].Slug)
	assert.Equal(t, "ok", articles[1].Slug)

	set := sitemap.Build("https://gouvernance.ai", sitemap.StaticRoutes(), articles)
	assert.Len(t, set.URLs, len(sitemap.StaticRoutes())+2)
}

func TestLoadArticlesMissingDirectory(t *testing.T) {
	articles, err := sitemap.LoadArticles(filepath.Join(t.TempDir(), "absent"), nil)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestBuildListsRoutesThenArticles(t *testing.T) {
	articles, err := sitemap.LoadArticlesFS(contentFS(), nil)
	require.NoError(t, err)
	routes := sitemap.StaticRoutes()

	set := sitemap.Build("https://gouvernance.ai/", routes, articles)
	require.Len(t, set.URLs, len(routes)+2)
	assert.Equal(t, "https://gouvernance.ai/", set.URLs[0].Loc)
	assert.Equal(t, "1.0", set.URLs[0].Priority)
	last := set.URLs[len(set.URLs)-1]
	assert.Equal(t, "https://gouvernance.ai/actualites/registre", last.Loc)
	assert.Equal(t, "2026-02-01", last.LastMod)
}

func TestBuildIsDeterministic(t *testing.T) {
	a := []sitemap.Article{{Slug: "b"}, {Slug: "a"}}
	b := []sitemap.Article{{Slug: "a"}, {Slug: "b"}}
	var first, second bytes.Buffer
	require.NoError(t, sitemap.Write(&first, sitemap.Build("https://x.test", nil, a)))
	require.NoError(t, sitemap.Write(&second, sitemap.Build("https://x.test", nil, b)))
	assert.Equal(t, first.String(), second.String())
}

func TestWriteProducesValidXML(t *testing.T) {
	var buf bytes.Buffer
	set := sitemap.Build("https://gouvernance.ai", sitemap.StaticRoutes(), []sitemap.Article{{Slug: "a"}})
	require.NoError(t, sitemap.Write(&buf, set))
	assert.Contains(t, buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, buf.String(), `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.NotContains(t, buf.String(), "<lastmod></lastmod>")

	var decoded sitemap.URLSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.URLs, len(sitemap.StaticRoutes())+1)
}

func TestGeneratorWriteFileAndHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("---\nslug: a\n---\n"), 0o644))
	gen := sitemap.Generator{BaseURL: "https://gouvernance.ai", ContentDir: dir}

	target := filepath.Join(t.TempDir(), "public", "sitemap.xml")
	n, err := gen.WriteFile(target)
	require.NoError(t, err)
	assert.Equal(t, len(sitemap.StaticRoutes())+1, n)
	written, err := os.ReadFile(target)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	sitemap.Handler(gen, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, string(written), rr.Body.String())
}
