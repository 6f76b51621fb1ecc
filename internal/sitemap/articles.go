package sitemap

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Article is the front matter of a markdown article.
type Article struct {
	Slug    string    `yaml:"slug"`
	Title   string    `yaml:"title"`
	Date    time.Time `yaml:"date"`
	Updated time.Time `yaml:"updated"`
	Draft   bool      `yaml:"draft"`
}

// LastModified is the update date, or the publication date when absent.
func (a Article) LastModified() time.Time {
	if !a.Updated.IsZero() {
		return a.Updated
	}
	return a.Date
}

var frontMatterDelim = []byte("---")

// LoadArticles reads the published articles of dir.
func LoadArticles(dir string, logger *slog.Logger) ([]Article, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadArticlesFS(os.DirFS(dir), logger)
}

// LoadArticlesFS reads every .md file of fsys. Drafts, files without a slug
// and files whose front matter does not decode are skipped; only I/O errors
// abort the walk.
func LoadArticlesFS(fsys fs.FS, logger *slog.Logger) ([]Article, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var articles []Article
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".md" {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("sitemap: read %s: %w", p, err)
		}
		article, ok, err := parseFrontMatter(raw)
		if err != nil {
			logger.Warn("sitemap skip article", slog.String("path", p), slog.Any("error", err))
			return nil
		}
		if !ok || article.Draft || strings.TrimSpace(article.Slug) == "" {
			return nil
		}
		article.Slug = strings.TrimSpace(article.Slug)
		articles = append(articles, article)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(articles, func(i, j int) bool { return articles[i].Slug < articles[j].Slug })
	return articles, nil
}

func parseFrontMatter(raw []byte) (Article, bool, error) {
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(raw, append(frontMatterDelim, '\n')) {
		return Article{}, false, nil
	}
	rest := raw[len(frontMatterDelim)+1:]
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	if end < 0 {
		return Article{}, false, nil
	}
	var article Article
	if err := yaml.Unmarshal(rest[:end], &article); err != nil {
		return Article{}, false, fmt.Errorf("front matter: %w", err)
	}
	return article, true, nil
}
