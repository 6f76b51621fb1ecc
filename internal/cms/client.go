package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Observer receives request outcomes: "ok", "not_found", "error" or "cache".
type Observer interface {
	ObserveCMS(result string)
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
	Category string
}

// Client reads live articles from the CMS REST API. Responses are cached
// in-process and identical concurrent requests share one upstream call.
type Client struct {
	baseURL  string
	token    string
	category string
	http     *http.Client
	cache    *gocache.Cache
	group    singleflight.Group
	observer Observer
	logger   *slog.Logger
}

// NewClient builds a Client. A zero CacheTTL disables caching.
func NewClient(cfg Config, observer Observer, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		category: cfg.Category,
		http:     &http.Client{Timeout: cfg.Timeout},
		observer: observer,
		logger:   logger,
	}
	if cfg.CacheTTL > 0 {
		c.cache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// ListArticles returns one page of live articles, newest first.
func (c *Client) ListArticles(ctx context.Context, p ListParams) (ArticlePage, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 10
	}
	if p.Category == "" {
		p.Category = c.category
	}
	q := url.Values{}
	q.Set("publicationState", "live")
	q.Set("sort", "publishedAt:desc")
	q.Set("pagination[page]", strconv.Itoa(p.Page))
	q.Set("pagination[pageSize]", strconv.Itoa(p.PageSize))
	if p.Category != "" {
		q.Set("filters[category][slug][$eq]", p.Category)
	}
	v, err := c.cached(ctx, "list:"+q.Encode(), func(ctx context.Context) (any, error) {
		env, err := c.get(ctx, q)
		if err != nil {
			return nil, err
		}
		var wire []wireArticle
		if err := json.Unmarshal(env.Data, &wire); err != nil {
			return nil, fmt.Errorf("cms: decode articles: %w", err)
		}
		page := ArticlePage{Articles: make([]Article, 0, len(wire)), Pagination: env.Meta.Pagination}
		for _, w := range wire {
			page.Articles = append(page.Articles, w.article())
		}
		if page.Pagination.Page == 0 {
			page.Pagination.Page = p.Page
			page.Pagination.PageSize = p.PageSize
		}
		return page, nil
	})
	if err != nil {
		return ArticlePage{}, err
	}
	return v.(ArticlePage), nil
}

// ArticleBySlug returns the live article with slug.
func (c *Client) ArticleBySlug(ctx context.Context, slug string) (Article, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Article{}, ErrArticleNotFound
	}
	q := url.Values{}
	q.Set("publicationState", "live")
	q.Set("filters[slug][$eq]", slug)
	q.Set("pagination[pageSize]", "1")
	if c.category != "" {
		q.Set("filters[category][slug][$eq]", c.category)
	}
	v, err := c.cached(ctx, "slug:"+slug, func(ctx context.Context) (any, error) {
		env, err := c.get(ctx, q)
		if err != nil {
			return nil, err
		}
		var wire []wireArticle
		if err := json.Unmarshal(env.Data, &wire); err != nil {
			return nil, fmt.Errorf("cms: decode article: %w", err)
		}
		if len(wire) == 0 {
			c.observe("not_found")
			return nil, ErrArticleNotFound
		}
		return wire[0].article(), nil
	})
	if err != nil {
		return Article{}, err
	}
	return v.(Article), nil
}

// Forget drops every cached response.
func (c *Client) Forget() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

func (c *Client) cached(ctx context.Context, key string, load func(context.Context) (any, error)) (any, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(key); ok {
			c.observe("cache")
			return v, nil
		}
	}
	// The shared load outlives any single caller; the HTTP client timeout
	// bounds it.
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := load(detached)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.SetDefault(key, v)
		}
		return v, nil
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) get(ctx context.Context, q url.Values) (envelope, error) {
	var env envelope
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/articles?"+q.Encode(), nil)
	if err != nil {
		return env, fmt.Errorf("cms: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("error")
		return env, fmt.Errorf("cms: request: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.observe("not_found")
		return env, ErrArticleNotFound
	case resp.StatusCode >= 300:
		c.observe("error")
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("cms unexpected status", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return env, fmt.Errorf("cms: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.observe("error")
		return env, fmt.Errorf("cms: decode envelope: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		env.Data = json.RawMessage("[]")
	}
	c.observe("ok")
	return env, nil
}

func (c *Client) observe(result string) {
	if c.observer != nil {
		c.observer.ObserveCMS(result)
	}
}
