package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/gouvernance-ai/gouvernance/internal/cms"
	jobmetrics "github.com/gouvernance-ai/gouvernance/internal/jobs"
)

// ArticleLister is the part of the CMS client the warmup needs.
type ArticleLister interface {
	ListArticles(ctx context.Context, p cms.ListParams) (cms.ArticlePage, error)
}

// CMSWarmupJob fills the CMS response cache with the first listing pages and
// their articles.
type CMSWarmupJob struct {
	CMS      ArticleLister
	PageSize int
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// Handle processes cms:warmup tasks.
func (j *CMSWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.CMS == nil {
		return errors.New("cms warmup: client not configured")
	}
	payload := CMSWarmupPayload{Pages: 1}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Pages <= 0 {
		payload.Pages = 1
	}

	tracker := j.Metrics.Track(TaskCMSWarmup)
	defer func() { err = tracker.End(err) }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	warmed := 0
	for page := 1; page <= payload.Pages; page++ {
		result, err := j.CMS.ListArticles(ctx, cms.ListParams{Page: page, PageSize: j.PageSize})
		if err != nil {
			logger(j.Logger).Warn("cms warmup", slog.Int("page", page), slog.Any("error", err))
			return err
		}
		warmed += len(result.Articles)
		if !result.Pagination.HasNext() {
			break
		}
	}
	logger(j.Logger).Info("cms warmed", slog.Int("articles", warmed))
	return nil
}
