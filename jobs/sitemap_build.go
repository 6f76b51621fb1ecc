package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gouvernance-ai/gouvernance/internal/jobs"
	"github.com/gouvernance-ai/gouvernance/internal/sitemap"
)

// SitemapBuildJob writes the sitemap artifact to Target.
type SitemapBuildJob struct {
	Generator sitemap.Generator
	Target    string
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// Handle processes sitemap:build tasks.
func (j *SitemapBuildJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Target == "" {
		return errors.New("sitemap build: target not configured")
	}
	tracker := j.Metrics.Track(TaskSitemapBuild)
	defer func() { err = tracker.End(err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := j.Generator.WriteFile(j.Target)
	if err != nil {
		logger(j.Logger).Error("sitemap build", slog.String("target", j.Target), slog.Any("error", err))
		return err
	}
	logger(j.Logger).Info("sitemap built", slog.String("target", j.Target), slog.Int("urls", n))
	return nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
