package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue every portal task runs on.
	QueueDefault = "default"
	// TaskSitemapBuild rewrites the sitemap artifact.
	TaskSitemapBuild = "sitemap:build"
	// TaskCMSWarmup prefetches the first news pages.
	TaskCMSWarmup = "cms:warmup"
)

// CMSWarmupPayload selects how many listing pages to prefetch.
type CMSWarmupPayload struct {
	Pages int `json:"pages"`
}

// NewSitemapBuildTask builds a sitemap:build task.
func NewSitemapBuildTask() *asynq.Task {
	return asynq.NewTask(TaskSitemapBuild, nil)
}

// NewCMSWarmupTask builds a cms:warmup task.
func NewCMSWarmupTask(pages int) (*asynq.Task, error) {
	data, err := json.Marshal(CMSWarmupPayload{Pages: pages})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCMSWarmup, data), nil
}
