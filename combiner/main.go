package main

import (
	"context"
	"os"

	"github.com/altsource-combiner/aggregator"
	"github.com/altsource-combiner/shared/middleware"
	"github.com/altsource-combiner/shared/storage"
)

func main() {
	middleware.InitLogger()
	os.Exit(run())
}

func run() int {
	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		middleware.LogError(componentName, "Failed to load configuration: %v", err)
		return 1
	}

	if config.RepoOwner == "" || config.RepoName == "" {
		middleware.LogWarn(componentName, "GITHUB_REPOSITORY_OWNER and GITHUB_REPOSITORY_NAME are not set, using fallback sourceURL %s", config.SourceURL())
	}

	writer, err := storage.NewFileWriter(config.OutputDir)
	if err != nil {
		middleware.LogError(componentName, "Failed to prepare output directory: %v", err)
		return 1
	}

	var notifier Notifier
	if config.NotificationsEnabled() {
		qn, err := NewQueueNotifier(config.PublishQueue, config.ToMiddlewareConfig())
		if err != nil {
			middleware.LogError(componentName, "Notifications disabled: %v", err)
		} else {
			notifier = qn
			defer qn.Close()
		}
	}

	job, err := NewCombinerJob(aggregator.NewHTTPFetcher(config.FetchTimeout), config, writer, notifier)
	if err != nil {
		middleware.LogError(componentName, "Failed to create combiner job: %v", err)
		return 1
	}

	summary, err := job.Run(context.Background())
	if err != nil {
		middleware.LogError(componentName, "Run aborted: %v", err)
		return 1
	}

	middleware.LogInfo(componentName, "Done: %d unique app(s) in %d file(s), %d source(s) failed",
		summary.TotalApps, len(summary.Files), summary.FailedSources)
	return 0
}
