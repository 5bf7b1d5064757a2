package main

import (
	"context"
	"fmt"
	"regexp"

	"github.com/altsource-combiner/aggregator"
	"github.com/altsource-combiner/partitioner"
	"github.com/altsource-combiner/protocol/catalog"
	"github.com/altsource-combiner/protocol/signals"
	"github.com/altsource-combiner/shared/middleware"
	"github.com/altsource-combiner/shared/storage"
)

const componentName = "Combiner"

// staleChunkPattern matches only files this job writes, chunk_<n>.json
var staleChunkPattern = regexp.MustCompile(`^chunk_[0-9]+\.json$`)

// CombinerJob runs one aggregation and partitioning pass
type CombinerJob struct {
	aggregator  *aggregator.Aggregator
	partitioner *partitioner.Partitioner
	writer      *storage.FileWriter
	notifier    Notifier // nil disables notifications
	sources     []string
	sourceURL   string
}

// RunSummary describes what a run wrote
type RunSummary struct {
	TotalApps     int
	FailedSources int
	Files         []string
}

// NewCombinerJob wires a job from its collaborators
func NewCombinerJob(fetcher aggregator.Fetcher, config *Config, writer *storage.FileWriter, notifier Notifier) (*CombinerJob, error) {
	p, err := partitioner.NewPartitioner(config.NumChunks)
	if err != nil {
		return nil, err
	}
	return &CombinerJob{
		aggregator:  aggregator.NewAggregator(fetcher),
		partitioner: p,
		writer:      writer,
		notifier:    notifier,
		sources:     config.Sources,
		sourceURL:   config.SourceURL(),
	}, nil
}

// Run aggregates all sources, writes combined.json and the chunk files.
// Only write failures are returned; source failures are logged and skipped.
func (j *CombinerJob) Run(ctx context.Context) (*RunSummary, error) {
	result := j.aggregator.Aggregate(ctx, j.sources)
	combined := aggregator.Combined(result, j.sourceURL)

	if err := j.writeCatalog(catalog.CombinedFileName, combined); err != nil {
		return nil, err
	}
	middleware.LogInfo(componentName, "The combined file '%s' has been created with %d app(s)",
		catalog.CombinedFileName, len(combined.Apps))

	summary := &RunSummary{
		TotalApps:     len(combined.Apps),
		FailedSources: result.Failed(),
		Files:         []string{catalog.CombinedFileName},
	}

	removed, err := j.writer.RemoveMatching(staleChunkPattern)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		middleware.LogDebug(componentName, "removed %d stale chunk file(s): %v", len(removed), removed)
	}

	shards := j.partitioner.Shards(combined)
	if len(shards) == 0 {
		middleware.LogWarn(componentName, "No apps found in the combined catalog, nothing to split")
	} else {
		middleware.LogInfo(componentName, "Splitting %d app(s) into %d chunk(s) of up to %d",
			len(combined.Apps), len(shards), j.partitioner.ChunkSize(len(combined.Apps)))
	}

	for _, shard := range shards {
		if err := j.writeCatalog(shard.FileName, shard.Catalog); err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, shard.FileName)
		middleware.LogInfo(componentName, "Created %s with %d app(s)", shard.FileName, len(shard.Catalog.Apps))
	}

	j.notify(combined, shards)

	return summary, nil
}

func (j *CombinerJob) writeCatalog(name string, c *catalog.Catalog) error {
	data, err := catalog.Marshal(c)
	if err != nil {
		return err
	}
	if err := j.writer.WriteFile(name, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// notify announces every written file. Failures are logged only, the files are already on disk.
func (j *CombinerJob) notify(combined *catalog.Catalog, shards []partitioner.Shard) {
	if j.notifier == nil {
		return
	}

	total := len(shards) + 1
	messages := make([]*signals.CatalogPublished, 0, total)
	messages = append(messages, signals.NewCatalogPublished(0, total, len(combined.Apps), catalog.CombinedFileName, combined.Identifier))
	for _, shard := range shards {
		messages = append(messages, signals.NewCatalogPublished(shard.Number, total, len(shard.Catalog.Apps), shard.FileName, shard.Catalog.Identifier))
	}

	for _, msg := range messages {
		if err := j.notifier.Notify(msg); err != nil {
			middleware.LogError(componentName, "notification failed: %v", err)
			return
		}
	}
	middleware.LogInfo(componentName, "Published %d file notification(s)", len(messages))
}
