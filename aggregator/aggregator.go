package aggregator

import (
	"context"
	"errors"
	"fmt"

	"github.com/altsource-combiner/protocol/catalog"
	"github.com/altsource-combiner/shared/middleware"
)

const componentName = "Aggregator"

// SourceReport records what one source contributed to a run
type SourceReport struct {
	URL   string
	Added int
	Err   error
}

// Result is the outcome of one aggregation run
type Result struct {
	Entries []catalog.Entry
	Reports []SourceReport
}

// Failed returns how many sources contributed nothing because of an error
func (r *Result) Failed() int {
	n := 0
	for _, rep := range r.Reports {
		if rep.Err != nil {
			n++
		}
	}
	return n
}

// Aggregator merges source catalogs into one list unique by bundle identifier
type Aggregator struct {
	fetcher Fetcher
}

// NewAggregator creates an Aggregator reading sources through fetcher
func NewAggregator(fetcher Fetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// Aggregate fetches every source in order and keeps the first entry seen for
// each bundle identifier. Failing sources are logged and skipped.
func (a *Aggregator) Aggregate(ctx context.Context, sources []string) *Result {
	result := &Result{
		Entries: []catalog.Entry{},
		Reports: make([]SourceReport, 0, len(sources)),
	}
	seen := make(map[string]struct{})

	middleware.LogInfo(componentName, "Starting repo aggregation over %d source(s)", len(sources))

	for _, url := range sources {
		middleware.LogInfo(componentName, "Fetching: %s", url)

		added, err := a.collect(ctx, url, seen, result)
		result.Reports = append(result.Reports, SourceReport{URL: url, Added: added, Err: err})

		if err != nil {
			logFailure(url, err)
			continue
		}
		middleware.LogInfo(componentName, "Found and added %d new app(s) from %s", added, url)
	}

	middleware.LogInfo(componentName, "Aggregation complete. Total unique apps: %d (%d/%d source(s) failed)",
		len(result.Entries), result.Failed(), len(sources))

	return result
}

// collect appends the unseen entries of one source to result. A panic while
// handling the source is turned into an error so the run goes on.
func (a *Aggregator) collect(ctx context.Context, url string, seen map[string]struct{}, result *Result) (added int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing %s: %v", url, r)
		}
	}()

	doc, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	if doc == nil {
		return 0, fmt.Errorf("%w: %s: empty document", ErrMalformedBody, url)
	}

	for _, entry := range doc.Apps {
		key, ok := catalog.BundleKey(entry)
		if !ok {
			middleware.LogDebug(componentName, "skipping entry without %s in %s", catalog.BundleIdentifierField, url)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result.Entries = append(result.Entries, entry)
		added++
	}

	return added, nil
}

// Combined wraps the aggregated entries in the combined catalog document
func Combined(result *Result, sourceURL string) *catalog.Catalog {
	return catalog.New(catalog.CombinedName, catalog.CombinedIdentifier, sourceURL, result.Entries)
}

func logFailure(url string, err error) {
	if errors.Is(err, ErrMissingApps) {
		middleware.LogWarn(componentName, "'%s' key not found or not a list in %s", catalog.AppsField, url)
		return
	}
	middleware.LogError(componentName, "%s error fetching %s: %v", category(err), url, err)
}
