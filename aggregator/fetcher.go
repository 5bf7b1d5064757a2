package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/altsource-combiner/protocol/catalog"
)

const (
	// DefaultTimeout bounds a single source request
	DefaultTimeout = 15 * time.Second
	// MaxBodySize caps how much of a response is read
	MaxBodySize = 64 << 20

	userAgent = "altsource-combiner/1.0"
)

// Fetcher retrieves one source document
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*catalog.SourceDocument, error)
}

// HTTPFetcher fetches sources with a plain GET bounded by Timeout
type HTTPFetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPFetcher creates a fetcher with its own client and the given per-request timeout
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

// Fetch implements Fetcher
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*catalog.SourceDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", ErrTransport, url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %s: %v", ErrTransport, url, err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("%w: body of %s exceeds %d bytes", ErrMalformedBody, url, MaxBodySize)
	}

	return ParseSource(url, body)
}

// ParseSource decodes a source document and extracts its apps list.
// A missing, null, or non-array apps field is reported as ErrMissingApps.
func ParseSource(url string, body []byte) (*catalog.SourceDocument, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedBody, url, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: %s: document is null", ErrMalformedBody, url)
	}

	raw, ok := fields[catalog.AppsField]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingApps, url)
	}
	var apps []catalog.Entry
	if err := json.Unmarshal(raw, &apps); err != nil || apps == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingApps, url)
	}

	return &catalog.SourceDocument{URL: url, Apps: apps}, nil
}
