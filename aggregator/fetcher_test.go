package aggregator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestHTTPFetcherFetch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   error
		wantCount int
	}{
		{
			name:      "valid document",
			status:    http.StatusOK,
			body:      `{"name":"Src","apps":[{"bundleIdentifier":"a"},{"bundleIdentifier":"b"}]}`,
			wantCount: 2,
		},
		{
			name:      "empty apps list",
			status:    http.StatusOK,
			body:      `{"apps":[]}`,
			wantCount: 0,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"apps":[{"bundleIdentifier":"a"}]}`,
			wantErr: ErrHTTPStatus,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    "",
			wantErr: ErrHTTPStatus,
		},
		{
			name:    "html body",
			status:  http.StatusOK,
			body:    "<html>nope</html>",
			wantErr: ErrMalformedBody,
		},
		{
			name:    "top level array",
			status:  http.StatusOK,
			body:    `[{"bundleIdentifier":"a"}]`,
			wantErr: ErrMalformedBody,
		},
		{
			name:    "missing apps",
			status:  http.StatusOK,
			body:    `{"name":"Src"}`,
			wantErr: ErrMissingApps,
		},
		{
			name:    "apps is an object",
			status:  http.StatusOK,
			body:    `{"apps":{"bundleIdentifier":"a"}}`,
			wantErr: ErrMissingApps,
		},
		{
			name:    "apps is null",
			status:  http.StatusOK,
			body:    `{"apps":null}`,
			wantErr: ErrMissingApps,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serve(tt.status, tt.body)
			defer server.Close()

			doc, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), server.URL)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				assert.Nil(t, doc)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, server.URL, doc.URL)
			assert.Len(t, doc.Apps, tt.wantCount)
		})
	}
}

func TestHTTPFetcherStatusErrorCarriesCode(t *testing.T) {
	server := serve(http.StatusBadGateway, "")
	defer server.Close()

	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), server.URL)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "status", category(err))
}

func TestHTTPFetcherTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPFetcher(50*time.Millisecond).Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport), "expected transport error, got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHTTPFetcherUnreachable(t *testing.T) {
	server := serve(http.StatusOK, `{"apps":[]}`)
	url := server.URL
	server.Close()

	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), url)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Equal(t, "transport", category(err))
}

func TestHTTPFetcherSendsGetWithoutBody(t *testing.T) {
	var method string
	var contentLength int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentLength = r.ContentLength
		w.Write([]byte(`{"apps":[]}`))
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, method)
	assert.Equal(t, int64(0), contentLength)
}

func TestParseSourceKeepsRawEntries(t *testing.T) {
	doc, err := ParseSource("mem://src", []byte(`{"apps":[{"bundleIdentifier":"x.a","name":"A1"}, 7, "str"]}`))

	require.NoError(t, err)
	require.Len(t, doc.Apps, 3)
	assert.Equal(t, `{"bundleIdentifier":"x.a","name":"A1"}`, string(doc.Apps[0]))
	assert.Equal(t, `7`, string(doc.Apps[1]))
}
