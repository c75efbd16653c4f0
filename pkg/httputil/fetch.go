package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/overlaysmith/pkg/observability"
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Fetcher downloads remote resources.
type Fetcher struct {
	// Client is the HTTP client used for requests. Defaults to http.DefaultClient.
	Client *http.Client

	// Attempts is the maximum number of tries. Defaults to 3.
	Attempts int

	// Delay is the initial backoff delay. Defaults to 1 second.
	Delay time.Duration

	// MaxDelay caps each backoff wait. Defaults to 30 seconds.
	MaxDelay time.Duration

	// MaxSize limits the response body size in bytes. Zero means no limit.
	MaxSize int64
}

// Fetch performs a GET request for url and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	b := Backoff{Attempts: f.Attempts, Delay: f.Delay, MaxDelay: f.MaxDelay}
	if b.Attempts <= 0 {
		b.Attempts = 3
	}
	if b.Delay <= 0 {
		b.Delay = time.Second
	}
	if b.MaxDelay <= 0 {
		b.MaxDelay = 30 * time.Second
	}

	var body []byte
	err := b.Do(ctx, func() error {
		data, err := f.get(ctx, client, url)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	return body, err
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	host, path := req.URL.Host, req.URL.Path

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		serr := &StatusError{URL: url, StatusCode: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &RetryableError{Err: serr, After: retryAfter(resp.Header)}
		}
		return nil, serr
	}

	var r io.Reader = resp.Body
	if f.MaxSize > 0 {
		r = io.LimitReader(resp.Body, f.MaxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if f.MaxSize > 0 && int64(len(data)) > f.MaxSize {
		return nil, fmt.Errorf("GET %s: response exceeds %d bytes", url, f.MaxSize)
	}
	return data, nil
}
