// Package httputil provides HTTP utilities for fetching remote package
// databases.
//
// # Backoff
//
// A [Backoff] retries an operation that fails with a [RetryableError],
// doubling the wait after each failure up to MaxDelay:
//
//	b := httputil.Backoff{Attempts: 5, Delay: time.Second, MaxDelay: time.Minute}
//	err := b.Do(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// [Retry] is the shorthand without a cap.
//
// # Fetching
//
// [Fetcher] downloads a URL into memory. Network errors, 5xx and 429
// responses are retried and a Retry-After header in seconds lengthens the
// wait; any other non-2xx status fails immediately.
package httputil
