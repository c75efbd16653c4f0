package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// RetryableError marks a transient failure. After is the wait the server
// asked for with Retry-After, or zero.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Backoff is an exponential retry schedule.
type Backoff struct {
	// Attempts is the total number of tries; values below one mean one.
	Attempts int
	// Delay is the wait after the first failure. It doubles per failure.
	Delay time.Duration
	// MaxDelay caps a single wait, including a server's Retry-After.
	// Zero means no cap.
	MaxDelay time.Duration
}

// Do runs fn until it succeeds, fails with an error not marked by
// [RetryableError], runs out of attempts or ctx is done. The error of the
// last attempt is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	var err error
	for n := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || n == attempts-1 {
			return err
		}

		timer := time.NewTimer(b.wait(n, re.After))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

// wait is the pause after failed try n (counting from zero).
func (b Backoff) wait(n int, after time.Duration) time.Duration {
	d := b.Delay
	for range n {
		if b.MaxDelay > 0 && d >= b.MaxDelay {
			break
		}
		d *= 2
	}
	d = max(d, after)
	if b.MaxDelay > 0 {
		d = min(d, b.MaxDelay)
	}
	return d
}

// Retry runs fn at most attempts times, waiting delay after the first
// failure and doubling it after each further one.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// retryAfter parses a Retry-After header given in seconds. HTTP dates are
// not supported and yield zero.
func retryAfter(h http.Header) time.Duration {
	s, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || s < 0 {
		return 0
	}
	return time.Duration(s) * time.Second
}
