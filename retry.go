package strata

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// retryEmbedder wraps an Embedder and automatically retries transient
// embedding errors with exponential backoff. Permanent errors pass through
// immediately.
type retryEmbedder struct {
	inner       Embedder
	maxAttempts int
	baseDelay   time.Duration
	timeout     time.Duration // overall timeout across all attempts; 0 = no limit
	logger      *slog.Logger
}

// RetryOption configures a retryEmbedder.
type RetryOption func(*retryEmbedder)

// RetryMaxAttempts sets the maximum number of attempts (default: 3).
func RetryMaxAttempts(n int) RetryOption {
	return func(r *retryEmbedder) { r.maxAttempts = n }
}

// RetryBaseDelay sets the initial backoff delay before the second attempt
// (default: 1s). Each subsequent delay doubles.
func RetryBaseDelay(d time.Duration) RetryOption {
	return func(r *retryEmbedder) { r.baseDelay = d }
}

// RetryTimeout sets the overall timeout for the entire retry sequence.
// The zero value (default) disables the timeout.
func RetryTimeout(d time.Duration) RetryOption {
	return func(r *retryEmbedder) { r.timeout = d }
}

// RetryLogger sets the structured logger for retry events. Retries log at
// WARN and final failures at ERROR. If not set, no output is produced.
func RetryLogger(l *slog.Logger) RetryOption {
	return func(r *retryEmbedder) { r.logger = l }
}

// WithEmbeddingRetry wraps e with automatic retry on transient embedding
// errors. Retries use exponential backoff with jitter; when the error carries
// a Retry-After duration, the delay is at least that long. Compose with any
// Embedder:
//
//	emb := strata.WithEmbeddingRetry(openaicompat.New(baseURL, key, model))
//	emb := strata.WithEmbeddingRetry(emb, strata.RetryMaxAttempts(5))
func WithEmbeddingRetry(e Embedder, opts ...RetryOption) Embedder {
	r := &retryEmbedder{
		inner:       e,
		maxAttempts: 3,
		baseDelay:   time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = nopLogger
	}
	return r
}

func (r *retryEmbedder) Name() string    { return r.inner.Name() }
func (r *retryEmbedder) Dimensions() int { return r.inner.Dimensions() }

func (r *retryEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if r.timeout > 0 {
		deadline := time.Now().Add(r.timeout)
		if existing, ok := ctx.Deadline(); !ok || deadline.Before(existing) {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, deadline)
			defer cancel()
		}
	}
	var last error
	for i := 0; i < r.maxAttempts; i++ {
		result, err := r.inner.Embed(ctx, texts)
		if err == nil || !IsTransient(err) {
			return result, err
		}
		last = err
		r.logger.Warn("retrying transient embedding error",
			"embedder", r.inner.Name(),
			"status", statusOf(err),
			"attempt", i+1,
			"max_attempts", r.maxAttempts)
		if i < r.maxAttempts-1 {
			delay := retryDelay(r.baseDelay, i, err)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
	r.logger.Error("all retry attempts exhausted",
		"embedder", r.inner.Name(),
		"attempts", r.maxAttempts,
		"error", last)
	return nil, last
}

// IsTransient reports whether err is a retryable embedding error.
func IsTransient(err error) bool {
	var e *EmbeddingError
	return errors.As(err, &e) && e.Transient
}

// statusOf extracts the HTTP status code from an EmbeddingError, or 0.
func statusOf(err error) int {
	var e *EmbeddingError
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// retryAfterOf extracts the Retry-After duration from an EmbeddingError, or 0.
func retryAfterOf(err error) time.Duration {
	var e *EmbeddingError
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// retryDelay computes the delay before retry attempt i, using exponential
// backoff as a floor and the server's Retry-After value (if present) as a
// minimum. The effective delay is max(backoff, retryAfter).
func retryDelay(base time.Duration, i int, err error) time.Duration {
	backoff := retryBackoff(base, i)
	if ra := retryAfterOf(err); ra > backoff {
		return ra
	}
	return backoff
}

// retryBackoff returns the delay for retry i (0-indexed).
// Exponential: base * 2^i, plus up to 50% random jitter.
func retryBackoff(base time.Duration, i int) time.Duration {
	exp := base * (1 << i)
	jitter := time.Duration(rand.Int63n(int64(exp)/2 + 1))
	return exp + jitter
}

// compile-time check
var _ Embedder = (*retryEmbedder)(nil)
