// Package lookup resolves enrichment queries against unreliable external
// providers with timeout, retry, and fallback semantics.
package lookup

import (
	"context"
	"net/http"
	"time"
)

// outcome is the classification of a single provider response. Retry and
// fallback decisions are driven entirely by this value, never by ad-hoc
// status checks at call sites.
type outcome int

const (
	outcomeSuccess outcome = iota
	// outcomeNotFound: definitive empty result, never retried.
	outcomeNotFound
	// outcomeThrottled: 429, retried after the longer backoff.
	outcomeThrottled
	// outcomeUpstreamError: 5xx, retried after the shorter backoff.
	outcomeUpstreamError
	// outcomePermanent: any other 4xx; retrying cannot change the answer.
	outcomePermanent
)

func classify(status int) outcome {
	switch {
	case status >= 200 && status < 300:
		return outcomeSuccess
	case status == http.StatusNotFound:
		return outcomeNotFound
	case status == http.StatusTooManyRequests:
		return outcomeThrottled
	case status >= 500:
		return outcomeUpstreamError
	default:
		return outcomePermanent
	}
}

// sleep waits for the backoff duration unless the context is cancelled first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
