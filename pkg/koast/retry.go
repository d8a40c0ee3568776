package koast

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryTransport is an opt-in http.RoundTripper that retries requests that
// failed at the network level, with exponential backoff. The SDK core never
// retries on its own; callers who want retries layer this into the client:
//
//	client := koast.NewClient(koast.Config{
//		HTTPClient: &http.Client{Transport: &koast.RetryTransport{MaxTries: 3}},
//	})
//
// Only transport failures are retried. Any response from the server,
// including error statuses, is returned as-is so its payload stays intact.
// Requests whose body cannot be replayed are attempted exactly once.
type RetryTransport struct {
	// Base is the underlying round tripper; http.DefaultTransport if nil.
	Base http.RoundTripper

	// MaxTries caps the total number of attempts, initial attempt included.
	// Zero means 3.
	MaxTries uint

	// InitialInterval is the delay before the first retry. Zero means the
	// backoff package default.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay between attempts. Zero means the
	// backoff package default.
	MaxInterval time.Duration
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if req.Body != nil && req.GetBody == nil {
		return base.RoundTrip(req)
	}

	maxTries := t.MaxTries
	if maxTries == 0 {
		maxTries = 3
	}

	operation := func() (*http.Response, error) {
		attempt := req
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			attempt = req.Clone(req.Context())
			attempt.Body = body
		}
		return base.RoundTrip(attempt)
	}

	expBackoff := backoff.NewExponentialBackOff()
	if t.InitialInterval > 0 {
		expBackoff.InitialInterval = t.InitialInterval
	}
	if t.MaxInterval > 0 {
		expBackoff.MaxInterval = t.MaxInterval
	}

	return backoff.Retry(req.Context(), operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(maxTries),
	)
}
