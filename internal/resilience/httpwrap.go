package resilience

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// HTTPClient guards calls to the payment processor with a circuit breaker and
// a per-call timeout. It makes exactly one attempt per call: both operations
// behind it create objects upstream, and a blind retry of intent creation
// could mint a second intent with a second client secret. Retry-after-failure
// belongs to the caller, via the Idempotency-Key extension point.
type HTTPClient struct {
	Client  *http.Client
	Breaker *Breaker
	Timeout time.Duration
}

// Do executes the request once. When the breaker is open, ErrOpenCircuit is
// returned without touching the network. A 5xx answer counts against the
// breaker and surfaces as an error; everything below 500 is handed back for
// the caller to decode, including processor-side 4xx error envelopes.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	breaker := cl.Breaker
	if breaker == nil {
		breaker = NewBreaker(1, 1, time.Second)
	}
	if !breaker.Allow(ctx) {
		return nil, ErrOpenCircuit
	}

	timeout := cl.Timeout
	if timeout <= 0 {
		timeout = cl.Client.Timeout
	}
	var callCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}

	resp, err := cl.Client.Do(req.WithContext(callCtx))
	if err != nil {
		cancel()
		breaker.Report(ctx, false)
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		status := resp.Status
		_ = resp.Body.Close()
		cancel()
		breaker.Report(ctx, false)
		return nil, errors.New(status)
	}
	breaker.Report(ctx, true)
	// The call context must outlive this function until the caller has
	// drained the body, so cancellation rides on Close.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
