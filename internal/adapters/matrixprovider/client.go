package matrixprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultRequestRate = 4 // requests per second
)

// ClientOptions tunes the outbound HTTP behavior shared by every online
// provider: timeout, rate limit and retry policy.
type ClientOptions struct {
	Timeout        time.Duration
	RequestsPerSec float64
	MaxRetries     int
	BackoffBase    time.Duration
	Clock          shared.Clock
}

// httpClient makes JSON requests with rate limiting and exponential backoff
// retries. Retryable failures are network errors, 429 (honoring Retry-After)
// and 5xx; other non-2xx responses surface immediately as upstreamError so
// providers can preserve the remote service's own words.
type httpClient struct {
	client      *http.Client
	rateLimiter *rate.Limiter
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
}

func newHTTPClient(opts ClientOptions) *httpClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := opts.RequestsPerSec
	if rps <= 0 {
		rps = defaultRequestRate
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	backoffBase := opts.BackoffBase
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}
	clock := opts.Clock
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &httpClient{
		client:      &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		clock:       clock,
	}
}

// upstreamError is a non-retryable upstream response. Providers translate it
// into MatrixRequestError with their own provider name attached.
type upstreamError struct {
	status int
	body   string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.status, e.body)
}

// StatusText renders the HTTP status line the upstream answered with.
func (e *upstreamError) StatusText() string {
	return fmt.Sprintf("%d %s", e.status, http.StatusText(e.status))
}

func (c *httpClient) getJSON(ctx context.Context, rawURL string, headers map[string]string, result interface{}) error {
	return c.request(ctx, http.MethodGet, rawURL, headers, "", nil, result)
}

func (c *httpClient) postJSON(ctx context.Context, rawURL string, headers map[string]string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.request(ctx, http.MethodPost, rawURL, headers, "application/json", payload, result)
}

func (c *httpClient) postForm(ctx context.Context, rawURL string, form url.Values, result interface{}) error {
	payload := []byte(form.Encode())
	return c.request(ctx, http.MethodPost, rawURL, nil, "application/x-www-form-urlencoded", payload, result)
}

// request runs one call with rate limiting and exponential backoff + jitter.
// Sleeps go through the injected clock so tests with MockClock never wait.
func (c *httpClient) request(ctx context.Context, method, rawURL string, headers map[string]string, contentType string, body []byte, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("network error: %w", err)
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		// 429 and 5xx are retryable; Retry-After wins over the computed backoff.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = &upstreamError{status: resp.StatusCode, body: truncateBody(respBody)}
			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			delay := addJitter(c.backoffBase * time.Duration(1<<attempt))
			if retryAfter := retryAfterDuration(resp.Header.Get("Retry-After")); retryAfter > 0 {
				delay = retryAfter
			}
			c.clock.Sleep(delay)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &upstreamError{status: resp.StatusCode, body: truncateBody(respBody)}
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return fmt.Errorf("max retries exceeded")
}

// addJitter spreads retries between 50% and 150% of the base delay.
func addJitter(d time.Duration) time.Duration {
	jitter := 0.5 + rand.Float64()
	return time.Duration(float64(d) * jitter)
}

func retryAfterDuration(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

func truncateBody(body []byte) string {
	const maxLen = 512
	text := strings.TrimSpace(string(body))
	if len(text) > maxLen {
		return text[:maxLen]
	}
	return text
}
