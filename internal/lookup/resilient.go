package lookup

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"time"

	"nycunits/internal/config"
	"nycunits/internal/logger"
	"nycunits/internal/models"
)

// Ensure ResilientClient implements Client.
var _ Client = (*ResilientClient)(nil)

// ResilientClient resolves parcel keys one at a time like PortalClient, but
// keeps a cookie session alive across calls, retries blocked and faulted
// requests up to a bounded attempt count, and paces consecutive requests
// with a randomized delay. The client is owned by one reconciliation run;
// it is not safe for concurrent callers.
type ResilientClient struct {
	httpClient *http.Client
	baseURL    string
	retry      *config.RetryPolicy
	pacing     *config.PacingConfig
	logger     *logger.Logger
	paced      bool
}

// NewResilientClient creates a resilient portal client with a fresh cookie
// jar scoped to this run.
func NewResilientClient(baseURL string, retry *config.RetryPolicy, pacing *config.PacingConfig, log *logger.Logger) (*ResilientClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &ResilientClient{
		httpClient: &http.Client{
			Timeout: retry.GetTimeout(),
			Jar:     jar,
		},
		baseURL: baseURL,
		retry:   retry,
		pacing:  pacing,
		logger:  log,
	}, nil
}

// Kind reports the single-record mode.
func (c *ResilientClient) Kind() Mode {
	return ModeSingle
}

// Warmup hits the portal landing page once so the session picks up its
// cookies before the first real lookup. Failure never aborts the run.
func (c *ResilientClient) Warmup(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, http.NoBody)
	if err != nil {
		return
	}

	setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("warmup request failed", "error", err)
		}

		return
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// pace sleeps a random duration between the configured pacing bounds. The
// first lookup of a run is never delayed.
func (c *ResilientClient) pace() {
	if !c.paced {
		c.paced = true

		return
	}

	lo, hi := c.pacing.MinDelay(), c.pacing.MaxDelay()
	if hi <= 0 {
		return
	}

	delay := lo
	if span := hi - lo; span > 0 {
		delay += rand.N(span)
	}

	time.Sleep(delay)
}

// LookupOne fetches one parcel overview with up to MaxAttempts tries.
// A 403 response waits out the blocked delay and retries; a transport fault
// waits the shorter fault delay and retries. 404 and other statuses resolve
// immediately the same way the plain portal client resolves them. Running
// out of attempts collapses to a transient error.
func (c *ResilientClient) LookupOne(ctx context.Context, key string) models.LookupResult {
	c.pace()

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, overviewURL(c.baseURL, key), http.NoBody)
		if err != nil {
			return models.LookupResult{Kind: models.ResultTransient}
		}

		setBrowserHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("portal request failed", "key", key, "attempt", attempt, "error", err)
			}

			if attempt < c.retry.MaxAttempts {
				time.Sleep(c.retry.FaultDelay())
			}

			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			result := decodeOverview(resp.Body)
			resp.Body.Close()

			return result
		case http.StatusNotFound:
			resp.Body.Close()

			return models.LookupResult{Kind: models.ResultInvalidKey}
		case http.StatusForbidden:
			// Blocked. Wait it out and try again on the same session.
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if c.logger != nil {
				c.logger.Warn("portal blocked request", "key", key, "attempt", attempt)
			}

			if attempt < c.retry.MaxAttempts {
				time.Sleep(c.retry.BlockedDelay())
			}
		default:
			code := resp.StatusCode
			resp.Body.Close()

			return models.LookupResult{Kind: models.ResultPermanent, StatusCode: code}
		}
	}

	return models.LookupResult{Kind: models.ResultTransient}
}

// LookupBatch resolves keys sequentially; the map carries one entry per key.
func (c *ResilientClient) LookupBatch(ctx context.Context, keys []string) (map[string]models.LookupResult, error) {
	results := make(map[string]models.LookupResult, len(keys))
	for _, key := range keys {
		results[key] = c.LookupOne(ctx, key)
	}

	return results, nil
}
