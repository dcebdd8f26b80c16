// Package lookup resolves canonical parcel keys to unit-count data using one
// of three interchangeable remote strategies.
package lookup

import (
	"context"
	"fmt"
	"net/http"

	"nycunits/internal/config"
	"nycunits/internal/logger"
	"nycunits/internal/models"
)

// Mode describes how a client prefers to be driven.
type Mode int

// Client modes.
const (
	// ModeBatch clients resolve many deduplicated keys per remote call.
	ModeBatch Mode = iota
	// ModeSingle clients resolve one key per remote call, row by row.
	ModeSingle
)

// Client defines the interface for parcel unit-count lookup.
// Implementations are safe for sequential reuse within one run; they are not
// designed for concurrent callers.
type Client interface {
	// Kind reports whether the client should be driven in batch or
	// single-record mode.
	Kind() Mode

	// LookupBatch resolves a chunk of distinct keys in one remote call.
	// Keys absent from the returned map were not present in the remote
	// response; the caller decides what that means. A non-nil error covers
	// the whole chunk.
	LookupBatch(ctx context.Context, keys []string) (map[string]models.LookupResult, error)

	// LookupOne resolves a single key. Failures are folded into the
	// returned result, never into an error.
	LookupOne(ctx context.Context, key string) models.LookupResult

	// Warmup performs one best-effort request to establish session state
	// before the first lookup. Failures are ignored.
	Warmup(ctx context.Context)
}

// New builds the client selected by the configuration.
func New(cfg *config.Config, log *logger.Logger) (Client, error) {
	switch cfg.Lookup.Strategy {
	case config.StrategyPluto:
		return NewPlutoClient(cfg.Lookup.PlutoURL, &cfg.Retry, log), nil
	case config.StrategyPortal:
		return NewPortalClient(cfg.Lookup.PortalURL, &cfg.Retry, log), nil
	case config.StrategyResilient:
		return NewResilientClient(cfg.Lookup.PortalURL, &cfg.Retry, &cfg.Pacing, log)
	default:
		return nil, fmt.Errorf("%w: got %q", config.ErrInvalidStrategy, cfg.Lookup.Strategy)
	}
}

// setBrowserHeaders makes requests look like an ordinary browser session.
// The portal endpoints reject requests with default Go client headers.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
