package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nycunits/internal/config"
	"nycunits/internal/logger"
	"nycunits/internal/models"
)

// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// plutoRowLimit caps one SoQL query; the chunk size keeps real queries far
// below it, the cap only guards against a pathological remote response.
const plutoRowLimit = 50000

// Ensure PlutoClient implements Client.
var _ Client = (*PlutoClient)(nil)

// PlutoClient resolves parcel keys in batches against the NYC Open Data
// PLUTO dataset using SoQL queries.
type PlutoClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// NewPlutoClient creates a new batched PLUTO client.
func NewPlutoClient(baseURL string, retry *config.RetryPolicy, log *logger.Logger) *PlutoClient {
	return &PlutoClient{
		httpClient: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// Kind reports the batch mode.
func (c *PlutoClient) Kind() Mode {
	return ModeBatch
}

// plutoRecord mirrors one object of the PLUTO JSON response. Socrata reports
// number-typed fields as strings.
type plutoRecord struct {
	BBL        string `json:"bbl"`
	UnitsRes   string `json:"unitsres"`
	UnitsTotal string `json:"unitstotal"`
}

// LookupBatch issues one SoQL query for the given chunk of distinct keys.
// Keys missing from the returned map were absent from the dataset.
func (c *PlutoClient) LookupBatch(ctx context.Context, keys []string) (map[string]models.LookupResult, error) {
	quoted := make([]string, len(keys))
	for i, key := range keys {
		quoted[i] = "'" + key + "'"
	}

	params := url.Values{}
	params.Set("$select", "bbl, unitsres, unitstotal")
	params.Set("$where", fmt.Sprintf("bbl in(%s)", strings.Join(quoted, ",")))
	params.Set("$limit", strconv.Itoa(plutoRowLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	var records []plutoRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("pluto chunk resolved", "requested", len(keys), "returned", len(records))
	}

	results := make(map[string]models.LookupResult, len(records))
	for _, rec := range records {
		results[rec.BBL] = models.LookupResult{
			Kind:             models.ResultFound,
			TotalUnits:       rec.UnitsTotal,
			ResidentialUnits: rec.UnitsRes,
		}
	}

	return results, nil
}

// LookupOne resolves a single key through a batch of one.
func (c *PlutoClient) LookupOne(ctx context.Context, key string) models.LookupResult {
	results, err := c.LookupBatch(ctx, []string{key})
	if err != nil {
		return models.LookupResult{Kind: models.ResultTransient}
	}

	if res, ok := results[key]; ok {
		return res
	}

	return models.LookupResult{Kind: models.ResultNotFound}
}

// Warmup is a no-op; the open-data API needs no session state.
func (c *PlutoClient) Warmup(context.Context) {}
