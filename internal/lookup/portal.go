package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"nycunits/internal/config"
	"nycunits/internal/logger"
	"nycunits/internal/models"
)

// Ensure PortalClient implements Client.
var _ Client = (*PortalClient)(nil)

// PortalClient resolves parcel keys one at a time against the property
// portal overview endpoint. No retries: the first answer is the answer.
type PortalClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// NewPortalClient creates a new single-record portal client.
func NewPortalClient(baseURL string, retry *config.RetryPolicy, log *logger.Logger) *PortalClient {
	return &PortalClient{
		httpClient: &http.Client{
			Timeout: retry.GetTimeout(),
		},
		baseURL: baseURL,
		logger:  log,
	}
}

// Kind reports the single-record mode.
func (c *PortalClient) Kind() Mode {
	return ModeSingle
}

// portalOverview mirrors the parcel overview response. Unit counts arrive as
// JSON numbers and may be null.
type portalOverview struct {
	Parcel struct {
		NumberOfTotalUnits       *json.Number `json:"numberOfTotalUnits"`
		NumberOfResidentialUnits *json.Number `json:"numberOfResidentialUnits"`
	} `json:"parcel"`
}

// overviewURL builds the per-parcel endpoint URL.
func overviewURL(baseURL, key string) string {
	return fmt.Sprintf("%s/parcels/api/parcels/%s/overview", baseURL, key)
}

// decodeOverview maps a 200 response body onto a Found result.
func decodeOverview(body io.Reader) models.LookupResult {
	var overview portalOverview
	if err := json.NewDecoder(body).Decode(&overview); err != nil {
		return models.LookupResult{Kind: models.ResultPermanent}
	}

	result := models.LookupResult{Kind: models.ResultFound}
	if overview.Parcel.NumberOfTotalUnits != nil {
		result.TotalUnits = overview.Parcel.NumberOfTotalUnits.String()
	}

	if overview.Parcel.NumberOfResidentialUnits != nil {
		result.ResidentialUnits = overview.Parcel.NumberOfResidentialUnits.String()
	}

	return result
}

// LookupOne fetches one parcel overview. 404 means the key is not a known
// BBL; any other failure is permanent for this strategy.
func (c *PortalClient) LookupOne(ctx context.Context, key string) models.LookupResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, overviewURL(c.baseURL, key), http.NoBody)
	if err != nil {
		return models.LookupResult{Kind: models.ResultPermanent}
	}

	setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("portal request failed", "key", key, "error", err)
		}

		return models.LookupResult{Kind: models.ResultPermanent}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeOverview(resp.Body)
	case http.StatusNotFound:
		return models.LookupResult{Kind: models.ResultInvalidKey}
	default:
		return models.LookupResult{Kind: models.ResultPermanent, StatusCode: resp.StatusCode}
	}
}

// LookupBatch resolves keys sequentially; the map carries one entry per key.
func (c *PortalClient) LookupBatch(ctx context.Context, keys []string) (map[string]models.LookupResult, error) {
	results := make(map[string]models.LookupResult, len(keys))
	for _, key := range keys {
		results[key] = c.LookupOne(ctx, key)
	}

	return results, nil
}

// Warmup is a no-op; the plain portal client carries no session.
func (c *PortalClient) Warmup(context.Context) {}
