// internal/listings/client.go
package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobtrail/internal/common/config"
	commonhttp "jobtrail/internal/common/http"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/common/metrics"
	"jobtrail/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// ErrListingSourceFailed marks transport or payload failures of the external
// listing API. Surfaced as a 500, never retried.
var ErrListingSourceFailed = errors.New("LISTING_SOURCE_FAILED")

// Source fetches raw postings from the external listing provider.
type Source interface {
	Query(ctx context.Context, filters map[string]string) ([]models.JobListing, error)
}

// rawListingSchema describes what a usable source record must carry. Records
// failing it are skipped rather than failing the whole fetch; the source
// mixes well-formed and junk rows in one response.
const rawListingSchema = `{
	"type": "object",
	"properties": {
		"position":    {"type": "string", "minLength": 1},
		"company":     {"type": "string"},
		"companyLogo": {"type": "string"},
		"location":    {"type": "string"},
		"date":        {"type": "string"},
		"salary":      {"type": "string"},
		"jobUrl":      {"type": "string", "minLength": 1}
	},
	"required": ["position", "jobUrl"]
}`

// Client talks to the listing source's query API.
type Client struct {
	httpClient *commonhttp.Client
	baseURL    string
	apiKey     string
	schema     *gojsonschema.Schema
	logger     logger.Logger
}

func NewClient(cfg config.ListingsConfig, log logger.Logger) (*Client, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(rawListingSchema))
	if err != nil {
		return nil, fmt.Errorf("compile listing schema: %w", err)
	}

	return &Client{
		httpClient: commonhttp.NewClient(cfg.Timeout()),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		schema:     schema,
		logger:     log.WithFields(map[string]interface{}{"component": "listing-source"}),
	}, nil
}

// rawListing mirrors the heterogeneous source record before coercion.
type rawListing struct {
	Position        string `json:"position"`
	Company         string `json:"company"`
	CompanyLogo     string `json:"companyLogo"`
	Location        string `json:"location"`
	Date            string `json:"date"`
	AgoTime         string `json:"agoTime"`
	Salary          string `json:"salary"`
	JobURL          string `json:"jobUrl"`
	JobType         string `json:"jobType"`
	RemoteFilter    string `json:"remoteFilter"`
	ExperienceLevel string `json:"experienceLevel"`
}

// Query fetches listings matching the raw filter values and normalizes the
// survivors. Schema rejects are logged and dropped.
func (c *Client) Query(ctx context.Context, filters map[string]string) ([]models.JobListing, error) {
	fetched, err := c.query(ctx, filters)
	metrics.ExternalCallsTotal.WithLabelValues("listing_source", metrics.Outcome(err)).Inc()
	return fetched, err
}

func (c *Client) query(ctx context.Context, filters map[string]string) ([]models.JobListing, error) {
	endpoint := c.baseURL + "/jobs?" + encodeFilters(filters)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrListingSourceFailed, err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingSourceFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrListingSourceFailed, resp.StatusCode, body)
	}

	var rawRecords []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rawRecords); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrListingSourceFailed, err)
	}

	out := make([]models.JobListing, 0, len(rawRecords))
	for _, record := range rawRecords {
		result, err := c.schema.Validate(gojsonschema.NewBytesLoader(record))
		if err != nil || !result.Valid() {
			c.logger.Warn("dropping malformed listing record", map[string]interface{}{
				"record": string(record),
			})
			continue
		}

		var raw rawListing
		if err := json.Unmarshal(record, &raw); err != nil {
			continue
		}
		out = append(out, normalize(raw))
	}

	return out, nil
}

// normalize renames and coerces source fields onto the stored shape. A salary
// of "NaN" or anything non-numeric becomes nil, not zero.
func normalize(raw rawListing) models.JobListing {
	listing := models.JobListing{
		Position:        raw.Position,
		Company:         raw.Company,
		CompanyLogo:     raw.CompanyLogo,
		Location:        raw.Location,
		JobURL:          raw.JobURL,
		JobType:         raw.JobType,
		RemoteFilter:    raw.RemoteFilter,
		ExperienceLevel: raw.ExperienceLevel,
		Salary:          parseSalary(raw.Salary),
	}

	if raw.Date != "" {
		if d, err := time.Parse("2006-01-02", raw.Date); err == nil {
			listing.PostDate = d
		} else if d, err := time.Parse(time.RFC3339, raw.Date); err == nil {
			listing.PostDate = d
		}
	}

	return listing
}

func parseSalary(s string) *float64 {
	if s == "" || s == "NaN" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func encodeFilters(filters map[string]string) string {
	values := url.Values{}
	for k, v := range filters {
		if v != "" {
			values.Set(k, v)
		}
	}
	return values.Encode()
}
