package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hirewire/jobcomb/app/ingest"
)

const (
	apiPageSize = 50
	apiMaxPages = 3
)

// APIFetcher pulls listings from an Adzuna-style JSON search API with paged
// {"results": [...]} envelopes. Missing credentials are not an error: the
// fetch is skipped with a warning so one misconfigured source never stalls
// the rest of the schedule.
type APIFetcher struct {
	config    *Config
	client    *http.Client
	userAgent string
}

func NewAPIFetcher(config *Config, client *http.Client, userAgent string) *APIFetcher {
	return &APIFetcher{
		config:    config,
		client:    client,
		userAgent: userAgent,
	}
}

type apiResponse struct {
	Results []apiResult `json:"results"`
	Count   int         `json:"count"`
}

type apiResult struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Company     apiCompany  `json:"company"`
	Location    apiLocation `json:"location"`
	SalaryMin   float64     `json:"salary_min"`
	SalaryMax   float64     `json:"salary_max"`
	RedirectURL string      `json:"redirect_url"`
	Created     string      `json:"created"`
}

type apiCompany struct {
	DisplayName string `json:"display_name"`
}

type apiLocation struct {
	DisplayName string `json:"display_name"`
}

func (f *APIFetcher) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	if f.config.Credentials.AppID == "" || f.config.Credentials.AppKey == "" {
		slog.Warn("API credentials not set, skipping fetch", "source", f.config.Name)
		return nil, nil
	}

	var records []ingest.RawRecord

	for page := 1; page <= apiMaxPages; page++ {
		results, err := f.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		if len(results) == 0 {
			break
		}

		for _, result := range results {
			if f.config.Settings.MaxRecords > 0 && len(records) >= f.config.Settings.MaxRecords {
				return records, nil
			}
			records = append(records, f.mapResult(result))
		}

		if len(results) < apiPageSize {
			break
		}
	}

	return records, nil
}

func (f *APIFetcher) fetchPage(ctx context.Context, page int) ([]apiResult, error) {
	pageURL, err := f.buildURL(page)
	if err != nil {
		return nil, err
	}

	data, err := fetchBody(ctx, f.client, pageURL, f.userAgent, f.config.Settings.Timeout)
	if err != nil {
		return nil, err
	}

	var response apiResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return response.Results, nil
}

func (f *APIFetcher) buildURL(page int) (string, error) {
	base, err := url.Parse(fmt.Sprintf("%s/%d", f.config.URL, page))
	if err != nil {
		return "", fmt.Errorf("invalid source URL: %w", err)
	}

	query := base.Query()
	query.Set("app_id", f.config.Credentials.AppID)
	query.Set("app_key", f.config.Credentials.AppKey)
	query.Set("results_per_page", strconv.Itoa(apiPageSize))
	base.RawQuery = query.Encode()

	return base.String(), nil
}

func (f *APIFetcher) mapResult(result apiResult) ingest.RawRecord {
	record := ingest.RawRecord{
		"external_id": result.ID,
		"title":       result.Title,
		"company":     result.Company.DisplayName,
		"location":    result.Location.DisplayName,
		"description": result.Description,
		"url":         result.RedirectURL,
		"salary_min":  result.SalaryMin,
		"salary_max":  result.SalaryMax,
	}

	if result.Created != "" {
		if created, err := time.Parse(time.RFC3339, result.Created); err == nil {
			record["posted_at"] = created
		}
	}

	return record
}
