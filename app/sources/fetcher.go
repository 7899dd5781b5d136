package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hirewire/jobcomb/app/ingest"
)

// Fetcher retrieves the raw records of one configured source. Every wire
// format detail stays behind this interface; the ingestion core only ever
// sees []ingest.RawRecord plus the source tag.
type Fetcher interface {
	Fetch(ctx context.Context) ([]ingest.RawRecord, error)
}

// NewFetcher builds the fetcher matching the source type.
func NewFetcher(config *Config, client *http.Client, userAgent string) (Fetcher, error) {
	switch config.Type {
	case TypeRSS:
		return NewRSSFetcher(config, client, userAgent), nil
	case TypeAPI:
		return NewAPIFetcher(config, client, userAgent), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

// fetchBody issues a GET bounded by the source's configured timeout.
func fetchBody(ctx context.Context, client *http.Client, url, userAgent string, timeoutSec int) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
