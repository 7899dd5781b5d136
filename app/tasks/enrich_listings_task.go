package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hirewire/jobcomb/app/database"
	"github.com/hirewire/jobcomb/app/sources"
)

const enrichBatchSize = 20

// EnrichListingsTask fills in thin descriptions by fetching the posting page
// and extracting its readable text. Listings are retried across runs up to
// the attempt cap enforced by the repository query.
type EnrichListingsTask struct {
	Task
	httpClient       *http.Client
	contentExtractor *sources.ContentExtractor
	listingRepo      database.ListingRepository
	userAgent        string
}

func NewEnrichListingsTask(httpClient *http.Client, contentExtractor *sources.ContentExtractor, listingRepo database.ListingRepository, userAgent string) *EnrichListingsTask {
	return &EnrichListingsTask{
		Task:             NewTask(TaskTypeEnrichListings, ""),
		httpClient:       httpClient,
		contentExtractor: contentExtractor,
		listingRepo:      listingRepo,
		userAgent:        userAgent,
	}
}

func (t *EnrichListingsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	refs, err := t.listingRepo.GetListingsForEnrichment(enrichBatchSize)
	if err != nil {
		return fmt.Errorf("failed to load listings for enrichment: %w", err)
	}

	if len(refs) == 0 {
		slog.Debug("No listings pending enrichment")
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, ref := range refs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		description, err := t.enrichListing(ctx, ref)
		if err != nil {
			slog.Warn("Listing enrichment failed", "listing_id", ref.ID, "url", ref.URL, "error", err)
			if attemptErr := t.listingRepo.IncrementEnrichmentAttempts(ref.ID); attemptErr != nil {
				slog.Error("Failed to record enrichment attempt", "listing_id", ref.ID, "error", attemptErr)
			}
			errorCount++
			continue
		}

		if err := t.listingRepo.UpdateEnrichedDescription(ref.ID, description); err != nil {
			slog.Error("Failed to store enriched description", "listing_id", ref.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.Info("Task completed",
		"type", "EnrichListings",
		"duration", t.GetDuration(),
		"total", len(refs),
		"enriched", successCount,
		"errors", errorCount)

	return nil
}

func (t *EnrichListingsTask) enrichListing(ctx context.Context, ref database.ListingRef) (string, error) {
	data, err := t.fetchPage(ctx, ref.URL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch posting page: %w", err)
	}

	description, err := t.contentExtractor.Run(data)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	return description, nil
}

func (t *EnrichListingsTask) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") {
		return nil, fmt.Errorf("unexpected content type: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
