package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hirewire/jobcomb/app/database"
	"github.com/hirewire/jobcomb/app/ingest"
	"github.com/hirewire/jobcomb/app/sources"
)

// IngestSourceTask runs the full pipeline for one source: fetch raw records,
// canonicalize, classify against the stored corpus and merge the batch.
type IngestSourceTask struct {
	Task
	SourceConfig *sources.Config
	httpClient   *http.Client
	dedupEngine  *ingest.Engine
	sourceRepo   database.SourceRepository
	listingRepo  database.ListingRepository
	userAgent    string
}

func NewIngestSourceTask(sourceName string, sourceConfig *sources.Config, httpClient *http.Client, dedupEngine *ingest.Engine, sourceRepo database.SourceRepository, listingRepo database.ListingRepository, userAgent string) *IngestSourceTask {
	return &IngestSourceTask{
		Task:         NewTask(TaskTypeIngestSource, sourceName),
		SourceConfig: sourceConfig,
		httpClient:   httpClient,
		dedupEngine:  dedupEngine,
		sourceRepo:   sourceRepo,
		listingRepo:  listingRepo,
		userAgent:    userAgent,
	}
}

func (t *IngestSourceTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	fetcher, err := sources.NewFetcher(t.SourceConfig, t.httpClient, t.userAgent)
	if err != nil {
		return fmt.Errorf("failed to build fetcher: %w", err)
	}

	records, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	canonicalizer := ingest.NewCanonicalizer(map[string]ingest.Defaults{
		t.SourceName: {
			Title:    t.SourceConfig.Defaults.Title,
			Company:  t.SourceConfig.Defaults.Company,
			Location: t.SourceConfig.Defaults.Location,
		},
	})

	listings, dropped := canonicalizer.Run(t.SourceName, records)

	existing, err := t.listingRepo.FindAll()
	if err != nil {
		return fmt.Errorf("failed to load stored listings: %w", err)
	}

	index := ingest.NewIndex(existing)
	tagged := t.dedupEngine.Classify(listings, index)

	writer := ingest.NewWriter(t.listingRepo, true)
	summary := writer.Apply(tagged)

	for _, writeErr := range summary.Errors {
		slog.Warn("Listing write failed", "source", t.SourceName, "error", writeErr)
	}

	if err := t.updateSourceSchedule(); err != nil {
		return fmt.Errorf("failed to update source schedule: %w", err)
	}

	slog.Info("Task completed",
		"type", "IngestSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(records),
		"dropped", len(dropped),
		"new", summary.Inserted,
		"updated", summary.Updated,
		"flagged", summary.Flagged,
		"skipped", summary.Skipped,
		"failed", summary.Failed)

	return nil
}

func (t *IngestSourceTask) updateSourceSchedule() error {
	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.SourceConfig.Settings.RefreshInterval) * time.Second)

	return t.sourceRepo.UpdateSourceFetched(t.SourceName, nextFetch)
}
