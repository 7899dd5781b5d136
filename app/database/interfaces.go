package database

import (
	"time"

	"github.com/hirewire/jobcomb/app/ingest"
	"github.com/hirewire/jobcomb/app/scoring"
)

type SourceRepository interface {
	GetSource(sourceName string) (*Source, error)
	GetSourceCount() (int, error)

	UpsertSource(sourceName, sourceURL, sourceType string) error
	UpdateSourceFetched(sourceName string, nextFetch time.Time) error
}

// ListingRepository extends the merge writer's ingest.Store contract with
// the query surface the API and background tasks need.
type ListingRepository interface {
	ingest.Store

	GetVisibleListings(sourceName string, limit int) ([]ingest.Listing, error)
	GetListingCount() (int, error)
	GetListingStats() (total, flagged int, err error)

	GetListingsForEnrichment(limit int) ([]ListingRef, error)
	UpdateEnrichedDescription(listingID, description string) error
	IncrementEnrichmentAttempts(listingID string) error
}

type InterviewRepository interface {
	GetAllEntries() ([]InterviewEntry, error)
	GetEntryCount() (int, error)
	InsertEntry(entry InterviewEntry) (string, error)
}

type ApplicationRepository interface {
	GetApplication(applicationID string) (*Application, error)
	InsertApplication(application Application) (string, error)
	UpdateScore(applicationID string, score scoring.QualificationScore) error
}
