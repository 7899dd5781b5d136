package database

import (
	"time"

	"github.com/hirewire/jobcomb/app/scoring"
)

// Source represents a configured listing source registered in the database.
type Source struct {
	ID            string // Database UUID
	Name          string // Configuration source identifier derived from filename
	URL           string
	Type          string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time // Tracks last successful processing
}

// InterviewEntry is one interview-reference record in the catalog.
type InterviewEntry struct {
	ID        string
	Topic     string
	Question  string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Application is a persisted applicant submission together with its
// qualification score. The score is immutable unless the application is
// explicitly re-scored.
type Application struct {
	ID             string
	ListingID      string
	Experience     string
	CoverLetter    string
	ResumeProvided bool
	ResumeFileName string

	Score         int
	Tier          scoring.Tier
	SuggestedRate int
	Reasons       []string
	ScoredAt      *time.Time

	CreatedAt time.Time
}

// ListingRef is the minimal projection used by the enrichment task.
type ListingRef struct {
	ID  string
	URL string
}
