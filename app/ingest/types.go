package ingest

import (
	"time"
)

// RawRecord is a loosely typed key/value record as delivered by a source
// fetcher. Field shapes vary by provider and are not trusted; the
// Canonicalizer validates them into a Listing at the boundary.
type RawRecord map[string]any

// Text returns the string value for key, or "" when the key is absent or
// not a string.
func (r RawRecord) Text(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Number returns the float value for key when present.
func (r RawRecord) Number(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Time returns the time value for key when present.
func (r RawRecord) Time(key string) *time.Time {
	if v, ok := r[key].(time.Time); ok {
		return &v
	}
	if v, ok := r[key].(*time.Time); ok {
		return v
	}
	return nil
}

// Listing is the canonical representation of one job posting. The identity
// and content fingerprints are derived once at canonicalization time and are
// immutable afterwards; CreatedAt is set on first insert and never
// overwritten by later ingestion runs that observe the same identity.
type Listing struct {
	ID          string
	Source      string
	ExternalID  string
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	SalaryMin   *float64
	SalaryMax   *float64
	PostedAt    *time.Time
	ExpiresAt   *time.Time

	IdentityFingerprint string
	ContentFingerprint  string

	NeedsReview bool
	DuplicateOf string

	EnrichmentAttempts int
	ContentEnrichedAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decision classifies one batch record against the stored corpus.
type Decision string

const (
	DecisionNew            Decision = "new"
	DecisionExactDuplicate Decision = "exact_duplicate"
	DecisionNearDuplicate  Decision = "near_duplicate"
)

// TaggedListing is a Listing plus its dedup decision. MatchedID references
// the stored record that triggered a duplicate decision.
type TaggedListing struct {
	Listing   Listing
	Decision  Decision
	MatchedID string
}

// PresentationFields are the only mutable fields on a stored listing. They
// may be refreshed when the same identity is fetched again.
type PresentationFields struct {
	Description string
	URL         string
	SalaryMin   *float64
	SalaryMax   *float64
	ExpiresAt   *time.Time
}

// Store is the minimal persistence contract the merge writer requires.
// Insert must fail with ErrIdentityConflict (possibly wrapped) when the
// identity fingerprint is already stored, so that two overlapping ingestion
// runs cannot both insert the same identity.
type Store interface {
	FindByIdentity(fingerprint string) (*Listing, error)
	FindAll() ([]Listing, error)
	Insert(listing Listing) error
	UpdatePresentationFields(id string, fields PresentationFields) error
}

// Summary reports the outcome of applying one tagged batch.
type Summary struct {
	Inserted int
	Updated  int
	Flagged  int
	Skipped  int
	Failed   int
	Errors   []error
}
