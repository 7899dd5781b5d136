package ingest

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// memoryStore is a minimal in-memory Store used to exercise the writer. It
// enforces identity uniqueness the way the database unique index does.
type memoryStore struct {
	listings  map[string]Listing
	insertErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{listings: make(map[string]Listing)}
}

func (s *memoryStore) FindByIdentity(fingerprint string) (*Listing, error) {
	for _, listing := range s.listings {
		if listing.IdentityFingerprint == fingerprint {
			found := listing
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) FindAll() ([]Listing, error) {
	all := make([]Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		all = append(all, listing)
	}
	return all, nil
}

func (s *memoryStore) Insert(listing Listing) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, existing := range s.listings {
		if existing.IdentityFingerprint == listing.IdentityFingerprint {
			return fmt.Errorf("unique violation: %w", ErrIdentityConflict)
		}
	}
	s.listings[listing.ID] = listing
	return nil
}

func (s *memoryStore) UpdatePresentationFields(id string, fields PresentationFields) error {
	listing, ok := s.listings[id]
	if !ok {
		return fmt.Errorf("listing %s not found", id)
	}
	listing.Description = fields.Description
	listing.URL = fields.URL
	listing.SalaryMin = fields.SalaryMin
	listing.SalaryMax = fields.SalaryMax
	listing.ExpiresAt = fields.ExpiresAt
	s.listings[id] = listing
	return nil
}

func taggedBatch(t *testing.T, decision Decision, matchedID string, record RawRecord) []TaggedListing {
	t.Helper()

	listing := mustCanonicalize(t, "acme", record)
	return []TaggedListing{{Listing: listing, Decision: decision, MatchedID: matchedID}}
}

func TestApplyInsertsNewListing(t *testing.T) {
	store := newMemoryStore()
	writer := NewWriter(store, true)

	summary := writer.Apply(taggedBatch(t, DecisionNew, "", RawRecord{
		"external_id": "job-1",
		"title":       "Backend Engineer",
		"company":     "Acme",
	}))

	if summary.Inserted != 1 {
		t.Errorf("Expected 1 inserted, got %d", summary.Inserted)
	}
	if len(store.listings) != 1 {
		t.Fatalf("Expected 1 stored listing, got %d", len(store.listings))
	}

	for _, listing := range store.listings {
		if listing.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
		if !listing.CreatedAt.Equal(listing.UpdatedAt) {
			t.Error("Expected CreatedAt to equal UpdatedAt on first insert")
		}
	}
}

func TestApplyExactDuplicatePreservesCreatedAt(t *testing.T) {
	store := newMemoryStore()
	writer := NewWriter(store, true)
	firstSeen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	writer.now = func() time.Time { return firstSeen }

	record := RawRecord{
		"external_id": "job-1",
		"title":       "Backend Engineer",
		"company":     "Acme",
		"description": "Original text.",
	}
	writer.Apply(taggedBatch(t, DecisionNew, "", record))

	var storedID string
	for id := range store.listings {
		storedID = id
	}

	// Re-ingest the same posting later with an updated description.
	writer.now = func() time.Time { return firstSeen.Add(24 * time.Hour) }
	record["description"] = "Updated text."
	summary := writer.Apply(taggedBatch(t, DecisionExactDuplicate, storedID, record))

	if summary.Updated != 1 {
		t.Errorf("Expected 1 updated, got %d", summary.Updated)
	}
	if len(store.listings) != 1 {
		t.Errorf("Expected record count to stay at 1, got %d", len(store.listings))
	}

	stored := store.listings[storedID]
	if !stored.CreatedAt.Equal(firstSeen) {
		t.Errorf("Expected CreatedAt %v to be preserved, got %v", firstSeen, stored.CreatedAt)
	}
	if stored.Description != "Updated text." {
		t.Errorf("Expected refreshed description, got '%s'", stored.Description)
	}
}

func TestApplyExactDuplicateSkippedWhenRefreshDisabled(t *testing.T) {
	store := newMemoryStore()
	writer := NewWriter(store, true)

	record := RawRecord{
		"external_id": "job-1",
		"title":       "Backend Engineer",
		"company":     "Acme",
		"description": "Original text.",
	}
	writer.Apply(taggedBatch(t, DecisionNew, "", record))

	var storedID string
	for id := range store.listings {
		storedID = id
	}

	noRefresh := NewWriter(store, false)
	record["description"] = "Updated text."
	summary := noRefresh.Apply(taggedBatch(t, DecisionExactDuplicate, storedID, record))

	if summary.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", summary.Skipped)
	}
	if store.listings[storedID].Description != "Original text." {
		t.Error("Expected stored description to be untouched")
	}
}

func TestApplyInsertConflictBecomesUpdate(t *testing.T) {
	store := newMemoryStore()
	writer := NewWriter(store, true)

	record := RawRecord{
		"external_id": "job-1",
		"title":       "Backend Engineer",
		"company":     "Acme",
	}
	writer.Apply(taggedBatch(t, DecisionNew, "", record))

	// A racing run already inserted this identity, so the classifier saw it
	// as new but the store rejects the second insert.
	summary := writer.Apply(taggedBatch(t, DecisionNew, "", record))

	if summary.Inserted != 0 {
		t.Errorf("Expected 0 inserted, got %d", summary.Inserted)
	}
	if summary.Updated != 1 {
		t.Errorf("Expected conflict to be applied as update, got %d updated", summary.Updated)
	}
	if summary.Failed != 0 {
		t.Errorf("Expected 0 failed, got %d", summary.Failed)
	}
	if len(store.listings) != 1 {
		t.Errorf("Expected 1 stored listing, got %d", len(store.listings))
	}
}

func TestApplyNearDuplicateFlaggedForReview(t *testing.T) {
	store := newMemoryStore()
	writer := NewWriter(store, true)

	summary := writer.Apply(taggedBatch(t, DecisionNearDuplicate, "original-id", RawRecord{
		"external_id": "posting-2",
		"title":       "Backend Engineer",
		"company":     "Acme",
	}))

	if summary.Flagged != 1 {
		t.Errorf("Expected 1 flagged, got %d", summary.Flagged)
	}

	for _, listing := range store.listings {
		if !listing.NeedsReview {
			t.Error("Expected near duplicate to be stored with NeedsReview set")
		}
		if listing.DuplicateOf != "original-id" {
			t.Errorf("Expected DuplicateOf 'original-id', got '%s'", listing.DuplicateOf)
		}
	}
}

func TestApplyCollectsFailuresWithoutAbortingBatch(t *testing.T) {
	store := newMemoryStore()
	store.insertErr = errors.New("connection reset")
	writer := NewWriter(store, true)

	first := mustCanonicalize(t, "acme", RawRecord{
		"external_id": "job-1", "title": "Backend Engineer", "company": "Acme",
	})
	second := mustCanonicalize(t, "acme", RawRecord{
		"external_id": "job-2", "title": "Frontend Engineer", "company": "Acme",
	})

	summary := writer.Apply([]TaggedListing{
		{Listing: first, Decision: DecisionNew},
		{Listing: second, Decision: DecisionNew},
	})

	if summary.Failed != 2 {
		t.Errorf("Expected 2 failed, got %d", summary.Failed)
	}
	if len(summary.Errors) != 2 {
		t.Fatalf("Expected 2 collected errors, got %d", len(summary.Errors))
	}

	var writeErr *WriteError
	if !errors.As(summary.Errors[0], &writeErr) {
		t.Fatalf("Expected WriteError, got %T", summary.Errors[0])
	}
	if writeErr.ListingID != first.ID {
		t.Errorf("Expected error for listing '%s', got '%s'", first.ID, writeErr.ListingID)
	}
}
