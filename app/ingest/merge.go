package ingest

import (
	"errors"
	"log/slog"
	"time"
)

// Writer applies a tagged batch against the store. New records are inserted,
// exact duplicates only refresh presentation fields and keep their original
// CreatedAt, near duplicates are inserted flagged for review. A failure on
// one record never aborts the batch.
type Writer struct {
	store             Store
	refreshDuplicates bool
	now               func() time.Time
}

func NewWriter(store Store, refreshDuplicates bool) *Writer {
	return &Writer{
		store:             store,
		refreshDuplicates: refreshDuplicates,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Apply writes one tagged batch and reports per-tag counts. The check in
// Classify is not atomic with the insert: when a racing run already stored
// the same identity, the store rejects the insert with ErrIdentityConflict
// and the record is reinterpreted as an exact duplicate.
func (w *Writer) Apply(batch []TaggedListing) Summary {
	var summary Summary
	now := w.now()

	for _, tagged := range batch {
		switch tagged.Decision {
		case DecisionExactDuplicate:
			w.applyDuplicate(tagged.Listing, tagged.MatchedID, &summary)

		case DecisionNearDuplicate:
			listing := tagged.Listing
			listing.NeedsReview = true
			listing.DuplicateOf = tagged.MatchedID
			w.insert(listing, now, &summary, true)

		default:
			w.insert(tagged.Listing, now, &summary, false)
		}
	}

	return summary
}

func (w *Writer) insert(listing Listing, now time.Time, summary *Summary, flagged bool) {
	listing.CreatedAt = now
	listing.UpdatedAt = now

	err := w.store.Insert(listing)
	if err == nil {
		if flagged {
			summary.Flagged++
			slog.Debug("Near duplicate stored for review",
				"listing", listing.ID, "duplicate_of", listing.DuplicateOf)
		} else {
			summary.Inserted++
		}
		return
	}

	if errors.Is(err, ErrIdentityConflict) {
		// Lost a race with a concurrent ingestion run; same outcome as an
		// exact duplicate detected up front.
		w.applyDuplicate(listing, "", summary)
		return
	}

	summary.Failed++
	summary.Errors = append(summary.Errors, &WriteError{
		ListingID: listing.ID,
		Identity:  listing.IdentityFingerprint,
		Err:       err,
	})
}

func (w *Writer) applyDuplicate(listing Listing, matchedID string, summary *Summary) {
	if !w.refreshDuplicates {
		summary.Skipped++
		return
	}

	if matchedID == "" {
		existing, err := w.store.FindByIdentity(listing.IdentityFingerprint)
		if err != nil || existing == nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, &WriteError{
				ListingID: listing.ID,
				Identity:  listing.IdentityFingerprint,
				Err:       err,
			})
			return
		}
		matchedID = existing.ID
	}

	err := w.store.UpdatePresentationFields(matchedID, PresentationFields{
		Description: listing.Description,
		URL:         listing.URL,
		SalaryMin:   listing.SalaryMin,
		SalaryMax:   listing.SalaryMax,
		ExpiresAt:   listing.ExpiresAt,
	})
	if err != nil {
		summary.Failed++
		summary.Errors = append(summary.Errors, &WriteError{
			ListingID: matchedID,
			Identity:  listing.IdentityFingerprint,
			Err:       err,
		})
		return
	}

	summary.Updated++
}
