package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hirewire/jobcomb/app/ingest"
)

var _ ListingRepository = (*ListingRepositoryImpl)(nil)

// ListingRepositoryImpl handles database operations for listings. It
// implements the merge writer's ingest.Store contract: the unique index on
// identity_fingerprint backs the at-most-one-per-identity guarantee, and a
// constraint violation is surfaced as ingest.ErrIdentityConflict.
type ListingRepositoryImpl struct {
	db *DB
}

func NewListingRepository(db *DB) *ListingRepositoryImpl {
	return &ListingRepositoryImpl{db: db}
}

const listingColumns = `id, source, COALESCE(external_id, ''), title, company, location,
	       description, url, salary_min, salary_max, posted_at, expires_at,
	       identity_fingerprint, content_fingerprint, needs_review, duplicate_of,
	       enrichment_attempts, content_enriched_at, created_at, updated_at`

func (r *ListingRepositoryImpl) Insert(listing ingest.Listing) error {
	_, err := r.db.Exec(`
		INSERT INTO listings (
			id, source, external_id, title, company, location, description, url,
			salary_min, salary_max, posted_at, expires_at,
			identity_fingerprint, content_fingerprint, needs_review, duplicate_of,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, listing.ID, listing.Source, listing.ExternalID, listing.Title, listing.Company,
		listing.Location, listing.Description, listing.URL,
		listing.SalaryMin, listing.SalaryMax, listing.PostedAt, listing.ExpiresAt,
		listing.IdentityFingerprint, listing.ContentFingerprint,
		listing.NeedsReview, listing.DuplicateOf,
		listing.CreatedAt, listing.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("listing %s: %w", listing.ID, ingest.ErrIdentityConflict)
		}
		return fmt.Errorf("failed to insert listing: %w", err)
	}

	return nil
}

func (r *ListingRepositoryImpl) FindByIdentity(fingerprint string) (*ingest.Listing, error) {
	row := r.db.QueryRow(`
		SELECT `+listingColumns+`
		FROM listings
		WHERE identity_fingerprint = $1
	`, fingerprint)

	listing, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing by identity: %w", err)
	}

	return &listing, nil
}

func (r *ListingRepositoryImpl) FindAll() ([]ingest.Listing, error) {
	rows, err := r.db.Query(`
		SELECT ` + listingColumns + `
		FROM listings
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingRepositoryImpl) UpdatePresentationFields(listingID string, fields ingest.PresentationFields) error {
	_, err := r.db.Exec(`
		UPDATE listings
		SET description = $2, url = $3, salary_min = $4, salary_max = $5,
		    expires_at = $6, updated_at = NOW()
		WHERE id = $1
	`, listingID, fields.Description, fields.URL, fields.SalaryMin, fields.SalaryMax, fields.ExpiresAt)

	if err != nil {
		return fmt.Errorf("failed to update presentation fields: %w", err)
	}

	return nil
}

// GetVisibleListings returns listings not awaiting duplicate review,
// optionally limited to one source.
func (r *ListingRepositoryImpl) GetVisibleListings(sourceName string, limit int) ([]ingest.Listing, error) {
	rows, err := r.db.Query(`
		SELECT `+listingColumns+`
		FROM listings
		WHERE needs_review = false
		  AND ($1 = '' OR source = $1)
		ORDER BY COALESCE(posted_at, created_at) DESC
		LIMIT $2
	`, sourceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get visible listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingRepositoryImpl) GetListingCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM listings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get listing count: %w", err)
	}
	return count, nil
}

func (r *ListingRepositoryImpl) GetListingStats() (total, flagged int, err error) {
	err = r.db.QueryRow(`
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN needs_review THEN 1 ELSE 0 END), 0) as flagged
		FROM listings
	`).Scan(&total, &flagged)

	if err != nil {
		return 0, 0, fmt.Errorf("failed to get listing stats: %w", err)
	}

	return total, flagged, nil
}

// GetListingsForEnrichment returns listings whose description is thin enough
// to be worth re-fetching from the posting page. Repeated failures back the
// listing out after three attempts.
func (r *ListingRepositoryImpl) GetListingsForEnrichment(limit int) ([]ListingRef, error) {
	rows, err := r.db.Query(`
		SELECT id, url
		FROM listings
		WHERE url <> ''
		  AND content_enriched_at IS NULL
		  AND enrichment_attempts < 3
		  AND LENGTH(description) < 200
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get listings for enrichment: %w", err)
	}
	defer rows.Close()

	var refs []ListingRef
	for rows.Next() {
		var ref ListingRef
		if err := rows.Scan(&ref.ID, &ref.URL); err != nil {
			return nil, fmt.Errorf("failed to scan listing ref: %w", err)
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

func (r *ListingRepositoryImpl) UpdateEnrichedDescription(listingID, description string) error {
	_, err := r.db.Exec(`
		UPDATE listings
		SET description = $2, content_enriched_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, listingID, description)

	if err != nil {
		return fmt.Errorf("failed to update enriched description: %w", err)
	}

	return nil
}

func (r *ListingRepositoryImpl) IncrementEnrichmentAttempts(listingID string) error {
	_, err := r.db.Exec(`
		UPDATE listings
		SET enrichment_attempts = enrichment_attempts + 1
		WHERE id = $1
	`, listingID)

	if err != nil {
		return fmt.Errorf("failed to increment enrichment attempts: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (ingest.Listing, error) {
	var listing ingest.Listing
	err := row.Scan(
		&listing.ID, &listing.Source, &listing.ExternalID, &listing.Title,
		&listing.Company, &listing.Location, &listing.Description, &listing.URL,
		&listing.SalaryMin, &listing.SalaryMax, &listing.PostedAt, &listing.ExpiresAt,
		&listing.IdentityFingerprint, &listing.ContentFingerprint,
		&listing.NeedsReview, &listing.DuplicateOf,
		&listing.EnrichmentAttempts, &listing.ContentEnrichedAt,
		&listing.CreatedAt, &listing.UpdatedAt,
	)
	return listing, err
}

func collectListings(rows *sql.Rows) ([]ingest.Listing, error) {
	var listings []ingest.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing rows: %w", err)
	}

	return listings, nil
}
