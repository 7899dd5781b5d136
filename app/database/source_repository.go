package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepositoryImpl)(nil)

// SourceRepositoryImpl handles database operations for sources.
type SourceRepositoryImpl struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

// UpsertSource registers a configured source, refreshing its URL and type
// when the configuration changed.
func (r *SourceRepositoryImpl) UpsertSource(sourceName, sourceURL, sourceType string) error {
	_, err := r.db.Exec(`
		INSERT INTO sources (name, url, source_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			url = EXCLUDED.url,
			source_type = EXCLUDED.source_type,
			updated_at = NOW()
	`, sourceName, sourceURL, sourceType)

	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

func (r *SourceRepositoryImpl) GetSource(sourceName string) (*Source, error) {
	var source Source
	err := r.db.QueryRow(`
		SELECT id, name, url, source_type, last_fetched_at, next_fetch_at, created_at, updated_at
		FROM sources
		WHERE name = $1
	`, sourceName).Scan(
		&source.ID, &source.Name, &source.URL, &source.Type,
		&source.LastFetchedAt, &source.NextFetchAt, &source.CreatedAt, &source.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return &source, nil
}

func (r *SourceRepositoryImpl) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

// UpdateSourceFetched records a successful fetch and schedules the next one.
func (r *SourceRepositoryImpl) UpdateSourceFetched(sourceName string, nextFetch time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources
		SET last_fetched_at = NOW(), next_fetch_at = $2, updated_at = NOW()
		WHERE name = $1
	`, sourceName, nextFetch)

	if err != nil {
		return fmt.Errorf("failed to update source fetch state: %w", err)
	}

	return nil
}
