package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hirewire/jobcomb/app/scoring"
)

var _ ApplicationRepository = (*ApplicationRepositoryImpl)(nil)

// ApplicationRepositoryImpl handles database operations for applicant
// submissions and their qualification scores.
type ApplicationRepositoryImpl struct {
	db *DB
}

func NewApplicationRepository(db *DB) *ApplicationRepositoryImpl {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) InsertApplication(application Application) (string, error) {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}

	var listingID any
	if application.ListingID != "" {
		listingID = application.ListingID
	}

	_, err := r.db.Exec(`
		INSERT INTO applications (
			id, listing_id, experience, cover_letter, resume_provided, resume_file_name,
			score, tier, suggested_rate, reasons, scored_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`, application.ID, listingID, application.Experience, application.CoverLetter,
		application.ResumeProvided, application.ResumeFileName,
		application.Score, string(application.Tier), application.SuggestedRate,
		pq.Array(application.Reasons))

	if err != nil {
		return "", fmt.Errorf("failed to insert application: %w", err)
	}

	return application.ID, nil
}

func (r *ApplicationRepositoryImpl) GetApplication(applicationID string) (*Application, error) {
	var application Application
	var listingID sql.NullString
	var tier string

	err := r.db.QueryRow(`
		SELECT id, listing_id, experience, cover_letter, resume_provided, resume_file_name,
		       score, tier, suggested_rate, reasons, scored_at, created_at
		FROM applications
		WHERE id = $1
	`, applicationID).Scan(
		&application.ID, &listingID, &application.Experience, &application.CoverLetter,
		&application.ResumeProvided, &application.ResumeFileName,
		&application.Score, &tier, &application.SuggestedRate,
		pq.Array(&application.Reasons), &application.ScoredAt, &application.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	application.ListingID = listingID.String
	application.Tier = scoring.Tier(tier)

	return &application, nil
}

// UpdateScore overwrites the stored score after an explicit re-score.
func (r *ApplicationRepositoryImpl) UpdateScore(applicationID string, score scoring.QualificationScore) error {
	_, err := r.db.Exec(`
		UPDATE applications
		SET score = $2, tier = $3, suggested_rate = $4, reasons = $5, scored_at = NOW()
		WHERE id = $1
	`, applicationID, score.Score, string(score.Tier), score.SuggestedRate, pq.Array(score.Reasons))

	if err != nil {
		return fmt.Errorf("failed to update application score: %w", err)
	}

	return nil
}
