package database

import (
	"fmt"

	"github.com/google/uuid"
)

var _ InterviewRepository = (*InterviewRepositoryImpl)(nil)

// InterviewRepositoryImpl handles database operations for interview
// reference entries.
type InterviewRepositoryImpl struct {
	db *DB
}

func NewInterviewRepository(db *DB) *InterviewRepositoryImpl {
	return &InterviewRepositoryImpl{db: db}
}

func (r *InterviewRepositoryImpl) InsertEntry(entry InterviewEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	_, err := r.db.Exec(`
		INSERT INTO interview_entries (id, topic, question, answer)
		VALUES ($1, $2, $3, $4)
	`, entry.ID, entry.Topic, entry.Question, entry.Answer)

	if err != nil {
		return "", fmt.Errorf("failed to insert interview entry: %w", err)
	}

	return entry.ID, nil
}

func (r *InterviewRepositoryImpl) GetAllEntries() ([]InterviewEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, topic, question, answer, created_at, updated_at
		FROM interview_entries
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get interview entries: %w", err)
	}
	defer rows.Close()

	var entries []InterviewEntry
	for rows.Next() {
		var entry InterviewEntry
		err := rows.Scan(&entry.ID, &entry.Topic, &entry.Question, &entry.Answer,
			&entry.CreatedAt, &entry.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview entry row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interview entry rows: %w", err)
	}

	return entries, nil
}

func (r *InterviewRepositoryImpl) GetEntryCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM interview_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get interview entry count: %w", err)
	}
	return count, nil
}
