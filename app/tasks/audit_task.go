package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hirewire/jobcomb/app/audit"
	"github.com/hirewire/jobcomb/app/database"
)

// AuditTask sweeps the stored corpus for duplicates that slipped past the
// ingestion-time checks and logs the grouped findings.
type AuditTask struct {
	Task
	listingRepo   database.ListingRepository
	interviewRepo database.InterviewRepository
}

func NewAuditTask(listingRepo database.ListingRepository, interviewRepo database.InterviewRepository) *AuditTask {
	return &AuditTask{
		Task:          NewTask(TaskTypeAuditCorpus, ""),
		listingRepo:   listingRepo,
		interviewRepo: interviewRepo,
	}
}

func (t *AuditTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	listings, err := t.listingRepo.FindAll()
	if err != nil {
		return fmt.Errorf("failed to load listings: %w", err)
	}

	interviewEntries, err := t.interviewRepo.GetAllEntries()
	if err != nil {
		return fmt.Errorf("failed to load interview entries: %w", err)
	}

	entries := make([]audit.Entry, 0, len(interviewEntries))
	for _, entry := range interviewEntries {
		entries = append(entries, audit.Entry{
			ID:       entry.ID,
			Question: entry.Question,
			Answer:   entry.Answer,
		})
	}

	report := audit.NewReporter().Run(listings, entries)

	slog.Info("Task completed",
		"type", "AuditCorpus",
		"duration", t.GetDuration(),
		"total", report.TotalRecords,
		"exact_duplicates", report.ExactDuplicates,
		"duplicate_identifiers", report.DuplicateIdentifiers,
		"groups", len(report.Groups),
		"clean", report.IsClean)

	if !report.IsClean {
		for _, recommendation := range report.Recommendations {
			slog.Warn("Audit recommendation", "recommendation", recommendation)
		}
	}

	return nil
}
