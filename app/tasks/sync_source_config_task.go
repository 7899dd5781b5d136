package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hirewire/jobcomb/app/database"
	"github.com/hirewire/jobcomb/app/sources"
)

type SyncSourceConfigTask struct {
	Task
	SourceConfig *sources.Config
	sourceRepo   database.SourceRepository
}

func NewSyncSourceConfigTask(sourceName string, sourceConfig *sources.Config, sourceRepo database.SourceRepository) *SyncSourceConfigTask {
	return &SyncSourceConfigTask{
		Task:         NewTask(TaskTypeSyncSourceConfig, sourceName),
		SourceConfig: sourceConfig,
		sourceRepo:   sourceRepo,
	}
}

func (t *SyncSourceConfigTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.sourceRepo.UpsertSource(
		t.SourceConfig.Name,
		t.SourceConfig.URL,
		t.SourceConfig.Type)
	if err != nil {
		slog.Error("Task failed", "type", "SyncSourceConfig", "source", t.SourceName, "error", err)
		return fmt.Errorf("failed to sync source config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncSourceConfig",
		"source", t.SourceName,
		"duration", t.GetDuration())

	return nil
}
