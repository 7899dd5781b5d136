package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hirewire/jobcomb/app/cfg"
	"github.com/hirewire/jobcomb/app/database"
	"github.com/hirewire/jobcomb/app/ingest"
	"github.com/hirewire/jobcomb/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	sourceRepo       database.SourceRepository
	listingRepo      database.ListingRepository
	interviewRepo    database.InterviewRepository
	configCache      *sources.ConfigCache
	httpClient       *http.Client
	dedupEngine      *ingest.Engine
	contentExtractor *sources.ContentExtractor
	userAgent        string
	interval         time.Duration
	workerCount      int
	cron             *cron.Cron
	ctx              context.Context
	cancel           context.CancelFunc
	wg               sync.WaitGroup
	taskQueue        chan TaskInterface
}

func NewScheduler(configCache *sources.ConfigCache, sourceRepo database.SourceRepository,
	listingRepo database.ListingRepository, interviewRepo database.InterviewRepository,
	httpClient *http.Client) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		sourceRepo:       sourceRepo,
		listingRepo:      listingRepo,
		interviewRepo:    interviewRepo,
		configCache:      configCache,
		httpClient:       httpClient,
		dedupEngine:      ingest.NewEngine(ingest.DefaultSimilarityThreshold),
		contentExtractor: sources.NewContentExtractor(),
		userAgent:        cfg.UserAgent,
		interval:         time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:      cfg.WorkerCount,
		cron:             cron.New(),
		ctx:              ctx,
		cancel:           cancel,
		taskQueue:        make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.enqueueStartupTasks()

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.enqueueTasks); err != nil {
		slog.Error("Failed to register scheduler trigger", "spec", spec, "error", err)
		return
	}
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	sourceConfigs := s.configCache.GetConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No source configurations found")
		return
	}

	slog.Debug("Processing source configurations", "count", len(sourceConfigs))

	for _, sourceConfig := range sourceConfigs {
		syncTask := NewSyncSourceConfigTask(sourceConfig.Name, sourceConfig, s.sourceRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourceConfigTask", "source", sourceConfig.Name, "error", err)
			continue
		}

		if !sourceConfig.Settings.Enabled {
			slog.Debug("Source disabled, skipping IngestSourceTask", "source", sourceConfig.Name)
			continue
		}

		ingestTask := NewIngestSourceTask(sourceConfig.Name, sourceConfig, s.httpClient, s.dedupEngine, s.sourceRepo, s.listingRepo, s.userAgent)
		if err := s.EnqueueTask(ingestTask); err != nil {
			slog.Warn("Failed to enqueue IngestSourceTask", "source", sourceConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	sourceConfigs := s.configCache.GetEnabledConfigs()
	if len(sourceConfigs) == 0 {
		slog.Debug("No enabled source configurations found")
		return
	}

	slog.Debug("Processing enabled source configurations for task scheduling", "count", len(sourceConfigs))

	enrichNeeded := false

	for _, sourceConfig := range sourceConfigs {
		if sourceConfig.Settings.EnrichContent {
			enrichNeeded = true
		}

		source, err := s.sourceRepo.GetSource(sourceConfig.Name)
		if err != nil {
			slog.Warn("Failed to get source from database, skipping", "source", sourceConfig.Name, "error", err)
			continue
		}
		if source == nil {
			slog.Warn("Source not found in database, skipping", "source", sourceConfig.Name)
			continue
		}

		now := time.Now().UTC()
		if source.NextFetchAt != nil && source.NextFetchAt.After(now) {
			slog.Debug("Source not due for refresh yet", "source", sourceConfig.Name, "next_fetch_at", source.NextFetchAt)
			continue
		}

		ingestTask := NewIngestSourceTask(sourceConfig.Name, sourceConfig, s.httpClient, s.dedupEngine, s.sourceRepo, s.listingRepo, s.userAgent)
		if err := s.EnqueueTask(ingestTask); err != nil {
			slog.Warn("Failed to enqueue IngestSourceTask", "source", sourceConfig.Name, "error", err)
		}
	}

	if enrichNeeded {
		enrichTask := NewEnrichListingsTask(s.httpClient, s.contentExtractor, s.listingRepo, s.userAgent)
		if err := s.EnqueueTask(enrichTask); err != nil {
			slog.Warn("Failed to enqueue EnrichListingsTask", "error", err)
		}
	}

	auditTask := NewAuditTask(s.listingRepo, s.interviewRepo)
	if err := s.EnqueueTask(auditTask); err != nil {
		slog.Warn("Failed to enqueue AuditTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
