package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hirewire/jobcomb/app/audit"
	"github.com/hirewire/jobcomb/app/cfg"
	"github.com/hirewire/jobcomb/app/database"
	"github.com/hirewire/jobcomb/app/ingest"
	"github.com/hirewire/jobcomb/app/scoring"
	"github.com/hirewire/jobcomb/app/sources"
	"github.com/hirewire/jobcomb/app/tasks"
)

func NewHandler(configCache *sources.ConfigCache, sourceRepo database.SourceRepository,
	listingRepo database.ListingRepository, interviewRepo database.InterviewRepository,
	applicationRepo database.ApplicationRepository, scorer ScorerInterface,
	scheduler tasks.TaskSchedulerInterface, httpClient *http.Client) *Handler {
	cfg := cfg.Get()

	return &Handler{
		sourceRepo:      sourceRepo,
		listingRepo:     listingRepo,
		interviewRepo:   interviewRepo,
		applicationRepo: applicationRepo,
		configCache:     configCache,
		scorer:          scorer,
		reporter:        audit.NewReporter(),
		scheduler:       scheduler,
		httpClient:      httpClient,
		dedupEngine:     ingest.NewEngine(ingest.DefaultSimilarityThreshold),
		userAgent:       cfg.UserAgent,
	}
}

func (h *Handler) GetListings(c *gin.Context) {
	sourceName := c.Query("source")

	limit := 100
	if rawLimit := c.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	if sourceName != "" {
		if _, err := h.configCache.GetConfig(sourceName); err != nil {
			slog.Error("Source configuration not found", "source", sourceName, "error", err)
			c.JSON(http.StatusNotFound, gin.H{"error": "Source configuration not found"})
			return
		}
	}

	listings, err := h.listingRepo.GetVisibleListings(sourceName, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_listings", "source", sourceName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"total":    len(listings),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sourceCount, err := h.sourceRepo.GetSourceCount(); err == nil {
		health["sources"] = sourceCount
	}

	if listingCount, err := h.listingRepo.GetListingCount(); err == nil {
		health["listings"] = listingCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if total, flagged, err := h.listingRepo.GetListingStats(); err == nil {
		stats["listings"] = map[string]interface{}{
			"total":   total,
			"flagged": flagged,
			"visible": total - flagged,
		}
	}

	if entryCount, err := h.interviewRepo.GetEntryCount(); err == nil {
		stats["interview_entries"] = entryCount
	}

	stats["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListSources(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	sourceList := make([]map[string]interface{}, 0, len(configs))

	for _, sourceConfig := range configs {
		sourceInfo := map[string]interface{}{
			"name":             sourceConfig.Name,
			"url":              sourceConfig.URL,
			"type":             sourceConfig.Type,
			"enabled":          sourceConfig.Settings.Enabled,
			"max_records":      sourceConfig.Settings.MaxRecords,
			"refresh_interval": (time.Duration(sourceConfig.Settings.RefreshInterval) * time.Second).String(),
			"enrich_content":   sourceConfig.Settings.EnrichContent,
		}

		if source, err := h.sourceRepo.GetSource(sourceConfig.Name); err == nil && source != nil {
			sourceInfo["last_fetched_at"] = source.LastFetchedAt
			sourceInfo["next_fetch_at"] = source.NextFetchAt
			sourceInfo["updated_at"] = source.UpdatedAt
		}

		sourceList = append(sourceList, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sourceList,
		"total":   len(sourceList),
	})
}

func (h *Handler) APIIngestSource(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source name parameter"})
		return
	}

	sourceConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		slog.Error("Error reloading configuration", "source", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Source configuration not found",
			"details": err.Error(),
		})
		return
	}

	syncTask := tasks.NewSyncSourceConfigTask(name, sourceConfig, h.sourceRepo)
	if err := h.scheduler.EnqueueTask(syncTask); err != nil {
		slog.Error("Error enqueueing sync task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	ingestTask := tasks.NewIngestSourceTask(name, sourceConfig, h.httpClient,
		h.dedupEngine, h.sourceRepo, h.listingRepo, h.userAgent)
	if err := h.scheduler.EnqueueTask(ingestTask); err != nil {
		slog.Error("Error enqueueing ingest task", "source", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue ingest task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Configuration reloaded and ingestion enqueued",
		"source": gin.H{
			"name": name,
			"url":  sourceConfig.URL,
		},
		"tasks": []gin.H{
			{"id": syncTask.ID, "type": syncTask.Type},
			{"id": ingestTask.ID, "type": ingestTask.Type},
		},
	})
}

func (h *Handler) APIRunAudit(c *gin.Context) {
	listings, err := h.listingRepo.FindAll()
	if err != nil {
		slog.Error("Database error", "operation", "find_all_listings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	interviewEntries, err := h.interviewRepo.GetAllEntries()
	if err != nil {
		slog.Error("Database error", "operation", "get_all_entries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]audit.Entry, 0, len(interviewEntries))
	for _, entry := range interviewEntries {
		entries = append(entries, audit.Entry{
			ID:       entry.ID,
			Question: entry.Question,
			Answer:   entry.Answer,
		})
	}

	report := h.reporter.Run(listings, entries)

	c.JSON(http.StatusOK, report)
}

func (h *Handler) APICreateApplication(c *gin.Context) {
	var req applicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	score := h.scorer.Score(scoring.ApplicationBundle{
		ListingID:      req.ListingID,
		Experience:     req.Experience,
		CoverLetter:    req.CoverLetter,
		ResumeProvided: req.ResumeProvided,
		ResumeFileName: req.ResumeFileName,
	})

	application := database.Application{
		ListingID:      req.ListingID,
		Experience:     req.Experience,
		CoverLetter:    req.CoverLetter,
		ResumeProvided: req.ResumeProvided,
		ResumeFileName: req.ResumeFileName,
		Score:          score.Score,
		Tier:           score.Tier,
		SuggestedRate:  score.SuggestedRate,
		Reasons:        score.Reasons,
	}

	applicationID, err := h.applicationRepo.InsertApplication(application)
	if err != nil {
		slog.Error("Database error", "operation", "insert_application", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":             applicationID,
		"score":          score.Score,
		"tier":           score.Tier,
		"suggested_rate": score.SuggestedRate,
		"reasons":        score.Reasons,
	})
}

func (h *Handler) APIGetApplication(c *gin.Context) {
	applicationID := c.Param("id")

	application, err := h.applicationRepo.GetApplication(applicationID)
	if err != nil {
		slog.Error("Database error", "operation", "get_application", "application_id", applicationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if application == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, application)
}

// APIRescoreApplication recomputes the stored score from the original
// submission. The score never changes outside this explicit request.
func (h *Handler) APIRescoreApplication(c *gin.Context) {
	applicationID := c.Param("id")

	application, err := h.applicationRepo.GetApplication(applicationID)
	if err != nil {
		slog.Error("Database error", "operation", "get_application", "application_id", applicationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if application == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}

	score := h.scorer.Score(scoring.ApplicationBundle{
		ListingID:      application.ListingID,
		Experience:     application.Experience,
		CoverLetter:    application.CoverLetter,
		ResumeProvided: application.ResumeProvided,
		ResumeFileName: application.ResumeFileName,
	})

	if err := h.applicationRepo.UpdateScore(applicationID, score); err != nil {
		slog.Error("Database error", "operation", "update_score", "application_id", applicationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             applicationID,
		"score":          score.Score,
		"tier":           score.Tier,
		"suggested_rate": score.SuggestedRate,
		"reasons":        score.Reasons,
	})
}

func (h *Handler) APICreateInterviewEntry(c *gin.Context) {
	var req interviewEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	entryID, err := h.interviewRepo.InsertEntry(database.InterviewEntry{
		Topic:    req.Topic,
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		slog.Error("Database error", "operation", "insert_entry", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": entryID})
}
