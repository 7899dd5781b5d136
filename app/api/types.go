package api

import (
	"net/http"

	"github.com/hirewire/jobcomb/app/audit"
	"github.com/hirewire/jobcomb/app/database"
	"github.com/hirewire/jobcomb/app/ingest"
	"github.com/hirewire/jobcomb/app/scoring"
	"github.com/hirewire/jobcomb/app/sources"
	"github.com/hirewire/jobcomb/app/tasks"
)

type ScorerInterface interface {
	Score(bundle scoring.ApplicationBundle) scoring.QualificationScore
}

var _ ScorerInterface = (*scoring.Scorer)(nil)

type Handler struct {
	sourceRepo      database.SourceRepository
	listingRepo     database.ListingRepository
	interviewRepo   database.InterviewRepository
	applicationRepo database.ApplicationRepository
	configCache     *sources.ConfigCache
	scorer          ScorerInterface
	reporter        *audit.Reporter
	scheduler       tasks.TaskSchedulerInterface
	httpClient      *http.Client
	dedupEngine     *ingest.Engine
	userAgent       string
}

// applicationRequest is the payload for creating an application. The resume
// itself is never uploaded here, only whether one was provided and its
// file name.
type applicationRequest struct {
	ListingID      string `json:"listing_id"`
	Experience     string `json:"experience"`
	CoverLetter    string `json:"cover_letter"`
	ResumeProvided bool   `json:"resume_provided"`
	ResumeFileName string `json:"resume_file_name"`
}

type interviewEntryRequest struct {
	Topic    string `json:"topic"`
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}
