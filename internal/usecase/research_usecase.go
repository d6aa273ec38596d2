package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/model"
	"github.com/masykurm/talent-scout/internal/parser"
	"github.com/masykurm/talent-scout/internal/service"
	"github.com/masykurm/talent-scout/internal/worker"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrCandidateNotInProject = errors.New("candidate is not attached to this project")

type ResearchStore interface {
	Create(research *model.Research) error
	Update(research *model.Research) error
	FindByID(id string) (*model.Research, error)
	FindOwnedByID(id string, userID uuid.UUID) (*model.Research, error)
	ListByUser(userID uuid.UUID, page, pageSize int) ([]model.Research, int64, error)
}

type CandidateStore interface {
	FindByID(id string) (*model.Candidate, error)
	Update(candidate *model.Candidate) error
}

type ProjectStore interface {
	FindOwnedByID(id string, userID uuid.UUID) (*model.Project, error)
	HasCandidate(projectID, candidateID uuid.UUID) (bool, error)
}

type SettingsStore interface {
	FindSettingsByUser(userID uuid.UUID) (*model.UserSettings, error)
}

// EmbeddingClient is a research backend that can also embed text.
type EmbeddingClient interface {
	service.ResearchClient
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// TaskStores bundles the stores one runner works with. The factory hands
// each runner its own database session so concurrent tasks never share one.
type TaskStores struct {
	Research   ResearchStore
	Candidates CandidateStore
}

type ResearchUsecase struct {
	research   ResearchStore
	candidates CandidateStore
	projects   ProjectStore
	settings   SettingsStore
	taskStores func() TaskStores
	perplexity service.ResearchClient
	gemini     EmbeddingClient
	pool       *worker.Pool
	logger     *zap.Logger
}

func NewResearchUsecase(
	research ResearchStore,
	candidates CandidateStore,
	projects ProjectStore,
	settings SettingsStore,
	taskStores func() TaskStores,
	perplexity service.ResearchClient,
	gemini EmbeddingClient,
	pool *worker.Pool,
	logger *zap.Logger,
) *ResearchUsecase {
	return &ResearchUsecase{
		research:   research,
		candidates: candidates,
		projects:   projects,
		settings:   settings,
		taskStores: taskStores,
		perplexity: perplexity,
		gemini:     gemini,
		pool:       pool,
		logger:     logger,
	}
}

// researchJob carries everything a runner needs, captured by value at spawn
// time. The runner never reads mutable request state after handoff.
type researchJob struct {
	RecordID     uuid.UUID
	CandidateID  uuid.UUID
	ProfileURL   string
	Prompt       string
	ExtraContext string
	Model        string
}

// Trigger creates the pending research record for the candidate and hands it
// to the worker pool. The project prompt and the user's preferred model are
// snapshotted here; a later edit does not affect the running task.
func (uc *ResearchUsecase) Trigger(projectID, candidateID string, user *model.User) (*model.Research, error) {
	project, err := uc.projects.FindOwnedByID(projectID, user.ID)
	if err != nil {
		return nil, err
	}

	candidate, err := uc.candidates.FindByID(candidateID)
	if err != nil {
		return nil, err
	}

	attached, err := uc.projects.HasCandidate(project.ID, candidate.ID)
	if err != nil {
		return nil, err
	}
	if !attached {
		return nil, ErrCandidateNotInProject
	}

	researchModel := model.DefaultResearchModel
	settings, err := uc.settings.FindSettingsByUser(user.ID)
	if err != nil {
		return nil, err
	}
	if settings.ResearchModel != "" {
		researchModel = settings.ResearchModel
	}

	now := time.Now()
	record := &model.Research{
		ProjectID:   project.ID,
		CandidateID: candidate.ID,
		UserID:      user.ID,
		Prompt:      project.Prompt,
		Model:       researchModel,
		Status:      model.ResearchStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.research.Create(record); err != nil {
		return nil, err
	}

	job := researchJob{
		RecordID:    record.ID,
		CandidateID: candidate.ID,
		ProfileURL:  candidate.ProfileURL,
		Prompt:      project.Prompt,
		Model:       researchModel,
	}
	if candidate.ResumeText != nil {
		job.ExtraContext = *candidate.ResumeText
	}

	if !uc.pool.Submit(record.ID, func() { uc.runResearch(job) }) {
		// A fresh id cannot collide; leave the record pending if it somehow does.
		uc.logger.Warn("research task already submitted", zap.String("research_id", record.ID.String()))
	}
	return record, nil
}

// runResearch executes one research attempt end to end and owns the record's
// status transitions: pending, in_progress, then completed or failed.
func (uc *ResearchUsecase) runResearch(job researchJob) {
	ctx := context.Background()
	stores := uc.taskStores()
	log := uc.logger.With(zap.String("research_id", job.RecordID.String()))

	record, err := stores.Research.FindByID(job.RecordID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Deleted between creation and start, e.g. a cascading candidate
			// removal. Nothing left to update.
			log.Info("research record vanished before task start")
			return
		}
		log.Error("load research record", zap.Error(err))
		return
	}
	if !model.CanTransitionResearch(record.Status, model.ResearchStatusInProgress) {
		log.Warn("research record is not pending, skipping", zap.String("status", record.Status))
		return
	}

	record.Status = model.ResearchStatusInProgress
	if err := stores.Research.Update(record); err != nil {
		log.Error("persist in_progress status", zap.Error(err))
		return
	}

	// From here on the record must always reach a terminal status, even when
	// something below panics.
	defer func() {
		if r := recover(); r != nil {
			log.Error("research task panicked", zap.Any("panic", r))
			uc.failResearch(stores, record, log, fmt.Sprintf("Research aborted by an internal error: %v", r))
		}
	}()

	raw, err := uc.clientFor(job.Model).Research(ctx, job.ProfileURL, job.Prompt, job.ExtraContext, job.Model)
	if err != nil {
		log.Warn("upstream research call failed", zap.Error(err))
		uc.failResearch(stores, record, log, describeUpstreamError(err))
		return
	}

	report, err := parser.Parse(raw)
	if err != nil {
		log.Warn("research response could not be parsed", zap.Error(err))
		record.RawResponse = &raw
		record.FullReport = ptr("The model response could not be decoded. The raw response has been kept for inspection.")
		uc.failResearch(stores, record, log, "The model did not return a valid JSON report.")
		return
	}

	if report.CandidateName != "" {
		record.CandidateName = &report.CandidateName
		uc.renameCandidate(stores, log, job.CandidateID, report.CandidateName)
	}
	record.OverallScore = report.OverallScore
	record.Summary = ptr(report.Summary)
	if report.FullReport != "" {
		record.FullReport = &report.FullReport
	}
	record.RawResponse = &report.Raw
	record.Status = model.ResearchStatusCompleted
	if err := stores.Research.Update(record); err != nil {
		log.Error("persist completed research", zap.Error(err))
		return
	}
	log.Info("research completed",
		zap.String("candidate_id", job.CandidateID.String()),
		zap.String("model", job.Model),
	)

	uc.embedCandidateSummary(ctx, stores, log, job.CandidateID, report.Summary)
}

// failResearch records the terminal failed status. Calling it on an already
// terminal record is a no-op: terminal states have no outgoing transitions.
func (uc *ResearchUsecase) failResearch(stores TaskStores, record *model.Research, log *zap.Logger, summary string) {
	if !model.CanTransitionResearch(record.Status, model.ResearchStatusFailed) {
		return
	}
	record.Status = model.ResearchStatusFailed
	record.Summary = &summary
	if err := stores.Research.Update(record); err != nil {
		log.Error("persist failed status", zap.Error(err))
	}
}

// renameCandidate propagates the researched name to the candidate so every
// research record referencing them displays it.
func (uc *ResearchUsecase) renameCandidate(stores TaskStores, log *zap.Logger, candidateID uuid.UUID, name string) {
	candidate, err := stores.Candidates.FindByID(candidateID.String())
	if err != nil {
		log.Warn("load candidate for rename", zap.Error(err))
		return
	}
	candidate.Name = &name
	if err := stores.Candidates.Update(candidate); err != nil {
		log.Warn("persist candidate name", zap.Error(err))
	}
}

// embedCandidateSummary stores a vector of the research summary on the
// candidate. Best effort: the research record is already terminal and an
// embedding failure must not change that.
func (uc *ResearchUsecase) embedCandidateSummary(ctx context.Context, stores TaskStores, log *zap.Logger, candidateID uuid.UUID, summary string) {
	if uc.gemini == nil || strings.TrimSpace(summary) == "" {
		return
	}
	values, err := uc.gemini.GenerateEmbedding(ctx, summary)
	if err != nil {
		log.Warn("embed research summary", zap.Error(err))
		return
	}
	candidate, err := stores.Candidates.FindByID(candidateID.String())
	if err != nil {
		log.Warn("load candidate for embedding", zap.Error(err))
		return
	}
	vec := pgvector.NewVector(values)
	candidate.Embedding = &vec
	if err := stores.Candidates.Update(candidate); err != nil {
		log.Warn("persist candidate embedding", zap.Error(err))
	}
}

func (uc *ResearchUsecase) clientFor(researchModel string) service.ResearchClient {
	if uc.gemini != nil && strings.HasPrefix(researchModel, "gemini") {
		return uc.gemini
	}
	return uc.perplexity
}

// GetResult returns the record for polling together with the pool's view of
// whether its task is still active.
func (uc *ResearchUsecase) GetResult(id string, userID uuid.UUID) (*model.Research, bool, error) {
	record, err := uc.research.FindOwnedByID(id, userID)
	if err != nil {
		return nil, false, err
	}
	return record, uc.pool.IsRunning(record.ID), nil
}

func (uc *ResearchUsecase) List(userID uuid.UUID, page, pageSize int) ([]model.Research, int64, error) {
	return uc.research.ListByUser(userID, page, pageSize)
}

func (uc *ResearchUsecase) Running(id uuid.UUID) bool {
	return uc.pool.IsRunning(id)
}

func describeUpstreamError(err error) string {
	switch {
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return fmt.Sprintf("The research service could not be reached: %v", err)
	case errors.Is(err, service.ErrUpstreamError):
		return fmt.Sprintf("The research service returned an error: %v", err)
	default:
		return fmt.Sprintf("Research failed: %v", err)
	}
}

func ptr(s string) *string {
	return &s
}
