package usecase

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/model"
	"github.com/masykurm/talent-scout/internal/repository"
	"go.uber.org/zap"
)

var ErrNoEmbedding = errors.New("candidate has no completed research to compare yet")

type ProjectUsecase struct {
	projects   *repository.ProjectRepository
	candidates *repository.CandidateRepository
	logger     *zap.Logger
}

func NewProjectUsecase(projects *repository.ProjectRepository, candidates *repository.CandidateRepository, logger *zap.Logger) *ProjectUsecase {
	return &ProjectUsecase{projects: projects, candidates: candidates, logger: logger}
}

func (uc *ProjectUsecase) Create(userID uuid.UUID, name, prompt string) (*model.Project, error) {
	now := time.Now()
	project := &model.Project{
		UserID:    userID,
		Name:      name,
		Prompt:    prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.projects.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (uc *ProjectUsecase) List(userID uuid.UUID) ([]model.Project, error) {
	return uc.projects.ListByUser(userID)
}

func (uc *ProjectUsecase) Get(id string, userID uuid.UUID) (*model.Project, error) {
	return uc.projects.FindOwnedByID(id, userID)
}

func (uc *ProjectUsecase) Delete(id string, userID uuid.UUID) error {
	project, err := uc.projects.FindOwnedByID(id, userID)
	if err != nil {
		return err
	}
	return uc.projects.Delete(project.ID.String())
}

// AttachCandidate finds or creates the candidate for the profile URL and
// attaches it to the project. Resume text, when provided, replaces whatever
// was stored before.
func (uc *ProjectUsecase) AttachCandidate(projectID string, userID uuid.UUID, profileURL, resumeText string) (*model.Candidate, error) {
	project, err := uc.projects.FindOwnedByID(projectID, userID)
	if err != nil {
		return nil, err
	}
	candidate, err := uc.candidates.FindOrCreateByProfileURL(profileURL)
	if err != nil {
		return nil, err
	}
	if resumeText != "" {
		candidate.ResumeText = &resumeText
		if err := uc.candidates.Update(candidate); err != nil {
			return nil, err
		}
	}
	if err := uc.projects.AttachCandidate(project, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

func (uc *ProjectUsecase) ListCandidates(projectID string, userID uuid.UUID) ([]model.Candidate, error) {
	project, err := uc.projects.FindOwnedByID(projectID, userID)
	if err != nil {
		return nil, err
	}
	return uc.projects.ListCandidates(project)
}

// DeleteCandidate removes a candidate the user works with. Research records
// go with it via the database cascade.
func (uc *ProjectUsecase) DeleteCandidate(id string, userID uuid.UUID) error {
	if err := uc.requireCandidateAccess(id, userID); err != nil {
		return err
	}
	return uc.candidates.Delete(id)
}

// SimilarCandidates ranks other candidates by distance between their
// research summary embeddings.
func (uc *ProjectUsecase) SimilarCandidates(id string, userID uuid.UUID, topK int) ([]model.Candidate, error) {
	if err := uc.requireCandidateAccess(id, userID); err != nil {
		return nil, err
	}
	candidate, err := uc.candidates.FindByID(id)
	if err != nil {
		return nil, err
	}
	if candidate.Embedding == nil {
		return nil, ErrNoEmbedding
	}
	return uc.candidates.SearchSimilar(*candidate.Embedding, candidate.ID.String(), topK)
}

func (uc *ProjectUsecase) requireCandidateAccess(candidateID string, userID uuid.UUID) error {
	id, err := uuid.Parse(candidateID)
	if err != nil {
		return err
	}
	ok, err := uc.projects.UserHasCandidate(userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCandidateNotInProject
	}
	return nil
}
