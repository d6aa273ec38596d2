package repository

import (
	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/model"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db}
}

func (r *ProjectRepository) Create(project *model.Project) error {
	return r.db.Create(project).Error
}

func (r *ProjectRepository) FindOwnedByID(id string, userID uuid.UUID) (*model.Project, error) {
	var project model.Project
	err := r.db.First(&project, "id = ? AND user_id = ?", id, userID).Error
	return &project, err
}

func (r *ProjectRepository) ListByUser(userID uuid.UUID) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// Delete removes the project and cascades to its research records at the
// database level. Attached candidates are kept since they are shared.
func (r *ProjectRepository) Delete(id string) error {
	if err := r.db.Exec("DELETE FROM project_candidates WHERE project_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Project{}, "id = ?", id).Error
}

func (r *ProjectRepository) AttachCandidate(project *model.Project, candidate *model.Candidate) error {
	return r.db.Model(project).Association("Candidates").Append(candidate)
}

func (r *ProjectRepository) ListCandidates(project *model.Project) ([]model.Candidate, error) {
	var candidates []model.Candidate
	err := r.db.Model(project).Association("Candidates").Find(&candidates)
	return candidates, err
}

func (r *ProjectRepository) HasCandidate(projectID, candidateID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Table("project_candidates").
		Where("project_id = ? AND candidate_id = ?", projectID, candidateID).
		Count(&count).Error
	return count > 0, err
}

// UserHasCandidate reports whether the candidate is attached to any project
// owned by the user.
func (r *ProjectRepository) UserHasCandidate(userID, candidateID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Raw(`
        SELECT count(*)
        FROM project_candidates pc
        JOIN projects p ON p.id = pc.project_id
        WHERE pc.candidate_id = ? AND p.user_id = ?
    `, candidateID, userID).Scan(&count).Error
	return count > 0, err
}
