package repository

import (
	"github.com/masykurm/talent-scout/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db}
}

func (r *CandidateRepository) FindByID(id string) (*model.Candidate, error) {
	var candidate model.Candidate
	err := r.db.First(&candidate, "id = ?", id).Error
	return &candidate, err
}

// FindOrCreateByProfileURL returns the existing candidate for the URL or
// creates a fresh one. Candidates are shared across projects.
func (r *CandidateRepository) FindOrCreateByProfileURL(profileURL string) (*model.Candidate, error) {
	var candidate model.Candidate
	err := r.db.Where("profile_url = ?", profileURL).First(&candidate).Error
	if err == nil {
		return &candidate, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	candidate = model.Candidate{ProfileURL: profileURL}
	if err := r.db.Create(&candidate).Error; err != nil {
		return nil, err
	}
	return &candidate, nil
}

func (r *CandidateRepository) Update(candidate *model.Candidate) error {
	return r.db.Save(candidate).Error
}

// Delete removes the candidate, its project memberships, and cascades to its
// research records at the database level.
func (r *CandidateRepository) Delete(id string) error {
	if err := r.db.Exec("DELETE FROM project_candidates WHERE candidate_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Candidate{}, "id = ?", id).Error
}

// SearchSimilar ranks candidates by vector distance to the given embedding.
// Candidates without an embedding have not completed any research and are
// skipped.
func (r *CandidateRepository) SearchSimilar(embedding pgvector.Vector, excludeID string, topK int) ([]model.Candidate, error) {
	var candidates []model.Candidate
	err := r.db.Raw(`
        SELECT *, embedding <-> ? AS distance
        FROM candidates
        WHERE embedding IS NOT NULL AND id <> ?
        ORDER BY embedding <-> ?
        LIMIT ?
    `, embedding, excludeID, embedding, topK).Scan(&candidates).Error
	return candidates, err
}
