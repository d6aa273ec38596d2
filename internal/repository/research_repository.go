package repository

import (
	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/model"
	"gorm.io/gorm"
)

type ResearchRepository struct {
	db *gorm.DB
}

func NewResearchRepository(db *gorm.DB) *ResearchRepository {
	return &ResearchRepository{db}
}

func (r *ResearchRepository) Create(research *model.Research) error {
	return r.db.Create(research).Error
}

func (r *ResearchRepository) Update(research *model.Research) error {
	return r.db.Save(research).Error
}

func (r *ResearchRepository) FindByID(id string) (*model.Research, error) {
	var research model.Research
	err := r.db.First(&research, "id = ?", id).Error
	return &research, err
}

func (r *ResearchRepository) FindOwnedByID(id string, userID uuid.UUID) (*model.Research, error) {
	var research model.Research
	err := r.db.First(&research, "id = ? AND user_id = ?", id, userID).Error
	return &research, err
}

func (r *ResearchRepository) ListByUser(userID uuid.UUID, page, pageSize int) ([]model.Research, int64, error) {
	var (
		researches []model.Research
		total      int64
	)
	query := r.db.Model(&model.Research{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&researches).Error
	return researches, total, err
}
