package repository

import (
	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db}
}

// Create persists the user together with the settings row built by the
// caller, in one transaction.
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, "email = ?", email).Error
	return &user, err
}

func (r *UserRepository) FindByToken(token string) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, "api_token = ?", token).Error
	return &user, err
}

func (r *UserRepository) FindSettingsByUser(userID uuid.UUID) (*model.UserSettings, error) {
	var settings model.UserSettings
	err := r.db.First(&settings, "user_id = ?", userID).Error
	return &settings, err
}

func (r *UserRepository) UpdateSettings(settings *model.UserSettings) error {
	return r.db.Save(settings).Error
}
