package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultResearchModel = "sonar-deep-research"

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(120);uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:varchar(128)" json:"-"`
	APIToken     string    `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Settings UserSettings `json:"settings"`
}

// UserSettings is created together with the user at registration. It is
// never materialized lazily on first read.
type UserSettings struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	ResearchModel string    `gorm:"type:varchar(100)" json:"research_model"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
