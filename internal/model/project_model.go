package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Name      string    `gorm:"type:varchar(120)" json:"name"`
	Prompt    string    `gorm:"type:text" json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Candidates []Candidate `gorm:"many2many:project_candidates;" json:"candidates,omitempty"`
	User       User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
