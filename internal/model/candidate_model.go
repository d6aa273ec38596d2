package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Candidate is shared across projects and keyed by the public profile URL.
// Name is filled in by the first completed research and shown everywhere the
// candidate appears. Embedding holds a vector of the latest research summary
// and powers similar-candidate search.
type Candidate struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProfileURL string           `gorm:"type:varchar(256);uniqueIndex" json:"profile_url"`
	Name       *string          `gorm:"type:varchar(255)" json:"name"`
	ResumeText *string          `gorm:"type:text" json:"resume_text,omitempty"`
	Embedding  *pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
