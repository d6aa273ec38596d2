package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ResearchStatusPending    = "pending"
	ResearchStatusInProgress = "in_progress"
	ResearchStatusCompleted  = "completed"
	ResearchStatusFailed     = "failed"
)

// researchTransitions lists the allowed next statuses for each status.
// Completed and failed are terminal.
var researchTransitions = map[string][]string{
	ResearchStatusPending:    {ResearchStatusInProgress},
	ResearchStatusInProgress: {ResearchStatusCompleted, ResearchStatusFailed},
	ResearchStatusCompleted:  {},
	ResearchStatusFailed:     {},
}

func CanTransitionResearch(from, to string) bool {
	for _, next := range researchTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Research is one attempt to research one candidate within one project.
// Prompt and Model are snapshots taken at creation time so a later edit to
// the project or the user's settings never changes a task already handed off.
type Research struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	CandidateID uuid.UUID `gorm:"type:uuid;index" json:"candidate_id"`
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Prompt      string    `gorm:"type:text" json:"prompt"`
	Model       string    `gorm:"type:varchar(100)" json:"model"`
	Status      string    `gorm:"type:varchar(50)" json:"status"`

	CandidateName *string `gorm:"type:varchar(255)" json:"candidate_name"`
	OverallScore  *int    `json:"overall_score"`
	Summary       *string `gorm:"type:text" json:"summary"`
	FullReport    *string `gorm:"type:text" json:"full_report"`
	RawResponse   *string `gorm:"type:text" json:"raw_response"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project   Project   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Candidate Candidate `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (r *Research) Terminal() bool {
	return r.Status == ResearchStatusCompleted || r.Status == ResearchStatusFailed
}
