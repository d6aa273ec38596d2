package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/masykurm/talent-scout/internal/model"
)

// ResearchDTO is the polling surface for one research attempt. Running is
// the worker pool's live view and complements Status: a pending record whose
// task is queued reports running=true.
type ResearchDTO struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"project_id"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	Status        string    `json:"status"`
	Running       bool      `json:"running"`
	Model         string    `json:"model"`
	CandidateName *string   `json:"candidate_name"`
	OverallScore  *int      `json:"overall_score"`
	Summary       *string   `json:"summary"`
	FullReport    *string   `json:"full_report"`
	RawResponse   *string   `json:"raw_response"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewResearchDTO(r *model.Research, running bool) ResearchDTO {
	return ResearchDTO{
		ID:            r.ID,
		ProjectID:     r.ProjectID,
		CandidateID:   r.CandidateID,
		Status:        r.Status,
		Running:       running,
		Model:         r.Model,
		CandidateName: r.CandidateName,
		OverallScore:  r.OverallScore,
		Summary:       r.Summary,
		FullReport:    r.FullReport,
		RawResponse:   r.RawResponse,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
