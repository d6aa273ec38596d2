package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/masykurm/talent-scout/internal/middleware"
	"github.com/masykurm/talent-scout/internal/usecase"
	"github.com/masykurm/talent-scout/internal/util"
	"gorm.io/gorm"
)

const (
	resumeUploadDir = "./uploads/resumes/"
	maxResumeSize   = 5 * 1024 * 1024
)

type ProjectHandler struct {
	uc *usecase.ProjectUsecase
}

func NewProjectHandler(uc *usecase.ProjectUsecase) *ProjectHandler {
	return &ProjectHandler{uc: uc}
}

func (h *ProjectHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	projects := app.Group("/projects", auth)
	projects.Post("/", h.Create)
	projects.Get("/", h.List)
	projects.Get("/:id", h.Get)
	projects.Delete("/:id", h.Delete)
	projects.Post("/:id/candidates", h.AttachCandidate)
	projects.Get("/:id/candidates", h.ListCandidates)

	candidates := app.Group("/candidates", auth)
	candidates.Delete("/:id", h.DeleteCandidate)
	candidates.Get("/:id/similar", h.SimilarCandidates)
}

type projectRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: "project name is required",
		})
	}

	project, err := h.uc.Create(user.ID, req.Name, req.Prompt)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create project",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create project",
		Data:    project,
	})
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	projects, err := h.uc.List(user.ID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list projects",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success list projects",
		Data:    projects,
	})
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	project, err := h.uc.Get(c.Params("id"), user.ID)
	if err != nil {
		return notFoundOr(c, err, "project not found", "failed to load project")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get project",
		Data:    project,
	})
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := h.uc.Delete(c.Params("id"), user.ID); err != nil {
		return notFoundOr(c, err, "project not found", "failed to delete project")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success delete project",
	})
}

// AttachCandidate accepts either a JSON body with a profile_url or a
// multipart form carrying profile_url plus an optional resume PDF.
func (h *ProjectHandler) AttachCandidate(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	profileURL := strings.TrimSpace(c.FormValue("profile_url"))
	resumeText := ""
	if profileURL != "" {
		text, err := h.processResume(c)
		if err != nil {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return util.ErrorResponse(c, util.ErrorResponseFormat{
					Code:    fiberErr.Code,
					Message: fiberErr.Message,
				})
			}
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to process resume",
			}, err)
		}
		resumeText = text
	} else {
		var req struct {
			ProfileURL string `json:"profile_url"`
		}
		if err := c.BodyParser(&req); err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "invalid request body",
			}, err)
		}
		profileURL = strings.TrimSpace(req.ProfileURL)
	}
	if profileURL == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: "profile_url is required",
		})
	}

	candidate, err := h.uc.AttachCandidate(c.Params("id"), user.ID, profileURL, resumeText)
	if err != nil {
		return notFoundOr(c, err, "project not found", "failed to attach candidate")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success attach candidate",
		Data:    candidate,
	})
}

// processResume saves the optional multipart resume and extracts its text.
// A rejected file comes back as a *fiber.Error so the caller answers with
// that status instead of attaching the candidate without the resume.
func (h *ProjectHandler) processResume(c *fiber.Ctx) (string, error) {
	file, err := c.FormFile("resume")
	if err != nil {
		// The field is optional.
		return "", nil
	}
	if file.Size > maxResumeSize {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "resume file size is too large (max 5MB)")
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		return "", fiber.NewError(fiber.StatusUnprocessableEntity, "unsupported resume file type, only PDF is accepted")
	}

	savePath := filepath.Join(resumeUploadDir, fmt.Sprintf("%s-%s", c.Params("id"), file.Filename))
	if err := c.SaveFile(file, savePath); err != nil {
		return "", fmt.Errorf("save resume file: %w", err)
	}

	content, err := util.ExtractPDFText(savePath)
	if err != nil {
		return "", fiber.NewError(fiber.StatusUnprocessableEntity, "failed to extract resume text")
	}
	return content, nil
}

func (h *ProjectHandler) ListCandidates(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	candidates, err := h.uc.ListCandidates(c.Params("id"), user.ID)
	if err != nil {
		return notFoundOr(c, err, "project not found", "failed to list candidates")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success list candidates",
		Data:    candidates,
	})
}

func (h *ProjectHandler) DeleteCandidate(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := h.uc.DeleteCandidate(c.Params("id"), user.ID); err != nil {
		if errors.Is(err, usecase.ErrCandidateNotInProject) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "candidate not found",
			})
		}
		return notFoundOr(c, err, "candidate not found", "failed to delete candidate")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success delete candidate",
	})
}

func (h *ProjectHandler) SimilarCandidates(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	topK, err := strconv.Atoi(c.Query("limit", "5"))
	if err != nil || topK <= 0 || topK > 50 {
		topK = 5
	}

	candidates, err := h.uc.SimilarCandidates(c.Params("id"), user.ID, topK)
	if err != nil {
		if errors.Is(err, usecase.ErrNoEmbedding) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: "candidate has no completed research to compare yet",
			})
		}
		if errors.Is(err, usecase.ErrCandidateNotInProject) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "candidate not found",
			})
		}
		return notFoundOr(c, err, "candidate not found", "failed to search similar candidates")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success search similar candidates",
		Data:    candidates,
	})
}

func notFoundOr(c *fiber.Ctx, err error, notFoundMsg, fallbackMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: notFoundMsg,
		})
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Message: fallbackMsg,
	}, err)
}
