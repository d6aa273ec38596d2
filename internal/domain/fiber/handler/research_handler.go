package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/masykurm/talent-scout/internal/dto"
	"github.com/masykurm/talent-scout/internal/middleware"
	"github.com/masykurm/talent-scout/internal/response"
	"github.com/masykurm/talent-scout/internal/usecase"
	"github.com/masykurm/talent-scout/internal/util"
)

type ResearchHandler struct {
	uc *usecase.ResearchUsecase
}

func NewResearchHandler(uc *usecase.ResearchUsecase) *ResearchHandler {
	return &ResearchHandler{uc: uc}
}

func (h *ResearchHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Post("/projects/:projectID/candidates/:candidateID/research",
		auth, middleware.RateLimiter(1, 4*time.Second), h.Trigger)

	research := app.Group("/research", auth)
	research.Get("/", h.List)
	research.Get("/:id", h.Result)
}

// Trigger creates the pending research record and hands it off to the
// background runner. It answers immediately; the caller polls the result
// endpoint.
func (h *ResearchHandler) Trigger(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	record, err := h.uc.Trigger(c.Params("projectID"), c.Params("candidateID"), user)
	if err != nil {
		if errors.Is(err, usecase.ErrCandidateNotInProject) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnprocessableEntity,
				Message: "candidate is not attached to this project",
			})
		}
		return notFoundOr(c, err, "project or candidate not found", "failed to start research")
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Success start research",
		Data:    dto.NewResearchDTO(record, h.uc.Running(record.ID)),
	})
}

// Result is the polling surface. Pending and in_progress both mean the task
// is still working.
func (h *ResearchHandler) Result(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	record, running, err := h.uc.GetResult(c.Params("id"), user.ID)
	if err != nil {
		return notFoundOr(c, err, "research not found", "failed to load research")
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get research result",
		Data:    dto.NewResearchDTO(record, running),
	})
}

func (h *ResearchHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	records, total, err := h.uc.List(user.ID, page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list research",
		}, err)
	}

	items := make([]dto.ResearchDTO, 0, len(records))
	for i := range records {
		items = append(items, dto.NewResearchDTO(&records[i], h.uc.Running(records[i].ID)))
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list research",
		Data:       items,
		Pagination: response.NewPagination(page, pageSize, total),
	})
}
