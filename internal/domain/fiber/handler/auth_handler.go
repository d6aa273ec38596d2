package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/masykurm/talent-scout/internal/middleware"
	"github.com/masykurm/talent-scout/internal/usecase"
	"github.com/masykurm/talent-scout/internal/util"
)

type AuthHandler struct {
	uc *usecase.AccountUsecase
}

func NewAuthHandler(uc *usecase.AccountUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(app *fiber.App, auth fiber.Handler) {
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)

	settings := app.Group("/settings", auth)
	settings.Get("/", h.GetSettings)
	settings.Patch("/", h.UpdateSettings)
}

type registerRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	ResearchModel string `json:"research_model"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if !strings.Contains(req.Email, "@") {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: "a valid email is required",
		})
	}
	if len(req.Password) < 8 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: "password must be at least 8 characters",
		})
	}

	user, err := h.uc.Register(req.Email, req.Password, req.ResearchModel)
	if err != nil {
		if errors.Is(err, usecase.ErrEmailTaken) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: "email is already registered",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to register user",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success register user",
		Data: fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"api_token": user.APIToken,
			"settings":  user.Settings,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	user, err := h.uc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnauthorized,
				Message: "invalid email or password",
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to log in",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success log in",
		Data: fiber.Map{
			"id":        user.ID,
			"email":     user.Email,
			"api_token": user.APIToken,
		},
	})
}

func (h *AuthHandler) GetSettings(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	settings, err := h.uc.GetSettings(user.ID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load settings",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get settings",
		Data:    settings,
	})
}

type updateSettingsRequest struct {
	ResearchModel string `json:"research_model"`
}

func (h *AuthHandler) UpdateSettings(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var req updateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if req.ResearchModel == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusUnprocessableEntity,
			Message: "research_model is required",
		})
	}

	settings, err := h.uc.UpdateResearchModel(user.ID, req.ResearchModel)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to update settings",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success update settings",
		Data:    settings,
	})
}
