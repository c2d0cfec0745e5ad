package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/middleware"
	"github.com/sghss/sghss-api/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "auth.register", err)
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return middleware.Fail(c, "auth.register", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user registered",
		"user":    dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "auth.login", err)
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return middleware.Fail(c, "auth.login", err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "auth.refresh", err)
	}

	resp, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return middleware.Fail(c, "auth.refresh", err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "auth.logout", err)
	}

	if err := h.authService.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return middleware.Fail(c, "auth.logout", err)
	}
	return c.JSON(dto.MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return middleware.Fail(c, "auth.profile", err)
	}

	user, err := h.authService.Profile(c.UserContext(), userID)
	if err != nil {
		return middleware.Fail(c, "auth.profile", err)
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return middleware.Fail(c, "auth.change_password", err)
	}

	var req dto.ChangePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "auth.change_password", err)
	}

	if err := h.authService.ChangePassword(c.UserContext(), userID, &req); err != nil {
		return middleware.Fail(c, "auth.change_password", err)
	}
	return c.JSON(dto.MessageResponse{Message: "password changed"})
}

func (h *AuthHandler) ListProviders(c *fiber.Ctx) error {
	users, err := h.authService.ListProviders(c.UserContext())
	if err != nil {
		return middleware.Fail(c, "auth.list_providers", err)
	}

	providers := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		providers = append(providers, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"medicos": providers})
}
