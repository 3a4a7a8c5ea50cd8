package handlers

import (
	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/pkg/user"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		Register(c *fiber.Ctx) error
		Login(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
		Profile(c *fiber.Ctx) error
		UpdateProfile(c *fiber.Ctx) error
		RefreshToken(c *fiber.Ctx) error
		VerifyEmail(c *fiber.Ctx) error
		ResetPassword(c *fiber.Ctx) error
		UpdatePassword(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate) UserHandler {
	return &userHandler{
		userService: userService,
		validator:   validator,
	}
}

func (h *userHandler) Register(c *fiber.Ctx) error {
	req := new(domain.RegisterRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.userService.Register(c.Context(), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedRegister, err)
	}

	message := domain.MessageSuccessRegister
	if res.Session == nil {
		message = domain.MessageSuccessRegisterPending
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, message)
}

func (h *userHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.userService.Login(c.Context(), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedLogin, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

// Logout only acknowledges; tokens are stateless and expire on their own.
func (h *userHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.AccessTokenCookie)
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessLogout)
}

func (h *userHandler) Profile(c *fiber.Ctx) error {
	res, err := h.userService.GetProfile(c.Context(), middleware.UserID(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetProfile, err)
	}
	return presenters.SuccessResponse(c, domain.ProfileResponse{User: res}, fiber.StatusOK, domain.MessageSuccessGetProfile)
}

func (h *userHandler) UpdateProfile(c *fiber.Ctx) error {
	req := new(domain.UpdateProfileRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.userService.UpdateProfile(c.Context(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUpdateProfile, err)
	}
	return presenters.SuccessResponse(c, domain.ProfileResponse{User: res}, fiber.StatusOK, domain.MessageSuccessUpdateProfile)
}

func (h *userHandler) RefreshToken(c *fiber.Ctx) error {
	req := new(domain.RefreshTokenRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, "Refresh token is required", err)
	}

	session, err := h.userService.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedRefreshToken, err)
	}
	return presenters.SuccessResponse(c, domain.SessionResponse{Session: session}, fiber.StatusOK, domain.MessageSuccessRefreshToken)
}

func (h *userHandler) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageNoTokenProvided, nil)
	}
	if err := h.userService.VerifyEmail(c.Context(), token); err != nil {
		return presenters.HandleError(c, domain.MessageFailedVerifyEmail, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessVerifyEmail)
}

func (h *userHandler) ResetPassword(c *fiber.Ctx) error {
	req := new(domain.ResetPasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.userService.RequestPasswordReset(c.Context(), req.Email); err != nil {
		return presenters.HandleError(c, domain.MessageFailedResetPassword, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessResetPassword)
}

// UpdatePassword accepts either a reset token in the body or an
// authenticated caller.
func (h *userHandler) UpdatePassword(c *fiber.Ctx) error {
	req := new(domain.UpdatePasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	var err error
	switch userID := middleware.UserID(c); {
	case req.Token != "":
		err = h.userService.ResetPassword(c.Context(), req.Token, req.Password)
	case userID != "":
		err = h.userService.UpdatePassword(c.Context(), userID, req.Password)
	default:
		return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageNoTokenProvided, nil)
	}
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUpdatePassword, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessUpdatePassword)
}
