package handlers

import (
	"errors"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/ingredient"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	IngredientHandler interface {
		ListIngredients(c *fiber.Ctx) error
		GetCategories(c *fiber.Ctx) error
		GetIngredient(c *fiber.Ctx) error
		GetUsage(c *fiber.Ctx) error
		CreateIngredient(c *fiber.Ctx) error
		BulkCreateIngredients(c *fiber.Ctx) error
		UpdateIngredient(c *fiber.Ctx) error
		DeleteIngredient(c *fiber.Ctx) error
	}

	ingredientHandler struct {
		ingredientService ingredient.IngredientService
		validator         *validator.Validate
	}
)

func NewIngredientHandler(ingredientService ingredient.IngredientService, validator *validator.Validate) IngredientHandler {
	return &ingredientHandler{
		ingredientService: ingredientService,
		validator:         validator,
	}
}

func (h *ingredientHandler) ListIngredients(c *fiber.Ctx) error {
	page := pageParams(c, utils.GetConfigInt("DEFAULT_PAGE_LIMIT", utils.DefaultPageLimit))
	res, err := h.ingredientService.ListIngredients(c.Context(), middleware.UserID(c), utils.SanitizeString(c.Query("search"), 100), c.Query("category"), page)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetIngredients, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredients)
}

func (h *ingredientHandler) GetCategories(c *fiber.Ctx) error {
	res, err := h.ingredientService.GetCategories(c.Context(), middleware.UserID(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetCategories, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredients)
}

func (h *ingredientHandler) GetIngredient(c *fiber.Ctx) error {
	res, err := h.ingredientService.GetIngredient(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetIngredient, err)
	}
	return presenters.SuccessResponse(c, domain.IngredientEnvelope{Ingredient: res}, fiber.StatusOK, domain.MessageSuccessGetIngredients)
}

func (h *ingredientHandler) GetUsage(c *fiber.Ctx) error {
	res, err := h.ingredientService.GetUsage(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedIngredientUsage, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredients)
}

func (h *ingredientHandler) CreateIngredient(c *fiber.Ctx) error {
	req := new(domain.IngredientRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.ingredientService.CreateIngredient(c.Context(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedCreateIngredient, err)
	}
	return presenters.SuccessResponse(c, domain.IngredientEnvelope{Ingredient: res}, fiber.StatusCreated, domain.MessageSuccessCreateIngredient)
}

func (h *ingredientHandler) BulkCreateIngredients(c *fiber.Ctx) error {
	req := new(domain.BulkIngredientRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.ingredientService.BulkCreateIngredients(c.Context(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedCreateIngredient, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessBulkIngredients)
}

func (h *ingredientHandler) UpdateIngredient(c *fiber.Ctx) error {
	req := new(domain.IngredientRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.ingredientService.UpdateIngredient(c.Context(), middleware.UserID(c), c.Params("id"), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUpdateIngredient, err)
	}
	return presenters.SuccessResponse(c, domain.IngredientEnvelope{Ingredient: res}, fiber.StatusOK, domain.MessageSuccessUpdateIngredient)
}

func (h *ingredientHandler) DeleteIngredient(c *fiber.Ctx) error {
	err := h.ingredientService.DeleteIngredient(c.Context(), middleware.UserID(c), c.Params("id"))
	switch {
	case errors.Is(err, domain.ErrIngredientInUse):
		return presenters.ErrorResponse(c, fiber.StatusConflict, domain.ErrIngredientInUse.Error(), errors.New(domain.MessageIngredientInUseDetailed))
	case err != nil:
		return presenters.HandleError(c, domain.MessageFailedDeleteIngredient, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteIngredient)
}
