package handlers

import (
	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	RecipeHandler interface {
		ListRecipes(c *fiber.Ctx) error
		MyRecipes(c *fiber.Ctx) error
		GetRecipe(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		UpdateRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		CopyRecipe(c *fiber.Ctx) error
		RateRecipe(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, validator *validator.Validate) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		validator:     validator,
	}
}

func (h *recipeHandler) ListRecipes(c *fiber.Ctx) error {
	q := recipeQuery(c)
	res, err := h.recipeService.ListRecipes(c.Context(), q.Requester, q)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) MyRecipes(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	page := pageParams(c, utils.DefaultRecipeLimit)

	res, err := h.recipeService.ListRecipes(c.Context(), userID, recipe.RecipeQuery{
		Requester: userID,
		OwnerID:   userID,
		Page:      page.Page,
		Limit:     page.Limit,
		Search:    utils.SanitizeString(c.Query("search"), 100),
	})
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}

func (h *recipeHandler) GetRecipe(c *fiber.Ctx) error {
	res, err := h.recipeService.GetRecipe(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetRecipeDetail, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipeDetail)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	req := new(domain.RecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateRecipe, err)
	}

	res, err := h.recipeService.CreateRecipe(c.Context(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedCreateRecipe, err)
	}
	return presenters.SuccessResponse(c, domain.RecipeEnvelope{Recipe: res}, fiber.StatusCreated, domain.MessageSuccessCreateRecipe)
}

func (h *recipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	req := new(domain.RecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateRecipe, err)
	}

	res, err := h.recipeService.UpdateRecipe(c.Context(), middleware.UserID(c), c.Params("id"), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedUpdateRecipe, err)
	}
	return presenters.SuccessResponse(c, domain.RecipeEnvelope{Recipe: res}, fiber.StatusOK, domain.MessageSuccessUpdateRecipe)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	if err := h.recipeService.DeleteRecipe(c.Context(), middleware.UserID(c), c.Params("id")); err != nil {
		return presenters.HandleError(c, domain.MessageFailedDeleteRecipe, err)
	}
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteRecipe)
}

func (h *recipeHandler) CopyRecipe(c *fiber.Ctx) error {
	res, err := h.recipeService.CopyRecipe(c.Context(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedCopyRecipe, err)
	}
	return presenters.SuccessResponse(c, domain.RecipeEnvelope{Recipe: res}, fiber.StatusCreated, domain.MessageSuccessCopyRecipe)
}

func (h *recipeHandler) RateRecipe(c *fiber.Ctx) error {
	req := new(domain.RateRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.recipeService.RateRecipe(c.Context(), middleware.UserID(c), c.Params("id"), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedRateRecipe, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessRateRecipe)
}
