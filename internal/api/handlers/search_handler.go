package handlers

import (
	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/search"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	SearchHandler interface {
		SearchRecipes(c *fiber.Ctx) error
		SearchIngredients(c *fiber.Ctx) error
		SearchTags(c *fiber.Ctx) error
		GlobalSearch(c *fiber.Ctx) error
		ConvertUnits(c *fiber.Ctx) error
		Units(c *fiber.Ctx) error
		SuggestRecipes(c *fiber.Ctx) error
	}

	searchHandler struct {
		searchService search.SearchService
		validator     *validator.Validate
	}
)

func NewSearchHandler(searchService search.SearchService, validator *validator.Validate) SearchHandler {
	return &searchHandler{
		searchService: searchService,
		validator:     validator,
	}
}

func (h *searchHandler) SearchRecipes(c *fiber.Ctx) error {
	q := recipeQuery(c)
	res, err := h.searchService.SearchRecipes(c.Context(), q.Requester, q, searchFilters(c))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedSearchRecipes, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSearch)
}

func (h *searchHandler) SearchIngredients(c *fiber.Ctx) error {
	page := pageParams(c, search.DefaultCatalogLimit)
	res, err := h.searchService.SearchIngredients(c.Context(), middleware.UserID(c), utils.SanitizeString(c.Query("q"), 100), c.Query("category"), page)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedSearchIngredients, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetIngredients)
}

func (h *searchHandler) SearchTags(c *fiber.Ctx) error {
	page := pageParams(c, search.DefaultCatalogLimit)
	res, err := h.searchService.SearchTags(c.Context(), middleware.UserID(c), utils.SanitizeString(c.Query("q"), 100), page)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedSearchTags, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetTags)
}

func (h *searchHandler) GlobalSearch(c *fiber.Ctx) error {
	res, err := h.searchService.GlobalSearch(c.Context(), middleware.UserID(c), utils.SanitizeString(c.Query("q"), 100), c.QueryInt("limit", search.DefaultGlobalLimit))
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGlobalSearch, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessSearch)
}

func (h *searchHandler) ConvertUnits(c *fiber.Ctx) error {
	req := new(domain.ConvertUnitsRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.searchService.ConvertUnits(*req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageUnitsNotConvertible, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessConvertUnits)
}

func (h *searchHandler) Units(c *fiber.Ctx) error {
	return presenters.SuccessResponse(c, h.searchService.Units(), fiber.StatusOK, domain.MessageSuccessGetUnits)
}

func (h *searchHandler) SuggestRecipes(c *fiber.Ctx) error {
	req := new(domain.SuggestRecipesRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.searchService.SuggestRecipes(c.Context(), middleware.UserID(c), *req)
	if err != nil {
		return presenters.HandleError(c, domain.MessageFailedGetSuggestions, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetRecipes)
}
