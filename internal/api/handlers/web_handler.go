package handlers

import (
	"errors"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/api/presenters"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/internal/web"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/bizfish/tag-a-meal-app/pkg/search"
	"github.com/gofiber/fiber/v2"
)

type (
	WebHandler interface {
		Home(c *fiber.Ctx) error
		Recipe(c *fiber.Ctx) error
	}

	webHandler struct {
		recipeService recipe.RecipeService
		searchService search.SearchService
	}
)

func NewWebHandler(recipeService recipe.RecipeService, searchService search.SearchService) WebHandler {
	return &webHandler{
		recipeService: recipeService,
		searchService: searchService,
	}
}

func (h *webHandler) Home(c *fiber.Ctx) error {
	q := recipeQuery(c)
	state := web.PageState{
		Title: "Recipes",
		User:  q.Requester,
		Query: q.Search,
	}

	res, err := h.recipeService.ListRecipes(c.Context(), q.Requester, q)
	if err != nil {
		state.Error = domain.MessageFailedGetRecipes
		return c.Status(presenters.StatusFromError(err)).Render("index", state, "layout")
	}
	state.Recipes = res.Recipes
	state.Pagination = &res.Pagination
	return c.Render("index", state, "layout")
}

func (h *webHandler) Recipe(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	state := web.PageState{User: userID}

	res, err := h.recipeService.GetRecipe(c.Context(), userID, c.Params("id"))
	if err != nil {
		state.Title = domain.MessageFailedGetRecipeDetail
		if !errors.Is(err, domain.ErrRecipeNotFound) {
			state.Title = domain.MessageInternalServerError
		}
		state.Error = state.Title
		return c.Status(presenters.StatusFromError(err)).Render("recipe", state, "layout")
	}

	units := h.searchService.Units()
	state.Title = utils.SanitizeString(res.Title, 100)
	state.Recipe = &res
	state.Units = &units
	return c.Render("recipe", state, "layout")
}
