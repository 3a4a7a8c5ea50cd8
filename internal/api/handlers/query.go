package handlers

import (
	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/middleware"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/gofiber/fiber/v2"
)

func pageParams(c *fiber.Ctx, defaultLimit int) utils.PageParams {
	return utils.ValidatePagination(c.Query("page"), c.Query("limit"), defaultLimit)
}

// recipeQuery reads the listing and search query string shared by
// /api/recipes and /api/search/recipes.
func recipeQuery(c *fiber.Ctx) recipe.RecipeQuery {
	page := pageParams(c, utils.DefaultRecipeLimit)
	params := utils.ValidateSearchParams(firstNonEmpty(c.Query("q"), c.Query("search")), c.Query("sortBy"), c.Query("sortOrder"), c.Query("difficulty"))

	q := recipe.RecipeQuery{
		Requester:          middleware.UserID(c),
		OwnerID:            c.Query("userId"),
		PublicOnly:         c.QueryBool("publicOnly", false),
		Page:               page.Page,
		Limit:              page.Limit,
		Search:             params.Q,
		Title:              utils.SanitizeString(c.Query("title"), 100),
		Description:        utils.SanitizeString(c.Query("description"), 100),
		Difficulty:         params.Difficulty,
		Author:             utils.SanitizeString(c.Query("author"), 100),
		Tags:               utils.SplitList(c.Query("tags")),
		Ingredients:        utils.SplitList(c.Query("ingredients")),
		IncludeIngredients: utils.SplitList(c.Query("includeIngredients")),
		ExcludeIngredients: utils.SplitList(c.Query("excludeIngredients")),
		SortBy:             params.SortBy,
		SortOrder:          params.SortOrder,
	}
	q.PrepTime, _ = recipe.ParseNumericFilter(c.Query("prepTime"), "lte")
	q.CookTime, _ = recipe.ParseNumericFilter(c.Query("cookTime"), "lte")
	q.Servings, _ = recipe.ParseNumericFilter(c.Query("servings"), "eq")
	q.Rating, _ = recipe.ParseNumericFilter(c.Query("rating"), "gte")
	return q
}

// searchFilters echoes the raw filters back in search responses.
func searchFilters(c *fiber.Ctx) domain.SearchFilters {
	return domain.SearchFilters{
		Q:                  c.Query("q"),
		Title:              c.Query("title"),
		Description:        c.Query("description"),
		Ingredients:        c.Query("ingredients"),
		IncludeIngredients: c.Query("includeIngredients"),
		ExcludeIngredients: c.Query("excludeIngredients"),
		Tags:               c.Query("tags"),
		Difficulty:         c.Query("difficulty"),
		PrepTime:           c.Query("prepTime"),
		CookTime:           c.Query("cookTime"),
		Servings:           c.Query("servings"),
		Rating:             c.Query("rating"),
		Author:             c.Query("author"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
