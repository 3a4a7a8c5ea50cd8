package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/ingredient"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/bizfish/tag-a-meal-app/pkg/tag"
	"github.com/bizfish/tag-a-meal-app/pkg/units"
	"github.com/gofiber/fiber/v2"
)

const (
	DefaultCatalogLimit = 100
	DefaultGlobalLimit  = 50
)

type (
	SearchService interface {
		SearchRecipes(ctx context.Context, requester string, q recipe.RecipeQuery, filters domain.SearchFilters) (domain.SearchRecipesResponse, error)
		SearchIngredients(ctx context.Context, requester string, q, category string, page utils.PageParams) (domain.IngredientListResponse, error)
		SearchTags(ctx context.Context, requester string, q string, page utils.PageParams) (domain.TagListResponse, error)
		GlobalSearch(ctx context.Context, requester string, q string, limit int) (domain.GlobalSearchResponse, error)
		ConvertUnits(req domain.ConvertUnitsRequest) (domain.ConvertUnitsResponse, error)
		Units() domain.UnitsResponse
		SuggestRecipes(ctx context.Context, requester string, req domain.SuggestRecipesRequest) (domain.SuggestRecipesResponse, error)
	}

	searchService struct {
		recipeService     recipe.RecipeService
		ingredientService ingredient.IngredientService
		tagService        tag.TagService
	}
)

func NewSearchService(recipeService recipe.RecipeService, ingredientService ingredient.IngredientService, tagService tag.TagService) SearchService {
	return &searchService{
		recipeService:     recipeService,
		ingredientService: ingredientService,
		tagService:        tagService,
	}
}

// SearchRecipes runs the recipe filter pipeline and echoes the filters and
// effective sorting back to the caller.
func (s *searchService) SearchRecipes(ctx context.Context, requester string, q recipe.RecipeQuery, filters domain.SearchFilters) (domain.SearchRecipesResponse, error) {
	list, err := s.recipeService.ListRecipes(ctx, requester, q)
	if err != nil {
		return domain.SearchRecipesResponse{}, err
	}
	return domain.SearchRecipesResponse{
		Recipes:    list.Recipes,
		Pagination: list.Pagination,
		Filters:    filters,
		Sorting: domain.SearchSorting{
			SortBy:    q.SortField(),
			SortOrder: q.SortDirection(),
		},
	}, nil
}

func (s *searchService) SearchIngredients(ctx context.Context, requester string, q, category string, page utils.PageParams) (domain.IngredientListResponse, error) {
	return s.ingredientService.ListIngredients(ctx, requester, q, category, page)
}

func (s *searchService) SearchTags(ctx context.Context, requester string, q string, page utils.PageParams) (domain.TagListResponse, error) {
	return s.tagService.ListTags(ctx, requester, q, page)
}

// GlobalSearch groups recipe, ingredient and tag matches for q, each group
// capped at limit.
func (s *searchService) GlobalSearch(ctx context.Context, requester string, q string, limit int) (domain.GlobalSearchResponse, error) {
	q = utils.SanitizeString(q, 100)
	if q == "" {
		return domain.GlobalSearchResponse{}, &utils.ValidationError{Message: domain.MessageFailedGlobalSearch, StatusCode: fiber.StatusBadRequest}
	}
	if limit <= 0 {
		limit = DefaultGlobalLimit
	}
	if limit > utils.MaxPageLimit {
		limit = utils.MaxPageLimit
	}
	page := utils.PageParams{Page: 1, Limit: limit}

	recipes, err := s.recipeService.ListRecipes(ctx, requester, recipe.RecipeQuery{Search: q, Page: 1, Limit: limit})
	if err != nil {
		return domain.GlobalSearchResponse{}, err
	}
	ingredients, err := s.ingredientService.ListIngredients(ctx, requester, q, "", page)
	if err != nil {
		return domain.GlobalSearchResponse{}, err
	}
	tags, err := s.tagService.ListTags(ctx, requester, q, page)
	if err != nil {
		return domain.GlobalSearchResponse{}, err
	}

	hits := make([]domain.GlobalRecipeHit, 0, len(recipes.Recipes))
	for _, r := range recipes.Recipes {
		hit := domain.GlobalRecipeHit{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			ImageURL:    r.ImageURL,
		}
		if r.Author != nil {
			hit.AuthorName = r.Author.FullName
		}
		hits = append(hits, hit)
	}

	return domain.GlobalSearchResponse{
		Query: q,
		Results: domain.GlobalResults{
			Recipes:     hits,
			Ingredients: ingredients.Ingredients,
			Tags:        tags.Tags,
		},
		TotalResults: len(hits) + len(ingredients.Ingredients) + len(tags.Tags),
	}, nil
}

func (s *searchService) ConvertUnits(req domain.ConvertUnitsRequest) (domain.ConvertUnitsResponse, error) {
	from, to := strings.TrimSpace(req.FromUnit), strings.TrimSpace(req.ToUnit)
	if req.Quantity == nil || *req.Quantity == 0 || from == "" || to == "" {
		return domain.ConvertUnitsResponse{}, &utils.ValidationError{Message: domain.MessageFailedConvertUnits, StatusCode: fiber.StatusBadRequest}
	}

	converted, ok := units.Convert(*req.Quantity, from, to)
	if !ok {
		return domain.ConvertUnitsResponse{}, fmt.Errorf("%s to %s: %w", from, to, domain.ErrUnitsNotConvertible)
	}
	return domain.ConvertUnitsResponse{
		OriginalQuantity:  *req.Quantity,
		OriginalUnit:      from,
		ConvertedQuantity: converted,
		ConvertedUnit:     to,
		Conversion:        fmt.Sprintf("%g %s = %g %s", *req.Quantity, from, converted, to),
	}, nil
}

func (s *searchService) Units() domain.UnitsResponse {
	volume, weight := units.Units()
	return domain.UnitsResponse{Volume: volume, Weight: weight}
}

func (s *searchService) SuggestRecipes(ctx context.Context, requester string, req domain.SuggestRecipesRequest) (domain.SuggestRecipesResponse, error) {
	return s.recipeService.SuggestRecipes(ctx, requester, req)
}
