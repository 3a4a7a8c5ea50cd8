package recipe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/internal/metrics"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultSuggestLimit = 50
	copySuffix          = " (Copy)"
)

type (
	RecipeService interface {
		ListRecipes(ctx context.Context, requester string, q RecipeQuery) (domain.RecipeListResponse, error)
		GetRecipe(ctx context.Context, requester string, id string) (domain.Recipe, error)
		CreateRecipe(ctx context.Context, userID string, req domain.RecipeRequest) (domain.Recipe, error)
		UpdateRecipe(ctx context.Context, userID string, id string, req domain.RecipeRequest) (domain.Recipe, error)
		DeleteRecipe(ctx context.Context, userID string, id string) error
		CopyRecipe(ctx context.Context, userID string, id string) (domain.Recipe, error)
		RateRecipe(ctx context.Context, userID string, id string, req domain.RateRecipeRequest) (domain.RatingEnvelope, error)
		SuggestRecipes(ctx context.Context, requester string, req domain.SuggestRecipesRequest) (domain.SuggestRecipesResponse, error)
	}

	recipeService struct {
		recipeRepository RecipeRepository
	}
)

func NewRecipeService(recipeRepository RecipeRepository) RecipeService {
	return &recipeService{
		recipeRepository: recipeRepository,
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrRecipeNotFound
	}
	return err
}

func parseRecipeID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrRecipeNotFound
	}
	return parsed, nil
}

func parseUserID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrParseUUID
	}
	return parsed, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *recipeService) ListRecipes(ctx context.Context, requester string, q RecipeQuery) (domain.RecipeListResponse, error) {
	q.Requester = requester
	recipes, total, err := s.recipeRepository.ListRecipes(ctx, database.User(requester), q)
	if err != nil {
		return domain.RecipeListResponse{}, err
	}
	return domain.RecipeListResponse{
		Recipes:    ToRecipeResponses(recipes, requester),
		Pagination: domain.NewPagination(q.Page, q.Limit, total),
	}, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, requester string, id string) (domain.Recipe, error) {
	recipeID, err := parseRecipeID(id)
	if err != nil {
		return domain.Recipe{}, err
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, database.User(requester), recipeID, true)
	if err != nil {
		return domain.Recipe{}, notFound(err)
	}
	return ToRecipeResponse(recipe, requester, true), nil
}

// owned loads a recipe visible to userID and checks that userID owns it.
func (s *recipeService) owned(ctx context.Context, userID string, id string) (*entities.Recipe, uuid.UUID, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	recipeID, err := parseRecipeID(id)
	if err != nil {
		return nil, uuid.Nil, err
	}
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, database.User(userID), recipeID, false)
	if err != nil {
		return nil, uuid.Nil, notFound(err)
	}
	if recipe.UserID != uid {
		return nil, uuid.Nil, domain.ErrUnauthorizedRecipeAccess
	}
	return recipe, uid, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, userID string, req domain.RecipeRequest) (domain.Recipe, error) {
	if verr := utils.ValidateRecipeData(req); verr != nil {
		return domain.Recipe{}, verr
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return domain.Recipe{}, err
	}

	p := database.User(userID)
	var created *entities.Recipe
	err = s.recipeRepository.Transaction(ctx, p, func(tx RecipeRepository) error {
		recipe := &entities.Recipe{
			UserID:       uid,
			Title:        strings.TrimSpace(req.Title),
			Instructions: strings.TrimSpace(req.Instructions),
			PrepTime:     req.PrepTime,
			CookTime:     req.CookTime,
			Servings:     req.Servings,
			Difficulty:   trimmedOrNil(req.Difficulty),
			ImageURL:     trimmedOrNil(req.ImageURL),
			IsPublic:     req.IsPublic != nil && *req.IsPublic,
		}
		if req.Description != nil {
			recipe.Description = strings.TrimSpace(*req.Description)
		}
		if err := tx.CreateRecipe(ctx, p, recipe); err != nil {
			return err
		}

		if err := s.applyChildren(ctx, tx, p, recipe.ID, req); err != nil {
			return err
		}

		var err error
		created, err = tx.GetRecipeByID(ctx, p, recipe.ID, false)
		return err
	})
	if err != nil {
		log.Errorf("create recipe for %s: %v", userID, err)
		return domain.Recipe{}, err
	}
	metrics.RecordRecipeMutation("create")
	return ToRecipeResponse(created, userID, false), nil
}

func (s *recipeService) UpdateRecipe(ctx context.Context, userID string, id string, req domain.RecipeRequest) (domain.Recipe, error) {
	if verr := utils.ValidateRecipeData(req); verr != nil {
		return domain.Recipe{}, verr
	}
	existing, _, err := s.owned(ctx, userID, id)
	if err != nil {
		return domain.Recipe{}, err
	}

	updates := map[string]any{
		"title":        strings.TrimSpace(req.Title),
		"instructions": strings.TrimSpace(req.Instructions),
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.PrepTime != nil {
		updates["prep_time"] = *req.PrepTime
	}
	if req.CookTime != nil {
		updates["cook_time"] = *req.CookTime
	}
	if req.Servings != nil {
		updates["servings"] = *req.Servings
	}
	if req.Difficulty != nil {
		updates["difficulty"] = trimmedOrNil(req.Difficulty)
	}
	if req.ImageURL != nil {
		updates["image_url"] = trimmedOrNil(req.ImageURL)
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}

	p := database.User(userID)
	var updated *entities.Recipe
	err = s.recipeRepository.Transaction(ctx, p, func(tx RecipeRepository) error {
		if err := tx.UpdateRecipe(ctx, p, existing.ID, updates); err != nil {
			return notFound(err)
		}
		if err := s.applyChildren(ctx, tx, p, existing.ID, req); err != nil {
			return err
		}
		var err error
		updated, err = tx.GetRecipeByID(ctx, p, existing.ID, false)
		return err
	})
	if err != nil {
		return domain.Recipe{}, err
	}
	metrics.RecordRecipeMutation("update")
	return ToRecipeResponse(updated, userID, false), nil
}

// applyChildren replaces ingredient and tag links for the lists present in
// req. A nil list leaves the current links untouched.
func (s *recipeService) applyChildren(ctx context.Context, tx RecipeRepository, p database.Principal, recipeID uuid.UUID, req domain.RecipeRequest) error {
	if req.Ingredients != nil {
		items, err := s.resolveIngredients(ctx, tx, p, *req.Ingredients)
		if err != nil {
			return err
		}
		if err := tx.ReplaceIngredients(ctx, p, recipeID, items); err != nil {
			return err
		}
	}
	if req.Tags != nil {
		tagIDs, err := s.resolveTags(ctx, tx, p, *req.Tags)
		if err != nil {
			return err
		}
		if err := tx.ReplaceTags(ctx, p, recipeID, tagIDs); err != nil {
			return err
		}
	}
	return nil
}

// resolveIngredients finds or creates each named ingredient. Entries without
// a name are skipped and repeats of an ingredient keep the first entry.
func (s *recipeService) resolveIngredients(ctx context.Context, tx RecipeRepository, p database.Principal, reqs []domain.RecipeIngredientRequest) ([]*entities.RecipeIngredient, error) {
	seen := map[uuid.UUID]bool{}
	items := make([]*entities.RecipeIngredient, 0, len(reqs))
	for _, in := range reqs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		ingredient, err := tx.FindOrCreateIngredient(ctx, p, name, trimmedOrNil(in.Category))
		if err != nil {
			return nil, err
		}
		if seen[ingredient.ID] {
			continue
		}
		seen[ingredient.ID] = true
		items = append(items, &entities.RecipeIngredient{
			IngredientID: ingredient.ID,
			Quantity:     in.Quantity,
			Unit:         trimmedOrNil(in.Unit),
			Notes:        trimmedOrNil(in.Notes),
		})
	}
	return items, nil
}

// resolveTags accepts tag ids or tag names. Unknown ids are rejected while
// unknown names create a tag with the default color.
func (s *recipeService) resolveTags(ctx context.Context, tx RecipeRepository, p database.Principal, refs []string) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}

		var tag *entities.Tag
		var err error
		if id, perr := uuid.Parse(ref); perr == nil {
			tag, err = tx.GetTagByID(ctx, p, id)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("tag %s: %w", ref, gorm.ErrForeignKeyViolated)
			}
		} else {
			tag, err = tx.FindOrCreateTag(ctx, p, ref, domain.DefaultTagColor)
		}
		if err != nil {
			return nil, err
		}

		if !seen[tag.ID] {
			seen[tag.ID] = true
			ids = append(ids, tag.ID)
		}
	}
	return ids, nil
}

func (s *recipeService) DeleteRecipe(ctx context.Context, userID string, id string) error {
	existing, _, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.recipeRepository.DeleteRecipe(ctx, database.User(userID), existing.ID); err != nil {
		return notFound(err)
	}
	metrics.RecordRecipeMutation("delete")
	return nil
}

// CopyRecipe duplicates a visible recipe, with its ingredients and tags,
// into a private recipe owned by userID.
func (s *recipeService) CopyRecipe(ctx context.Context, userID string, id string) (domain.Recipe, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return domain.Recipe{}, err
	}
	recipeID, err := parseRecipeID(id)
	if err != nil {
		return domain.Recipe{}, err
	}

	p := database.User(userID)
	var copied *entities.Recipe
	err = s.recipeRepository.Transaction(ctx, p, func(tx RecipeRepository) error {
		source, err := tx.GetRecipeByID(ctx, p, recipeID, false)
		if err != nil {
			return notFound(err)
		}

		recipe := &entities.Recipe{
			UserID:       uid,
			Title:        source.Title + copySuffix,
			Description:  source.Description,
			Instructions: source.Instructions,
			PrepTime:     source.PrepTime,
			CookTime:     source.CookTime,
			Servings:     source.Servings,
			Difficulty:   source.Difficulty,
			ImageURL:     source.ImageURL,
			IsPublic:     false,
		}
		if err := tx.CreateRecipe(ctx, p, recipe); err != nil {
			return err
		}

		items := make([]*entities.RecipeIngredient, 0, len(source.Ingredients))
		for _, ri := range source.Ingredients {
			items = append(items, &entities.RecipeIngredient{
				IngredientID: ri.IngredientID,
				Quantity:     ri.Quantity,
				Unit:         ri.Unit,
				Notes:        ri.Notes,
			})
		}
		if err := tx.ReplaceIngredients(ctx, p, recipe.ID, items); err != nil {
			return err
		}

		tagIDs := make([]uuid.UUID, 0, len(source.Tags))
		for _, rt := range source.Tags {
			tagIDs = append(tagIDs, rt.TagID)
		}
		if err := tx.ReplaceTags(ctx, p, recipe.ID, tagIDs); err != nil {
			return err
		}

		copied, err = tx.GetRecipeByID(ctx, p, recipe.ID, false)
		return err
	})
	if err != nil {
		return domain.Recipe{}, err
	}
	metrics.RecordRecipeMutation("copy")
	return ToRecipeResponse(copied, userID, false), nil
}

func (s *recipeService) RateRecipe(ctx context.Context, userID string, id string, req domain.RateRecipeRequest) (domain.RatingEnvelope, error) {
	if verr := utils.ValidateRatingData(req.Rating); verr != nil {
		return domain.RatingEnvelope{}, verr
	}
	uid, err := parseUserID(userID)
	if err != nil {
		return domain.RatingEnvelope{}, err
	}
	recipeID, err := parseRecipeID(id)
	if err != nil {
		return domain.RatingEnvelope{}, err
	}

	p := database.User(userID)
	var res domain.RatingEnvelope
	err = s.recipeRepository.Transaction(ctx, p, func(tx RecipeRepository) error {
		if _, err := tx.GetRecipeByID(ctx, p, recipeID, false); err != nil {
			return notFound(err)
		}

		stored, err := tx.UpsertRating(ctx, p, &entities.RecipeRating{
			RecipeID: recipeID,
			UserID:   uid,
			Rating:   int(*req.Rating),
			Review:   trimmedOrNil(req.Review),
		})
		if err != nil {
			return err
		}

		ratings, err := tx.GetRatings(ctx, p, recipeID)
		if err != nil {
			return err
		}
		avg, total := RatingStats(ratings)
		res = domain.RatingEnvelope{
			Rating:        toRatingResponse(stored, userID),
			AverageRating: avg,
			TotalRatings:  total,
		}
		return nil
	})
	if err != nil {
		return domain.RatingEnvelope{}, err
	}
	metrics.RecordRecipeMutation("rate")
	return res, nil
}

// SuggestRecipes ranks public recipes by how many of the given ingredients
// they use.
func (s *recipeService) SuggestRecipes(ctx context.Context, requester string, req domain.SuggestRecipesRequest) (domain.SuggestRecipesResponse, error) {
	var terms []string
	for _, in := range req.Ingredients {
		if t := strings.TrimSpace(in); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return domain.SuggestRecipesResponse{}, &utils.ValidationError{Message: domain.MessageFailedSuggestRecipes, StatusCode: 400}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > utils.MaxPageLimit {
		limit = utils.MaxPageLimit
	}

	candidates, _, err := s.recipeRepository.ListRecipes(ctx, database.User(requester), RecipeQuery{
		PublicOnly:  true,
		Ingredients: terms,
	})
	if err != nil {
		return domain.SuggestRecipesResponse{}, err
	}

	suggestions := make([]domain.SuggestedRecipe, 0, len(candidates))
	for _, r := range candidates {
		matched := MatchedIngredients(r, terms)
		if len(matched) == 0 {
			continue
		}
		suggestions = append(suggestions, domain.SuggestedRecipe{
			Recipe:             ToRecipeResponse(r, requester, false),
			MatchedIngredients: matched,
			MatchScore:         len(matched),
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].MatchScore > suggestions[j].MatchScore
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	return domain.SuggestRecipesResponse{
		SearchIngredients: req.Ingredients,
		SuggestedRecipes:  suggestions,
		TotalSuggestions:  len(suggestions),
	}, nil
}
