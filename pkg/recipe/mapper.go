package recipe

import (
	"sort"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/entities"
)

// canShowName reports whether u's name may be shown to requester: always to
// the user themself, otherwise only when they opted in.
func canShowName(u *entities.User, requester string) bool {
	return u != nil && (u.ShowAuthorName || u.ID.String() == requester)
}

func toAuthor(r *entities.Recipe, requester string) *domain.RecipeAuthor {
	author := &domain.RecipeAuthor{ID: r.UserID.String()}
	if canShowName(r.User, requester) {
		name := r.User.FullName
		author.FullName = &name
		author.AvatarURL = r.User.AvatarURL
	}
	return author
}

func toTagResponse(t *entities.Tag) domain.TagResponse {
	return domain.TagResponse{ID: t.ID.String(), Name: t.Name, Color: t.Color}
}

func toRatingResponse(rr *entities.RecipeRating, requester string) domain.RatingResponse {
	res := domain.RatingResponse{
		ID:        rr.ID.String(),
		RecipeID:  rr.RecipeID.String(),
		UserID:    rr.UserID.String(),
		Rating:    rr.Rating,
		Review:    rr.Review,
		CreatedAt: rr.CreatedAt,
		UpdatedAt: rr.UpdatedAt,
	}
	if canShowName(rr.User, requester) {
		name := rr.User.FullName
		res.AuthorName = &name
	}
	return res
}

// ToRecipeResponse shapes a recipe with its derived rating fields. Rating
// rows themselves are included only when withRatings is set.
func ToRecipeResponse(r *entities.Recipe, requester string, withRatings bool) domain.Recipe {
	avg, total := RatingStats(r.Ratings)

	res := domain.Recipe{
		ID:            r.ID.String(),
		UserID:        r.UserID.String(),
		Title:         r.Title,
		Description:   r.Description,
		Instructions:  r.Instructions,
		PrepTime:      r.PrepTime,
		CookTime:      r.CookTime,
		Servings:      r.Servings,
		Difficulty:    r.Difficulty,
		ImageURL:      r.ImageURL,
		IsPublic:      r.IsPublic,
		Author:        toAuthor(r, requester),
		Ingredients:   make([]domain.RecipeIngredientResponse, 0, len(r.Ingredients)),
		Tags:          make([]domain.TagResponse, 0, len(r.Tags)),
		AverageRating: avg,
		TotalRatings:  total,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	for _, ri := range r.Ingredients {
		item := domain.RecipeIngredientResponse{
			ID:           ri.ID.String(),
			IngredientID: ri.IngredientID.String(),
			Quantity:     ri.Quantity,
			Unit:         ri.Unit,
			Notes:        ri.Notes,
		}
		if ri.Ingredient != nil {
			item.Name = ri.Ingredient.Name
			item.Category = ri.Ingredient.Category
		}
		res.Ingredients = append(res.Ingredients, item)
	}

	for _, rt := range r.Tags {
		if rt.Tag != nil {
			res.Tags = append(res.Tags, toTagResponse(rt.Tag))
		}
	}
	sort.Slice(res.Tags, func(i, j int) bool { return res.Tags[i].Name < res.Tags[j].Name })

	if withRatings {
		res.Ratings = make([]domain.RatingResponse, 0, len(r.Ratings))
		for _, rr := range r.Ratings {
			res.Ratings = append(res.Ratings, toRatingResponse(rr, requester))
		}
	}
	return res
}

func ToRecipeResponses(recipes []*entities.Recipe, requester string) []domain.Recipe {
	out := make([]domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, ToRecipeResponse(r, requester, false))
	}
	return out
}
