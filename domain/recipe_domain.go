package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "Recipe created successfully"
	MessageSuccessUpdateRecipe    = "Recipe updated successfully"
	MessageSuccessCopyRecipe      = "Recipe copied successfully"
	MessageSuccessDeleteRecipe    = "Recipe deleted successfully"
	MessageSuccessRateRecipe      = "Recipe rated successfully"

	MessageFailedGetRecipes      = "Failed to fetch recipes"
	MessageFailedGetRecipeDetail = "Recipe not found"
	MessageFailedCreateRecipe    = "Failed to create recipe"
	MessageFailedUpdateRecipe    = "Failed to update recipe"
	MessageFailedCopyRecipe      = "Failed to copy recipe"
	MessageFailedDeleteRecipe    = "Failed to delete recipe"
	MessageFailedRateRecipe      = "Failed to rate recipe"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("not authorized to modify this recipe")
)

type (
	RecipeIngredientRequest struct {
		Name     string   `json:"name"`
		Category *string  `json:"category"`
		Quantity *float64 `json:"quantity"`
		Unit     *string  `json:"unit"`
		Notes    *string  `json:"notes"`
	}

	// RecipeRequest is shared by create and update. On update a nil
	// Ingredients or Tags leaves the existing links untouched, while a
	// non-nil (possibly empty) slice replaces them.
	RecipeRequest struct {
		Title        string                     `json:"title"`
		Description  *string                    `json:"description"`
		Instructions string                     `json:"instructions"`
		PrepTime     *int                       `json:"prepTime"`
		CookTime     *int                       `json:"cookTime"`
		Servings     *int                       `json:"servings"`
		Difficulty   *string                    `json:"difficulty"`
		ImageURL     *string                    `json:"imageUrl"`
		IsPublic     *bool                      `json:"isPublic"`
		Ingredients  *[]RecipeIngredientRequest `json:"ingredients"`
		Tags         *[]string                  `json:"tags"`
	}

	RateRecipeRequest struct {
		Rating *float64 `json:"rating"`
		Review *string  `json:"review"`
	}

	RecipeAuthor struct {
		ID        string  `json:"id"`
		FullName  *string `json:"fullName"`
		AvatarURL *string `json:"avatarUrl"`
	}

	RecipeIngredientResponse struct {
		ID           string   `json:"id"`
		IngredientID string   `json:"ingredientId"`
		Name         string   `json:"name"`
		Category     *string  `json:"category"`
		Quantity     *float64 `json:"quantity"`
		Unit         *string  `json:"unit"`
		Notes        *string  `json:"notes"`
	}

	RatingResponse struct {
		ID         string    `json:"id"`
		RecipeID   string    `json:"recipeId"`
		UserID     string    `json:"userId"`
		Rating     int       `json:"rating"`
		Review     *string   `json:"review"`
		AuthorName *string   `json:"authorName,omitempty"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}

	Recipe struct {
		ID            string                     `json:"id"`
		UserID        string                     `json:"userId"`
		Title         string                     `json:"title"`
		Description   string                     `json:"description"`
		Instructions  string                     `json:"instructions"`
		PrepTime      *int                       `json:"prepTime"`
		CookTime      *int                       `json:"cookTime"`
		Servings      *int                       `json:"servings"`
		Difficulty    *string                    `json:"difficulty"`
		ImageURL      *string                    `json:"imageUrl"`
		IsPublic      bool                       `json:"isPublic"`
		Author        *RecipeAuthor              `json:"author"`
		Ingredients   []RecipeIngredientResponse `json:"ingredients"`
		Tags          []TagResponse              `json:"tags"`
		Ratings       []RatingResponse           `json:"ratings,omitempty"`
		AverageRating float64                    `json:"averageRating"`
		TotalRatings  int                        `json:"totalRatings"`
		CreatedAt     time.Time                  `json:"createdAt"`
		UpdatedAt     time.Time                  `json:"updatedAt"`
	}

	RecipeListResponse struct {
		Recipes    []Recipe   `json:"recipes"`
		Pagination Pagination `json:"pagination"`
	}

	RecipeEnvelope struct {
		Recipe Recipe `json:"recipe"`
	}

	RatingEnvelope struct {
		Rating        RatingResponse `json:"rating"`
		AverageRating float64        `json:"averageRating"`
		TotalRatings  int            `json:"totalRatings"`
	}
)
