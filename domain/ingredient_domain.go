package domain

import (
	"errors"
	"time"
)

var (
	MessageSuccessGetIngredients   = "success get ingredients"
	MessageSuccessCreateIngredient = "Ingredient created successfully"
	MessageSuccessUpdateIngredient = "Ingredient updated successfully"
	MessageSuccessDeleteIngredient = "Ingredient deleted successfully"
	MessageSuccessBulkIngredients  = "Bulk ingredient creation completed"

	MessageFailedGetIngredients    = "Failed to fetch ingredients"
	MessageFailedGetCategories     = "Failed to fetch categories"
	MessageFailedGetIngredient     = "Ingredient not found"
	MessageFailedCreateIngredient  = "Failed to create ingredient"
	MessageFailedUpdateIngredient  = "Failed to update ingredient"
	MessageFailedDeleteIngredient  = "Failed to delete ingredient"
	MessageFailedIngredientUsage   = "Failed to fetch ingredient usage"
	MessageFailedBulkIngredients   = "Ingredients array is required"
	MessageIngredientInUseDetailed = "This ingredient is currently being used in one or more recipes. Please remove it from all recipes before deleting."

	ErrIngredientNotFound      = errors.New("ingredient not found")
	ErrIngredientAlreadyExists = errors.New("ingredient already exists")
	ErrIngredientNameConflict  = errors.New("an ingredient with this name already exists")
	ErrIngredientInUse         = errors.New("cannot delete ingredient that is used in recipes")
)

type (
	IngredientRequest struct {
		Name     string  `json:"name"`
		Category *string `json:"category"`
	}

	BulkIngredientRequest struct {
		Ingredients []IngredientRequest `json:"ingredients"`
	}

	IngredientResponse struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Category  *string   `json:"category"`
		CreatedAt time.Time `json:"createdAt"`
	}

	IngredientListResponse struct {
		Ingredients []IngredientResponse `json:"ingredients"`
		Pagination  Pagination           `json:"pagination"`
	}

	IngredientEnvelope struct {
		Ingredient IngredientResponse `json:"ingredient"`
	}

	CategoriesResponse struct {
		Categories []string `json:"categories"`
	}

	UsageRecipe struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Quantity *float64 `json:"quantity,omitempty"`
		Unit     *string  `json:"unit,omitempty"`
	}

	UsageResponse struct {
		TotalUsage  int64         `json:"totalUsage"`
		PublicUsage int64         `json:"publicUsage"`
		Recipes     []UsageRecipe `json:"recipes"`
	}

	BulkIngredientResponse struct {
		Results BulkResult[IngredientResponse] `json:"results"`
	}
)
