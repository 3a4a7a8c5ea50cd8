package domain

import "errors"

var (
	MessageSuccessSearch       = "success search"
	MessageSuccessConvertUnits = "Units converted successfully"
	MessageSuccessGetUnits     = "success get units"

	MessageFailedSearchRecipes     = "Failed to search recipes"
	MessageFailedSearchIngredients = "Failed to search ingredients"
	MessageFailedSearchTags        = "Failed to search tags"
	MessageFailedGlobalSearch      = "Search query is required"
	MessageFailedConvertUnits      = "Quantity, fromUnit, and toUnit are required"
	MessageUnitsNotConvertible     = "Cannot convert between these unit types"
	MessageUnitsSameCategory       = "Units must be of the same type (volume or weight)"
	MessageFailedSuggestRecipes    = "Ingredients array is required"
	MessageFailedGetSuggestions    = "Failed to get recipe suggestions"

	ErrUnitsNotConvertible = errors.New("units are not convertible")
)

type (
	ConvertUnitsRequest struct {
		Quantity *float64 `json:"quantity"`
		FromUnit string   `json:"fromUnit"`
		ToUnit   string   `json:"toUnit"`
	}

	ConvertUnitsResponse struct {
		OriginalQuantity  float64 `json:"originalQuantity"`
		OriginalUnit      string  `json:"originalUnit"`
		ConvertedQuantity float64 `json:"convertedQuantity"`
		ConvertedUnit     string  `json:"convertedUnit"`
		Conversion        string  `json:"conversion"`
	}

	UnitsResponse struct {
		Volume []string `json:"volume"`
		Weight []string `json:"weight"`
	}

	SearchFilters struct {
		Q                  string `json:"q,omitempty"`
		Title              string `json:"title,omitempty"`
		Description        string `json:"description,omitempty"`
		Ingredients        string `json:"ingredients,omitempty"`
		IncludeIngredients string `json:"includeIngredients,omitempty"`
		ExcludeIngredients string `json:"excludeIngredients,omitempty"`
		Tags               string `json:"tags,omitempty"`
		Difficulty         string `json:"difficulty,omitempty"`
		PrepTime           string `json:"prepTime,omitempty"`
		CookTime           string `json:"cookTime,omitempty"`
		Servings           string `json:"servings,omitempty"`
		Rating             string `json:"rating,omitempty"`
		Author             string `json:"author,omitempty"`
	}

	SearchSorting struct {
		SortBy    string `json:"sortBy"`
		SortOrder string `json:"sortOrder"`
	}

	SearchRecipesResponse struct {
		Recipes    []Recipe      `json:"recipes"`
		Pagination Pagination    `json:"pagination"`
		Filters    SearchFilters `json:"filters"`
		Sorting    SearchSorting `json:"sorting"`
	}

	GlobalRecipeHit struct {
		ID          string  `json:"id"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		ImageURL    *string `json:"imageUrl"`
		AuthorName  *string `json:"authorName"`
	}

	GlobalResults struct {
		Recipes     []GlobalRecipeHit    `json:"recipes"`
		Ingredients []IngredientResponse `json:"ingredients"`
		Tags        []TagResponse        `json:"tags"`
	}

	GlobalSearchResponse struct {
		Query        string        `json:"query"`
		Results      GlobalResults `json:"results"`
		TotalResults int           `json:"totalResults"`
	}

	SuggestRecipesRequest struct {
		Ingredients []string `json:"ingredients"`
		Limit       int      `json:"limit"`
	}

	SuggestedRecipe struct {
		Recipe
		MatchedIngredients []string `json:"matchedIngredients"`
		MatchScore         int      `json:"matchScore"`
	}

	SuggestRecipesResponse struct {
		SearchIngredients []string          `json:"searchIngredients"`
		SuggestedRecipes  []SuggestedRecipe `json:"suggestedRecipes"`
		TotalSuggestions  int               `json:"totalSuggestions"`
	}
)
