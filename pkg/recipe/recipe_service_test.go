package recipe_test

import (
	"context"
	"testing"

	"github.com/bizfish/tag-a-meal-app/domain"
	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/internal/utils"
	"github.com/bizfish/tag-a-meal-app/pkg/database/databasetest"
	"github.com/bizfish/tag-a-meal-app/pkg/recipe"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   recipe.RecipeService
	alice string
	bob   string
}

func setup(t *testing.T) fixture {
	db, gw := databasetest.Open(t)

	alice := entities.User{Email: "alice@example.com", Password: "x", FullName: "Alice", ShowAuthorName: true, IsVerified: true}
	bob := entities.User{Email: "bob@example.com", Password: "x", FullName: "Bob", IsVerified: true}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	return fixture{
		db:    db,
		svc:   recipe.NewRecipeService(recipe.NewRecipeRepository(gw)),
		alice: alice.ID.String(),
		bob:   bob.ID.String(),
	}
}

func ptr[T any](v T) *T { return &v }

func pancakes() domain.RecipeRequest {
	return domain.RecipeRequest{
		Title:        "Pancakes",
		Description:  ptr("Fluffy breakfast pancakes"),
		Instructions: "Mix everything and fry.",
		PrepTime:     ptr(10),
		CookTime:     ptr(15),
		Servings:     ptr(4),
		Difficulty:   ptr("easy"),
		IsPublic:     ptr(true),
		Ingredients: &[]domain.RecipeIngredientRequest{
			{Name: "Flour", Quantity: ptr(2.0), Unit: ptr("cups")},
			{Name: "Eggs", Quantity: ptr(2.0)},
			{Name: "Milk", Quantity: ptr(1.5), Unit: ptr("cups"), Notes: ptr("whole")},
			{Name: " Flour ", Quantity: ptr(9.0)},
		},
		Tags: &[]string{"sweet", "breakfast"},
	}
}

func ingredientNames(r domain.Recipe) []string {
	var names []string
	for _, in := range r.Ingredients {
		names = append(names, in.Name)
	}
	return names
}

func tagNames(r domain.Recipe) []string {
	var names []string
	for _, tag := range r.Tags {
		names = append(names, tag.Name)
	}
	return names
}

func TestCreateRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	got, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", got.Title)
	assert.Equal(t, f.alice, got.UserID)
	assert.True(t, got.IsPublic)
	assert.Equal(t, []string{"Flour", "Eggs", "Milk"}, ingredientNames(got))
	assert.Equal(t, 2.0, *got.Ingredients[0].Quantity)
	assert.Equal(t, "whole", *got.Ingredients[2].Notes)
	assert.Equal(t, []string{"breakfast", "sweet"}, tagNames(got))
	assert.Equal(t, domain.DefaultTagColor, got.Tags[0].Color)
	require.NotNil(t, got.Author.FullName)
	assert.Equal(t, "Alice", *got.Author.FullName)
	assert.Zero(t, got.TotalRatings)

	// a second recipe reuses the ingredient and tag rows
	req := pancakes()
	req.Title = "Crepes"
	_, err = f.svc.CreateRecipe(ctx, f.alice, req)
	require.NoError(t, err)

	var ingredients, tags int64
	require.NoError(t, f.db.Model(&entities.Ingredient{}).Count(&ingredients).Error)
	require.NoError(t, f.db.Model(&entities.Tag{}).Count(&tags).Error)
	assert.EqualValues(t, 3, ingredients)
	assert.EqualValues(t, 2, tags)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := pancakes()
	req.Title = "  "
	_, err := f.svc.CreateRecipe(ctx, f.alice, req)
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Recipe title is required", verr.Message)

	req = pancakes()
	req.Difficulty = ptr("extreme")
	_, err = f.svc.CreateRecipe(ctx, f.alice, req)
	require.ErrorAs(t, err, &verr)

	req = pancakes()
	req.Tags = &[]string{uuid.NewString()}
	_, err = f.svc.CreateRecipe(ctx, f.alice, req)
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	// nothing from the failed transaction is left behind
	var count int64
	require.NoError(t, f.db.Model(&entities.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecipeVisibility(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	public, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)
	req := pancakes()
	req.Title = "Secret Sauce"
	req.IsPublic = ptr(false)
	private, err := f.svc.CreateRecipe(ctx, f.alice, req)
	require.NoError(t, err)

	_, err = f.svc.GetRecipe(ctx, "", public.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetRecipe(ctx, "", private.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	_, err = f.svc.GetRecipe(ctx, f.bob, private.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	_, err = f.svc.GetRecipe(ctx, f.alice, private.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetRecipe(ctx, f.alice, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	anon, err := f.svc.ListRecipes(ctx, "", recipe.RecipeQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, anon.Recipes, 1)
	assert.EqualValues(t, 1, anon.Pagination.Total)

	own, err := f.svc.ListRecipes(ctx, f.alice, recipe.RecipeQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, own.Recipes, 2)
}

func TestAuthorPrivacy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.bob, pancakes())
	require.NoError(t, err)

	seen, err := f.svc.GetRecipe(ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.Nil(t, seen.Author.FullName)
	assert.Equal(t, f.bob, seen.Author.ID)

	self, err := f.svc.GetRecipe(ctx, f.bob, created.ID)
	require.NoError(t, err)
	require.NotNil(t, self.Author.FullName)
	assert.Equal(t, "Bob", *self.Author.FullName)
}

func TestUpdateRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)

	// lists left nil keep their links
	updated, err := f.svc.UpdateRecipe(ctx, f.alice, created.ID, domain.RecipeRequest{
		Title:        "Better Pancakes",
		Instructions: "Rest the batter first.",
		Difficulty:   ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Better Pancakes", updated.Title)
	assert.Nil(t, updated.Difficulty)
	assert.Equal(t, 10, *updated.PrepTime)
	assert.Len(t, updated.Ingredients, 3)
	assert.Len(t, updated.Tags, 2)

	updated, err = f.svc.UpdateRecipe(ctx, f.alice, created.ID, domain.RecipeRequest{
		Title:        "Plain Pancakes",
		Instructions: "Fry.",
		Ingredients:  &[]domain.RecipeIngredientRequest{{Name: "Milk"}, {Name: "Flour"}},
		Tags:         &[]string{},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk", "Flour"}, ingredientNames(updated))
	assert.Empty(t, updated.Tags)

	_, err = f.svc.UpdateRecipe(ctx, f.bob, created.ID, pancakes())
	assert.ErrorIs(t, err, domain.ErrUnauthorizedRecipeAccess)
	_, err = f.svc.UpdateRecipe(ctx, f.alice, uuid.NewString(), pancakes())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestResaveIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)

	first, err := f.svc.UpdateRecipe(ctx, f.alice, created.ID, pancakes())
	require.NoError(t, err)
	second, err := f.svc.UpdateRecipe(ctx, f.alice, created.ID, pancakes())
	require.NoError(t, err)

	assert.Equal(t, ingredientNames(first), ingredientNames(second))
	assert.Equal(t, tagNames(first), tagNames(second))

	var links int64
	require.NoError(t, f.db.Model(&entities.RecipeIngredient{}).Count(&links).Error)
	assert.EqualValues(t, 3, links)
}

func TestDeleteRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)
	_, err = f.svc.RateRecipe(ctx, f.bob, created.ID, domain.RateRecipeRequest{Rating: ptr(4.0)})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, f.bob, created.ID), domain.ErrUnauthorizedRecipeAccess)
	require.NoError(t, f.svc.DeleteRecipe(ctx, f.alice, created.ID))

	_, err = f.svc.GetRecipe(ctx, f.alice, created.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, f.alice, created.ID), domain.ErrRecipeNotFound)

	var ratings, links int64
	require.NoError(t, f.db.Model(&entities.RecipeRating{}).Count(&ratings).Error)
	require.NoError(t, f.db.Model(&entities.RecipeTag{}).Count(&links).Error)
	assert.Zero(t, ratings)
	assert.Zero(t, links)
}

func TestCopyRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)

	copied, err := f.svc.CopyRecipe(ctx, f.bob, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, copied.ID)
	assert.Equal(t, "Pancakes (Copy)", copied.Title)
	assert.Equal(t, f.bob, copied.UserID)
	assert.False(t, copied.IsPublic)
	assert.Equal(t, ingredientNames(created), ingredientNames(copied))
	assert.Equal(t, tagNames(created), tagNames(copied))

	req := pancakes()
	req.IsPublic = ptr(false)
	hidden, err := f.svc.CreateRecipe(ctx, f.alice, req)
	require.NoError(t, err)
	_, err = f.svc.CopyRecipe(ctx, f.bob, hidden.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestRateRecipe(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)

	res, err := f.svc.RateRecipe(ctx, f.bob, created.ID, domain.RateRecipeRequest{Rating: ptr(4.0), Review: ptr("Tasty")})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rating.Rating)
	assert.Equal(t, 1, res.TotalRatings)

	// rating again replaces the earlier rating
	res, err = f.svc.RateRecipe(ctx, f.bob, created.ID, domain.RateRecipeRequest{Rating: ptr(2.0)})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalRatings)
	assert.Equal(t, 2.0, res.AverageRating)
	assert.Nil(t, res.Rating.Review)

	res, err = f.svc.RateRecipe(ctx, f.alice, created.ID, domain.RateRecipeRequest{Rating: ptr(5.0)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalRatings)
	assert.Equal(t, 3.5, res.AverageRating)

	detail, err := f.svc.GetRecipe(ctx, "", created.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Ratings, 2)
	assert.Equal(t, 3.5, detail.AverageRating)

	for _, bad := range []*float64{nil, ptr(0.0), ptr(6.0), ptr(3.5)} {
		_, err = f.svc.RateRecipe(ctx, f.bob, created.ID, domain.RateRecipeRequest{Rating: bad})
		var verr *utils.ValidationError
		assert.ErrorAs(t, err, &verr)
	}

	_, err = f.svc.RateRecipe(ctx, f.bob, uuid.NewString(), domain.RateRecipeRequest{Rating: ptr(3.0)})
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestListRecipesFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)
	_, err = f.svc.CreateRecipe(ctx, f.alice, domain.RecipeRequest{
		Title:        "Omelette",
		Instructions: "Whisk and cook.",
		PrepTime:     ptr(5),
		Difficulty:   ptr("medium"),
		IsPublic:     ptr(true),
		Ingredients:  &[]domain.RecipeIngredientRequest{{Name: "Eggs"}, {Name: "Cheese"}},
		Tags:         &[]string{"savory"},
	})
	require.NoError(t, err)

	cases := []struct {
		name string
		q    recipe.RecipeQuery
		want []string
	}{
		{"all", recipe.RecipeQuery{SortBy: "title", SortOrder: "asc"}, []string{"Omelette", "Pancakes"}},
		{"search", recipe.RecipeQuery{Search: "fluffy"}, []string{"Pancakes"}},
		{"difficulty", recipe.RecipeQuery{Difficulty: "medium"}, []string{"Omelette"}},
		{"tag", recipe.RecipeQuery{Tags: []string{"sav"}}, []string{"Omelette"}},
		{"include", recipe.RecipeQuery{IncludeIngredients: []string{"egg", "flour"}}, []string{"Pancakes"}},
		{"exclude", recipe.RecipeQuery{ExcludeIngredients: []string{"cheese"}}, []string{"Pancakes"}},
		{"prep time", recipe.RecipeQuery{PrepTime: &recipe.NumericFilter{Op: "lte", Value: 5}}, []string{"Omelette"}},
		{"author", recipe.RecipeQuery{Author: "ali"}, []string{"Omelette", "Pancakes"}},
		{"percent is literal", recipe.RecipeQuery{Search: "%"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.q.SortBy == "" {
				tc.q.SortBy, tc.q.SortOrder = "title", "asc"
			}
			res, err := f.svc.ListRecipes(ctx, "", tc.q)
			require.NoError(t, err)
			var got []string
			for _, r := range res.Recipes {
				got = append(got, r.Title)
			}
			assert.Equal(t, tc.want, got)
		})
	}

	page, err := f.svc.ListRecipes(ctx, "", recipe.RecipeQuery{Page: 2, Limit: 1, SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Recipes, 1)
	assert.Equal(t, "Pancakes", page.Recipes[0].Title)
	assert.EqualValues(t, 2, page.Pagination.TotalPages)
}

func TestSuggestRecipes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateRecipe(ctx, f.alice, pancakes())
	require.NoError(t, err)
	_, err = f.svc.CreateRecipe(ctx, f.alice, domain.RecipeRequest{
		Title:        "Boiled Eggs",
		Instructions: "Boil.",
		IsPublic:     ptr(true),
		Ingredients:  &[]domain.RecipeIngredientRequest{{Name: "Eggs"}},
	})
	require.NoError(t, err)

	res, err := f.svc.SuggestRecipes(ctx, "", domain.SuggestRecipesRequest{Ingredients: []string{"egg", "milk"}})
	require.NoError(t, err)
	require.Equal(t, 2, res.TotalSuggestions)
	assert.Equal(t, "Pancakes", res.SuggestedRecipes[0].Title)
	assert.Equal(t, 2, res.SuggestedRecipes[0].MatchScore)
	assert.ElementsMatch(t, []string{"Eggs", "Milk"}, res.SuggestedRecipes[0].MatchedIngredients)
	assert.Equal(t, 1, res.SuggestedRecipes[1].MatchScore)

	res, err = f.svc.SuggestRecipes(ctx, "", domain.SuggestRecipesRequest{Ingredients: []string{"egg"}, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalSuggestions)

	_, err = f.svc.SuggestRecipes(ctx, "", domain.SuggestRecipesRequest{Ingredients: []string{" "}})
	var verr *utils.ValidationError
	assert.ErrorAs(t, err, &verr)
}
