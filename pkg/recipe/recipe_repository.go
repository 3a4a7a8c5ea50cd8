package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type (
	RecipeRepository interface {
		Transaction(ctx context.Context, p database.Principal, fn func(repo RecipeRepository) error) error

		ListRecipes(ctx context.Context, p database.Principal, q RecipeQuery) ([]*entities.Recipe, int64, error)
		GetRecipeByID(ctx context.Context, p database.Principal, id uuid.UUID, withReviewers bool) (*entities.Recipe, error)
		CreateRecipe(ctx context.Context, p database.Principal, recipe *entities.Recipe) error
		UpdateRecipe(ctx context.Context, p database.Principal, id uuid.UUID, updates map[string]any) error
		DeleteRecipe(ctx context.Context, p database.Principal, id uuid.UUID) error

		ReplaceIngredients(ctx context.Context, p database.Principal, recipeID uuid.UUID, items []*entities.RecipeIngredient) error
		ReplaceTags(ctx context.Context, p database.Principal, recipeID uuid.UUID, tagIDs []uuid.UUID) error
		FindOrCreateIngredient(ctx context.Context, p database.Principal, name string, category *string) (*entities.Ingredient, error)
		FindOrCreateTag(ctx context.Context, p database.Principal, name string, color string) (*entities.Tag, error)
		GetTagByID(ctx context.Context, p database.Principal, id uuid.UUID) (*entities.Tag, error)

		UpsertRating(ctx context.Context, p database.Principal, rating *entities.RecipeRating) (*entities.RecipeRating, error)
		GetRatings(ctx context.Context, p database.Principal, recipeID uuid.UUID) ([]*entities.RecipeRating, error)
	}

	recipeRepository struct {
		gw database.Gateway
		tx *gorm.DB
	}
)

func NewRecipeRepository(gw database.Gateway) RecipeRepository {
	return &recipeRepository{gw: gw}
}

// db returns the open transaction when the repository is transaction
// scoped, otherwise a fresh session for p.
func (r *recipeRepository) db(ctx context.Context, p database.Principal) *gorm.DB {
	if r.tx != nil {
		return r.tx
	}
	return r.gw.Client(ctx, p)
}

func (r *recipeRepository) Transaction(ctx context.Context, p database.Principal, fn func(repo RecipeRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	return r.gw.Transaction(ctx, p, func(tx *gorm.DB) error {
		return fn(&recipeRepository{gw: r.gw, tx: tx})
	})
}

func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("User").
		Preload("Tags.Tag").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.position ASC")
		}).
		Preload("Ingredients.Ingredient").
		Preload("Ratings")
}

func (r *recipeRepository) ListRecipes(ctx context.Context, p database.Principal, q RecipeQuery) ([]*entities.Recipe, int64, error) {
	var recipes []*entities.Recipe
	var count int64

	if err := q.Filter(r.db(ctx, p).Model(&entities.Recipe{})).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return []*entities.Recipe{}, 0, nil
	}

	tx := q.Paginate(q.Order(q.Filter(withRelations(r.db(ctx, p)))))
	if err := tx.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

func (r *recipeRepository) GetRecipeByID(ctx context.Context, p database.Principal, id uuid.UUID, withReviewers bool) (*entities.Recipe, error) {
	var recipe entities.Recipe

	tx := withRelations(r.db(ctx, p))
	if withReviewers {
		tx = tx.Preload("Ratings", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ratings.created_at DESC")
		}).Preload("Ratings.User")
	}
	if err := tx.Where("recipes.id = ?", id).First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) CreateRecipe(ctx context.Context, p database.Principal, recipe *entities.Recipe) error {
	return r.db(ctx, p).Omit(clause.Associations).Create(recipe).Error
}

func (r *recipeRepository) UpdateRecipe(ctx context.Context, p database.Principal, id uuid.UUID, updates map[string]any) error {
	res := r.db(ctx, p).Model(&entities.Recipe{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepository) DeleteRecipe(ctx context.Context, p database.Principal, id uuid.UUID) error {
	res := r.db(ctx, p).Where("id = ?", id).Delete(&entities.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *recipeRepository) ReplaceIngredients(ctx context.Context, p database.Principal, recipeID uuid.UUID, items []*entities.RecipeIngredient) error {
	tx := r.db(ctx, p)
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeIngredient{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i, item := range items {
		item.RecipeID = recipeID
		item.Position = i
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

func (r *recipeRepository) ReplaceTags(ctx context.Context, p database.Principal, recipeID uuid.UUID, tagIDs []uuid.UUID) error {
	tx := r.db(ctx, p)
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&entities.RecipeTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	links := make([]*entities.RecipeTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, &entities.RecipeTag{RecipeID: recipeID, TagID: id})
	}
	return tx.Omit(clause.Associations).Create(&links).Error
}

// FindOrCreateIngredient returns the ingredient with exactly this name,
// inserting it when absent. Concurrent inserts of the same name are absorbed
// by ON CONFLICT DO NOTHING.
func (r *recipeRepository) FindOrCreateIngredient(ctx context.Context, p database.Principal, name string, category *string) (*entities.Ingredient, error) {
	tx := r.db(ctx, p)
	name = strings.TrimSpace(name)

	var existing entities.Ingredient
	err := tx.Where("name = ?", name).Limit(1).Find(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing.ID != uuid.Nil {
		return &existing, nil
	}

	candidate := entities.Ingredient{Name: name, Category: category}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&candidate).Error; err != nil {
		return nil, err
	}

	var found entities.Ingredient
	if err := tx.Where("name = ?", name).First(&found).Error; err != nil {
		return nil, fmt.Errorf("find ingredient %q: %w", name, err)
	}
	return &found, nil
}

func (r *recipeRepository) FindOrCreateTag(ctx context.Context, p database.Principal, name string, color string) (*entities.Tag, error) {
	tx := r.db(ctx, p)
	name = strings.TrimSpace(name)

	var existing entities.Tag
	if err := tx.Where("name = ?", name).Limit(1).Find(&existing).Error; err != nil {
		return nil, err
	}
	if existing.ID != uuid.Nil {
		return &existing, nil
	}

	candidate := entities.Tag{Name: name, Color: color}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&candidate).Error; err != nil {
		return nil, err
	}

	var found entities.Tag
	if err := tx.Where("name = ?", name).First(&found).Error; err != nil {
		return nil, fmt.Errorf("find tag %q: %w", name, err)
	}
	return &found, nil
}

func (r *recipeRepository) GetTagByID(ctx context.Context, p database.Principal, id uuid.UUID) (*entities.Tag, error) {
	var tag entities.Tag
	if err := r.db(ctx, p).Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// UpsertRating stores the caller's rating, replacing an earlier one for the
// same recipe.
func (r *recipeRepository) UpsertRating(ctx context.Context, p database.Principal, rating *entities.RecipeRating) (*entities.RecipeRating, error) {
	tx := r.db(ctx, p)
	err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "updated_at"}),
	}).Create(rating).Error
	if err != nil {
		return nil, err
	}

	var stored entities.RecipeRating
	if err := tx.Where("recipe_id = ? AND user_id = ?", rating.RecipeID, rating.UserID).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *recipeRepository) GetRatings(ctx context.Context, p database.Principal, recipeID uuid.UUID) ([]*entities.RecipeRating, error) {
	var ratings []*entities.RecipeRating
	if err := r.db(ctx, p).Where("recipe_id = ?", recipeID).Find(&ratings).Error; err != nil {
		return nil, err
	}
	return ratings, nil
}
