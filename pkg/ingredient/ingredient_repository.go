package ingredient

import (
	"context"
	"strings"

	"github.com/bizfish/tag-a-meal-app/entities"
	"github.com/bizfish/tag-a-meal-app/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	IngredientRepository interface {
		ListIngredients(ctx context.Context, p database.Principal, filter ListFilter) ([]*entities.Ingredient, int64, error)
		GetCategories(ctx context.Context, p database.Principal) ([]string, error)
		GetIngredientByID(ctx context.Context, p database.Principal, id uuid.UUID) (*entities.Ingredient, error)
		GetIngredientByName(ctx context.Context, p database.Principal, name string) (*entities.Ingredient, error)
		NameTaken(ctx context.Context, p database.Principal, name string, exceptID uuid.UUID) (bool, error)
		CreateIngredient(ctx context.Context, p database.Principal, ingredient *entities.Ingredient) error
		UpdateIngredient(ctx context.Context, p database.Principal, id uuid.UUID, updates map[string]any) (*entities.Ingredient, error)
		DeleteIngredient(ctx context.Context, p database.Principal, id uuid.UUID) error
		CountUsage(ctx context.Context, p database.Principal, id uuid.UUID) (int64, error)
		GetPublicUsage(ctx context.Context, p database.Principal, id uuid.UUID) ([]UsageRow, error)
	}

	ingredientRepository struct {
		gw database.Gateway
	}

	ListFilter struct {
		Search   string
		Category string
		Offset   int
		Limit    int
	}

	UsageRow struct {
		RecipeID uuid.UUID
		Title    string
		Quantity *float64
		Unit     *string
	}
)

func NewIngredientRepository(gw database.Gateway) IngredientRepository {
	return &ingredientRepository{gw: gw}
}

func (f ListFilter) apply(tx *gorm.DB) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		tx = tx.Where(database.LowerLike("name"), database.ContainsPattern(s))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		tx = tx.Where("category = ?", c)
	}
	return tx
}

func (r *ingredientRepository) ListIngredients(ctx context.Context, p database.Principal, filter ListFilter) ([]*entities.Ingredient, int64, error) {
	var ingredients []*entities.Ingredient
	var count int64

	db := r.gw.Client(ctx, p)
	if err := filter.apply(db.Model(&entities.Ingredient{})).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	tx := filter.apply(db).Order("name ASC")
	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := tx.Find(&ingredients).Error; err != nil {
		return nil, 0, err
	}
	return ingredients, count, nil
}

func (r *ingredientRepository) GetCategories(ctx context.Context, p database.Principal) ([]string, error) {
	categories := []string{}
	err := r.gw.Client(ctx, p).
		Model(&entities.Ingredient{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *ingredientRepository) GetIngredientByID(ctx context.Context, p database.Principal, id uuid.UUID) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	if err := r.gw.Client(ctx, p).Where("id = ?", id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) GetIngredientByName(ctx context.Context, p database.Principal, name string) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	if err := r.gw.Client(ctx, p).Where("name = ?", name).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// NameTaken reports whether an ingredient other than exceptID already uses
// name.
func (r *ingredientRepository) NameTaken(ctx context.Context, p database.Principal, name string, exceptID uuid.UUID) (bool, error) {
	var count int64
	err := r.gw.Client(ctx, p).
		Model(&entities.Ingredient{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *ingredientRepository) CreateIngredient(ctx context.Context, p database.Principal, ingredient *entities.Ingredient) error {
	return r.gw.Client(ctx, p).Create(ingredient).Error
}

func (r *ingredientRepository) UpdateIngredient(ctx context.Context, p database.Principal, id uuid.UUID, updates map[string]any) (*entities.Ingredient, error) {
	var ingredient entities.Ingredient
	err := r.gw.Transaction(ctx, p, func(tx *gorm.DB) error {
		res := tx.Model(&entities.Ingredient{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("id = ?", id).First(&ingredient).Error
	})
	if err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) DeleteIngredient(ctx context.Context, p database.Principal, id uuid.UUID) error {
	res := r.gw.Client(ctx, p).Where("id = ?", id).Delete(&entities.Ingredient{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUsage counts recipe links to the ingredient regardless of recipe
// visibility.
func (r *ingredientRepository) CountUsage(ctx context.Context, p database.Principal, id uuid.UUID) (int64, error) {
	var count int64
	err := r.gw.Client(ctx, p).
		Model(&entities.RecipeIngredient{}).
		Where("ingredient_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *ingredientRepository) GetPublicUsage(ctx context.Context, p database.Principal, id uuid.UUID) ([]UsageRow, error) {
	rows := []UsageRow{}
	err := r.gw.Client(ctx, p).
		Table("recipe_ingredients AS ri").
		Select("r.id AS recipe_id, r.title AS title, ri.quantity AS quantity, ri.unit AS unit").
		Joins("JOIN recipes r ON r.id = ri.recipe_id").
		Where("ri.ingredient_id = ? AND r.is_public = ?", id, true).
		Order("r.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
