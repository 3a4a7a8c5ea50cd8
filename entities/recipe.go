package entities

import (
	"github.com/google/uuid"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Recipe struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`
	PrepTime     *int      `json:"prep_time,omitempty"`
	CookTime     *int      `json:"cook_time,omitempty"`
	Servings     *int      `json:"servings,omitempty"`
	Difficulty   *string   `json:"difficulty,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	IsPublic     bool      `gorm:"not null;default:false;index" json:"is_public"`

	User        *User               `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Ingredients []*RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Tags        []*RecipeTag        `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Ratings     []*RecipeRating     `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Timestamp
}

type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient;index" json:"ingredient_id"`
	Quantity     *float64  `json:"quantity,omitempty"`
	Unit         *string   `json:"unit,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Position     int       `gorm:"not null;default:0" json:"position"`

	Ingredient *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT"`
}

type RecipeTag struct {
	RecipeID uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	TagID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"tag_id"`

	Tag *Tag `gorm:"foreignKey:TagID;constraint:OnDelete:RESTRICT"`
}

type RecipeRating struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_rating_user" json:"recipe_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_rating_user" json:"user_id"`
	Rating   int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Review   *string   `json:"review,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Timestamp
}
