package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Timestamp struct {
	CreatedAt time.Time `gorm:"type:timestamp" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

// newID fills an unset uuid primary key before insert so the same models
// work on Postgres and SQLite.
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	newID(&i.ID)
	return nil
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	newID(&t.ID)
	return nil
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	newID(&ri.ID)
	return nil
}

func (rr *RecipeRating) BeforeCreate(tx *gorm.DB) error {
	newID(&rr.ID)
	return nil
}
