package entities

import (
	"github.com/google/uuid"
)

type Ingredient struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"uniqueIndex;not null" json:"name"`
	Category *string   `gorm:"index" json:"category,omitempty"`

	Timestamp
}
