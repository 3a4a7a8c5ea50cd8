package entities

import (
	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	FullName       string    `json:"full_name"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	ShowAuthorName bool      `gorm:"not null" json:"show_author_name"`
	IsVerified     bool      `gorm:"not null;default:false" json:"is_verified"`

	Timestamp
}
