package models

import (
	"time"

	"github.com/google/uuid"
)

type Topic struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title      string    `json:"title" gorm:"not null"`
	Content    string    `json:"content" gorm:"not null"`
	CategoryID uuid.UUID `json:"categoryId" gorm:"type:uuid;index;not null"`
	AuthorID   uuid.UUID `json:"authorId" gorm:"type:uuid;index;not null"`
	IsPinned   bool      `json:"isPinned" gorm:"default:false"`
	IsLocked   bool      `json:"isLocked" gorm:"default:false"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Author   *Profile  `json:"-" gorm:"foreignKey:AuthorID"`
	Category *Category `json:"-" gorm:"foreignKey:CategoryID"`
	Replies  []Reply   `json:"-" gorm:"foreignKey:TopicID"`
}
