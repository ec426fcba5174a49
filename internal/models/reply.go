package models

import (
	"time"

	"github.com/google/uuid"
)

type Reply struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Content   string    `json:"content" gorm:"not null"`
	TopicID   uuid.UUID `json:"topicId" gorm:"type:uuid;index;not null"`
	AuthorID  uuid.UUID `json:"authorId" gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Author *Profile `json:"-" gorm:"foreignKey:AuthorID"`
}
