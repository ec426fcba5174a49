package models

import (
	"time"

	"github.com/google/uuid"
)

// PremiumFree is the default tier for new accounts. Paid tiers store the
// plan name as-is ("Crafter Pixel", "Explorador Épico", "Leyenda del Bloque").
const PremiumFree = "free"

type Profile struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Username           string     `json:"username" gorm:"uniqueIndex;not null"`
	Email              string     `json:"email" gorm:"uniqueIndex;not null"`
	Password           string     `json:"-" gorm:"not null"`
	AvatarURL          string     `json:"avatarUrl"`
	Bio                string     `json:"bio"`
	PremiumStatus      string     `json:"premiumStatus" gorm:"not null;default:free"`
	LastUsernameUpdate *time.Time `json:"lastUsernameUpdate"`
	CreatedAt          time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CanChangeUsername reports whether the rolling 30-day username window has
// elapsed at the given instant.
func (p *Profile) CanChangeUsername(now time.Time) bool {
	if p.LastUsernameUpdate == nil {
		return true
	}
	return now.Sub(*p.LastUsernameUpdate) > 30*24*time.Hour
}

// PasswordReset is a single-use token for the forgot-password flow.
type PasswordReset struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProfileID uuid.UUID `json:"profileId" gorm:"type:uuid;index;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
