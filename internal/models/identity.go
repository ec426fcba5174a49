package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated user as known to the auth provider plus the
// merged profile record. Provider fields come from the session; profile
// fields are filled in by hydration and coexist via shallow merge.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`

	// Merged from the profile record keyed by ID.
	Username           string     `json:"username"`
	AvatarURL          string     `json:"avatarUrl"`
	Bio                string     `json:"bio"`
	PremiumStatus      string     `json:"premiumStatus"`
	LastUsernameUpdate *time.Time `json:"lastUsernameUpdate"`
}

// MergeProfile overlays profile fields onto the identity, leaving the
// provider-owned fields untouched.
func (i *Identity) MergeProfile(p *Profile) {
	if p == nil {
		return
	}
	i.Username = p.Username
	i.AvatarURL = p.AvatarURL
	i.Bio = p.Bio
	i.PremiumStatus = p.PremiumStatus
	i.LastUsernameUpdate = p.LastUsernameUpdate
}
