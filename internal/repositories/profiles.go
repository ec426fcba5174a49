package repositories

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"gorm.io/gorm"
)

const usernameCooldown = 30 * 24 * time.Hour

// Profiles is the profile record store behind identity hydration and the
// settings page. The username cooldown lives here so every update path goes
// through the same check.
type Profiles struct {
	db *gorm.DB

	// now is swappable in tests.
	now func() time.Time
}

func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db, now: time.Now}
}

// ProfilePatch carries the updatable profile fields. Nil means unchanged.
type ProfilePatch struct {
	Username  *string
	Bio       *string
	AvatarURL *string
}

// Fetch loads the profile record keyed by identity id.
func (s *Profiles) Fetch(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "profile unavailable")
	}
	var profile models.Profile
	err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.ErrNotFound, "profile does not exist")
	} else if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchByEmail loads a profile by its unique email.
func (s *Profiles) FetchByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "profile unavailable")
	}
	var profile models.Profile
	err := s.db.WithContext(ctx).First(&profile, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.ErrNotFound, "profile does not exist")
	} else if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update applies a patch and returns the persisted record. A username change
// is allowed at most once per rolling 30-day window, measured from the last
// change; the check is enforced here, not by callers.
func (s *Profiles) Update(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*models.Profile, error) {
	if id == uuid.Nil {
		return nil, errs.Wrap(errs.ErrNotAuthenticated, "sign in to update your profile")
	}
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "cannot update profile")
	}

	profile, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Username != nil && *patch.Username != profile.Username {
		username := strings.TrimSpace(*patch.Username)
		if username == "" {
			return nil, errs.Wrap(errs.ErrValidation, "username cannot be empty")
		}
		if !profile.CanChangeUsername(s.now()) {
			return nil, errs.Wrapf(errs.ErrUsernameCooldown,
				"you can change your username again in %d days", s.cooldownDays(profile))
		}
		var taken int64
		err := s.db.WithContext(ctx).Model(&models.Profile{}).
			Where("username = ? AND id <> ?", username, id).
			Count(&taken).Error
		if err != nil {
			return nil, err
		}
		if taken > 0 {
			return nil, errs.Wrap(errs.ErrValidation, "username is already taken")
		}
		updates["username"] = username
		updates["last_username_update"] = s.now()
	}
	if patch.Bio != nil {
		updates["bio"] = *patch.Bio
	}
	if patch.AvatarURL != nil {
		updates["avatar_url"] = *patch.AvatarURL
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(profile).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.Fetch(ctx, id)
}

// UpdatePassword stores a new password hash.
func (s *Profiles) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	if s.db == nil {
		return errs.Wrap(errs.ErrBackendUnavailable, "cannot update password")
	}
	return s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

func (s *Profiles) cooldownDays(p *models.Profile) int {
	remaining := usernameCooldown - s.now().Sub(*p.LastUsernameUpdate)
	return int(math.Ceil(remaining.Hours() / 24))
}
