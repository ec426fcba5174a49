// Package session owns the authenticated identity: it reconciles
// provider-level session state with the stored profile record and exposes
// one observable identity snapshot with a single writer.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/models"
	"github.com/notmine/community-server/internal/repositories"
)

// Auth state change events, mirroring the hosted provider's vocabulary.
const (
	EventSignedIn  = "SIGNED_IN"
	EventSignedOut = "SIGNED_OUT"
)

// Session is the provider-level view of an authenticated user: the stable
// identity fields plus the bearer token. Profile fields are merged on top by
// the manager.
type Session struct {
	UserID    uuid.UUID
	Email     string
	Token     string
	ExpiresAt time.Time
}

// AuthChange is one provider-driven session transition.
type AuthChange struct {
	Event   string
	Session *Session
}

// Provider is the auth sub-interface of the hosted backend.
type Provider interface {
	// GetSession returns the existing session, or nil when none exists.
	GetSession(ctx context.Context) (*Session, error)
	// SignUp registers a new account. No session is created; the provider
	// sends a confirmation message out of band.
	SignUp(ctx context.Context, email, password string, metadata map[string]string) error
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	// SignInWithOAuth returns the URL the caller must redirect to.
	SignInWithOAuth(ctx context.Context, provider string) (string, error)
	SignOut(ctx context.Context) error
	// UpdateUser changes the account password.
	UpdateUser(ctx context.Context, userID uuid.UUID, password string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	// OnAuthStateChange registers for session transitions and returns an
	// unsubscribe func.
	OnAuthStateChange(handler func(AuthChange)) func()
}

// ProfileStore is the profile half of the backend: the record merged into
// the identity on hydration. *repositories.Profiles satisfies it.
type ProfileStore interface {
	Fetch(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, patch repositories.ProfilePatch) (*models.Profile, error)
}

// Notifier surfaces failures to the user as short title + message pairs.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a func to Notifier.
type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) { f(title, message) }
