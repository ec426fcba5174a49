package session

import (
	"context"
	"strings"
	"sync"

	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"github.com/notmine/community-server/internal/repositories"
)

// Manager is the single source of truth for "who is currently signed in" for
// one logical session. The snapshot has exactly one writer (the manager);
// everyone else reads via Current or subscribes to changes.
//
// A nil provider means the backend is not configured: reads resolve empty and
// every write fails with errs.ErrBackendUnavailable instead of crashing.
type Manager struct {
	provider Provider
	profiles ProfileStore
	notifier Notifier

	mu       sync.RWMutex
	current  *models.Identity
	loading  bool
	subs     map[int]func(*models.Identity)
	nextSub  int
	unlisten func()
}

func NewManager(provider Provider, profiles ProfileStore, notifier Notifier) *Manager {
	return &Manager{
		provider: provider,
		profiles: profiles,
		notifier: notifier,
		loading:  true,
		subs:     make(map[int]func(*models.Identity)),
	}
}

// Restore asks the provider for an existing session and hydrates the profile
// on top of it. It always resolves: an absent session or an unconfigured
// backend yields a nil identity, not an error. The loading flag clears once
// resolved.
func (m *Manager) Restore(ctx context.Context) (*models.Identity, error) {
	if m.provider == nil {
		m.setIdentity(ctx, nil)
		return nil, nil
	}
	sess, err := m.provider.GetSession(ctx)
	if err != nil || sess == nil {
		m.setIdentity(ctx, nil)
		return nil, nil
	}
	identity := m.hydrate(ctx, sess)
	m.setIdentity(ctx, identity)
	return m.Current(), nil
}

// Listen wires the provider's auth state changes into the snapshot: a new
// session re-hydrates, a cleared one resets. Safe to race with Restore; the
// last event wins. Close undoes the registration.
func (m *Manager) Listen(ctx context.Context) {
	if m.provider == nil {
		return
	}
	m.unlisten = m.provider.OnAuthStateChange(func(change AuthChange) {
		if change.Session != nil {
			m.setIdentity(ctx, m.hydrate(ctx, change.Session))
		} else {
			m.setIdentity(ctx, nil)
		}
	})
}

// Close unsubscribes from provider events. Further provider transitions no
// longer touch this manager.
func (m *Manager) Close() {
	if m.unlisten != nil {
		m.unlisten()
		m.unlisten = nil
	}
}

// Current returns a copy of the identity snapshot, or nil when signed out.
func (m *Manager) Current() *models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

// Loading reports whether the initial session restore is still pending.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Subscribe registers a handler for identity snapshot changes and returns an
// unsubscribe func. Handlers run outside the manager lock.
func (m *Manager) Subscribe(handler func(*models.Identity)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = handler
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// SignUp registers a new account. All three fields are required; no session
// is created on success (the provider confirms out of band).
func (m *Manager) SignUp(ctx context.Context, email, password, username string) error {
	if strings.TrimSpace(email) == "" || password == "" || strings.TrimSpace(username) == "" {
		return errs.Wrap(errs.ErrValidation, "email, password and username are required")
	}
	if m.provider == nil {
		return m.unavailable("Sign up failed")
	}
	err := m.provider.SignUp(ctx, email, password, map[string]string{"username": username})
	if err != nil {
		m.notify("Sign up failed", err)
		return err
	}
	return nil
}

// SignIn authenticates with email and password and hydrates the identity.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errs.Wrap(errs.ErrValidation, "email and password are required")
	}
	if m.provider == nil {
		return nil, m.unavailable("Sign in failed")
	}
	sess, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.notify("Sign in failed", err)
		return nil, err
	}
	m.setIdentity(ctx, m.hydrate(ctx, sess))
	return m.Current(), nil
}

// SignInWithOAuth starts an external provider flow and returns the redirect
// URL. With no backend configured the failure is surfaced as a notification.
func (m *Manager) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	if m.provider == nil {
		return "", m.unavailable("OAuth sign in unavailable")
	}
	url, err := m.provider.SignInWithOAuth(ctx, provider)
	if err != nil {
		m.notify("OAuth sign in failed", err)
		return "", err
	}
	return url, nil
}

// SignOut clears the identity. With no backend configured it fails fast and
// leaves the identity untouched.
func (m *Manager) SignOut(ctx context.Context) error {
	if m.provider == nil {
		return m.unavailable("Sign out failed")
	}
	if err := m.provider.SignOut(ctx); err != nil {
		m.notify("Sign out failed", err)
		return err
	}
	m.setIdentity(ctx, nil)
	return nil
}

// UpdateProfile applies a profile patch for the current identity and merges
// the persisted record back into the snapshot. The username cooldown is
// enforced by the profile store.
func (m *Manager) UpdateProfile(ctx context.Context, patch repositories.ProfilePatch) (*models.Identity, error) {
	current := m.Current()
	if current == nil {
		return nil, errs.Wrap(errs.ErrNotAuthenticated, "sign in to update your profile")
	}
	profile, err := m.profiles.Update(ctx, current.ID, patch)
	if err != nil {
		m.notify("Profile update failed", err)
		return nil, err
	}
	current.MergeProfile(profile)
	m.setIdentity(ctx, current)
	return m.Current(), nil
}

// UpdatePassword changes the current account's password.
func (m *Manager) UpdatePassword(ctx context.Context, newPassword string) error {
	current := m.Current()
	if current == nil {
		return errs.Wrap(errs.ErrNotAuthenticated, "sign in to change your password")
	}
	if len(newPassword) < 6 {
		return errs.Wrap(errs.ErrValidation, "password must be at least 6 characters")
	}
	if m.provider == nil {
		return m.unavailable("Password update failed")
	}
	if err := m.provider.UpdateUser(ctx, current.ID, newPassword); err != nil {
		m.notify("Password update failed", err)
		return err
	}
	return nil
}

// ResetPassword starts the email reset flow.
func (m *Manager) ResetPassword(ctx context.Context, email, redirectTo string) error {
	if strings.TrimSpace(email) == "" {
		return errs.Wrap(errs.ErrValidation, "email is required")
	}
	if m.provider == nil {
		return m.unavailable("Password reset failed")
	}
	if err := m.provider.ResetPasswordForEmail(ctx, email, redirectTo); err != nil {
		m.notify("Password reset failed", err)
		return err
	}
	return nil
}

// hydrate builds the identity for a session and shallow-merges the profile
// record on top. A missing profile leaves the provider fields intact.
func (m *Manager) hydrate(ctx context.Context, sess *Session) *models.Identity {
	identity := &models.Identity{ID: sess.UserID, Email: sess.Email}
	if m.profiles != nil {
		if profile, err := m.profiles.Fetch(ctx, sess.UserID); err == nil {
			identity.MergeProfile(profile)
		}
	}
	return identity
}

// setIdentity is the single writer path. A canceled context means the owning
// scope was torn down: the result is discarded and the snapshot untouched.
func (m *Manager) setIdentity(ctx context.Context, identity *models.Identity) {
	if ctx != nil && ctx.Err() != nil {
		return
	}
	m.mu.Lock()
	m.current = identity
	m.loading = false
	handlers := make([]func(*models.Identity), 0, len(m.subs))
	for _, h := range m.subs {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(m.Current())
	}
}

func (m *Manager) unavailable(title string) error {
	err := errs.Wrap(errs.ErrBackendUnavailable, "connect the backend integration to enable this")
	m.notify(title, err)
	return err
}

func (m *Manager) notify(title string, err error) {
	if m.notifier != nil {
		m.notifier.Notify(title, err.Error())
	}
}
