package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"github.com/notmine/community-server/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	sessionTTL    = 24 * time.Hour
	resetTokenTTL = 1 * time.Hour
)

// Claims is the JWT payload for a session token.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// DBProvider implements Provider against the relational backend: bcrypt
// credentials in the profiles table and HS256 session tokens. It keeps the
// issued session so GetSession can restore it, the way a hosted client SDK
// would.
type DBProvider struct {
	db     *gorm.DB
	secret []byte

	// OAuth is the external provider flow config; nil disables OAuth.
	OAuth *oauth2.Config

	mu        sync.Mutex
	current   *Session
	listeners map[int]func(AuthChange)
	nextID    int
}

func NewDBProvider(db *gorm.DB, secret string) *DBProvider {
	return &DBProvider{
		db:        db,
		secret:    []byte(secret),
		listeners: make(map[int]func(AuthChange)),
	}
}

func (p *DBProvider) GetSession(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || time.Now().After(p.current.ExpiresAt) {
		return nil, nil
	}
	cp := *p.current
	return &cp, nil
}

func (p *DBProvider) SignUp(ctx context.Context, email, password string, metadata map[string]string) error {
	username := metadata["username"]

	var existing models.Profile
	if err := p.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error; err == nil {
		return errs.Wrap(errs.ErrValidation, "username is already taken")
	}

	err := p.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		return errs.Wrap(errs.ErrValidation, "an account already exists with this email")
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	profile := models.Profile{
		Username:      username,
		Email:         email,
		Password:      string(hash),
		PremiumStatus: models.PremiumFree,
	}
	// No session is created here; the caller signs in separately.
	return p.db.WithContext(ctx).Create(&profile).Error
}

func (p *DBProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var profile models.Profile
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errs.Wrap(errs.ErrInvalidCredentials, "invalid email or password")
	case err != nil:
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)); err != nil {
		return nil, errs.Wrap(errs.ErrInvalidCredentials, "invalid email or password")
	}

	sess, err := p.issueSession(&profile)
	if err != nil {
		return nil, err
	}
	p.setSession(sess)
	p.broadcast(AuthChange{Event: EventSignedIn, Session: sess})
	return sess, nil
}

func (p *DBProvider) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	if p.OAuth == nil {
		return "", errs.Wrap(errs.ErrBackendUnavailable, "oauth provider not configured")
	}
	if provider != "google" {
		return "", errs.Wrapf(errs.ErrValidation, "unsupported oauth provider %q", provider)
	}
	state, err := utils.GenerateSecureToken(16)
	if err != nil {
		return "", err
	}
	return p.OAuth.AuthCodeURL(state), nil
}

func (p *DBProvider) SignOut(ctx context.Context) error {
	p.setSession(nil)
	p.broadcast(AuthChange{Event: EventSignedOut})
	return nil
}

func (p *DBProvider) UpdateUser(ctx context.Context, userID uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		Update("password", string(hash)).Error
}

// ResetPasswordForEmail stores a single-use reset token. There is no mail
// pipeline; the reset link is logged for the operator. An unknown email is
// reported as success so the endpoint cannot be used to probe accounts.
func (p *DBProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	var profile models.Profile
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}
	reset := models.PasswordReset{
		ProfileID: profile.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := p.db.WithContext(ctx).Create(&reset).Error; err != nil {
		return err
	}
	log.Printf("password reset requested for %s: %s?token=%s", email, redirectTo, token)
	return nil
}

// ConfirmPasswordReset consumes a reset token and stores the new password.
func (p *DBProvider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" || len(newPassword) < 6 {
		return errs.Wrap(errs.ErrValidation, "a valid token and a password of at least 6 characters are required")
	}
	var reset models.PasswordReset
	err := p.db.WithContext(ctx).
		Where("token = ? AND used = ? AND expires_at > ?", token, false, time.Now()).
		First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Wrap(errs.ErrNotFound, "reset link is invalid or expired")
	} else if err != nil {
		return err
	}

	if err := p.UpdateUser(ctx, reset.ProfileID, newPassword); err != nil {
		return err
	}
	return p.db.WithContext(ctx).Model(&reset).Update("used", true).Error
}

func (p *DBProvider) OnAuthStateChange(handler func(AuthChange)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = handler
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// IssueFor creates a session for an already-authenticated profile, e.g. at
// the end of an OAuth callback.
func (p *DBProvider) IssueFor(profile *models.Profile) (*Session, error) {
	sess, err := p.issueSession(profile)
	if err != nil {
		return nil, err
	}
	p.setSession(sess)
	p.broadcast(AuthChange{Event: EventSignedIn, Session: sess})
	return sess, nil
}

func (p *DBProvider) issueSession(profile *models.Profile) (*Session, error) {
	expiration := time.Now().Add(sessionTTL)
	claims := &Claims{
		UserID:   profile.ID.String(),
		Username: profile.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(p.secret)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:    profile.ID,
		Email:     profile.Email,
		Token:     tokenString,
		ExpiresAt: expiration,
	}, nil
}

func (p *DBProvider) setSession(sess *Session) {
	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()
}

func (p *DBProvider) broadcast(change AuthChange) {
	p.mu.Lock()
	handlers := make([]func(AuthChange), 0, len(p.listeners))
	for _, h := range p.listeners {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()
	for _, h := range handlers {
		h(change)
	}
}
