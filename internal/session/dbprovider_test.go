package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"github.com/notmine/community-server/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newProviderDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	return db
}

func signUp(t *testing.T, p *DBProvider, email, password, username string) {
	t.Helper()
	require.NoError(t, p.SignUp(context.Background(), email, password, map[string]string{"username": username}))
}

func TestDBProviderSignUpStoresHashedCredentials(t *testing.T) {
	db := newProviderDB(t)
	p := NewDBProvider(db, "test-secret")

	signUp(t, p, "steve@example.com", "diamond-pick", "steve")

	var profile models.Profile
	require.NoError(t, db.Where("email = ?", "steve@example.com").First(&profile).Error)
	assert.Equal(t, "steve", profile.Username)
	assert.Equal(t, models.PremiumFree, profile.PremiumStatus)
	assert.NotEqual(t, "diamond-pick", profile.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte("diamond-pick")))

	sess, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess, "sign-up must not start a session")
}

func TestDBProviderSignUpRejectsDuplicates(t *testing.T) {
	db := newProviderDB(t)
	p := NewDBProvider(db, "test-secret")
	signUp(t, p, "steve@example.com", "diamond-pick", "steve")

	err := p.SignUp(context.Background(), "other@example.com", "pw123456", map[string]string{"username": "steve"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = p.SignUp(context.Background(), "steve@example.com", "pw123456", map[string]string{"username": "alex"})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestDBProviderSignInWithPassword(t *testing.T) {
	db := newProviderDB(t)
	p := NewDBProvider(db, "test-secret")
	signUp(t, p, "steve@example.com", "diamond-pick", "steve")

	sess, err := p.SignInWithPassword(context.Background(), "steve@example.com", "diamond-pick")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "steve@example.com", sess.Email)
	assert.NotEmpty(t, sess.Token)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(sess.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	assert.Equal(t, sess.UserID.String(), claims.UserID)
	assert.Equal(t, "steve", claims.Username)

	restored, err := p.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, sess.UserID, restored.UserID)
}

func TestDBProviderSignInRejectsBadCredentials(t *testing.T) {
	db := newProviderDB(t)
	p := NewDBProvider(db, "test-secret")
	signUp(t, p, "steve@example.com", "diamond-pick", "steve")

	_, err := p.SignInWithPassword(context.Background(), "steve@example.com", "wrong")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

	_, err = p.SignInWithPassword(context.Background(), "nobody@example.com", "diamond-pick")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials, "unknown emails read the same as bad passwords")
}

func TestDBProviderSignOutBroadcasts(t *testing.T) {
	db := newProviderDB(t)
	p := NewDBProvider(db, "test-secret")
	signUp(t, p, "steve@example.com", "diamond-pick", "steve")

	var events []string
	unsubscribe := p.OnAuthStateChange(func(change AuthChange) {
		events = append(events, change.Event)
	})
	defer unsubscribe()

	_, err := p.SignInWithPassword(context.Background(), "steve@example.com", "diamond-pick")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(context.Background()))

	assert.Equal(t, []string{EventSignedIn, EventSignedOut}, events)

	sess, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestDBProviderOAuthUnconfigured(t *testing.T) {
	p := NewDBProvider(newProviderDB(t), "test-secret")

	_, err := p.SignInWithOAuth(context.Background(), "google")
	assert.ErrorIs(t, err, errs.ErrBackendUnavailable)
}

func TestDBProviderOAuthURL(t *testing.T) {
	p := NewDBProvider(newProviderDB(t), "test-secret")
	p.OAuth = &oauth2.Config{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:8080/api/v1/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL: "https://accounts.google.com/o/oauth2/auth",
		},
	}

	url, err := p.SignInWithOAuth(context.Background(), "google")
	require.NoError(t, err)
	assert.Contains(t, url, "https://accounts.google.com/o/oauth2/auth")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=")

	_, err = p.SignInWithOAuth(context.Background(), "github")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestDBProviderPasswordResetFlow(t *testing.T) {
	db := newProviderDB(t)
	p := NewDBProvider(db, "test-secret")
	signUp(t, p, "steve@example.com", "diamond-pick", "steve")

	require.NoError(t, p.ResetPasswordForEmail(context.Background(), "steve@example.com", "https://notmine.com/actualizar-contrasena"))

	var reset models.PasswordReset
	require.NoError(t, db.First(&reset).Error)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`), reset.Token)
	assert.False(t, reset.Used)
	assert.True(t, reset.ExpiresAt.After(time.Now()))

	require.NoError(t, p.ConfirmPasswordReset(context.Background(), reset.Token, "new-password"))

	_, err := p.SignInWithPassword(context.Background(), "steve@example.com", "diamond-pick")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = p.SignInWithPassword(context.Background(), "steve@example.com", "new-password")
	assert.NoError(t, err)

	// A consumed token cannot be replayed.
	err = p.ConfirmPasswordReset(context.Background(), reset.Token, "another-password")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDBProviderPasswordResetUnknownEmailIsSilent(t *testing.T) {
	db := newProviderDB(t)
	p := NewDBProvider(db, "test-secret")

	require.NoError(t, p.ResetPasswordForEmail(context.Background(), "ghost@example.com", "https://notmine.com/actualizar-contrasena"))

	var count int64
	require.NoError(t, db.Model(&models.PasswordReset{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDBProviderConfirmResetValidation(t *testing.T) {
	p := NewDBProvider(newProviderDB(t), "test-secret")

	err := p.ConfirmPasswordReset(context.Background(), "", "new-password")
	assert.ErrorIs(t, err, errs.ErrValidation)
	err = p.ConfirmPasswordReset(context.Background(), "sometoken", "short")
	assert.ErrorIs(t, err, errs.ErrValidation)
	err = p.ConfirmPasswordReset(context.Background(), "not-a-real-token", "new-password")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDBProviderExpiredSessionReadsAsAbsent(t *testing.T) {
	db := newProviderDB(t)
	p := NewDBProvider(db, "test-secret")
	signUp(t, p, "steve@example.com", "diamond-pick", "steve")

	sess, err := p.SignInWithPassword(context.Background(), "steve@example.com", "diamond-pick")
	require.NoError(t, err)
	p.setSession(&Session{UserID: sess.UserID, Email: sess.Email, Token: sess.Token, ExpiresAt: time.Now().Add(-time.Minute)})

	restored, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, restored)
}
