package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/api/middleware"
	"github.com/notmine/community-server/internal/api/services"
	"github.com/notmine/community-server/internal/config"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"github.com/notmine/community-server/internal/repositories"
	"github.com/notmine/community-server/internal/session"
	"github.com/notmine/community-server/internal/utils"
	"gorm.io/gorm"
)

// authProvider builds the relational auth backend for one request.
func authProvider() *session.DBProvider {
	p := session.NewDBProvider(repositories.DB, config.Envs.JWTSecret)
	p.OAuth = services.GoogleOauthConfig
	return p
}

// POST /auth/sign-up
// RegisterUser godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/auth/sign-up [post]
func RegisterUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Email == "" || input.Password == "" || input.Username == "" {
		writeError(w, errs.Wrap(errs.ErrValidation, "email, password and username are required"))
		return
	}

	err := authProvider().SignUp(r.Context(), input.Email, input.Password, map[string]string{
		"username": input.Username,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// No session yet; the client signs in after confirming.
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Account registered successfully",
	})
}

// POST /auth/login
// LoginUser godoc
// @Summary Sign in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/v1/auth/login [post]
func LoginUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Email == "" || input.Password == "" {
		writeError(w, errs.Wrap(errs.ErrValidation, "email and password are required"))
		return
	}

	sess, err := authProvider().SignInWithPassword(r.Context(), input.Email, input.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, sess)

	identity, err := hydrateIdentity(r, sess.UserID, sess.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Login successful",
		Data:    identity,
	})
}

// GET /auth/session
// GetSession godoc
// @Summary Restore the current session and hydrated identity
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/v1/auth/session [get]
func GetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "no active session"))
		return
	}
	identity, err := hydrateIdentity(r, userID, "")
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Session active",
		Data:    identity,
	})
}

// POST /auth/logout
func Logout(w http.ResponseWriter, r *http.Request) {
	if !repositories.Configured() {
		// Fail fast and leave the cookie alone; the identity stays as-is.
		backendUnavailable(w)
		return
	}

	_ = authProvider().SignOut(r.Context())
	clearSessionCookie(w)

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Logged out successfully",
	})
}

// PATCH /auth/password
// UpdatePassword godoc
// @Summary Change the signed-in account's password
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Router /api/v1/auth/password [patch]
func UpdatePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to change your password"))
		return
	}

	var input struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if len(input.Password) < 6 {
		writeError(w, errs.Wrap(errs.ErrValidation, "password must be at least 6 characters"))
		return
	}

	if err := authProvider().UpdateUser(r.Context(), userID, input.Password); err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Password updated successfully",
	})
}

// POST /auth/forgot-password
func ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	var input struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Email == "" {
		writeError(w, errs.Wrap(errs.ErrValidation, "email is required"))
		return
	}

	redirectTo := config.Envs.FrontendURL + "/actualizar-contrasena"
	if err := authProvider().ResetPasswordForEmail(r.Context(), input.Email, redirectTo); err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "If the email exists, a reset link has been sent",
	})
}

// POST /auth/reset-password
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	if err := authProvider().ConfirmPasswordReset(r.Context(), input.Token, input.Password); err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Password has been reset",
	})
}

func HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	redirectType := r.URL.Query().Get("redirect") // "login" or "register"
	if redirectType == "" {
		redirectType = "login"
	}

	state, err := GenerateState(map[string]string{"flow": redirectType})
	if err != nil {
		http.Error(w, "Failed to generate OAuth state", http.StatusInternalServerError)
		return
	}

	url := services.GoogleOauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	state := r.FormValue("state")
	stateData, err := DecodeState(state)
	if err != nil {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	flowType := stateData["flow"]

	token, err := services.GoogleOauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		http.Error(w, "Code exchange failed", http.StatusInternalServerError)
		return
	}

	client := services.GoogleOauthConfig.Client(r.Context(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(data, &googleUser); err != nil {
		http.Error(w, "Failed to parse user info", http.StatusInternalServerError)
		return
	}

	frontend := config.Envs.FrontendURL
	var profile models.Profile
	err = repositories.DB.Where("email = ?", googleUser.Email).First(&profile).Error

	switch flowType {
	case "register":
		if err == nil {
			http.Redirect(w, r, frontend+"/login?error=user_already_exists", http.StatusTemporaryRedirect)
			return
		}
		profile = models.Profile{
			Username:      googleUser.Name,
			Email:         googleUser.Email,
			Password:      "", // Google-authenticated
			AvatarURL:     googleUser.Picture,
			PremiumStatus: models.PremiumFree,
		}
		if err := repositories.DB.Create(&profile).Error; err != nil {
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
	default: // login
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Redirect(w, r, frontend+"/registro?error=user_not_found", http.StatusTemporaryRedirect)
			return
		} else if err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
	}

	sess, err := authProvider().IssueFor(&profile)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	setSessionCookie(w, sess)

	redirectURL := frontend + "/foro?status=success_login"
	if flowType == "register" {
		redirectURL = frontend + "/foro?status=success_register"
	}
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// hydrateIdentity merges the profile record over the provider-level fields.
func hydrateIdentity(r *http.Request, userID uuid.UUID, email string) (*models.Identity, error) {
	profiles := repositories.NewProfiles(repositories.DB)
	profile, err := profiles.Fetch(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	identity := &models.Identity{ID: userID, Email: email}
	if email == "" {
		identity.Email = profile.Email
	}
	identity.MergeProfile(profile)
	return identity, nil
}

func setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	isProd := config.Envs.Environment == "production"
	sameSite := http.SameSiteLaxMode
	if isProd {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		Secure:   isProd,
		HttpOnly: true,
		SameSite: sameSite,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	isProd := config.Envs.Environment == "production"
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   isProd,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
		Success: false,
		Message: "Method not allowed",
	})
}

// decodeBody parses a JSON body, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, errs.Wrap(errs.ErrValidation, fmt.Sprintf("invalid input: %v", err)))
		return false
	}
	return true
}
