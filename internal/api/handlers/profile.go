package handlers

import (
	"net/http"
	"time"

	"github.com/notmine/community-server/internal/api/middleware"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"github.com/notmine/community-server/internal/repositories"
	"github.com/notmine/community-server/internal/utils"
)

// GET /profile
func GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to view your profile"))
		return
	}

	profile, err := repositories.NewProfiles(repositories.DB).Fetch(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Profile retrieved successfully",
		Data:    profile,
	})
}

// PATCH /profile
// UpdateProfile godoc
// @Summary Update the signed-in profile
// @Description Username changes are limited to once per 30 days; bio and avatar have no cooldown.
// @Tags Profile
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/v1/profile [patch]
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to update your profile"))
		return
	}

	var input struct {
		Username  *string `json:"username"`
		Bio       *string `json:"bio"`
		AvatarURL *string `json:"avatarUrl"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	profile, err := repositories.NewProfiles(repositories.DB).Update(r.Context(), userID, repositories.ProfilePatch{
		Username:  input.Username,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Profile updated successfully",
		Data:    profile,
	})
}

// POST /profile/avatar/presign
// PresignAvatar godoc
// @Summary Get a presigned upload URL for the profile avatar
// @Tags Profile
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/v1/profile/avatar/presign [post]
func PresignAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to change your avatar"))
		return
	}

	uploadURL, err := repositories.PresignAvatarUpload(r.Context(), userID, 15*time.Minute)
	if err != nil {
		writeError(w, err)
		return
	}

	// The client PUTs the image, then PATCHes the profile with avatarUrl.
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Avatar upload URL created",
		Data: map[string]any{
			"uploadUrl": uploadURL,
			"avatarUrl": repositories.AvatarPublicURL(userID),
			"expiresIn": "15m",
		},
	})
}

// ConfirmAvatar marks the uploaded avatar as the profile image once the
// object exists in storage.
// POST /profile/avatar/confirm
func ConfirmAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to change your avatar"))
		return
	}

	exists, err := repositories.VerifyAvatarExists(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !exists {
		writeError(w, errs.Wrap(errs.ErrNotFound, "no uploaded avatar found"))
		return
	}

	url := repositories.AvatarPublicURL(userID)
	var profile *models.Profile
	profile, err = repositories.NewProfiles(repositories.DB).Update(r.Context(), userID, repositories.ProfilePatch{
		AvatarURL: &url,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Avatar updated successfully",
		Data:    profile,
	})
}
