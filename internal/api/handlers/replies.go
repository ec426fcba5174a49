package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/api/middleware"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/repositories"
	"github.com/notmine/community-server/internal/utils"
)

// GET /forum/topics/{id}/replies
// ListReplies godoc
// @Summary List a topic's replies in conversation order
// @Tags Forum
// @Produce json
// @Param id path string true "Topic id"
// @Success 200 {object} utils.Payload
// @Router /api/v1/forum/topics/{id}/replies [get]
func ListReplies(w http.ResponseWriter, r *http.Request) {
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	topicID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrValidation, "invalid topic id"))
		return
	}

	replies, err := repositories.NewReplies(repositories.DB).ListForTopic(r.Context(), topicID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Replies retrieved successfully",
		Data:    replies,
	})
}

// POST /forum/topics/{id}/replies
// CreateReply godoc
// @Summary Post a reply to a topic
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Topic id"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 423 {object} utils.Payload
// @Router /api/v1/forum/topics/{id}/replies [post]
func CreateReply(w http.ResponseWriter, r *http.Request) {
	authorID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to reply"))
		return
	}

	topicID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrValidation, "invalid topic id"))
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	reply, err := repositories.NewReplies(repositories.DB).Create(r.Context(), repositories.NewReply{
		Content:  input.Content,
		TopicID:  topicID,
		AuthorID: authorID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Reply posted successfully",
		Data:    reply,
	})
}

// PATCH /forum/replies/{id}
// UpdateReply godoc
// @Summary Edit a reply (author only)
// @Tags Forum
// @Accept json
// @Produce json
// @Param id path string true "Reply id"
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Router /api/v1/forum/replies/{id} [patch]
func UpdateReply(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to edit a reply"))
		return
	}

	replyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrValidation, "invalid reply id"))
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	reply, err := repositories.NewReplies(repositories.DB).Update(r.Context(), replyID, input.Content, requesterID)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Reply updated successfully",
		Data:    reply,
	})
}

// DELETE /forum/replies/{id}
// DeleteReply godoc
// @Summary Delete a reply (author only)
// @Tags Forum
// @Produce json
// @Param id path string true "Reply id"
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/forum/replies/{id} [delete]
func DeleteReply(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to delete a reply"))
		return
	}

	replyID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrValidation, "invalid reply id"))
		return
	}

	if err := repositories.NewReplies(repositories.DB).Delete(r.Context(), replyID, requesterID); err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Reply deleted successfully",
	})
}
