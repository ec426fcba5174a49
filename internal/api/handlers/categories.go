package handlers

import (
	"net/http"

	"github.com/notmine/community-server/internal/repositories"
	"github.com/notmine/community-server/internal/utils"
)

// GET /forum/categories
// ListCategories godoc
// @Summary List the forum category directory
// @Tags Forum
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/v1/forum/categories [get]
func ListCategories(w http.ResponseWriter, r *http.Request) {
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	categories, err := repositories.NewCategories(repositories.DB).List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Categories retrieved successfully",
		Data:    categories,
	})
}
