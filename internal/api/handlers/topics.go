package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/api/middleware"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/forum"
	"github.com/notmine/community-server/internal/repositories"
	"github.com/notmine/community-server/internal/utils"
)

// GET /forum/listing?q=&category=
// GetListing godoc
// @Summary Forum index: categories and topics in one response
// @Description Categories and topics load in parallel; optional q/category narrow the topic list.
// @Tags Forum
// @Produce json
// @Param q query string false "Search term matched against title and author"
// @Param category query string false "Category name, or 'all'"
// @Success 200 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/v1/forum/listing [get]
func GetListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	loader := forum.NewLoader(
		repositories.NewCategories(repositories.DB),
		repositories.NewTopics(repositories.DB),
	)
	listing, err := loader.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	query := forum.Query{
		Search:   r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}
	listing.Topics = forum.Filter(listing.Topics, query)

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Listing retrieved successfully",
		Data:    listing,
	})
}

// GET /forum/topics
func ListTopics(w http.ResponseWriter, r *http.Request) {
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	topics, err := repositories.NewTopics(repositories.DB).List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Topics retrieved successfully",
		Data:    topics,
	})
}

// POST /forum/topics
// CreateTopic godoc
// @Summary Create a forum topic
// @Tags Forum
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/v1/forum/topics [post]
func CreateTopic(w http.ResponseWriter, r *http.Request) {
	authorID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, errs.Wrap(errs.ErrNotAuthenticated, "sign in to create a topic"))
		return
	}

	var input struct {
		Title      string    `json:"title"`
		Content    string    `json:"content"`
		CategoryID uuid.UUID `json:"categoryId"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	topic, err := repositories.NewTopics(repositories.DB).Create(r.Context(), repositories.NewTopic{
		Title:      input.Title,
		Content:    input.Content,
		CategoryID: input.CategoryID,
		AuthorID:   authorID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	// The denormalized record lets the client prepend without a re-fetch.
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Topic created successfully",
		Data:    topic,
	})
}

// GET /forum/topics/{id}
// GetTopic godoc
// @Summary Fetch a single topic with author and category
// @Tags Forum
// @Produce json
// @Param id path string true "Topic id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/forum/topics/{id} [get]
func GetTopic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if !repositories.Configured() {
		backendUnavailable(w)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrValidation, "invalid topic id"))
		return
	}

	topic, err := repositories.NewTopics(repositories.DB).Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Topic retrieved successfully",
		Data:    topic,
	})
}
