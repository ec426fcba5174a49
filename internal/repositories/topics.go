package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"gorm.io/gorm"
)

// Topics owns topic creation, listing and single fetch. Read paths return
// denormalized view models; no update/delete exists for topics.
type Topics struct {
	db *gorm.DB
}

func NewTopics(db *gorm.DB) *Topics {
	return &Topics{db: db}
}

// NewTopic is the creation input. All four fields are required.
type NewTopic struct {
	Title      string
	Content    string
	CategoryID uuid.UUID
	AuthorID   uuid.UUID
}

// List returns every topic with embedded author, category and reply count,
// pinned topics first, newest first within each group.
func (s *Topics) List(ctx context.Context) ([]models.TopicSummary, error) {
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "topic listing unavailable")
	}

	var topics []models.Topic
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Order("is_pinned DESC, created_at DESC").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}

	counts, err := s.replyCounts(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.TopicSummary, 0, len(topics))
	for i := range topics {
		summaries = append(summaries, summarize(&topics[i], counts[topics[i].ID]))
	}
	return summaries, nil
}

// Create validates everything before touching the database, then returns the
// topic as if freshly listed so callers can prepend it without a re-fetch.
func (s *Topics) Create(ctx context.Context, input NewTopic) (*models.TopicSummary, error) {
	if input.AuthorID == uuid.Nil {
		return nil, errs.Wrap(errs.ErrNotAuthenticated, "sign in to create a topic")
	}
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Content) == "" ||
		input.CategoryID == uuid.Nil {
		return nil, errs.Wrap(errs.ErrValidation, "title, content and category are required")
	}
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "cannot create topic")
	}

	var category models.Category
	err := s.db.WithContext(ctx).First(&category, "id = ?", input.CategoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.ErrNotFound, "category does not exist")
	} else if err != nil {
		return nil, err
	}

	topic := models.Topic{
		Title:      input.Title,
		Content:    input.Content,
		CategoryID: input.CategoryID,
		AuthorID:   input.AuthorID,
	}
	if err := s.db.WithContext(ctx).Create(&topic).Error; err != nil {
		return nil, err
	}

	created, err := s.load(ctx, topic.ID)
	if err != nil {
		return nil, err
	}
	summary := summarize(created, 0)
	return &summary, nil
}

// Get returns a single topic with embedded author and category.
func (s *Topics) Get(ctx context.Context, id uuid.UUID) (*models.TopicDetail, error) {
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "topic unavailable")
	}
	topic, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := models.TopicDetail{
		ID:        topic.ID,
		Title:     topic.Title,
		Content:   topic.Content,
		IsPinned:  topic.IsPinned,
		IsLocked:  topic.IsLocked,
		CreatedAt: topic.CreatedAt,
		Author:    models.NewAuthorRef(topic.Author),
		Category:  categoryRef(topic.Category),
	}
	return &detail, nil
}

func (s *Topics) load(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	var topic models.Topic
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		First(&topic, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.ErrNotFound, "topic does not exist")
	} else if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (s *Topics) replyCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	type row struct {
		TopicID uuid.UUID
		N       int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.Reply{}).
		Select("topic_id, count(*) AS n").
		Group("topic_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.TopicID] = r.N
	}
	return counts, nil
}

func summarize(t *models.Topic, replies int64) models.TopicSummary {
	return models.TopicSummary{
		ID:         t.ID,
		Title:      t.Title,
		IsPinned:   t.IsPinned,
		IsLocked:   t.IsLocked,
		CreatedAt:  t.CreatedAt,
		Author:     models.NewAuthorRef(t.Author),
		Category:   categoryRef(t.Category),
		ReplyCount: replies,
	}
}

func categoryRef(c *models.Category) models.CategoryRef {
	if c == nil {
		return models.CategoryRef{}
	}
	return models.CategoryRef{ID: c.ID, Name: c.Name}
}
