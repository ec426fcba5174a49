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

// Replies owns the reply lifecycle. Edits and deletes are gated on the
// authoring identity; replies to locked topics are rejected.
type Replies struct {
	db *gorm.DB
}

func NewReplies(db *gorm.DB) *Replies {
	return &Replies{db: db}
}

type NewReply struct {
	Content  string
	TopicID  uuid.UUID
	AuthorID uuid.UUID
}

// ListForTopic returns the topic's replies with embedded authors in
// conversation order, oldest first.
func (s *Replies) ListForTopic(ctx context.Context, topicID uuid.UUID) ([]models.ReplyView, error) {
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "replies unavailable")
	}

	var replies []models.Reply
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}

	views := make([]models.ReplyView, 0, len(replies))
	for i := range replies {
		views = append(views, models.NewReplyView(&replies[i]))
	}
	return views, nil
}

// Create validates before any round-trip and returns the denormalized reply
// for optimistic append on the caller's side.
func (s *Replies) Create(ctx context.Context, input NewReply) (*models.ReplyView, error) {
	if input.AuthorID == uuid.Nil {
		return nil, errs.Wrap(errs.ErrNotAuthenticated, "sign in to reply")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, errs.Wrap(errs.ErrValidation, "reply content is required")
	}
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "cannot post reply")
	}

	var topic models.Topic
	err := s.db.WithContext(ctx).First(&topic, "id = ?", input.TopicID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.ErrNotFound, "topic does not exist")
	} else if err != nil {
		return nil, err
	}
	if topic.IsLocked {
		return nil, errs.Wrap(errs.ErrTopicLocked, "this topic no longer accepts replies")
	}

	reply := models.Reply{
		Content:  input.Content,
		TopicID:  input.TopicID,
		AuthorID: input.AuthorID,
	}
	if err := s.db.WithContext(ctx).Create(&reply).Error; err != nil {
		return nil, err
	}
	return s.loadView(ctx, reply.ID)
}

// Update edits a reply's content. Only the authoring identity may do so.
func (s *Replies) Update(ctx context.Context, replyID uuid.UUID, content string, requesterID uuid.UUID) (*models.ReplyView, error) {
	if requesterID == uuid.Nil {
		return nil, errs.Wrap(errs.ErrNotAuthenticated, "sign in to edit a reply")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errs.Wrap(errs.ErrValidation, "reply content is required")
	}
	if s.db == nil {
		return nil, errs.Wrap(errs.ErrBackendUnavailable, "cannot edit reply")
	}

	reply, err := s.loadOwned(ctx, replyID, requesterID)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).
		Model(reply).
		Update("content", content).Error
	if err != nil {
		return nil, err
	}
	return s.loadView(ctx, replyID)
}

// Delete removes a reply under the same ownership check. A second delete of
// the same id fails with not found.
func (s *Replies) Delete(ctx context.Context, replyID uuid.UUID, requesterID uuid.UUID) error {
	if requesterID == uuid.Nil {
		return errs.Wrap(errs.ErrNotAuthenticated, "sign in to delete a reply")
	}
	if s.db == nil {
		return errs.Wrap(errs.ErrBackendUnavailable, "cannot delete reply")
	}

	reply, err := s.loadOwned(ctx, replyID, requesterID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(reply).Error
}

func (s *Replies) loadOwned(ctx context.Context, replyID, requesterID uuid.UUID) (*models.Reply, error) {
	var reply models.Reply
	err := s.db.WithContext(ctx).First(&reply, "id = ?", replyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.Wrap(errs.ErrNotFound, "reply does not exist")
	} else if err != nil {
		return nil, err
	}
	if reply.AuthorID != requesterID {
		return nil, errs.Wrap(errs.ErrForbidden, "only the author may modify this reply")
	}
	return &reply, nil
}

func (s *Replies) loadView(ctx context.Context, replyID uuid.UUID) (*models.ReplyView, error) {
	var reply models.Reply
	err := s.db.WithContext(ctx).
		Preload("Author").
		First(&reply, "id = ?", replyID).Error
	if err != nil {
		return nil, err
	}
	view := models.NewReplyView(&reply)
	return &view, nil
}
