package models

import (
	"time"

	"github.com/google/uuid"
)

// View models are the denormalized records the read paths return: the stored
// entity plus embedded author/category fields for direct display. They are
// never persisted.

// AuthorRef is the public slice of a profile embedded in topics and replies.
type AuthorRef struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	AvatarURL     string    `json:"avatarUrl"`
	PremiumStatus string    `json:"premiumStatus"`
}

// CategoryRef is the category slice embedded in topic listings.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TopicSummary is one row of the forum listing.
type TopicSummary struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	IsPinned   bool        `json:"isPinned"`
	IsLocked   bool        `json:"isLocked"`
	CreatedAt  time.Time   `json:"createdAt"`
	Author     AuthorRef   `json:"author"`
	Category   CategoryRef `json:"category"`
	ReplyCount int64       `json:"replyCount"`
}

// TopicDetail is a single topic with its full content.
type TopicDetail struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	IsPinned  bool        `json:"isPinned"`
	IsLocked  bool        `json:"isLocked"`
	CreatedAt time.Time   `json:"createdAt"`
	Author    AuthorRef   `json:"author"`
	Category  CategoryRef `json:"category"`
}

// ReplyView is a reply with its author embedded, in conversation order.
type ReplyView struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	TopicID   uuid.UUID `json:"topicId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    AuthorRef `json:"author"`
}

// NewAuthorRef projects a profile into its embeddable form.
func NewAuthorRef(p *Profile) AuthorRef {
	if p == nil {
		return AuthorRef{}
	}
	return AuthorRef{
		ID:            p.ID,
		Username:      p.Username,
		AvatarURL:     p.AvatarURL,
		PremiumStatus: p.PremiumStatus,
	}
}

// NewReplyView projects a reply with preloaded author into its view form.
func NewReplyView(r *Reply) ReplyView {
	return ReplyView{
		ID:        r.ID,
		Content:   r.Content,
		TopicID:   r.TopicID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Author:    NewAuthorRef(r.Author),
	}
}
