package forum

import (
	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/models"
)

// Cache merges are the optimistic updates applied to the in-memory snapshot
// after a successful write, so the client never re-fetches on create. Each is
// a pure (list, event) -> list function; failed operations must not be
// applied.

// PrependTopic puts a freshly created topic at the head of the listing. A
// topic already present (a racing re-fetch finished first) is not duplicated.
func PrependTopic(topics []models.TopicSummary, created models.TopicSummary) []models.TopicSummary {
	for _, t := range topics {
		if t.ID == created.ID {
			return topics
		}
	}
	out := make([]models.TopicSummary, 0, len(topics)+1)
	out = append(out, created)
	return append(out, topics...)
}

// AppendReply adds a posted reply at the tail, keeping conversation order,
// and skips duplicates.
func AppendReply(replies []models.ReplyView, created models.ReplyView) []models.ReplyView {
	for _, r := range replies {
		if r.ID == created.ID {
			return replies
		}
	}
	out := make([]models.ReplyView, 0, len(replies)+1)
	out = append(out, replies...)
	return append(out, created)
}

// ReplaceReply swaps an edited reply in place without changing order.
func ReplaceReply(replies []models.ReplyView, updated models.ReplyView) []models.ReplyView {
	out := make([]models.ReplyView, len(replies))
	for i, r := range replies {
		if r.ID == updated.ID {
			out[i] = updated
		} else {
			out[i] = r
		}
	}
	return out
}

// RemoveReply drops a deleted reply from the list.
func RemoveReply(replies []models.ReplyView, id uuid.UUID) []models.ReplyView {
	out := make([]models.ReplyView, 0, len(replies))
	for _, r := range replies {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// BumpReplyCount adjusts a topic's reply counter after a reply is posted or
// deleted elsewhere in the UI.
func BumpReplyCount(topics []models.TopicSummary, topicID uuid.UUID, delta int64) []models.TopicSummary {
	out := make([]models.TopicSummary, len(topics))
	for i, t := range topics {
		if t.ID == topicID {
			t.ReplyCount += delta
			if t.ReplyCount < 0 {
				t.ReplyCount = 0
			}
		}
		out[i] = t
	}
	return out
}
