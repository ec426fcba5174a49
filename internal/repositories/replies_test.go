package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/errs"
	"github.com/notmine/community-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepliesListOldestFirst(t *testing.T) {
	db := newTestDB(t)
	author := seedProfile(t, db, "sam")
	category := seededCategory(t, db, "General")
	topic := seedTopic(t, db, author, category, "thread", false, false, time.Now().Add(-time.Hour))
	now := time.Now()

	seedReply(t, db, author, topic, "third", now)
	seedReply(t, db, author, topic, "first", now.Add(-20*time.Minute))
	seedReply(t, db, author, topic, "second", now.Add(-10*time.Minute))

	replies, err := NewReplies(db).ListForTopic(context.Background(), topic.ID)
	require.NoError(t, err)
	require.Len(t, replies, 3)

	assert.Equal(t, "first", replies[0].Content)
	assert.Equal(t, "second", replies[1].Content)
	assert.Equal(t, "third", replies[2].Content)
	for i := 1; i < len(replies); i++ {
		assert.False(t, replies[i].CreatedAt.Before(replies[i-1].CreatedAt))
	}
}

func TestRepliesCreate(t *testing.T) {
	db := newTestDB(t)
	author := seedProfile(t, db, "sam")
	category := seededCategory(t, db, "General")
	topic := seedTopic(t, db, author, category, "thread", false, false, time.Now())

	reply, err := NewReplies(db).Create(context.Background(), NewReply{
		Content:  "hello there",
		TopicID:  topic.ID,
		AuthorID: author.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply.Content)
	assert.Equal(t, "sam", reply.Author.Username)
	assert.Equal(t, topic.ID, reply.TopicID)
}

func TestRepliesCreateValidation(t *testing.T) {
	db := newTestDB(t)
	author := seedProfile(t, db, "sam")
	category := seededCategory(t, db, "General")
	topic := seedTopic(t, db, author, category, "thread", false, false, time.Now())

	store := NewReplies(db)

	_, err := store.Create(context.Background(), NewReply{Content: "  ", TopicID: topic.ID, AuthorID: author.ID})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = store.Create(context.Background(), NewReply{Content: "hi", TopicID: topic.ID})
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)

	_, err = store.Create(context.Background(), NewReply{Content: "hi", TopicID: uuid.New(), AuthorID: author.ID})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Reply{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepliesCreateRejectsLockedTopic(t *testing.T) {
	db := newTestDB(t)
	author := seedProfile(t, db, "sam")
	category := seededCategory(t, db, "General")
	locked := seedTopic(t, db, author, category, "locked thread", false, true, time.Now())

	_, err := NewReplies(db).Create(context.Background(), NewReply{
		Content:  "too late",
		TopicID:  locked.ID,
		AuthorID: author.ID,
	})
	assert.ErrorIs(t, err, errs.ErrTopicLocked)
}

func TestRepliesUpdateOwnershipGate(t *testing.T) {
	db := newTestDB(t)
	author := seedProfile(t, db, "sam")
	intruder := seedProfile(t, db, "alex")
	category := seededCategory(t, db, "General")
	topic := seedTopic(t, db, author, category, "thread", false, false, time.Now())
	reply := seedReply(t, db, author, topic, "original", time.Now())

	store := NewReplies(db)

	_, err := store.Update(context.Background(), reply.ID, "hijacked", intruder.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	var unchanged models.Reply
	require.NoError(t, db.First(&unchanged, "id = ?", reply.ID).Error)
	assert.Equal(t, "original", unchanged.Content)

	updated, err := store.Update(context.Background(), reply.ID, "edited", author.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, "sam", updated.Author.Username)
}

func TestRepliesUpdateValidation(t *testing.T) {
	db := newTestDB(t)
	author := seedProfile(t, db, "sam")
	category := seededCategory(t, db, "General")
	topic := seedTopic(t, db, author, category, "thread", false, false, time.Now())
	reply := seedReply(t, db, author, topic, "original", time.Now())

	_, err := NewReplies(db).Update(context.Background(), reply.ID, "", author.ID)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRepliesDeleteOwnershipAndIdempotence(t *testing.T) {
	db := newTestDB(t)
	author := seedProfile(t, db, "sam")
	intruder := seedProfile(t, db, "alex")
	category := seededCategory(t, db, "General")
	topic := seedTopic(t, db, author, category, "thread", false, false, time.Now())
	reply := seedReply(t, db, author, topic, "bye", time.Now())

	store := NewReplies(db)

	err := store.Delete(context.Background(), reply.ID, intruder.ID)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	require.NoError(t, store.Delete(context.Background(), reply.ID, author.ID))

	// The second delete finds nothing.
	err = store.Delete(context.Background(), reply.ID, author.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRepliesUnconfiguredBackend(t *testing.T) {
	store := NewReplies(nil)

	_, err := store.ListForTopic(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrBackendUnavailable)

	err = store.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrBackendUnavailable)
}
