package forum

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/notmine/community-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topic(title, author, category string, pinned bool, createdAt time.Time) models.TopicSummary {
	return models.TopicSummary{
		ID:        uuid.New(),
		Title:     title,
		IsPinned:  pinned,
		CreatedAt: createdAt,
		Author:    models.AuthorRef{ID: uuid.New(), Username: author},
		Category:  models.CategoryRef{ID: uuid.New(), Name: category},
	}
}

func TestFilterMatchesTitleCaseInsensitive(t *testing.T) {
	topics := []models.TopicSummary{
		topic("Redstone Basics", "Sam", "Guides", false, time.Now()),
	}

	got := Filter(topics, Query{Search: "redstone", Category: AllCategories})
	require.Len(t, got, 1)
	assert.Equal(t, "Redstone Basics", got[0].Title)
}

func TestFilterMatchesAuthorUsername(t *testing.T) {
	topics := []models.TopicSummary{
		topic("Castle build log", "SamTheBuilder", "Builds", false, time.Now()),
		topic("Survival tips", "Alex", "Guides", false, time.Now()),
	}

	got := Filter(topics, Query{Search: "samthe", Category: AllCategories})
	require.Len(t, got, 1)
	assert.Equal(t, "Castle build log", got[0].Title)
}

func TestFilterByCategory(t *testing.T) {
	topics := []models.TopicSummary{
		topic("Redstone Basics", "Sam", "Guides", false, time.Now()),
	}

	got := Filter(topics, Query{Search: "", Category: "Builds"})
	assert.Empty(t, got)

	got = Filter(topics, Query{Search: "", Category: "Guides"})
	assert.Len(t, got, 1)
}

func TestFilterEmptyQueryReturnsEverything(t *testing.T) {
	topics := []models.TopicSummary{
		topic("One", "a", "General", false, time.Now()),
		topic("Two", "b", "Builds", false, time.Now()),
	}

	got := Filter(topics, Query{})
	assert.Len(t, got, 2)
}

func TestFilterIsDeterministicAndOrderPreserving(t *testing.T) {
	topics := []models.TopicSummary{
		topic("alpha", "x", "General", false, time.Now()),
		topic("beta alpha", "y", "General", false, time.Now()),
		topic("gamma", "alphonse", "General", false, time.Now()),
	}
	q := Query{Search: "alph", Category: AllCategories}

	first := Filter(topics, q)
	second := Filter(topics, q)
	require.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "alpha", first[0].Title)
	assert.Equal(t, "beta alpha", first[1].Title)
	assert.Equal(t, "gamma", first[2].Title)
}

func TestSortTopicsPinnedBeforeUnpinnedRegardlessOfTime(t *testing.T) {
	now := time.Now()
	topics := []models.TopicSummary{
		topic("old pinned", "a", "General", true, now.Add(-48*time.Hour)),
		topic("new unpinned", "b", "General", false, now),
	}

	SortTopics(topics)
	assert.Equal(t, "old pinned", topics[0].Title)
	assert.Equal(t, "new unpinned", topics[1].Title)
}

func TestSortTopicsNewestFirstWithinGroup(t *testing.T) {
	now := time.Now()
	topics := []models.TopicSummary{
		topic("older", "a", "General", false, now.Add(-2*time.Hour)),
		topic("newest", "b", "General", false, now),
		topic("middle", "c", "General", false, now.Add(-1*time.Hour)),
	}

	SortTopics(topics)
	assert.Equal(t, "newest", topics[0].Title)
	assert.Equal(t, "middle", topics[1].Title)
	assert.Equal(t, "older", topics[2].Title)
}
