package repositories

import (
	"testing"
	"time"

	"github.com/notmine/community-server/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()
	profile := models.Profile{
		Username:      username,
		Email:         username + "@example.com",
		Password:      "hash",
		PremiumStatus: models.PremiumFree,
	}
	require.NoError(t, db.Create(&profile).Error)
	return &profile
}

func seededCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	var category models.Category
	require.NoError(t, db.First(&category, "name = ?", name).Error)
	return &category
}

func seedTopic(t *testing.T, db *gorm.DB, author *models.Profile, category *models.Category, title string, pinned, locked bool, createdAt time.Time) *models.Topic {
	t.Helper()
	topic := models.Topic{
		Title:      title,
		Content:    "content of " + title,
		CategoryID: category.ID,
		AuthorID:   author.ID,
		IsPinned:   pinned,
		IsLocked:   locked,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&topic).Error)
	return &topic
}

func seedReply(t *testing.T, db *gorm.DB, author *models.Profile, topic *models.Topic, content string, createdAt time.Time) *models.Reply {
	t.Helper()
	reply := models.Reply{
		Content:   content,
		TopicID:   topic.ID,
		AuthorID:  author.ID,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&reply).Error)
	return &reply
}
