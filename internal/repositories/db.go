package repositories

import (
	"log"

	"github.com/notmine/community-server/internal/config"
	"github.com/notmine/community-server/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase opens the Postgres connection and runs migrations. When
// DB_URL is unset the backend counts as unconfigured: DB stays nil, reads
// render an explicit unavailable state and writes fail fast instead of
// crashing the process.
func ConnectDatabase() {
	dsn := config.Envs.DB_URL
	if dsn == "" {
		log.Println("DB_URL not set, running without a configured backend")
		return
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatal("Migration failed:", err)
	}
	DB = db
	log.Println("Successfully connected to database")
}

// Migrate runs the schema migration and seeds the category directory.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Profile{},
		&models.PasswordReset{},
		&models.Category{},
		&models.Topic{},
		&models.Reply{},
	)
	if err != nil {
		return err
	}
	return seedCategories(db)
}

// Category rows are managed out of band; the seed only fills an empty table
// so a fresh install has something to post into.
func seedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := []models.Category{
		{Name: "General", Icon: "message-square", Description: "Anything about the game and the community"},
		{Name: "Builds", Icon: "hammer", Description: "Show off your constructions and get feedback"},
		{Name: "Redstone", Icon: "zap", Description: "Circuits, contraptions and automation"},
		{Name: "Guides", Icon: "book-open", Description: "Tutorials and how-tos by the community"},
		{Name: "Servers", Icon: "server", Description: "Find servers and recruit players"},
		{Name: "Support", Icon: "life-buoy", Description: "Technical help and account questions"},
	}
	return db.Create(&defaults).Error
}

// Configured reports whether a backend connection exists.
func Configured() bool {
	return DB != nil
}
