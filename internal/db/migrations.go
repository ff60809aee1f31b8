package db

import (
	"errors"
	"log"

	"gorm.io/gorm"
)

// runMigrations performs database migrations
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Article{},
		&CrawledArticle{},
		&Category{},
		&ArticleCategory{},
		&Quiz{},
		&ArticleQuiz{},
		&Term{},
		&ArticleTerm{},
	)
}

// SeedCategories inserts any taxonomy names that are missing
func SeedCategories(db *gorm.DB, names []string) error {
	created := 0
	for _, name := range names {
		var existing Category
		err := db.Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&Category{Name: name}).Error; err != nil {
			return err
		}
		created++
	}

	if created > 0 {
		log.Printf("Seeded %d categories", created)
	}
	return nil
}
