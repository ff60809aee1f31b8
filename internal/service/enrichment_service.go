package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
)

// CreateArticleQuiz inserts a quiz document and links it to the article
func CreateArticleQuiz(dbConn *gorm.DB, articleID uint, content []byte) (*db.Quiz, error) {
	quiz := db.Quiz{Content: datatypes.JSON(content)}
	if err := dbConn.Create(&quiz).Error; err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	link := db.ArticleQuiz{ArticleID: articleID, QuizID: quiz.ID}
	if err := dbConn.Create(&link).Error; err != nil {
		return nil, fmt.Errorf("failed to link quiz %d: %w", quiz.ID, err)
	}
	return &quiz, nil
}

// GetOrCreateTerm returns the term stored for word. An existing term keeps its
// original definition.
func GetOrCreateTerm(dbConn *gorm.DB, word, definition string) (*db.Term, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("term word cannot be empty")
	}

	var term db.Term
	err := dbConn.Where("word = ?", word).First(&term).Error
	if err == nil {
		return &term, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	term = db.Term{Word: word, Definition: strings.TrimSpace(definition)}
	if err := dbConn.Create(&term).Error; err != nil {
		return nil, err
	}
	return &term, nil
}

// LinkArticleTerm links a term to an article unless the link already exists.
// It reports whether a new link was created.
func LinkArticleTerm(dbConn *gorm.DB, articleID, termID uint) (bool, error) {
	var count int64
	err := dbConn.Model(&db.ArticleTerm{}).
		Where("article_id = ? AND term_id = ?", articleID, termID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	link := db.ArticleTerm{ArticleID: articleID, TermID: termID}
	if err := dbConn.Create(&link).Error; err != nil {
		return false, err
	}
	return true, nil
}
