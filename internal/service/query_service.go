package service

import (
	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
)

// ArticleDetail is an article together with everything enrichment attached to it
type ArticleDetail struct {
	Article    db.Article
	Categories []db.Category
	Quizzes    []db.Quiz
	Terms      []db.Term
}

// ListCrawledArticles returns one page of the crawl audit trail, newest first
func ListCrawledArticles(dbConn *gorm.DB, status string, page, size int) ([]db.CrawledArticle, int64, error) {
	query := dbConn.Model(&db.CrawledArticle{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []db.CrawledArticle
	err := query.Order("crawled_at desc, id desc").
		Limit(size).
		Offset((page - 1) * size).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// GetArticleDetail loads an article with its categories, quizzes and terms
func GetArticleDetail(dbConn *gorm.DB, id uint) (*ArticleDetail, error) {
	article, err := GetArticleByID(dbConn, id)
	if err != nil {
		return nil, err
	}

	detail := &ArticleDetail{Article: *article}

	err = dbConn.Model(&db.Category{}).
		Joins("JOIN article_categories ON article_categories.category_id = categories.id").
		Where("article_categories.article_id = ?", id).
		Order("categories.id").
		Find(&detail.Categories).Error
	if err != nil {
		return nil, err
	}

	err = dbConn.Model(&db.Quiz{}).
		Joins("JOIN article_quizzes ON article_quizzes.quiz_id = quizzes.id").
		Where("article_quizzes.article_id = ?", id).
		Order("quizzes.id").
		Find(&detail.Quizzes).Error
	if err != nil {
		return nil, err
	}

	err = dbConn.Model(&db.Term{}).
		Joins("JOIN article_terms ON article_terms.term_id = terms.id").
		Where("article_terms.article_id = ?", id).
		Order("terms.id").
		Find(&detail.Terms).Error
	if err != nil {
		return nil, err
	}

	return detail, nil
}
