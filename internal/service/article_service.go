package service

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
)

// CrawledExists reports whether any crawl attempt was recorded for the URL
func CrawledExists(dbConn *gorm.DB, articleURL string) (bool, error) {
	var count int64
	err := dbConn.Model(&db.CrawledArticle{}).Where("article_url = ?", articleURL).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListCrawledURLs returns every URL that has a crawl record
func ListCrawledURLs(dbConn *gorm.DB) ([]string, error) {
	var urls []string
	err := dbConn.Model(&db.CrawledArticle{}).Distinct().Pluck("article_url", &urls).Error
	return urls, err
}

// CreateCrawledArticle appends a crawl attempt to the audit trail
func CreateCrawledArticle(dbConn *gorm.DB, record *db.CrawledArticle) error {
	if record.ArticleURL == "" {
		return fmt.Errorf("article url cannot be empty")
	}
	return dbConn.Create(record).Error
}

// GetOrCreateArticle returns the article stored for the URL, inserting it when missing
func GetOrCreateArticle(dbConn *gorm.DB, candidate db.Article) (*db.Article, error) {
	if candidate.ArticleURL == "" {
		return nil, fmt.Errorf("article url cannot be empty")
	}

	var article db.Article
	err := dbConn.
		Where(db.Article{ArticleURL: candidate.ArticleURL}).
		Attrs(db.Article{
			Title:       candidate.Title,
			PublishedAt: candidate.PublishedAt,
			ViewCount:   0,
		}).
		FirstOrCreate(&article).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticleByID retrieves an article by ID
func GetArticleByID(dbConn *gorm.DB, id uint) (*db.Article, error) {
	var article db.Article
	if err := dbConn.First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// SetArticleImage stores the image URL of an article
func SetArticleImage(dbConn *gorm.DB, id uint, imageURL string) error {
	return dbConn.Model(&db.Article{}).Where("id = ?", id).Update("image_url", imageURL).Error
}

// GetCategoryByName retrieves a taxonomy entry by name
func GetCategoryByName(dbConn *gorm.DB, name string) (*db.Category, error) {
	var category db.Category
	if err := dbConn.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// LinkArticleCategory records the category of an article; an existing link is kept
func LinkArticleCategory(dbConn *gorm.DB, articleID, categoryID uint) error {
	link := db.ArticleCategory{ArticleID: articleID, CategoryID: categoryID}
	return dbConn.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

// UnsummarizedArticleIDs returns IDs of articles with no summary, newest first.
// A limit of zero means no limit.
func UnsummarizedArticleIDs(dbConn *gorm.DB, limit int) ([]uint, error) {
	query := dbConn.Model(&db.Article{}).Where("summary IS NULL").Order("created_at desc, id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ids []uint
	err := query.Pluck("id", &ids).Error
	return ids, err
}

// LatestProcessedCrawl returns the newest successful crawl of an article
func LatestProcessedCrawl(dbConn *gorm.DB, articleID uint) (*db.CrawledArticle, error) {
	var crawled db.CrawledArticle
	err := dbConn.
		Where("article_id = ? AND status = ?", articleID, db.StatusProcessed).
		Order("crawled_at desc, id desc").
		First(&crawled).Error
	if err != nil {
		return nil, err
	}
	return &crawled, nil
}

// UpdateArticleSummary sets the summary of an article
func UpdateArticleSummary(dbConn *gorm.DB, id uint, summary string) error {
	result := dbConn.Model(&db.Article{}).Where("id = ?", id).Update("summary", summary)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
