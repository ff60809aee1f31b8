package db

import (
	"time"

	"gorm.io/datatypes"
)

type CrawlStatus string

const (
	StatusPending   CrawlStatus = "PENDING"
	StatusProcessed CrawlStatus = "PROCESSED"
	StatusFailed    CrawlStatus = "FAILED"
)

// Article is the canonical record for one news URL
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:400" json:"title"`
	ArticleURL  string     `gorm:"uniqueIndex;not null;size:768" json:"article_url"`
	Summary     *string    `gorm:"type:text" json:"summary"`
	PublishedAt *time.Time `json:"published_at"`
	ImageURL    string     `gorm:"size:512" json:"image_url"`
	ViewCount   int        `gorm:"not null;default:0" json:"view_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CrawledArticle is one crawl attempt; a URL may have several
type CrawledArticle struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ArticleURL  string      `gorm:"index;not null;size:768" json:"article_url"`
	Author      string      `gorm:"size:100" json:"author"`
	PublishedAt *time.Time  `json:"published_at"`
	Content     *string     `gorm:"type:text" json:"content"`
	Status      CrawlStatus `gorm:"size:16;index;not null" json:"status"`
	CrawledAt   time.Time   `json:"crawled_at"`
	ArticleID   *uint       `gorm:"index" json:"article_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Category is one entry of the fixed section taxonomy
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null;size:50" json:"name"`
}

// ArticleCategory links an article to its category
type ArticleCategory struct {
	ArticleID  uint      `gorm:"primaryKey;autoIncrement:false" json:"article_id"`
	CategoryID uint      `gorm:"primaryKey;autoIncrement:false" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Quiz stores one generated question as a JSON document (see QuizContent)
type Quiz struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Content   datatypes.JSON `gorm:"not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// ArticleQuiz links a quiz to the article it was generated from
type ArticleQuiz struct {
	ArticleID uint      `gorm:"primaryKey;autoIncrement:false" json:"article_id"`
	QuizID    uint      `gorm:"primaryKey;autoIncrement:false" json:"quiz_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Term is a glossary entry shared across articles
type Term struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Word       string    `gorm:"uniqueIndex;not null;size:100" json:"word"`
	Definition string    `gorm:"type:text" json:"definition"`
	CreatedAt  time.Time `json:"created_at"`
}

// ArticleTerm links a term to an article
type ArticleTerm struct {
	ArticleID uint      `gorm:"primaryKey;autoIncrement:false" json:"article_id"`
	TermID    uint      `gorm:"primaryKey;autoIncrement:false" json:"term_id"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents an operator of the admin API
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Password  string    `gorm:"not null;size:255" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Quiz) TableName() string            { return "quizzes" }
func (ArticleCategory) TableName() string { return "article_categories" }
func (ArticleQuiz) TableName() string     { return "article_quizzes" }
func (ArticleTerm) TableName() string     { return "article_terms" }
