package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/service"
)

// PaginatedResponse represents a paginated response
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Total int64       `json:"total"`
	Pages int         `json:"pages"`
}

// CrawledArticleResponse is one crawl record; content is omitted from listings
type CrawledArticleResponse struct {
	ID          uint       `json:"id"`
	ArticleURL  string     `json:"article_url"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"published_at"`
	Status      string     `json:"status"`
	CrawledAt   time.Time  `json:"crawled_at"`
	ArticleID   *uint      `json:"article_id"`
}

// QuizResponse is a decoded quiz document
type QuizResponse struct {
	ID uint `json:"id"`
	db.QuizContent
}

// TermResponse is a glossary entry
type TermResponse struct {
	ID         uint   `json:"id"`
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

// ArticleResponse is an article with its enrichment
type ArticleResponse struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	ArticleURL  string         `json:"article_url"`
	Summary     *string        `json:"summary"`
	PublishedAt *time.Time     `json:"published_at"`
	ImageURL    string         `json:"image_url"`
	Categories  []string       `json:"categories"`
	Quizzes     []QuizResponse `json:"quizzes"`
	Terms       []TermResponse `json:"terms"`
}

var crawlStatuses = map[string]bool{
	string(db.StatusPending):   true,
	string(db.StatusProcessed): true,
	string(db.StatusFailed):    true,
}

// ListCrawledArticlesHandler pages through the crawl audit trail
func ListCrawledArticlesHandler(dbConn *gorm.DB, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}

		pageSize, err := strconv.Atoi(c.DefaultQuery("size", "10"))
		if err != nil || pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}

		status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
		if status != "" && !crawlStatuses[status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}

		records, total, err := service.ListCrawledArticles(dbConn.WithContext(c.Request.Context()), status, page, pageSize)
		if err != nil {
			log.Error("Failed to list crawled articles", logger.Err(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		data := make([]CrawledArticleResponse, 0, len(records))
		for _, r := range records {
			data = append(data, CrawledArticleResponse{
				ID:          r.ID,
				ArticleURL:  r.ArticleURL,
				Author:      r.Author,
				PublishedAt: r.PublishedAt,
				Status:      string(r.Status),
				CrawledAt:   r.CrawledAt,
				ArticleID:   r.ArticleID,
			})
		}

		c.JSON(http.StatusOK, PaginatedResponse{
			Data:  data,
			Page:  page,
			Size:  pageSize,
			Total: total,
			Pages: int((total + int64(pageSize) - 1) / int64(pageSize)),
		})
	}
}

// GetArticleHandler returns one article with categories, quizzes and terms
func GetArticleHandler(dbConn *gorm.DB, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid article ID"})
			return
		}

		detail, err := service.GetArticleDetail(dbConn.WithContext(c.Request.Context()), uint(id))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
				return
			}
			log.Error("Failed to load article", logger.Uint64("article_id", id), logger.Err(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, toArticleResponse(detail, log))
	}
}

func toArticleResponse(detail *service.ArticleDetail, log logger.Logger) ArticleResponse {
	a := detail.Article
	resp := ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		ArticleURL:  a.ArticleURL,
		Summary:     a.Summary,
		PublishedAt: a.PublishedAt,
		ImageURL:    a.ImageURL,
		Categories:  make([]string, 0, len(detail.Categories)),
		Quizzes:     make([]QuizResponse, 0, len(detail.Quizzes)),
		Terms:       make([]TermResponse, 0, len(detail.Terms)),
	}

	for _, cat := range detail.Categories {
		resp.Categories = append(resp.Categories, cat.Name)
	}
	for i := range detail.Quizzes {
		content, err := detail.Quizzes[i].Decode()
		if err != nil {
			log.Warn("Skipping undecodable quiz", logger.Uint("article_id", a.ID), logger.Err(err))
			continue
		}
		resp.Quizzes = append(resp.Quizzes, QuizResponse{ID: detail.Quizzes[i].ID, QuizContent: content})
	}
	for _, t := range detail.Terms {
		resp.Terms = append(resp.Terms, TermResponse{ID: t.ID, Word: t.Word, Definition: t.Definition})
	}
	return resp
}
