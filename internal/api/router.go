// Package api exposes the operator HTTP surface: login, job triggers and
// read-only views over crawled and enriched articles.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/config"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/middleware"
)

// Deps holds everything the router needs
type Deps struct {
	DB     *gorm.DB
	Runner JobSubmitter
	Auth   config.AuthConfig
	Log    logger.Logger
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "snack-pipeline",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/login", LoginHandler(d.DB, d.Auth, d.Log))

	authorized := r.Group("/")
	authorized.Use(middleware.JWTRequired(d.Auth.JWTSecret, d.Log))
	{
		authorized.POST("/jobs/crawl", SubmitCollectCrawlHandler(d.Runner, d.Log))
		authorized.POST("/jobs/crawl/links", SubmitCrawlLinksHandler(d.Runner, d.Log))
		authorized.POST("/jobs/enrich", SubmitEnrichHandler(d.Runner, d.Log))
		authorized.GET("/crawled-articles", ListCrawledArticlesHandler(d.DB, d.Log))
		authorized.GET("/articles/:id", GetArticleHandler(d.DB, d.Log))
	}

	return r
}
