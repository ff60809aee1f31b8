package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/middleware"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/pipeline"
)

// JobSubmitter queues pipeline jobs
type JobSubmitter interface {
	Submit(kind pipeline.JobKind, links []string) (string, error)
}

// CrawlLinksRequest is the crawl envelope accepted by POST /jobs/crawl/links
type CrawlLinksRequest struct {
	Items []CrawlLinkItem `json:"items" binding:"required,min=1,max=100,dive"`
}

// CrawlLinkItem is one link of a CrawlLinksRequest
type CrawlLinkItem struct {
	Link string `json:"link" binding:"required,url"`
}

// JobResponse acknowledges a queued job
type JobResponse struct {
	RunID string `json:"run_id"`
	Kind  string `json:"kind"`
	Links int    `json:"links,omitempty"`
}

// SubmitCollectCrawlHandler queues a collect-and-crawl run
func SubmitCollectCrawlHandler(runner JobSubmitter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		submit(c, runner, log, pipeline.KindCollectCrawl, nil)
	}
}

// SubmitCrawlLinksHandler queues a crawl of the posted links
func SubmitCrawlLinksHandler(runner JobSubmitter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CrawlLinksRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid crawl envelope",
				"details": err.Error(),
			})
			return
		}

		links := make([]string, 0, len(req.Items))
		for _, item := range req.Items {
			links = append(links, strings.TrimSpace(item.Link))
		}
		submit(c, runner, log, pipeline.KindCrawlLinks, links)
	}
}

// SubmitEnrichHandler queues an enrichment run
func SubmitEnrichHandler(runner JobSubmitter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		submit(c, runner, log, pipeline.KindEnrich, nil)
	}
}

func submit(c *gin.Context, runner JobSubmitter, log logger.Logger, kind pipeline.JobKind, links []string) {
	runID, err := runner.Submit(kind, links)
	if err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) || errors.Is(err, pipeline.ErrNotRunning) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		log.Error("Failed to queue job", logger.String("kind", string(kind)), logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue job"})
		return
	}

	fields := []logger.Field{logger.String("run_id", runID), logger.String("kind", string(kind))}
	if op, ok := middleware.OperatorFromContext(c); ok {
		fields = append(fields, logger.String("operator", op.Username))
	}
	log.Info("Job submitted via API", fields...)

	c.JSON(http.StatusAccepted, JobResponse{RunID: runID, Kind: string(kind), Links: len(links)})
}
