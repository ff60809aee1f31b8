// Package crawler turns candidate article links into stored articles and
// crawl records. A failing link never affects the others.
package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/category"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/metrics"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/service"
)

// PageFetcher fetches and parses an HTML page
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Config holds crawler configuration
type Config struct {
	// ArticlePrefix is the host prefix every accepted link must start with.
	ArticlePrefix string
	// IconBaseURL enables per-category article images when set.
	IconBaseURL string
	// Location is the publisher time zone for publish timestamps.
	Location *time.Location
}

// Envelope is the crawl input document: {"items":[{"link":"..."}]}
type Envelope struct {
	Items []Item `json:"items"`
}

// Item is one candidate link
type Item struct {
	Link string `json:"link"`
}

// NewEnvelope wraps links in the crawl input shape
func NewEnvelope(links []string) Envelope {
	env := Envelope{Items: make([]Item, 0, len(links))}
	for _, l := range links {
		env.Items = append(env.Items, Item{Link: l})
	}
	return env
}

// Links returns the non-empty links of the envelope
func (e Envelope) Links() []string {
	links := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		if l := strings.TrimSpace(it.Link); l != "" {
			links = append(links, l)
		}
	}
	return links
}

// Report summarises one crawl run
type Report struct {
	Processed   int
	Failed      int
	Skipped     int
	Interrupted bool
}

// Crawler fetches article pages and persists them
type Crawler struct {
	db      *gorm.DB
	fetcher PageFetcher
	log     logger.Logger
	cfg     Config
	now     func() time.Time
}

// New creates a crawler
func New(dbConn *gorm.DB, fetcher PageFetcher, log logger.Logger, cfg Config) *Crawler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cfg.ArticlePrefix = strings.TrimRight(cfg.ArticlePrefix, "/")
	return &Crawler{
		db:      dbConn,
		fetcher: fetcher,
		log:     log,
		cfg:     cfg,
		now:     time.Now,
	}
}

// CrawlFromJSON decodes an envelope and crawls its links. Only a malformed
// document is an error; per-link problems end up in the report.
func (c *Crawler) CrawlFromJSON(ctx context.Context, data []byte) (Report, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Report{}, fmt.Errorf("failed to decode crawl envelope: %w", err)
	}
	return c.CrawlLinks(ctx, env.Links()), nil
}

// CrawlLinks crawls links one at a time
func (c *Crawler) CrawlLinks(ctx context.Context, links []string) Report {
	var report Report
	for _, link := range links {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		outcome := c.crawlLink(ctx, link)
		switch outcome {
		case outcomeProcessed:
			report.Processed++
		case outcomeFailed:
			report.Failed++
		default:
			report.Skipped++
		}
		metrics.CrawlOutcomes.WithLabelValues(string(outcome)).Inc()
	}

	c.log.Info("Crawl run finished",
		logger.Int("processed", report.Processed),
		logger.Int("failed", report.Failed),
		logger.Int("skipped", report.Skipped),
		logger.Bool("interrupted", report.Interrupted))
	return report
}

type outcome string

const (
	outcomeProcessed outcome = "processed"
	outcomeFailed    outcome = "failed"
	outcomeSkipped   outcome = "skipped"
)

// crawlLink processes a single link
func (c *Crawler) crawlLink(ctx context.Context, link string) outcome {
	log := c.log.With(logger.String("link", link))

	if !strings.HasPrefix(link, c.cfg.ArticlePrefix) {
		log.Debug("Skipping link outside article host")
		return outcomeSkipped
	}

	exists, err := service.CrawledExists(c.db.WithContext(ctx), link)
	if err != nil {
		log.Error("Failed to check crawl history", logger.Err(err))
		return outcomeFailed
	}
	if exists {
		log.Debug("Skipping already crawled link")
		return outcomeSkipped
	}

	record, err := c.crawlAndStore(ctx, link)
	if err != nil {
		log.Warn("Crawl failed", logger.Err(err))
		c.recordFailure(ctx, link)
		return outcomeFailed
	}

	log.Info("Crawled article",
		logger.Uint("article_id", *record.ArticleID),
		logger.String("author", record.Author),
		logger.Int("content_len", len([]rune(*record.Content))))
	return outcomeProcessed
}

// crawlAndStore fetches the page and writes article, category link and crawl record in one transaction
func (c *Crawler) crawlAndStore(ctx context.Context, link string) (*db.CrawledArticle, error) {
	doc, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	page, err := ParsePage(doc, c.cfg.Location)
	if err != nil {
		return nil, err
	}

	// Links without a sid fall back to the sectionId declared in the page scripts.
	var scriptCode string
	if category.SectionCode(link) == category.DefaultCode {
		if html, htmlErr := doc.Html(); htmlErr == nil {
			scriptCode = category.SectionCodeFromHTML(html, articleIDFromURL(link))
		}
	}

	var record *db.CrawledArticle
	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		article, err := service.GetOrCreateArticle(tx, db.Article{
			Title:       page.Title,
			ArticleURL:  link,
			PublishedAt: page.PublishedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to store article: %w", err)
		}

		var cat *db.Category
		if scriptCode != "" {
			cat, err = category.Resolve(tx, category.NameForCode(scriptCode))
		} else {
			cat, err = category.Classify(ctx, tx, link)
		}
		if err != nil {
			return err
		}
		if err := service.LinkArticleCategory(tx, article.ID, cat.ID); err != nil {
			return fmt.Errorf("failed to link category: %w", err)
		}

		if icon := category.IconURL(c.cfg.IconBaseURL, cat.Name); icon != "" && icon != article.ImageURL {
			if err := service.SetArticleImage(tx, article.ID, icon); err != nil {
				return fmt.Errorf("failed to set article image: %w", err)
			}
		}

		content := page.Content
		articleID := article.ID
		record = &db.CrawledArticle{
			ArticleURL:  link,
			Author:      page.Author,
			PublishedAt: page.PublishedAt,
			Content:     &content,
			Status:      db.StatusProcessed,
			CrawledAt:   c.now(),
			ArticleID:   &articleID,
		}
		return service.CreateCrawledArticle(tx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// recordFailure appends a FAILED crawl record with no content and no article
func (c *Crawler) recordFailure(ctx context.Context, link string) {
	// The failure row must land even when ctx was the cause of the failure.
	dbConn := c.db.WithContext(context.WithoutCancel(ctx))
	err := service.CreateCrawledArticle(dbConn, &db.CrawledArticle{
		ArticleURL: link,
		Status:     db.StatusFailed,
		CrawledAt:  c.now(),
	})
	if err != nil {
		c.log.Error("Failed to record crawl failure", logger.String("link", link), logger.Err(err))
	}
}
