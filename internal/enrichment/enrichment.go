// Package enrichment asks the language model to summarise crawled articles and
// stores the summary, quizzes and glossary terms it returns.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/llm"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/metrics"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/service"
)

// Config holds enrichment run settings
type Config struct {
	BatchSize    int
	ArticlePause time.Duration
	BatchPause   time.Duration
	// MaxArticles caps a run; zero means every unsummarised article.
	MaxArticles int
}

// DefaultConfig returns default enrichment settings
func DefaultConfig() Config {
	return Config{
		BatchSize:    5,
		ArticlePause: 10 * time.Second,
		BatchPause:   10 * time.Second,
	}
}

// ArticleError records why one article could not be enriched
type ArticleError struct {
	ArticleID uint
	Err       error
}

func (e ArticleError) Error() string {
	return fmt.Sprintf("article %d: %v", e.ArticleID, e.Err)
}

func (e ArticleError) Unwrap() error { return e.Err }

// Report summarises one enrichment run
type Report struct {
	Selected    int
	Enriched    int
	Skipped     int
	Failures    []ArticleError
	Interrupted bool
}

// Failed returns the number of articles that hit an error
func (r Report) Failed() int { return len(r.Failures) }

// Orchestrator runs enrichment over unsummarised articles
type Orchestrator struct {
	db    *gorm.DB
	gen   llm.Generator
	log   logger.Logger
	cfg   Config
	sleep llm.SleepFunc
}

// Option customises an Orchestrator
type Option func(*Orchestrator)

// WithSleep replaces the pause function
func WithSleep(sleep llm.SleepFunc) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// New creates an orchestrator; gen is normally an *llm.Retrier
func New(dbConn *gorm.DB, gen llm.Generator, log logger.Logger, cfg Config, opts ...Option) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	o := &Orchestrator{db: dbConn, gen: gen, log: log, cfg: cfg, sleep: llm.Sleep}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type articleOutcome int

const (
	outcomeEnriched articleOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// Run enriches every article without a summary, in batches. Per-article
// failures are collected in the report. A cancelled ctx ends the run early
// with Interrupted set and no error.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	var report Report

	ids, err := service.UnsummarizedArticleIDs(o.db.WithContext(ctx), o.cfg.MaxArticles)
	if err != nil {
		return report, fmt.Errorf("failed to select articles: %w", err)
	}
	report.Selected = len(ids)
	if len(ids) == 0 {
		o.log.Info("No articles need a summary")
		return report, nil
	}

	for start := 0; start < len(ids); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(ids) {
			end = len(ids)
		}

		for _, id := range ids[start:end] {
			if ctx.Err() != nil {
				report.Interrupted = true
				return o.finish(report), nil
			}

			outcome, err := o.enrichArticle(ctx, id)
			switch outcome {
			case outcomeEnriched:
				report.Enriched++
				metrics.EnrichmentOutcomes.WithLabelValues("enriched").Inc()
			case outcomeSkipped:
				report.Skipped++
				metrics.EnrichmentOutcomes.WithLabelValues("skipped").Inc()
				continue
			case outcomeFailed:
				if ctx.Err() != nil {
					report.Interrupted = true
					return o.finish(report), nil
				}
				report.Failures = append(report.Failures, ArticleError{ArticleID: id, Err: err})
				metrics.EnrichmentOutcomes.WithLabelValues("failed").Inc()
			}

			if err := o.sleep(ctx, o.cfg.ArticlePause); err != nil {
				report.Interrupted = true
				return o.finish(report), nil
			}
		}

		o.log.Info("Enrichment batch done", logger.Int("batch_start", start), logger.Int("batch_end", end))
		if err := o.sleep(ctx, o.cfg.BatchPause); err != nil {
			report.Interrupted = true
			return o.finish(report), nil
		}
	}

	return o.finish(report), nil
}

func (o *Orchestrator) finish(report Report) Report {
	o.log.Info("Enrichment run finished",
		logger.Int("selected", report.Selected),
		logger.Int("enriched", report.Enriched),
		logger.Int("skipped", report.Skipped),
		logger.Int("failed", report.Failed()),
		logger.Bool("interrupted", report.Interrupted))
	return report
}

// enrichArticle runs one article through the model and stores the result
func (o *Orchestrator) enrichArticle(ctx context.Context, articleID uint) (articleOutcome, error) {
	log := o.log.With(logger.Uint("article_id", articleID))

	crawled, err := service.LatestProcessedCrawl(o.db.WithContext(ctx), articleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("No processed crawl for article")
		return outcomeSkipped, nil
	}
	if err != nil {
		log.Error("Failed to load crawl", logger.Err(err))
		return outcomeFailed, fmt.Errorf("failed to load crawl: %w", err)
	}
	if crawled.Content == nil || strings.TrimSpace(*crawled.Content) == "" {
		log.Warn("Crawled article has no content")
		return outcomeSkipped, nil
	}

	answer, err := o.gen.Generate(ctx, BuildPrompt(*crawled.Content))
	if err != nil {
		log.Error("Model call failed", logger.Err(err))
		return outcomeFailed, err
	}

	result, err := ParseResult(answer)
	if err != nil {
		log.Error("Model answer rejected", logger.Err(err), logger.String("answer", answer))
		return outcomeFailed, err
	}

	if err := o.store(ctx, articleID, result); err != nil {
		log.Error("Failed to store enrichment", logger.Err(err))
		return outcomeFailed, err
	}

	article, err := service.GetArticleByID(o.db.WithContext(ctx), articleID)
	if err != nil || article.Summary == nil {
		log.Warn("Summary missing after update", logger.Any("read_error", err))
	} else {
		log.Info("Article enriched",
			logger.Int("summary_len", len([]rune(*article.Summary))),
			logger.Int("quizzes", len(result.Quizzes)),
			logger.Int("terms", len(result.Terms)))
	}
	return outcomeEnriched, nil
}

// store writes summary, quizzes and terms in one transaction
func (o *Orchestrator) store(ctx context.Context, articleID uint, result *Result) error {
	return o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := service.UpdateArticleSummary(tx, articleID, result.Summary); err != nil {
			return fmt.Errorf("failed to update summary: %w", err)
		}

		for _, quiz := range result.Quizzes {
			blob, err := json.Marshal(quiz)
			if err != nil {
				return fmt.Errorf("failed to encode quiz: %w", err)
			}
			if _, err := service.CreateArticleQuiz(tx, articleID, blob); err != nil {
				return err
			}
		}

		for _, t := range result.Terms {
			term, err := service.GetOrCreateTerm(tx, t.Word, t.Meaning)
			if err != nil {
				return fmt.Errorf("failed to store term %q: %w", t.Word, err)
			}
			if _, err := service.LinkArticleTerm(tx, articleID, term.ID); err != nil {
				return fmt.Errorf("failed to link term %q: %w", t.Word, err)
			}
		}
		return nil
	})
}
