// Package pipeline runs collect, crawl and enrich jobs one at a time on a
// single background worker.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/crawler"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/enrichment"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/metrics"
)

var (
	// ErrQueueFull is returned by Submit when the job queue has no room.
	ErrQueueFull = errors.New("job queue is full")
	// ErrNotRunning is returned by Submit before Start or after Stop.
	ErrNotRunning = errors.New("pipeline runner is not running")
)

// JobKind names what a job does
type JobKind string

const (
	KindCollectCrawl JobKind = "collect-crawl"
	KindCrawlLinks   JobKind = "crawl-links"
	KindEnrich       JobKind = "enrich"
)

// Job is one queued unit of work
type Job struct {
	ID    string
	Kind  JobKind
	Links []string
}

// LinkCollector discovers candidate links
type LinkCollector interface {
	Collect(ctx context.Context) ([]string, error)
}

// LinkCrawler crawls a list of links
type LinkCrawler interface {
	CrawlLinks(ctx context.Context, links []string) crawler.Report
}

// Enricher runs one enrichment pass
type Enricher interface {
	Run(ctx context.Context) (enrichment.Report, error)
}

// DefaultQueueSize is used when no queue size is configured
const DefaultQueueSize = 10

// Runner owns the job queue and its single worker
type Runner struct {
	collector LinkCollector
	crawler   LinkCrawler
	enricher  Enricher
	log       logger.Logger

	queue     chan Job
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
}

// New creates a runner
func New(collector LinkCollector, crawler LinkCrawler, enricher Enricher, log logger.Logger, queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		collector: collector,
		crawler:   crawler,
		enricher:  enricher,
		log:       log,
		queue:     make(chan Job, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the worker
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("pipeline runner is already running")
	}
	if r.ctx.Err() != nil {
		return fmt.Errorf("pipeline runner was stopped")
	}
	r.isRunning = true

	r.wg.Add(1)
	go r.worker()

	r.log.Info("Pipeline runner started", logger.Int("queue_size", cap(r.queue)))
	return nil
}

// Stop cancels the running job, drops queued ones and waits for the worker
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return nil
	}
	r.isRunning = false
	r.cancel()
	close(r.queue)

	r.wg.Wait()
	r.log.Info("Pipeline runner stopped")
	return nil
}

// Submit enqueues a job without blocking and returns its run id
func (r *Runner) Submit(kind JobKind, links []string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.isRunning {
		return "", ErrNotRunning
	}

	job := Job{ID: uuid.NewString(), Kind: kind, Links: links}
	select {
	case r.queue <- job:
		r.log.Info("Job queued", logger.String("run_id", job.ID), logger.String("kind", string(kind)))
		return job.ID, nil
	default:
		metrics.JobsDropped.WithLabelValues(string(kind)).Inc()
		r.log.Warn("Job dropped, queue full", logger.String("kind", string(kind)))
		return "", ErrQueueFull
	}
}

// worker drains the queue until Stop closes it
func (r *Runner) worker() {
	defer r.wg.Done()

	for job := range r.queue {
		if r.ctx.Err() != nil {
			r.log.Warn("Discarding queued job on shutdown", logger.String("run_id", job.ID))
			continue
		}
		if err := r.run(r.ctx, job); err != nil {
			r.log.Error("Job failed",
				logger.String("run_id", job.ID),
				logger.String("kind", string(job.Kind)),
				logger.Err(err))
		}
	}
}

func (r *Runner) run(ctx context.Context, job Job) error {
	log := r.log.With(logger.String("run_id", job.ID), logger.String("kind", string(job.Kind)))
	log.Info("Job started")

	switch job.Kind {
	case KindCollectCrawl:
		_, err := r.collectAndCrawl(ctx, log)
		return err
	case KindCrawlLinks:
		r.crawler.CrawlLinks(ctx, job.Links)
		return nil
	case KindEnrich:
		_, err := r.enricher.Run(ctx)
		return err
	default:
		return fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

func (r *Runner) collectAndCrawl(ctx context.Context, log logger.Logger) (crawler.Report, error) {
	links, err := r.collector.Collect(ctx)
	if err != nil {
		return crawler.Report{}, fmt.Errorf("failed to collect links: %w", err)
	}
	if len(links) == 0 {
		log.Info("No new links collected")
		return crawler.Report{}, nil
	}
	return r.crawler.CrawlLinks(ctx, links), nil
}

// CollectAndCrawl runs collection and crawling synchronously on the caller's goroutine
func (r *Runner) CollectAndCrawl(ctx context.Context) (crawler.Report, error) {
	return r.collectAndCrawl(ctx, r.log.With(logger.String("run_id", uuid.NewString())))
}

// Enrich runs one enrichment pass synchronously
func (r *Runner) Enrich(ctx context.Context) (enrichment.Report, error) {
	return r.enricher.Run(ctx)
}
