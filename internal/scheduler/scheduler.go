// Package scheduler triggers crawl and enrichment jobs on a cron calendar.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/pipeline"
)

// DefaultCrawlSpecs are the three daily crawl runs.
var DefaultCrawlSpecs = []string{"0 6 * * *", "0 12 * * *", "0 18 * * *"}

// Submitter queues pipeline jobs
type Submitter interface {
	Submit(kind pipeline.JobKind, links []string) (string, error)
}

// Config holds scheduler configuration
type Config struct {
	CrawlSpecs []string
	// EnrichSpec is optional; empty disables scheduled enrichment.
	EnrichSpec string
	// StartupDelay schedules one extra crawl after Start; zero disables it.
	StartupDelay time.Duration
	Location     *time.Location
}

// Scheduler owns the cron instance
type Scheduler struct {
	cron      *cron.Cron
	parser    cron.Parser
	submitter Submitter
	log       logger.Logger
	cfg       Config

	mu      sync.Mutex
	startup *time.Timer
	entries map[cron.EntryID]pipeline.JobKind
}

// New creates a scheduler and validates every cron spec
func New(submitter Submitter, log logger.Logger, cfg Config) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CrawlSpecs == nil {
		cfg.CrawlSpecs = DefaultCrawlSpecs
	}

	// Standard 5-field parser (minute hour day month weekday)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(cfg.Location),
			cron.WithChain(cron.Recover(cron.DefaultLogger)),
		),
		parser:    parser,
		submitter: submitter,
		log:       log,
		cfg:       cfg,
		entries:   make(map[cron.EntryID]pipeline.JobKind),
	}

	for _, spec := range cfg.CrawlSpecs {
		if err := s.add(spec, pipeline.KindCollectCrawl); err != nil {
			return nil, err
		}
	}
	if cfg.EnrichSpec != "" {
		if err := s.add(cfg.EnrichSpec, pipeline.KindEnrich); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(spec string, kind pipeline.JobKind) error {
	schedule, err := s.parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	id := s.cron.Schedule(schedule, cron.FuncJob(func() { s.trigger(kind, "cron") }))
	s.entries[id] = kind
	s.log.Info("Scheduled job", logger.String("spec", spec), logger.String("kind", string(kind)))
	return nil
}

// trigger submits a job; a full queue only logs
func (s *Scheduler) trigger(kind pipeline.JobKind, source string) {
	id, err := s.submitter.Submit(kind, nil)
	if err != nil {
		if errors.Is(err, pipeline.ErrQueueFull) {
			s.log.Warn("Skipping scheduled run, previous runs still queued",
				logger.String("kind", string(kind)), logger.String("source", source))
			return
		}
		s.log.Error("Failed to submit scheduled job", logger.String("kind", string(kind)), logger.Err(err))
		return
	}
	s.log.Info("Scheduled job submitted",
		logger.String("kind", string(kind)),
		logger.String("source", source),
		logger.String("run_id", id))
}

// Start begins the cron loop and arms the startup crawl
func (s *Scheduler) Start() {
	s.cron.Start()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.StartupDelay > 0 {
		s.startup = time.AfterFunc(s.cfg.StartupDelay, func() {
			s.trigger(pipeline.KindCollectCrawl, "startup")
		})
	}
	s.log.Info("Scheduler started", logger.Int("entries", len(s.entries)))
}

// Stop halts the cron loop and waits for running triggers
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.startup != nil {
		s.startup.Stop()
	}
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextAfter returns the next fire time of every entry after t, soonest first per kind
func (s *Scheduler) NextAfter(t time.Time) map[pipeline.JobKind][]time.Time {
	next := make(map[pipeline.JobKind][]time.Time)
	for _, e := range s.cron.Entries() {
		kind := s.entries[e.ID]
		next[kind] = append(next[kind], e.Schedule.Next(t.In(s.cfg.Location)))
	}
	for _, times := range next {
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	}
	return next
}
