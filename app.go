package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/category"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/collector"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/config"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/crawler"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/enrichment"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/fetcher"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/llm"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/pipeline"
)

// app holds the wired pipeline shared by every subcommand
type app struct {
	cfg     *config.Config
	log     logger.Logger
	db      *gorm.DB
	crawler *crawler.Crawler
	runner  *pipeline.Runner
}

// newApp loads configuration, opens the database and wires every stage
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info("Initializing database", logger.String("driver", cfg.Database.Driver))
	dbConn, err := db.InitDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.SeedCategories(dbConn, category.Names()); err != nil {
		return nil, fmt.Errorf("failed to seed categories: %w", err)
	}

	loc := cfg.Location()
	pages := fetcher.New(fetcher.Config{
		UserAgent:      cfg.Crawler.UserAgent,
		Timeout:        cfg.Crawler.RequestTimeout,
		RequestsPerSec: cfg.Crawler.RequestsPerSec,
	})

	links := collector.New(dbConn, pages, log.With(logger.String("stage", "collector")), collector.Config{
		ListingURL:    cfg.Collector.ListingURL,
		ArticlePrefix: cfg.Crawler.ArticlePrefix,
		MaxLinks:      cfg.Collector.MaxLinks,
		MinTextLen:    cfg.Collector.MinTextLen,
		Location:      loc,
	})

	articles := crawler.New(dbConn, pages, log.With(logger.String("stage", "crawler")), crawler.Config{
		ArticlePrefix: cfg.Crawler.ArticlePrefix,
		IconBaseURL:   cfg.Crawler.IconBaseURL,
		Location:      loc,
	})

	model := llm.NewRetrier(
		llm.NewClient(llm.Config{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}),
		cfg.LLM.MaxAttempts,
		nil,
		log.With(logger.String("stage", "llm")),
	)

	enricher := enrichment.New(dbConn, model, log.With(logger.String("stage", "enrichment")), enrichment.Config{
		BatchSize:    cfg.Enrichment.BatchSize,
		ArticlePause: cfg.Enrichment.ArticlePause,
		BatchPause:   cfg.Enrichment.BatchPause,
		MaxArticles:  cfg.Enrichment.MaxArticles,
	})

	return &app{
		cfg:     cfg,
		log:     log,
		db:      dbConn,
		crawler: articles,
		runner:  pipeline.New(links, articles, enricher, log.With(logger.String("stage", "pipeline")), cfg.Server.QueueSize),
	}, nil
}

// close flushes the logger and releases the connection pool
func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
