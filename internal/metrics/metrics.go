// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CollectedLinks counts candidate links accepted by the collector.
	CollectedLinks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snack_collector_links_total",
		Help: "Candidate article links accepted by the collector.",
	})

	// ListingFetchErrors counts listing pages that could not be fetched.
	ListingFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snack_collector_listing_errors_total",
		Help: "Listing page fetch failures.",
	})

	// CrawlOutcomes counts crawled links by outcome (processed, failed, skipped).
	CrawlOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snack_crawler_links_total",
		Help: "Crawled links by outcome.",
	}, []string{"outcome"})

	// LLMRequests counts model calls by result (ok, overloaded, error).
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snack_llm_requests_total",
		Help: "Language model requests by result.",
	}, []string{"result"})

	// EnrichmentOutcomes counts articles by enrichment outcome.
	EnrichmentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snack_enrichment_articles_total",
		Help: "Articles handled by enrichment, by outcome.",
	}, []string{"outcome"})

	// JobsDropped counts jobs rejected because the runner queue was full.
	JobsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snack_jobs_dropped_total",
		Help: "Pipeline jobs dropped because the queue was full.",
	}, []string{"kind"})
)
