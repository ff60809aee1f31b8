// Package collector discovers a handful of fresh article links from the
// per-section listing pages of a fixed set of publishers.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/category"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/crawler"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/logger"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/metrics"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/service"
)

const (
	defaultMaxLinks   = 5
	defaultMinTextLen = 50
)

var articleKeyPattern = regexp.MustCompile(`/(?:mnews/)?article/(\d{3})/(\d+)`)

// Publishers returns the publisher ids the collector samples from.
func Publishers() []string {
	return []string{"028", "025", "023", "020", "032", "469", "022", "081"}
}

// Pair is one listing page to scan
type Pair struct {
	Publisher string
	Section   string
}

// Config holds collector configuration
type Config struct {
	ListingURL    string
	ArticlePrefix string
	MaxLinks      int
	MinTextLen    int
	Location      *time.Location
}

// Collector picks candidate article links
type Collector struct {
	db      *gorm.DB
	fetcher crawler.PageFetcher
	log     logger.Logger
	cfg     Config
	rng     *rand.Rand
	now     func() time.Time
}

// Option customises a Collector
type Option func(*Collector)

// WithRand sets the shuffle source
func WithRand(rng *rand.Rand) Option {
	return func(c *Collector) { c.rng = rng }
}

// WithClock sets the clock used to pick the listing date
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// New creates a collector
func New(dbConn *gorm.DB, fetcher crawler.PageFetcher, log logger.Logger, cfg Config, opts ...Option) *Collector {
	if cfg.MaxLinks <= 0 {
		cfg.MaxLinks = defaultMaxLinks
	}
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = defaultMinTextLen
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	cfg.ArticlePrefix = strings.TrimRight(cfg.ArticlePrefix, "/")

	c := &Collector{
		db:      dbConn,
		fetcher: fetcher,
		log:     log,
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pairs builds every publisher and section combination in a fixed order
func Pairs() []Pair {
	var pairs []Pair
	for _, p := range Publishers() {
		for _, s := range category.SectionCodes() {
			pairs = append(pairs, Pair{Publisher: p, Section: s})
		}
	}
	return pairs
}

// ListingURL returns the listing page address for one pair on one day
func (c *Collector) ListingURL(p Pair, day time.Time) string {
	return fmt.Sprintf("%s?mode=LSD&mid=sec&sid1=%s&oid=%s&date=%s",
		c.cfg.ListingURL, p.Section, p.Publisher, day.In(c.cfg.Location).Format("20060102"))
}

// Collect returns up to MaxLinks validated, previously unseen article links.
// Listing and validation failures are logged and skipped.
func (c *Collector) Collect(ctx context.Context) ([]string, error) {
	seen, err := c.crawledKeys()
	if err != nil {
		return nil, err
	}

	pairs := Pairs()
	c.rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	today := c.now()
	var links []string
	for _, pair := range pairs {
		if len(links) >= c.cfg.MaxLinks {
			break
		}
		if ctx.Err() != nil {
			c.log.Warn("Link collection interrupted", logger.Int("collected", len(links)))
			break
		}

		link, key := c.scanListing(ctx, pair, today, seen)
		if link == "" {
			continue
		}
		seen[key] = struct{}{}
		links = append(links, link)
		metrics.CollectedLinks.Inc()
	}

	c.log.Info("Collected article links", logger.Int("count", len(links)))
	return links, nil
}

// crawledKeys loads the publisher:article keys of every URL already crawled
func (c *Collector) crawledKeys() (map[string]struct{}, error) {
	urls, err := service.ListCrawledURLs(c.db)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl history: %w", err)
	}
	keys := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, _, key, ok := ArticleKey(u); ok {
			keys[key] = struct{}{}
		}
	}
	return keys, nil
}

// scanListing returns the first acceptable link of one listing page
func (c *Collector) scanListing(ctx context.Context, pair Pair, day time.Time, seen map[string]struct{}) (string, string) {
	listing := c.ListingURL(pair, day)
	log := c.log.With(logger.String("publisher", pair.Publisher), logger.String("section", pair.Section))

	doc, err := c.fetcher.Fetch(ctx, listing)
	if err != nil {
		metrics.ListingFetchErrors.Inc()
		log.Warn("Failed to fetch listing", logger.String("url", listing), logger.Err(err))
		return "", ""
	}

	known := make(map[string]bool)
	for _, p := range Publishers() {
		known[p] = true
	}

	var picked, pickedKey string
	doc.Find("a[href*='/article/']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		link, ok := c.absolute(href)
		if !ok {
			return true
		}
		publisher, _, key, ok := ArticleKey(link)
		if !ok || !known[publisher] {
			return true
		}
		if _, dup := seen[key]; dup {
			return true
		}
		if !c.validate(ctx, link) {
			return true
		}
		picked, pickedKey = link, key
		return false
	})
	return picked, pickedKey
}

// absolute resolves href against the article host
func (c *Collector) absolute(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	base, err := url.Parse(c.cfg.ArticlePrefix + "/")
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// validate fetches the article and requires enough text inside an article container
func (c *Collector) validate(ctx context.Context, link string) bool {
	doc, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		c.log.Debug("Candidate link unreachable", logger.String("link", link), logger.Err(err))
		return false
	}
	return len([]rune(crawler.ExtractArticleText(doc))) > c.cfg.MinTextLen
}

// ArticleKey extracts the publisher id, article id and "publisher:article" key from a link
func ArticleKey(link string) (publisher, articleID, key string, ok bool) {
	m := articleKeyPattern.FindStringSubmatch(link)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[1] + ":" + m[2], true
}

// ToJSON renders links as a crawl envelope
func ToJSON(links []string) ([]byte, error) {
	data, err := json.Marshal(crawler.NewEnvelope(links))
	if err != nil {
		return nil, fmt.Errorf("failed to encode crawl envelope: %w", err)
	}
	return data, nil
}
