package crawler

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxTitleLen   = 100
	maxAuthorLen  = 100
	unknownAuthor = "unknown"
	dateLayout    = "2006-01-02 15:04:05"
)

// Body selectors in priority order; body is the last resort.
var contentSelectors = []string{"#dic_area", "#newsEndContents", "article", "body"}

// Article containers only; the body fallback is excluded.
var articleSelectors = contentSelectors[:3]

// Byline selectors; the second is only consulted when the first yields nothing.
var bylineSelectors = []string{".media_end_head_journalist_name", ".byline_s"}

var (
	emailPattern    = regexp.MustCompile(`\s*\S+@\S+`)
	bracketPattern  = regexp.MustCompile(`\[[^\]]*\]`)
	reporterPattern = regexp.MustCompile(`\s*(기자|특파원|인턴)$`)
	articlePathID   = regexp.MustCompile(`/(?:mnews/)?article/\d{3}/(\d+)`)
)

// Page is what the crawler extracts from one article page
type Page struct {
	Title       string
	Content     string
	Author      string
	PublishedAt *time.Time
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractContent returns the first non-empty text from the selector chain
func ExtractContent(doc *goquery.Document) string {
	return firstText(doc, contentSelectors)
}

// ExtractArticleText is ExtractContent without the whole-body fallback. Pages
// with no article container yield "".
func ExtractArticleText(doc *goquery.Document) string {
	return firstText(doc, articleSelectors)
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := collapseSpace(doc.Find(sel).Text()); text != "" {
			return text
		}
	}
	return ""
}

// NormalizeAuthor turns one byline into a bare name, e.g.
// "파리=유근형 특파원" -> "유근형".
func NormalizeAuthor(raw string) string {
	s := emailPattern.ReplaceAllString(raw, "")
	s = bracketPattern.ReplaceAllString(s, "")
	if i := strings.Index(s, "="); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	s = reporterPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExtractAuthors joins every normalized byline with ", ", or returns "unknown"
func ExtractAuthors(doc *goquery.Document) string {
	for _, sel := range bylineSelectors {
		var names []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if name := NormalizeAuthor(s.Text()); name != "" {
				names = append(names, name)
			}
		})
		if len(names) > 0 {
			return truncateRunes(strings.Join(names, ", "), maxAuthorLen)
		}
	}
	return unknownAuthor
}

// ExtractPublishedAt prefers the modification time and falls back to the
// publication time. Neither present yields nil without error.
func ExtractPublishedAt(doc *goquery.Document, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(doc.Find("span._ARTICLE_MODIFY_DATE_TIME").AttrOr("data-modify-date-time", ""))
	if raw == "" {
		raw = strings.TrimSpace(doc.Find("span._ARTICLE_DATE_TIME").AttrOr("data-date-time", ""))
	}
	if raw == "" {
		return nil, nil
	}

	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publish time %q: %w", raw, err)
	}
	return &t, nil
}

// ExtractTitle returns the document title cut to 100 characters
func ExtractTitle(doc *goquery.Document) string {
	return truncateRunes(strings.TrimSpace(doc.Find("title").First().Text()), maxTitleLen)
}

// ParsePage runs every extractor over a fetched document
func ParsePage(doc *goquery.Document, loc *time.Location) (*Page, error) {
	publishedAt, err := ExtractPublishedAt(doc, loc)
	if err != nil {
		return nil, err
	}
	return &Page{
		Title:       ExtractTitle(doc),
		Content:     ExtractContent(doc),
		Author:      ExtractAuthors(doc),
		PublishedAt: publishedAt,
	}, nil
}

// articleIDFromURL returns the numeric article id in the URL path
func articleIDFromURL(link string) string {
	if m := articlePathID.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
