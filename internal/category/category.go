// Package category maps a news section code onto the fixed article taxonomy.
package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/Umc8th-Snack/Back-end-sub000/internal/db"
	"github.com/Umc8th-Snack/Back-end-sub000/internal/service"
)

// DefaultCode is used when a URL carries no section code.
const DefaultCode = "000"

// EtcName is the catch-all category.
const EtcName = "기타"

// ErrCategoryNotFound means the taxonomy row for a mapped name is missing.
var ErrCategoryNotFound = errors.New("category not found")

// Section is one entry of the taxonomy.
type Section struct {
	Code string
	Name string
}

var sidPattern = regexp.MustCompile(`[?&]sid=(\d{3})\b`)

// Sections returns the taxonomy in display order, the catch-all last.
// Each call returns a fresh slice.
func Sections() []Section {
	return []Section{
		{Code: "100", Name: "정치"},
		{Code: "101", Name: "경제"},
		{Code: "102", Name: "사회"},
		{Code: "103", Name: "생활/문화"},
		{Code: "104", Name: "세계"},
		{Code: "105", Name: "IT/과학"},
		{Code: DefaultCode, Name: EtcName},
	}
}

// Names lists every category name; used to seed the store.
func Names() []string {
	sections := Sections()
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Name)
	}
	return names
}

// SectionCodes lists the six real section codes.
func SectionCodes() []string {
	var codes []string
	for _, s := range Sections() {
		if s.Code != DefaultCode {
			codes = append(codes, s.Code)
		}
	}
	return codes
}

// NameForCode maps a section code to its category name. Unknown codes map to 기타.
func NameForCode(code string) string {
	for _, s := range Sections() {
		if s.Code == code {
			return s.Name
		}
	}
	return EtcName
}

// SectionCode extracts the sid query value from an article URL.
func SectionCode(articleURL string) string {
	if m := sidPattern.FindStringSubmatch(articleURL); m != nil {
		return m[1]
	}
	return DefaultCode
}

// ClassifyURL returns the category name for an article URL.
func ClassifyURL(articleURL string) string {
	return NameForCode(SectionCode(articleURL))
}

// Resolve looks the category up in the store. A missing row is a
// configuration error and wraps ErrCategoryNotFound.
func Resolve(dbConn *gorm.DB, name string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	cat, err := service.GetCategoryByName(dbConn, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %q: %w", name, err)
	}
	return cat, nil
}

// Classify resolves the stored category for an article URL inside tx.
func Classify(ctx context.Context, tx *gorm.DB, articleURL string) (*db.Category, error) {
	return Resolve(tx.WithContext(ctx), ClassifyURL(articleURL))
}

// IconURL builds the icon location for a category under base. Empty base disables icons.
func IconURL(base, name string) string {
	if base == "" {
		return ""
	}
	file := strings.NewReplacer("/", "", " ", "").Replace(name)
	known := false
	for _, s := range Sections() {
		if strings.ReplaceAll(s.Name, "/", "") == file {
			known = true
			break
		}
	}
	if !known {
		file = EtcName
	}
	return fmt.Sprintf("%s/article_icon/%s.png", strings.TrimRight(base, "/"), file)
}
