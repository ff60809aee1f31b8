package category

import (
	"regexp"
)

var (
	scriptPattern    = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)
	sectionIDPattern = regexp.MustCompile(`["']?sectionId["']?\s*[:=]\s*["']?(\d{3})["']?`)
)

// SectionCodeFromHTML finds the sectionId declared in the same inline script as
// articleID. It returns "" when no such script exists.
func SectionCodeFromHTML(html, articleID string) string {
	if articleID == "" {
		return ""
	}
	articleIDPattern, err := regexp.Compile(`["']?articleId["']?\s*[:=]\s*["']?` + regexp.QuoteMeta(articleID) + `["']?`)
	if err != nil {
		return ""
	}

	for _, m := range scriptPattern.FindAllStringSubmatch(html, -1) {
		script := m[1]
		if !articleIDPattern.MatchString(script) {
			continue
		}
		if sid := sectionIDPattern.FindStringSubmatch(script); sid != nil {
			return sid[1]
		}
	}
	return ""
}
