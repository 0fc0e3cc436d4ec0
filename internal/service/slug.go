package service

import (
	"strings"
	"unicode"

	"github.com/pagecraft/article/internal/model"
)

// Slugify derives a url path from a title: lower-cased, non-alphanumeric runs
// collapsed to single dashes, no leading or trailing dash.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// NormalizePath maps a request path onto the stored url form. Empty, blank and
// "/" all mean the home page.
func NormalizePath(path string) string {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "/")
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return model.RootURL
	}
	return p
}
