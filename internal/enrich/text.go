package enrich

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"

	"legallyai/jobboard-service/internal/model"
)

// blockElements get a trailing space before text extraction so adjacent
// paragraphs and list items do not run together.
const blockElements = "p, div, li, br, h1, h2, h3, h4, h5, h6, tr"

// PlainText turns a provider description, which is often an HTML snippet,
// into a single line of plain text.
func PlainText(raw string) string {
	text := raw
	if strings.ContainsAny(raw, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			doc.Find(blockElements).AfterHtml(" ")
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

// CleanDescription is PlainText truncated to DescriptionLimit characters.
func CleanDescription(raw string) string {
	return Truncate(PlainText(raw), model.DescriptionLimit)
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}

// NormalizeJobType lowercases and hyphenates a provider's job type, so
// "Full Time" and "full_time" both become "full-time". Unknown values pass
// through in the same shape; they are not checked against a fixed set.
func NormalizeJobType(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// FormatSalary renders a numeric range as display text. Zero bounds are
// treated as unknown; with no bounds at all it returns "Competitive".
func FormatSalary(lo, hi float64, unit string) string {
	suffix := ""
	if unit != "" {
		suffix = "/" + unit
	}
	switch {
	case lo > 0 && hi > 0 && math.Round(lo) != math.Round(hi):
		return fmt.Sprintf("%s - %s%s", money(lo), money(hi), suffix)
	case lo > 0:
		return money(lo) + suffix
	case hi > 0:
		return "Up to " + money(hi) + suffix
	}
	return "Competitive"
}

func money(v float64) string {
	n := int64(math.Round(v))
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	b.WriteByte('$')
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StableID derives a listing id from its canonical fields so the same
// listing gets the same id on every search. It is used whenever the
// upstream record carries no id of its own.
func StableID(source, title, company string) string {
	key := strings.ToLower(source + "\x00" + strings.TrimSpace(title) + "\x00" + strings.TrimSpace(company))
	prefix := strings.ToLower(strings.Join(strings.Fields(source), "-"))
	return fmt.Sprintf("%s-%016x", prefix, xxhash.Sum64String(key))
}
