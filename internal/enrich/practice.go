package enrich

import (
	"regexp"
	"strings"
)

// DefaultPracticeArea is assigned when no rule matches.
const DefaultPracticeArea = "General Practice"

type practiceRule struct {
	area     string
	keywords []string
}

// wordPattern matches any of the keywords as whole words.
func wordPattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// practiceRules is evaluated top to bottom and the first hit wins. Narrow
// specialties come first; Corporate and Litigation match a lot of generic
// wording and sit at the bottom so they only catch what nothing else claimed.
var practiceRules = []practiceRule{
	{"Immigration Law", []string{"immigration", "visa", "asylum", "naturalization"}},
	{"Intellectual Property", []string{"intellectual property", "patent", "patents", "trademark", "trademarks", "copyright"}},
	{"Bankruptcy Law", []string{"bankruptcy", "insolvency", "restructuring", "creditor"}},
	{"Tax Law", []string{"tax law", "tax attorney", "taxation", "irs"}},
	{"Environmental Law", []string{"environmental", "energy law", "natural resources"}},
	{"Healthcare Law", []string{"healthcare", "health care", "hipaa", "medical malpractice"}},
	{"Estate Planning", []string{"estate planning", "wills", "trusts", "probate", "elder law"}},
	{"Family Law", []string{"family law", "divorce", "custody", "child support", "adoption"}},
	{"Criminal Law", []string{"criminal", "defense attorney", "public defender", "prosecutor", "dui"}},
	{"Personal Injury", []string{"personal injury", "accident", "accidents", "wrongful death", "workers compensation"}},
	{"Employment Law", []string{"employment law", "labor law", "discrimination", "wage and hour"}},
	{"Real Estate Law", []string{"real estate", "property law", "landlord", "zoning"}},
	{"Corporate Law", []string{"corporate", "mergers", "m&a", "securities", "business law", "transactional"}},
	{"Litigation", []string{"litigation", "litigator", "trial", "dispute", "disputes"}},
}

var practicePatterns = compilePracticeRules(practiceRules)

func compilePracticeRules(rules []practiceRule) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(rules))
	for i, r := range rules {
		patterns[i] = wordPattern(r.keywords)
	}
	return patterns
}

// PracticeAreas lists every area PracticeArea can return, in rule order,
// followed by the default.
func PracticeAreas() []string {
	areas := make([]string, 0, len(practiceRules)+1)
	for _, r := range practiceRules {
		areas = append(areas, r.area)
	}
	return append(areas, DefaultPracticeArea)
}

// PracticeArea classifies a listing from its title and description.
func PracticeArea(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for i, re := range practicePatterns {
		if re.MatchString(text) {
			return practiceRules[i].area
		}
	}
	return DefaultPracticeArea
}
