package enrich

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultExperience is returned when neither a number of years nor a
// seniority keyword can be found.
const DefaultExperience = "2+ years"

type yearsRule struct {
	re     *regexp.Regexp
	ranged bool
}

// yearsRules are tried in order. The range pattern has to come before the
// single-number one, otherwise "3-5 years" would be read as "5+ years".
// Counts are anchored at a word boundary so "100 years" is not read as "00".
var yearsRules = []yearsRule{
	{re: regexp.MustCompile(`\b(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\+?\s*(?:years?|yrs?)`), ranged: true},
	{re: regexp.MustCompile(`minimum of \b(\d{1,2})\+?\s*(?:years?|yrs?)`)},
	{re: regexp.MustCompile(`at least \b(\d{1,2})\+?\s*(?:years?|yrs?)`)},
	{re: regexp.MustCompile(`\b(\d{1,2})\+?\s*(?:years?|yrs?)`)},
}

type seniorityRule struct {
	re    *regexp.Regexp
	level string
}

var seniorityRules = []seniorityRule{
	{wordPattern([]string{"entry level", "entry-level", "junior"}), "Entry Level"},
	{wordPattern([]string{"senior", "partner"}), "7+ years"},
	{wordPattern([]string{"mid-level", "mid level", "associate"}), "3-5 years"},
}

// Experience extracts the required experience from a listing. Explicit year
// counts win over seniority keywords.
func Experience(title, description string) string {
	text := strings.ToLower(title + " " + description)

	for _, r := range yearsRules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if r.ranged {
			return fmt.Sprintf("%s-%s years", m[1], m[2])
		}
		return fmt.Sprintf("%s+ years", m[1])
	}

	for _, r := range seniorityRules {
		if r.re.MatchString(text) {
			return r.level
		}
	}
	return DefaultExperience
}
