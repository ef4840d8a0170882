package enrich

import (
	"regexp"
	"strings"

	"legallyai/jobboard-service/internal/model"
)

type requirementRule struct {
	re     *regexp.Regexp
	phrase string
}

var requirementRules = []requirementRule{
	{wordPattern([]string{"jd", "j.d", "juris doctor", "law degree"}), "JD Required"},
	{wordPattern([]string{"bar", "bar admission", "admitted to practice", "licensed attorney"}), "Bar Admission"},
	{wordPattern([]string{"westlaw", "lexisnexis", "lexis", "legal research"}), "Legal Research Tools"},
	{wordPattern([]string{"negotiation", "negotiate", "negotiating"}), "Negotiation Skills"},
	{wordPattern([]string{"contract", "contracts", "drafting"}), "Contract Drafting"},
}

// Requirements merges up to three explicit skills with the canned phrases
// triggered by text, dropping case-insensitive duplicates and keeping at most
// five entries.
func Requirements(skills []string, text string) []string {
	out := make([]string, 0, model.MaxRequirements)
	seen := make(map[string]struct{}, model.MaxRequirements)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || len(out) >= model.MaxRequirements {
			return
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	for i, s := range skills {
		if i >= model.MaxSkills {
			break
		}
		add(s)
	}

	lower := strings.ToLower(text)
	for _, r := range requirementRules {
		if r.re.MatchString(lower) {
			add(r.phrase)
		}
	}
	return out
}
