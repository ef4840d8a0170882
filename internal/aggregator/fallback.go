package aggregator

import (
	"fmt"
	"strings"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
)

// FallbackSource labels every synthetic listing.
const FallbackSource = "Sample Listings"

// The synthetic generator crosses these lists round-robin by index. Their
// lengths are pairwise distinct so the 15 records never collide on
// (title, company).
var (
	fallbackAreas = []string{
		"Corporate Law",
		"Litigation",
		"Intellectual Property",
		"Employment Law",
		"Real Estate Law",
	}
	fallbackRoles = []string{
		"Associate Attorney",
		"Senior Counsel",
		"Staff Attorney",
		"Paralegal",
	}
	fallbackCompanies = []string{
		"Whitfield & Marsh LLP",
		"Summit Law Group",
		"Harbor Legal Partners",
		"Crescent Advisory Counsel",
		"Northgate Legal Services",
		"Bramwell Stone LLP",
	}
	fallbackLocations = []string{
		"New York, NY",
		"Chicago, IL",
		"San Francisco, CA",
		"Remote",
	}
	fallbackTypes = []string{
		"full-time",
		"part-time",
		"contract",
	}
	fallbackSalaries = []string{
		"$95,000 - $130,000",
		"$140,000 - $185,000",
		"$70,000 - $90,000",
		"Competitive",
	}
	fallbackPosted = []string{
		"Today",
		"1 day ago",
		"2 days ago",
		"3 days ago",
		"5 days ago",
		"1 week ago",
		"2 weeks ago",
	}
	fallbackExperience = []string{
		"3+ years of experience",
		"at least 7 years of experience",
		"2-4 years of experience",
		"Entry level candidates welcome",
	}
)

// Fallback returns the synthetic listings for p: FallbackCount records,
// filtered by the query, practice area and job type in p. The result is a
// pure function of p.
func Fallback(p model.SearchParams) []model.Job {
	all := syntheticJobs()
	out := make([]model.Job, 0, len(all))
	for _, j := range all {
		if matchesFallbackFilters(j, p) {
			out = append(out, j)
		}
	}
	return out
}

func syntheticJobs() []model.Job {
	jobs := make([]model.Job, 0, model.FallbackCount)
	for i := 0; i < model.FallbackCount; i++ {
		area := fallbackAreas[i%len(fallbackAreas)]
		role := fallbackRoles[i%len(fallbackRoles)]
		company := fallbackCompanies[i%len(fallbackCompanies)]
		location := fallbackLocations[i%len(fallbackLocations)]

		title := fmt.Sprintf("%s, %s", role, area)
		description := fmt.Sprintf(
			"%s is hiring a %s for its %s practice in %s. %s. Bar admission and strong legal research skills required.",
			company, strings.ToLower(role), strings.ToLower(area), location, fallbackExperience[i%len(fallbackExperience)],
		)

		jobs = append(jobs, model.Job{
			ID:           enrich.StableID(FallbackSource, title, company),
			Title:        title,
			Company:      company,
			Location:     location,
			Type:         fallbackTypes[i%len(fallbackTypes)],
			Salary:       fallbackSalaries[i%len(fallbackSalaries)],
			Posted:       fallbackPosted[i%len(fallbackPosted)],
			PracticeArea: area,
			Experience:   enrich.Experience(title, description),
			Description:  description,
			Requirements: enrich.Requirements(nil, title+" "+description),
			ApplyURL:     model.NoApplyURL,
			Source:       FallbackSource,
		})
	}
	return jobs
}

// matchesFallbackFilters is the conjunction of the query substring, practice
// area and job type filters. Empty values and "all" match everything.
func matchesFallbackFilters(j model.Job, p model.SearchParams) bool {
	if q := strings.ToLower(strings.TrimSpace(p.Query)); q != "" {
		haystack := strings.ToLower(j.Title + " " + j.Company + " " + j.Description)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	if area := strings.TrimSpace(p.PracticeArea); area != "" && !strings.EqualFold(area, "all") {
		if !strings.EqualFold(j.PracticeArea, area) {
			return false
		}
	}
	if t := enrich.NormalizeJobType(p.JobType); t != "" && t != "all" {
		if j.Type != t {
			return false
		}
	}
	return true
}
