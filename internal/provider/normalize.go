package provider

import (
	"strings"
	"time"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
)

const (
	defaultJobType  = "full-time"
	unknownCompany  = "Confidential"
	unknownLocation = "Not specified"
)

// listing is the provider-neutral intermediate every adapter fills from its
// own payload before enrichment.
type listing struct {
	id          string
	title       string
	company     string
	location    string
	jobType     string
	salary      string
	description string // raw, may contain HTML
	applyURL    string
	logo        string
	skills      []string
	postedAt    time.Time
}

// toJob runs a listing through the enrichment helpers and fills the
// defaults of the canonical record.
func toJob(source string, l listing) model.Job {
	title := strings.TrimSpace(l.title)
	company := strings.TrimSpace(l.company)
	if company == "" {
		company = unknownCompany
	}
	location := strings.TrimSpace(l.location)
	if location == "" {
		location = unknownLocation
	}
	jobType := enrich.NormalizeJobType(l.jobType)
	if jobType == "" {
		jobType = defaultJobType
	}
	salary := strings.TrimSpace(l.salary)
	if salary == "" {
		salary = "Competitive"
	}
	applyURL := strings.TrimSpace(l.applyURL)
	if applyURL == "" {
		applyURL = model.NoApplyURL
	}

	// Classify on the full text; only the stored description is truncated.
	fullText := enrich.PlainText(l.description)
	description := enrich.Truncate(fullText, model.DescriptionLimit)
	id := strings.TrimSpace(l.id)
	if id == "" {
		id = enrich.StableID(source, title, company)
	} else {
		id = strings.ToLower(strings.Join(strings.Fields(source), "-")) + "-" + id
	}

	return model.Job{
		ID:           id,
		Title:        title,
		Company:      company,
		Location:     location,
		Type:         jobType,
		Salary:       salary,
		Posted:       enrich.Posted(l.postedAt),
		PracticeArea: enrich.PracticeArea(title, fullText),
		Experience:   enrich.Experience(title, fullText),
		Description:  description,
		Requirements: enrich.Requirements(l.skills, title+" "+fullText),
		ApplyURL:     applyURL,
		Source:       source,
		Logo:         l.logo,
		PostedAt:     l.postedAt,
	}
}

// toJobs maps listings, skipping ones without a title.
func toJobs(source string, ls []listing) []model.Job {
	jobs := make([]model.Job, 0, len(ls))
	for _, l := range ls {
		if strings.TrimSpace(l.title) == "" {
			continue
		}
		jobs = append(jobs, toJob(source, l))
	}
	return jobs
}
