package enrich

import (
	"strings"

	"legallyai/jobboard-service/internal/model"
)

// ContainsRedFlag reports whether any red-flag term appears
// (case-insensitive) in the combined title, company and description.
func ContainsRedFlag(job model.Job, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(job.Title + " " + job.Company + " " + job.Description)
	for _, flag := range redFlags {
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}

// DropRedFlagged returns the jobs that contain none of the red-flag terms,
// preserving order.
func DropRedFlagged(jobs []model.Job, redFlags []string) []model.Job {
	if len(redFlags) == 0 {
		return jobs
	}
	kept := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if !ContainsRedFlag(j, redFlags) {
			kept = append(kept, j)
		}
	}
	return kept
}
