package provider

import (
	"context"
	"encoding/json"
	"strconv"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
)

const (
	joobleName    = "Jooble"
	joobleBaseURL = "https://jooble.org/api"
)

// Jooble searches the Jooble regional aggregator. Its key is part of the URL
// path and the search itself is a JSON POST.
type Jooble struct {
	apiKey string
	client
}

// NewJooble constructs the Jooble adapter.
func NewJooble(apiKey string, opts ...Option) *Jooble {
	return &Jooble{apiKey: apiKey, client: newClient(joobleName, joobleBaseURL, opts)}
}

type joobleRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location,omitempty"`
	Page     string `json:"page"`
}

type joobleResponse struct {
	TotalCount int         `json:"totalCount"`
	Jobs       []joobleJob `json:"jobs"`
}

type joobleJob struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Location string      `json:"location"`
	Snippet  string      `json:"snippet"`
	Salary   string      `json:"salary"`
	Source   string      `json:"source"`
	Type     string      `json:"type"`
	Link     string      `json:"link"`
	Company  string      `json:"company"`
	Updated  string      `json:"updated"`
}

func (j *Jooble) Name() string { return joobleName }

func (j *Jooble) Configured() bool { return j.apiKey != "" }

// Search fetches one page of Jooble results. Jooble has no job-type filter,
// so JobType only affects the keywords.
func (j *Jooble) Search(ctx context.Context, p model.SearchParams) ([]model.Job, error) {
	if !j.Configured() {
		return nil, nil
	}

	keywords := legalQuery(p)
	if t := jobTypeFilter(p); t != "" {
		keywords += " " + t
	}
	req := joobleRequest{
		Keywords: keywords,
		Location: p.Location,
		Page:     strconv.Itoa(pageOf(p)),
	}

	var apiResp joobleResponse
	if err := j.postJSON(ctx, j.baseURL+"/"+j.apiKey, req, &apiResp); err != nil {
		return nil, err
	}

	ls := make([]listing, 0, len(apiResp.Jobs))
	for _, r := range apiResp.Jobs {
		ls = append(ls, listing{
			id:          r.ID.String(),
			title:       enrich.PlainText(r.Title),
			company:     r.Company,
			location:    r.Location,
			jobType:     r.Type,
			salary:      r.Salary,
			description: r.Snippet,
			applyURL:    r.Link,
			postedAt:    enrich.ParseTimestamp(r.Updated),
		})
	}
	return toJobs(joobleName, ls), nil
}
