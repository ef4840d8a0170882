package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
)

const (
	adzunaName     = "Adzuna"
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 20
)

// Adzuna searches the Adzuna aggregator API. It needs an app id and app key;
// with either missing, Search returns (nil, nil).
type Adzuna struct {
	appID   string
	appKey  string
	country string // "us", "gb", …
	client
}

// NewAdzuna constructs the Adzuna adapter.
func NewAdzuna(appID, appKey, country string, opts ...Option) *Adzuna {
	if country == "" {
		country = "us"
	}
	return &Adzuna{
		appID:   appID,
		appKey:  appKey,
		country: country,
		client:  newClient(adzunaName, adzunaBaseURL, opts),
	}
}

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

// adzunaResult mirrors a single Adzuna job listing.
type adzunaResult struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Company      adzunaLabel `json:"company"`
	Location     adzunaLabel `json:"location"`
	SalaryMin    float64     `json:"salary_min"`
	SalaryMax    float64     `json:"salary_max"`
	RedirectURL  string      `json:"redirect_url"`
	Created      string      `json:"created"`
	ContractTime string      `json:"contract_time"`
	ContractType string      `json:"contract_type"`
}

type adzunaLabel struct {
	DisplayName string `json:"display_name"`
}

func (a *Adzuna) Name() string { return adzunaName }

func (a *Adzuna) Configured() bool { return a.appID != "" && a.appKey != "" }

// Search fetches one page of Adzuna results.
func (a *Adzuna) Search(ctx context.Context, p model.SearchParams) ([]model.Job, error) {
	if !a.Configured() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")
	// "what" requires every word, so the domain bias goes in "what_or".
	if terms := userTerms(p); terms != "" {
		params.Set("what", terms)
	}
	params.Set("what_or", domainBias)
	if p.Location != "" {
		params.Set("where", p.Location)
	}
	switch jobTypeFilter(p) {
	case "full-time":
		params.Set("full_time", "1")
	case "part-time":
		params.Set("part_time", "1")
	case "contract":
		params.Set("contract", "1")
	case "permanent":
		params.Set("permanent", "1")
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d?%s", a.baseURL, a.country, pageOf(p), params.Encode())

	var apiResp adzunaResponse
	if err := a.getJSON(ctx, endpoint, nil, &apiResp); err != nil {
		return nil, err
	}

	ls := make([]listing, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		jobType := r.ContractTime
		if jobType == "" && r.ContractType == "contract" {
			jobType = r.ContractType
		}
		ls = append(ls, listing{
			id:          r.ID,
			title:       enrich.PlainText(r.Title),
			company:     r.Company.DisplayName,
			location:    r.Location.DisplayName,
			jobType:     jobType,
			salary:      enrich.FormatSalary(r.SalaryMin, r.SalaryMax, ""),
			description: r.Description,
			applyURL:    r.RedirectURL,
			postedAt:    enrich.ParseTimestamp(r.Created),
		})
	}
	return toJobs(adzunaName, ls), nil
}
