package provider

import (
	"context"
	"net/url"
	"strconv"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
)

const (
	careerjetName      = "Careerjet"
	careerjetBaseURL   = "http://public.api.careerjet.net"
	careerjetPageSize  = 20
	careerjetUserAgent = "legallyai-jobboard/1.0"
)

// Careerjet searches the Careerjet partner API with an affiliate id.
// Careerjet listings carry no id, so ids are derived with enrich.StableID.
type Careerjet struct {
	affiliateID string
	locale      string
	client
}

// NewCareerjet constructs the Careerjet adapter.
func NewCareerjet(affiliateID, locale string, opts ...Option) *Careerjet {
	if locale == "" {
		locale = "en_US"
	}
	return &Careerjet{
		affiliateID: affiliateID,
		locale:      locale,
		client:      newClient(careerjetName, careerjetBaseURL, opts),
	}
}

type careerjetResponse struct {
	Type string         `json:"type"` // "JOBS", or "LOCATIONS" when the location is ambiguous
	Hits int            `json:"hits"`
	Jobs []careerjetJob `json:"jobs"`
}

type careerjetJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Locations   string `json:"locations"`
	Salary      string `json:"salary"`
	Date        string `json:"date"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Site        string `json:"site"`
}

func (c *Careerjet) Name() string { return careerjetName }

func (c *Careerjet) Configured() bool { return c.affiliateID != "" }

// Search fetches one page of Careerjet results.
func (c *Careerjet) Search(ctx context.Context, p model.SearchParams) ([]model.Job, error) {
	if !c.Configured() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("affid", c.affiliateID)
	params.Set("locale_code", c.locale)
	params.Set("keywords", legalQuery(p))
	params.Set("page", strconv.Itoa(pageOf(p)))
	params.Set("pagesize", strconv.Itoa(careerjetPageSize))
	params.Set("sort", "date")
	params.Set("user_ip", "127.0.0.1")
	params.Set("user_agent", careerjetUserAgent)
	if p.Location != "" {
		params.Set("location", p.Location)
	}
	switch jobTypeFilter(p) {
	case "full-time":
		params.Set("contractperiod", "f")
	case "part-time":
		params.Set("contractperiod", "p")
	case "contract":
		params.Set("contracttype", "c")
	case "internship":
		params.Set("contracttype", "i")
	case "permanent":
		params.Set("contracttype", "p")
	}

	var apiResp careerjetResponse
	if err := c.getJSON(ctx, c.baseURL+"/search?"+params.Encode(), nil, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Type != "" && apiResp.Type != "JOBS" {
		return nil, nil
	}

	jobType := jobTypeFilter(p)
	ls := make([]listing, 0, len(apiResp.Jobs))
	for _, r := range apiResp.Jobs {
		ls = append(ls, listing{
			title:       enrich.PlainText(r.Title),
			company:     r.Company,
			location:    r.Locations,
			jobType:     jobType,
			salary:      r.Salary,
			description: r.Description,
			applyURL:    r.URL,
			postedAt:    enrich.ParseTimestamp(r.Date),
		})
	}
	return toJobs(careerjetName, ls), nil
}
