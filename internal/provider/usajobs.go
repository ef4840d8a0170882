package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"legallyai/jobboard-service/internal/enrich"
	"legallyai/jobboard-service/internal/model"
)

const (
	usaJobsName     = "USAJobs"
	usaJobsBaseURL  = "https://data.usajobs.gov/api"
	usaJobsPageSize = 25
)

// USAJobs searches the federal government USAJOBS API. It authenticates with
// an Authorization-Key header and requires the registered e-mail address as
// User-Agent.
type USAJobs struct {
	apiKey    string
	userAgent string
	client
}

// NewUSAJobs constructs the USAJOBS adapter.
func NewUSAJobs(apiKey, userAgent string, opts ...Option) *USAJobs {
	return &USAJobs{
		apiKey:    apiKey,
		userAgent: userAgent,
		client:    newClient(usaJobsName, usaJobsBaseURL, opts),
	}
}

type usaJobsResponse struct {
	SearchResult struct {
		SearchResultCountAll int `json:"SearchResultCountAll"`
		SearchResultItems    []struct {
			MatchedObjectID         string            `json:"MatchedObjectId"`
			MatchedObjectDescriptor usaJobsDescriptor `json:"MatchedObjectDescriptor"`
		} `json:"SearchResultItems"`
	} `json:"SearchResult"`
}

type usaJobsDescriptor struct {
	PositionID              string   `json:"PositionID"`
	PositionTitle           string   `json:"PositionTitle"`
	PositionURI             string   `json:"PositionURI"`
	ApplyURI                []string `json:"ApplyURI"`
	PositionLocationDisplay string   `json:"PositionLocationDisplay"`
	OrganizationName        string   `json:"OrganizationName"`
	DepartmentName          string   `json:"DepartmentName"`
	QualificationSummary    string   `json:"QualificationSummary"`
	PublicationStartDate    string   `json:"PublicationStartDate"`
	PositionSchedule        []struct {
		Name string `json:"Name"`
	} `json:"PositionSchedule"`
	PositionRemuneration []struct {
		MinimumRange     string `json:"MinimumRange"`
		MaximumRange     string `json:"MaximumRange"`
		RateIntervalCode string `json:"RateIntervalCode"`
	} `json:"PositionRemuneration"`
	UserArea struct {
		Details struct {
			JobSummary string `json:"JobSummary"`
		} `json:"Details"`
	} `json:"UserArea"`
}

func (u *USAJobs) Name() string { return usaJobsName }

func (u *USAJobs) Configured() bool { return u.apiKey != "" && u.userAgent != "" }

// Search fetches one page of USAJOBS results.
func (u *USAJobs) Search(ctx context.Context, p model.SearchParams) ([]model.Job, error) {
	if !u.Configured() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("Keyword", legalQuery(p))
	params.Set("Page", strconv.Itoa(pageOf(p)))
	params.Set("ResultsPerPage", strconv.Itoa(usaJobsPageSize))
	params.Set("SortField", "opendate")
	params.Set("SortDirection", "desc")
	if p.Location != "" {
		params.Set("LocationName", p.Location)
	}
	switch jobTypeFilter(p) {
	case "full-time":
		params.Set("PositionScheduleTypeCode", "1")
	case "part-time":
		params.Set("PositionScheduleTypeCode", "2")
	}

	header := http.Header{}
	header.Set("User-Agent", u.userAgent)
	header.Set("Authorization-Key", u.apiKey)

	var apiResp usaJobsResponse
	if err := u.getJSON(ctx, u.baseURL+"/search?"+params.Encode(), header, &apiResp); err != nil {
		return nil, err
	}

	items := apiResp.SearchResult.SearchResultItems
	ls := make([]listing, 0, len(items))
	for _, item := range items {
		d := item.MatchedObjectDescriptor

		id := item.MatchedObjectID
		if id == "" {
			id = d.PositionID
		}
		company := d.OrganizationName
		if company == "" {
			company = d.DepartmentName
		}
		applyURL := d.PositionURI
		if len(d.ApplyURI) > 0 && d.ApplyURI[0] != "" {
			applyURL = d.ApplyURI[0]
		}
		var jobType string
		if len(d.PositionSchedule) > 0 {
			jobType = d.PositionSchedule[0].Name
		}

		ls = append(ls, listing{
			id:          id,
			title:       d.PositionTitle,
			company:     company,
			location:    d.PositionLocationDisplay,
			jobType:     jobType,
			salary:      usaJobsSalary(d),
			description: strings.TrimSpace(d.UserArea.Details.JobSummary + " " + d.QualificationSummary),
			applyURL:    applyURL,
			postedAt:    enrich.ParseTimestamp(d.PublicationStartDate),
		})
	}
	return toJobs(usaJobsName, ls), nil
}

// usaJobsSalary formats the first remuneration entry. USAJOBS sends the
// bounds as strings and the interval as a code or phrase.
func usaJobsSalary(d usaJobsDescriptor) string {
	if len(d.PositionRemuneration) == 0 {
		return ""
	}
	r := d.PositionRemuneration[0]
	lo, _ := strconv.ParseFloat(r.MinimumRange, 64)
	hi, _ := strconv.ParseFloat(r.MaximumRange, 64)

	var unit string
	switch strings.ToLower(r.RateIntervalCode) {
	case "pa", "per year":
		unit = "year"
	case "ph", "per hour":
		unit = "hour"
	}
	return enrich.FormatSalary(lo, hi, unit)
}
