package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"legallyai/jobboard-service/internal/jobboard"
	"legallyai/jobboard-service/internal/model"
)

var (
	searchParams model.SearchParams
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one aggregated job search and print the result",
	Long: `Queries every configured provider once, merges the listings and prints
them. Nothing is cached or recorded. Without credentials the sample listings
are printed.`,
	Example: `  jobboard search --query "immigration attorney" --location Chicago --job-type full-time
  jobboard search --practice-area "Tax Law" --exclude unpaid --json`,
	RunE: runSearch,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchParams.Query, "query", "q", "", "free-text search terms")
	f.StringVarP(&searchParams.Location, "location", "l", "", "city, state or region")
	f.StringVar(&searchParams.JobType, "job-type", "", "full-time, part-time, contract, internship or permanent")
	f.StringVar(&searchParams.PracticeArea, "practice-area", "", `practice area, e.g. "Corporate Law"; "all" for every area`)
	f.IntVarP(&searchParams.Page, "page", "p", 1, "1-based result page")
	f.StringVar(&searchParams.Source, "source", "", "restrict to one provider, e.g. Adzuna")
	f.StringSliceVar(&searchParams.Exclude, "exclude", nil, "drop listings mentioning any of these terms")
	f.BoolVar(&searchJSON, "json", false, "print the raw JSON response")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	svc := jobboard.NewService(newAggregator(cfg, log), log)
	resp := svc.Search(cmd.Context(), searchParams.Normalize(), "")

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	return printResponse(resp)
}

func printResponse(resp model.Response) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tCOMPANY\tLOCATION\tTYPE\tPOSTED\tSOURCE")
	for _, j := range resp.Jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", j.Title, j.Company, j.Location, j.Type, j.Posted, j.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d of %d listings", len(resp.Jobs), resp.Total)
	if resp.Fallback {
		fmt.Print(" (sample listings)")
	}
	fmt.Println()

	names := make([]string, 0, len(resp.Providers))
	for name := range resp.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-10s %s\n", name, resp.Providers[name])
	}
	return nil
}
