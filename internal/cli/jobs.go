package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fractional-quest/internal/jobs"
)

type normalizedTitle struct {
	Title       string       `json:"title"`
	Category    string       `json:"category"`
	Fractional  bool         `json:"fractional"`
	DayRate     jobs.DayRate `json:"dayRate"`
	DayRateText string       `json:"dayRateText"`
	SlugBase    string       `json:"slugBase"`
}

func newJobsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Job normalization helpers",
	}
	cmd.AddCommand(newJobsNormalizeCmd(opts))
	return cmd
}

func newJobsNormalizeCmd(opts *options) *cobra.Command {
	var company string

	cmd := &cobra.Command{
		Use:   "normalize <title>",
		Short: "Show how a scraped job title is categorized and priced",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title must not be empty")
			}
			category := jobs.CategorizeRole(title)
			rate := jobs.EstimateDayRate(category)
			n := normalizedTitle{
				Title:       title,
				Category:    category,
				Fractional:  jobs.IsFractionalRole(title),
				DayRate:     rate,
				DayRateText: jobs.FormatDayRate(rate),
				SlugBase:    jobs.SlugBase(title, company),
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), n)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:       %s\n", n.Title)
			fmt.Fprintf(out, "Category:    %s\n", n.Category)
			fmt.Fprintf(out, "Fractional:  %t\n", n.Fractional)
			fmt.Fprintf(out, "Day rate:    %s\n", n.DayRateText)
			fmt.Fprintf(out, "Slug base:   %s\n", n.SlugBase)
			return nil
		},
	}
	cmd.Flags().StringVar(&company, "company", "", "Company name used in the slug")
	return cmd
}
