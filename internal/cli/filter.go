package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fractional-quest/internal/jobfilter"
)

func newFilterCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Parse and build job filter query strings",
	}
	cmd.AddCommand(newFilterParseCmd(opts))
	cmd.AddCommand(newFilterSerializeCmd(opts))
	cmd.AddCommand(newFilterChipsCmd(opts))
	return cmd
}

type parsedFilter struct {
	State             jobfilter.State `json:"state"`
	CanonicalQuery    string          `json:"canonicalQuery"`
	URL               string          `json:"url"`
	ActiveFilterCount int             `json:"activeFilterCount"`
	IsRateFiltered    bool            `json:"isRateFiltered"`
}

func describeFilter(c jobfilter.Codec, s jobfilter.State) parsedFilter {
	return parsedFilter{
		State:             s,
		CanonicalQuery:    c.Serialize(s),
		URL:               c.URL(s),
		ActiveFilterCount: c.ActiveFilterCount(s),
		IsRateFiltered:    c.IsRateFiltered(s),
	}
}

func newFilterParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Print the filter state a query string parses to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.codec()
			return writeJSON(cmd.OutOrStdout(), describeFilter(c, c.ParseQuery(args[0])))
		},
	}
}

func newFilterSerializeCmd(opts *options) *cobra.Command {
	var (
		s        jobfilter.State
		workType string
	)
	cmd := &cobra.Command{
		Use:   "serialize",
		Short: "Build the canonical query string for a set of filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.codec()
			if workType != "" {
				s.WorkType = jobfilter.NormalizeWorkType(workType)
				if s.WorkType == "" {
					return fmt.Errorf("unknown work type %q (want remote, hybrid or onsite)", workType)
				}
			}
			if !cmd.Flags().Changed("min-rate") {
				s.MinRate = c.DefaultMin
			}
			if !cmd.Flags().Changed("max-rate") {
				s.MaxRate = c.DefaultMax
			}
			if c.IsRateFiltered(s) && !c.ValidRate(jobfilter.FormatRate(s.MinRate, s.MaxRate)) {
				return fmt.Errorf("invalid rate %d-%d: want %d <= min < max <= %d",
					s.MinRate, s.MaxRate, c.DefaultMin, c.DefaultMax)
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), describeFilter(c, s))
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.Serialize(s))
			return nil
		},
	}
	cmd.Flags().StringVar(&s.SearchQuery, "q", "", "Free-text search")
	cmd.Flags().StringVar(&s.Location, "location", "", "Location, e.g. London")
	cmd.Flags().StringVar(&s.Role, "role", "", "Role, e.g. CFO")
	cmd.Flags().StringVar(&workType, "type", "", "Work type: remote, hybrid or onsite")
	cmd.Flags().IntVar(&s.MinRate, "min-rate", 0, "Minimum day rate")
	cmd.Flags().IntVar(&s.MaxRate, "max-rate", 0, "Maximum day rate")
	return cmd
}

func newFilterChipsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chips <query>",
		Short: "List the active filter chips of a query string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.codec()
			chips := c.Chips(c.ParseQuery(args[0]))
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), chips)
			}
			if len(chips) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no active filters")
				return nil
			}
			for _, chip := range chips {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", chip.Key, chip.Label)
			}
			return nil
		},
	}
}
