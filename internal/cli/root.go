// Package cli implements fqctl, a command line companion for the job board:
// it exercises the filter codec, the rate slider and job normalization
// without a running service, and maintains the worker activity registry.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"fractional-quest/internal/jobfilter"
)

type options struct {
	jsonOutput bool
	minRate    int
	maxRate    int
	rateStep   int
	searchPath string
}

func (o *options) codec() jobfilter.Codec {
	return jobfilter.NewCodec(o.minRate, o.maxRate,
		jobfilter.WithRateStep(o.rateStep),
		jobfilter.WithSearchPath(o.searchPath),
	)
}

// NewRootCmd builds a fresh command tree; tests get isolated flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "fqctl",
		Short: "Fractional Quest job board tooling",
		Long: `fqctl works with the job board's filter URLs, the day-rate slider and
job normalization offline.

Examples:
  fqctl filter parse "rate=600-1200&role=CFO"
  fqctl filter serialize --role CTO --type remote --min-rate 800 --max-rate 1500
  fqctl slider drag --handle min --to 437
  fqctl jobs normalize "Fractional CFO - Series A"
  fqctl registry validate --path configs/activity-registry.json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().IntVar(&opts.minRate, "default-min-rate", jobfilter.DefaultMinRate,
		"Lower bound of the day-rate slider")
	root.PersistentFlags().IntVar(&opts.maxRate, "default-max-rate", jobfilter.DefaultMaxRate,
		"Upper bound of the day-rate slider")
	root.PersistentFlags().IntVar(&opts.rateStep, "rate-step", jobfilter.RateStep, "Day-rate slider step")
	root.PersistentFlags().StringVar(&opts.searchPath, "search-path", jobfilter.SearchPath, "Path of the job search page")

	root.AddCommand(newFilterCmd(opts))
	root.AddCommand(newSliderCmd(opts))
	root.AddCommand(newJobsCmd(opts))
	root.AddCommand(newRegistryCmd(opts))
	return root
}

// Execute runs fqctl with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
