package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fractional-quest/internal/jobfilter"
	"fractional-quest/internal/rangeslider"
)

type rateChange struct {
	MinValue int `json:"minValue"`
	MaxValue int `json:"maxValue"`
}

type dragResult struct {
	Handle  string           `json:"handle"`
	Changes []rateChange     `json:"changes"`
	Values  rateChange       `json:"values"`
	Query   string           `json:"query"`
	View    rangeslider.View `json:"view"`
}

func newSliderCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slider",
		Short: "Drive the day-rate slider on a virtual track",
	}
	cmd.AddCommand(newSliderDragCmd(opts))
	return cmd
}

func newSliderDragCmd(opts *options) *cobra.Command {
	var (
		handle   string
		moves    []float64
		left     float64
		width    float64
		minValue int
		maxValue int
		touch    bool
	)

	cmd := &cobra.Command{
		Use:   "drag",
		Short: "Press a handle, move the pointer through --to positions and release",
		Long: `Simulates a drag of one slider handle. Pointer positions are client x
coordinates on a track spanning [--left, --left + --width].

Examples:
  fqctl slider drag --handle min --to 437
  fqctl slider drag --handle max --to 1400,1200 --min-value 600
  fqctl slider drag --handle min --to 200 --touch --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.codec()

			var h rangeslider.Handle
			switch handle {
			case "min":
				h = rangeslider.HandleMin
			case "max":
				h = rangeslider.HandleMax
			default:
				return fmt.Errorf("invalid handle %q: want min or max", handle)
			}
			if width <= 0 {
				return fmt.Errorf("track width must be positive, got %v", width)
			}
			if len(moves) == 0 {
				return fmt.Errorf("at least one --to position is required")
			}

			if !cmd.Flags().Changed("min-value") {
				minValue = c.DefaultMin
			}
			if !cmd.Flags().Changed("max-value") {
				maxValue = c.DefaultMax
			}
			initial := c.Default()
			initial.MinRate, initial.MaxRate = minValue, maxValue
			if c.IsRateFiltered(initial) && !c.ValidRate(jobfilter.FormatRate(minValue, maxValue)) {
				return fmt.Errorf("invalid starting values %d-%d", minValue, maxValue)
			}

			form := jobfilter.NewForm(c, c.URL(initial), nil)
			doc := rangeslider.NewDocument()
			track := rangeslider.TrackFunc(func() rangeslider.Rect {
				return rangeslider.Rect{Left: left, Width: width}
			})
			slider := form.Slider(track, doc)

			press, move, release := rangeslider.MouseDown, rangeslider.MouseMove, rangeslider.MouseUp
			if touch {
				press, move, release = rangeslider.TouchStart, rangeslider.TouchMove, rangeslider.TouchEnd
			}
			event := func(t rangeslider.EventType, x float64) rangeslider.Event {
				if touch {
					return rangeslider.Event{Type: t, Touches: []rangeslider.Touch{{ClientX: x}}}
				}
				return rangeslider.Event{Type: t, ClientX: x}
			}

			result := dragResult{Handle: h.String(), Changes: []rateChange{}}
			slider.PointerDown(h, event(press, moves[0]))
			last := form.State()
			for _, x := range moves {
				doc.Dispatch(event(move, x))
				if s := form.State(); s != last {
					result.Changes = append(result.Changes, rateChange{MinValue: s.MinRate, MaxValue: s.MaxRate})
					last = s
				}
			}
			doc.Dispatch(rangeslider.Event{Type: release})

			final := form.State()
			result.Values = rateChange{MinValue: final.MinRate, MaxValue: final.MaxRate}
			result.Query = form.Query()
			result.View = form.RateView()

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			out := cmd.OutOrStdout()
			for _, ch := range result.Changes {
				fmt.Fprintf(out, "change  %s - %s\n",
					jobfilter.FormatRateValue(ch.MinValue), jobfilter.FormatRateValue(ch.MaxValue))
			}
			if len(result.Changes) == 0 {
				fmt.Fprintln(out, "no change")
			}
			fmt.Fprintf(out, "values  %s - %s (%.0f%% - %.0f%%)\n",
				result.View.MinLabel, result.View.MaxLabel, result.View.MinPercent, result.View.MaxPercent)
			fmt.Fprintf(out, "query   %s\n", result.Query)
			return nil
		},
	}

	cmd.Flags().StringVar(&handle, "handle", "min", "Handle to drag: min or max")
	cmd.Flags().Float64SliceVar(&moves, "to", nil, "Pointer x positions to move through, comma separated")
	cmd.Flags().Float64Var(&left, "left", 0, "Left edge of the track")
	cmd.Flags().Float64Var(&width, "width", 1600, "Width of the track")
	cmd.Flags().IntVar(&minValue, "min-value", 0, "Starting minimum day rate (default: slider minimum)")
	cmd.Flags().IntVar(&maxValue, "max-value", 0, "Starting maximum day rate (default: slider maximum)")
	cmd.Flags().BoolVar(&touch, "touch", false, "Drive the drag with touch events instead of the mouse")
	return cmd
}
