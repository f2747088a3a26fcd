package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/presets"
	"github.com/hammamikhairi/ottocoach/internal/timeline"
)

var (
	planExercises   string
	planDuration    string
	planRepetitions string
	planPause       string
	planPreset      string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the timeline for a session without running it",
	Long: `Print every cue a session would play, with its offset from the start.

Values not given on the command line come from the saved settings.

Examples:
  # Timeline for the saved settings
  ottocoach plan

  # Two exercises of ten seconds, one round
  ottocoach plan -e 2 -d 10 -r 1 -p 0

  # A built-in preset
  ottocoach plan --preset hiit
`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planExercises, "exercises", "e", "", "exercises per round")
	planCmd.Flags().StringVarP(&planDuration, "duration", "d", "", "exercise duration in seconds")
	planCmd.Flags().StringVarP(&planRepetitions, "repetitions", "r", "", "number of rounds")
	planCmd.Flags().StringVarP(&planPause, "pause", "p", "", "pause between rounds in seconds")
	planCmd.Flags().StringVar(&planPreset, "preset", "", "plan a built-in preset instead")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log, closeLog := setupLogger()
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var params domain.Params
	if planPreset != "" {
		p, err := presets.NewMemorySource(log).Get(ctx, planPreset)
		if err != nil {
			return fmt.Errorf("preset %q: %w", planPreset, err)
		}
		params = p.Params
	} else {
		settings, err := openSettings(log).Load(ctx)
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		params = settings.Params
		for field, raw := range map[string]string{
			domain.FieldExercises:        planExercises,
			domain.FieldExerciseDuration: planDuration,
			domain.FieldRepetitions:      planRepetitions,
			domain.FieldPauseDuration:    planPause,
		} {
			if raw == "" {
				continue
			}
			if err := params.Set(field, raw); err != nil {
				return err
			}
		}
	}

	writePlan(cmd.OutOrStdout(), params.Normalized())
	return nil
}

// writePlan prints a timeline as a table of offsets and spoken text.
func writePlan(w io.Writer, params domain.Params) {
	cues := timeline.Build(params)
	stats := timeline.Summarize(cues)

	fmt.Fprintf(w, "Session: %s (%s)\n", params, fmtOffset(params.Total()))
	fmt.Fprintf(w, "%d announcements, %d countdown cues\n\n", stats.Announcements, stats.Countdowns)
	for _, c := range cues {
		switch c.Kind {
		case domain.CueCountdown:
			fmt.Fprintf(w, "  %8s    %s\n", fmtOffset(c.At), c.Spoken())
		default:
			fmt.Fprintf(w, "  %8s  ♪ %s\n", fmtOffset(c.At), c.Spoken())
		}
	}
}

// fmtOffset renders a cue offset as m:ss, with a sign for lead-in cues
// that fall before the session start.
func fmtOffset(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%s%d:%02d", sign, secs/60, secs%60)
}
