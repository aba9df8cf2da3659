package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

var accuracySession string

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Show recorded accuracy trials",
	Long: `Summarize the accuracy trials recorded with the number keys during
'mudra run', per expected gesture and overall.`,
	Args: cobra.NoArgs,
	RunE: runAccuracy,
}

func init() {
	accuracyCmd.Flags().StringVar(&accuracySession, "session", "", "only count trials from this session")
	rootCmd.AddCommand(accuracyCmd)
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	if accuracySession != "" {
		s, err := st.Trials().Summary(accuracySession)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, titleStyle.Render("Session "+accuracySession))
		fmt.Fprintf(out, "Accuracy: %d/%d (%.2f%%)\n", s.Correct, s.Total, s.Accuracy())
		return nil
	}

	byExpected, err := st.Trials().SummaryByExpected()
	if err != nil {
		return err
	}
	if len(byExpected) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No trials recorded. Press 1-5 or 0 during 'mudra run' to score gestures."))
		return nil
	}

	fmt.Fprintln(out, accuracyReport(byExpected))
	return nil
}

// accuracyReport renders one row per expected gesture, in classifier
// order, followed by the overall total.
func accuracyReport(byExpected map[string]store.TrialSummary) string {
	labels := make([]string, 0, len(byExpected))
	for l := range byExpected {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, rj := labelRank(labels[i]), labelRank(labels[j])
		if ri != rj {
			return ri < rj
		}
		return labels[i] < labels[j]
	})

	var total store.TrialSummary
	rows := make([][]string, 0, len(labels)+1)
	for _, l := range labels {
		s := byExpected[l]
		total.Total += s.Total
		total.Correct += s.Correct
		rows = append(rows, summaryRow(l, s))
	}
	rows = append(rows, summaryRow("overall", total))

	t := newTable([]string{"Expected", "Correct", "Total", "Accuracy"}, rows, nil)
	return titleStyle.Render("Gesture accuracy") + "\n" + t.String()
}

func summaryRow(label string, s store.TrialSummary) []string {
	return []string{
		label,
		fmt.Sprint(s.Correct),
		fmt.Sprint(s.Total),
		fmt.Sprintf("%.2f%%", s.Accuracy()),
	}
}

// labelRank orders labels like the classifier output list.
func labelRank(l string) int {
	for i, known := range gesture.Labels {
		if string(known) == l {
			return i
		}
	}
	return len(gesture.Labels)
}
