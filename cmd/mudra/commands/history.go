package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent playback commands",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of commands to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	repo := st.Dispatches()
	dispatches, err := repo.List(historyLimit)
	if err != nil {
		return err
	}
	total, failed, err := repo.Count()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if total == 0 {
		fmt.Fprintln(out, dimStyle.Render("No playback commands recorded yet."))
		return nil
	}
	fmt.Fprintln(out, historyReport(dispatches, total, failed))
	return nil
}

func historyReport(dispatches []*store.Dispatch, total, failed int) string {
	rows := make([][]string, len(dispatches))
	for i, d := range dispatches {
		rows[i] = dispatchRow(d)
	}
	t := newTable([]string{"Time", "Gesture", "Command", "Volume", "Latency", "Result"}, rows,
		func(row int) bool { return row < len(dispatches) && !dispatches[row].Success })

	title := titleStyle.Render("Playback commands")
	footer := dimStyle.Render(fmt.Sprintf("showing %d of %d, %d failed", len(dispatches), total, failed))
	return title + "\n" + t.String() + "\n" + footer
}

func dispatchRow(d *store.Dispatch) []string {
	volume := "-"
	if d.Volume >= 0 {
		volume = fmt.Sprint(d.Volume)
	}
	result := "ok"
	if !d.Success {
		result = d.Error
		if result == "" {
			result = "failed"
		}
	}
	return []string{
		d.CreatedAt.Local().Format(time.DateTime),
		d.Label,
		d.Command,
		volume,
		fmt.Sprintf("%dms", d.LatencyMs),
		result,
	}
}
