package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/cmd/mudra/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, build.String())
		if IsVerbose() {
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
			if path, err := resolveConfigPath(); err == nil {
				fmt.Fprintf(out, "  config: %s\n", path)
			} else {
				fmt.Fprintf(out, "  config: (unavailable: %v)\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
