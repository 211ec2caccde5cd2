package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is stamped with -ldflags "-X github.com/abhisek/learnhub/cmd.version=...".
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the learnhub version",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if bi, ok := debug.ReadBuildInfo(); ok && v == "(devel)" && bi.Main.Version != "" {
			v = bi.Main.Version
		}
		fmt.Fprintln(cmd.OutOrStdout(), "learnhub", v)
	},
}
