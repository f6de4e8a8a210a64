package cmd

import (
	"fmt"

	"github.com/ninelmnts/assetscan/constants/lipgloss"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X github.com/ninelmnts/assetscan/cmd.Version=...".
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the assetscan version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), lipgloss.BlueSky.Render(fmt.Sprintf("assetscan %s", Version)))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
