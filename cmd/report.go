package cmd

import (
	"fmt"
	"io"

	"github.com/ninelmnts/assetscan/constants/lipgloss"
	"github.com/ninelmnts/assetscan/report_emitter"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report <document>",
	Short: "Verify a saved scan document and print its digest",
	Long: `The 'report' command reloads a JSON or YAML document written by 'scan', recomputes
its aggregates from the embedded file list and prints the digest again without touching
the scanned roots. A document whose aggregates disagree with its files is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		return runReport(rootDependencies, args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(deps *RootDependencies, path string, out io.Writer) error {
	doc, err := report_emitter.LoadDocument(path)
	if err != nil {
		return err
	}
	if err := doc.Verify(); err != nil {
		deps.Logger.Error().Err(err).Str("document", path).Msg("document verification failed")
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintln(out, lipgloss.Green.Render(fmt.Sprintf("✓ %s verified (run %s)", path, doc.ScanInfo.RunID)))

	return report_emitter.PrintDigest(out, doc, report_emitter.DigestOptions{
		Outputs:       []string{path},
		TopExtensions: deps.Config.TopExtensions,
		Patterns:      deps.Config.Patterns,
	})
}
