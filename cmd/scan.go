package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ninelmnts/assetscan/asset_scanner"
	"github.com/ninelmnts/assetscan/asset_scanner/contracts"
	"github.com/ninelmnts/assetscan/asset_scanner/models"
	"github.com/ninelmnts/assetscan/constants/lipgloss"
	"github.com/ninelmnts/assetscan/report_emitter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [root...]",
	Short: "Scan project roots and write the asset inventory",
	Long: `The 'scan' command walks every configured root one after another and writes the
structured document, the curation CSV and, when configured, a SQLite export. The
artifacts can be uploaded to an S3-compatible bucket. Arguments are added to the
configured roots; use 'path=label' to name a root.

A root that is missing or partly unreadable is reported and skipped; failing to write
an artifact ends the command with an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		rootDependencies.Config.AddRoots(args)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		quiet, _ := cmd.Flags().GetBool("quiet")
		_, err = runScan(ctx, rootDependencies, cmd.OutOrStdout(), !quiet)
		return err
	},
}

func init() {
	scanCmd.Flags().BoolP("quiet", "q", false, "Hide the per-root progress spinner")
	rootCmd.AddCommand(scanCmd)
}

// runScan scans the configured roots, writes every artifact and prints the
// digest to out. It returns the paths written, in order.
func runScan(ctx context.Context, deps *RootDependencies, out io.Writer, showProgress bool) ([]string, error) {
	cfg := deps.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := asset_scanner.ParseMatchMode(cfg.MatchMode)
	if err != nil {
		return nil, err
	}

	opts := asset_scanner.Options{
		IgnoreDirs: cfg.IgnoreDirs,
		MatchMode:  mode,
		IgnoreFile: cfg.IgnoreFile,
	}
	if showProgress {
		progress := newRootProgress(out, len(cfg.Roots))
		opts.OnRootStart = progress.start
		opts.OnRootDone = progress.done
	}

	var scanner contracts.IAssetScanner = asset_scanner.NewAssetScanner(opts, deps.Logger)
	run := scanner.Scan(ctx, cfg.Roots)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	doc := report_emitter.BuildDocument(run, cfg.ExampleLimit)

	var outputs []string
	if err := report_emitter.WriteDocument(cfg.JSONPath(), doc); err != nil {
		return outputs, err
	}
	outputs = append(outputs, cfg.JSONPath())

	if err := report_emitter.WriteCSV(cfg.CSVPath(), doc.Files); err != nil {
		return outputs, err
	}
	outputs = append(outputs, cfg.CSVPath())

	if path := cfg.SQLitePath(); path != "" {
		if err := report_emitter.ExportSQLite(ctx, path, doc); err != nil {
			return outputs, err
		}
		outputs = append(outputs, path)
	}

	if cfg.Publish.Enabled() {
		publisher, err := report_emitter.NewPublisher(cfg.Publish, deps.Logger)
		if err != nil {
			return outputs, err
		}
		if _, err := publisher.Publish(ctx, doc.ScanInfo.RunID, outputs...); err != nil {
			return outputs, err
		}
	}

	deps.Logger.Info().
		Str("run_id", doc.ScanInfo.RunID).
		Int("files", doc.ScanInfo.TotalFiles).
		Int("roots", doc.ScanInfo.ProjectsScanned).
		Int("diagnostics", len(doc.Diagnostics)).
		Msg("scan finished")

	err = report_emitter.PrintDigest(out, doc, report_emitter.DigestOptions{
		Outputs:       outputs,
		TopExtensions: cfg.TopExtensions,
		Patterns:      cfg.Patterns,
	})
	return outputs, err
}

// rootProgress shows one spinner per root while it is being walked.
type rootProgress struct {
	out     io.Writer
	total   int
	spinner *pterm.SpinnerPrinter
}

func newRootProgress(out io.Writer, total int) *rootProgress {
	return &rootProgress{out: out, total: total}
}

func (p *rootProgress) start(index int, root models.RootSpec) {
	fmt.Fprintln(p.out, lipgloss.Info.Render(fmt.Sprintf("📁 Scanning project %d/%d: %s", index+1, p.total, root.Label)))
	fmt.Fprintln(p.out, lipgloss.Gray.Render(fmt.Sprintf("   Path: %s", root.Path)))

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100 * time.Millisecond).WithRemoveWhenDone(true).WithWriter(os.Stderr)
	p.spinner, _ = spinner.Start("Walking " + root.Label + "...")
}

func (p *rootProgress) done(_ int, root models.RootSpec, files int, err error) {
	if p.spinner != nil {
		_ = p.spinner.Stop()
		p.spinner = nil
	}
	switch {
	case err != nil && files > 0:
		fmt.Fprintln(p.out, lipgloss.Yellow.Render(fmt.Sprintf("⚠ %s: %v (%d files kept)", root.Label, err, files)))
		return
	case err != nil:
		fmt.Fprintln(p.out, lipgloss.Red.Render(fmt.Sprintf("❌ %s: %v", root.Label, err)))
		return
	}
	fmt.Fprintln(p.out, lipgloss.Green.Render(fmt.Sprintf("✅ Found %d files", files)))
}
