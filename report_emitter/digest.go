package report_emitter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ninelmnts/assetscan/asset_scanner/models"
	"github.com/ninelmnts/assetscan/constants/lipgloss"
	"github.com/pterm/pterm"
)

// DefaultTopExtensions is how many extensions the digest lists.
const DefaultTopExtensions = 10

// DigestOptions selects what the console digest shows besides the document itself.
type DigestOptions struct {
	// Outputs are the artifact paths written for this run.
	Outputs       []string
	TopExtensions int
	Patterns      PatternConfig
}

// PrintDigest writes the human-readable scan summary for doc to w.
func PrintDigest(w io.Writer, doc *Document, opts DigestOptions) error {
	topN := opts.TopExtensions
	if topN <= 0 {
		topN = DefaultTopExtensions
	}
	maxExamples := opts.Patterns.MaxExamples
	if maxExamples <= 0 {
		maxExamples = DefaultMaxPatternExamples
	}

	var b strings.Builder

	b.WriteString(lipgloss.BoxStyle.Render("📊 SCAN SUMMARY"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "📁 Total Files: %d\n", doc.ScanInfo.TotalFiles)
	fmt.Fprintf(&b, "📁 Projects Scanned: %d\n", doc.ScanInfo.ProjectsScanned)
	if len(opts.Outputs) > 0 {
		fmt.Fprintf(&b, "📁 Output Files: %s\n", strings.Join(opts.Outputs, ", "))
	}

	b.WriteString("\n" + lipgloss.Info.Render("📋 BY PROJECT:") + "\n")
	projectRows := pterm.TableData{{"Project", "Files", "Size (MB)"}}
	for _, p := range doc.Summary.ByProject {
		projectRows = append(projectRows, []string{p.Project, fmt.Sprintf("%d", p.Count), fmt.Sprintf("%.2f", sizeMiB(p.TotalSize))})
	}
	if err := renderTable(&b, projectRows); err != nil {
		return err
	}

	b.WriteString("\n" + lipgloss.Info.Render("📋 TOP FILE TYPES:") + "\n")
	extRows := pterm.TableData{{"Extension", "Files"}}
	for _, e := range models.TopExtensions(doc.Summary.ByExtension, topN) {
		extRows = append(extRows, []string{displayExtension(e.Extension), fmt.Sprintf("%d", e.Count)})
	}
	if err := renderTable(&b, extRows); err != nil {
		return err
	}

	if len(doc.Diagnostics) > 0 {
		b.WriteString("\n" + lipgloss.Red.Render("⚠ ROOTS WITH ERRORS:") + "\n")
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(&b, "  %s (%s): %s, %d files kept\n", d.Label, d.Root, d.Message, d.FilesKept)
		}
	}

	b.WriteString("\n" + lipgloss.Info.Render("🎯 NEXT STEPS:") + "\n")
	for i, step := range nextSteps(opts.Outputs) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	matches := FindPatterns(doc.Files, opts.Patterns)
	b.WriteString("\n" + lipgloss.Info.Render("🔍 INTERESTING PATTERNS:") + "\n")
	if len(matches.Revenue) == 0 && len(matches.ProductLine) == 0 {
		b.WriteString(lipgloss.Gray.Render("No matching files.") + "\n")
	}
	if len(matches.Revenue) > 0 {
		fmt.Fprintf(&b, "💰 Found %d potential revenue-generating files:\n", len(matches.Revenue))
		writeExamples(&b, matches.Revenue, maxExamples)
	}
	if len(matches.ProductLine) > 0 {
		fmt.Fprintf(&b, "🎪 Found %d Event OS related files:\n", len(matches.ProductLine))
		writeExamples(&b, matches.ProductLine, maxExamples)
	}

	b.WriteString("\n" + lipgloss.Green.Render("✅ Scan complete!") + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(b *strings.Builder, data pterm.TableData) error {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	b.WriteString(table)
	b.WriteString("\n")
	return nil
}

func writeExamples(b *strings.Builder, files []models.FileRecord, limit int) {
	for i, f := range files {
		if i == limit {
			break
		}
		fmt.Fprintf(b, "   📄 %s (%s)\n", f.RelativePath, f.ProjectLabel)
	}
}

func nextSteps(outputs []string) []string {
	document, table := "the structured document", "the CSV"
	for _, out := range outputs {
		switch strings.ToLower(filepath.Ext(out)) {
		case ".json", ".yaml", ".yml":
			document = filepath.Base(out)
		case ".csv":
			table = filepath.Base(out)
		}
	}
	return []string{
		fmt.Sprintf("📊 Review %s for detailed analysis", document),
		fmt.Sprintf("📋 Import %s into the asset database", table),
		"🏷️  Fill in Asset Type, Category, Status columns",
		"📊 Use the data for revenue generation strategy",
		"🚀 Identify ready-to-sell products immediately",
	}
}

// displayExtension labels the extensionless group.
func displayExtension(ext string) string {
	if ext == "" {
		return "(none)"
	}
	return ext
}

func sizeMiB(b int64) float64 {
	return float64(b) / 1024 / 1024
}
