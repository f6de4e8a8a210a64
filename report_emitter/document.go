package report_emitter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/ninelmnts/assetscan/asset_scanner/models"
	"gopkg.in/yaml.v3"
)

// ProjectRef is one requested root as recorded in the document.
type ProjectRef struct {
	Path string `json:"path" yaml:"path"`
	Name string `json:"name" yaml:"name"`
}

// ScanInfo carries the metadata of the run that produced a document.
type ScanInfo struct {
	RunID           string       `json:"run_id" yaml:"run_id"`
	Timestamp       time.Time    `json:"timestamp" yaml:"timestamp"`
	TotalFiles      int          `json:"total_files" yaml:"total_files"`
	ProjectsScanned int          `json:"projects_scanned" yaml:"projects_scanned"`
	ExampleLimit    int          `json:"example_limit" yaml:"example_limit"`
	Projects        []ProjectRef `json:"projects" yaml:"projects"`
}

// Document is the structured scan artifact. It is self-contained: the stored
// summary can always be recomputed from Files.
type Document struct {
	ScanInfo    ScanInfo            `json:"scan_info" yaml:"scan_info"`
	Summary     models.Summary      `json:"summary" yaml:"summary"`
	Files       []models.FileRecord `json:"files" yaml:"files"`
	Diagnostics []models.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// BuildDocument assembles the structured document for a completed run.
func BuildDocument(run *models.ScanRun, exampleLimit int) *Document {
	projects := make([]ProjectRef, 0, len(run.Roots))
	for _, root := range run.Roots {
		projects = append(projects, ProjectRef{Path: root.Path, Name: root.Label})
	}

	files := run.Files
	if files == nil {
		files = []models.FileRecord{}
	}
	diagnostics := run.Diagnostics
	if diagnostics == nil {
		diagnostics = []models.Diagnostic{}
	}

	return &Document{
		ScanInfo: ScanInfo{
			RunID:           run.ID,
			Timestamp:       run.StartedAt,
			TotalFiles:      len(files),
			ProjectsScanned: len(run.Roots),
			ExampleLimit:    exampleLimit,
			Projects:        projects,
		},
		Summary:     models.Summarize(files, exampleLimit),
		Files:       files,
		Diagnostics: diagnostics,
	}
}

// Verify recomputes the aggregates from the embedded file list and reports any
// section that disagrees with what the document stores.
func (d *Document) Verify() error {
	var mismatches []string

	if d.ScanInfo.TotalFiles != len(d.Files) {
		mismatches = append(mismatches, fmt.Sprintf("total_files is %d but %d files are listed", d.ScanInfo.TotalFiles, len(d.Files)))
	}

	recomputed := normalizeSummary(models.Summarize(d.Files, d.ScanInfo.ExampleLimit))
	stored := normalizeSummary(d.Summary)
	if !reflect.DeepEqual(recomputed.ByExtension, stored.ByExtension) {
		mismatches = append(mismatches, "by_extension")
	}
	if !reflect.DeepEqual(recomputed.ByProject, stored.ByProject) {
		mismatches = append(mismatches, "by_project")
	}
	if !reflect.DeepEqual(recomputed.ByDirectory, stored.ByDirectory) {
		mismatches = append(mismatches, "by_directory")
	}

	if len(mismatches) > 0 {
		return fmt.Errorf("document aggregates do not match its files: %s", strings.Join(mismatches, ", "))
	}
	return nil
}

// normalizeSummary maps nil slices to empty ones so decoded documents compare
// equal to freshly computed summaries.
func normalizeSummary(s models.Summary) models.Summary {
	out := models.Summary{
		ByExtension: make([]models.ExtensionSummary, 0, len(s.ByExtension)),
		ByProject:   make([]models.ProjectSummary, 0, len(s.ByProject)),
		ByDirectory: make([]models.DirectorySummary, 0, len(s.ByDirectory)),
	}
	for _, e := range s.ByExtension {
		if e.Examples == nil {
			e.Examples = []string{}
		}
		out.ByExtension = append(out.ByExtension, e)
	}
	for _, p := range s.ByProject {
		if p.FileTypes == nil {
			p.FileTypes = []string{}
		}
		out.ByProject = append(out.ByProject, p)
	}
	out.ByDirectory = append(out.ByDirectory, s.ByDirectory...)
	return out
}

// isYAML reports whether path selects the YAML rendition.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// WriteDocument writes doc to path as indented JSON, or YAML for .yaml/.yml paths.
func WriteDocument(path string, doc *Document) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if isYAML(path) {
		encoder := yaml.NewEncoder(f)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
	} else {
		encoder := json.NewEncoder(f)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadDocument reads a document written by WriteDocument.
func LoadDocument(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc Document
	if isYAML(path) {
		err = yaml.Unmarshal(content, &doc)
	} else {
		err = json.Unmarshal(content, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &doc, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}
