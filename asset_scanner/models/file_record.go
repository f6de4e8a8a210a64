package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// FileRecord holds the metadata captured for one discovered file
type FileRecord struct {
	ID              string    `json:"id" yaml:"id"`
	AbsolutePath    string    `json:"absolute_path" yaml:"absolute_path"`
	Name            string    `json:"name" yaml:"name"`
	Extension       string    `json:"extension" yaml:"extension"`
	ParentDirectory string    `json:"parent_directory" yaml:"parent_directory"`
	RelativePath    string    `json:"relative_path" yaml:"relative_path"`
	SizeBytes       int64     `json:"size_bytes" yaml:"size_bytes"`
	ModifiedTime    time.Time `json:"modified_time" yaml:"modified_time"`
	ProjectLabel    string    `json:"project_label" yaml:"project_label"`
}

// RootSpec is one requested scan root and the label its files are grouped under.
type RootSpec struct {
	Path  string `json:"path" yaml:"path" mapstructure:"path"`
	Label string `json:"label" yaml:"label" mapstructure:"label"`
}

// Normalize fills in a missing label from the base name of the root path.
func (r RootSpec) Normalize() RootSpec {
	r.Path = strings.TrimSpace(r.Path)
	r.Label = strings.TrimSpace(r.Label)
	if r.Label == "" && r.Path != "" {
		r.Label = filepath.Base(filepath.Clean(r.Path))
	}
	return r
}

// Diagnostic records a root that could not be scanned completely.
type Diagnostic struct {
	Root      string `json:"root" yaml:"root"`
	Label     string `json:"label" yaml:"label"`
	Message   string `json:"message" yaml:"message"`
	FilesKept int    `json:"files_kept" yaml:"files_kept"`
}

// ScanRun is the in-memory result of scanning every requested root once.
type ScanRun struct {
	ID          string
	StartedAt   time.Time
	Roots       []RootSpec
	Files       []FileRecord
	Diagnostics []Diagnostic
}

// NewFileRecord builds a record for the file at absPath found under root.
// relPath must already be relative to root.
func NewFileRecord(absPath, relPath string, size int64, modTime time.Time, label string) FileRecord {
	name := filepath.Base(absPath)
	return FileRecord{
		ID:              RecordID(absPath),
		AbsolutePath:    absPath,
		Name:            name,
		Extension:       ExtensionOf(name),
		ParentDirectory: filepath.Dir(absPath),
		RelativePath:    filepath.ToSlash(relPath),
		SizeBytes:       size,
		ModifiedTime:    modTime,
		ProjectLabel:    label,
	}
}

// RecordID derives a stable identifier from the absolute path.
func RecordID(absPath string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(absPath))
}

// ExtensionOf returns the lower-cased final suffix of name including its dot.
// Dot-files such as ".bashrc" and names ending in "." have no extension.
func ExtensionOf(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}
