package models

import "sort"

// DefaultExampleLimit is the number of example paths kept per extension.
const DefaultExampleLimit = 3

type ExtensionSummary struct {
	Extension string   `json:"extension" yaml:"extension"`
	Count     int      `json:"count" yaml:"count"`
	TotalSize int64    `json:"total_size" yaml:"total_size"`
	Examples  []string `json:"examples" yaml:"examples"`
}

type ProjectSummary struct {
	Project   string   `json:"project" yaml:"project"`
	Count     int      `json:"count" yaml:"count"`
	TotalSize int64    `json:"total_size" yaml:"total_size"`
	FileTypes []string `json:"file_types" yaml:"file_types"`
}

type DirectorySummary struct {
	Directory string `json:"directory" yaml:"directory"`
	Count     int    `json:"count" yaml:"count"`
	TotalSize int64  `json:"total_size" yaml:"total_size"`
}

// Summary groups a file collection three ways. Every slice keeps the order in
// which its key was first seen in the file list.
type Summary struct {
	ByExtension []ExtensionSummary `json:"by_extension" yaml:"by_extension"`
	ByProject   []ProjectSummary   `json:"by_project" yaml:"by_project"`
	ByDirectory []DirectorySummary `json:"by_directory" yaml:"by_directory"`
}

// Summarize computes all aggregates from files. It holds no state of its own, so
// calling it twice on the same records gives equal results.
func Summarize(files []FileRecord, exampleLimit int) Summary {
	if exampleLimit < 0 {
		exampleLimit = 0
	}

	summary := Summary{
		ByExtension: []ExtensionSummary{},
		ByProject:   []ProjectSummary{},
		ByDirectory: []DirectorySummary{},
	}
	extIndex := make(map[string]int)
	projectIndex := make(map[string]int)
	projectTypes := make(map[string]map[string]struct{})
	dirIndex := make(map[string]int)

	for _, f := range files {
		i, ok := extIndex[f.Extension]
		if !ok {
			i = len(summary.ByExtension)
			extIndex[f.Extension] = i
			summary.ByExtension = append(summary.ByExtension, ExtensionSummary{Extension: f.Extension, Examples: []string{}})
		}
		ext := &summary.ByExtension[i]
		ext.Count++
		ext.TotalSize += f.SizeBytes
		if len(ext.Examples) < exampleLimit {
			ext.Examples = append(ext.Examples, f.RelativePath)
		}

		j, ok := projectIndex[f.ProjectLabel]
		if !ok {
			j = len(summary.ByProject)
			projectIndex[f.ProjectLabel] = j
			projectTypes[f.ProjectLabel] = make(map[string]struct{})
			summary.ByProject = append(summary.ByProject, ProjectSummary{Project: f.ProjectLabel, FileTypes: []string{}})
		}
		project := &summary.ByProject[j]
		project.Count++
		project.TotalSize += f.SizeBytes
		if _, seen := projectTypes[f.ProjectLabel][f.Extension]; !seen {
			projectTypes[f.ProjectLabel][f.Extension] = struct{}{}
			project.FileTypes = append(project.FileTypes, f.Extension)
		}

		k, ok := dirIndex[f.ParentDirectory]
		if !ok {
			k = len(summary.ByDirectory)
			dirIndex[f.ParentDirectory] = k
			summary.ByDirectory = append(summary.ByDirectory, DirectorySummary{Directory: f.ParentDirectory})
		}
		summary.ByDirectory[k].Count++
		summary.ByDirectory[k].TotalSize += f.SizeBytes
	}

	return summary
}

// TopExtensions returns up to n extension summaries ordered by count, highest
// first. Ties keep their grouping order.
func TopExtensions(summaries []ExtensionSummary, n int) []ExtensionSummary {
	sorted := make([]ExtensionSummary, len(summaries))
	copy(sorted, summaries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TotalSize sums size_bytes across files.
func TotalSize(files []FileRecord) int64 {
	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}
	return total
}
