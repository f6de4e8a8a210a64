package asset_scanner

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MatchMode selects how ignore tokens are compared against a path.
type MatchMode string

const (
	// MatchSegment excludes a path when one of its components equals a token.
	MatchSegment MatchMode = "segment"
	// MatchSubstring excludes a path when its absolute form contains a token anywhere.
	MatchSubstring MatchMode = "substring"
)

// DefaultIgnoreFile is looked up at the top of every root.
const DefaultIgnoreFile = ".assetscanignore"

// DefaultIgnoreDirs lists the build, dependency and editor directories skipped by default.
var DefaultIgnoreDirs = []string{
	"node_modules",
	".git",
	"dist",
	"build",
	".next",
	".nuxt",
	"coverage",
	".vscode",
	".idea",
	"__pycache__",
	".pytest_cache",
	"venv",
	"env",
	".env",
}

// ParseMatchMode accepts "segment" or "substring"; empty means segment.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSegment:
		return MatchSegment, nil
	case MatchSubstring:
		return MatchSubstring, nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want %q or %q)", s, MatchSegment, MatchSubstring)
	}
}

// IgnoreSet decides which entries of a root are left out of a scan.
type IgnoreSet struct {
	tokens   []string
	segments map[string]struct{}
	mode     MatchMode
	patterns []string
}

// NewIgnoreSet builds a set from ignore tokens. Blank tokens are dropped.
func NewIgnoreSet(tokens []string, mode MatchMode) *IgnoreSet {
	set := &IgnoreSet{
		segments: make(map[string]struct{}, len(tokens)),
		mode:     mode,
	}
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		set.tokens = append(set.tokens, token)
		set.segments[token] = struct{}{}
	}
	return set
}

// WithPatterns returns a copy of the set that also applies glob patterns read
// from a root's ignore file.
func (s *IgnoreSet) WithPatterns(patterns []string) *IgnoreSet {
	clone := *s
	clone.patterns = append(append([]string(nil), s.patterns...), patterns...)
	return &clone
}

// SkipDir reports whether the directory at relPath can be pruned as a whole.
func (s *IgnoreSet) SkipDir(relPath, absPath string) bool {
	if relPath == "" || relPath == "." {
		return false
	}
	switch s.mode {
	case MatchSubstring:
		for _, token := range s.tokens {
			if strings.Contains(absPath, token) {
				return true
			}
		}
	default:
		if _, ok := s.segments[filepath.Base(relPath)]; ok {
			return true
		}
	}
	return s.matchPatterns(relPath, true)
}

// SkipFile reports whether the file at relPath (relative to its root) with the
// given absolute path is excluded.
func (s *IgnoreSet) SkipFile(relPath, absPath string) bool {
	switch s.mode {
	case MatchSubstring:
		for _, token := range s.tokens {
			if strings.Contains(absPath, token) {
				return true
			}
		}
	default:
		for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
			if _, ok := s.segments[part]; ok {
				return true
			}
		}
	}
	return s.matchPatterns(relPath, false)
}

// matchPatterns applies ignore-file globs to the slash form of relPath.
func (s *IgnoreSet) matchPatterns(relPath string, isDir bool) bool {
	rel := filepath.ToSlash(relPath)
	for _, pattern := range s.patterns {
		if strings.HasSuffix(pattern, "/") {
			dir := strings.TrimSuffix(pattern, "/")
			if (isDir && rel == dir) || strings.HasPrefix(rel, pattern) {
				return true
			}
			continue
		}
		if match, _ := path.Match(pattern, rel); match {
			return true
		}
		if match, _ := path.Match(pattern, path.Base(rel)); match && !strings.Contains(pattern, "/") {
			return true
		}
	}
	return false
}

// ReadIgnoreFile returns the patterns of the ignore file at path. A missing file
// yields no patterns and no error.
func ReadIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, filepath.ToSlash(line))
		}
	}
	return patterns, nil
}
