package asset_scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
	"github.com/ninelmnts/assetscan/asset_scanner/contracts"
	"github.com/ninelmnts/assetscan/asset_scanner/models"
	"github.com/rs/zerolog"
)

// ErrRootUnavailable is returned for a root that does not exist or is not a directory.
var ErrRootUnavailable = errors.New("root unavailable")

// Options configures an AssetScanner.
type Options struct {
	IgnoreDirs []string
	MatchMode  MatchMode
	// IgnoreFile is the name of the per-root pattern file; empty disables it.
	IgnoreFile string

	// Progress hooks, both optional.
	OnRootStart func(index int, root models.RootSpec)
	OnRootDone  func(index int, root models.RootSpec, files int, err error)
}

// AssetScanner walks project roots and collects file metadata.
type AssetScanner struct {
	ignore     *IgnoreSet
	ignoreFile string
	logger     zerolog.Logger
	onStart    func(int, models.RootSpec)
	onDone     func(int, models.RootSpec, int, error)
	now        func() time.Time
}

var _ contracts.IAssetScanner = (*AssetScanner)(nil)

// NewAssetScanner initializes a scanner. A nil IgnoreDirs uses DefaultIgnoreDirs.
func NewAssetScanner(opts Options, logger zerolog.Logger) *AssetScanner {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	mode := opts.MatchMode
	if mode == "" {
		mode = MatchSegment
	}
	return &AssetScanner{
		ignore:     NewIgnoreSet(ignoreDirs, mode),
		ignoreFile: opts.IgnoreFile,
		logger:     logger,
		onStart:    opts.OnRootStart,
		onDone:     opts.OnRootDone,
		now:        time.Now,
	}
}

// Scan walks every root in order and collects the results into one run. A root
// that fails contributes whatever it produced before the failure and is noted
// in the run diagnostics; the remaining roots are still scanned.
func (s *AssetScanner) Scan(ctx context.Context, roots []models.RootSpec) *models.ScanRun {
	run := &models.ScanRun{
		ID:          uuid.NewString(),
		StartedAt:   s.now(),
		Roots:       make([]models.RootSpec, 0, len(roots)),
		Files:       []models.FileRecord{},
		Diagnostics: []models.Diagnostic{},
	}

	for i, root := range roots {
		root = root.Normalize()
		run.Roots = append(run.Roots, root)

		if s.onStart != nil {
			s.onStart(i, root)
		}

		files, err := s.ScanRoot(ctx, root)
		run.Files = append(run.Files, files...)

		if err != nil {
			s.logger.Error().Err(err).
				Str("root", root.Path).
				Str("label", root.Label).
				Int("files", len(files)).
				Msg("scan root failed")
			run.Diagnostics = append(run.Diagnostics, models.Diagnostic{
				Root:      root.Path,
				Label:     root.Label,
				Message:   err.Error(),
				FilesKept: len(files),
			})
		} else {
			s.logger.Debug().Str("root", root.Path).Str("label", root.Label).Int("files", len(files)).Msg("scanned root")
		}

		if s.onDone != nil {
			s.onDone(i, root, len(files), err)
		}
	}

	return run
}

// ScanRoot returns a record for every regular file under root that is not
// excluded by the ignore set. Records gathered before an error are returned
// together with it.
func (s *AssetScanner) ScanRoot(ctx context.Context, root models.RootSpec) ([]models.FileRecord, error) {
	root = root.Normalize()
	files := []models.FileRecord{}

	absRoot, err := filepath.Abs(root.Path)
	if err != nil {
		return files, fmt.Errorf("%w: %s: %v", ErrRootUnavailable, root.Path, err)
	}
	// The walk starts with Lstat, so a symlinked root is resolved up front.
	// Records keep the path the caller gave.
	walkRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return files, fmt.Errorf("%w: path does not exist: %s", ErrRootUnavailable, root.Path)
		}
		return files, fmt.Errorf("%w: %s: %v", ErrRootUnavailable, root.Path, err)
	}
	info, err := os.Stat(walkRoot)
	if err != nil {
		return files, fmt.Errorf("%w: %s: %v", ErrRootUnavailable, root.Path, err)
	}
	if !info.IsDir() {
		return files, fmt.Errorf("%w: not a directory: %s", ErrRootUnavailable, root.Path)
	}

	ignore := s.ignore
	if s.ignoreFile != "" {
		patterns, err := ReadIgnoreFile(filepath.Join(absRoot, s.ignoreFile))
		if err != nil {
			return files, err
		}
		if len(patterns) > 0 {
			ignore = ignore.WithPatterns(patterns)
		}
	}

	fsys := osfs.New(walkRoot)
	err = util.Walk(fsys, ".", func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath := filepath.Clean(path)
		absPath := filepath.Join(absRoot, relPath)

		if fi.IsDir() {
			if ignore.SkipDir(relPath, absPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if ignore.SkipFile(relPath, absPath) {
			return nil
		}

		// File symlinks count with their target's metadata; directory links are
		// not descended and dangling links are dropped.
		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(filepath.Join(walkRoot, relPath))
			if err != nil {
				s.logger.Debug().Err(err).Str("root", root.Path).Str("path", relPath).Msg("skipping dangling symlink")
				return nil
			}
			fi = target
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		files = append(files, models.NewFileRecord(absPath, relPath, fi.Size(), fi.ModTime(), root.Label))
		return nil
	})
	if err != nil {
		return files, fmt.Errorf("error scanning %s: %w", root.Path, err)
	}

	return files, nil
}
