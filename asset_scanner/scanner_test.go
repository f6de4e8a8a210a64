package asset_scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/ninelmnts/assetscan/asset_scanner/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
}

func relPaths(files []models.FileRecord) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.RelativePath)
	}
	sort.Strings(paths)
	return paths
}

func newTestScanner(opts Options) *AssetScanner {
	return NewAssetScanner(opts, zerolog.Nop())
}

func TestScanRoot_CollectsMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", 10)
	writeFile(t, root, "assets/Logo.PNG", 2048)
	writeFile(t, root, "README", 3)

	scanner := newTestScanner(Options{})
	files, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: root, Label: "Studio V3"})
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, []string{"README", "assets/Logo.PNG", "index.html"}, relPaths(files))

	for _, f := range files {
		assert.Equal(t, "Studio V3", f.ProjectLabel)
		assert.True(t, filepath.IsAbs(f.AbsolutePath))
		assert.Equal(t, filepath.Dir(f.AbsolutePath), f.ParentDirectory)
		assert.Equal(t, models.RecordID(f.AbsolutePath), f.ID)
		assert.False(t, f.ModifiedTime.IsZero())

		switch f.Name {
		case "Logo.PNG":
			assert.Equal(t, ".png", f.Extension)
			assert.Equal(t, int64(2048), f.SizeBytes)
			assert.Equal(t, filepath.Join(root, "assets"), f.ParentDirectory)
		case "README":
			assert.Equal(t, "", f.Extension)
		case "index.html":
			assert.Equal(t, ".html", f.Extension)
		}
	}
}

func TestScanRoot_SkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "source/index.js", 5)
	writeFile(t, root, "node_modules/pkg/index.js", 5)
	writeFile(t, root, "web/.git/HEAD", 5)
	writeFile(t, root, "envision/plan.md", 5)

	scanner := newTestScanner(Options{IgnoreDirs: []string{"node_modules", ".git", "env"}})
	files, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: root, Label: "p"})
	require.NoError(t, err)

	// "envision" only contains the token "env"; segment matching keeps it.
	assert.Equal(t, []string{"envision/plan.md", "source/index.js"}, relPaths(files))
}

func TestScanRoot_SubstringMode(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "source/index.js", 5)
	writeFile(t, root, "node_modules/pkg/index.js", 5)
	writeFile(t, root, "envision/plan.md", 5)

	scanner := newTestScanner(Options{IgnoreDirs: []string{"node_modules", "env"}, MatchMode: MatchSubstring})
	files, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: root, Label: "p"})
	require.NoError(t, err)

	assert.Equal(t, []string{"source/index.js"}, relPaths(files))
	for _, f := range files {
		assert.NotContains(t, f.AbsolutePath, "node_modules")
	}
}

func TestScanRoot_IgnoreFilePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.txt", 1)
	writeFile(t, root, "debug.log", 1)
	writeFile(t, root, "nested/trace.log", 1)
	writeFile(t, root, "drafts/one.md", 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, DefaultIgnoreFile), []byte("# comment\n*.log\ndrafts/\n"), 0644))

	scanner := newTestScanner(Options{IgnoreFile: DefaultIgnoreFile})
	files, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: root, Label: "p"})
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultIgnoreFile, "keep.txt"}, relPaths(files))
}

func TestScanRoot_MissingRoot(t *testing.T) {
	scanner := newTestScanner(Options{})
	files, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: filepath.Join(t.TempDir(), "missing"), Label: "gone"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootUnavailable))
	assert.Empty(t, files)
}

func TestScanRoot_FileAsRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.txt", 1)

	scanner := newTestScanner(Options{})
	_, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: filepath.Join(root, "file.txt")})
	assert.True(t, errors.Is(err, ErrRootUnavailable))
}

func TestScanRoot_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := newTestScanner(Options{})
	files, err := scanner.ScanRoot(ctx, models.RootSpec{Path: root})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, files)
}

func TestScanRoot_UnreadableSubdirectoryKeepsPartialResults(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}

	root := t.TempDir()
	writeFile(t, root, "a/first.txt", 1)
	writeFile(t, root, "z/locked/secret.txt", 1)
	locked := filepath.Join(root, "z", "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	scanner := newTestScanner(Options{})
	files, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: root, Label: "p"})
	require.Error(t, err)
	assert.Equal(t, []string{"a/first.txt"}, relPaths(files))
}

func TestScan_MissingRootDoesNotAbortOthers(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "one.txt", 1)
	writeFile(t, second, "two.md", 2)
	writeFile(t, second, "three.md", 3)
	missing := filepath.Join(t.TempDir(), "nope")

	var started []string
	var done []int
	scanner := newTestScanner(Options{
		OnRootStart: func(_ int, root models.RootSpec) { started = append(started, root.Label) },
		OnRootDone:  func(_ int, _ models.RootSpec, n int, _ error) { done = append(done, n) },
	})

	run := scanner.Scan(context.Background(), []models.RootSpec{
		{Path: first, Label: "First"},
		{Path: missing, Label: "Missing"},
		{Path: second},
	})

	require.NotNil(t, run)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())
	assert.Len(t, run.Files, 3)
	assert.Equal(t, []string{"First", "Missing", filepath.Base(second)}, started)
	assert.Equal(t, []int{1, 0, 2}, done)

	require.Len(t, run.Diagnostics, 1)
	assert.Equal(t, missing, run.Diagnostics[0].Root)
	assert.Equal(t, 0, run.Diagnostics[0].FilesKept)
	assert.Contains(t, run.Diagnostics[0].Message, "does not exist")

	require.Len(t, run.Roots, 3)
	assert.Equal(t, filepath.Base(second), run.Roots[2].Label)
}

func TestScan_AggregateTotalsMatchFiles(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "a.txt", 10)
	writeFile(t, first, "b.txt", 20)
	writeFile(t, first, "img/c.png", 30)
	writeFile(t, second, "d.txt", 40)
	writeFile(t, second, "e", 50)

	run := newTestScanner(Options{}).Scan(context.Background(), []models.RootSpec{
		{Path: first, Label: "A"},
		{Path: second, Label: "B"},
	})
	summary := models.Summarize(run.Files, models.DefaultExampleLimit)

	var extCount, projectCount int
	var extSize int64
	for _, e := range summary.ByExtension {
		extCount += e.Count
		extSize += e.TotalSize
	}
	for _, p := range summary.ByProject {
		projectCount += p.Count
	}
	assert.Equal(t, len(run.Files), extCount)
	assert.Equal(t, len(run.Files), projectCount)
	assert.Equal(t, models.TotalSize(run.Files), extSize)
	assert.Equal(t, int64(150), extSize)
}

func TestScanRoot_SymlinkedRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}

	target := t.TempDir()
	writeFile(t, target, "a.txt", 3)
	writeFile(t, target, "sub/b.png", 5)
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(target, link))

	scanner := newTestScanner(Options{})
	viaLink, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: link})
	require.NoError(t, err)
	direct, err := scanner.ScanRoot(context.Background(), models.RootSpec{Path: target})
	require.NoError(t, err)

	assert.Equal(t, relPaths(direct), relPaths(viaLink))
	assert.Equal(t, []string{"a.txt", "sub/b.png"}, relPaths(viaLink))
	for _, f := range viaLink {
		assert.Equal(t, "link", f.ProjectLabel)
		assert.True(t, strings.HasPrefix(f.AbsolutePath, link+string(filepath.Separator)), f.AbsolutePath)
	}
}

func TestScanRoot_DanglingSymlinkedRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}

	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(filepath.Join(t.TempDir(), "gone"), link))

	_, err := newTestScanner(Options{}).ScanRoot(context.Background(), models.RootSpec{Path: link})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRootUnavailable))
}

func TestScanRoot_SymlinksInsideRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}

	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, root, "real.txt", 4)
	writeFile(t, outside, "shared/logo.svg", 9)
	writeFile(t, outside, "shared/deep/inner.txt", 1)
	require.NoError(t, os.Symlink(filepath.Join(outside, "shared", "logo.svg"), filepath.Join(root, "logo-link.svg")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "shared"), filepath.Join(root, "shared-link")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "missing.txt"), filepath.Join(root, "dangling.txt")))

	files, err := newTestScanner(Options{}).ScanRoot(context.Background(), models.RootSpec{Path: root, Label: "p"})
	require.NoError(t, err)

	assert.Equal(t, []string{"logo-link.svg", "real.txt"}, relPaths(files))
	for _, f := range files {
		if f.Name == "logo-link.svg" {
			assert.Equal(t, int64(9), f.SizeBytes)
			assert.Equal(t, ".svg", f.Extension)
		}
	}
}
