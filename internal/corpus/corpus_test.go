package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ngramerrors "github.com/standardbeagle/ngram/internal/errors"
)

func TestLoad_CleanCorpusReturnsLiteralNilError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("bravo"), 0o644))

	files, err := Load(context.Background(), dir, []string{"*.txt"})
	require.NoError(t, err)
	require.Nil(t, err, "Load must return a literal nil error, not a boxed-nil *MultiError")
	require.Len(t, files, 2)
}

func TestLoad_UnreadableFileIsCollectedIntoMultiError(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(good, []byte("ok"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	if os.Geteuid() == 0 {
		t.Skip("running as root: file permissions don't restrict reads")
	}

	files, err := Load(context.Background(), dir, []string{"*.txt"})
	require.Error(t, err)

	var multi *ngramerrors.MultiError
	require.ErrorAs(t, err, &multi)
	require.NotNil(t, multi)
	require.Len(t, files, 1)
	require.Equal(t, "ok", files[0].Content)
}

func TestLoad_NoMatchesReturnsEmptyNotNilError(t *testing.T) {
	dir := t.TempDir()

	files, err := Load(context.Background(), dir, []string{"*.nonexistent"})
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestLoad_OverlappingGlobsDeduplicatePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))

	files, err := Load(context.Background(), dir, []string{"*.txt", "a.*"})
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestLoad_InvalidGlobPatternReturnsCorpusError(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(context.Background(), dir, []string{"["})
	require.Error(t, err)
}

func TestStrings_ProjectsContentInOrder(t *testing.T) {
	files := []File{
		{Path: "a.txt", Content: "alpha"},
		{Path: "b.txt", Content: "bravo"},
	}
	require.Equal(t, []string{"alpha", "bravo"}, Strings(files))
}
