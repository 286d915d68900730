package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osegermany/ont2wb/internal/infrastructure/okh"
)

type fakeDownloader struct {
	files map[string]string
	err   error
	calls int
}

func (f *fakeDownloader) DownloadAll(_ context.Context, dir string) (*okh.Stats, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	for name, content := range f.files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return nil, err
		}
	}
	return &okh.Stats{Entries: len(f.files), Succeeded: len(f.files)}, nil
}

func writeManifests(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestStatsHandler_Handle(t *testing.T) {
	dir := writeManifests(t, map[string]string{
		"a-okh.yml":  "title: A\nlicense:\n  hardware: CERN-OHL-S-2.0\n",
		"b-okh.yml":  "title: B\nkeywords:\n  - x\n  - y\n",
		"notes.txt":  "title: ignored\n",
		"c-okh.yaml": "title: ignored too\n",
	})
	handler := NewStatsHandler(nil)

	result, err := handler.Handle(context.Background(), dir, StatsOptions{})

	require.NoError(t, err)
	assert.Len(t, result.Files, 2)
	assert.Empty(t, result.Skipped)
	assert.Nil(t, result.Download)
	assert.Equal(t, 2, result.Stats.Files())
	assert.Equal(t, 2, result.Stats.Count("title"))
	assert.Equal(t, 1, result.Stats.Count("license.hardware"))
	assert.Equal(t, 2, result.Stats.Count("keywords"))
}

func TestStatsHandler_Handle_RecursivePattern(t *testing.T) {
	dir := writeManifests(t, map[string]string{
		"top-okh.yml":         "title: top\n",
		"nested/deep-okh.yml": "title: deep\n",
	})
	handler := NewStatsHandler(nil)

	result, err := handler.Handle(context.Background(), dir, StatsOptions{Pattern: "**/*-okh.yml"})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Count("title"))
}

func TestStatsHandler_Handle_SkipsBrokenFiles(t *testing.T) {
	dir := writeManifests(t, map[string]string{
		"good-okh.yml": "title: good\n",
		"bad-okh.yml":  "title: [unclosed\n",
	})
	handler := NewStatsHandler(nil)

	result, err := handler.Handle(context.Background(), dir, StatsOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "good-okh.yml")}, result.Files)
	assert.Equal(t, []string{filepath.Join(dir, "bad-okh.yml")}, result.Skipped)
	assert.Equal(t, 1, result.Stats.Files())
}

func TestStatsHandler_Handle_InvalidPattern(t *testing.T) {
	handler := NewStatsHandler(nil)

	_, err := handler.Handle(context.Background(), t.TempDir(), StatsOptions{Pattern: "[-okh.yml"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestStatsHandler_Handle_DownloadsMissingDirectory(t *testing.T) {
	downloader := &fakeDownloader{files: map[string]string{"x-okh.yml": "title: X\n"}}
	handler := NewStatsHandler(downloader)
	dir := filepath.Join(t.TempDir(), "manifests")

	result, err := handler.Handle(context.Background(), dir, StatsOptions{})

	require.NoError(t, err)
	assert.Equal(t, 1, downloader.calls)
	require.NotNil(t, result.Download)
	assert.Equal(t, 1, result.Download.Succeeded)
	assert.Equal(t, 1, result.Stats.Count("title"))
}

func TestStatsHandler_Handle_ExistingDirectorySkipsDownload(t *testing.T) {
	downloader := &fakeDownloader{}
	handler := NewStatsHandler(downloader)
	dir := writeManifests(t, map[string]string{"a-okh.yml": "title: A\n"})

	_, err := handler.Handle(context.Background(), dir, StatsOptions{})
	require.NoError(t, err)
	assert.Zero(t, downloader.calls)

	_, err = handler.Handle(context.Background(), dir, StatsOptions{Download: true})
	require.NoError(t, err)
	assert.Equal(t, 1, downloader.calls)
}

func TestStatsHandler_Handle_DownloadError(t *testing.T) {
	handler := NewStatsHandler(&fakeDownloader{err: errors.New("index unavailable")})

	_, err := handler.Handle(context.Background(), filepath.Join(t.TempDir(), "none"), StatsOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "downloading manifests")
}
