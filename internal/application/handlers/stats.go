package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/osegermany/ont2wb/internal/domain/services"
	"github.com/osegermany/ont2wb/internal/infrastructure/okh"
	"github.com/osegermany/ont2wb/internal/infrastructure/parsers"
)

// DefaultManifestPattern matches OKH manifests written by the downloader.
const DefaultManifestPattern = "*" + okh.ManifestSuffix

// ManifestDownloader fetches manifests into a directory.
type ManifestDownloader interface {
	DownloadAll(ctx context.Context, dir string) (*okh.Stats, error)
}

// StatsHandler handles tallying key usage across OKH manifests.
type StatsHandler struct {
	loader     *parsers.YAMLLoader
	downloader ManifestDownloader // optional
}

// NewStatsHandler creates a new stats handler. downloader may be nil.
func NewStatsHandler(downloader ManifestDownloader) *StatsHandler {
	return &StatsHandler{
		loader:     &parsers.YAMLLoader{},
		downloader: downloader,
	}
}

// StatsOptions controls which files are read.
type StatsOptions struct {
	Pattern  string // doublestar pattern relative to the directory
	Download bool   // Fetch manifests first, even if the directory exists
}

// StatsResult contains the tally and what was read.
type StatsResult struct {
	Stats    *services.KeyStats
	Files    []string
	Skipped  []string   // Files that failed to parse
	Download *okh.Stats // Set when manifests were downloaded
}

// Handle tallies the keys of every manifest in dir matching the pattern.
func (h *StatsHandler) Handle(ctx context.Context, dir string, opts StatsOptions) (*StatsResult, error) {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultManifestPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern: %s", pattern)
	}

	result := &StatsResult{Stats: services.NewKeyStats()}

	if h.downloader != nil && (opts.Download || !dirExists(dir)) {
		dl, err := h.downloader.DownloadAll(ctx, dir)
		if err != nil {
			return nil, fmt.Errorf("downloading manifests: %w", err)
		}
		slog.Info("Downloaded manifests", "entries", dl.Entries, "succeeded", dl.Succeeded)
		result.Download = dl
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("matching files: %w", err)
	}

	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, filepath.FromSlash(match))
		doc, err := h.load(path)
		if err != nil {
			slog.Warn("Skipping manifest", "file", path, "error", err)
			result.Skipped = append(result.Skipped, path)
			continue
		}

		result.Stats.AddDocument(doc)
		result.Files = append(result.Files, path)
	}

	return result, nil
}

func (h *StatsHandler) load(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return h.loader.Load(f)
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil && info.IsDir()
}
