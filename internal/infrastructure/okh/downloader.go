// Package okh fetches Open Know-How manifests listed in the OKH project index.
package okh

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ManifestSuffix is appended to the project name to form the manifest file name.
const ManifestSuffix = "-okh.yml"

// ListFile is the name the project index is stored under.
const ListFile = "projects.csv"

var (
	reNonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Stats summarizes a download.
type Stats struct {
	Entries   int
	Succeeded int
	// Hosts counts manifests per scheme://host.
	Hosts map[string]int
	// Failures counts HTTP status codes per scheme://host.
	Failures map[string]map[int]int
}

// Downloader fetches the project index and every manifest it lists.
type Downloader struct {
	listURL string
	http    *http.Client
}

// NewDownloader creates a new Downloader.
func NewDownloader(listURL string, timeout time.Duration) *Downloader {
	return &Downloader{
		listURL: listURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// DownloadAll stores the index and all manifests in dir. A manifest that cannot
// be fetched is logged and counted; only a failure to get the index is an error.
func (d *Downloader) DownloadAll(ctx context.Context, dir string) (*Stats, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	listPath := filepath.Join(dir, ListFile)
	if err := d.download(ctx, d.listURL, listPath); err != nil {
		return nil, fmt.Errorf("downloading project list: %w", err)
	}

	f, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("opening project list: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	stats := &Stats{
		Hosts:    make(map[string]int),
		Failures: make(map[string]map[int]int),
	}

	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		return nil, fmt.Errorf("reading project list: %w", err)
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading project list: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Entries++

		if len(row) < 3 {
			slog.Warn("Skipping malformed project row", "row", stats.Entries)
			continue
		}

		manifestURL := strings.TrimSpace(row[2])
		host := hostOf(manifestURL)
		stats.Hosts[host]++

		target := filepath.Join(dir, Urlify(row[0])+ManifestSuffix)
		if err := d.download(ctx, manifestURL, target); err != nil {
			slog.Warn("Failed to download manifest", "url", manifestURL, "file", target, "error", err)
			var status *StatusError
			if errors.As(err, &status) {
				if stats.Failures[host] == nil {
					stats.Failures[host] = make(map[int]int)
				}
				stats.Failures[host][status.Code]++
			}
			continue
		}
		stats.Succeeded++
	}

	return stats, nil
}

// StatusError is a non-200 answer to a download.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

func (d *Downloader) download(ctx context.Context, rawURL, path string) error {
	slog.Info("Downloading", "url", rawURL, "file", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: rawURL, Code: resp.StatusCode, Status: resp.Status}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

// Urlify turns a project name into a file name: punctuation is removed and
// whitespace runs become a single dash.
func Urlify(name string) string {
	name = reNonWord.ReplaceAllString(name, "")
	return reWhitespace.ReplaceAllString(name, "-")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
