package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/osmaddr/extractor/internal/common"
)

// ErrNoSource means no download URL is configured for the country.
var ErrNoSource = errors.New("no download source configured")

// minArtifactBytes rejects truncated downloads; a real extract is never
// this small.
const minArtifactBytes = 1000

// Fetcher downloads country extracts into a local cache directory.
// Artifacts are cached by country code and reused across runs; a file is
// only deleted when a download for it fails partway.
type Fetcher struct {
	workDir     string
	client      *http.Client
	maxAttempts int
	logger      *slog.Logger

	// URLResolver maps a country to its candidate URLs. Defaults to the
	// static Geofabrik table.
	URLResolver func(code, countryName string) []string
}

func NewFetcher(workDir string, timeout time.Duration, maxAttempts int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Fetcher{
		workDir:     workDir,
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		logger:      logger,
		URLResolver: URLsFor,
	}
}

// ArtifactPath returns the cache location for a country's extract.
func (f *Fetcher) ArtifactPath(code string) string {
	return filepath.Join(f.workDir, fmt.Sprintf("%s-latest.osm.pbf", strings.ToLower(code)))
}

// Discard evicts a country's cached artifact so the next attempt downloads
// a fresh copy. Callers use this when the file downloaded whole but turned
// out to be undecodable.
func (f *Fetcher) Discard(code string) {
	path := f.ArtifactPath(code)
	f.logger.Warn("source.cache.evict", "country", code, "path", path)
	f.removeArtifact(path)
}

// EnsurePresent returns the local path of the country's extract, downloading
// it if absent. Candidate URLs are tried in order with a bounded number of
// attempts overall. Returns ErrNoSource when no URL is configured.
func (f *Fetcher) EnsurePresent(ctx context.Context, code, countryName string) (string, error) {
	if err := os.MkdirAll(f.workDir, 0o755); err != nil {
		return "", common.WrapError(err, "create work dir")
	}

	path := f.ArtifactPath(code)
	if fi, err := os.Stat(path); err == nil && fi.Size() >= minArtifactBytes {
		f.logger.Info("source.cache.hit", "country", code, "path", path, "size_bytes", fi.Size())
		return path, nil
	}

	resolve := f.URLResolver
	if resolve == nil {
		resolve = URLsFor
	}
	urls := resolve(code, countryName)
	if len(urls) == 0 {
		return "", ErrNoSource
	}

	var lastErr error
	attempts := 0
	for _, url := range urls {
		if attempts >= f.maxAttempts {
			break
		}
		attempts++
		if err := f.downloadTo(ctx, url, path); err != nil {
			lastErr = err
			f.logger.Warn("source.download.failed", "country", code, "url", url, "error", err)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		fi, err := os.Stat(path)
		if err == nil && fi.Size() >= minArtifactBytes {
			f.logger.Info("source.download.complete", "country", code, "url", url, "size_bytes", fi.Size())
			return path, nil
		}
		lastErr = fmt.Errorf("downloaded file too small: %s", path)
		f.removeArtifact(path)
	}

	return "", common.WrapError(lastErr, fmt.Sprintf("download %s", code))
}

func (f *Fetcher) downloadTo(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return common.WrapError(err, "build request")
	}

	start := time.Now()
	f.logger.Info("source.download.request", "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			f.logger.Warn("source.download.close_error", "url", url, "error", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	tmp := path + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return common.WrapError(err, "create artifact file")
	}

	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		f.removeArtifact(tmp)
		return common.WrapError(err, "write artifact")
	}
	if err := os.Rename(tmp, path); err != nil {
		f.removeArtifact(tmp)
		return common.WrapError(err, "finalize artifact")
	}

	f.logger.Info("source.download.response",
		"url", url,
		"bytes", n,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (f *Fetcher) removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		f.logger.Warn("source.artifact.remove_failed", "path", path, "error", err)
	}
}
