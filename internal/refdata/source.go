package refdata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Source fetches a raw dataset document by its relative path.
type Source interface {
	Fetch(ctx context.Context, name string) (io.ReadCloser, error)
}

// ErrDatasetNotFound is returned by sources when a dataset document does not exist.
var ErrDatasetNotFound = errors.New("DATASET_NOT_FOUND")

// FileSource reads dataset documents from a directory on disk.
type FileSource struct {
	root string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{root: dir}
}

// Fetch opens root/name.
func (s *FileSource) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean("/" + name)
	f, err := os.Open(filepath.Join(s.root, clean))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// HTTPSource fetches dataset documents from a static file server.
type HTTPSource struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPSource creates an HTTPSource for baseURL.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Fetch performs GET baseURL/name. Any status other than 200 is an error.
func (s *HTTPSource) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	url := s.baseURL + "/" + strings.TrimPrefix(name, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		log.Warn().Str("url", url).Int("status", resp.StatusCode).Msg("Reference dataset fetch failed")
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s: %w", name, ErrDatasetNotFound)
		}
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, name)
	}
	return resp.Body, nil
}
