package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahrav/go-scout/internal/store"
)

// DefaultTimeout bounds a remote dataset download.
const DefaultTimeout = 30 * time.Second

// Opener reads datasets from local files or http(s) URLs.
type Opener struct {
	// Client performs remote fetches. Nil uses a client with DefaultTimeout.
	Client *http.Client

	// MaxRetries is how many times a remote fetch is repeated after a
	// network error, a 429 or a 5xx response. Zero disables retries.
	MaxRetries int

	// BaseDelay and MaxDelay bound the exponential backoff between
	// attempts. Zero values use DefaultBaseDelay and DefaultMaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

var defaultOpener = &Opener{MaxRetries: DefaultMaxRetries}

// Open reads the record collection at source, a file path or an http(s)
// URL. The format follows the path's extension; for URLs without a known
// extension the response Content-Type decides.
func Open(ctx context.Context, source string) ([]map[string]any, error) {
	return defaultOpener.Open(ctx, source)
}

// LoadStore opens source and builds a Store from its records.
func LoadStore(ctx context.Context, source string) (*store.Store, error) {
	return defaultOpener.LoadStore(ctx, source)
}

// LoadStore opens source and builds a Store from its records.
func (o *Opener) LoadStore(ctx context.Context, source string) (*store.Store, error) {
	records, err := o.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	return store.Load(records)
}

// Open reads the record collection at source.
func (o *Opener) Open(ctx context.Context, source string) ([]map[string]any, error) {
	if source == "" {
		return nil, errors.New("dataset source cannot be empty")
	}
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return o.withRetry(ctx, func() ([]map[string]any, error) { return o.fetch(ctx, u) })
	}
	return openFile(source)
}

func openFile(path string) ([]map[string]any, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}
	return records, nil
}

func (o *Opener) fetch(ctx context.Context, u *url.URL) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/msgpack")

	client := o.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &fetchError{fmt.Errorf("failed to fetch dataset %s: %w", u.Redacted(), err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, &StatusError{URL: u.Redacted(), StatusCode: resp.StatusCode, Status: resp.Status}
	}

	format, err := FormatFromPath(u.Path)
	if err != nil {
		format, err = formatFromContentType(resp.Header.Get("Content-Type"))
		if err != nil {
			return nil, err
		}
	}

	records, err := Decode(resp.Body, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", u.Redacted(), err)
	}
	return records, nil
}

func formatFromContentType(contentType string) (Format, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
	}
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return FormatJSON, nil
	case mediaType == "application/msgpack", mediaType == "application/x-msgpack":
		return FormatMsgpack, nil
	case mediaType == "application/x-lz4":
		return FormatMsgpackLZ4, nil
	default:
		return "", fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
	}
}
