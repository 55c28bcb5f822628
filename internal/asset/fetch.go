package asset

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/hack-pad/hackpadfs"
)

// Fetcher resolves an asset reference to its raw bytes.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, ref string) (io.ReadCloser, error)

func (f FetcherFunc) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	return f(ctx, ref)
}

// FSFetcher reads assets from a hackpadfs filesystem. References are slash-separated
// paths relative to the filesystem root; a leading "/" or "./" is ignored.
type FSFetcher struct {
	FS hackpadfs.FS
}

// Fetch opens ref on the filesystem.
func (f FSFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := path.Clean(strings.TrimPrefix(strings.TrimPrefix(ref, "./"), "/"))
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("fetch: invalid path %q", ref)
	}
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return file, nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; rv:109.0) Gecko/20100101 Firefox/115.0"

// DefaultHTTPTimeout bounds a single remote asset request.
const DefaultHTTPTimeout = 60 * time.Second

// HTTPFetcher downloads http(s) references.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher returns an HTTPFetcher whose requests time out after timeout
// (DefaultHTTPTimeout when zero).
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}, UserAgent: defaultUserAgent}
}

// Fetch issues a GET for ref and returns the body when the status is 200.
func (h *HTTPFetcher) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	ua := h.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// Router sends http(s) references to Remote and everything else to Local.
// Either side may be nil, in which case those references fail.
type Router struct {
	Local  Fetcher
	Remote Fetcher
}

// IsRemote reports whether ref is an http or https URL.
func IsRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func (r Router) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	target := r.Local
	if IsRemote(ref) {
		target = r.Remote
	}
	if target == nil {
		return nil, fmt.Errorf("fetch: no fetcher for %q", ref)
	}
	return target.Fetch(ctx, ref)
}
