package asset

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"scene-engine/internal/render"
)

// Request describes one asset instance: which asset, what tint and which parts to hide.
type Request struct {
	Ref    string
	Color  color.RGBA
	Hidden map[string]bool
}

// Instance is an independently owned copy of a loaded asset.
type Instance struct {
	Root  *render.Node
	Parts []Part
}

// FetchTimeout bounds one shared fetch. It is independent of the callers' contexts.
const FetchTimeout = 30 * time.Second

// Cache maps asset references to their resolved base graphs. Entries are added once and
// never replaced; failed loads are not stored, so a later Load tries again. At most one
// fetch per reference is in flight at any time.
type Cache struct {
	fetcher Fetcher
	decode  Decoder
	log     *slog.Logger

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]*render.Node
}

// NewCache returns a Cache that fetches through f and parses with decode (DecodeGLTF when nil).
func NewCache(f Fetcher, decode Decoder, log *slog.Logger) *Cache {
	if decode == nil {
		decode = DecodeGLTF
	}
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		fetcher: f,
		decode:  decode,
		log:     log,
		entries: make(map[string]*render.Node),
	}
}

// Peek returns the cached base graph for ref without loading it.
// The returned graph must not be modified; Instantiate clones it.
func (c *Cache) Peek(ref string) (*render.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.entries[ref]
	return n, ok
}

// Len returns the number of cached references.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Load returns the base graph for ref, fetching and parsing it on first use. Concurrent
// callers for the same ref share one fetch; a caller whose ctx ends stops waiting but
// leaves the fetch running for the others. Errors are *AssetLoadError.
func (c *Cache) Load(ctx context.Context, ref string) (*render.Node, error) {
	if n, ok := c.Peek(ref); ok {
		return n, nil
	}
	ch := c.group.DoChan(ref, func() (any, error) {
		if n, ok := c.Peek(ref); ok {
			return n, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FetchTimeout)
		defer cancel()
		n, err := c.fetch(fctx, ref)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[ref] = n
		c.mu.Unlock()
		c.log.Info("asset loaded", "ref", ref, "parts", len(n.Meshes()))
		return n, nil
	})
	select {
	case <-ctx.Done():
		return nil, loadError(ref, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			c.log.Warn("asset load failed", "ref", ref, "shared", res.Shared, "err", res.Err)
			return nil, loadError(ref, res.Err)
		}
		return res.Val.(*render.Node), nil
	}
}

func (c *Cache) fetch(ctx context.Context, ref string) (*render.Node, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	rc, err := c.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	n, err := c.decode(ref, rc)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("decoder returned no graph")
	}
	NameParts(n)
	return n, nil
}

// Instantiate loads req.Ref if needed and returns a fresh clone tinted with req.Color
// with the parts named in req.Hidden made invisible.
func (c *Cache) Instantiate(ctx context.Context, req Request) (Instance, error) {
	base, err := c.Load(ctx, req.Ref)
	if err != nil {
		return Instance{}, err
	}
	return NewInstance(base, req.Color, req.Hidden), nil
}

// NewInstance clones base and applies color and hidden to the clone. base is left untouched.
func NewInstance(base *render.Node, c color.RGBA, hidden map[string]bool) Instance {
	root := base.Clone()
	Apply(root, c, hidden)
	return Instance{Root: root, Parts: Introspect(root)}
}
