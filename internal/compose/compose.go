// Package compose turns scene snapshots into render graphs, one frame at a time.
package compose

import (
	"context"
	"errors"
	"image/color"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"scene-engine/internal/asset"
	"scene-engine/internal/render"
	"scene-engine/internal/scene"
	"scene-engine/internal/synth"
)

// RootName is the name of the frame's root group.
const RootName = "scene"

// Source says where an object's graph came from this frame.
type Source int

const (
	SourceSynth    Source = iota // procedural assembly
	SourceAsset                  // loaded asset instance
	SourcePending                // asset still loading
	SourceFallback               // asset failed, fallback shown
)

var sourceNames = [...]string{"synth", "asset", "pending", "fallback"}

func (s Source) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return "unknown"
	}
	return sourceNames[s]
}

// Placed is one object's wrapper node in a frame. The wrapper is named after the object
// id and carries its position; the assembly hangs below it.
type Placed struct {
	ID        string
	Node      *render.Node
	Source    Source
	Archetype synth.Archetype
}

// Frame is the output of one composition.
type Frame struct {
	Root     *render.Node
	Objects  []Placed
	Parts    map[string][]asset.Part
	Errors   []error
	Warnings []synth.InvalidDescriptorWarning
	Visuals  int
}

// Object returns the placed entry for id.
func (f *Frame) Object(id string) (Placed, bool) {
	for _, p := range f.Objects {
		if p.ID == id {
			return p, true
		}
	}
	return Placed{}, false
}

// Fallback builds the stand-in drawn for an asset-backed object whose asset is loading
// or failed. A nil Fallback draws nothing.
type Fallback func(obj scene.Object) *render.Node

// CubeFallback draws the object as the default cube in its own color and scale.
func CubeFallback(s *synth.Synthesizer) Fallback {
	return func(obj scene.Object) *render.Node {
		return s.Build(synth.Cube, obj.Size(), obj.Tint())
	}
}

type Options struct {
	Fallback Fallback
	Log      *slog.Logger
	// LoadTimeout bounds one asset load; zero means no limit beyond the compose context.
	LoadTimeout time.Duration
}

type loadResult struct {
	ref string
	err error
}

// memoKey identifies everything an object's assembly depends on.
type memoKey struct {
	ref    string
	typ    string
	model  string
	scale  float32
	color  color.RGBA
	hidden string
}

type memo struct {
	key   memoKey
	root  *render.Node
	parts []asset.Part
	arch  synth.Archetype
	warn  *synth.InvalidDescriptorWarning
}

// Composer builds frames from scenes. Compose is meant to be called from a single
// goroutine (the frame loop); asset loads run in the background and their outcomes are
// picked up at the start of the next Compose.
type Composer struct {
	synth    *synth.Synthesizer
	cache    *asset.Cache
	fallback Fallback
	log      *slog.Logger
	timeout  time.Duration

	pending map[string]bool
	failed  map[string]error
	lastRef map[string]string
	memos   map[string]*memo

	mu       sync.Mutex
	done     []loadResult
	retry    []string
	retryAll bool
	wg       sync.WaitGroup
}

func New(s *synth.Synthesizer, cache *asset.Cache, opts Options) *Composer {
	if s == nil {
		s = synth.New(nil)
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Composer{
		synth:    s,
		cache:    cache,
		fallback: opts.Fallback,
		log:      log,
		timeout:  opts.LoadTimeout,
		pending:  make(map[string]bool),
		failed:   make(map[string]error),
		lastRef:  make(map[string]string),
		memos:    make(map[string]*memo),
	}
}

// Compose builds the frame for sc. It never fails: unknown descriptors become cubes and
// broken assets are reported in Frame.Errors while the rest of the scene is drawn.
func (c *Composer) Compose(ctx context.Context, sc scene.Scene) *Frame {
	c.drain()

	f := &Frame{
		Root:  render.NewGroup(RootName),
		Parts: make(map[string][]asset.Part),
	}
	seen := make(map[string]bool, len(sc.Objects))
	for _, obj := range sc.Objects {
		seen[obj.ID] = true
		p := c.place(ctx, obj, f)
		f.Objects = append(f.Objects, p)
		f.Root.Add(p.Node)
	}
	for id := range c.memos {
		if !seen[id] {
			delete(c.memos, id)
		}
	}
	for id := range c.lastRef {
		if !seen[id] {
			delete(c.lastRef, id)
		}
	}
	f.Root.Add(render.Ground())
	return f
}

func (c *Composer) place(ctx context.Context, obj scene.Object, f *Frame) Placed {
	wrapper := render.NewGroup(obj.ID)
	wrapper.Position = obj.Pos()
	p := Placed{ID: obj.ID, Node: wrapper}

	key := keyFor(obj)
	if !obj.HasAsset() {
		m := c.memos[obj.ID]
		if m == nil || m.key != key {
			a := c.synth.Synthesize(obj)
			m = &memo{key: key, root: a.Root, arch: a.Archetype, warn: a.Warning}
			c.memos[obj.ID] = m
			if a.Warning != nil {
				c.log.Debug("invalid descriptor", "id", obj.ID, "warning", a.Warning.String())
			}
		}
		if m.warn != nil {
			f.Warnings = append(f.Warnings, *m.warn)
		}
		wrapper.Add(m.root)
		p.Source, p.Archetype = SourceSynth, m.arch
		return p
	}

	ref := obj.AssetRef
	if prev, ok := c.lastRef[obj.ID]; ok && prev != ref {
		delete(c.failed, ref)
	}
	c.lastRef[obj.ID] = ref

	wrapper.Scale = [3]float32{obj.Size(), obj.Size(), obj.Size()}
	if m := c.memos[obj.ID]; m != nil && m.key == key {
		wrapper.Add(m.root)
		f.Parts[obj.ID] = m.parts
		p.Source = SourceAsset
		return p
	}
	if c.cache != nil {
		if base, ok := c.cache.Peek(ref); ok {
			inst := asset.NewInstance(base, obj.Tint(), obj.Hidden())
			c.memos[obj.ID] = &memo{key: key, root: inst.Root, parts: inst.Parts}
			wrapper.Add(inst.Root)
			f.Parts[obj.ID] = inst.Parts
			p.Source = SourceAsset
			return p
		}
	}

	if err, ok := c.failed[ref]; ok {
		f.Errors = append(f.Errors, err)
		p.Source = SourceFallback
	} else {
		c.start(ctx, ref)
		p.Source = SourcePending
	}
	if c.fallback != nil {
		// The fallback is drawn inside the scaled wrapper, so build it at unit scale.
		stand := obj
		stand.Scale = nil
		if fb := c.fallback(stand); fb != nil {
			wrapper.Add(fb)
		}
	}
	return p
}

func (c *Composer) start(ctx context.Context, ref string) {
	if c.pending[ref] {
		return
	}
	if c.cache == nil {
		c.failed[ref] = &asset.AssetLoadError{Reference: ref, Cause: errors.New("no asset cache configured")}
		return
	}
	c.pending[ref] = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		lctx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		_, err := c.cache.Load(lctx, ref)
		c.mu.Lock()
		c.done = append(c.done, loadResult{ref: ref, err: err})
		c.mu.Unlock()
	}()
}

func (c *Composer) drain() {
	c.mu.Lock()
	done, retry, all := c.done, c.retry, c.retryAll
	c.done, c.retry, c.retryAll = nil, nil, false
	c.mu.Unlock()
	if all {
		clear(c.failed)
	}
	for _, r := range retry {
		delete(c.failed, r)
	}
	for _, r := range done {
		delete(c.pending, r.ref)
		switch {
		case r.err == nil:
			delete(c.failed, r.ref)
		case errors.Is(r.err, context.Canceled):
			// abandoned with the frame loop; the next Compose starts over
		default:
			c.failed[r.ref] = r.err
		}
	}
}

// Retry forgets recorded failures for refs (all of them when none are given) so the next
// Compose loads them again. Safe to call from any goroutine.
func (c *Composer) Retry(refs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(refs) == 0 {
		c.retryAll = true
		return
	}
	c.retry = append(c.retry, refs...)
}

// Pending returns the number of asset loads in flight as of the last Compose.
func (c *Composer) Pending() int {
	return len(c.pending)
}

// Failure returns the load error recorded for ref, or nil.
func (c *Composer) Failure(ref string) error {
	return c.failed[ref]
}

// Wait blocks until every background load started so far has finished.
func (c *Composer) Wait() {
	c.wg.Wait()
}

func keyFor(obj scene.Object) memoKey {
	hidden := slices.Clone(obj.HiddenParts)
	slices.Sort(hidden)
	hidden = slices.Compact(hidden)
	k := memoKey{ref: obj.AssetRef, color: obj.Tint(), hidden: strings.Join(hidden, "\x00")}
	if obj.AssetRef == "" {
		k.typ, k.model, k.scale = obj.Type, obj.Model, obj.Size()
	}
	return k
}
