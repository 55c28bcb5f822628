package compose

import (
	"context"
	"errors"
	"image/color"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/internal/asset"
	"scene-engine/internal/render"
	"scene-engine/internal/scene"
	"scene-engine/internal/sim"
	"scene-engine/internal/synth"
)

const boxGLTF = `{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0, 1]}],
  "nodes": [{"name": "shell", "mesh": 0}, {"mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "accessors": [{"componentType": 5126, "count": 3, "type": "VEC3", "min": [-1, 0, -1], "max": [1, 1, 1]}]
}`

func sceneOf(objs ...scene.Object) scene.Scene {
	return scene.Scene{Objects: objs}
}

func names(f *Frame) []string {
	var out []string
	for _, c := range f.Root.Children {
		out = append(out, c.Name)
	}
	return out
}

func TestComposeScenario(t *testing.T) {
	c := New(nil, nil, Options{})
	ctx := context.Background()
	o1 := scene.Object{ID: "o1", Type: "cube", Scale: scene.Ptr[float32](2), Color: "#ff0000"}
	o2 := scene.Object{ID: "o2", Type: "robot", Scale: scene.Ptr[float32](1)}

	f := c.Compose(ctx, sceneOf(o1, o2))
	assert.Equal(t, []string{"o1", "o2", render.GroundName}, names(f))

	p1, ok := f.Object("o1")
	require.True(t, ok)
	assert.Equal(t, SourceSynth, p1.Source)
	assert.Equal(t, synth.Cube, p1.Archetype)
	assert.Equal(t, [3]float32{0, 1, 0}, p1.Node.Position)
	cube := p1.Node.Meshes()
	require.Len(t, cube, 1)
	assert.Equal(t, [3]float32{2, 2, 2}, cube[0].Geometry.Size)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, cube[0].Materials[0].Color)

	p2, _ := f.Object("o2")
	assert.Equal(t, synth.Robot, p2.Archetype)
	assert.Len(t, p2.Node.Meshes(), 8)

	f = c.Compose(ctx, sceneOf(o2))
	assert.Equal(t, []string{"o2", render.GroundName}, names(f))
	ground := f.Root.Find(render.GroundName)
	require.NotNil(t, ground)
	assert.Equal(t, float32(-0.1), ground.Position[1])
	assert.Empty(t, f.Errors)
}

func TestComposeWarnsOnUnknownType(t *testing.T) {
	c := New(nil, nil, Options{})
	f := c.Compose(context.Background(), sceneOf(scene.Object{ID: "u", Type: "spaceship"}))
	require.Len(t, f.Warnings, 1)
	assert.Equal(t, "u", f.Warnings[0].ID)
	p, _ := f.Object("u")
	assert.Equal(t, synth.Cube, p.Archetype)
	assert.Len(t, p.Node.Meshes(), 1)
}

func TestComposeMemoizesAssemblies(t *testing.T) {
	c := New(nil, nil, Options{})
	ctx := context.Background()
	obj := scene.Object{ID: "r", Type: "robot"}

	first, _ := c.Compose(ctx, sceneOf(obj)).Object("r")
	second, _ := c.Compose(ctx, sceneOf(obj)).Object("r")
	assert.Same(t, first.Node.Children[0], second.Node.Children[0])

	obj.Color = "#ff0000"
	third, _ := c.Compose(ctx, sceneOf(obj)).Object("r")
	assert.NotSame(t, first.Node.Children[0], third.Node.Children[0])
}

func TestComposeLoadsAssetsAsynchronously(t *testing.T) {
	var calls atomic.Int32
	f := asset.FetcherFunc(func(ctx context.Context, ref string) (io.ReadCloser, error) {
		calls.Add(1)
		return io.NopCloser(strings.NewReader(boxGLTF)), nil
	})
	s := synth.New(nil)
	c := New(s, asset.NewCache(f, nil, nil), Options{Fallback: CubeFallback(s)})
	ctx := context.Background()

	a := scene.Object{ID: "a", AssetRef: "box.gltf", Scale: scene.Ptr[float32](3), Color: "#ff0000"}
	b := scene.Object{ID: "b", AssetRef: "box.gltf", Color: "#0000ff", HiddenParts: []string{"shell", "nope"}}

	frame := c.Compose(ctx, sceneOf(a, b))
	pa, _ := frame.Object("a")
	assert.Equal(t, SourcePending, pa.Source)
	require.Len(t, pa.Node.Meshes(), 1)
	assert.Equal(t, [3]float32{1, 1, 1}, pa.Node.Meshes()[0].Geometry.Size)
	assert.Equal(t, [3]float32{3, 3, 3}, pa.Node.Scale)
	assert.Equal(t, 1, c.Pending())

	c.Wait()
	frame = c.Compose(ctx, sceneOf(a, b))
	assert.Equal(t, 0, c.Pending())
	assert.Equal(t, int32(1), calls.Load())

	pa, _ = frame.Object("a")
	pb, _ := frame.Object("b")
	assert.Equal(t, SourceAsset, pa.Source)
	assert.Equal(t, SourceAsset, pb.Source)

	partsA, partsB := frame.Parts["a"], frame.Parts["b"]
	require.Len(t, partsA, 2)
	assert.Equal(t, "shell", partsA[0].Name)
	assert.Equal(t, "Part_1", partsA[1].Name)
	assert.True(t, partsA[0].Visible)
	assert.False(t, partsB[0].Visible)
	assert.True(t, partsB[1].Visible)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, pa.Node.Find("shell").Materials[0].Color)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, pb.Node.Find("shell").Materials[0].Color)
	assert.Empty(t, frame.Errors)
}

func TestComposeReportsFailedLoads(t *testing.T) {
	var calls atomic.Int32
	f := asset.FetcherFunc(func(ctx context.Context, ref string) (io.ReadCloser, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("unreachable")
		}
		return io.NopCloser(strings.NewReader(boxGLTF)), nil
	})
	s := synth.New(nil)
	c := New(s, asset.NewCache(f, nil, nil), Options{Fallback: CubeFallback(s)})
	ctx := context.Background()
	objs := sceneOf(
		scene.Object{ID: "bad", AssetRef: "missing.glb"},
		scene.Object{ID: "fine", Type: "sphere"},
	)

	c.Compose(ctx, objs)
	c.Wait()
	frame := c.Compose(ctx, objs)

	require.Len(t, frame.Errors, 1)
	var loadErr *asset.AssetLoadError
	require.ErrorAs(t, frame.Errors[0], &loadErr)
	assert.Equal(t, "missing.glb", loadErr.Reference)
	bad, _ := frame.Object("bad")
	assert.Equal(t, SourceFallback, bad.Source)
	assert.Len(t, bad.Node.Meshes(), 1)
	fine, _ := frame.Object("fine")
	assert.Equal(t, SourceSynth, fine.Source)

	// still failed: no automatic retry
	frame = c.Compose(ctx, objs)
	c.Wait()
	assert.Len(t, frame.Errors, 1)
	assert.Equal(t, int32(1), calls.Load())
	assert.Error(t, c.Failure("missing.glb"))

	c.Retry()
	frame = c.Compose(ctx, objs)
	assert.Empty(t, frame.Errors)
	c.Wait()
	frame = c.Compose(ctx, objs)
	bad, _ = frame.Object("bad")
	assert.Equal(t, SourceAsset, bad.Source)
	assert.Equal(t, int32(2), calls.Load())
}

func TestComposeRetriesWhenReferenceChanges(t *testing.T) {
	var calls atomic.Int32
	f := asset.FetcherFunc(func(ctx context.Context, ref string) (io.ReadCloser, error) {
		calls.Add(1)
		return nil, errors.New("nope")
	})
	c := New(nil, asset.NewCache(f, nil, nil), Options{})
	ctx := context.Background()

	obj := scene.Object{ID: "x", AssetRef: "a.glb"}
	c.Compose(ctx, sceneOf(obj))
	c.Wait()
	frame := c.Compose(ctx, sceneOf(obj))
	require.Len(t, frame.Errors, 1)
	p, _ := frame.Object("x")
	assert.Empty(t, p.Node.Children)

	obj.AssetRef = "b.glb"
	c.Compose(ctx, sceneOf(obj))
	c.Wait()
	obj.AssetRef = "a.glb"
	c.Compose(ctx, sceneOf(obj))
	c.Wait()
	assert.Equal(t, int32(3), calls.Load())
}

func TestComposeWithoutCacheFails(t *testing.T) {
	c := New(nil, nil, Options{})
	frame := c.Compose(context.Background(), sceneOf(scene.Object{ID: "x", AssetRef: "a.glb"}))
	assert.Empty(t, frame.Errors)
	frame = c.Compose(context.Background(), sceneOf(scene.Object{ID: "x", AssetRef: "a.glb"}))
	require.Len(t, frame.Errors, 1)
}

func TestStageAppliesEffects(t *testing.T) {
	st := NewStage(New(nil, nil, Options{}), sim.NewEngine(nil))
	ctx := context.Background()
	now := time.Unix(0, 0)
	sc := sceneOf(
		scene.Object{ID: "suit", Type: "iron man"},
		scene.Object{ID: "spin", Type: "cone"},
		scene.Object{ID: "idle", Type: "cube"},
	)
	sc.Simulations = map[string]scene.Effect{
		"suit": {Type: scene.EffectArcReactorBlast, Active: true},
		"spin": {Type: scene.EffectRotate, Active: true},
	}

	st.Step(ctx, sc, now)
	frame := st.Step(ctx, sc, now.Add(time.Second/60))
	assert.Equal(t, 2, frame.Visuals)

	suit, _ := frame.Object("suit")
	assert.NotNil(t, suit.Node.Find(sim.OverlayName))
	spin, _ := frame.Object("spin")
	assert.InDelta(t, sim.RotateYaw(1, 1), spin.Node.Rotation[1], 1e-6)
	idle, _ := frame.Object("idle")
	assert.Equal(t, [3]float32{}, idle.Node.Rotation)

	delete(sc.Simulations, "suit")
	sc.Objects = sc.Objects[1:]
	frame = st.Step(ctx, sc, now.Add(time.Second/30))
	assert.Nil(t, frame.Root.Find(sim.OverlayName))
	assert.Equal(t, 1, st.Engine.Len())
}

func TestStageDropsEffectsOfRemovedObjects(t *testing.T) {
	st := NewStage(New(nil, nil, Options{}), sim.NewEngine(nil))
	ctx := context.Background()
	now := time.Unix(0, 0)
	base := &[3]float32{0, 1, 0}
	effects := map[string]scene.Effect{"h": {Type: scene.EffectHover, Active: true}}

	sc := sceneOf(scene.Object{ID: "h", Type: "cube", Position: base})
	sc.Simulations = effects
	st.Step(ctx, sc, now)
	st.Step(ctx, sc, now.Add(100*time.Millisecond))
	require.Equal(t, 1, st.Engine.Len())

	gone := sceneOf(scene.Object{ID: "other", Type: "cube"})
	gone.Simulations = effects
	frame := st.Step(ctx, gone, now.Add(200*time.Millisecond))
	assert.Equal(t, 0, frame.Visuals)
	assert.Equal(t, 0, st.Engine.Len())

	frame = st.Step(ctx, sc, now.Add(300*time.Millisecond))
	h, ok := frame.Object("h")
	require.True(t, ok)
	assert.InDelta(t, 1, h.Node.Position[1], 1e-6)
	s, ok := st.Engine.State("h")
	require.True(t, ok)
	assert.Equal(t, now.Add(300*time.Millisecond), s.Start)
}

func TestSummarizeFrame(t *testing.T) {
	f := asset.FetcherFunc(func(ctx context.Context, ref string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(boxGLTF)), nil
	})
	c := New(nil, asset.NewCache(f, nil, nil), Options{})
	ctx := context.Background()
	sc := sceneOf(
		scene.Object{ID: "r", Type: "robot", Position: &[3]float32{1, 2, 3}},
		scene.Object{ID: "x", Type: "blimp"},
		scene.Object{ID: "a", AssetRef: "box.gltf"},
	)
	c.Compose(ctx, sc)
	c.Wait()
	rep := Summarize(c.Compose(ctx, sc), c.Pending())

	require.Len(t, rep.Objects, 3)
	assert.Equal(t, ObjectReport{ID: "r", Source: "synth", Archetype: "robot", Position: [3]float32{1, 2, 3}, Nodes: 10}, rep.Objects[0])
	assert.Equal(t, "cube", rep.Objects[1].Archetype)
	assert.Equal(t, "asset", rep.Objects[2].Source)
	assert.Len(t, rep.Objects[2].Parts, 2)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], `"x"`)

	var b strings.Builder
	require.NoError(t, rep.WriteYAML(&b))
	assert.Contains(t, b.String(), "source: asset")
	assert.Contains(t, b.String(), "name: Part_1")
}
