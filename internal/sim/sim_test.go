package sim

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/internal/render"
	"scene-engine/internal/scene"
)

const frame = time.Second / 60

func TestArcReactorPeriodicity(t *testing.T) {
	period := 2 * math32.Pi / 8
	at0 := ArcReactorAt(0, 1, 0)
	atP := ArcReactorAt(period, 1, 0)
	assert.InDelta(t, at0.CoreMultiplier, atP.CoreMultiplier, 1e-5)
	assert.InDelta(t, 1, at0.CoreMultiplier, 1e-6)
	assert.InDelta(t, 5, at0.Emissive, 1e-6)
	assert.InDelta(t, 5, at0.BeamLength, 1e-6)
	assert.InDelta(t, 0.6, at0.BeamOpacity, 1e-6)
	assert.InDelta(t, 2, at0.BeamIntensity, 1e-6)

	big := ArcReactorAt(0.3, 2, 0)
	assert.InDelta(t, 2*big.CoreMultiplier, big.CoreRadius, 1e-6)
}

func TestArcReactorParticles(t *testing.T) {
	r := ArcReactorAt(0, 1, 10)
	assert.InDelta(t, 0.2, r.RingRotation[0], 1e-6)
	assert.InDelta(t, 0.1, r.RingRotation[1], 1e-6)
	for i, p := range r.Particles {
		wave := math32.Sin(float32(i))
		radius := 1.5 + 0.3*wave
		got := math32.Hypot(p.Position[0], p.Position[2])
		assert.InDelta(t, radius, got, 1e-5, "particle %d", i)
		assert.InDelta(t, 0.3*wave, p.Position[1], 1e-6)
		assert.InDelta(t, 0.5+0.3*math32.Sin(float32(i)), p.Scale, 1e-6)
	}
	// particle 0 sits on +X at t=0
	assert.InDelta(t, 1.5, r.Particles[0].Position[0], 1e-6)
	assert.InDelta(t, 0, r.Particles[0].Position[2], 1e-6)
}

func TestHoverAndRotate(t *testing.T) {
	assert.Equal(t, float32(0), HoverOffset(0, 1))
	for _, tt := range []float32{0.1, 1, 7.3, 1000} {
		assert.LessOrEqual(t, math32.Abs(HoverOffset(tt, 2)), float32(HoverAmplitude))
	}
	assert.InDelta(t, 0.5, RotateYaw(100, 0.5), 1e-6)
}

func TestEngineRotateAccumulates(t *testing.T) {
	e := NewEngine(nil)
	start := time.Unix(100, 0)
	effects := map[string]scene.Effect{"a": {Type: scene.EffectRotate, Active: true, Speed: 2}}

	var v Visual
	for i := 0; i < 50; i++ {
		v = e.Tick(start.Add(time.Duration(i)*frame), effects)["a"]
	}
	assert.Equal(t, uint64(49), v.Frames)
	assert.InDelta(t, RotateYaw(49, 2), v.Yaw, 1e-5)

	n := render.NewGroup("a")
	v.Apply(n)
	assert.InDelta(t, RotateYaw(49, 2), n.Rotation[1], 1e-5)
}

func TestEngineHoverResetsOnReactivation(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(0, 0)
	on := map[string]scene.Effect{"h": {Type: scene.EffectHover, Active: true}}
	off := map[string]scene.Effect{"h": {Type: scene.EffectHover, Active: false}}

	for i := 0; i < 100; i++ {
		now = now.Add(frame)
		e.Tick(now, on)
	}
	now = now.Add(frame)
	vis := e.Tick(now, off)
	assert.NotContains(t, vis, "h")
	st, ok := e.State("h")
	require.True(t, ok)
	assert.False(t, st.Active)

	now = now.Add(5 * time.Second)
	v := e.Tick(now, on)["h"]
	assert.Equal(t, float32(0), v.Offset[1])
	assert.Equal(t, float32(0), v.Elapsed)
	assert.Equal(t, uint64(0), v.Frames)

	n := render.NewGroup("h")
	n.Position = [3]float32{0, 1, 0}
	later := e.Tick(now.Add(250*time.Millisecond), on)["h"]
	later.Apply(n)
	assert.InDelta(t, 1+HoverOffset(0.25, 1), n.Position[1], 1e-5)
}

func TestEngineTypeChangeResetsPhase(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(0, 0)
	e.Tick(now, map[string]scene.Effect{"x": {Type: scene.EffectRotate, Active: true}})
	e.Tick(now.Add(frame), map[string]scene.Effect{"x": {Type: scene.EffectRotate, Active: true}})

	v := e.Tick(now.Add(time.Second), map[string]scene.Effect{"x": {Type: scene.EffectArcReactorBlast, Active: true}})["x"]
	assert.Equal(t, float32(0), v.Elapsed)
	require.NotNil(t, v.Reactor)
	assert.InDelta(t, 1, v.Reactor.CoreMultiplier, 1e-6)

	overlay := v.Overlay()
	require.NotNil(t, overlay)
	assert.Equal(t, OverlayName, overlay.Name)
	assert.Len(t, overlay.Find("particles").Children, ParticleCount)
	for _, m := range overlay.Meshes() {
		assert.True(t, m.Materials[0].Fixed, m.Name)
	}
}

func TestArcReactorCoreRadius(t *testing.T) {
	r := ArcReactorAt(0, 2, 0)
	core := ArcReactorNode(r).Find("core")
	require.NotNil(t, core)
	require.NotNil(t, core.Geometry)
	assert.InDelta(t, 2, core.Geometry.Radius, 1e-6)
	assert.InDelta(t, r.CoreRadius, core.Geometry.Radius, 1e-6)

	later := ArcReactorAt(0.1, 2, 6)
	assert.InDelta(t, 2*(1+0.4*math32.Sin(0.8)), ArcReactorNode(later).Find("core").Geometry.Radius, 1e-5)
}

func TestEngineObjectsAreIndependent(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(0, 0)
	e.Tick(now, map[string]scene.Effect{"a": {Type: scene.EffectRotate, Active: true}})
	now = now.Add(frame)
	vis := e.Tick(now, map[string]scene.Effect{
		"a": {Type: scene.EffectRotate, Active: true},
		"b": {Type: scene.EffectRotate, Active: true},
	})
	assert.InDelta(t, RotateYaw(1, 1), vis["a"].Yaw, 1e-6)
	assert.Equal(t, float32(0), vis["b"].Yaw)
	assert.Equal(t, 2, e.Running())
}

func TestEngineDiscardsRemovedEffects(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(0, 0)
	e.Tick(now, map[string]scene.Effect{"a": {Type: scene.EffectHover, Active: true}})
	require.Equal(t, 1, e.Len())

	vis := e.Tick(now.Add(frame), nil)
	assert.Empty(t, vis)
	assert.Equal(t, 0, e.Len())
	_, ok := e.State("a")
	assert.False(t, ok)
}

func TestHaltedRotateKeepsYaw(t *testing.T) {
	e := NewEngine(nil)
	now := time.Unix(0, 0)
	on := map[string]scene.Effect{"r": {Type: scene.EffectRotate, Active: true}}
	for i := 0; i < 10; i++ {
		e.Tick(now.Add(time.Duration(i)*frame), on)
	}
	v := e.Tick(now.Add(time.Second), map[string]scene.Effect{"r": {Type: scene.EffectRotate}})["r"]
	assert.True(t, v.Halted)
	assert.InDelta(t, RotateYaw(9, 1), v.Yaw, 1e-5)
	assert.Nil(t, v.Overlay())

	st, ok := e.State("r")
	require.True(t, ok)
	assert.InDelta(t, RotateYaw(9, 1), st.Yaw, 1e-5)
}
