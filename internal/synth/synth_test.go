package synth

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/internal/render"
	"scene-engine/internal/scene"
)

var red = color.RGBA{R: 255, A: 255}

func TestBuildersCoverEveryArchetype(t *testing.T) {
	s := New(nil)
	for _, a := range Archetypes() {
		require.NotNil(t, builders[a], a.String())
		root := s.Build(a, 1, red)
		assert.NotEmpty(t, root.Meshes(), a.String())
		assert.Equal(t, a.String(), root.Name)
	}
	assert.Len(t, Archetypes(), int(archetypeCount))
	assert.Equal(t, "Archetype(99)", Archetype(99).String())
}

func TestResolve(t *testing.T) {
	cases := []struct {
		typ, model string
		want       Archetype
		warn       bool
	}{
		{"cube", "", Cube, false},
		{"Sphere", "", Sphere, false},
		{"cylinder", "", Cylinder, false},
		{"cone", "", Cone, false},
		{"vehicle", "", Car, false},
		{"Iron Man", "", Suit, false},
		{"iron_man", "", Suit, false},
		{"droid", "", Robot, false},
		{"jet", "", Airplane, false},
		{"custom", "aircraft", Airplane, false},
		{"cube", "robot", Robot, false},
		{"custom", "", Cube, false},
		{"", "", Cube, false},
		{"spaceship", "", Cube, true},
		{"spaceship", "teapot", Cube, true},
	}
	for _, tc := range cases {
		t.Run(tc.typ+"/"+tc.model, func(t *testing.T) {
			got, warn := Resolve(scene.Object{ID: "x", Type: tc.typ, Model: tc.model})
			assert.Equal(t, tc.want, got)
			if tc.warn {
				require.NotNil(t, warn)
				assert.Equal(t, tc.typ, warn.Type)
				assert.Contains(t, warn.String(), "x")
			} else {
				assert.Nil(t, warn)
			}
		})
	}
}

func TestSynthesizePrimitiveSizing(t *testing.T) {
	s := New(nil)

	sphere := s.Synthesize(scene.Object{ID: "s", Type: "sphere", Scale: scene.Ptr[float32](2)})
	meshes := sphere.Root.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, render.ShapeSphere, meshes[0].Geometry.Shape)
	assert.Equal(t, float32(2), meshes[0].Geometry.Radius)

	cube := s.Synthesize(scene.Object{ID: "o1", Type: "cube", Scale: scene.Ptr[float32](2), Color: "#ff0000"})
	meshes = cube.Root.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, [3]float32{2, 2, 2}, meshes[0].Geometry.Size)
	assert.Equal(t, red, meshes[0].Materials[0].Color)

	cyl := s.Synthesize(scene.Object{ID: "c", Type: "cylinder", Scale: scene.Ptr[float32](1.5)})
	g := cyl.Root.Meshes()[0].Geometry
	assert.Equal(t, float32(1.5), g.Radius)
	assert.Equal(t, float32(3), g.Height)

	cone := s.Synthesize(scene.Object{ID: "k", Type: "cone", Scale: scene.Ptr[float32](0.5)})
	g = cone.Root.Meshes()[0].Geometry
	assert.Equal(t, float32(0.5), g.Radius)
	assert.Equal(t, float32(1), g.Height)
}

func TestSynthesizeDefaults(t *testing.T) {
	a := New(nil).Synthesize(scene.Object{ID: "d", Type: "cube"})
	m := a.Root.Meshes()[0]
	assert.Equal(t, [3]float32{1, 1, 1}, m.Geometry.Size)
	assert.Equal(t, color.RGBA{G: 255, B: 255, A: 255}, m.Materials[0].Color)
}

func TestRobotAssembly(t *testing.T) {
	a := New(nil).Synthesize(scene.Object{ID: "o2", Type: "robot", Scale: scene.Ptr[float32](1), Color: "#ff0000"})
	assert.Equal(t, Robot, a.Archetype)
	assert.Nil(t, a.Warning)

	meshes := a.Root.Meshes()
	require.Len(t, meshes, 8)
	var names []string
	for _, m := range meshes {
		names = append(names, m.Name)
		assert.True(t, m.CastShadow, m.Name)
		assert.True(t, m.ReceiveShadow, m.Name)
		if m.Materials[0].Fixed {
			assert.NotEqual(t, red, m.Materials[0].Color, m.Name)
			assert.Positive(t, m.Materials[0].EmissiveIntensity, m.Name)
		} else {
			assert.Equal(t, red, m.Materials[0].Color, m.Name)
		}
	}
	assert.Equal(t, []string{"head", "eye_left", "eye_right", "body", "arm_left", "arm_right", "leg_left", "leg_right"}, names)
	assert.True(t, a.Root.Find("eye_left").Materials[0].Fixed)
	assert.False(t, a.Root.Find("head").Materials[0].Fixed)
}

func TestCompositePartCounts(t *testing.T) {
	cases := map[Archetype]int{Car: 8, Suit: 9, Robot: 8, Airplane: 8}
	for a, n := range cases {
		assert.Len(t, PartNames(a), n, a.String())
	}
	assert.Contains(t, PartNames(Suit), "arc_reactor")
	assert.Contains(t, PartNames(Airplane), "tail_fin")
}

func TestCompositeScalesLinearly(t *testing.T) {
	s := New(nil)
	one := s.Build(Car, 1, red)
	two := s.Build(Car, 2, red)
	for _, name := range []string{"body", "cabin", "wheel_front_left", "headlight_right"} {
		a, b := one.Find(name), two.Find(name)
		require.NotNil(t, a, name)
		ea, eb := a.BoundingSize(), b.BoundingSize()
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 2*ea[i], eb[i], 1e-5, name)
			assert.InDelta(t, 2*a.Position[i], b.Position[i], 1e-5, name)
		}
	}
}

func TestCarWheelsIgnoreColor(t *testing.T) {
	root := New(nil).Build(Car, 1, red)
	wheel := root.Find("wheel_rear_left")
	require.NotNil(t, wheel)
	assert.True(t, wheel.Materials[0].Fixed)
	assert.Equal(t, tyreBlack, wheel.Materials[0].Color)
	root.Tint(color.RGBA{B: 255, A: 255})
	assert.Equal(t, tyreBlack, wheel.Materials[0].Color)
}

func TestUnknownTypeFallsBackIdempotently(t *testing.T) {
	s := New(nil)
	obj := scene.Object{ID: "u", Type: "spaceship", Scale: scene.Ptr[float32](3)}
	first := s.Synthesize(obj)
	second := s.Synthesize(obj)

	assert.Equal(t, Cube, first.Archetype)
	require.NotNil(t, first.Warning)
	assert.Equal(t, first.Root, second.Root)
	assert.NotSame(t, first.Root, second.Root)
	assert.Equal(t, [3]float32{3, 3, 3}, first.Root.Meshes()[0].Geometry.Size)
}
