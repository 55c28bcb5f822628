package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-engine/internal/scene"
)

func TestSceneDefaultCube(t *testing.T) {
	s := Scene("something indescribable")
	require.Len(t, s.Objects, 1)
	o := s.Objects[0]
	assert.Equal(t, "cube", o.Type)
	assert.Equal(t, scene.DefaultPosition, o.Pos())
	assert.Equal(t, scene.DefaultColor, o.Color)
	assert.Equal(t, scene.Lighting{Type: "ambient", Intensity: 1}, s.Lighting)
	assert.Equal(t, "default", s.Environment)
}

func TestSceneShapesColorsSizes(t *testing.T) {
	s := Scene("A big red ball and a cone on the left, in a dark forest")
	require.Len(t, s.Objects, 2)

	ball, cone := s.Objects[0], s.Objects[1]
	assert.Equal(t, "sphere", ball.Type)
	assert.Equal(t, "cone", cone.Type)
	for _, o := range s.Objects {
		assert.Equal(t, "#ff0000", o.Color)
		assert.Equal(t, float32(2), o.Size())
	}
	assert.Equal(t, [3]float32{-2, 1, 0}, ball.Pos())
	assert.Equal(t, [3]float32{-4, 1, 0}, cone.Pos())
	assert.Equal(t, float32(0.5), s.Lighting.Intensity)
	assert.Equal(t, "forest", s.Environment)
}

func TestSceneArchetypes(t *testing.T) {
	cases := map[string]string{
		"build me an Iron Man suit": "suit",
		"two robots":                "robot",
		"a jet above the clouds":    "airplane",
		"a blue vehicle":            "car",
	}
	for in, want := range cases {
		s := Scene(in)
		require.NotEmpty(t, s.Objects, in)
		assert.Equal(t, want, s.Objects[0].Type, in)
	}
	assert.Equal(t, float32(3), Scene("a jet above the clouds").Objects[0].Pos()[1])
}

func TestScenePlacement(t *testing.T) {
	assert.Equal(t, [3]float32{0, 0.5, 2}, Scene("a cube in front, on the floor").Objects[0].Pos())
	assert.Equal(t, [3]float32{0, 1, -2}, Scene("a tube behind").Objects[0].Pos())

	s := Scene("a box next to a ball")
	require.Len(t, s.Objects, 2)
	assert.Equal(t, float32(0), s.Objects[0].Pos()[0])
	assert.Equal(t, float32(2), s.Objects[1].Pos()[0])
}

func TestSceneLightingEnvironment(t *testing.T) {
	assert.Equal(t, float32(1.5), Scene("a sunny day").Lighting.Intensity)
	assert.Equal(t, "sunset", Scene("cube in the evening").Environment)
	assert.Equal(t, "night", Scene("cube at night").Environment)
}

func TestWholeWordsOnly(t *testing.T) {
	s := Scene("a tired orb")
	require.Len(t, s.Objects, 1)
	assert.Equal(t, scene.DefaultColor, s.Objects[0].Color)
}

func TestFromImage(t *testing.T) {
	o := FromImage("photo.png")
	assert.Equal(t, "sphere", o.Type)
	assert.Equal(t, [3]float32{2, 1, 0}, o.Pos())
	assert.Equal(t, "#ff00ff", o.Color)
	require.NotNil(t, o.Source)
	assert.Equal(t, ImageOrigin, o.Source.Origin)
	assert.Equal(t, "photo.png", o.Source.FileName)
}
