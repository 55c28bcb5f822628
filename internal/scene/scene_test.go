package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{R: 255, A: 255}},
		{"00ff00", color.RGBA{G: 255, A: 255}},
		{"#0f0", color.RGBA{G: 255, A: 255}},
		{"#00000080", color.RGBA{A: 0x80}},
		{"Red", color.RGBA{R: 255, A: 255}},
		{"teal", color.RGBA{G: 0x80, B: 0x80, A: 255}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	for _, bad := range []string{"", "#12", "#gggggg", "notacolor"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, "#ff0000", FormatColor(color.RGBA{R: 255, A: 255}))
	assert.Equal(t, "#00000080", FormatColor(color.RGBA{A: 0x80}))
}

func TestObjectDefaults(t *testing.T) {
	var o Object
	assert.Equal(t, [3]float32{0, 1, 0}, o.Pos())
	assert.Equal(t, float32(1), o.Size())
	assert.Equal(t, color.RGBA{G: 255, B: 255, A: 255}, o.Tint())

	o.Color = "bogus"
	assert.Equal(t, color.RGBA{G: 255, B: 255, A: 255}, o.Tint())

	o.Scale = Ptr(float32(0))
	assert.Equal(t, float32(0), o.Size())
}

func TestDecodeEnvelopeAndBare(t *testing.T) {
	wrapped := `{"sceneData":{"objects":[{"id":"a","type":"cube","scale":2,"color":"#ff0000"}],"lighting":{"type":"ambient","intensity":1},"environment":"sunset"}}`
	s, err := Decode(strings.NewReader(wrapped), FormatJSON)
	require.NoError(t, err)
	require.Len(t, s.Objects, 1)
	assert.Equal(t, float32(2), s.Objects[0].Size())
	assert.Equal(t, "sunset", s.Environment)

	bare := "objects:\n  - id: b\n    type: robot\n    position: [1, 2, 3]\n    hiddenParts: [head]\nsimulations:\n  b: {type: hover, active: true, speed: 2}\n"
	s, err = Decode(strings.NewReader(bare), FormatYAML)
	require.NoError(t, err)
	require.Len(t, s.Objects, 1)
	assert.Equal(t, [3]float32{1, 2, 3}, s.Objects[0].Pos())
	assert.Equal(t, []string{"head"}, s.Objects[0].HiddenParts)
	assert.Equal(t, Effect{Type: EffectHover, Active: true, Speed: 2}, s.Simulations["b"])

	_, err = Decode(strings.NewReader("{"), FormatJSON)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := Scene{
		Objects:     []Object{{ID: "o1", Type: "cube", Scale: Ptr(float32(2))}},
		Simulations: map[string]Effect{"o1": {Type: EffectRotate, Active: true}},
	}
	for _, name := range []string{"scene.json", "nested/scene.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, s))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, s.Objects[0].ID, got.Objects[0].ID)
		assert.Equal(t, float32(2), got.Objects[0].Size())
		assert.Equal(t, s.Simulations, got.Simulations)
	}
}

func TestEncodeJSONShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, Scene{Objects: []Object{{ID: "x", AssetRef: "car.glb"}}}, FormatJSON))
	assert.Contains(t, buf.String(), `"assetReference": "car.glb"`)
}

func newTestEditor() *Editor {
	e := NewEditor(Scene{})
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	return e
}

func TestEditorAddRemove(t *testing.T) {
	e := newTestEditor()
	id, err := e.Add(Object{Type: "cube"})
	require.NoError(t, err)
	assert.Equal(t, "gen-1", id)

	_, err = e.Add(Object{ID: "o2", Type: "robot"})
	require.NoError(t, err)
	_, err = e.Add(Object{ID: "o2"})
	assert.True(t, errors.Is(err, ErrDuplicateID))

	require.NoError(t, e.SetEffect("o2", Effect{Type: EffectHover, Active: true}))
	require.NoError(t, e.Remove("o2"))
	snap := e.Snapshot()
	require.Len(t, snap.Objects, 1)
	assert.Empty(t, snap.Simulations)

	assert.True(t, errors.Is(e.Remove("o2"), ErrObjectNotFound))
}

func TestEditorMutations(t *testing.T) {
	e := newTestEditor()
	_, err := e.Add(Object{ID: "o1", Type: "cube"})
	require.NoError(t, err)

	require.NoError(t, e.SetScale("o1", 3))
	assert.True(t, errors.Is(e.SetScale("o1", -1), ErrInvalidScale))

	require.NoError(t, e.SetPosition("o1", 0, 5))
	assert.True(t, errors.Is(e.SetPosition("o1", 3, 5), ErrInvalidAxis))

	require.NoError(t, e.SetHiddenParts("o1", []string{"a", "a", "", "b"}))
	require.NoError(t, e.SetColor("o1", "red"))

	o, err := e.Object("o1")
	require.NoError(t, err)
	assert.Equal(t, float32(3), o.Size())
	assert.Equal(t, [3]float32{5, 1, 0}, o.Pos())
	assert.Equal(t, []string{"a", "b"}, o.HiddenParts)
	assert.Equal(t, "red", o.Color)

	assert.True(t, errors.Is(e.SetEffect("o1", Effect{Type: "explode"}), ErrInvalidEffect))
	assert.True(t, errors.Is(e.SetEffect("nope", Effect{Type: EffectHover}), ErrObjectNotFound))
	require.NoError(t, e.ClearEffect("o1"))
}

func TestSnapshotIsIsolated(t *testing.T) {
	e := newTestEditor()
	_, _ = e.Add(Object{ID: "o1", Type: "cube", HiddenParts: []string{"x"}})
	require.NoError(t, e.SetEffect("o1", Effect{Type: EffectRotate, Active: true}))

	snap := e.Snapshot()
	snap.Objects[0].HiddenParts[0] = "changed"
	snap.Simulations["o1"] = Effect{Type: EffectHover}
	snap.Objects = append(snap.Objects, Object{ID: "extra"})

	again := e.Snapshot()
	assert.Equal(t, []string{"x"}, again.Objects[0].HiddenParts)
	assert.Equal(t, EffectRotate, again.Simulations["o1"].Type)
	assert.Len(t, again.Objects, 1)
}

func TestEditorObjectCopiesAreIsolated(t *testing.T) {
	e := newTestEditor()
	in := Object{ID: "o1", Type: "cube", Position: &[3]float32{1, 2, 3}, HiddenParts: []string{"x"}}
	_, err := e.Add(in)
	require.NoError(t, err)
	in.Position[0] = 9
	in.HiddenParts[0] = "changed"

	o, err := e.Object("o1")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, 2, 3}, o.Pos())
	assert.Equal(t, []string{"x"}, o.HiddenParts)

	o.Position[1] = 7
	o.HiddenParts = append(o.HiddenParts, "y")
	again, err := e.Object("o1")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, 2, 3}, again.Pos())
	assert.Equal(t, []string{"x"}, again.HiddenParts)
}

func TestEditorReplaceAndMerge(t *testing.T) {
	e := newTestEditor()
	v := e.Version()
	e.Replace(Scene{Objects: []Object{{Type: "cube"}, {ID: "keep", Type: "sphere"}}})
	assert.Greater(t, e.Version(), v)
	snap := e.Snapshot()
	require.Len(t, snap.Objects, 2)
	assert.Equal(t, "gen-1", snap.Objects[0].ID)

	added := e.Merge([]Object{{ID: "keep"}, {Type: "cone"}})
	assert.Equal(t, []string{"gen-2"}, added)
}

func TestParseAxis(t *testing.T) {
	for in, want := range map[string]int{"x": 0, "Y": 1, "2": 2} {
		got, err := ParseAxis(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseAxis("w")
	assert.ErrorIs(t, err, ErrInvalidAxis)
}
