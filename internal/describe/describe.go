// Package describe turns a short English description into a scene without a language
// model: keyword tables for shapes, colors, sizes, placement, lighting and environment.
// It is the agent's offline fallback.
package describe

import (
	"strings"

	"scene-engine/internal/scene"
)

type keywords struct {
	name  string
	words []string
}

// Order matters: the first matching entry wins.
var shapes = []keywords{
	{"robot", []string{"robot", "droid"}},
	{"car", []string{"car", "vehicle"}},
	{"airplane", []string{"airplane", "aeroplane", "aircraft", "jet", "plane"}},
	{"suit", []string{"iron man", "ironman", "armor", "suit"}},
	{"cube", []string{"cube", "box", "square"}},
	{"sphere", []string{"sphere", "ball", "orb", "globe"}},
	{"cylinder", []string{"cylinder", "tube", "pipe"}},
	{"cone", []string{"cone", "pyramid"}},
}

var colors = []keywords{
	{"#ff0000", []string{"red"}},
	{"#0000ff", []string{"blue"}},
	{"#00ff00", []string{"green"}},
	{"#ffff00", []string{"yellow"}},
	{"#ff8800", []string{"orange"}},
	{"#8800ff", []string{"purple"}},
	{"#ff00ff", []string{"pink", "magenta"}},
	{"#ffffff", []string{"white"}},
	{"#000000", []string{"black"}},
	{"#00ffff", []string{"cyan"}},
}

var sizes = []struct {
	word  string
	scale float32
}{
	{"small", 0.5},
	{"tiny", 0.3},
	{"large", 2},
	{"big", 2},
	{"huge", 3},
	{"medium", 1},
}

// text is a lowercased description with helpers for word and phrase lookups.
type text struct {
	raw   string
	words map[string]bool
}

func newText(s string) text {
	s = strings.ToLower(s)
	t := text{raw: " " + strings.Join(strings.FieldsFunc(s, notWordRune), " ") + " ", words: make(map[string]bool)}
	for _, w := range strings.Fields(t.raw) {
		t.words[w] = true
		t.words[strings.TrimSuffix(w, "s")] = true
	}
	return t
}

func notWordRune(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
}

// has reports whether the phrase occurs as whole words.
func (t text) has(phrase string) bool {
	if !strings.Contains(phrase, " ") {
		return t.words[phrase]
	}
	return strings.Contains(t.raw, " "+phrase+" ")
}

func (t text) any(phrases ...string) bool {
	for _, p := range phrases {
		if t.has(p) {
			return true
		}
	}
	return false
}

func (t text) first(table []keywords) (string, bool) {
	for _, k := range table {
		if t.any(k.words...) {
			return k.name, true
		}
	}
	return "", false
}

// Scene builds a scene from a description. Every shape mentioned becomes one object in
// the order of the shape table; all of them share the description's color and size.
// With no shape mentioned, the scene holds one default cube.
func Scene(description string) scene.Scene {
	t := newText(description)
	var objs []scene.Object
	for _, k := range shapes {
		if !t.any(k.words...) {
			continue
		}
		objs = append(objs, object(t, k.name, len(objs)))
	}
	if len(objs) == 0 {
		objs = append(objs, scene.Object{
			Type:     "cube",
			Position: scene.Ptr(scene.DefaultPosition),
			Color:    scene.DefaultColor,
			Scale:    scene.Ptr(scene.DefaultScale),
		})
	}
	return scene.Scene{
		Objects:     objs,
		Lighting:    lighting(t),
		Environment: environment(t),
	}
}

func object(t text, typ string, index int) scene.Object {
	obj := scene.Object{Type: typ, Color: scene.DefaultColor, Scale: scene.Ptr(scene.DefaultScale)}
	if c, ok := t.first(colors); ok {
		obj.Color = c
	}
	for _, s := range sizes {
		if t.has(s.word) {
			obj.Scale = scene.Ptr(s.scale)
			break
		}
	}
	p := position(t, index)
	obj.Position = &p
	return obj
}

// position places the index-th object from placement words: left/right spread along X,
// behind/front along Z, next to/beside lines objects up, above/top lifts, ground/floor lowers.
func position(t text, index int) [3]float32 {
	x, y, z := float32(0), float32(1), float32(0)
	step := 2 * float32(index+1)
	switch {
	case t.has("left"):
		x = -step
	case t.has("right"):
		x = step
	}
	switch {
	case t.any("next to", "beside"):
		x, z = 2*float32(index), 0
	case t.has("behind"):
		z = -step
	case t.has("front"):
		z = step
	}
	switch {
	case t.any("above", "top"):
		y = 3
	case t.any("ground", "floor"):
		y = 0.5
	}
	return [3]float32{x, y, z}
}

func lighting(t text) scene.Lighting {
	l := scene.Lighting{Type: "ambient", Intensity: 1}
	switch {
	case t.has("dark"):
		l.Intensity = 0.5
	case t.any("bright", "sunny"):
		l.Intensity = 1.5
	}
	return l
}

func environment(t text) string {
	switch {
	case t.has("forest"):
		return "forest"
	case t.any("sunset", "evening"):
		return "sunset"
	case t.has("night"):
		return "night"
	}
	return "default"
}

// ImageOrigin is the source origin recorded for objects created from an uploaded image.
const ImageOrigin = "image_upload"

// FromImage returns the placeholder object for an uploaded image: a magenta sphere to the
// right of the origin, tagged with the file name.
func FromImage(fileName string) scene.Object {
	return scene.Object{
		Type:     "sphere",
		Position: &[3]float32{2, 1, 0},
		Color:    "#ff00ff",
		Scale:    scene.Ptr(float32(1)),
		Source:   &scene.SourceMetadata{Origin: ImageOrigin, FileName: fileName},
	}
}
