// Package synth builds procedural render graphs for scene objects that have no asset.
package synth

import (
	"image/color"

	"scene-engine/internal/primitives"
	"scene-engine/internal/render"
	"scene-engine/internal/scene"
)

// Assembly is the result of synthesizing one object.
type Assembly struct {
	Archetype Archetype
	Root      *render.Node
	Warning   *InvalidDescriptorWarning
}

type builder func(s *Synthesizer, scale float32, c color.RGBA) *render.Node

func primitive(typ string) builder {
	return func(s *Synthesizer, scale float32, c color.RGBA) *render.Node {
		return render.NewGroup(typ, s.prims.Build(typ, scale, c))
	}
}

func composite(name string, layout []part) builder {
	return func(_ *Synthesizer, scale float32, c color.RGBA) *render.Node {
		return buildLayout(name, layout, scale, c)
	}
}

// builders is indexed by Archetype; every archetype has exactly one entry.
var builders = [archetypeCount]builder{
	Cube:     primitive(primitives.Cube),
	Sphere:   primitive(primitives.Sphere),
	Cylinder: primitive(primitives.Cylinder),
	Cone:     primitive(primitives.Cone),
	Car:      composite("car", carLayout),
	Suit:     composite("suit", suitLayout),
	Robot:    composite("robot", robotLayout),
	Airplane: composite("airplane", airplaneLayout),
}

// Synthesizer maps descriptors to assemblies. It holds no per-call state and is safe
// for concurrent use.
type Synthesizer struct {
	prims *primitives.Registry
}

// New returns a Synthesizer using the given primitive registry (the embedded catalog
// when nil).
func New(prims *primitives.Registry) *Synthesizer {
	if prims == nil {
		prims = primitives.NewRegistry()
	}
	return &Synthesizer{prims: prims}
}

// Synthesize builds the assembly for obj. Every part casts and receives shadows.
// The same descriptor always yields a structurally identical graph.
func (s *Synthesizer) Synthesize(obj scene.Object) Assembly {
	a, warn := Resolve(obj)
	return Assembly{Archetype: a, Root: s.Build(a, obj.Size(), obj.Tint()), Warning: warn}
}

// Build builds archetype a directly.
func (s *Synthesizer) Build(a Archetype, scale float32, c color.RGBA) *render.Node {
	if a < 0 || a >= archetypeCount {
		a = Cube
	}
	root := builders[a](s, scale, c)
	root.SetShadows(true, true)
	return root
}

// PartNames lists the part names archetype a produces, in build order.
func PartNames(a Archetype) []string {
	s := New(nil)
	var names []string
	for _, m := range s.Build(a, 1, color.RGBA{}).Meshes() {
		names = append(names, m.Name)
	}
	return names
}
