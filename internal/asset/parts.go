package asset

import (
	"fmt"
	"image/color"

	"scene-engine/internal/render"
)

// Part describes one mesh-bearing node of an asset instance, for building UI toggles.
type Part struct {
	Name          string     `json:"name" yaml:"name"`
	BoundingSize  [3]float32 `json:"boundingSize" yaml:"boundingSize,flow"`
	LocalPosition [3]float32 `json:"localPosition" yaml:"localPosition,flow"`
	Visible       bool       `json:"visible" yaml:"visible"`
}

// PartName returns the synthesized name for the index-th unnamed mesh node.
func PartName(index int) string {
	return fmt.Sprintf("Part_%d", index)
}

// NameParts gives every unnamed mesh node under root the name Part_<index>, where index
// counts mesh-bearing nodes in insertion order (named ones included). The same structure
// always yields the same names.
func NameParts(root *render.Node) {
	for i, m := range root.Meshes() {
		if m.Name == "" {
			m.Name = PartName(i)
		}
	}
}

// Introspect returns one Part per mesh-bearing node under root in insertion order.
func Introspect(root *render.Node) []Part {
	meshes := root.Meshes()
	parts := make([]Part, 0, len(meshes))
	for i, m := range meshes {
		name := m.Name
		if name == "" {
			name = PartName(i)
		}
		parts = append(parts, Part{
			Name:          name,
			BoundingSize:  m.BoundingSize(),
			LocalPosition: m.Position,
			Visible:       m.Visible,
		})
	}
	return parts
}

// Apply tints every material slot of every mesh under root with c and sets each mesh's
// visibility from hidden. Names in hidden that match no mesh are ignored. root must be an
// instance the caller owns (see render.Node.Clone).
func Apply(root *render.Node, c color.RGBA, hidden map[string]bool) {
	for _, m := range root.Meshes() {
		for i := range m.Materials {
			m.Materials[i].Color = c
		}
		m.Visible = !hidden[m.Name]
	}
}
