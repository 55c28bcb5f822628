package render

import "image/color"

// Extent returns the local axis-aligned size (x, y, z) of the geometry before node scale.
func (g *Geometry) Extent() [3]float32 {
	if g == nil {
		return [3]float32{}
	}
	switch g.Shape {
	case ShapeBox:
		return g.Size
	case ShapePlane:
		return [3]float32{g.Size[0], 0, g.Size[2]}
	case ShapeSphere:
		d := 2 * g.Radius
		return [3]float32{d, d, d}
	case ShapeCylinder, ShapeCone:
		r := max(g.Radius, g.RadiusTop)
		return [3]float32{2 * r, g.Height, 2 * r}
	case ShapeTorus:
		d := 2 * (g.Radius + g.Tube)
		return [3]float32{d, d, 2 * g.Tube}
	case ShapeMesh:
		return [3]float32{g.Max[0] - g.Min[0], g.Max[1] - g.Min[1], g.Max[2] - g.Min[2]}
	}
	return [3]float32{}
}

// BoundingSize returns the geometry extent multiplied by the node's own scale.
// Groups report zero.
func (n *Node) BoundingSize() [3]float32 {
	if !n.IsMesh() {
		return [3]float32{}
	}
	e := n.Geometry.Extent()
	return [3]float32{e[0] * n.Scale[0], e[1] * n.Scale[1], e[2] * n.Scale[2]}
}

// groundColor is the dark, slightly reflective platform under every scene.
var groundColor = color.RGBA{R: 0x0a, G: 0x0a, B: 0x0a, A: 0xff}

// GroundSize is the side length of the ground plane in world units.
const GroundSize = 20

// GroundName is the node name of the ground plane.
const GroundName = "ground"

// Ground returns the fixed ground plane: 20×20 on XZ, just below Y=0, receiving shadows only.
func Ground() *Node {
	n := NewMesh(GroundName, Geometry{Shape: ShapePlane, Size: [3]float32{GroundSize, 0, GroundSize}}, Material{
		Color:     groundColor,
		Metalness: 0.8,
		Roughness: 0.2,
		Opacity:   0.8,
		Fixed:     true,
	})
	n.Position = [3]float32{0, -0.1, 0}
	n.ReceiveShadow = true
	return n
}
