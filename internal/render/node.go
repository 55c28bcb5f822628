package render

import (
	"image/color"
	"log/slog"

	"github.com/jinzhu/copier"
)

// Shape identifies the geometry a mesh node draws. ShapeMesh is used for loaded
// asset meshes whose vertex data stays with the asset; only their bounds are kept.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeSphere
	ShapeCylinder
	ShapeCone
	ShapePlane
	ShapeTorus
	ShapeMesh
)

var shapeNames = [...]string{"box", "sphere", "cylinder", "cone", "plane", "torus", "mesh"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return "unknown"
	}
	return shapeNames[s]
}

// Geometry describes one drawable shape in the node's local space.
// Box uses Size (w,h,d); Plane uses Size[0] and Size[2].
// Sphere uses Radius. Cylinder and Cone use Radius (bottom), RadiusTop and Height; a cone has RadiusTop 0.
// Torus uses Radius (ring) and Tube. Mesh uses Min/Max as its local bounds.
type Geometry struct {
	Shape     Shape
	Size      [3]float32
	Radius    float32
	RadiusTop float32
	Height    float32
	Tube      float32
	Segments  int
	Min       [3]float32
	Max       [3]float32
}

// Material holds the surface parameters of one material slot.
// Fixed marks a semantic color (wheels, emissive accents) that ignores object tinting.
type Material struct {
	Color             color.RGBA
	Emissive          color.RGBA
	EmissiveIntensity float32
	Metalness         float32
	Roughness         float32
	Opacity           float32
	Fixed             bool
}

// Node is one element of a renderable scene graph. A node with nil Geometry is a group.
// Rotation is euler angles in radians (X, Y, Z). Materials has one slot per sub-mesh;
// procedural parts carry exactly one.
type Node struct {
	Name          string
	Geometry      *Geometry
	Materials     []Material
	Position      [3]float32
	Rotation      [3]float32
	Scale         [3]float32
	Visible       bool
	CastShadow    bool
	ReceiveShadow bool
	Children      []*Node `copier:"-"`
}

// NewGroup returns a visible group node at the origin with unit scale.
func NewGroup(name string, children ...*Node) *Node {
	return &Node{
		Name:     name,
		Scale:    [3]float32{1, 1, 1},
		Visible:  true,
		Children: children,
	}
}

// NewMesh returns a visible mesh node with a single material slot. Shadows are off; callers
// that need them use SetShadows.
func NewMesh(name string, geom Geometry, mat Material) *Node {
	g := geom
	return &Node{
		Name:      name,
		Geometry:  &g,
		Materials: []Material{mat},
		Scale:     [3]float32{1, 1, 1},
		Visible:   true,
	}
}

// IsMesh reports whether the node carries geometry.
func (n *Node) IsMesh() bool {
	return n != nil && n.Geometry != nil
}

// Add appends children and returns n for chaining.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Clone returns a deep copy of the tree rooted at n. The copy shares no memory with n:
// geometry, material slots and children are all duplicated, so tinting or hiding parts
// of the clone never shows through to the source.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{}
	if err := copier.CopyWithOption(out, n, copier.Option{CaseSensitive: true, DeepCopy: true}); err != nil {
		slog.Error("render.Node.Clone", "node", n.Name, "err", err)
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Walk visits n and its descendants in pre-order. Returning false from fn skips
// the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(node *Node, depth int) bool, depth int) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the first node in pre-order whose Name equals name, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// Meshes returns every mesh-bearing node under n (n included) in insertion order.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Walk(func(node *Node, _ int) bool {
		if node.IsMesh() {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Tint sets the color of every material slot of every non-fixed material under n.
func (n *Node) Tint(c color.RGBA) {
	n.Walk(func(node *Node, _ int) bool {
		for i := range node.Materials {
			if node.Materials[i].Fixed {
				continue
			}
			node.Materials[i].Color = c
		}
		return true
	})
}

// SetShadows sets the shadow flags on every mesh under n.
func (n *Node) SetShadows(cast, receive bool) {
	n.Walk(func(node *Node, _ int) bool {
		if node.IsMesh() {
			node.CastShadow = cast
			node.ReceiveShadow = receive
		}
		return true
	})
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}
