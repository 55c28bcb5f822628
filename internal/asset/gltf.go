package asset

import (
	"fmt"
	"image/color"
	"io"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"

	"scene-engine/internal/render"
)

// Decoder turns fetched asset bytes into a render graph.
type Decoder func(ref string, r io.Reader) (*render.Node, error)

// DecodeGLTF parses a glTF 2.0 document (JSON .gltf or binary .glb) into a render graph.
// Every glTF node becomes a render node with its name and TRS transform; a node with a
// mesh carries a ShapeMesh geometry bounded by its POSITION accessors and one material
// slot per mesh primitive. Vertex data is not kept.
func DecodeGLTF(ref string, r io.Reader) (*render.Node, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf: %w", err)
	}
	b := gltfBuilder{doc: doc, visiting: make(map[int]bool)}
	root := render.NewGroup(ref)
	for _, idx := range b.roots() {
		n, err := b.node(idx)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	return root, nil
}

type gltfBuilder struct {
	doc      *gltf.Document
	visiting map[int]bool
}

// roots returns the node indices of the default scene, the first scene, or when the
// document has no scenes, every node that is nobody's child.
func (b *gltfBuilder) roots() []int {
	doc := b.doc
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes) {
			s = int(*doc.Scene)
		}
		out := make([]int, 0, len(doc.Scenes[s].Nodes))
		for _, n := range doc.Scenes[s].Nodes {
			out = append(out, int(n))
		}
		return out
	}
	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[int(c)] = true
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !child[i] {
			out = append(out, i)
		}
	}
	return out
}

func (b *gltfBuilder) node(idx int) (*render.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("gltf: node index %d out of range", idx)
	}
	if b.visiting[idx] {
		return nil, fmt.Errorf("gltf: node %d is its own ancestor", idx)
	}
	b.visiting[idx] = true
	defer delete(b.visiting, idx)

	src := b.doc.Nodes[idx]
	n := render.NewGroup(src.Name)
	n.Position = [3]float32{float32(src.Translation[0]), float32(src.Translation[1]), float32(src.Translation[2])}
	sc := [3]float32{float32(src.Scale[0]), float32(src.Scale[1]), float32(src.Scale[2])}
	if sc != ([3]float32{}) {
		n.Scale = sc
	}
	n.Rotation = quatToEuler(float32(src.Rotation[0]), float32(src.Rotation[1]), float32(src.Rotation[2]), float32(src.Rotation[3]))

	if src.Mesh != nil {
		if err := b.mesh(n, int(*src.Mesh)); err != nil {
			return nil, err
		}
	}
	for _, c := range src.Children {
		child, err := b.node(int(c))
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func (b *gltfBuilder) mesh(n *render.Node, idx int) error {
	if idx < 0 || idx >= len(b.doc.Meshes) {
		return fmt.Errorf("gltf: mesh index %d out of range", idx)
	}
	m := b.doc.Meshes[idx]
	geom := render.Geometry{Shape: render.ShapeMesh}
	first := true
	for _, p := range m.Primitives {
		if pos, ok := p.Attributes["POSITION"]; ok && int(pos) < len(b.doc.Accessors) {
			acc := b.doc.Accessors[int(pos)]
			if len(acc.Min) >= 3 && len(acc.Max) >= 3 {
				for i := 0; i < 3; i++ {
					lo, hi := float32(acc.Min[i]), float32(acc.Max[i])
					if first || lo < geom.Min[i] {
						geom.Min[i] = lo
					}
					if first || hi > geom.Max[i] {
						geom.Max[i] = hi
					}
				}
				first = false
			}
		}
		mat := render.Material{Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Opacity: 1, Metalness: 1, Roughness: 1}
		if p.Material != nil && int(*p.Material) < len(b.doc.Materials) {
			mat = gltfMaterial(b.doc.Materials[int(*p.Material)])
		}
		n.Materials = append(n.Materials, mat)
	}
	if n.Name == "" {
		n.Name = m.Name
	}
	n.Geometry = &geom
	return nil
}

func gltfMaterial(src *gltf.Material) render.Material {
	mat := render.Material{Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Opacity: 1, Metalness: 1, Roughness: 1}
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			mat.Color = color.RGBA{R: unit8(float32(f[0])), G: unit8(float32(f[1])), B: unit8(float32(f[2])), A: unit8(float32(f[3]))}
			mat.Opacity = float32(f[3])
		}
		if pbr.MetallicFactor != nil {
			mat.Metalness = float32(*pbr.MetallicFactor)
		}
		if pbr.RoughnessFactor != nil {
			mat.Roughness = float32(*pbr.RoughnessFactor)
		}
	}
	e := src.EmissiveFactor
	if e[0] != 0 || e[1] != 0 || e[2] != 0 {
		mat.Emissive = color.RGBA{R: unit8(float32(e[0])), G: unit8(float32(e[1])), B: unit8(float32(e[2])), A: 255}
		mat.EmissiveIntensity = 1
	}
	return mat
}

func unit8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// quatToEuler converts a unit quaternion (x, y, z, w) to XYZ euler angles in radians.
// The zero quaternion is treated as identity.
func quatToEuler(x, y, z, w float32) [3]float32 {
	if x == 0 && y == 0 && z == 0 && (w == 0 || w == 1) {
		return [3]float32{}
	}
	sinr := 2 * (w*x + y*z)
	cosr := 1 - 2*(x*x+y*y)
	roll := math32.Atan2(sinr, cosr)

	sinp := 2 * (w*y - z*x)
	var pitch float32
	if math32.Abs(sinp) >= 1 {
		pitch = math32.Copysign(math32.Pi/2, sinp)
	} else {
		pitch = math32.Asin(sinp)
	}

	siny := 2 * (w*z + x*y)
	cosy := 1 - 2*(y*y+z*z)
	yaw := math32.Atan2(siny, cosy)
	return [3]float32{roll, pitch, yaw}
}
