package synth

import (
	"image/color"

	"github.com/chewxy/math32"

	"scene-engine/internal/primitives"
	"scene-engine/internal/render"
)

// finish selects how a part's material is chosen.
type finish int

const (
	tinted finish = iota // object color, metallic body paint
	rubber               // fixed near-black, wheels and tyres
	glow                 // fixed emissive accent
	glass                // fixed dark translucent canopy
)

// part is one entry of a composite layout at unit scale.
type part struct {
	name   string
	geom   render.Geometry
	pos    [3]float32
	rot    [3]float32
	finish finish
	glow   color.RGBA
}

const segs = 24

var (
	cyan      = color.RGBA{R: 0x00, G: 0xff, B: 0xff, A: 0xff}
	warmWhite = color.RGBA{R: 0xff, G: 0xf4, B: 0xc2, A: 0xff}
	tyreBlack = color.RGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}
	canopy    = color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}
)

var halfPi = math32.Pi / 2

var robotLayout = []part{
	{name: "head", geom: primitives.BoxGeometry(0.6, 0.6, 0.6), pos: [3]float32{0, 1.5, 0}},
	{name: "eye_left", geom: primitives.SphereGeometry(0.08, segs), pos: [3]float32{-0.15, 1.55, 0.3}, finish: glow, glow: cyan},
	{name: "eye_right", geom: primitives.SphereGeometry(0.08, segs), pos: [3]float32{0.15, 1.55, 0.3}, finish: glow, glow: cyan},
	{name: "body", geom: primitives.BoxGeometry(0.8, 1, 0.5), pos: [3]float32{0, 0.6, 0}},
	{name: "arm_left", geom: primitives.CylinderGeometry(0.1, 0.1, 0.8, segs), pos: [3]float32{-0.55, 0.6, 0}},
	{name: "arm_right", geom: primitives.CylinderGeometry(0.1, 0.1, 0.8, segs), pos: [3]float32{0.55, 0.6, 0}},
	{name: "leg_left", geom: primitives.CylinderGeometry(0.12, 0.12, 0.8, segs), pos: [3]float32{-0.2, -0.3, 0}},
	{name: "leg_right", geom: primitives.CylinderGeometry(0.12, 0.12, 0.8, segs), pos: [3]float32{0.2, -0.3, 0}},
}

var carLayout = []part{
	{name: "body", geom: primitives.BoxGeometry(2, 0.5, 4), pos: [3]float32{0, 0, 0}},
	{name: "cabin", geom: primitives.BoxGeometry(1.6, 0.5, 2), pos: [3]float32{0, 0.5, -0.2}},
	{name: "wheel_front_left", geom: primitives.CylinderGeometry(0.4, 0.4, 0.3, segs), pos: [3]float32{-1, -0.25, 1.3}, rot: [3]float32{0, 0, halfPi}, finish: rubber},
	{name: "wheel_front_right", geom: primitives.CylinderGeometry(0.4, 0.4, 0.3, segs), pos: [3]float32{1, -0.25, 1.3}, rot: [3]float32{0, 0, halfPi}, finish: rubber},
	{name: "wheel_rear_left", geom: primitives.CylinderGeometry(0.4, 0.4, 0.3, segs), pos: [3]float32{-1, -0.25, -1.3}, rot: [3]float32{0, 0, halfPi}, finish: rubber},
	{name: "wheel_rear_right", geom: primitives.CylinderGeometry(0.4, 0.4, 0.3, segs), pos: [3]float32{1, -0.25, -1.3}, rot: [3]float32{0, 0, halfPi}, finish: rubber},
	{name: "headlight_left", geom: primitives.SphereGeometry(0.12, segs), pos: [3]float32{-0.6, 0.05, 2}, finish: glow, glow: warmWhite},
	{name: "headlight_right", geom: primitives.SphereGeometry(0.12, segs), pos: [3]float32{0.6, 0.05, 2}, finish: glow, glow: warmWhite},
}

var suitLayout = []part{
	{name: "helmet", geom: primitives.SphereGeometry(0.35, segs), pos: [3]float32{0, 1.75, 0}},
	{name: "eye_left", geom: primitives.BoxGeometry(0.14, 0.04, 0.02), pos: [3]float32{-0.12, 1.8, 0.33}, finish: glow, glow: warmWhite},
	{name: "eye_right", geom: primitives.BoxGeometry(0.14, 0.04, 0.02), pos: [3]float32{0.12, 1.8, 0.33}, finish: glow, glow: warmWhite},
	{name: "torso", geom: primitives.BoxGeometry(0.8, 1, 0.45), pos: [3]float32{0, 1, 0}},
	{name: "arc_reactor", geom: primitives.CylinderGeometry(0.1, 0.1, 0.05, segs), pos: [3]float32{0, 1.2, 0.24}, rot: [3]float32{halfPi, 0, 0}, finish: glow, glow: cyan},
	{name: "arm_left", geom: primitives.CylinderGeometry(0.12, 0.1, 0.9, segs), pos: [3]float32{-0.55, 1, 0}},
	{name: "arm_right", geom: primitives.CylinderGeometry(0.12, 0.1, 0.9, segs), pos: [3]float32{0.55, 1, 0}},
	{name: "leg_left", geom: primitives.CylinderGeometry(0.15, 0.12, 1, segs), pos: [3]float32{-0.2, 0, 0}},
	{name: "leg_right", geom: primitives.CylinderGeometry(0.15, 0.12, 1, segs), pos: [3]float32{0.2, 0, 0}},
}

var airplaneLayout = []part{
	{name: "fuselage", geom: primitives.CylinderGeometry(0.3, 0.3, 4, segs), rot: [3]float32{halfPi, 0, 0}},
	{name: "nose", geom: primitives.ConeGeometry(0.3, 0.8, segs), pos: [3]float32{0, 0, 2.4}, rot: [3]float32{halfPi, 0, 0}},
	{name: "cockpit", geom: primitives.SphereGeometry(0.25, segs), pos: [3]float32{0, 0.25, 1.2}, finish: glass},
	{name: "wing_left", geom: primitives.BoxGeometry(2.5, 0.08, 0.8), pos: [3]float32{-1.4, 0, 0.2}},
	{name: "wing_right", geom: primitives.BoxGeometry(2.5, 0.08, 0.8), pos: [3]float32{1.4, 0, 0.2}},
	{name: "tail_fin", geom: primitives.BoxGeometry(0.08, 0.8, 0.6), pos: [3]float32{0, 0.5, -1.8}},
	{name: "stabilizer_left", geom: primitives.BoxGeometry(0.9, 0.06, 0.4), pos: [3]float32{-0.5, 0, -1.8}},
	{name: "stabilizer_right", geom: primitives.BoxGeometry(0.9, 0.06, 0.4), pos: [3]float32{0.5, 0, -1.8}},
}

func (p part) material(c color.RGBA) render.Material {
	switch p.finish {
	case rubber:
		return render.Material{Color: tyreBlack, Metalness: 0.1, Roughness: 0.9, Opacity: 1, Fixed: true}
	case glow:
		return render.Material{Color: p.glow, Emissive: p.glow, EmissiveIntensity: 2, Metalness: 0, Roughness: 0.2, Opacity: 1, Fixed: true}
	case glass:
		return render.Material{Color: canopy, Metalness: 0.9, Roughness: 0.05, Opacity: 0.7, Fixed: true}
	}
	return render.Material{Color: c, Metalness: 0.6, Roughness: 0.3, Opacity: 1}
}

// scaleGeometry multiplies every linear dimension of g by s.
func scaleGeometry(g render.Geometry, s float32) render.Geometry {
	g.Size = [3]float32{g.Size[0] * s, g.Size[1] * s, g.Size[2] * s}
	g.Radius *= s
	g.RadiusTop *= s
	g.Height *= s
	g.Tube *= s
	g.Min = [3]float32{g.Min[0] * s, g.Min[1] * s, g.Min[2] * s}
	g.Max = [3]float32{g.Max[0] * s, g.Max[1] * s, g.Max[2] * s}
	return g
}

// buildLayout turns a unit-scale layout into a group whose parts are sized and placed
// linearly by scale.
func buildLayout(name string, layout []part, scale float32, c color.RGBA) *render.Node {
	root := render.NewGroup(name)
	for _, p := range layout {
		n := render.NewMesh(p.name, scaleGeometry(p.geom, scale), p.material(c))
		n.Position = [3]float32{p.pos[0] * scale, p.pos[1] * scale, p.pos[2] * scale}
		n.Rotation = p.rot
		root.Add(n)
	}
	return root
}
