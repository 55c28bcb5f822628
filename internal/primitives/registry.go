package primitives

import (
	_ "embed"
	"fmt"
	"image/color"
	"sync"

	"gopkg.in/yaml.v3"

	"scene-engine/internal/render"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Primitive type names understood by the registry.
const (
	Cube     = "cube"
	Sphere   = "sphere"
	Cylinder = "cylinder"
	Cone     = "cone"
	Plane    = "plane"
	Torus    = "torus"
)

// defaultSegments is used when the catalog leaves segments unset for a round shape.
const defaultSegments = 32

// Registry maps primitive type names to their default definitions and builds sized,
// tinted render nodes from them. Definitions are parsed from the embedded catalog on
// first use.
type Registry struct {
	once sync.Once
	defs map[string]PrimitiveDef
	err  error
}

// NewRegistry returns a registry backed by the embedded catalog.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewRegistryFromYAML returns a registry whose definitions come from data instead of the
// embedded catalog (a YAML list of PrimitiveDef).
func NewRegistryFromYAML(data []byte) (*Registry, error) {
	r := &Registry{}
	r.once.Do(func() { r.defs, r.err = parseCatalog(data) })
	if r.err != nil {
		return nil, r.err
	}
	return r, nil
}

func parseCatalog(data []byte) (map[string]PrimitiveDef, error) {
	var list []PrimitiveDef
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("primitives: parse catalog: %w", err)
	}
	defs := make(map[string]PrimitiveDef, len(list))
	for _, d := range list {
		if d.Type == "" {
			return nil, fmt.Errorf("primitives: catalog entry without type")
		}
		defs[d.Type] = d
	}
	return defs, nil
}

func (r *Registry) ensure() {
	r.once.Do(func() { r.defs, r.err = parseCatalog(catalogYAML) })
}

// Def returns the definition for typ. Types missing from the catalog get the
// standard surface (metalness 0.3, roughness 0.4).
func (r *Registry) Def(typ string) PrimitiveDef {
	r.ensure()
	if d, ok := r.defs[typ]; ok {
		return d
	}
	return PrimitiveDef{Type: typ, Segments: defaultSegments, Metalness: 0.3, Roughness: 0.4}
}

// Has reports whether typ is a primitive the registry can build.
func (r *Registry) Has(typ string) bool {
	switch typ {
	case Cube, Sphere, Cylinder, Cone, Plane, Torus:
		return true
	}
	return false
}

// Material returns the default material for typ tinted with c.
func (r *Registry) Material(typ string, c color.RGBA) render.Material {
	d := r.Def(typ)
	return render.Material{Color: c, Metalness: d.Metalness, Roughness: d.Roughness, Opacity: 1}
}

// Build returns a single mesh node for typ sized by scale: cube side = scale, sphere
// radius = scale, cylinder/cone radius = scale and height = 2×scale, plane side = scale,
// torus ring radius = scale. Unknown types build a cube.
func (r *Registry) Build(typ string, scale float32, c color.RGBA) *render.Node {
	if !r.Has(typ) {
		typ = Cube
	}
	segs := r.Def(typ).Segments
	if segs <= 0 {
		segs = defaultSegments
	}
	var geom render.Geometry
	switch typ {
	case Sphere:
		geom = SphereGeometry(scale, segs)
	case Cylinder:
		geom = CylinderGeometry(scale, scale, 2*scale, segs)
	case Cone:
		geom = ConeGeometry(scale, 2*scale, segs)
	case Plane:
		geom = render.Geometry{Shape: render.ShapePlane, Size: [3]float32{scale, 0, scale}}
	case Torus:
		geom = TorusGeometry(scale, scale*0.25, segs)
	default:
		geom = BoxGeometry(scale, scale, scale)
	}
	return render.NewMesh(typ, geom, r.Material(typ, c))
}

// BoxGeometry returns a box of the given width, height and depth.
func BoxGeometry(w, h, d float32) render.Geometry {
	return render.Geometry{Shape: render.ShapeBox, Size: [3]float32{w, h, d}}
}

// SphereGeometry returns a sphere of radius r.
func SphereGeometry(r float32, segments int) render.Geometry {
	return render.Geometry{Shape: render.ShapeSphere, Radius: r, Segments: segments}
}

// CylinderGeometry returns a cylinder centered on its origin with the given bottom
// and top radii.
func CylinderGeometry(bottom, top, height float32, segments int) render.Geometry {
	return render.Geometry{Shape: render.ShapeCylinder, Radius: bottom, RadiusTop: top, Height: height, Segments: segments}
}

// ConeGeometry returns a cone with base radius r, pointing up +Y.
func ConeGeometry(r, height float32, segments int) render.Geometry {
	return render.Geometry{Shape: render.ShapeCone, Radius: r, Height: height, Segments: segments}
}

// TorusGeometry returns a torus in the XY plane with ring radius r and tube radius tube.
func TorusGeometry(r, tube float32, segments int) render.Geometry {
	return render.Geometry{Shape: render.ShapeTorus, Radius: r, Tube: tube, Segments: segments}
}
