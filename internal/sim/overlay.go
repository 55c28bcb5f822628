package sim

import (
	"fmt"
	"image/color"

	"github.com/chewxy/math32"

	"scene-engine/internal/primitives"
	"scene-engine/internal/render"
)

// OverlayName is the name of the arc reactor overlay group.
const OverlayName = "arc_reactor_blast"

var energy = color.RGBA{R: 0x00, G: 0xff, B: 0xff, A: 0xff}

func energyMaterial(intensity, opacity float32) render.Material {
	return render.Material{
		Color:             energy,
		Emissive:          energy,
		EmissiveIntensity: intensity,
		Opacity:           opacity,
		Roughness:         0.2,
		Fixed:             true,
	}
}

// ArcReactorNode builds the overlay graph for r: a pulsing core, a spinning ring, the
// orbiting particles and a forward beam along +Z.
func ArcReactorNode(r ArcReactor) *render.Node {
	s := r.ScaleFactor
	core := render.NewMesh("core", primitives.SphereGeometry(r.CoreRadius, 16), energyMaterial(r.Emissive, 0.8))

	ring := render.NewMesh("ring", primitives.TorusGeometry(0.8*s, 0.04*s, 32), energyMaterial(r.Emissive/2, 0.9))
	ring.Rotation = [3]float32{r.RingRotation[0], r.RingRotation[1], 0}

	particles := render.NewGroup("particles")
	for i, p := range r.Particles {
		n := render.NewMesh(fmt.Sprintf("particle_%d", i), primitives.SphereGeometry(0.05*s*p.Scale, 8), energyMaterial(2, 1))
		n.Position = p.Position
		particles.Add(n)
	}

	beam := render.NewMesh("beam", primitives.CylinderGeometry(0.3*s, 0.1*s, r.BeamLength, 8), energyMaterial(r.BeamIntensity, r.BeamOpacity))
	beam.Rotation = [3]float32{math32.Pi / 2, 0, 0}
	beam.Position = [3]float32{0, 0, r.BeamLength / 2}

	return render.NewGroup(OverlayName, core, ring, particles, beam)
}
