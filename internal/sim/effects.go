// Package sim drives per-object effects frame by frame. Every visual quantity is a pure
// function of the elapsed time since activation and the frame count, so an effect can be
// recomputed for any moment without integrating state.
package sim

import "github.com/chewxy/math32"

// ParticleCount is the number of orbiting particles in the arc reactor overlay.
const ParticleCount = 12

// HoverAmplitude bounds the vertical hover offset in world units.
const HoverAmplitude = 0.1

// YawPerFrame is the rotate effect's step at speed 1, in radians.
const YawPerFrame = 0.01

// Particle is one orbiting particle of the arc reactor, relative to the object.
type Particle struct {
	Position [3]float32
	Scale    float32
}

// ArcReactor is the arc reactor overlay at one instant.
type ArcReactor struct {
	ScaleFactor    float32
	CoreMultiplier float32
	CoreRadius     float32
	Emissive       float32
	RingRotation   [2]float32
	Particles      [ParticleCount]Particle
	BeamLength     float32
	BeamOpacity    float32
	BeamIntensity  float32
}

// ArcReactorAt evaluates the arc reactor at t seconds after activation and the given frame
// count, with s as the overall size factor.
func ArcReactorAt(t, s float32, frames uint64) ArcReactor {
	mult := 1 + 0.4*math32.Sin(8*t)
	r := ArcReactor{
		ScaleFactor:    s,
		CoreMultiplier: mult,
		CoreRadius:     s * mult,
		Emissive:       5 + 3*math32.Sin(10*t),
		RingRotation:   [2]float32{float32(frames) * 0.02, float32(frames) * 0.01},
		BeamLength:     5 + 2*math32.Sin(3*t),
		BeamOpacity:    0.6 + 0.2*math32.Sin(3*t),
		BeamIntensity:  2 + math32.Sin(3*t),
	}
	for i := range r.Particles {
		fi := float32(i)
		angle := 2*math32.Pi*fi/ParticleCount + 2*t
		wave := math32.Sin(3*t + fi)
		radius := 1.5*s + 0.3*s*wave
		r.Particles[i] = Particle{
			Position: [3]float32{math32.Cos(angle) * radius, 0.3 * s * wave, math32.Sin(angle) * radius},
			Scale:    0.5 + 0.3*math32.Sin(5*t+fi),
		}
	}
	return r
}

// HoverOffset is the vertical offset added to the base position at t seconds.
func HoverOffset(t, speed float32) float32 {
	return math32.Sin(2*speed*t) * HoverAmplitude
}

// RotateYaw is the yaw reached after frames ticks at a constant speed.
func RotateYaw(frames uint64, speed float32) float32 {
	return float32(frames) * YawPerFrame * speed
}
