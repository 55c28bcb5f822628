package render

import "image/color"

// Shade returns the flat color a renderer without lighting should use for m: the base
// color scaled by the light intensity, plus the emissive color, with Opacity as alpha.
// A zero Opacity is treated as opaque.
func Shade(m Material, intensity float32) color.RGBA {
	ch := func(base, glow uint8) uint8 {
		v := float32(base)*intensity + float32(glow)*m.EmissiveIntensity
		return uint8(min(max(v, 0), 255))
	}
	alpha := m.Opacity
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	return color.RGBA{
		R: ch(m.Color.R, m.Emissive.R),
		G: ch(m.Color.G, m.Emissive.G),
		B: ch(m.Color.B, m.Emissive.B),
		A: uint8(alpha*255 + 0.5),
	}
}

var backdrops = map[string]color.RGBA{
	"forest": {R: 0x12, G: 0x26, B: 0x18, A: 0xff},
	"sunset": {R: 0x4a, G: 0x22, B: 0x1c, A: 0xff},
	"night":  {R: 0x04, G: 0x05, B: 0x10, A: 0xff},
}

// Backdrop returns the clear color for an environment hint. Unknown hints get near black.
func Backdrop(environment string) color.RGBA {
	if c, ok := backdrops[environment]; ok {
		return c
	}
	return color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xff}
}
