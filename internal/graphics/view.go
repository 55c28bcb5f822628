package graphics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-engine/internal/render"
	"scene-engine/internal/scene"
)

const (
	gridExtent     = 50
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
)

var radToDeg = 180 / math32.Pi

// View holds the 3D camera and draws a composed render tree.
type View struct {
	Camera      rl.Camera3D
	GridVisible bool
	// Captured is true while the mouse drives the camera.
	Captured bool
}

// NewView returns a view with a perspective camera at (10,10,10) looking at the origin.
func NewView() *View {
	v := &View{GridVisible: true}
	v.Camera.Position = rl.NewVector3(10, 10, 10)
	v.Camera.Target = rl.NewVector3(0, 0, 0)
	v.Camera.Up = rl.NewVector3(0, 1, 0)
	v.Camera.Fovy = 45
	v.Camera.Projection = rl.CameraPerspective
	return v
}

// SetGridVisible sets whether the editor grid is drawn.
func (v *View) SetGridVisible(visible bool) {
	v.GridVisible = visible
}

// Update moves the camera. The right mouse button captures the cursor for free-fly; while
// it is not captured the camera orbits with the mouse wheel only.
func (v *View) Update() {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.Captured = !v.Captured
		if v.Captured {
			rl.DisableCursor()
		} else {
			rl.EnableCursor()
		}
	}
	if v.Captured {
		rl.UpdateCamera(&v.Camera, rl.CameraFree)
		return
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		rl.CameraMoveToTarget(&v.Camera, -wheel)
	}
}

// Draw clears to the environment's backdrop and renders root in 3D.
func (v *View) Draw(root *render.Node, env string, light scene.Lighting) {
	rl.ClearBackground(render.Backdrop(env))
	intensity := light.Intensity
	if intensity <= 0 {
		intensity = 1
	}
	rl.BeginMode3D(v.Camera)
	if v.GridVisible {
		drawEditorGrid()
	}
	if root != nil {
		drawNode(root, intensity)
	}
	rl.EndMode3D()
}

// drawNode draws n and its children under n's transform. Rotation order is X, Y, Z.
func drawNode(n *render.Node, intensity float32) {
	if !n.Visible {
		return
	}
	rl.PushMatrix()
	defer rl.PopMatrix()
	rl.Translatef(n.Position[0], n.Position[1], n.Position[2])
	rl.Rotatef(n.Rotation[0]*radToDeg, 1, 0, 0)
	rl.Rotatef(n.Rotation[1]*radToDeg, 0, 1, 0)
	rl.Rotatef(n.Rotation[2]*radToDeg, 0, 0, 1)
	rl.Scalef(n.Scale[0], n.Scale[1], n.Scale[2])
	if n.IsMesh() {
		drawGeometry(n.Geometry, n.Materials, intensity)
	}
	for _, c := range n.Children {
		drawNode(c, intensity)
	}
}

var origin = rl.NewVector3(0, 0, 0)

func drawGeometry(g *render.Geometry, mats []render.Material, intensity float32) {
	var m render.Material
	if len(mats) > 0 {
		m = mats[0]
	}
	c := render.Shade(m, intensity)
	slices := int32(g.Segments)
	if slices <= 0 {
		slices = 16
	}
	switch g.Shape {
	case render.ShapeBox:
		rl.DrawCube(origin, g.Size[0], g.Size[1], g.Size[2], c)
	case render.ShapePlane:
		rl.DrawPlane(origin, rl.NewVector2(g.Size[0], g.Size[2]), c)
	case render.ShapeSphere:
		rl.DrawSphereEx(origin, g.Radius, slices, slices, c)
	case render.ShapeCylinder, render.ShapeCone:
		base := rl.NewVector3(0, -g.Height/2, 0)
		rl.DrawCylinder(base, g.RadiusTop, g.Radius, g.Height, slices, c)
	case render.ShapeTorus:
		rl.DrawCircle3D(origin, g.Radius, rl.NewVector3(1, 0, 0), 0, c)
		rl.DrawCircle3D(origin, g.Radius+g.Tube, rl.NewVector3(1, 0, 0), 0, c)
		rl.DrawCircle3D(origin, g.Radius-g.Tube, rl.NewVector3(1, 0, 0), 0, c)
	case render.ShapeMesh:
		e := g.Extent()
		center := rl.NewVector3((g.Min[0]+g.Max[0])/2, (g.Min[1]+g.Max[1])/2, (g.Min[2]+g.Max[2])/2)
		rl.DrawCube(center, e[0], e[1], e[2], c)
		rl.DrawCubeWires(center, e[0], e[1], e[2], rl.Black)
	}
}

// drawEditorGrid draws a grid on the XZ plane with major/minor lines and axis lines.
func drawEditorGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), 0, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), 0, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), 0, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), 0, float32(z)
		rl.DrawLine3D(start, end, c)
	}

	rl.DrawLine3D(rl.NewVector3(-gridExtent, 0, 0), rl.NewVector3(gridExtent, 0, 0), axisX)
	rl.DrawLine3D(rl.NewVector3(0, -gridExtent, 0), rl.NewVector3(0, gridExtent, 0), axisY)
	rl.DrawLine3D(rl.NewVector3(0, 0, -gridExtent), rl.NewVector3(0, 0, gridExtent), axisZ)
}
