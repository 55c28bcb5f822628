package scene

import "image/color"

// DefaultColor is the tint used when an object has no (or an unparseable) color.
const DefaultColor = "#00ffff"

// DefaultPosition is where an object without a position is placed.
var DefaultPosition = [3]float32{0, 1, 0}

// DefaultScale is the uniform scale of an object without one.
const DefaultScale = float32(1)

// SourceMetadata records where an object came from (e.g. "image_upload" and the uploaded
// file name). It is display-only and never affects composition.
type SourceMetadata struct {
	Origin   string `json:"origin,omitempty" yaml:"origin,omitempty"`
	FileName string `json:"fileName,omitempty" yaml:"fileName,omitempty"`
}

// Object is one entry in the scene. Optional fields are pointers so an absent value can be
// told apart from a zero one; use Pos, Size and Tint to read them with defaults applied.
type Object struct {
	ID          string          `json:"id" yaml:"id"`
	Type        string          `json:"type,omitempty" yaml:"type,omitempty"`
	Model       string          `json:"model,omitempty" yaml:"model,omitempty"`
	AssetRef    string          `json:"assetReference,omitempty" yaml:"assetReference,omitempty"`
	Position    *[3]float32     `json:"position,omitempty" yaml:"position,omitempty,flow"`
	Scale       *float32        `json:"scale,omitempty" yaml:"scale,omitempty"`
	Color       string          `json:"color,omitempty" yaml:"color,omitempty"`
	HiddenParts []string        `json:"hiddenParts,omitempty" yaml:"hiddenParts,omitempty,flow"`
	Source      *SourceMetadata `json:"source,omitempty" yaml:"source,omitempty"`
}

// Pos returns the object's position, or DefaultPosition when unset.
func (o Object) Pos() [3]float32 {
	if o.Position == nil {
		return DefaultPosition
	}
	return *o.Position
}

// Size returns the object's uniform scale, or DefaultScale when unset.
func (o Object) Size() float32 {
	if o.Scale == nil {
		return DefaultScale
	}
	return *o.Scale
}

// Tint returns the parsed object color, falling back to DefaultColor.
func (o Object) Tint() color.RGBA {
	if c, err := ParseColor(o.Color); err == nil {
		return c
	}
	c, _ := ParseColor(DefaultColor)
	return c
}

// HasAsset reports whether the object is backed by an externally loaded asset.
func (o Object) HasAsset() bool {
	return o.AssetRef != ""
}

// Hidden returns HiddenParts as a set.
func (o Object) Hidden() map[string]bool {
	if len(o.HiddenParts) == 0 {
		return nil
	}
	set := make(map[string]bool, len(o.HiddenParts))
	for _, p := range o.HiddenParts {
		set[p] = true
	}
	return set
}

// EffectType names a simulation effect.
type EffectType string

const (
	EffectNone            EffectType = ""
	EffectArcReactorBlast EffectType = "arc_reactor_blast"
	EffectHover           EffectType = "hover"
	EffectRotate          EffectType = "rotate"
)

// Valid reports whether t is one of the known effect types (none included).
func (t EffectType) Valid() bool {
	switch t {
	case EffectNone, EffectArcReactorBlast, EffectHover, EffectRotate:
		return true
	}
	return false
}

// Effect is the simulation requested for one object. Speed and Scale of zero mean 1.
type Effect struct {
	Type   EffectType `json:"type" yaml:"type"`
	Active bool       `json:"active" yaml:"active"`
	Speed  float32    `json:"speed,omitempty" yaml:"speed,omitempty"`
	Scale  float32    `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// SpeedOr returns Speed, or 1 when unset.
func (e Effect) SpeedOr() float32 {
	if e.Speed <= 0 {
		return 1
	}
	return e.Speed
}

// ScaleOr returns Scale, or 1 when unset.
func (e Effect) ScaleOr() float32 {
	if e.Scale <= 0 {
		return 1
	}
	return e.Scale
}

// Running reports whether the effect should be animated this frame.
func (e Effect) Running() bool {
	return e.Active && e.Type != EffectNone
}

// Lighting is the lighting hint passed through to the presentation layer untouched.
type Lighting struct {
	Type      string  `json:"type,omitempty" yaml:"type,omitempty"`
	Intensity float32 `json:"intensity,omitempty" yaml:"intensity,omitempty"`
}

// Scene is an ordered list of objects plus environment hints and the per-object
// simulation requests keyed by object id.
type Scene struct {
	Objects     []Object          `json:"objects" yaml:"objects"`
	Lighting    Lighting          `json:"lighting" yaml:"lighting"`
	Environment string            `json:"environment,omitempty" yaml:"environment,omitempty"`
	Simulations map[string]Effect `json:"simulations,omitempty" yaml:"simulations,omitempty"`
}

// Index returns the position of the object with id, or -1.
func (s *Scene) Index(id string) int {
	for i := range s.Objects {
		if s.Objects[i].ID == id {
			return i
		}
	}
	return -1
}

// Ptr returns a pointer to v. Handy for filling optional Object fields.
func Ptr[T any](v T) *T {
	return &v
}
