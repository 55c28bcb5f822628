package synth

import (
	"fmt"
	"strings"

	"scene-engine/internal/primitives"
	"scene-engine/internal/scene"
)

// Archetype is the closed set of things the synthesizer knows how to build.
type Archetype int

const (
	Cube Archetype = iota
	Sphere
	Cylinder
	Cone
	Car
	Suit
	Robot
	Airplane

	archetypeCount
)

var archetypeNames = [archetypeCount]string{"cube", "sphere", "cylinder", "cone", "car", "suit", "robot", "airplane"}

func (a Archetype) String() string {
	if a < 0 || a >= archetypeCount {
		return fmt.Sprintf("Archetype(%d)", int(a))
	}
	return archetypeNames[a]
}

// Composite reports whether a is a multi-part assembly.
func (a Archetype) Composite() bool {
	return a >= Car && a < archetypeCount
}

// Archetypes returns every archetype in declaration order.
func Archetypes() []Archetype {
	out := make([]Archetype, archetypeCount)
	for i := range out {
		out[i] = Archetype(i)
	}
	return out
}

var compositeAliases = map[string]Archetype{
	"car":       Car,
	"vehicle":   Car,
	"suit":      Suit,
	"ironman":   Suit,
	"iron man":  Suit,
	"iron-man":  Suit,
	"iron_man":  Suit,
	"armor":     Suit,
	"robot":     Robot,
	"droid":     Robot,
	"airplane":  Airplane,
	"aeroplane": Airplane,
	"aircraft":  Airplane,
	"jet":       Airplane,
}

var primitiveArchetypes = map[string]Archetype{
	primitives.Cube:     Cube,
	primitives.Sphere:   Sphere,
	primitives.Cylinder: Cylinder,
	primitives.Cone:     Cone,
}

// silentTypes fall back to the cube without a warning.
var silentTypes = map[string]bool{"": true, "custom": true}

// InvalidDescriptorWarning records that an object's type and model named nothing the
// synthesizer knows. It is informational: the object is still drawn as a cube.
type InvalidDescriptorWarning struct {
	ID    string
	Type  string
	Model string
}

func (w InvalidDescriptorWarning) String() string {
	return fmt.Sprintf("unknown archetype for object %q (type=%q model=%q), using cube", w.ID, w.Type, w.Model)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve picks the archetype for obj: a composite alias in type then model, then a basic
// primitive type, then the cube. The warning is non-nil only for a non-empty type other
// than "custom" that matched nothing.
func Resolve(obj scene.Object) (Archetype, *InvalidDescriptorWarning) {
	typ, model := normalize(obj.Type), normalize(obj.Model)
	if a, ok := compositeAliases[typ]; ok {
		return a, nil
	}
	if a, ok := compositeAliases[model]; ok {
		return a, nil
	}
	if a, ok := primitiveArchetypes[typ]; ok {
		return a, nil
	}
	if silentTypes[typ] {
		return Cube, nil
	}
	return Cube, &InvalidDescriptorWarning{ID: obj.ID, Type: obj.Type, Model: obj.Model}
}
