package agent

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"scene-engine/internal/commands"
	"scene-engine/internal/describe"
	"scene-engine/internal/scene"
	"scene-engine/internal/synth"
)

// maxBatch caps add_objects.
const maxBatch = 500

var batchTypes = []string{"cube", "sphere", "cylinder", "cone"}

// RegisterSceneHandlers registers the scene editing actions on a. reg may be nil, in which
// case run_cmd is not available.
func RegisterSceneHandlers(a *Agent, ed *scene.Editor, reg *commands.Registry) {
	a.RegisterHandler("add_object", func(payload map[string]interface{}) error {
		obj, err := parseObject(payload)
		if err != nil {
			return err
		}
		_, err = ed.Add(obj)
		return err
	})
	a.RegisterHandler("add_objects", func(payload map[string]interface{}) error {
		typ, _ := payload["type"].(string)
		if typ == "" {
			return fmt.Errorf("missing type")
		}
		randomType := typ == "random" || typ == "any"
		if !randomType && !isKnownType(typ) {
			return fmt.Errorf("unknown type %q", typ)
		}
		count := 1
		if n, ok := payload["count"].(float64); ok && n >= 1 {
			count = int(n)
		}
		count = min(count, maxBatch)
		spacing := float32(2)
		if s, err := parseFloat1(payload["spacing"]); err == nil && s > 0 {
			spacing = s
		}
		origin, err := parseFloat3(payload["origin"])
		if err != nil {
			origin = [3]float32{0, 1, 0}
		}
		pattern, _ := payload["pattern"].(string)
		template, err := parseObject(map[string]interface{}{
			"type":  "cube",
			"scale": payload["scale"],
			"color": payload["color"],
		})
		if err != nil {
			return err
		}
		cols := int(math.Ceil(math.Sqrt(float64(count))))
		for i := 0; i < count; i++ {
			var pos [3]float32
			switch pattern {
			case "line":
				pos = [3]float32{origin[0] + float32(i)*spacing, origin[1], origin[2]}
			case "random", "spread":
				half := max(spacing*float32(count)/4, 5)
				pos = [3]float32{
					origin[0] + (rand.Float32()*2-1)*half,
					origin[1],
					origin[2] + (rand.Float32()*2-1)*half,
				}
			default:
				row, col := i/cols, i%cols
				pos = [3]float32{origin[0] + float32(col)*spacing, origin[1], origin[2] + float32(row)*spacing}
			}
			obj := template
			obj.Type = typ
			if randomType {
				obj.Type = batchTypes[rand.Intn(len(batchTypes))]
			}
			obj.Position = scene.Ptr(pos)
			if _, err := ed.Add(obj); err != nil {
				return err
			}
		}
		return nil
	})
	a.RegisterHandler("remove_object", func(payload map[string]interface{}) error {
		id, err := requireID(payload)
		if err != nil {
			return err
		}
		return ed.Remove(id)
	})
	a.RegisterHandler("set_scale", func(payload map[string]interface{}) error {
		id, err := requireID(payload)
		if err != nil {
			return err
		}
		s, err := parseFloat1(payload["scale"])
		if err != nil {
			return fmt.Errorf("scale: %w", err)
		}
		return ed.SetScale(id, s)
	})
	a.RegisterHandler("set_position", func(payload map[string]interface{}) error {
		id, err := requireID(payload)
		if err != nil {
			return err
		}
		if pos, err := parseFloat3(payload["position"]); err == nil {
			for axis, v := range pos {
				if err := ed.SetPosition(id, axis, v); err != nil {
					return err
				}
			}
			return nil
		}
		axisName, _ := payload["axis"].(string)
		axis, err := scene.ParseAxis(axisName)
		if err != nil {
			return err
		}
		v, err := parseFloat1(payload["value"])
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		return ed.SetPosition(id, axis, v)
	})
	a.RegisterHandler("set_color", func(payload map[string]interface{}) error {
		id, err := requireID(payload)
		if err != nil {
			return err
		}
		c, _ := payload["color"].(string)
		if _, err := scene.ParseColor(c); err != nil {
			return err
		}
		return ed.SetColor(id, c)
	})
	a.RegisterHandler("set_hidden_parts", func(payload map[string]interface{}) error {
		id, err := requireID(payload)
		if err != nil {
			return err
		}
		names, err := parseStrings(payload["parts"])
		if err != nil {
			return fmt.Errorf("parts: %w", err)
		}
		return ed.SetHiddenParts(id, names)
	})
	a.RegisterHandler("set_simulation", func(payload map[string]interface{}) error {
		id, err := requireID(payload)
		if err != nil {
			return err
		}
		typ, _ := payload["type"].(string)
		eff := scene.Effect{
			Type:   scene.EffectType(typ),
			Active: parseBoolOpt(payload["active"], true),
		}
		if s, err := parseFloat1(payload["speed"]); err == nil {
			eff.Speed = s
		}
		if s, err := parseFloat1(payload["scale"]); err == nil {
			eff.Scale = s
		}
		return ed.SetEffect(id, eff)
	})
	a.RegisterHandler("clear_simulation", func(payload map[string]interface{}) error {
		id, err := requireID(payload)
		if err != nil {
			return err
		}
		return ed.ClearEffect(id)
	})
	if reg != nil {
		a.RegisterHandler("run_cmd", func(payload map[string]interface{}) error {
			args, err := parseStrings(payload["args"])
			if err != nil || len(args) == 0 {
				return fmt.Errorf("missing or empty args")
			}
			return reg.Execute(args)
		})
	}
	a.SetState(func() string { return Summarize(ed.Snapshot()) })
}

// DescribeOffline returns an Offline handler that builds objects from keyword matching and
// merges them into ed.
func DescribeOffline(ed *scene.Editor) Offline {
	return func(userMessage string) (string, error) {
		s := describe.Scene(userMessage)
		added := ed.Merge(s.Objects)
		return fmt.Sprintf("Added %d object(s) from description.", len(added)), nil
	}
}

// Summarize lists the objects of s one per line as "id type [asset] at x,y,z scale s".
func Summarize(s scene.Scene) string {
	var b strings.Builder
	for _, o := range s.Objects {
		p := o.Pos()
		fmt.Fprintf(&b, "%s %s", o.ID, o.Type)
		if o.HasAsset() {
			fmt.Fprintf(&b, " asset=%s", o.AssetRef)
		}
		fmt.Fprintf(&b, " at %g,%g,%g scale %g", p[0], p[1], p[2], o.Size())
		if eff, ok := s.Simulations[o.ID]; ok && eff.Type != scene.EffectNone {
			fmt.Fprintf(&b, " sim=%s active=%t", eff.Type, eff.Active)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func isKnownType(typ string) bool {
	for _, a := range synth.Archetypes() {
		if a.String() == typ {
			return true
		}
	}
	return false
}

func parseObject(payload map[string]interface{}) (scene.Object, error) {
	var obj scene.Object
	obj.ID, _ = payload["id"].(string)
	obj.Type, _ = payload["type"].(string)
	obj.Model, _ = payload["model"].(string)
	obj.AssetRef, _ = payload["asset"].(string)
	if obj.Type == "" && obj.AssetRef == "" {
		return obj, fmt.Errorf("missing type")
	}
	if pos, err := parseFloat3(payload["position"]); err == nil {
		obj.Position = scene.Ptr(pos)
	}
	if payload["scale"] != nil {
		s, err := parseFloat1(payload["scale"])
		if err != nil {
			// Older prompts send [sx,sy,sz]; the scene only keeps a uniform scale.
			v, err3 := parseFloat3(payload["scale"])
			if err3 != nil {
				return obj, fmt.Errorf("scale: %w", err)
			}
			s = v[0]
		}
		obj.Scale = scene.Ptr(s)
	}
	if c, ok := payload["color"].(string); ok && c != "" {
		if _, err := scene.ParseColor(c); err != nil {
			return obj, err
		}
		obj.Color = c
	}
	if names, err := parseStrings(payload["hidden_parts"]); err == nil {
		obj.HiddenParts = names
	}
	return obj, nil
}

func requireID(payload map[string]interface{}) (string, error) {
	id, _ := payload["id"].(string)
	if id == "" {
		return "", fmt.Errorf("missing id")
	}
	return id, nil
}

func parseBoolOpt(v interface{}, defaultVal bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultVal
}

func parseFloat1(v interface{}) (float32, error) {
	switch n := v.(type) {
	case float64:
		return float32(n), nil
	case float32:
		return n, nil
	default:
		return 0, fmt.Errorf("expected number")
	}
}

func parseFloat3(v interface{}) ([3]float32, error) {
	var out [3]float32
	arr, ok := v.([]interface{})
	if !ok || len(arr) < 3 {
		return out, fmt.Errorf("expected [x,y,z]")
	}
	for i := 0; i < 3; i++ {
		n, err := parseFloat1(arr[i])
		if err != nil {
			return out, fmt.Errorf("[%d] not a number", i)
		}
		out[i] = n
	}
	return out, nil
}

func parseStrings(v interface{}) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list of strings")
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("expected a list of strings")
		}
		out = append(out, s)
	}
	return out, nil
}
