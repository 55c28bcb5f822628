package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"scene-engine/internal/asset"
	"scene-engine/internal/scene"
)

// SceneDeps is what the scene commands operate on. Nil callbacks disable the commands
// that need them.
type SceneDeps struct {
	Editor *scene.Editor
	Out    io.Writer
	// Parts returns the part inventory of an asset-backed object from the latest frame.
	Parts func(id string) ([]asset.Part, bool)
	Retry func(refs ...string)
	// Import unpacks a zipped asset pack into the asset root and returns its model references.
	Import func(zipPath string) ([]string, error)
	// Path and SetPath track the current scene file for save and load.
	Path    func() string
	SetPath func(path string)
	SetGrid func(visible bool)
	SetFPS  func(visible bool)
}

var errUsage = errors.New("wrong number of arguments")

func need(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: want %d, got %d", errUsage, n, len(args))
	}
	return nil
}

func parseFloat(s string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return float32(v), nil
}

// ParseVec3 parses "x,y,z".
func ParseVec3(s string) ([3]float32, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float32{}, fmt.Errorf("invalid vector %q (want x,y,z)", s)
	}
	var v [3]float32
	for i, p := range parts {
		f, err := parseFloat(p)
		if err != nil {
			return [3]float32{}, err
		}
		v[i] = f
	}
	return v, nil
}

func toggle(show, hide bool) (bool, error) {
	if show == hide {
		return false, errors.New("pass exactly one of --show or --hide")
	}
	return show, nil
}

// RegisterScene adds the scene editing commands to r.
func RegisterScene(r *Registry, d SceneDeps) {
	out := d.Out
	if out == nil {
		out = io.Discard
	}
	ed := d.Editor

	r.Register("add", "[--type cube] [--model m] [--asset ref] [--color c] [--scale s] [--pos x,y,z] [--id id]", func(fs *flag.FlagSet) func([]string) error {
		typ := fs.String("type", "cube", "archetype")
		model := fs.String("model", "", "secondary archetype hint")
		ref := fs.String("asset", "", "asset reference")
		col := fs.String("color", "", "color")
		scale := fs.Float64("scale", 0, "uniform scale")
		pos := fs.String("pos", "", "position x,y,z")
		id := fs.String("id", "", "object id")
		return func(args []string) error {
			obj := scene.Object{ID: *id, Type: *typ, Model: *model, AssetRef: *ref, Color: *col}
			if *scale != 0 {
				obj.Scale = scene.Ptr(float32(*scale))
			}
			if *pos != "" {
				v, err := ParseVec3(*pos)
				if err != nil {
					return err
				}
				obj.Position = &v
			}
			newID, err := ed.Add(obj)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "added %s\n", newID)
			return nil
		}
	})

	r.Register("remove", "<id>", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			return ed.Remove(args[0])
		}
	})

	r.Register("scale", "<id> <value>", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			if err := need(args, 2); err != nil {
				return err
			}
			v, err := parseFloat(args[1])
			if err != nil {
				return err
			}
			return ed.SetScale(args[0], v)
		}
	})

	r.Register("pos", "<id> <x|y|z> <value>", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			if err := need(args, 3); err != nil {
				return err
			}
			axis, err := scene.ParseAxis(args[1])
			if err != nil {
				return err
			}
			v, err := parseFloat(args[2])
			if err != nil {
				return err
			}
			return ed.SetPosition(args[0], axis, v)
		}
	})

	r.Register("color", "<id> <color>", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			if err := need(args, 2); err != nil {
				return err
			}
			if _, err := scene.ParseColor(args[1]); err != nil {
				return err
			}
			return ed.SetColor(args[0], args[1])
		}
	})

	r.Register("hide", "<id> [part ...]  (no parts shows everything)", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: want an object id", errUsage)
			}
			return ed.SetHiddenParts(args[0], args[1:])
		}
	})

	r.Register("sim", "[--speed s] [--scale k] [--off] [--clear] <id> [arc_reactor_blast|hover|rotate]", func(fs *flag.FlagSet) func([]string) error {
		speed := fs.Float64("speed", 0, "effect speed")
		scale := fs.Float64("scale", 0, "effect size")
		off := fs.Bool("off", false, "deactivate, keeping the entry")
		clr := fs.Bool("clear", false, "remove the entry")
		return func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("%w: want an object id", errUsage)
			}
			id := args[0]
			if *clr {
				return ed.ClearEffect(id)
			}
			// Unset flags keep the current entry's values.
			eff := ed.Snapshot().Simulations[id]
			eff.Active = !*off
			fs.Visit(func(f *flag.Flag) {
				switch f.Name {
				case "speed":
					eff.Speed = float32(*speed)
				case "scale":
					eff.Scale = float32(*scale)
				}
			})
			if len(args) > 1 {
				eff.Type = scene.EffectType(args[1])
			}
			if eff.Type == scene.EffectNone {
				return fmt.Errorf("%w: want an effect type", errUsage)
			}
			return ed.SetEffect(id, eff)
		}
	})

	r.Register("parts", "<id>", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			if err := need(args, 1); err != nil {
				return err
			}
			if d.Parts == nil {
				return errors.New("part inventory unavailable")
			}
			parts, ok := d.Parts(args[0])
			if !ok {
				return fmt.Errorf("%s has no loaded asset", args[0])
			}
			for _, p := range parts {
				state := "visible"
				if !p.Visible {
					state = "hidden"
				}
				fmt.Fprintf(out, "%s %s size=%.2f,%.2f,%.2f\n", p.Name, state, p.BoundingSize[0], p.BoundingSize[1], p.BoundingSize[2])
			}
			return nil
		}
	})

	r.Register("list", "", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			s := ed.Snapshot()
			for _, o := range s.Objects {
				p := o.Pos()
				what := o.Type
				if o.HasAsset() {
					what = o.AssetRef
				}
				line := fmt.Sprintf("%s %s pos=%.2f,%.2f,%.2f scale=%.2f", o.ID, what, p[0], p[1], p[2], o.Size())
				if eff, ok := s.Simulations[o.ID]; ok {
					line += fmt.Sprintf(" sim=%s active=%t", eff.Type, eff.Active)
				}
				fmt.Fprintln(out, line)
			}
			if len(s.Objects) == 0 {
				fmt.Fprintln(out, "scene is empty")
			}
			return nil
		}
	})

	pathArg := func(args []string) (string, error) {
		if len(args) > 0 {
			return args[0], nil
		}
		if d.Path != nil && d.Path() != "" {
			return d.Path(), nil
		}
		return "", errors.New("no scene file given")
	}

	r.Register("save", "[path]", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			path, err := pathArg(args)
			if err != nil {
				return err
			}
			if err := scene.Save(path, ed.Snapshot()); err != nil {
				return err
			}
			if d.SetPath != nil {
				d.SetPath(path)
			}
			fmt.Fprintf(out, "saved %s\n", path)
			return nil
		}
	})

	r.Register("load", "[path]", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			path, err := pathArg(args)
			if err != nil {
				return err
			}
			s, err := scene.Load(path)
			if err != nil {
				return err
			}
			ed.Replace(s)
			if d.SetPath != nil {
				d.SetPath(path)
			}
			fmt.Fprintf(out, "loaded %s (%d objects)\n", path, len(s.Objects))
			return nil
		}
	})

	r.Register("clear", "", func(fs *flag.FlagSet) func([]string) error {
		return func(args []string) error {
			ed.Replace(scene.Scene{})
			return nil
		}
	})

	if d.Retry != nil {
		r.Register("retry", "[ref ...]", func(fs *flag.FlagSet) func([]string) error {
			return func(args []string) error {
				d.Retry(args...)
				return nil
			}
		})
	}
	if d.Import != nil {
		r.Register("import", "[--add] <pack.zip>", func(fs *flag.FlagSet) func([]string) error {
			add := fs.Bool("add", false, "add one object per imported model")
			return func(args []string) error {
				if err := need(args, 1); err != nil {
					return err
				}
				refs, err := d.Import(args[0])
				if err != nil {
					return err
				}
				for i, ref := range refs {
					fmt.Fprintf(out, "imported %s\n", ref)
					if !*add {
						continue
					}
					pos := [3]float32{float32(i) * 3, 1, 0}
					if _, err := ed.Add(scene.Object{AssetRef: ref, Position: &pos}); err != nil {
						return err
					}
				}
				if len(refs) == 0 {
					fmt.Fprintln(out, "no .gltf or .glb files in pack")
				}
				return nil
			}
		})
	}
	if d.SetGrid != nil {
		r.Register("grid", "--show | --hide", showHide(d.SetGrid))
	}
	if d.SetFPS != nil {
		r.Register("fps", "--show | --hide", showHide(d.SetFPS))
	}
}

func showHide(set func(bool)) Setup {
	return func(fs *flag.FlagSet) func([]string) error {
		show := fs.Bool("show", false, "show")
		hide := fs.Bool("hide", false, "hide")
		return func(args []string) error {
			v, err := toggle(*show, *hide)
			if err != nil {
				return err
			}
			set(v)
			return nil
		}
	}
}
