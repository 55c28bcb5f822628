package compose

import (
	"context"
	"time"

	"scene-engine/internal/sim"
	"scene-engine/internal/scene"
)

// Stage runs one frame: compose the scene, advance effects, then apply them to the
// object wrappers.
type Stage struct {
	Composer *Composer
	Engine   *sim.Engine
}

func NewStage(c *Composer, e *sim.Engine) *Stage {
	if e == nil {
		e = sim.NewEngine(nil)
	}
	return &Stage{Composer: c, Engine: e}
}

// Step composes sc and applies the effects for now. Only entries whose object is in the
// scene reach the engine, so removing either one discards the effect state.
func (s *Stage) Step(ctx context.Context, sc scene.Scene, now time.Time) *Frame {
	f := s.Composer.Compose(ctx, sc)
	visuals := s.Engine.Tick(now, liveEffects(sc))
	for _, p := range f.Objects {
		v, ok := visuals[p.ID]
		if !ok {
			continue
		}
		v.Apply(p.Node)
		if o := v.Overlay(); o != nil {
			p.Node.Add(o)
		}
		f.Visuals++
	}
	return f
}

func liveEffects(sc scene.Scene) map[string]scene.Effect {
	out := make(map[string]scene.Effect, len(sc.Simulations))
	for _, o := range sc.Objects {
		if eff, ok := sc.Simulations[o.ID]; ok {
			out[o.ID] = eff
		}
	}
	return out
}
