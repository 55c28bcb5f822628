package sim

import (
	"log/slog"
	"time"

	"scene-engine/internal/render"
	"scene-engine/internal/scene"
)

// State is the per-object bookkeeping of a running effect.
type State struct {
	Type   scene.EffectType
	Active bool
	Start  time.Time
	Frames uint64
	// Yaw is the last yaw handed out, so a halted rotate stays where it was drawn.
	Yaw float32
}

// Visual is what one tick contributes to an object.
type Visual struct {
	Type    scene.EffectType
	Elapsed float32
	Frames  uint64
	Offset  [3]float32
	Yaw     float32
	Halted  bool
	Reactor *ArcReactor
}

// Apply moves and turns the object's wrapper node. The wrapper is expected to carry the
// object's base pose, so offsets never accumulate across frames.
func (v Visual) Apply(n *render.Node) {
	for i := range n.Position {
		n.Position[i] += v.Offset[i]
	}
	n.Rotation[1] += v.Yaw
}

// Overlay returns the extra graph the effect draws around the object, or nil.
func (v Visual) Overlay() *render.Node {
	if v.Reactor == nil || v.Halted {
		return nil
	}
	return ArcReactorNode(*v.Reactor)
}

// Engine keeps one State per object id. It is driven from the frame loop and is not
// safe for concurrent use.
type Engine struct {
	states map[string]*State
	log    *slog.Logger
}

func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{states: make(map[string]*State), log: log}
}

// Tick advances every effect once using the same now. Effects whose entry disappeared are
// discarded. An inactive effect is halted: it is not advanced, and a later activation
// starts again from phase zero, as does switching to another effect type.
func (e *Engine) Tick(now time.Time, effects map[string]scene.Effect) map[string]Visual {
	for id := range e.states {
		if _, ok := effects[id]; !ok {
			e.log.Debug("effect removed", "id", id)
			delete(e.states, id)
		}
	}
	out := make(map[string]Visual, len(effects))
	for id, eff := range effects {
		st := e.states[id]
		if !eff.Running() {
			if st != nil && st.Active {
				e.log.Debug("effect halted", "id", id, "type", st.Type)
				st.Active = false
			}
			if st != nil && st.Type == scene.EffectRotate && st.Yaw != 0 {
				out[id] = Visual{Type: st.Type, Frames: st.Frames, Yaw: st.Yaw, Halted: true}
			}
			continue
		}
		if st == nil || !st.Active || st.Type != eff.Type {
			e.log.Debug("effect started", "id", id, "type", eff.Type)
			st = &State{Type: eff.Type, Active: true, Start: now}
			e.states[id] = st
		}
		out[id] = e.advance(st, eff, now)
	}
	return out
}

func (e *Engine) advance(st *State, eff scene.Effect, now time.Time) Visual {
	t := float32(now.Sub(st.Start).Seconds())
	if t < 0 {
		t = 0
	}
	v := Visual{Type: st.Type, Elapsed: t, Frames: st.Frames}
	switch st.Type {
	case scene.EffectArcReactorBlast:
		r := ArcReactorAt(t, eff.ScaleOr(), st.Frames)
		v.Reactor = &r
	case scene.EffectHover:
		v.Offset[1] = HoverOffset(t, eff.SpeedOr())
	case scene.EffectRotate:
		if st.Frames > 0 {
			st.Yaw += YawPerFrame * eff.SpeedOr()
		}
		v.Yaw = st.Yaw
	}
	st.Frames++
	return v
}

// State returns a copy of the state tracked for id.
func (e *Engine) State(id string) (State, bool) {
	st, ok := e.states[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Len returns the number of tracked effects, running or halted.
func (e *Engine) Len() int {
	return len(e.states)
}

// Running returns the number of effects currently advancing.
func (e *Engine) Running() int {
	n := 0
	for _, st := range e.states {
		if st.Active {
			n++
		}
	}
	return n
}

// Reset discards every state.
func (e *Engine) Reset() {
	clear(e.states)
}
