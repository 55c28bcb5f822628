package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrDuplicateID    = errors.New("duplicate object id")
	ErrInvalidAxis    = errors.New("invalid axis")
	ErrInvalidScale   = errors.New("invalid scale")
	ErrInvalidEffect  = errors.New("invalid effect type")
)

// Editor owns the canonical scene and applies the mutation commands the UI and the agent
// issue. The composition core only ever sees Snapshot copies. Safe for concurrent use.
type Editor struct {
	mu      sync.RWMutex
	scene   Scene
	version uint64
	newID   func() string
}

// NewEditor returns an editor holding a copy of s.
func NewEditor(s Scene) *Editor {
	e := &Editor{newID: uuid.NewString}
	e.scene = clone(s)
	if e.scene.Simulations == nil {
		e.scene.Simulations = make(map[string]Effect)
	}
	return e
}

func deepCopy(dst, src any) error {
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		return fmt.Errorf("scene: deep copy: %w", err)
	}
	return nil
}

// clone deep-copies a scene so callers never share slices or maps with the editor.
func clone(s Scene) Scene {
	var out Scene
	if err := deepCopy(&out, &s); err != nil {
		slog.Error("scene.clone", "err", err)
	}
	return out
}

// Snapshot returns a deep copy of the current scene.
func (e *Editor) Snapshot() Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return clone(e.scene)
}

// Version increases by one on every successful mutation.
func (e *Editor) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// Object returns a copy of the object with id.
func (e *Editor) Object(id string) (Object, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := e.scene.Index(id)
	if i < 0 {
		return Object{}, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	var out Object
	if err := deepCopy(&out, &e.scene.Objects[i]); err != nil {
		return Object{}, err
	}
	return out, nil
}

// Add appends obj and returns its id. An empty id is replaced by a fresh UUID; ids are
// never reused, so adding an id already present fails with ErrDuplicateID.
func (e *Editor) Add(obj Object) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if obj.ID == "" {
		obj.ID = e.newID()
	}
	if e.scene.Index(obj.ID) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, obj.ID)
	}
	if obj.Scale != nil && *obj.Scale < 0 {
		return "", fmt.Errorf("%w: %v", ErrInvalidScale, *obj.Scale)
	}
	var cp Object
	if err := deepCopy(&cp, &obj); err != nil {
		return "", err
	}
	e.scene.Objects = append(e.scene.Objects, cp)
	e.version++
	return obj.ID, nil
}

// Remove deletes the object with id together with its simulation entry.
func (e *Editor) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.scene.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	e.scene.Objects = append(e.scene.Objects[:i], e.scene.Objects[i+1:]...)
	delete(e.scene.Simulations, id)
	e.version++
	return nil
}

func (e *Editor) update(id string, fn func(o *Object) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.scene.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if err := fn(&e.scene.Objects[i]); err != nil {
		return err
	}
	e.version++
	return nil
}

// SetScale sets the uniform scale of an object. Zero is allowed (the object becomes
// invisible); negative values are rejected.
func (e *Editor) SetScale(id string, scale float32) error {
	if scale < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidScale, scale)
	}
	return e.update(id, func(o *Object) error {
		o.Scale = Ptr(scale)
		return nil
	})
}

// ParseAxis maps "x", "y", "z" (any case) or "0".."2" to an axis index.
func ParseAxis(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x", "0":
		return 0, nil
	case "y", "1":
		return 1, nil
	case "z", "2":
		return 2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
}

// SetPosition sets one position component (axis 0..2) of an object. Components that were
// never set keep their default values.
func (e *Editor) SetPosition(id string, axis int, value float32) error {
	if axis < 0 || axis > 2 {
		return fmt.Errorf("%w: %d", ErrInvalidAxis, axis)
	}
	return e.update(id, func(o *Object) error {
		p := o.Pos()
		p[axis] = value
		o.Position = &p
		return nil
	})
}

// SetHiddenParts replaces the set of hidden part names. Names that match no part are kept
// and ignored at composition time.
func (e *Editor) SetHiddenParts(id string, names []string) error {
	return e.update(id, func(o *Object) error {
		seen := make(map[string]bool, len(names))
		o.HiddenParts = o.HiddenParts[:0:0]
		for _, n := range names {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			o.HiddenParts = append(o.HiddenParts, n)
		}
		return nil
	})
}

// SetColor replaces an object's color string.
func (e *Editor) SetColor(id, c string) error {
	return e.update(id, func(o *Object) error {
		o.Color = c
		return nil
	})
}

// SetEffect sets the simulation entry for an object.
func (e *Editor) SetEffect(id string, eff Effect) error {
	if !eff.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEffect, eff.Type)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene.Index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	e.scene.Simulations[id] = eff
	e.version++
	return nil
}

// ClearEffect removes the simulation entry for an object. Clearing an object without an
// entry is a no-op.
func (e *Editor) ClearEffect(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene.Index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	if _, ok := e.scene.Simulations[id]; ok {
		delete(e.scene.Simulations, id)
		e.version++
	}
	return nil
}

// Replace swaps in a whole new scene (e.g. after a file reload or a text request).
// Objects without ids get fresh ones.
func (e *Editor) Replace(s Scene) {
	s = clone(s)
	if s.Simulations == nil {
		s.Simulations = make(map[string]Effect)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range s.Objects {
		if s.Objects[i].ID == "" {
			s.Objects[i].ID = e.newID()
		}
	}
	e.scene = s
	e.version++
}

// Merge appends objects to the current scene, assigning ids where missing and skipping
// ids that already exist. It returns the ids that were added.
func (e *Editor) Merge(objs []Object) []string {
	var added []string
	for _, o := range objs {
		id, err := e.Add(o)
		if err != nil {
			continue
		}
		added = append(added, id)
	}
	return added
}
