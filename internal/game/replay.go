package game

import (
	"github.com/samber/oops"

	"github.com/vidago/vida/internal/errutil"
	"github.com/vidago/vida/internal/object"
)

// replayer feeds walkthrough steps into the normal input path.
type replayer struct {
	g *Game
}

// Resolve finds name the way a click would reach it: modal members
// first, then the menu, then the active scene. Names match the object
// name or its display text.
func (g *Game) Resolve(name string) (*object.Object, bool) {
	if o := g.modals.Find(name); o != nil {
		return o, true
	}
	for _, o := range g.menu {
		if o.Name == name || (o.DisplayText != "" && o.DisplayText == name) {
			return o, false
		}
	}
	if g.scene != nil {
		if o := g.scene.Find(name); o != nil {
			return o, false
		}
	}
	return nil, false
}

func unresolved(name string) error {
	return oops.Code(errutil.CodeUnresolvedTarget).
		With("name", name).
		Errorf("no modal, menu item or scene object named %q", name)
}

func (r replayer) Interact(name string) error {
	o, modal := r.g.Resolve(name)
	if o == nil {
		return unresolved(name)
	}
	if modal {
		if !r.g.Alive(o) {
			return unresolved(name)
		}
		o.TriggerInteract()
		return nil
	}
	r.g.Interact(o)
	return nil
}

func (r replayer) Look(name string) error {
	o, _ := r.g.Resolve(name)
	if o == nil {
		return unresolved(name)
	}
	r.g.Look(o)
	return nil
}

// Use resolves the target like a click and the item from the registry,
// since inventory items need not be on screen.
func (r replayer) Use(target, item string) error {
	t, _ := r.g.Resolve(target)
	if t == nil {
		return unresolved(target)
	}
	it := r.g.Object(item)
	if it == nil {
		return unresolved(item)
	}
	r.g.Use(t, it)
	return nil
}

func (r replayer) AssertLocation(scene string) error {
	current := ""
	if r.g.scene != nil {
		current = r.g.scene.Name
	}
	if current != scene {
		return oops.Code(errutil.CodeAssertFailed).
			With("want", scene).
			With("got", current).
			Errorf("expected to be in scene %q, in %q", scene, current)
	}
	return nil
}
