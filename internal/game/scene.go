package game

import (
	"slices"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/core/event"
	"github.com/vidago/vida/internal/data"
	"github.com/vidago/vida/internal/errutil"
	"github.com/vidago/vida/internal/object"
	"github.com/vidago/vida/internal/sched"
)

// Scene is an ordered set of objects. It is a queue target for add,
// remove and clean, and is never busy.
type Scene struct {
	Name        string
	DisplayText string
	objects     []*object.Object
}

func NewScene(name string) *Scene { return &Scene{Name: name} }

func (s *Scene) ObjectName() string { return s.Name }
func (s *Scene) Busy() bool         { return false }

// Objects returns the scene's objects in the order they were added.
func (s *Scene) Objects() []*object.Object { return slices.Clone(s.objects) }

func (s *Scene) Contains(name string) bool { return s.Find(name) != nil }

func (s *Scene) Find(name string) *object.Object {
	for _, o := range s.objects {
		if o.Name == name {
			return o
		}
	}
	for _, o := range s.objects {
		if o.DisplayText != "" && o.DisplayText == name {
			return o
		}
	}
	return nil
}

// add moves o into s, taking it out of any scene it was in.
func (s *Scene) add(g *Game, o *object.Object) {
	if o.Scene != "" && o.Scene != s.Name {
		if prev := g.scenes[o.Scene]; prev != nil {
			prev.remove(o)
		}
	}
	o.Scene = s.Name
	if !slices.Contains(s.objects, o) {
		s.objects = append(s.objects, o)
	}
}

func (s *Scene) remove(o *object.Object) bool {
	i := slices.Index(s.objects, o)
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	if o.Scene == s.Name {
		o.Scene = ""
	}
	return true
}

// Camera switches the active scene as a queued action.
type Camera struct {
	game *Game
}

func (c *Camera) ObjectName() string { return "camera" }
func (c *Camera) Busy() bool         { return false }

// Scene queues a switch to the named scene. The precamera hook runs
// before the switch and the postcamera hook after it.
func (c *Camera) Scene(name string) *sched.Event {
	g := c.game
	return g.queue.Enqueue("scene", func(*sched.Event) error {
		s := g.scenes[name]
		if s == nil {
			errutil.LogError(g.log, "camera cannot switch scene", oops.
				Code(errutil.CodeUnknownScene).
				With("scene", name).
				Errorf("unknown scene %q, staying on current scene", name))
			return nil
		}
		g.runSceneHook(g.scripts.precamera, "precamera", s)
		c.SetScene(name)
		g.runSceneHook(g.scripts.postcamera, "postcamera", s)
		return nil
	}, c, name)
}

// SetScene switches immediately without hooks. Used during setup and by
// the queued switch.
func (c *Camera) SetScene(name string) bool {
	g := c.game
	s := g.scenes[name]
	if s == nil {
		errutil.LogError(g.log, "camera cannot switch scene", oops.
			Code(errutil.CodeUnknownScene).
			With("scene", name).
			Errorf("unknown scene %q, staying on current scene", name))
		return false
	}
	from := ""
	if g.scene != nil {
		from = g.scene.Name
	}
	g.scene = s
	first := !slices.Contains(g.visited, s.Name)
	if first {
		g.visited = append(g.visited, s.Name)
	}
	g.log.Debug("scene changed", zap.String("from", from), zap.String("to", s.Name))
	event.Publish(g.bus, event.SceneChanged{From: from, To: s.Name})
	if first {
		g.loadInitialState(s)
	}
	return true
}

func (g *Game) loadInitialState(s *Scene) {
	if g.states == nil {
		return
	}
	ops, err := g.states(s.Name, "initial")
	if err != nil {
		if !data.IsMissing(err) {
			g.log.Error("load initial state", zap.String("scene", s.Name), zap.Error(err))
		}
		return
	}
	g.LoadState(s.Name, ops)
}

// Menu manages the current menu and the stack of pushed menus. Its
// operations are queued like any other action.
type Menu struct {
	game *Game
}

func (m *Menu) ObjectName() string { return "menu" }
func (m *Menu) Busy() bool         { return false }

// Push saves the current menu and starts an empty one.
func (m *Menu) Push() *sched.Event {
	g := m.game
	return g.queue.Enqueue("menu_push", func(*sched.Event) error {
		g.menus = append(g.menus, g.menu)
		g.menu = nil
		return nil
	}, m)
}

// Pop restores the most recently pushed menu.
func (m *Menu) Pop() *sched.Event {
	g := m.game
	return g.queue.Enqueue("menu_pop", func(*sched.Event) error {
		if n := len(g.menus); n > 0 {
			g.menu = g.menus[n-1]
			g.menus = g.menus[:n-1]
		}
		return nil
	}, m)
}

// Clear empties the current menu, or removes only the named items.
func (m *Menu) Clear(names ...string) *sched.Event {
	g := m.game
	return g.queue.Enqueue("menu_clear", func(*sched.Event) error {
		if len(names) == 0 {
			g.menu = nil
			return nil
		}
		g.menu = slices.DeleteFunc(g.menu, func(o *object.Object) bool {
			return slices.Contains(names, o.Name)
		})
		return nil
	}, m)
}

func (m *Menu) Show(names ...string) *sched.Event {
	return m.setVisible("menu_show", true, names)
}

func (m *Menu) Hide(names ...string) *sched.Event {
	return m.setVisible("menu_hide", false, names)
}

func (m *Menu) setVisible(handler string, visible bool, names []string) *sched.Event {
	g := m.game
	return g.queue.Enqueue(handler, func(*sched.Event) error {
		for _, o := range g.menu {
			if len(names) == 0 || slices.Contains(names, o.Name) {
				o.AllowDraw = visible
			}
		}
		return nil
	}, m)
}
