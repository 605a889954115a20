package game

import (
	"fmt"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/core/event"
	"github.com/vidago/vida/internal/errutil"
	"github.com/vidago/vida/internal/modal"
	"github.com/vidago/vida/internal/object"
	"github.com/vidago/vida/internal/sched"
)

// ObjectFunc is a designer handler for interact and look.
type ObjectFunc func(g *Game, obj, player *object.Object) error

// UseFunc handles using item on target.
type UseFunc func(g *Game, target, item, player *object.Object) error

// SceneFunc is a camera hook.
type SceneFunc func(g *Game, scene *Scene, player *object.Object) error

type useKey struct{ target, item string }

// handlers is the load-time registry of designer scripts, keyed by
// object and scene name.
type handlers struct {
	interact   map[string]ObjectFunc
	look       map[string]ObjectFunc
	use        map[useKey]UseFunc
	precamera  map[string]SceneFunc
	postcamera map[string]SceneFunc
}

func newHandlers() handlers {
	return handlers{
		interact:   make(map[string]ObjectFunc),
		look:       make(map[string]ObjectFunc),
		use:        make(map[useKey]UseFunc),
		precamera:  make(map[string]SceneFunc),
		postcamera: make(map[string]SceneFunc),
	}
}

var (
	itemFlavour = []string{
		"It's not very interesting.",
		"I'm not sure what you want me to do with that.",
		"I've already tried using that, it just won't fit.",
	}
	actorFlavour = []string{
		"They're not responding to my hails.",
		"Perhaps they need a good poking.",
		"They don't want to talk to me.",
	}
)

const defaultUse = "I don't think that will work."

// SetInteract binds the interact handler for an object.
func (g *Game) SetInteract(name string, fn ObjectFunc) {
	g.scripts.interact[name] = fn
	if o := g.objects[name]; o != nil {
		g.bindInteract(o, fn)
	}
}

func (g *Game) bindInteract(o *object.Object, fn ObjectFunc) {
	if fn == nil {
		o.SetInteract(nil)
		return
	}
	o.SetInteract(func(x *object.Object) {
		g.guard("interact", x.Name, func() error { return fn(g, x, g.player) })
	})
}

func (g *Game) SetLook(name string, fn ObjectFunc) { g.scripts.look[name] = fn }

func (g *Game) SetUse(target, item string, fn UseFunc) {
	g.scripts.use[useKey{target: target, item: item}] = fn
}

// SetCameraHook registers a precamera (pre=true) or postcamera hook.
func (g *Game) SetCameraHook(scene string, pre bool, fn SceneFunc) {
	if pre {
		g.scripts.precamera[scene] = fn
		return
	}
	g.scripts.postcamera[scene] = fn
}

// ResetHandlers drops every designer handler and designer observer so a
// script reload starts from a clean registry.
func (g *Game) ResetHandlers() {
	for name := range g.scripts.interact {
		if o := g.objects[name]; o != nil {
			o.SetInteract(nil)
		}
	}
	g.scripts = newHandlers()
	g.bus.Reset()
	g.subscribeInternal()
	for _, subscribe := range g.observers {
		subscribe(g.bus)
	}
}

// guard runs a designer handler outside the queue with the same failure
// policy the queue applies.
func (g *Game) guard(kind, name string, fn func() error) {
	sched.Guard(g.log, !g.opts.CatchExceptions, kind, name, fn)
}

func (g *Game) runSceneHook(hooks map[string]SceneFunc, kind string, s *Scene) {
	if fn := hooks[s.Name]; fn != nil {
		g.guard(kind, s.Name, func() error { return fn(g, s, g.player) })
	}
}

// activate is the dispatcher callback. Modal members fire directly;
// menu and scene objects go through the interact pipeline.
func (g *Game) activate(o *object.Object, layer modal.Layer) {
	if !g.Alive(o) {
		return
	}
	if layer == modal.LayerModal {
		o.TriggerInteract()
		return
	}
	g.Interact(o)
}

// Interact runs o's interact exactly as a click would, wrapped in the
// pre and post interact observers.
func (g *Game) Interact(o *object.Object) {
	if o == nil {
		return
	}
	if !g.Alive(o) {
		g.log.Debug("interact on released object", zap.String("object", o.Name))
		return
	}
	player := g.playerName()
	event.Publish(g.bus, event.Interacted{Object: o.Name, Player: player, Pre: true})
	if o.HasInteract() {
		o.TriggerInteract()
	} else {
		g.defaultInteract(o)
	}
	event.Publish(g.bus, event.Interacted{Object: o.Name, Player: player})
}

func (g *Game) defaultInteract(o *object.Object) {
	if o.Kind == object.KindPortal {
		g.travel(o)
		return
	}
	errutil.LogWarn(g.log, "no interact script, using default", oops.
		Code(errutil.CodeMissingScript).
		With("object", o.Name).
		Errorf("no interact handler for %q", o.Name))
	if g.player == nil {
		return
	}
	lines := itemFlavour
	if o.Kind == object.KindActor {
		lines = actorFlavour
	}
	n := g.flavour[o.Name]
	g.flavour[o.Name] = n + 1
	g.Says(g.player, lines[n%len(lines)])
}

// travel is the default portal behaviour: walk to it, then follow the
// link to its scene.
func (g *Game) travel(portal *object.Object) {
	if portal.Link == "" {
		g.log.Warn("portal has no link", zap.String("portal", portal.Name))
		return
	}
	if g.player != nil {
		g.Goto(g.player, portal.X, portal.Y)
		g.Relocate(g.player, portal.Link, portal.X, portal.Y)
	}
	g.camera.Scene(portal.Link)
}

// Look runs the look handler or the default description.
func (g *Game) Look(o *object.Object) {
	if !o.AllowLook {
		return
	}
	if fn := g.scripts.look[o.Name]; fn != nil {
		g.guard("look", o.Name, func() error { return fn(g, o, g.player) })
		return
	}
	if g.player != nil {
		g.Says(g.player, fmt.Sprintf("It's just a %s.", o.Label()))
	}
}

// Use runs the handler for using item on target, or the default refusal.
func (g *Game) Use(target, item *object.Object) {
	if !target.AllowUse {
		return
	}
	if fn := g.scripts.use[useKey{target: target.Name, item: item.Name}]; fn != nil {
		g.guard("use", target.Name, func() error { return fn(g, target, item, g.player) })
		return
	}
	errutil.LogWarn(g.log, "no use script, using default", oops.
		Code(errutil.CodeMissingScript).
		With("target", target.Name).
		With("item", item.Name).
		Errorf("no use handler for %q on %q", item.Name, target.Name))
	if g.player != nil {
		g.Says(g.player, defaultUse)
	}
}

func (g *Game) playerName() string {
	if g.player == nil {
		return ""
	}
	return g.player.Name
}
