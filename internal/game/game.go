// Package game is the session that owns every piece of scheduling state:
// the object registry, scenes, menu, modal stack, event queue and the
// walkthrough driver. It must only be touched from the game loop.
package game

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/vidago/vida/internal/core/event"
	"github.com/vidago/vida/internal/data"
	"github.com/vidago/vida/internal/modal"
	"github.com/vidago/vida/internal/object"
	"github.com/vidago/vida/internal/sched"
	"github.com/vidago/vida/internal/walkthrough"
)

type Options struct {
	Name              string
	ResolutionX       int
	ResolutionY       int
	Headless          bool
	CatchExceptions   bool
	MaxEventsPerFrame int
	PerObjectQueues   bool
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "game"
	}
	if o.ResolutionX <= 0 {
		o.ResolutionX = 1024
	}
	if o.ResolutionY <= 0 {
		o.ResolutionY = 768
	}
	if o.MaxEventsPerFrame <= 0 {
		o.MaxEventsPerFrame = 256
	}
	return o
}

// StateLoader fetches the ops of a named scene state.
type StateLoader func(scene, state string) ([]data.StateOp, error)

// Choice is one memoised ask answer.
type Choice struct {
	Actor  string
	Prompt string
	Option string
}

type Game struct {
	opts     Options
	activity object.Activity
	headless bool

	objects map[string]*object.Object
	order   []string
	scenes  map[string]*Scene
	scene   *Scene
	player  *object.Object
	visited []string

	menu      []*object.Object
	menus     [][]*object.Object
	modals    *modal.Stack
	dispatch  *modal.Dispatcher
	dismissed []*object.Object
	ids       *object.IDPool

	queue  sched.Scheduler
	driver *walkthrough.Driver
	bus    *event.Bus
	timers []*timer

	chosen   map[Choice]struct{}
	scripts  handlers
	flavour  map[string]int
	states   StateLoader
	finished bool

	observers []func(*event.Bus)

	camera  *Camera
	menuMgr *Menu
	log     *zap.Logger
}

func New(opts Options, log *zap.Logger) *Game {
	opts = opts.withDefaults()
	g := &Game{
		opts:     opts,
		headless: opts.Headless,
		objects:  make(map[string]*object.Object),
		scenes:   make(map[string]*Scene),
		modals:   modal.NewStack(),
		ids:      object.NewIDPool(),
		bus:      event.NewBus(),
		chosen:   make(map[Choice]struct{}),
		scripts:  newHandlers(),
		flavour:  make(map[string]int),
		log:      log,
	}
	g.camera = &Camera{game: g}
	g.menuMgr = &Menu{game: g}
	g.driver = walkthrough.NewDriver(replayer{g}, g.bus, log.Named("walkthrough"))

	qopts := []sched.Option{
		sched.WithStrict(!opts.CatchExceptions),
		sched.WithIdleHandler(g.driver),
	}
	if opts.PerObjectQueues {
		g.queue = sched.NewLanes(log.Named("queue"), qopts...)
	} else {
		g.queue = sched.NewQueue(log.Named("queue"), qopts...)
	}
	g.dispatch = modal.NewDispatcher(g.modals, g.MenuItems, g.SceneObjects, g.activate, log)
	g.dispatch.RequireAlive(g.Alive)
	g.subscribeInternal()
	return g
}

// ObjectName makes the session itself a queue target for game-wide
// actions such as wait, splash and set_menu.
func (g *Game) ObjectName() string { return g.opts.Name }

func (g *Game) Busy() bool { return g.activity != object.Idle }

func (g *Game) Options() Options                 { return g.opts }
func (g *Game) Log() *zap.Logger                 { return g.log }
func (g *Game) Bus() *event.Bus                  { return g.bus }
func (g *Game) Queue() sched.Scheduler           { return g.queue }
func (g *Game) Modals() *modal.Stack             { return g.modals }
func (g *Game) Walkthrough() *walkthrough.Driver { return g.driver }
func (g *Game) Camera() *Camera                  { return g.camera }
func (g *Game) Menu() *Menu                      { return g.menuMgr }
func (g *Game) Headless() bool                   { return g.headless }
func (g *Game) SetHeadless(v bool)               { g.headless = v }
func (g *Game) SetStateLoader(fn StateLoader)    { g.states = fn }

// WalkthroughFinished reports whether auto-play has reached its target.
// Raising the target again makes it false until the new target is met.
func (g *Game) WalkthroughFinished() bool {
	if g.finished && g.driver.Pending() {
		g.finished = false
	}
	return g.finished
}

// Add registers objects under their names. A later object with the same
// name replaces the earlier one.
func (g *Game) Add(objs ...*object.Object) {
	for _, o := range objs {
		if _, ok := g.objects[o.Name]; !ok {
			g.order = append(g.order, o.Name)
		}
		if o.ID.IsZero() {
			o.ID = g.ids.Allocate()
		}
		g.objects[o.Name] = o
		if fn := g.scripts.interact[o.Name]; fn != nil {
			g.bindInteract(o, fn)
		}
	}
}

func (g *Game) AddScene(scenes ...*Scene) {
	for _, s := range scenes {
		g.scenes[s.Name] = s
	}
}

// Object looks a registered object up by name, then by display text.
func (g *Game) Object(name string) *object.Object {
	if o, ok := g.objects[name]; ok {
		return o
	}
	for _, n := range g.order {
		if o := g.objects[n]; o.DisplayText != "" && o.DisplayText == name {
			return o
		}
	}
	return nil
}

// Objects lists registered objects in registration order.
func (g *Game) Objects() []*object.Object {
	out := make([]*object.Object, 0, len(g.order))
	for _, n := range g.order {
		out = append(out, g.objects[n])
	}
	return out
}

func (g *Game) SceneNamed(name string) *Scene { return g.scenes[name] }

func (g *Game) Scenes() []*Scene {
	out := make([]*Scene, 0, len(g.scenes))
	for _, s := range g.scenes {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Scene) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// Scene is the active scene, nil before the camera first moves.
func (g *Game) Scene() *Scene { return g.scene }

func (g *Game) Visited() []string { return slices.Clone(g.visited) }

func (g *Game) Player() *object.Object { return g.player }

func (g *Game) SetPlayer(name string) error {
	o := g.objects[name]
	if o == nil {
		return fmt.Errorf("set player: no object named %q", name)
	}
	g.player = o
	return nil
}

// SceneObjects lists the interactive candidates of the active scene.
func (g *Game) SceneObjects() []*object.Object {
	if g.scene == nil {
		return nil
	}
	return g.scene.Objects()
}

func (g *Game) MenuItems() []*object.Object { return slices.Clone(g.menu) }

// Chosen reports whether the player already picked this answer.
func (g *Game) Chosen(c Choice) bool {
	_, ok := g.chosen[c]
	return ok
}

func (g *Game) Choices() []Choice {
	out := make([]Choice, 0, len(g.chosen))
	for c := range g.chosen {
		out = append(out, c)
	}
	return out
}

// Click routes a pointer release through modal, menu and scene tiers.
func (g *Game) Click(x, y float64) bool {
	return g.dispatch.Release(x, y)
}

// Update advances walks and timers by dt seconds, then ticks the queue
// for as long as it reports it is safe to continue.
func (g *Game) Update(dt float64) { g.update(dt, false) }

// Step is Update with exactly one scheduling tick.
func (g *Game) Step(dt float64) { g.update(dt, true) }

func (g *Game) update(dt float64, single bool) {
	for _, o := range g.animated() {
		o.Step(dt)
	}
	g.advanceTimers(dt)

	if single {
		g.queue.Tick()
	} else {
		n := 0
		for g.queue.Tick() {
			n++
			if n >= g.opts.MaxEventsPerFrame {
				g.log.Warn("event budget exhausted for this frame",
					zap.Int("admitted", n),
					zap.Int("queued", g.queue.Len()),
				)
				break
			}
		}
	}

	// headless replays answer open asks without waiting for the queue
	if g.headless && g.modals.Len() > 0 && g.driver.Pending() {
		g.driver.Play()
	}
	g.bus.Flush()
}

func (g *Game) animated() []*object.Object {
	var out []*object.Object
	seen := make(map[*object.Object]bool)
	add := func(objs []*object.Object) {
		for _, o := range objs {
			if !seen[o] {
				seen[o] = true
				out = append(out, o)
			}
		}
	}
	add(g.SceneObjects())
	add(g.menu)
	add(g.modals.Members())
	// walkers that left the active scene still need to arrive
	for _, n := range g.order {
		if o := g.objects[n]; o.Walking() {
			add([]*object.Object{o})
		}
	}
	return out
}

// Alive reports whether o holds a live ID. Closed dialogue objects stop
// being alive once FlushDismissed releases them, so stale references to
// them no longer receive input.
func (g *Game) Alive(o *object.Object) bool {
	return o != nil && g.ids.Alive(o.ID)
}

// FlushDismissed releases the IDs of closed dialogue objects and returns
// how many were released.
func (g *Game) FlushDismissed() int {
	n := len(g.dismissed)
	for _, o := range g.dismissed {
		g.ids.Release(o.ID)
	}
	g.dismissed = g.dismissed[:0]
	return n
}

func (g *Game) dismiss(objs ...*object.Object) {
	g.dismissed = append(g.dismissed, objs...)
}

func (g *Game) newTransient(o *object.Object) *object.Object {
	o.ID = g.ids.Allocate()
	return o
}

// Observe registers engine-side observers on the session bus. Unlike
// designer observers they survive ResetHandlers.
func (g *Game) Observe(subscribe func(*event.Bus)) {
	g.observers = append(g.observers, subscribe)
	subscribe(g.bus)
}

func (g *Game) subscribeInternal() {
	event.Subscribe(g.bus, func(e event.WalkthroughFinished) {
		g.finished = true
		g.log.Info("walkthrough target reached",
			zap.Int("index", e.Index),
			zap.Int("total", e.Total),
		)
		g.queue.Enqueue("set_headless", func(*sched.Event) error {
			g.headless = false
			return nil
		}, g)
		if g.player != nil {
			g.Says(g.player, "Let's play.")
		}
	})
}
