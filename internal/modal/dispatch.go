package modal

import (
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/object"
)

// Layer identifies which input tier received a release.
type Layer int

const (
	LayerNone Layer = iota
	LayerModal
	LayerMenu
	LayerScene
)

func (l Layer) String() string {
	switch l {
	case LayerModal:
		return "modal"
	case LayerMenu:
		return "menu"
	case LayerScene:
		return "scene"
	}
	return "none"
}

// Source lists the candidates of one input tier in test order.
type Source func() []*object.Object

// ActivateFunc fires an object's interact. Scene objects usually go
// through the session so hooks and default handlers apply.
type ActivateFunc func(o *object.Object, layer Layer)

// Dispatcher routes a pointer release to exactly one object. While the
// stack is non-empty only modal members are ever tested.
type Dispatcher struct {
	stack    *Stack
	menu     Source
	scene    Source
	activate ActivateFunc
	alive    func(*object.Object) bool
	log      *zap.Logger
}

func NewDispatcher(stack *Stack, menu, scene Source, activate ActivateFunc, log *zap.Logger) *Dispatcher {
	if activate == nil {
		activate = func(o *object.Object, _ Layer) { o.TriggerInteract() }
	}
	return &Dispatcher{
		stack:    stack,
		menu:     menu,
		scene:    scene,
		activate: activate,
		log:      log,
	}
}

// RequireAlive makes Hit skip objects for which alive reports false.
func (d *Dispatcher) RequireAlive(alive func(*object.Object) bool) { d.alive = alive }

func (d *Dispatcher) live(o *object.Object) bool {
	return d.alive == nil || d.alive(o)
}

// Release dispatches a click at (x, y) and reports whether any object
// received it.
func (d *Dispatcher) Release(x, y float64) bool {
	o, layer := d.Hit(x, y)
	if o == nil {
		return false
	}
	d.log.Debug("pointer release",
		zap.String("object", o.Name),
		zap.Stringer("layer", layer),
		zap.Float64("x", x),
		zap.Float64("y", y),
	)
	d.activate(o, layer)
	return true
}

// Hit returns the object a release at (x, y) would go to without firing
// it.
func (d *Dispatcher) Hit(x, y float64) (*object.Object, Layer) {
	if !d.stack.Empty() {
		// members may be popped by the interact, so test a snapshot
		for _, o := range d.stack.Members() {
			if o.AllowDraw && d.live(o) && o.Collide(x, y) {
				return o, LayerModal
			}
		}
		return nil, LayerNone
	}
	if o := d.firstHit(d.menu, x, y); o != nil {
		return o, LayerMenu
	}
	if o := d.firstHit(d.scene, x, y); o != nil {
		return o, LayerScene
	}
	return nil, LayerNone
}

func (d *Dispatcher) firstHit(src Source, x, y float64) *object.Object {
	if src == nil {
		return nil
	}
	for _, o := range src() {
		if !o.AllowDraw || !o.AllowInteract || !d.live(o) {
			continue
		}
		if o.Collide(x, y) {
			return o
		}
	}
	return nil
}
