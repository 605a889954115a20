package game

import (
	"fmt"
	"slices"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/core/event"
	"github.com/vidago/vida/internal/data"
	"github.com/vidago/vida/internal/errutil"
	"github.com/vidago/vida/internal/object"
	"github.com/vidago/vida/internal/sched"
)

// Every exported action below only enqueues. The work happens when the
// queue admits the event.

type SayOption func(*sayConfig)

type sayConfig struct {
	ok bool
}

// WithOK controls whether the message box carries an OK button.
func WithOK(show bool) SayOption {
	return func(c *sayConfig) { c.ok = show }
}

// Answer is one option of an ask.
type Answer struct {
	Text     string
	Callback AnswerFunc
}

// AnswerFunc runs when the player picks an option.
type AnswerFunc func(g *Game, option, player *object.Object) error

// Says shows text in a message box and holds the queue until the player
// dismisses it.
func (g *Game) Says(actor *object.Object, text string, opts ...SayOption) *sched.Event {
	cfg := sayConfig{ok: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return g.queue.Enqueue("says", func(*sched.Event) error {
		items := g.speak(actor, text, cfg.ok, object.Speaking)
		if g.headless {
			items[0].TriggerInteract()
		}
		return nil
	}, actor, text)
}

// Asks shows prompt with one clickable option per answer. Picking an
// answer closes the whole dialogue and runs only that answer's callback.
func (g *Game) Asks(actor *object.Object, prompt string, answers ...Answer) *sched.Event {
	return g.queue.Enqueue("asks", func(*sched.Event) error {
		items := g.speak(actor, prompt, false, object.Asking)
		for _, it := range items {
			it.CollideNever = true
		}
		label := items[1]
		label.Fullscreen = false

		all := slices.Clone(items)
		for i, ans := range answers {
			opt := g.newTransient(object.NewText(fmt.Sprintf("option%d", i), ans.Text))
			opt.X = label.X + 10
			opt.Y = label.Y + float64(i+1)*opt.Clickable.H + 5
			choice := Choice{Actor: actor.Name, Prompt: prompt, Option: ans.Text}
			opt.Dimmed = g.Chosen(choice)
			opt.SetInteract(func(btn *object.Object) {
				if !g.Alive(btn) {
					return
				}
				actor.Release()
				g.dismiss(g.modals.RemoveAll(all...)...)
				g.chosen[choice] = struct{}{}
				event.Publish(g.bus, event.OptionChosen{Actor: actor.Name, Prompt: prompt, Option: ans.Text})
				if ans.Callback != nil {
					g.guard("answer", btn.Label(), func() error { return ans.Callback(g, btn, g.player) })
				}
			})
			all = append(all, opt)
		}
		g.modals.Push(all[len(items):]...)
		return nil
	}, actor, prompt)
}

// speak builds the message box, label and optional OK button, marks the
// actor busy with activity and puts the queue into waiting mode. Any of
// the returned objects closes the whole box.
func (g *Game) speak(actor *object.Object, text string, ok bool, activity object.Activity) []*object.Object {
	resX, resY := float64(g.opts.ResolutionX), float64(g.opts.ResolutionY)
	box := g.newTransient(object.New("msgbox", object.KindItem))
	box.Clickable = object.Rect{W: resX * 0.6, H: resY * 0.25}
	if tmpl := g.objects["msgbox"]; tmpl != nil {
		box.Clickable = tmpl.Clickable
	}
	x := resX/2 - box.Clickable.W/2
	y := resY*0.9 - box.Clickable.H
	box.X, box.Y = x, y

	label := g.newTransient(object.NewText(text, text))
	label.Fullscreen = true
	label.X, label.Y = x+10, y+10

	items := []*object.Object{box, label}
	if ok {
		btn := g.newTransient(object.New("ok", object.KindItem))
		btn.Clickable = object.Rect{W: 40, H: 40}
		btn.X, btn.Y = x+box.Clickable.W-20, y+box.Clickable.H-20
		items = append(items, btn)
	}

	actor.Begin(activity)
	g.queue.Wait()

	closeBox := func(o *object.Object) {
		if !g.Alive(o) {
			return
		}
		g.dismiss(g.modals.RemoveAll(items...)...)
		actor.Finish(activity)
	}
	for _, it := range items {
		it.SetInteract(closeBox)
	}
	g.modals.Push(items...)
	return items
}

// Goto walks actor to (x, y). Headless sessions arrive at once.
func (g *Game) Goto(actor *object.Object, x, y float64) *sched.Event {
	return g.queue.Enqueue("goto", func(*sched.Event) error {
		g.walk(actor, x, y)
		return nil
	}, actor, x, y)
}

// Move walks actor by (dx, dy) from wherever it is when the event starts.
func (g *Game) Move(actor *object.Object, dx, dy float64) *sched.Event {
	return g.queue.Enqueue("move", func(*sched.Event) error {
		g.walk(actor, actor.X+dx, actor.Y+dy)
		return nil
	}, actor, dx, dy)
}

func (g *Game) walk(actor *object.Object, x, y float64) {
	// arrival observers run after the frame's queue work
	actor.WalkTo(x, y, func(o *object.Object) {
		event.Emit(g.bus, event.Arrived{Object: o.Name, X: o.X, Y: o.Y})
	})
	if g.headless {
		actor.Arrive()
	}
}

// Idle keeps actor busy for seconds of game time.
func (g *Game) Idle(actor *object.Object, seconds float64) *sched.Event {
	return g.queue.Enqueue("idle", func(*sched.Event) error {
		actor.Begin(object.Resting)
		if g.headless || seconds <= 0 {
			actor.Finish(object.Resting)
			return nil
		}
		g.after(seconds, func() { actor.Finish(object.Resting) })
		return nil
	}, actor, seconds)
}

// DoOnce plays action once and holds actor until it ends. The end comes
// from the action's configured duration, or from the renderer through
// AnimationEnded when none is configured.
func (g *Game) DoOnce(actor *object.Object, action string) *sched.Event {
	return g.queue.Enqueue("do_once", func(*sched.Event) error {
		actor.PlayOnce(action, nil)
		if g.headless {
			actor.AnimationEnded()
			return nil
		}
		if d := actor.Actions[action]; d > 0 {
			g.after(d, actor.AnimationEnded)
		}
		return nil
	}, actor, action)
}

// AnimationEnded is the renderer's completion callback for DoOnce.
func (g *Game) AnimationEnded(name string) {
	if o := g.objects[name]; o != nil {
		o.AnimationEnded()
	}
}

// Do switches actor to a looping action without blocking.
func (g *Game) Do(actor *object.Object, action string) *sched.Event {
	return g.queue.Enqueue("do", func(*sched.Event) error {
		actor.Action = action
		return nil
	}, actor, action)
}

// Relocate moves obj into scene at (x, y).
func (g *Game) Relocate(obj *object.Object, scene string, x, y float64) *sched.Event {
	return g.queue.Enqueue("relocate", func(*sched.Event) error {
		s := g.scenes[scene]
		if s == nil {
			return oops.Code(errutil.CodeUnknownScene).
				With("object", obj.Name).
				Errorf("relocate to unknown scene %q", scene)
		}
		s.add(g, obj)
		obj.X, obj.Y = x, y
		return nil
	}, obj, scene, x, y)
}

func (g *Game) Hide(obj *object.Object) *sched.Event {
	f := false
	return g.usage("hide", obj, data.Usage{Draw: &f, Update: &f})
}

func (g *Game) Show(obj *object.Object) *sched.Event {
	t := true
	return g.usage("show", obj, data.Usage{Draw: &t, Update: &t})
}

// Usage sets the player-facing flags of obj. Nil fields are untouched.
func (g *Game) Usage(obj *object.Object, u data.Usage) *sched.Event {
	return g.usage("usage", obj, u)
}

func (g *Game) usage(name string, obj *object.Object, u data.Usage) *sched.Event {
	return g.queue.Enqueue(name, func(*sched.Event) error {
		applyUsage(obj, u)
		return nil
	}, obj, u)
}

func applyUsage(o *object.Object, u data.Usage) {
	if u.Draw != nil {
		o.AllowDraw = *u.Draw
	}
	if u.Update != nil {
		o.AllowUpdate = *u.Update
	}
	if u.Look != nil {
		o.AllowLook = *u.Look
	}
	if u.Interact != nil {
		o.AllowInteract = *u.Interact
	}
	if u.Use != nil {
		o.AllowUse = *u.Use
	}
}

func (g *Game) Remember(actor *object.Object, fact string) *sched.Event {
	return g.queue.Enqueue("remember", func(*sched.Event) error {
		actor.Remember(fact)
		return nil
	}, actor, fact)
}

func (g *Game) Forget(actor *object.Object, fact string) *sched.Event {
	return g.queue.Enqueue("forget", func(*sched.Event) error {
		if !actor.Forget(fact) {
			g.log.Warn("cannot forget unknown fact",
				zap.String("object", actor.Name),
				zap.String("fact", fact),
			)
		}
		return nil
	}, actor, fact)
}

// Wait holds admission until every already started action has finished.
func (g *Game) Wait() *sched.Event {
	return g.queue.Enqueue("wait", func(*sched.Event) error {
		g.queue.Wait()
		return nil
	}, g)
}

// Splash shows scene for seconds, then runs cb. The session is busy and
// the queue waits until the splash ends.
func (g *Game) Splash(scene string, seconds float64, cb func(g *Game) error) *sched.Event {
	return g.queue.Enqueue("splash", func(*sched.Event) error {
		if g.scenes[scene] == nil {
			g.AddScene(NewScene(scene))
		}
		g.activity = object.Splashing
		g.queue.Wait()
		g.camera.SetScene(scene)
		finish := func() {
			g.activity = object.Idle
			if cb != nil {
				g.guard("splash", scene, func() error { return cb(g) })
			}
		}
		if g.headless || seconds <= 0 {
			finish()
			return nil
		}
		g.after(seconds, finish)
		return nil
	}, g, scene, seconds)
}

// SetMenu appends the named items to the current menu.
func (g *Game) SetMenu(names ...string) *sched.Event {
	return g.queue.Enqueue("set_menu", func(*sched.Event) error {
		for _, name := range names {
			o := g.objects[name]
			if o == nil {
				errutil.LogError(g.log, "menu item not found", unresolved(name))
				continue
			}
			if !slices.Contains(g.menu, o) {
				g.menu = append(g.menu, o)
			}
		}
		return nil
	}, g, names)
}

// CleanScene removes every object not named in keep. Portals and the
// player always stay.
func (g *Game) CleanScene(scene string, keep ...string) *sched.Event {
	s := g.sceneTarget(scene)
	return g.queue.Enqueue("clean", func(*sched.Event) error {
		for _, o := range s.Objects() {
			if slices.Contains(keep, o.Name) || o.Kind == object.KindPortal || o == g.player {
				continue
			}
			s.remove(o)
		}
		return nil
	}, s, keep)
}

func (g *Game) AddToScene(scene string, names ...string) *sched.Event {
	s := g.sceneTarget(scene)
	return g.queue.Enqueue("add", func(*sched.Event) error {
		for _, name := range names {
			o := g.objects[name]
			if o == nil {
				errutil.LogError(g.log, "cannot add to scene", unresolved(name))
				continue
			}
			s.add(g, o)
		}
		return nil
	}, s, names)
}

func (g *Game) RemoveFromScene(scene string, names ...string) *sched.Event {
	s := g.sceneTarget(scene)
	return g.queue.Enqueue("remove", func(*sched.Event) error {
		for _, name := range names {
			o := s.Find(name)
			if o == nil {
				g.log.Warn("object not in scene", zap.String("object", name), zap.String("scene", s.Name))
				continue
			}
			s.remove(o)
		}
		return nil
	}, s, names)
}

// sceneTarget returns the named scene, creating an empty one so the
// queued action has a target even when the scene is defined later.
func (g *Game) sceneTarget(name string) *Scene {
	s := g.scenes[name]
	if s == nil {
		s = NewScene(name)
		g.AddScene(s)
	}
	return s
}

// LoadState enqueues one action per op, in order. It is a queuing call,
// not a queued one.
func (g *Game) LoadState(scene string, ops []data.StateOp) {
	if g.scenes[scene] == nil {
		errutil.LogError(g.log, "load state", oops.
			Code(errutil.CodeUnknownScene).
			With("scene", scene).
			Errorf("unable to find scene %q", scene))
		return
	}
	for _, op := range ops {
		if op.Op == data.OpClean {
			g.CleanScene(scene, op.Keep...)
			continue
		}
		o := g.objects[op.Object]
		if o == nil {
			errutil.LogError(g.log, "state op skipped", unresolved(op.Object))
			continue
		}
		switch op.Op {
		case data.OpRelocate:
			dest := op.Scene
			if dest == "" {
				dest = scene
			}
			g.Relocate(o, dest, op.X, op.Y)
		case data.OpUsage:
			g.Usage(o, op.Usage)
		case data.OpDo:
			g.Do(o, op.Action)
		case data.OpDoOnce:
			g.DoOnce(o, op.Action)
		case data.OpHide:
			g.Hide(o)
		case data.OpShow:
			g.Show(o)
		case data.OpRemember:
			g.Remember(o, op.Fact)
		case data.OpForget:
			g.Forget(o, op.Fact)
		case data.OpAdd:
			g.AddToScene(scene, o.Name)
		case data.OpRemove:
			g.RemoveFromScene(scene, o.Name)
		default:
			g.log.Warn("unknown state op", zap.String("op", op.Op))
		}
	}
}

// LoadStateFile loads a named state through the configured loader.
func (g *Game) LoadStateFile(scene, state string) error {
	if g.states == nil {
		return fmt.Errorf("load state %s/%s: no state loader configured", scene, state)
	}
	ops, err := g.states(scene, state)
	if err != nil {
		return err
	}
	g.LoadState(scene, ops)
	return nil
}
