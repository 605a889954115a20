// Package object holds the actionable objects every queued event targets
// and the busy contract the scheduler relies on.
package object

import (
	"math"
	"slices"
)

type Kind int

const (
	KindActor Kind = iota
	KindItem
	KindPortal
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindActor:
		return "actor"
	case KindItem:
		return "item"
	case KindPortal:
		return "portal"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Activity is the tagged busy state of an object. Anything other than
// Idle blocks admission of further queued events on the object.
type Activity int

const (
	Idle Activity = iota
	Walking
	Speaking
	Asking
	Acting
	Resting
	Splashing
)

func (a Activity) String() string {
	switch a {
	case Idle:
		return "idle"
	case Walking:
		return "walking"
	case Speaking:
		return "speaking"
	case Asking:
		return "asking"
	case Acting:
		return "acting"
	case Resting:
		return "resting"
	case Splashing:
		return "splashing"
	}
	return "unknown"
}

// InteractFunc is what a click (or a synthesised click) on the object runs.
type InteractFunc func(o *Object)

type Object struct {
	ID          ID
	Name        string
	Kind        Kind
	DisplayText string
	Scene       string // owning scene, empty when off-stage
	Link        string // portals: destination scene

	X, Y       float64
	AX, AY     float64 // anchor offset applied to the clickable area
	Clickable  Rect
	Fullscreen bool // clickable area covers the whole screen
	// CollideNever makes the object ignore every pointer test while still
	// being a modal member (the box and label of an ask).
	CollideNever bool

	AllowDraw     bool
	AllowUpdate   bool
	AllowInteract bool
	AllowLook     bool
	AllowUse      bool

	Action  string
	Actions map[string]float64 // action name -> play-once duration in seconds
	Speed   float64            // walk speed, units per second; <= 0 arrives at once

	// Dimmed marks an ask option the player already chose once.
	Dimmed bool

	activity Activity
	interact InteractFunc
	facts    []string

	walking        bool
	goalX, goalY   float64
	onArrive       func(*Object)
	onAnimationEnd func(*Object)
}

func New(name string, kind Kind) *Object {
	return &Object{
		Name:          name,
		Kind:          kind,
		Clickable:     Rect{W: 70, H: 110},
		AllowDraw:     true,
		AllowUpdate:   true,
		AllowInteract: true,
		AllowLook:     true,
		AllowUse:      true,
		Action:        "idle",
	}
}

// NewText builds a text object; its clickable area is derived from the
// text length since there is no font metrics collaborator in the core.
func NewText(name, text string) *Object {
	o := New(name, KindText)
	o.DisplayText = text
	o.Clickable = Rect{W: float64(len(text)) * 12, H: 26}
	return o
}

// Label is the text shown to the player: DisplayText, or Name.
func (o *Object) Label() string {
	if o.DisplayText != "" {
		return o.DisplayText
	}
	return o.Name
}

// ObjectName satisfies the scheduler target contract.
func (o *Object) ObjectName() string { return o.Name }

func (o *Object) Busy() bool { return o.activity != Idle }

func (o *Object) Activity() Activity { return o.activity }

// Begin marks the object busy with a. Handlers call it before scheduling
// any asynchronous completion.
func (o *Object) Begin(a Activity) {
	o.activity = a
}

// Finish clears the busy state only if the object is still busy with a.
// A completion for an activity that has already been replaced is ignored.
func (o *Object) Finish(a Activity) bool {
	if o.activity != a || a == Idle {
		return false
	}
	o.activity = Idle
	return true
}

// Release forces the object idle. Safe to call repeatedly.
func (o *Object) Release() {
	o.activity = Idle
	o.walking = false
}

func (o *Object) SetInteract(fn InteractFunc) { o.interact = fn }

func (o *Object) HasInteract() bool { return o.interact != nil }

// TriggerInteract runs the interact callback exactly as a click would.
func (o *Object) TriggerInteract() {
	if o.interact != nil {
		o.interact(o)
	}
}

// ClickableArea is the clickable rect in screen space.
func (o *Object) ClickableArea() Rect {
	return o.Clickable.Move(o.X+o.AX, o.Y+o.AY)
}

func (o *Object) Collide(x, y float64) bool {
	if o.CollideNever {
		return false
	}
	if o.Fullscreen {
		return true
	}
	return o.ClickableArea().Contains(x, y)
}

// Remember adds fact to the object's memory.
func (o *Object) Remember(fact string) {
	if !slices.Contains(o.facts, fact) {
		o.facts = append(o.facts, fact)
	}
}

// Forget removes fact and reports whether it was known.
func (o *Object) Forget(fact string) bool {
	i := slices.Index(o.facts, fact)
	if i < 0 {
		return false
	}
	o.facts = slices.Delete(o.facts, i, i+1)
	return true
}

func (o *Object) Remembers(fact string) bool {
	return slices.Contains(o.facts, fact)
}

func (o *Object) Facts() []string { return slices.Clone(o.facts) }

// WalkTo starts a walk and marks the object Walking. onArrive runs once
// the destination is reached, after the busy state has been cleared.
func (o *Object) WalkTo(x, y float64, onArrive func(*Object)) {
	o.Begin(Walking)
	o.walking = true
	o.goalX, o.goalY = x, y
	o.onArrive = onArrive
	if o.Speed <= 0 {
		o.Arrive()
	}
}

func (o *Object) Walking() bool { return o.walking }

// Step advances an in-flight walk by dt seconds.
func (o *Object) Step(dt float64) {
	if !o.walking || !o.AllowUpdate {
		return
	}
	dx, dy := o.goalX-o.X, o.goalY-o.Y
	dist := math.Hypot(dx, dy)
	travel := o.Speed * dt
	if dist <= travel || dist == 0 {
		o.Arrive()
		return
	}
	o.X += dx / dist * travel
	o.Y += dy / dist * travel
}

// Arrive completes an in-flight walk at its destination.
func (o *Object) Arrive() {
	if !o.walking {
		return
	}
	o.X, o.Y = o.goalX, o.goalY
	o.walking = false
	o.Finish(Walking)
	if fn := o.onArrive; fn != nil {
		o.onArrive = nil
		fn(o)
	}
}

// PlayOnce switches to action and marks the object Acting until
// AnimationEnded is reported by the rendering collaborator.
func (o *Object) PlayOnce(action string, onEnd func(*Object)) {
	o.Action = action
	o.Begin(Acting)
	o.onAnimationEnd = onEnd
}

// AnimationEnded is called by the renderer when a play-once action ends.
func (o *Object) AnimationEnded() {
	if !o.Finish(Acting) {
		return
	}
	o.Action = "idle"
	if fn := o.onAnimationEnd; fn != nil {
		o.onAnimationEnd = nil
		fn(o)
	}
}
