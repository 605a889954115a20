package walkthrough

import (
	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/core/event"
	"github.com/vidago/vida/internal/errutil"
)

// Player performs the real-input equivalent of a step. Implementations
// return an oops error coded UNRESOLVED_TARGET when a name matches no
// object.
type Player interface {
	Interact(name string) error
	Look(name string) error
	Use(target, item string) error
	AssertLocation(scene string) error
}

type State int

const (
	StateIdle State = iota
	StatePlaying
)

func (s State) String() string {
	if s == StatePlaying {
		return "playing"
	}
	return "idle"
}

// Step outcomes reported on StepPlayed.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Driver is a secondary cursor into the recorded steps. It only moves
// forward and never plays a step at or beyond its target.
type Driver struct {
	steps    []Step
	index    int
	target   int
	state    State
	finished bool

	player Player
	bus    *event.Bus
	log    *zap.Logger
}

func NewDriver(player Player, bus *event.Bus, log *zap.Logger) *Driver {
	return &Driver{
		player: player,
		bus:    bus,
		log:    log,
	}
}

// Load replaces the step list and rewinds to the first step. The target
// is left alone.
func (d *Driver) Load(steps []Step) {
	d.steps = steps
	d.index = 0
	d.state = StateIdle
	d.finished = false
}

// AdvanceTarget allows auto-play up to (not including) step n. Lowering
// the target is ignored.
func (d *Driver) AdvanceTarget(n int) {
	if n <= d.target {
		return
	}
	d.target = n
	if d.Pending() {
		d.finished = false
	}
}

func (d *Driver) Index() int   { return d.index }
func (d *Driver) Target() int  { return d.target }
func (d *Driver) Len() int     { return len(d.steps) }
func (d *Driver) State() State { return d.state }

func (d *Driver) Steps() []Step {
	out := make([]Step, len(d.steps))
	copy(out, d.steps)
	return out
}

// Pending reports whether a step may be auto-played right now.
func (d *Driver) Pending() bool {
	return d.index < d.target && d.index < len(d.steps)
}

// Done reports the terminal state: every recorded step consumed.
func (d *Driver) Done() bool { return d.index >= len(d.steps) }

// Idle is the event queue's idle fallback.
func (d *Driver) Idle() bool { return d.Play() }

// Play synthesises exactly one step and reports whether it did.
func (d *Driver) Play() bool {
	if !d.Pending() || d.state == StatePlaying {
		return false
	}
	d.state = StatePlaying
	step := d.steps[d.index]
	idx := d.index
	d.index++

	outcome := d.dispatch(step)
	d.log.Info("walkthrough step",
		zap.Int("index", idx),
		zap.Stringer("step", step),
		zap.String("outcome", outcome),
	)
	event.Publish(d.bus, event.StepPlayed{
		Index:   idx,
		Kind:    string(step.Kind),
		Target:  step.Target,
		Extra:   step.Extra,
		Outcome: outcome,
	})
	d.state = StateIdle

	if !d.Pending() && !d.finished {
		d.finished = true
		event.Publish(d.bus, event.WalkthroughFinished{Index: d.index, Total: len(d.steps)})
	}
	return true
}

func (d *Driver) dispatch(step Step) string {
	var err error
	switch step.Kind {
	case KindInteract:
		err = d.player.Interact(step.Target)
	case KindLook:
		err = d.player.Look(step.Target)
	case KindUse:
		err = d.player.Use(step.Target, step.Extra)
	case KindLocation:
		err = d.player.AssertLocation(step.Target)
	case KindDescription:
		return OutcomeOK
	default:
		err = oops.Code(errutil.CodeUnresolvedTarget).
			With("kind", string(step.Kind)).
			Errorf("unknown step kind %q", step.Kind)
	}
	if err == nil {
		return OutcomeOK
	}
	if errutil.HasCode(err, errutil.CodeUnresolvedTarget) {
		errutil.LogError(d.log, "walkthrough step skipped", err)
		return OutcomeSkipped
	}
	errutil.LogError(d.log, "walkthrough step failed", err)
	return OutcomeFailed
}
