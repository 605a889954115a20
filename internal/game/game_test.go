package game

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vidago/vida/internal/core/event"
	"github.com/vidago/vida/internal/data"
	"github.com/vidago/vida/internal/errutil"
	"github.com/vidago/vida/internal/object"
	"github.com/vidago/vida/internal/sched"
	"github.com/vidago/vida/internal/walkthrough"
)

func newTestGame(t *testing.T, opts Options, m *data.Manifest) *Game {
	t.Helper()
	opts.CatchExceptions = true
	g := New(opts, zap.NewNop())
	if m != nil {
		start, err := g.Build(m)
		require.NoError(t, err)
		if start != "" {
			require.True(t, g.Camera().SetScene(start))
		}
	}
	return g
}

func cursor(t *testing.T, g *Game) int {
	t.Helper()
	q, ok := g.Queue().(*sched.Queue)
	require.True(t, ok, "global queue expected")
	return q.Cursor()
}

func labels(objs []*object.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Label()
	}
	return out
}

func TestSays_HoldsQueueUntilDismissed(t *testing.T) {
	g := newTestGame(t, Options{}, nil)
	a := object.New("A", object.KindActor)
	g.Add(a)

	g.Says(a, "Hello", WithOK(false))
	g.Says(a, "Goodbye", WithOK(false))

	g.Step(0)
	assert.Equal(t, 1, cursor(t, g))
	assert.True(t, a.Busy())
	assert.Equal(t, object.Speaking, a.Activity())
	require.Equal(t, 2, g.Modals().Len(), "box and text")

	g.Step(0)
	assert.Equal(t, 1, cursor(t, g), "still waiting")
	assert.Equal(t, 2, g.Modals().Len())

	g.Modals().Members()[0].TriggerInteract()
	assert.Zero(t, g.Modals().Len())
	assert.False(t, a.Busy())
	assert.Equal(t, 1, cursor(t, g), "retirement waits for the next tick")

	g.Step(0)
	assert.Equal(t, 1, cursor(t, g))
	assert.Equal(t, []string{"says"}, g.Queue().Names())
	require.Equal(t, 2, g.Modals().Len())
	assert.Equal(t, "Goodbye", g.Modals().Members()[1].DisplayText)
}

func TestSays_ClickAnywhereCloses(t *testing.T) {
	g := newTestGame(t, Options{}, nil)
	a := object.New("A", object.KindActor)
	g.Add(a)
	g.Says(a, "Hello")
	g.Update(0)
	require.Equal(t, []string{"msgbox", "Hello", "ok"}, labels(g.Modals().Members()))

	assert.True(t, g.Click(1, 1), "the text covers the screen")
	assert.Zero(t, g.Modals().Len())
	assert.False(t, a.Busy())
	assert.Equal(t, 3, g.FlushDismissed())
	assert.Zero(t, g.FlushDismissed())
}

func TestSays_HeadlessAutoResolves(t *testing.T) {
	g := newTestGame(t, Options{Headless: true}, nil)
	a := object.New("A", object.KindActor)
	g.Add(a)
	g.Says(a, "Hello")
	g.Says(a, "Goodbye")

	g.Update(0)
	g.Update(0)
	assert.Zero(t, g.Modals().Len())
	assert.False(t, a.Busy())
	assert.Zero(t, g.Queue().Len())
}

func TestAsks_OnlyPickedCallbackRuns(t *testing.T) {
	g := newTestGame(t, Options{}, nil)
	guard := object.New("Guard", object.KindActor)
	g.Add(guard)

	var picked []int
	answer := func(n int) AnswerFunc {
		return func(*Game, *object.Object, *object.Object) error {
			picked = append(picked, n)
			return nil
		}
	}
	var chosen []event.OptionChosen
	event.Subscribe(g.Bus(), func(e event.OptionChosen) { chosen = append(chosen, e) })

	ask := func() {
		g.Asks(guard, "Friend or foe?",
			Answer{Text: "Friend", Callback: answer(1)},
			Answer{Text: "Foe", Callback: answer(2)},
			Answer{Text: "Neither", Callback: answer(3)},
		)
	}
	ask()
	g.Update(0)

	members := g.Modals().Members()
	require.Len(t, members, 5, "box, label and three options")
	assert.True(t, members[0].CollideNever)
	assert.True(t, members[1].CollideNever)
	assert.Equal(t, object.Asking, guard.Activity())

	opt := members[3] // "Foe"
	require.Equal(t, "Foe", opt.DisplayText)
	x, y := opt.ClickableArea().Center()
	require.True(t, g.Click(x, y))

	assert.Equal(t, []int{2}, picked)
	assert.Zero(t, g.Modals().Len())
	assert.False(t, guard.Busy())
	assert.True(t, g.Chosen(Choice{Actor: "Guard", Prompt: "Friend or foe?", Option: "Foe"}))
	assert.Equal(t, []event.OptionChosen{{Actor: "Guard", Prompt: "Friend or foe?", Option: "Foe"}}, chosen)

	ask()
	g.Update(0)
	members = g.Modals().Members()
	require.Len(t, members, 5)
	assert.False(t, members[2].Dimmed)
	assert.True(t, members[3].Dimmed, "chosen before")
	assert.False(t, members[4].Dimmed)
}

func TestModalExclusivity(t *testing.T) {
	g := newTestGame(t, Options{}, &data.Manifest{
		Start:  "cell",
		Scenes: []data.SceneDef{{Name: "cell"}},
		Objects: []data.ObjectDef{
			{Name: "A", Kind: "actor", Scene: "cell", X: 900, Y: 0},
			{Name: "door", Kind: "item", Scene: "cell", Clickable: &data.RectDef{W: 50, H: 50}},
		},
	})
	hits := 0
	g.SetInteract("door", func(*Game, *object.Object, *object.Object) error {
		hits++
		return nil
	})
	g.Says(g.Object("A"), "Hold on", WithOK(false))
	g.Update(0)
	require.Equal(t, 2, g.Modals().Len())

	// the text is fullscreen, so it takes the click, never the door
	g.Click(10, 10)
	assert.Zero(t, hits)

	g.Update(0)
	require.Zero(t, g.Modals().Len())
	assert.True(t, g.Click(10, 10))
	assert.Equal(t, 1, hits)
}

func TestWalkthrough_HeadlessScenario(t *testing.T) {
	g := newTestGame(t, Options{Headless: true}, &data.Manifest{
		Start:   "_test_scene",
		Scenes:  []data.SceneDef{{Name: "_test_scene"}},
		Objects: []data.ObjectDef{{Name: "_test_actor", Kind: "actor", Scene: "_test_scene"}},
	})
	actor := g.Object("_test_actor")
	say := func(text string) AnswerFunc {
		return func(g *Game, _, _ *object.Object) error {
			g.Says(actor, text, WithOK(false))
			return nil
		}
	}
	g.SetInteract("_test_actor", func(g *Game, a, _ *object.Object) error {
		g.Asks(a, "What should we do?",
			Answer{Text: "Hello World", Callback: say("Hello World")},
			Answer{Text: "Goodbye World", Callback: say("Goodbye World")},
		)
		return nil
	})
	var played []event.StepPlayed
	event.Subscribe(g.Bus(), func(e event.StepPlayed) { played = append(played, e) })

	d := g.Walkthrough()
	d.Load(walkthrough.Flatten([]walkthrough.Step{
		walkthrough.Description("Test Test Suite"),
		walkthrough.Location("_test_scene"),
		walkthrough.Interact("_test_actor"),
		walkthrough.Interact("Hello World"),
	}))
	d.AdvanceTarget(4)

	g.Step(0) // description
	assert.Equal(t, 1, d.Index())
	assert.Zero(t, g.Queue().Len())

	g.Step(0) // location assert
	g.Step(0) // interact queues the ask
	assert.Equal(t, []string{"asks"}, g.Queue().Names())

	g.Step(0) // ask opens, headless replay picks "Hello World"
	assert.Equal(t, 4, d.Index())
	assert.Zero(t, g.Modals().Len())
	assert.Equal(t, []string{"asks", "says", "set_headless"}, g.Queue().Names())
	assert.True(t, g.WalkthroughFinished())

	g.Update(0)
	assert.Zero(t, g.Queue().Len())
	assert.Zero(t, g.Modals().Len())
	assert.False(t, g.Headless(), "session leaves headless mode once the target is reached")
	assert.True(t, g.Chosen(Choice{Actor: "_test_actor", Prompt: "What should we do?", Option: "Hello World"}))

	require.Len(t, played, 4)
	for _, p := range played {
		assert.Equal(t, walkthrough.OutcomeOK, p.Outcome, p.Kind)
	}
}

func TestWalkthrough_UnresolvedStepIsSkipped(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := New(Options{CatchExceptions: true}, zap.New(core))
	g.AddScene(NewScene("cell"))
	g.Camera().SetScene("cell")

	d := g.Walkthrough()
	d.Load([]walkthrough.Step{walkthrough.Interact("ghost"), walkthrough.Location("attic")})
	d.AdvanceTarget(2)
	g.Step(0)
	g.Step(0)

	assert.Equal(t, 2, d.Index())
	skipped := logs.FilterMessage("walkthrough step skipped").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, errutil.CodeUnresolvedTarget, skipped[0].ContextMap()["code"])
	failed := logs.FilterMessage("walkthrough step failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, errutil.CodeAssertFailed, failed[0].ContextMap()["code"])
}

func TestCamera_EventOrder(t *testing.T) {
	g := newTestGame(t, Options{Headless: true}, &data.Manifest{
		Scenes:  []data.SceneDef{{Name: "_test_scene"}},
		Objects: []data.ObjectDef{{Name: "_test_actor", Kind: "actor"}},
	})
	actor := g.Object("_test_actor")
	var order []string
	g.SetCameraHook("_test_scene", true, func(*Game, *Scene, *object.Object) error {
		order = append(order, "precamera")
		return nil
	})
	g.SetCameraHook("_test_scene", false, func(*Game, *Scene, *object.Object) error {
		order = append(order, "postcamera")
		return nil
	})
	event.Subscribe(g.Bus(), func(e event.SceneChanged) { order = append(order, "changed:"+e.To) })

	g.Says(actor, "Hello World", WithOK(false))
	g.Camera().Scene("_test_scene")
	g.Says(actor, "Goodbye World", WithOK(false))
	assert.Equal(t, []string{"says", "scene", "says"}, g.Queue().Names())

	g.Step(0) // says starts and resolves
	g.Step(0) // says retires, camera moves
	assert.Equal(t, []string{"scene", "says"}, g.Queue().Names())
	assert.Equal(t, []string{"precamera", "changed:_test_scene", "postcamera"}, order)
	assert.Equal(t, "_test_scene", g.Scene().Name)
	assert.Equal(t, []string{"_test_scene"}, g.Visited())

	g.Step(0)
	assert.Equal(t, []string{"says"}, g.Queue().Names())
}

func TestCamera_UnknownSceneStays(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := New(Options{CatchExceptions: true}, zap.New(core))
	g.AddScene(NewScene("cell"))
	g.Camera().SetScene("cell")

	g.Camera().Scene("moon")
	g.Update(0)
	assert.Equal(t, "cell", g.Scene().Name)
	entries := logs.FilterMessage("camera cannot switch scene").All()
	require.Len(t, entries, 1)
	assert.Equal(t, errutil.CodeUnknownScene, entries[0].ContextMap()["code"])
}

func TestCamera_InitialStateOnFirstEntry(t *testing.T) {
	g := newTestGame(t, Options{}, &data.Manifest{
		Scenes:  []data.SceneDef{{Name: "cell"}, {Name: "yard"}},
		Objects: []data.ObjectDef{{Name: "Guard", Kind: "actor"}},
	})
	loads := 0
	g.SetStateLoader(func(scene, state string) ([]data.StateOp, error) {
		require.Equal(t, "initial", state)
		if scene != "cell" {
			return nil, fmt.Errorf("read state %s/%s: %w", scene, state, os.ErrNotExist)
		}
		loads++
		return []data.StateOp{{Op: data.OpRelocate, Object: "Guard", X: 5, Y: 6}}, nil
	})

	g.Camera().Scene("cell")
	g.Camera().Scene("yard")
	g.Camera().Scene("cell")
	g.Update(0)

	assert.Equal(t, 1, loads, "initial state only on first entry")
	guard := g.Object("Guard")
	assert.Equal(t, "cell", guard.Scene)
	assert.Equal(t, 5.0, guard.X)
	assert.Equal(t, []string{"cell", "yard"}, g.Visited())
}

func TestInteract_HandlerFailureIsContained(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := New(Options{CatchExceptions: true}, zap.New(core))
	lever := object.New("lever", object.KindItem)
	g.Add(lever)
	g.SetInteract("lever", func(*Game, *object.Object, *object.Object) error {
		return errors.New("script blew up")
	})

	assert.NotPanics(t, func() { g.Interact(lever) })
	entries := logs.FilterMessage("handler failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, errutil.CodeHandlerFailed, entries[0].ContextMap()["code"])

	strict := New(Options{}, zap.NewNop())
	strict.Add(object.New("lever", object.KindItem))
	strict.SetInteract("lever", func(*Game, *object.Object, *object.Object) error {
		return errors.New("script blew up")
	})
	assert.Panics(t, func() { strict.Interact(strict.Object("lever")) })
}

func TestInteract_HooksWrapTheHandler(t *testing.T) {
	g := newTestGame(t, Options{}, nil)
	lever := object.New("lever", object.KindItem)
	g.Add(lever)
	var order []string
	event.Subscribe(g.Bus(), func(e event.Interacted) {
		if e.Pre {
			order = append(order, "pre")
			return
		}
		order = append(order, "post")
	})
	g.SetInteract("lever", func(*Game, *object.Object, *object.Object) error {
		order = append(order, "interact")
		return nil
	})
	g.Interact(lever)
	assert.Equal(t, []string{"pre", "interact", "post"}, order)

	g.ResetHandlers()
	assert.False(t, lever.HasInteract())
	assert.Zero(t, event.Count[event.Interacted](g.Bus()))
	assert.Equal(t, 1, event.Count[event.WalkthroughFinished](g.Bus()), "session observers survive a reload")
}

func TestPerObjectQueues(t *testing.T) {
	build := func(lanes bool) (*Game, *object.Object, *object.Object) {
		g := newTestGame(t, Options{PerObjectQueues: lanes}, nil)
		a, b := object.New("A", object.KindActor), object.New("B", object.KindActor)
		g.Add(a, b)
		g.Idle(a, 100)
		g.Do(a, "wave")
		g.Do(b, "dance")
		return g, a, b
	}

	g, _, b := build(false)
	g.Update(0)
	g.Update(0)
	assert.Equal(t, "idle", b.Action, "global FIFO keeps B behind the stalled head")

	g, _, b = build(true)
	g.Update(0)
	g.Update(0)
	assert.Equal(t, "dance", b.Action)
}

func TestDismissedDialogue_StaleReferenceIsInert(t *testing.T) {
	g := newTestGame(t, Options{}, nil)
	a := object.New("A", object.KindActor)
	g.Add(a)

	g.Says(a, "first", WithOK(false))
	g.Says(a, "second", WithOK(false))
	g.Step(0)
	stale := g.Modals().Members()[0]
	require.True(t, g.Alive(stale))

	stale.TriggerInteract()
	assert.False(t, a.Busy())
	assert.Equal(t, 2, g.FlushDismissed())
	assert.False(t, g.Alive(stale))

	g.Step(0)
	require.Equal(t, object.Speaking, a.Activity())
	require.Equal(t, 2, g.Modals().Len())
	assert.NotEqual(t, stale.ID, g.Modals().Members()[0].ID, "released slots come back with a new generation")

	// an old box must not close the new one
	g.Interact(stale)
	stale.TriggerInteract()
	assert.Equal(t, object.Speaking, a.Activity())
	assert.Equal(t, 2, g.Modals().Len())
	assert.Equal(t, "second", labels(g.Modals().Members())[1])
}

func TestWalkthroughFinished_ClearsWhenTargetRaised(t *testing.T) {
	g := newTestGame(t, Options{Headless: true}, nil)
	d := g.Walkthrough()
	d.Load([]walkthrough.Step{
		walkthrough.Description("one"),
		walkthrough.Description("two"),
	})
	d.AdvanceTarget(1)
	g.Step(0)
	require.True(t, g.WalkthroughFinished())

	d.AdvanceTarget(2)
	assert.False(t, g.WalkthroughFinished())

	for i := 0; i < 5 && !d.Done(); i++ {
		g.Step(0)
	}
	assert.True(t, g.WalkthroughFinished())
}
