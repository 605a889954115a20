package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vidago/vida/internal/core/event"
	"github.com/vidago/vida/internal/data"
	"github.com/vidago/vida/internal/errutil"
	"github.com/vidago/vida/internal/game"
	"github.com/vidago/vida/internal/object"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Guard", "Guard"},
		{"Mr. O'Brien", "Mr__OBrien"},
		{"red key", "red_key"},
		{"half-eaten apple", "halfeaten_apple"},
		{"Café", "Cafe"},
		{"Señor Núñez", "Senor_Nunez"},
		{"a/b\\c", "a_b_c"},
		{"[box]{lid}+!", "boxlid"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func writeScript(t *testing.T, dir, name, src string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func newSession(t *testing.T, log *zap.Logger) *game.Game {
	t.Helper()
	g := game.New(game.Options{CatchExceptions: true}, log)
	_, err := g.Build(&data.Manifest{
		Player: "Alice",
		Scenes: []data.SceneDef{{Name: "cell"}, {Name: "corridor"}},
		Objects: []data.ObjectDef{
			{Name: "Alice", Kind: "actor", Scene: "cell"},
			{Name: "Guard", Kind: "actor", Scene: "cell"},
			{Name: "old rock", Kind: "item", Scene: "cell"},
			{Name: "key", Kind: "item"},
			{Name: "door", Kind: "portal", Scene: "cell", Link: "corridor"},
		},
	})
	require.NoError(t, err)
	require.True(t, g.Camera().SetScene("cell"))
	return g
}

func newEngine(t *testing.T, dir string, g *game.Game) *Engine {
	t.Helper()
	e, err := NewEngine(dir, g, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

// said returns the text of the open message box.
func said(t *testing.T, g *game.Game) string {
	t.Helper()
	members := g.Modals().Members()
	require.GreaterOrEqual(t, len(members), 2)
	return members[1].DisplayText
}

func TestEngine_BindsHandlersBySlug(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "cell.lua", `
function interact_Guard(obj, player)
  vida.says(player, "Hello " .. obj)
end

function look_old_rock(obj, player)
  vida.remember(player, "saw " .. obj)
end

function old_rock_use_key(target, item, player)
  vida.hide(target)
end
`)
	writeScript(t, dir, "scenes/corridor.lua", `
function precamera_corridor(scene, player)
  vida.remember(player, "entering " .. scene)
end
`)
	g := newSession(t, zap.NewNop())
	e := newEngine(t, dir, g)

	assert.Equal(t, []string{"interact_Alice", "interact_old_rock", "interact_key"}, e.Missing())

	g.Interact(g.Object("Guard"))
	g.Update(0)
	assert.Equal(t, "Hello Guard", said(t, g))
	g.Click(0, 0)

	alice, rock := g.Object("Alice"), g.Object("old rock")
	g.Look(rock)
	g.Use(rock, g.Object("key"))
	g.Camera().Scene("corridor")
	g.Update(0)
	assert.True(t, alice.Remembers("saw old rock"))
	assert.False(t, rock.AllowDraw)
	assert.True(t, alice.Remembers("entering corridor"))
	assert.Equal(t, "corridor", g.Scene().Name)
}

func TestEngine_LowercaseFallback(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "guard.lua", `
function interact_guard(obj, player)
  vida.set_action(obj, "salute")
end
`)
	g := newSession(t, zap.NewNop())
	e := newEngine(t, dir, g)
	assert.NotContains(t, e.Missing(), "interact_Guard")

	g.Interact(g.Object("Guard"))
	g.Update(0)
	assert.Equal(t, "salute", g.Object("Guard").Action)
}

func TestEngine_ScriptErrorsAreContained(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "broken.lua", `
function interact_Guard(obj, player)
  error("boom")
end

function interact_key(obj, player)
  vida.says("Nobody", "hi")
end
`)
	core, logs := observer.New(zapcore.ErrorLevel)
	g := newSession(t, zap.New(core))
	newEngine(t, dir, g)

	g.Interact(g.Object("Guard"))
	g.Interact(g.Object("key"))
	g.Update(0)

	failed := logs.FilterMessage("handler failed").All()
	require.Len(t, failed, 2)
	for _, entry := range failed {
		assert.Equal(t, errutil.CodeHandlerFailed, entry.ContextMap()["code"])
	}
	assert.Zero(t, g.Queue().Len())
}

func TestEngine_AsksCallbackReceivesOption(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "guard.lua", `
function interact_Guard(obj, player)
  vida.asks(obj, "Let me out?",
    {"Please", function(option, p) vida.remember(p, "asked " .. option) end},
    {"Never mind"})
end
`)
	g := newSession(t, zap.NewNop())
	newEngine(t, dir, g)

	g.Interact(g.Object("Guard"))
	g.Update(0)
	opt := g.Modals().Find("Please")
	require.NotNil(t, opt)
	opt.TriggerInteract()
	g.Update(0)

	assert.True(t, g.Object("Alice").Remembers("asked Please"))
	assert.True(t, g.Modals().Empty())
}

func TestEngine_QueriesAnswerImmediately(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "alice.lua", `
function interact_Alice(obj, player)
  if player ~= obj then error("player mismatch") end
  if vida.remembers(player, "rested") then
    vida.set_action(player, "stretch")
  else
    vida.remember(player, "rested")
    vida.set_action(player, "yawn")
  end
end
`)
	g := newSession(t, zap.NewNop())
	newEngine(t, dir, g)
	alice := g.Object("Alice")

	g.Interact(alice)
	g.Update(0)
	assert.Equal(t, "yawn", alice.Action)
	g.Interact(alice)
	g.Update(0)
	assert.Equal(t, "stretch", alice.Action)
}

func TestEngine_Reload(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "guard.lua", `function interact_Guard(obj) vida.set_action(obj, "one") end`)
	g := newSession(t, zap.NewNop())
	e := newEngine(t, dir, g)
	guard := g.Object("Guard")

	writeScript(t, dir, "guard.lua", `function interact_Guard(obj) vida.set_action(obj, "two") end`)
	require.NoError(t, e.Reload())
	g.Interact(guard)
	g.Update(0)
	assert.Equal(t, "two", guard.Action)

	writeScript(t, dir, "guard.lua", `function interact_Guard(obj) vida.set_action(obj, `)
	require.Error(t, e.Reload())
	g.Interact(guard)
	g.Do(guard, "reset")
	g.Update(0)
	assert.Equal(t, "reset", guard.Action)
	g.Interact(guard)
	g.Update(0)
	assert.Equal(t, "two", guard.Action, "a failed reload keeps the previous scripts")
}

func TestEngine_LoadErrorNamesTheFile(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "actors/bad.lua", `function (`)
	_, err := NewEngine(dir, newSession(t, zap.NewNop()), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.lua")
}

func TestEngine_PlayerQuery(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "key.lua", `
function interact_key(obj)
  vida.relocate(vida.player(), "corridor")
end
`)
	g := newSession(t, zap.NewNop())
	newEngine(t, dir, g)
	alice := g.Object("Alice")
	alice.X = 42

	g.Interact(g.Object("key"))
	g.Update(0)
	assert.Equal(t, "corridor", alice.Scene)
	assert.Equal(t, 42.0, alice.X)
	assert.Equal(t, object.Idle, alice.Activity())
}

func TestEngine_HooksFollowReload(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "hooks.lua", `
function pre_interact(obj, player)
  vida.remember(player, "before " .. obj)
end

function post_interact(obj, player)
  vida.remember(player, "after " .. obj)
end

function post_arrive(obj, player)
  vida.remember(player, obj .. " arrived")
end
`)
	g := newSession(t, zap.NewNop())
	g.SetHeadless(true)
	e := newEngine(t, dir, g)
	alice := g.Object("Alice")

	g.Interact(g.Object("Guard"))
	g.Goto(g.Object("Guard"), 10, 10)
	for i := 0; i < 5; i++ {
		g.Update(0)
	}
	assert.True(t, alice.Remembers("before Guard"))
	assert.True(t, alice.Remembers("after Guard"))
	assert.True(t, alice.Remembers("Guard arrived"))

	writeScript(t, dir, "hooks.lua", `-- hooks removed`)
	require.NoError(t, e.Reload())
	assert.Zero(t, event.Count[event.Interacted](g.Bus()))
	assert.Zero(t, event.Count[event.Arrived](g.Bus()))

	g.Interact(g.Object("old rock"))
	g.Goto(alice, 20, 20)
	for i := 0; i < 5; i++ {
		g.Update(0)
	}
	assert.False(t, alice.Remembers("before old rock"))
	assert.False(t, alice.Remembers("after old rock"))
	assert.False(t, alice.Remembers("Alice arrived"))
	assert.Equal(t, 20.0, alice.X)
}
