package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/vidago/vida/internal/game"
	"github.com/vidago/vida/internal/object"
)

// api is the "vida" table scripts call into. Objects are passed by name.
// Every action only queues; nothing here blocks.
//
// "goto" and "do" are Lua keywords, so those actions are exposed as
// walk_to and set_action.
func (e *Engine) api() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"says":       e.luaSays,
		"asks":       e.luaAsks,
		"walk_to":    e.luaWalkTo,
		"move":       e.luaMove,
		"idle":       e.luaIdle,
		"do_once":    e.luaDoOnce,
		"set_action": e.luaSetAction,
		"relocate":   e.luaRelocate,
		"hide":       e.luaHide,
		"show":       e.luaShow,
		"scene":      e.luaScene,
		"wait":       e.luaWait,
		"remember":   e.luaRemember,
		"forget":     e.luaForget,
		"remembers":  e.luaRemembers,
		"set_menu":   e.luaSetMenu,
		"load_state": e.luaLoadState,
		"player":     e.luaPlayer,
	}
}

// object resolves argument n to a registered object or raises a Lua error.
func (e *Engine) object(L *lua.LState, n int) *object.Object {
	name := L.CheckString(n)
	o := e.game.Object(name)
	if o == nil {
		L.ArgError(n, fmt.Sprintf("no object named %q", name))
	}
	return o
}

func (e *Engine) luaSays(L *lua.LState) int {
	actor := e.object(L, 1)
	text := L.CheckString(2)
	ok := L.OptBool(3, true)
	e.game.Says(actor, text, game.WithOK(ok))
	return 0
}

// vida.asks(actor, prompt, {"Yes", fn}, {"No"}): the callback is optional
// and receives the option text and the player.
func (e *Engine) luaAsks(L *lua.LState) int {
	actor := e.object(L, 1)
	prompt := L.CheckString(2)
	var answers []game.Answer
	for i := 3; i <= L.GetTop(); i++ {
		t := L.CheckTable(i)
		ans := game.Answer{Text: lua.LVAsString(t.RawGetInt(1))}
		if ans.Text == "" {
			L.ArgError(i, "answer needs a text")
		}
		if fn, ok := t.RawGetInt(2).(*lua.LFunction); ok {
			ans.Callback = e.answerFunc(e.vm, fn)
		}
		answers = append(answers, ans)
	}
	e.game.Asks(actor, prompt, answers...)
	return 0
}

func (e *Engine) luaWalkTo(L *lua.LState) int {
	actor := e.object(L, 1)
	e.game.Goto(actor, float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
	return 0
}

func (e *Engine) luaMove(L *lua.LState) int {
	actor := e.object(L, 1)
	e.game.Move(actor, float64(L.CheckNumber(2)), float64(L.CheckNumber(3)))
	return 0
}

func (e *Engine) luaIdle(L *lua.LState) int {
	actor := e.object(L, 1)
	e.game.Idle(actor, float64(L.OptNumber(2, 0)))
	return 0
}

func (e *Engine) luaDoOnce(L *lua.LState) int {
	actor := e.object(L, 1)
	e.game.DoOnce(actor, L.CheckString(2))
	return 0
}

func (e *Engine) luaSetAction(L *lua.LState) int {
	actor := e.object(L, 1)
	e.game.Do(actor, L.CheckString(2))
	return 0
}

// vida.relocate(obj, scene [, x, y]) keeps the current position when no
// coordinates are given.
func (e *Engine) luaRelocate(L *lua.LState) int {
	obj := e.object(L, 1)
	scene := L.CheckString(2)
	x := float64(L.OptNumber(3, lua.LNumber(obj.X)))
	y := float64(L.OptNumber(4, lua.LNumber(obj.Y)))
	e.game.Relocate(obj, scene, x, y)
	return 0
}

func (e *Engine) luaHide(L *lua.LState) int {
	e.game.Hide(e.object(L, 1))
	return 0
}

func (e *Engine) luaShow(L *lua.LState) int {
	e.game.Show(e.object(L, 1))
	return 0
}

func (e *Engine) luaScene(L *lua.LState) int {
	e.game.Camera().Scene(L.CheckString(1))
	return 0
}

func (e *Engine) luaWait(L *lua.LState) int {
	e.game.Wait()
	return 0
}

func (e *Engine) luaRemember(L *lua.LState) int {
	actor := e.object(L, 1)
	e.game.Remember(actor, L.CheckString(2))
	return 0
}

func (e *Engine) luaForget(L *lua.LState) int {
	actor := e.object(L, 1)
	e.game.Forget(actor, L.CheckString(2))
	return 0
}

// remembers answers immediately, so it reflects only the facts already
// applied by the queue.
func (e *Engine) luaRemembers(L *lua.LState) int {
	actor := e.object(L, 1)
	L.Push(lua.LBool(actor.Remembers(L.CheckString(2))))
	return 1
}

func (e *Engine) luaSetMenu(L *lua.LState) int {
	names := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		names = append(names, L.CheckString(i))
	}
	e.game.SetMenu(names...)
	return 0
}

func (e *Engine) luaLoadState(L *lua.LState) int {
	if err := e.game.LoadStateFile(L.CheckString(1), L.CheckString(2)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (e *Engine) luaPlayer(L *lua.LState) int {
	L.Push(nameOf(e.game.Player()))
	return 1
}
