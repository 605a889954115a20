package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/vidago/vida/internal/core/event"
	"github.com/vidago/vida/internal/game"
	"github.com/vidago/vida/internal/object"
	"github.com/vidago/vida/internal/sched"
)

// Script directories under the scripts root, loaded in this order.
var scriptDirs = []string{".", "scenes", "actors", "items"}

var errStale = errors.New("script belongs to a VM that has been reloaded")

// Engine wraps a single gopher-lua VM holding the designer scripts and
// binds the functions they define to the session's handler registry.
// Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	dir     string
	game    *game.Game
	missing []string
	log     *zap.Logger
}

// NewEngine creates a Lua engine, loads all scripts from scriptsDir and
// binds them to g.
func NewEngine(scriptsDir string, g *game.Game, log *zap.Logger) (*Engine, error) {
	e := &Engine{dir: scriptsDir, game: g, log: log}
	vm, err := e.newVM()
	if err != nil {
		return nil, err
	}
	e.vm = vm
	e.bind()
	return e, nil
}

func (e *Engine) newVM() (*lua.LState, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("vida", vm.SetFuncs(vm.NewTable(), e.api()))

	for _, sub := range scriptDirs {
		if err := loadDir(vm, filepath.Join(e.dir, sub), e.log); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return vm, nil
}

// loadDir loads all .lua files in a directory.
func loadDir(vm *lua.LState, dir string, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Reload drops every bound handler and session observer, then loads the
// scripts again into a fresh VM. If the new scripts fail to load the
// previous VM is bound again and the error returned.
func (e *Engine) Reload() error {
	e.game.ResetHandlers()
	vm, err := e.newVM()
	if err != nil {
		e.bind()
		return err
	}
	old := e.vm
	e.vm = vm
	old.Close()
	e.bind()
	e.log.Info("scripts reloaded", zap.String("dir", e.dir))
	return nil
}

// bind resolves the handler of every registered object and scene by
// name: interact_<slug>, look_<slug>, <target>_use_<item>, precamera_<slug>
// and postcamera_<slug>. Objects without an interact script are recorded
// in Missing and fall back to the session defaults.
func (e *Engine) bind() {
	e.missing = e.missing[:0]
	objs := e.game.Objects()
	for _, o := range objs {
		slug := Slugify(o.Name)
		if fn := e.lookup("interact_" + slug); fn != nil {
			e.game.SetInteract(o.Name, e.objectFunc(fn))
		} else if o.Kind == object.KindItem || o.Kind == object.KindActor {
			e.missing = append(e.missing, "interact_"+slug)
		}
		if fn := e.lookup("look_" + slug); fn != nil {
			e.game.SetLook(o.Name, e.objectFunc(fn))
		}
		for _, item := range objs {
			if item == o {
				continue
			}
			if fn := e.lookup(slug + "_use_" + Slugify(item.Name)); fn != nil {
				e.game.SetUse(o.Name, item.Name, e.useFunc(fn))
			}
		}
	}
	for _, s := range e.game.Scenes() {
		slug := Slugify(s.Name)
		if fn := e.lookup("precamera_" + slug); fn != nil {
			e.game.SetCameraHook(s.Name, true, e.sceneFunc(fn))
		}
		if fn := e.lookup("postcamera_" + slug); fn != nil {
			e.game.SetCameraHook(s.Name, false, e.sceneFunc(fn))
		}
	}
	e.bindHooks()
	if len(e.missing) > 0 {
		e.log.Debug("objects without interact scripts", zap.Strings("functions", e.missing))
	}
}

// bindHooks subscribes the pre_interact, post_interact and post_arrive
// globals to the session bus. Each receives the object and player names.
// ResetHandlers drops them along with every other designer observer.
func (e *Engine) bindHooks() {
	vm := e.vm
	pre, post := e.lookup("pre_interact"), e.lookup("post_interact")
	if pre != nil || post != nil {
		event.Subscribe(e.game.Bus(), func(ev event.Interacted) {
			fn, kind := post, "post_interact"
			if ev.Pre {
				fn, kind = pre, "pre_interact"
			}
			if fn == nil {
				return
			}
			e.hook(kind, ev.Object, func() error {
				return e.call(vm, fn, lua.LString(ev.Object), nameOrNil(ev.Player))
			})
		})
	}
	if arrive := e.lookup("post_arrive"); arrive != nil {
		event.Subscribe(e.game.Bus(), func(ev event.Arrived) {
			e.hook("post_arrive", ev.Object, func() error {
				return e.call(vm, arrive, lua.LString(ev.Object), nameOf(e.game.Player()))
			})
		})
	}
}

func (e *Engine) hook(kind, name string, fn func() error) {
	sched.Guard(e.log, !e.game.Options().CatchExceptions, kind, name, fn)
}

// lookup finds a global function by exact name, then lowercased.
func (e *Engine) lookup(name string) *lua.LFunction {
	if fn, ok := e.vm.GetGlobal(name).(*lua.LFunction); ok {
		return fn
	}
	if fn, ok := e.vm.GetGlobal(strings.ToLower(name)).(*lua.LFunction); ok {
		return fn
	}
	return nil
}

// Missing lists the interact functions no script defines, in object
// registration order.
func (e *Engine) Missing() []string { return slices.Clone(e.missing) }

func (e *Engine) objectFunc(fn *lua.LFunction) game.ObjectFunc {
	vm := e.vm
	return func(_ *game.Game, obj, player *object.Object) error {
		return e.call(vm, fn, nameOf(obj), nameOf(player))
	}
}

func (e *Engine) useFunc(fn *lua.LFunction) game.UseFunc {
	vm := e.vm
	return func(_ *game.Game, target, item, player *object.Object) error {
		return e.call(vm, fn, nameOf(target), nameOf(item), nameOf(player))
	}
}

func (e *Engine) sceneFunc(fn *lua.LFunction) game.SceneFunc {
	vm := e.vm
	return func(_ *game.Game, s *game.Scene, player *object.Object) error {
		return e.call(vm, fn, lua.LString(s.Name), nameOf(player))
	}
}

func (e *Engine) answerFunc(vm *lua.LState, fn *lua.LFunction) game.AnswerFunc {
	return func(_ *game.Game, option, player *object.Object) error {
		return e.call(vm, fn, lua.LString(option.Label()), nameOf(player))
	}
}

// call runs fn in protected mode so a Lua error comes back as an error
// and the session's failure policy decides what happens to it.
func (e *Engine) call(vm *lua.LState, fn *lua.LFunction, args ...lua.LValue) error {
	if vm != e.vm {
		return errStale
	}
	return vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
}

func nameOrNil(name string) lua.LValue {
	if name == "" {
		return lua.LNil
	}
	return lua.LString(name)
}

func nameOf(o *object.Object) lua.LValue {
	if o == nil {
		return lua.LNil
	}
	return lua.LString(o.Name)
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	if e.vm != nil {
		e.vm.Close()
		e.vm = nil
	}
}
