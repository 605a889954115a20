package game

import (
	"fmt"

	"github.com/vidago/vida/internal/data"
	"github.com/vidago/vida/internal/object"
)

var kinds = map[string]object.Kind{
	"":       object.KindItem,
	"item":   object.KindItem,
	"actor":  object.KindActor,
	"portal": object.KindPortal,
	"text":   object.KindText,
}

// Build registers everything a manifest describes. The start scene is
// returned for the caller to queue a camera move to; nothing is enqueued
// here.
func (g *Game) Build(m *data.Manifest) (string, error) {
	for _, sd := range m.Scenes {
		s := NewScene(sd.Name)
		s.DisplayText = sd.DisplayText
		g.AddScene(s)
	}
	for _, def := range m.Objects {
		o, err := newObject(def)
		if err != nil {
			return "", err
		}
		g.Add(o)
		if def.Scene != "" {
			g.sceneTarget(def.Scene).add(g, o)
		}
	}
	for _, name := range m.Menu {
		o := g.objects[name]
		if o == nil {
			return "", fmt.Errorf("menu item %q is not an object", name)
		}
		g.menu = append(g.menu, o)
	}
	if m.Player != "" {
		if err := g.SetPlayer(m.Player); err != nil {
			return "", err
		}
	}
	return m.Start, nil
}

func newObject(def data.ObjectDef) (*object.Object, error) {
	kind, ok := kinds[def.Kind]
	if !ok {
		return nil, fmt.Errorf("object %q: unknown kind %q", def.Name, def.Kind)
	}
	var o *object.Object
	if kind == object.KindText {
		o = object.NewText(def.Name, def.DisplayText)
	} else {
		o = object.New(def.Name, kind)
		o.DisplayText = def.DisplayText
	}
	o.X, o.Y = def.X, def.Y
	o.AX, o.AY = def.AX, def.AY
	if def.Clickable != nil {
		o.Clickable = object.Rect{X: def.Clickable.X, Y: def.Clickable.Y, W: def.Clickable.W, H: def.Clickable.H}
	}
	o.Fullscreen = def.Fullscreen
	o.Speed = def.Speed
	o.Actions = def.Actions
	o.Link = def.Link
	if def.Hidden {
		o.AllowDraw = false
		o.AllowUpdate = false
	}
	return o, nil
}
