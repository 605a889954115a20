package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ObjectDef describes one actor, item, portal or text object.
type ObjectDef struct {
	Name        string             `yaml:"name"`
	Kind        string             `yaml:"kind"` // actor, item, portal, text
	DisplayText string             `yaml:"display_text"`
	Scene       string             `yaml:"scene"`
	X           float64            `yaml:"x"`
	Y           float64            `yaml:"y"`
	AX          float64            `yaml:"ax"`
	AY          float64            `yaml:"ay"`
	Clickable   *RectDef           `yaml:"clickable"`
	Fullscreen  bool               `yaml:"fullscreen"`
	Speed       float64            `yaml:"speed"`
	Actions     map[string]float64 `yaml:"actions"` // play-once durations in seconds
	Link        string             `yaml:"link"`    // portal destination scene
	Hidden      bool               `yaml:"hidden"`
}

type RectDef struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type SceneDef struct {
	Name        string `yaml:"name"`
	DisplayText string `yaml:"display_text"`
}

// Manifest is the static description of a game: what exists and where it
// starts. Scripts and state files add behaviour on top.
type Manifest struct {
	Name    string      `yaml:"name"`
	Player  string      `yaml:"player"`
	Start   string      `yaml:"start"` // first scene
	Menu    []string    `yaml:"menu"`
	Objects []ObjectDef `yaml:"objects"`
	Scenes  []SceneDef  `yaml:"scenes"`
}

// LoadManifest loads and validates a game manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(raw)
}

func ParseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	objects := make(map[string]bool, len(m.Objects))
	scenes := make(map[string]bool, len(m.Scenes))
	for _, s := range m.Scenes {
		if s.Name == "" {
			return fmt.Errorf("manifest: scene without a name")
		}
		if scenes[s.Name] {
			return fmt.Errorf("manifest: duplicate scene %q", s.Name)
		}
		scenes[s.Name] = true
	}
	for _, o := range m.Objects {
		if o.Name == "" {
			return fmt.Errorf("manifest: object without a name")
		}
		if objects[o.Name] {
			return fmt.Errorf("manifest: duplicate object %q", o.Name)
		}
		objects[o.Name] = true
		switch o.Kind {
		case "", "actor", "item", "portal", "text":
		default:
			return fmt.Errorf("manifest: object %q has unknown kind %q", o.Name, o.Kind)
		}
		if o.Scene != "" && !scenes[o.Scene] {
			return fmt.Errorf("manifest: object %q placed in unknown scene %q", o.Name, o.Scene)
		}
		if o.Kind == "portal" && o.Link != "" && !scenes[o.Link] {
			return fmt.Errorf("manifest: portal %q links to unknown scene %q", o.Name, o.Link)
		}
	}
	if m.Player != "" && !objects[m.Player] {
		return fmt.Errorf("manifest: player %q is not an object", m.Player)
	}
	if m.Start != "" && !scenes[m.Start] {
		return fmt.Errorf("manifest: start scene %q does not exist", m.Start)
	}
	for _, name := range m.Menu {
		if !objects[name] {
			return fmt.Errorf("manifest: menu item %q is not an object", name)
		}
	}
	return nil
}

// Object returns the definition named name, or nil.
func (m *Manifest) Object(name string) *ObjectDef {
	for i := range m.Objects {
		if m.Objects[i].Name == name {
			return &m.Objects[i]
		}
	}
	return nil
}
