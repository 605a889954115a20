package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidago/vida/internal/walkthrough"
)

const manifestYAML = `
name: Escape
player: Alice
start: cell
menu: [inventory]
scenes:
  - name: cell
  - name: corridor
    display_text: The Corridor
objects:
  - name: Alice
    kind: actor
    scene: cell
    speed: 120
  - name: Guard
    kind: actor
    scene: corridor
    actions: {wave: 0.5}
  - name: door
    kind: portal
    scene: cell
    link: corridor
    clickable: {w: 40, h: 90}
  - name: inventory
    kind: item
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(manifestYAML))
	require.NoError(t, err)

	assert.Equal(t, "Escape", m.Name)
	assert.Equal(t, "Alice", m.Player)
	assert.Equal(t, []string{"inventory"}, m.Menu)
	require.Len(t, m.Objects, 4)
	assert.Equal(t, "The Corridor", m.Scenes[1].DisplayText)

	door := m.Object("door")
	require.NotNil(t, door)
	assert.Equal(t, "corridor", door.Link)
	assert.Equal(t, &RectDef{W: 40, H: 90}, door.Clickable)
	assert.Equal(t, 0.5, m.Object("Guard").Actions["wave"])
	assert.Nil(t, m.Object("nobody"))
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"duplicate object", "objects: [{name: a}, {name: a}]", `duplicate object "a"`},
		{"unknown kind", "objects: [{name: a, kind: robot}]", `unknown kind "robot"`},
		{"unknown scene", "objects: [{name: a, scene: moon}]", `unknown scene "moon"`},
		{"bad player", "player: ghost", `player "ghost"`},
		{"bad start", "start: moon", `start scene "moon"`},
		{"bad menu", "menu: [bag]", `menu item "bag"`},
		{"dangling portal", "scenes: [{name: a}]\nobjects: [{name: p, kind: portal, link: b}]", `links to unknown scene "b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseWalkthrough(t *testing.T) {
	steps, err := ParseWalkthrough([]byte(`
suites:
  - name: Test Test Suite
    steps:
      - {kind: location, target: _test_scene}
      - {kind: interact, target: _test_actor}
  - steps:
      - {kind: interact, target: Hello World}
      - {kind: use, target: door, item: key}
`))
	require.NoError(t, err)
	assert.Equal(t, []walkthrough.Step{
		walkthrough.Description("Test Test Suite"),
		walkthrough.Location("_test_scene"),
		walkthrough.Interact("_test_actor"),
		walkthrough.Interact("Hello World"),
		walkthrough.Use("door", "key"),
	}, steps)
}

func TestParseWalkthrough_Invalid(t *testing.T) {
	for _, raw := range []string{
		"suites: [{steps: [{kind: dance, target: x}]}]",
		"suites: [{steps: [{kind: interact}]}]",
		"suites: [{steps: [{kind: use, target: door}]}]",
		"suites: {not: a list}",
	} {
		_, err := ParseWalkthrough([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestLoadState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "cell"), 0o755))
	require.NoError(t, os.WriteFile(StatePath(dir, "cell", "initial"), []byte(`
- {op: relocate, object: Guard, x: 100, y: 200}
- {op: usage, object: door, usage: {interact: false}}
- {op: do, object: Guard, action: sleep}
- {op: clean, keep: [Guard]}
`), 0o644))

	ops, err := LoadState(dir, "cell", "initial")
	require.NoError(t, err)
	require.Len(t, ops, 4)
	assert.Equal(t, OpRelocate, ops[0].Op)
	assert.Equal(t, 200.0, ops[0].Y)
	require.NotNil(t, ops[1].Usage.Interact)
	assert.False(t, *ops[1].Usage.Interact)
	assert.Nil(t, ops[1].Usage.Draw)
	assert.Equal(t, []string{"Guard"}, ops[3].Keep)

	_, err = LoadState(dir, "cell", "later")
	assert.True(t, IsMissing(err))
}

func TestParseState_Invalid(t *testing.T) {
	_, err := ParseState([]byte("- {op: explode, object: x}"))
	assert.ErrorContains(t, err, `unknown op "explode"`)

	_, err = ParseState([]byte("- {op: hide}"))
	assert.ErrorContains(t, err, "object is required")
}
