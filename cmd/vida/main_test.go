package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
name: Escape
player: Alice
start: cell
scenes:
  - name: cell
objects:
  - name: Alice
    kind: actor
    scene: cell
  - name: lever
    kind: item
    scene: cell
    x: 100
    y: 100
    clickable: {w: 20, h: 20}
`

const testWalkthrough = `
suites:
  - name: Escape the cell
    steps:
      - kind: location
        target: cell
      - kind: interact
        target: lever
      - kind: look
        target: ghost
`

// writeGame lays out a playable game in a temp dir and returns its config.
func writeGame(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}
	manifest := write("data/game.yaml", testManifest)
	steps := write("data/walkthrough.yaml", testWalkthrough)
	write("scripts/cell.lua", `
function interact_lever(lever, player)
  vida.remember(player, "pulled lever")
end
`)
	cfg := "[game]\n" +
		"name = \"Escape\"\n" +
		"manifest = " + quote(manifest) + "\n" +
		"scripts_dir = " + quote(filepath.Join(dir, "scripts")) + "\n" +
		"states_dir = " + quote(filepath.Join(dir, "states")) + "\n" +
		"fps = 1000\n\n" +
		"[walkthrough]\n" +
		"file = " + quote(steps) + "\n\n" +
		"[logging]\n" +
		"level = \"error\"\n" + extra
	return write("vida.toml", cfg)
}

func quote(s string) string { return "'" + s + "'" }

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"play", "walkthrough", "check", "runs"})

	out, err := execute(t, "play", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--exit-at-target")
	assert.Contains(t, out, "--config")
}

func TestConfigPath(t *testing.T) {
	t.Setenv("VIDA_CONFIG", "")
	configFile = ""
	path, explicit := configPath()
	assert.Equal(t, defaultConfigPath, path)
	assert.False(t, explicit)

	t.Setenv("VIDA_CONFIG", "/etc/vida.toml")
	path, explicit = configPath()
	assert.Equal(t, "/etc/vida.toml", path)
	assert.True(t, explicit)

	configFile = "game.toml"
	defer func() { configFile = "" }()
	path, _ = configPath()
	assert.Equal(t, "game.toml", path)
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	t.Setenv("VIDA_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
	configFile = ""
	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestWalkthroughCmd_PrintsDocument(t *testing.T) {
	cfg := writeGame(t, "")
	out, err := execute(t, "--config", cfg, "walkthrough")
	require.NoError(t, err)
	assert.Contains(t, out, "Escape walkthrough")
	assert.Contains(t, out, "Escape the cell")
	assert.Contains(t, out, "  1. You should now be in cell.")
	assert.Contains(t, out, "  2. Click on lever.")
	assert.Contains(t, out, "  3. Look at ghost.")
}

func TestCheckCmd_ReportsProblems(t *testing.T) {
	cfg := writeGame(t, "")
	out, err := execute(t, "--config", cfg, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "no handler interact_Alice")
	assert.NotContains(t, out, "interact_lever")
	assert.Contains(t, out, `step 3: unknown object "ghost"`)

	_, err = execute(t, "--config", cfg, "check", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 unresolved steps")
}

func TestPlayCmd_ExitsAtTarget(t *testing.T) {
	cfg := writeGame(t, "")
	out, err := execute(t, "--config", cfg, "play", "--headless", "--target", "3", "--exit-at-target")
	require.NoError(t, err)
	assert.Contains(t, out, "walkthrough steps")
	assert.Contains(t, out, "game loop started")
}

func TestRunsCmd_NeedsDatabase(t *testing.T) {
	cfg := writeGame(t, "")
	_, err := execute(t, "--config", cfg, "runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database configured")
}
