package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game        GameConfig        `toml:"game"`
	Engine      EngineConfig      `toml:"engine"`
	Walkthrough WalkthroughConfig `toml:"walkthrough"`
	Database    DatabaseConfig    `toml:"database"`
	Logging     LoggingConfig     `toml:"logging"`
}

type GameConfig struct {
	Name          string `toml:"name"`
	Version       string `toml:"version"`
	Manifest      string `toml:"manifest"`       // yaml: actors, items, scenes, menu
	ScriptsDir    string `toml:"scripts_dir"`    // lua designer scripts
	StatesDir     string `toml:"states_dir"`     // <states_dir>/<scene>/<state>.yaml
	ResolutionX   int    `toml:"resolution_x"`
	ResolutionY   int    `toml:"resolution_y"`
	FPS           int    `toml:"fps"`
	DefaultPlayer string `toml:"default_player"` // overrides manifest player when set
}

type EngineConfig struct {
	// CatchExceptions keeps the engine running when a handler or script
	// fails. Switch off to let failures propagate while debugging.
	CatchExceptions   bool `toml:"catch_exceptions"`
	MaxEventsPerFrame int  `toml:"max_events_per_frame"`
	Headless          bool `toml:"headless"`
	// PerObjectQueues opts into one queue per target instead of the
	// global FIFO. Cutscene ordering across actors is lost when enabled.
	PerObjectQueues bool `toml:"per_object_queues"`
}

type WalkthroughConfig struct {
	File         string `toml:"file"`
	TargetStep   int    `toml:"target_step"`    // auto-play up to this step (exclusive)
	ExitAtTarget bool   `toml:"exit_at_target"` // stop the loop once the target is reached
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables the run journal
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   int           `toml:"flush_interval"` // journal flush every N frames
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// FrameDuration is the wall-clock length of one update.
func (c GameConfig) FrameDuration() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FPS)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes toml on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Engine.MaxEventsPerFrame <= 0 {
		cfg.Engine.MaxEventsPerFrame = Defaults().Engine.MaxEventsPerFrame
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Game: GameConfig{
			Name:        "Untitled Game",
			Version:     "v1.0",
			Manifest:    "data/game.yaml",
			ScriptsDir:  "scripts",
			StatesDir:   "data/states",
			ResolutionX: 1024,
			ResolutionY: 768,
			FPS:         60,
		},
		Engine: EngineConfig{
			CatchExceptions:   true,
			MaxEventsPerFrame: 256,
		},
		Walkthrough: WalkthroughConfig{
			File: "data/walkthrough.yaml",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
