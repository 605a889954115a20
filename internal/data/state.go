package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Usage toggles object flags; nil fields are left alone.
type Usage struct {
	Draw     *bool `yaml:"draw"`
	Update   *bool `yaml:"update"`
	Look     *bool `yaml:"look"`
	Interact *bool `yaml:"interact"`
	Use      *bool `yaml:"use"`
}

// State operations. Each becomes one queued action when the state is
// loaded.
const (
	OpRelocate = "relocate"
	OpUsage    = "usage"
	OpDo       = "do"
	OpDoOnce   = "do_once"
	OpClean    = "clean"
	OpHide     = "hide"
	OpShow     = "show"
	OpRemember = "remember"
	OpForget   = "forget"
	OpAdd      = "add"
	OpRemove   = "remove"
)

type StateOp struct {
	Op     string   `yaml:"op"`
	Object string   `yaml:"object"`
	Scene  string   `yaml:"scene"` // relocate destination, defaults to the loading scene
	X      float64  `yaml:"x"`
	Y      float64  `yaml:"y"`
	Action string   `yaml:"action"`
	Fact   string   `yaml:"fact"`
	Keep   []string `yaml:"keep"`
	Usage  Usage    `yaml:"usage"`
}

// StatePath is where the state file for scene/state lives under dir.
func StatePath(dir, scene, state string) string {
	return filepath.Join(dir, scene, state+".yaml")
}

// LoadState reads <dir>/<scene>/<state>.yaml. A missing file is reported
// with an error wrapping os.ErrNotExist.
func LoadState(dir, scene, state string) ([]StateOp, error) {
	path := StatePath(dir, scene, state)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state %s/%s: %w", scene, state, err)
	}
	return ParseState(raw)
}

func ParseState(raw []byte) ([]StateOp, error) {
	var ops []StateOp
	if err := yaml.Unmarshal(raw, &ops); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	for i, op := range ops {
		switch op.Op {
		case OpRelocate, OpUsage, OpDo, OpDoOnce, OpHide, OpShow, OpRemember, OpForget, OpAdd, OpRemove:
			if op.Object == "" {
				return nil, fmt.Errorf("state op %d (%s): object is required", i, op.Op)
			}
		case OpClean:
		default:
			return nil, fmt.Errorf("state op %d: unknown op %q", i, op.Op)
		}
	}
	return ops, nil
}

// IsMissing reports whether err means the state file does not exist.
func IsMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
