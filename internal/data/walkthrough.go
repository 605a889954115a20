package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vidago/vida/internal/walkthrough"
)

type stepDef struct {
	Kind   string `yaml:"kind"`
	Target string `yaml:"target"`
	Item   string `yaml:"item"`
}

type suiteDef struct {
	Name  string    `yaml:"name"`
	Steps []stepDef `yaml:"steps"`
}

type walkthroughFile struct {
	Suites []suiteDef `yaml:"suites"`
}

// LoadWalkthrough loads the recorded suites and flattens them in order.
// A suite name becomes a description step ahead of its steps.
func LoadWalkthrough(path string) ([]walkthrough.Step, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read walkthrough: %w", err)
	}
	return ParseWalkthrough(raw)
}

func ParseWalkthrough(raw []byte) ([]walkthrough.Step, error) {
	var f walkthroughFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse walkthrough: %w", err)
	}
	suites := make([][]walkthrough.Step, 0, len(f.Suites))
	for si, suite := range f.Suites {
		steps := make([]walkthrough.Step, 0, len(suite.Steps)+1)
		if suite.Name != "" {
			steps = append(steps, walkthrough.Description(suite.Name))
		}
		for i, def := range suite.Steps {
			kind, err := walkthrough.ParseKind(def.Kind)
			if err != nil {
				return nil, fmt.Errorf("suite %d step %d: %w", si, i, err)
			}
			if def.Target == "" {
				return nil, fmt.Errorf("suite %d step %d: target is required", si, i)
			}
			if kind == walkthrough.KindUse && def.Item == "" {
				return nil, fmt.Errorf("suite %d step %d: use needs an item", si, i)
			}
			steps = append(steps, walkthrough.Step{Kind: kind, Target: def.Target, Extra: def.Item})
		}
		suites = append(suites, steps)
	}
	return walkthrough.Flatten(suites...), nil
}
