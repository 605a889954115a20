// Package walkthrough replays a recorded list of player steps through the
// normal input path, one step per quiescent scheduler tick.
package walkthrough

import "fmt"

// Kind is what a recorded step asks the player to do.
type Kind string

const (
	KindInteract    Kind = "interact"
	KindLook        Kind = "look"
	KindUse         Kind = "use"
	KindDescription Kind = "description"
	KindLocation    Kind = "location"
)

// ParseKind accepts the kind names used in walkthrough files.
// "assert_location" is an alias for location.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindInteract, KindLook, KindUse, KindDescription, KindLocation:
		return Kind(s), nil
	case "assert_location":
		return KindLocation, nil
	}
	return "", fmt.Errorf("unknown walkthrough step kind %q", s)
}

// Step is one recorded player action. Target is the object, scene or
// description text; Extra is the item for a use step.
type Step struct {
	Kind   Kind
	Target string
	Extra  string
}

func (s Step) String() string {
	if s.Extra != "" {
		return fmt.Sprintf("%s(%s, %s)", s.Kind, s.Target, s.Extra)
	}
	return fmt.Sprintf("%s(%s)", s.Kind, s.Target)
}

func Interact(name string) Step    { return Step{Kind: KindInteract, Target: name} }
func Look(name string) Step        { return Step{Kind: KindLook, Target: name} }
func Use(target, item string) Step { return Step{Kind: KindUse, Target: target, Extra: item} }
func Description(text string) Step { return Step{Kind: KindDescription, Target: text} }
func Location(scene string) Step   { return Step{Kind: KindLocation, Target: scene} }

// Flatten joins suites into one ordered step list.
func Flatten(suites ...[]Step) []Step {
	n := 0
	for _, s := range suites {
		n += len(s)
	}
	out := make([]Step, 0, n)
	for _, s := range suites {
		out = append(out, s...)
	}
	return out
}
