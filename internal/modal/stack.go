// Package modal keeps the stack of objects that own exclusive input and
// routes pointer releases by priority: modals, then menu, then scene.
package modal

import (
	"slices"

	"github.com/vidago/vida/internal/object"
)

// Stack is the ordered set of objects currently claiming all input.
// Members are tested in insertion order.
type Stack struct {
	members []*object.Object
}

func NewStack() *Stack {
	return &Stack{members: make([]*object.Object, 0, 8)}
}

// Push appends objs to the input-priority list. Objects already on the
// stack keep their place.
func (s *Stack) Push(objs ...*object.Object) {
	for _, o := range objs {
		if o == nil || s.Contains(o) {
			continue
		}
		s.members = append(s.members, o)
	}
}

// Remove pops o and reports whether it was a member.
func (s *Stack) Remove(o *object.Object) bool {
	i := slices.Index(s.members, o)
	if i < 0 {
		return false
	}
	s.members = slices.Delete(s.members, i, i+1)
	return true
}

// RemoveAll pops every obj that is still on the stack and returns the ones
// actually removed.
func (s *Stack) RemoveAll(objs ...*object.Object) []*object.Object {
	var removed []*object.Object
	for _, o := range objs {
		if s.Remove(o) {
			removed = append(removed, o)
		}
	}
	return removed
}

// Clear empties the stack and returns what was on it.
func (s *Stack) Clear() []*object.Object {
	out := s.members
	s.members = make([]*object.Object, 0, 8)
	return out
}

func (s *Stack) Len() int { return len(s.members) }

func (s *Stack) Empty() bool { return len(s.members) == 0 }

// Members returns a snapshot in priority order.
func (s *Stack) Members() []*object.Object { return slices.Clone(s.members) }

func (s *Stack) Contains(o *object.Object) bool { return slices.Contains(s.members, o) }

// Find looks a member up by name, then by display text.
func (s *Stack) Find(name string) *object.Object {
	for _, o := range s.members {
		if o.Name == name {
			return o
		}
	}
	for _, o := range s.members {
		if o.DisplayText != "" && o.DisplayText == name {
			return o
		}
	}
	return nil
}
