// Package viewstate holds the selection, hover, isolation and highlight
// state the renderer reads each frame. Only the interaction layer and the
// explorer's programmatic controls mutate it.
package viewstate

import (
	"errors"
	"sort"
)

// ErrNoSelection is returned when isolation is requested with nothing selected.
var ErrNoSelection = errors.New("viewstate: isolation requires a selected node")

// Isolation restricts drawing to Focus and its neighbors while Active.
type Isolation struct {
	Active bool   `json:"active"`
	Focus  string `json:"focus,omitempty"`
}

// Change describes which parts of the state a mutation touched.
type Change struct {
	Selection bool
	Hover     bool
	Isolation bool
	Highlight bool
}

// Any reports whether anything changed.
func (c Change) Any() bool {
	return c.Selection || c.Hover || c.Isolation || c.Highlight
}

// Observer is notified after every effective change.
type Observer func(s *State, c Change)

// State is the mutable view state. The empty string means "no node".
type State struct {
	selected    string
	hovered     string
	isolation   Isolation
	highlighted map[string]struct{}
	observers   []Observer
}

// New returns an empty state.
func New() *State {
	return &State{highlighted: make(map[string]struct{})}
}

// Subscribe registers an observer.
func (s *State) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

func (s *State) notify(c Change) {
	if !c.Any() {
		return
	}
	for _, o := range s.observers {
		o(s, c)
	}
}

// Selected returns the selected node id.
func (s *State) Selected() string { return s.selected }

// Hovered returns the hovered node id.
func (s *State) Hovered() string { return s.hovered }

// Isolation returns the isolation state.
func (s *State) Isolation() Isolation { return s.isolation }

// IsHighlighted reports whether id is in the highlighted set.
func (s *State) IsHighlighted(id string) bool {
	_, ok := s.highlighted[id]
	return ok
}

// HasHighlight reports whether the highlighted set is non-empty.
func (s *State) HasHighlight() bool { return len(s.highlighted) > 0 }

// Highlighted returns the highlighted ids in sorted order.
func (s *State) Highlighted() []string {
	out := make([]string, 0, len(s.highlighted))
	for id := range s.highlighted {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Select sets the selection. Clearing it (id == "") turns isolation off,
// and moving it to another node moves the isolation focus along.
func (s *State) Select(id string) {
	if id == s.selected {
		return
	}
	c := Change{Selection: true}
	s.selected = id
	if s.isolation.Active {
		c.Isolation = true
		if id == "" {
			s.isolation = Isolation{}
		} else {
			s.isolation.Focus = id
		}
	}
	s.notify(c)
}

// ClearSelection is Select("").
func (s *State) ClearSelection() { s.Select("") }

// Hover sets the hovered node.
func (s *State) Hover(id string) {
	if id == s.hovered {
		return
	}
	s.hovered = id
	s.notify(Change{Hover: true})
}

// SetIsolation turns isolation on around the current selection or off.
// Turning it on without a selection fails with ErrNoSelection; turning it
// off always succeeds.
func (s *State) SetIsolation(active bool) error {
	if !active {
		if s.isolation.Active {
			s.isolation = Isolation{}
			s.notify(Change{Isolation: true})
		}
		return nil
	}
	if s.selected == "" {
		return ErrNoSelection
	}
	if s.isolation.Active && s.isolation.Focus == s.selected {
		return nil
	}
	s.isolation = Isolation{Active: true, Focus: s.selected}
	s.notify(Change{Isolation: true})
	return nil
}

// ToggleIsolation flips isolation and returns the new state.
func (s *State) ToggleIsolation() (bool, error) {
	if s.isolation.Active {
		return false, s.SetIsolation(false)
	}
	if err := s.SetIsolation(true); err != nil {
		return false, err
	}
	return true, nil
}

// SetHighlight replaces the highlighted set.
func (s *State) SetHighlight(ids []string) {
	next := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			next[id] = struct{}{}
		}
	}
	if sameSet(next, s.highlighted) {
		return
	}
	s.highlighted = next
	s.notify(Change{Highlight: true})
}

// ClearHighlight empties the highlighted set.
func (s *State) ClearHighlight() { s.SetHighlight(nil) }

// Prune drops references to ids that no longer exist, after a reload.
func (s *State) Prune(exists func(id string) bool) {
	var c Change
	if s.selected != "" && !exists(s.selected) {
		s.selected = ""
		c.Selection = true
		if s.isolation.Active {
			s.isolation = Isolation{}
			c.Isolation = true
		}
	}
	if s.hovered != "" && !exists(s.hovered) {
		s.hovered = ""
		c.Hover = true
	}
	for id := range s.highlighted {
		if !exists(id) {
			delete(s.highlighted, id)
			c.Highlight = true
		}
	}
	s.notify(c)
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
