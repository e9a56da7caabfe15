package engine

import (
	"reflect"

	"github.com/hatworks/designer/internal/document"
)

// Scene is an ordered element list with a linear undo history. history[step]
// always equals the committed element list. Live edits made with Update
// (drag frames) stay out of history until Commit.
type Scene struct {
	elements []document.Element
	history  [][]document.Element
	step     int
}

// NewScene returns an empty scene whose history holds one empty snapshot.
func NewScene() *Scene {
	s := &Scene{}
	s.Reset(nil)
	return s
}

// Reset replaces the scene with elements as the only history entry.
func (s *Scene) Reset(elements []document.Element) {
	s.elements = document.CloneElements(elements)
	s.history = [][]document.Element{document.CloneElements(elements)}
	s.step = 0
}

// Clear drops all elements and history.
func (s *Scene) Clear() {
	s.Reset(nil)
}

// Elements returns a copy of the live element list.
func (s *Scene) Elements() []document.Element {
	return document.CloneElements(s.elements)
}

// Len returns the number of live elements.
func (s *Scene) Len() int {
	return len(s.elements)
}

// Find returns a copy of the element with the given id.
func (s *Scene) Find(id string) (document.Element, bool) {
	if i := s.index(id); i >= 0 {
		return s.elements[i].Clone(), true
	}
	return document.Element{}, false
}

func (s *Scene) index(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends an element and records a snapshot. Any redo future is
// discarded.
func (s *Scene) Add(el document.Element) {
	s.elements = append(s.elements, el.Clone())
	s.push()
}

// Update changes an element in the live list without touching history.
func (s *Scene) Update(id string, fn func(*document.Element)) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	fn(&s.elements[i])
	return true
}

// Replace overwrites an element in the live list without touching history.
func (s *Scene) Replace(el document.Element) bool {
	return s.Update(el.ID, func(dst *document.Element) { *dst = el.Clone() })
}

// Commit records the live list as a new snapshot if it differs from the
// current one. It reports whether a snapshot was pushed.
func (s *Scene) Commit() bool {
	if reflect.DeepEqual(s.elements, s.history[s.step]) {
		return false
	}
	s.push()
	return true
}

// Delete removes an element and records a snapshot.
func (s *Scene) Delete(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i:i], s.elements[i+1:]...)
	s.push()
	return true
}

func (s *Scene) push() {
	s.history = append(s.history[:s.step+1], document.CloneElements(s.elements))
	s.step = len(s.history) - 1
}

// Undo restores the previous snapshot. It is a no-op at the first entry.
func (s *Scene) Undo() bool {
	if s.step == 0 {
		return false
	}
	s.step--
	s.elements = document.CloneElements(s.history[s.step])
	return true
}

// Redo moves forward again after an Undo.
func (s *Scene) Redo() bool {
	if s.step >= len(s.history)-1 {
		return false
	}
	s.step++
	s.elements = document.CloneElements(s.history[s.step])
	return true
}

func (s *Scene) CanUndo() bool { return s.step > 0 }
func (s *Scene) CanRedo() bool { return s.step < len(s.history)-1 }

// Step returns the history cursor.
func (s *Scene) Step() int {
	return s.step
}

// History returns a copy of every snapshot.
func (s *Scene) History() [][]document.Element {
	out := make([][]document.Element, len(s.history))
	for i, snap := range s.history {
		out[i] = document.CloneElements(snap)
	}
	return out
}
