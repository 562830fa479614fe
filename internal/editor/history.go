package editor

import "github.com/piwi3910/SlabLayout/internal/model"

const defaultMaxDepth = model.DefaultHistoryDepth

// Snapshot captures the placed pieces at a point in time.
type Snapshot struct {
	Shapes []model.DrawableShape
	Label  string // Human-readable description (e.g. "Add Part")
}

// MakeSnapshot creates a snapshot holding a deep copy of shapes.
func MakeSnapshot(shapes []model.DrawableShape, label string) Snapshot {
	cp := model.CloneShapes(shapes)
	if cp == nil {
		cp = []model.DrawableShape{}
	}
	return Snapshot{Shapes: cp, Label: label}
}

func (s Snapshot) clone() Snapshot {
	return MakeSnapshot(s.Shapes, s.Label)
}

// History is a linear list of committed snapshots with a cursor. Entry 0 is
// the empty starting state. Every snapshot is an independent deep copy, both
// when stored and when handed out.
type History struct {
	snapshots []Snapshot
	index     int
	maxDepth  int
}

// NewHistory creates a History keeping at most maxDepth undo steps.
// A non-positive depth uses the default of 50.
func NewHistory(maxDepth int) *History {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	h := &History{maxDepth: maxDepth}
	h.Reset(nil)
	return h
}

// Reset discards all entries and starts over from shapes.
func (h *History) Reset(shapes []model.DrawableShape) {
	h.snapshots = []Snapshot{MakeSnapshot(shapes, "initial")}
	h.index = 0
}

// Commit discards any entries after the cursor, appends a copy of shapes and
// moves the cursor to it. The oldest entries are dropped beyond maxDepth.
func (h *History) Commit(shapes []model.DrawableShape, label string) {
	h.snapshots = append(h.snapshots[:h.index+1], MakeSnapshot(shapes, label))
	if over := len(h.snapshots) - (h.maxDepth + 1); over > 0 {
		h.snapshots = append([]Snapshot(nil), h.snapshots[over:]...)
	}
	h.index = len(h.snapshots) - 1
}

// Undo moves the cursor back one entry and returns a copy of it.
// Returns false at the first entry.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.index--
	return h.snapshots[h.index].clone(), true
}

// Redo moves the cursor forward one entry and returns a copy of it.
// Returns false at the last entry.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.index++
	return h.snapshots[h.index].clone(), true
}

// Current returns a copy of the entry under the cursor.
func (h *History) Current() Snapshot {
	return h.snapshots[h.index].clone()
}

// CanUndo returns true if there is an entry before the cursor.
func (h *History) CanUndo() bool {
	return h.index > 0
}

// CanRedo returns true if there is an entry after the cursor.
func (h *History) CanRedo() bool {
	return h.index < len(h.snapshots)-1
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Index returns the cursor position.
func (h *History) Index() int {
	return h.index
}

// Labels returns the label of every entry, oldest first.
func (h *History) Labels() []string {
	labels := make([]string, len(h.snapshots))
	for i, s := range h.snapshots {
		labels[i] = s.Label
	}
	return labels
}
