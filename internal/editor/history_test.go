package editor

import (
	"testing"

	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func piece(id string) model.DrawableShape {
	return model.DrawableShape{Shape: model.NewRectangle(id, 10, 10), PartID: "p"}
}

func ids(shapes []model.DrawableShape) []string {
	out := make([]string, len(shapes))
	for i, d := range shapes {
		out[i] = d.ID()
	}
	return out
}

func TestNewHistory(t *testing.T) {
	h := NewHistory(0)
	if h.maxDepth != defaultMaxDepth {
		t.Errorf("expected maxDepth %d, got %d", defaultMaxDepth, h.maxDepth)
	}
	if h.CanUndo() {
		t.Error("new history should not be undoable")
	}
	if h.CanRedo() {
		t.Error("new history should not be redoable")
	}
	assert.Equal(t, 1, h.Len())
	assert.Empty(t, h.Current().Shapes)
}

func TestCommitAfterUndoTruncates(t *testing.T) {
	h := NewHistory(10)
	s1 := []model.DrawableShape{piece("a")}
	s2 := []model.DrawableShape{piece("a"), piece("b")}
	s3 := []model.DrawableShape{piece("c")}

	h.Commit(s1, "S1")
	h.Commit(s2, "S2")

	snap, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, ids(snap.Shapes))

	h.Commit(s3, "S3")
	assert.Equal(t, []string{"initial", "S1", "S3"}, h.Labels())
	assert.Equal(t, 2, h.Index())
	assert.False(t, h.CanRedo())

	_, ok = h.Redo()
	assert.False(t, ok, "redo after truncation is a no-op")
}

func TestUndoRedo(t *testing.T) {
	h := NewHistory(10)
	h.Commit([]model.DrawableShape{piece("a")}, "one")

	snap, ok := h.Undo()
	require.True(t, ok)
	assert.Empty(t, snap.Shapes)

	_, ok = h.Undo()
	assert.False(t, ok, "cannot undo past the first entry")

	snap, ok = h.Redo()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, ids(snap.Shapes))
	assert.Equal(t, "one", snap.Label)
}

func TestHistorySnapshotsAreIndependent(t *testing.T) {
	h := NewHistory(10)
	live := []model.DrawableShape{piece("a")}
	h.Commit(live, "one")

	live[0].Shape.(*model.Polygon).Sides[0].Length = 999
	live[0].FillColor = "#ffffff"

	cur := h.Current()
	assert.Equal(t, 10.0, cur.Shapes[0].Shape.(*model.Polygon).Sides[0].Length)
	assert.Empty(t, cur.Shapes[0].FillColor)

	cur.Shapes[0].Shape.(*model.Polygon).Position = model.V(5, 5)
	assert.True(t, h.Current().Shapes[0].Shape.Center().IsZero(), "returned snapshots are copies")
}

func TestHistoryMaxDepth(t *testing.T) {
	h := NewHistory(3)
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		h.Commit([]model.DrawableShape{piece(id)}, id)
	}
	assert.Equal(t, 4, h.Len())
	assert.Equal(t, 3, h.Index())
	assert.Equal(t, []string{"b", "c", "d", "e"}, h.Labels())

	undos := 0
	for h.CanUndo() {
		h.Undo()
		undos++
	}
	assert.Equal(t, 3, undos)
	assert.Equal(t, []string{"b"}, ids(h.Current().Shapes))
}
