package editor

import (
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/SlabLayout/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParts() []model.CatalogPart {
	circle := model.NewCircle("101", 600, model.UnitMM)
	return []model.CatalogPart{
		{ID: "101", Name: "Peça A", Shape: circle, Quantity: 2, Attributes: model.DefaultAttributes()},
		{ID: "102", Name: "Peça B", Shape: model.NewRectangle("102", 564, 480), Quantity: 4, Attributes: model.DefaultAttributes()},
		{ID: "103", Name: "Peça C", Shape: model.NewRectangle("103", 100, 100), Quantity: 1, Attributes: model.DefaultAttributes()},
	}
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	n := 0
	base := []Option{
		WithLogger(log.New(io.Discard)),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("i%d", n)
		}),
	}
	m := model.Material{ID: "1", Name: "Chapa A", Width: 2750, Height: 1850}
	return NewSession(m, testParts(), append(base, opts...)...)
}

func place(t *testing.T, s *Session, partID string) model.DrawableShape {
	t.Helper()
	d, err := s.AddPart(partID)
	require.NoError(t, err)
	return d
}

func placeAt(t *testing.T, s *Session, partID string, pos model.Vector) model.DrawableShape {
	t.Helper()
	d, err := s.AddPartAt(partID, pos)
	require.NoError(t, err)
	return d
}

func quantity(s *Session, id string) int {
	for _, p := range s.Parts() {
		if p.ID == id {
			return p.Quantity
		}
	}
	return -1
}

func TestAddPartCentresAndDecrements(t *testing.T) {
	s := newTestSession(t)

	d, err := s.AddPart("102")
	require.NoError(t, err)
	assert.Equal(t, "i1", d.ID())
	assert.Equal(t, "102", d.PartID)
	assert.Equal(t, model.V(1375, 925), d.Shape.Center())
	assert.Equal(t, 3, quantity(s, "102"))
	assert.True(t, s.CanUndo())
	assert.Equal(t, 2, s.History().Len())
}

func TestAddPartRefusesExhausted(t *testing.T) {
	s := newTestSession(t)

	_, err := s.AddPart("103")
	require.NoError(t, err)

	before := s.History().Len()
	_, err = s.AddPart("103")
	assert.ErrorIs(t, err, model.ErrExhaustedQuantity)
	assert.Len(t, s.Shapes(), 1)
	assert.Equal(t, before, s.History().Len(), "refused placement makes no commit")
	assert.Equal(t, 0, quantity(s, "103"))

	_, err = s.AddPart("nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestClearRestoresQuantities(t *testing.T) {
	s := newTestSession(t)
	place(t, s, "101")
	place(t, s, "101")
	assert.Equal(t, 0, quantity(s, "101"))

	s.Clear()
	assert.Empty(t, s.Shapes())
	assert.Equal(t, 2, quantity(s, "101"))

	require.True(t, s.Undo())
	assert.Len(t, s.Shapes(), 2, "undo after clear brings the pieces back")
}

func TestUndoDoesNotRestoreQuantities(t *testing.T) {
	s := newTestSession(t)
	place(t, s, "102")
	require.True(t, s.Undo())
	assert.Empty(t, s.Shapes())
	assert.Equal(t, 3, quantity(s, "102"))
	require.True(t, s.Redo())
	assert.Len(t, s.Shapes(), 1)
}

func TestDragKeepsGrabOffset(t *testing.T) {
	s := newTestSession(t)
	d := placeAt(t, s, "103", model.V(200, 200))

	s.PointerDown(d.ID(), model.V(210, 190), Modifiers{})
	require.IsType(t, Dragging{}, s.Interaction())
	s.PointerMove(model.V(510, 490))

	got, _ := s.Shape(d.ID())
	assert.Equal(t, model.V(500, 500), got.Shape.Center())

	commits := s.History().Len()
	s.PointerUp()
	assert.Nil(t, s.Interaction())
	assert.Equal(t, commits+1, s.History().Len(), "pointer-up commits once")
}

func TestDragResolvesCollision(t *testing.T) {
	s := newTestSession(t, WithMargin(5))
	a := placeAt(t, s, "102", model.V(500, 500))
	b := placeAt(t, s, "102", model.V(0, 0))

	s.PointerDown(b.ID(), model.V(0, 0), Modifiers{})
	s.PointerMove(model.V(1000, 500))

	got, ok := s.Shape(b.ID())
	require.True(t, ok)
	assert.InDelta(t, 1069, got.Shape.Center().X, 1e-9, "pushed to width plus margin")
	assert.InDelta(t, 500, got.Shape.Center().Y, 1e-9)
	assert.Equal(t, a.ID(), s.Highlighted())

	s.PointerMove(model.V(2000, 1500))
	assert.Empty(t, s.Highlighted(), "highlight clears when free")

	s.PointerUp()
	assert.Equal(t, 4, s.History().Len())
}

func TestPointerLeaveCommits(t *testing.T) {
	s := newTestSession(t)
	d := place(t, s, "103")
	commits := s.History().Len()

	s.PointerDown(d.ID(), d.Shape.Center(), Modifiers{})
	s.PointerMove(model.V(100, 100))
	s.PointerLeave()

	assert.Nil(t, s.Interaction())
	assert.Equal(t, commits+1, s.History().Len())

	s.PointerLeave()
	s.PointerUp()
	assert.Equal(t, commits+1, s.History().Len(), "no gesture, no commit")
}

func TestPointerDownIgnoredWhileActiveOrUnknown(t *testing.T) {
	s := newTestSession(t)
	a := place(t, s, "102")
	b := place(t, s, "102")

	s.PointerDown("missing", model.V(0, 0), Modifiers{})
	assert.Nil(t, s.Interaction())

	s.PointerDown(a.ID(), model.V(0, 0), Modifiers{})
	s.PointerDown(b.ID(), model.V(0, 0), Modifiers{Scale: true})
	require.NotNil(t, s.Interaction())
	assert.Equal(t, a.ID(), s.Interaction().TargetID())
}

func TestScaleDoesNotCompound(t *testing.T) {
	s := newTestSession(t)
	d := placeAt(t, s, "103", model.V(0, 0))

	s.PointerDown(d.ID(), model.V(10, 0), Modifiers{Scale: true, Rotate: true})
	require.IsType(t, Scaling{}, s.Interaction())

	for i := 0; i < 5; i++ {
		s.PointerMove(model.V(20, 0))
	}
	got, _ := s.Shape(d.ID())
	w, h, _ := got.Shape.(*model.Polygon).RectSize()
	assert.InDelta(t, 200, w, 1e-9)
	assert.InDelta(t, 200, h, 1e-9)

	s.PointerMove(model.V(5, 0))
	got, _ = s.Shape(d.ID())
	w, _, _ = got.Shape.(*model.Polygon).RectSize()
	assert.InDelta(t, 50, w, 1e-9)
}

func TestScaleCircle(t *testing.T) {
	s := newTestSession(t)
	d := placeAt(t, s, "101", model.V(0, 0))

	s.PointerDown(d.ID(), model.V(0, 100), Modifiers{Scale: true})
	s.PointerMove(model.V(0, 150))
	s.PointerUp()

	got, _ := s.Shape(d.ID())
	assert.InDelta(t, 900, got.Shape.(*model.Circle).Radius, 1e-9)
}

func TestScaleZeroDistanceKeepsSize(t *testing.T) {
	s := newTestSession(t)
	d := placeAt(t, s, "103", model.V(50, 50))

	s.PointerDown(d.ID(), model.V(50, 50), Modifiers{Scale: true})
	s.PointerMove(model.V(300, 300))

	got, _ := s.Shape(d.ID())
	w, _, _ := got.Shape.(*model.Polygon).RectSize()
	assert.Equal(t, 100.0, w)
}

func TestRotatePolygon(t *testing.T) {
	s := newTestSession(t)
	d := placeAt(t, s, "102", model.V(0, 0))

	s.PointerDown(d.ID(), model.V(10, 0), Modifiers{Rotate: true})
	require.IsType(t, Rotating{}, s.Interaction())
	s.PointerMove(model.V(0, 10))

	got, _ := s.Shape(d.ID())
	assert.InDelta(t, 90, got.Shape.(*model.Polygon).Rotation, 1e-9)
}

func TestRotateModifierOnCircleDrags(t *testing.T) {
	s := newTestSession(t)
	d := placeAt(t, s, "101", model.V(0, 0))

	s.PointerDown(d.ID(), model.V(10, 0), Modifiers{Rotate: true})
	assert.IsType(t, Dragging{}, s.Interaction())
}

func TestUndoDuringGestureResets(t *testing.T) {
	s := newTestSession(t)
	d := place(t, s, "103")
	s.PointerDown(d.ID(), d.Shape.Center(), Modifiers{})

	require.True(t, s.Undo())
	assert.Nil(t, s.Interaction())
	assert.Empty(t, s.Shapes())
}

func TestLiveShapesAreIndependentOfHistory(t *testing.T) {
	s := newTestSession(t)
	d := placeAt(t, s, "103", model.V(0, 0))
	s.PointerDown(d.ID(), model.V(0, 0), Modifiers{})
	s.PointerMove(model.V(300, 300))
	s.PointerUp()

	require.True(t, s.Undo())
	got, _ := s.Shape(d.ID())
	assert.Equal(t, model.V(0, 0), got.Shape.Center())

	out := s.Shapes()
	out[0].Shape.(*model.Polygon).Position = model.V(7, 7)
	got, _ = s.Shape(d.ID())
	assert.Equal(t, model.V(0, 0), got.Shape.Center())
}

func TestSetMarginClamps(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, 5.0, s.Margin())
	s.SetMargin(-3)
	assert.Equal(t, 0.0, s.Margin())
	s.SetMargin(12)
	assert.Equal(t, 12.0, s.Margin())
}

func TestUpdateAttributes(t *testing.T) {
	s := newTestSession(t)
	d := place(t, s, "102")

	err := s.UpdateAttributes(d.ID(), model.Attributes{BorderStyle: "dotted", BorderColor: "#ff0000", FillColor: "#00ff00"})
	require.NoError(t, err)
	got, _ := s.Shape(d.ID())
	assert.Equal(t, model.BorderDotted, got.BorderStyle)
	assert.Equal(t, 3, s.History().Len())

	assert.ErrorIs(t, s.UpdateAttributes("missing", model.Attributes{}), model.ErrNotFound)
}

func TestUpdatePartPropagates(t *testing.T) {
	s := newTestSession(t)
	d := place(t, s, "102")

	part := testParts()[1]
	part.Quantity = 99
	part.FillColor = "#123456"
	require.NoError(t, s.UpdatePart(part))

	got, _ := s.Shape(d.ID())
	assert.Equal(t, "#123456", got.FillColor)
	assert.Equal(t, 3, quantity(s, "102"), "remaining quantity kept")

	s.Clear()
	assert.Equal(t, 4, quantity(s, "102"))

	assert.ErrorIs(t, s.UpdatePart(model.CatalogPart{ID: "zzz"}), model.ErrNotFound)
}

func TestRemoveReturnsPiece(t *testing.T) {
	s := newTestSession(t)
	d := place(t, s, "101")
	require.NoError(t, s.Remove(d.ID()))
	assert.Empty(t, s.Shapes())
	assert.Equal(t, 2, quantity(s, "101"))
	assert.ErrorIs(t, s.Remove(d.ID()), model.ErrNotFound)
}

func TestSummaryTracksShapes(t *testing.T) {
	s := newTestSession(t)
	place(t, s, "102")
	sum := s.Summary()
	assert.Equal(t, 564.0*480, sum.UsedArea)
	assert.Equal(t, 2750.0*1850, sum.TotalArea)
	assert.Equal(t, 1, sum.PieceCount)
}

func TestConflictsAfterScale(t *testing.T) {
	s := newTestSession(t)
	a := placeAt(t, s, "102", model.V(300, 300))
	placeAt(t, s, "102", model.V(1000, 300))
	assert.Empty(t, s.Conflicts())

	s.PointerDown(a.ID(), model.V(310, 300), Modifiers{Scale: true})
	s.PointerMove(model.V(330, 300))
	s.PointerUp()
	assert.Len(t, s.Conflicts(), 1)
}

func TestLayoutRoundTrip(t *testing.T) {
	s := newTestSession(t)
	place(t, s, "101")
	place(t, s, "102")
	s.SetMargin(8)

	l := s.Layout("job")
	assert.Equal(t, "job", l.Name)
	assert.Len(t, l.Shapes, 2)
	assert.Equal(t, 2, l.Parts[0].Quantity, "layout keeps starting quantities")

	r := newTestSession(t)
	r.RestoreLayout(l)
	assert.Len(t, r.Shapes(), 2)
	assert.Equal(t, 8.0, r.Margin())
	assert.Equal(t, 1, quantity(r, "101"))
	assert.Equal(t, 3, quantity(r, "102"))
	assert.False(t, r.CanUndo())

	r.Clear()
	assert.Equal(t, 2, quantity(r, "101"))
}

func TestAddCatalogParts(t *testing.T) {
	s := newTestSession(t)
	index := s.History().Index()

	extra := model.CatalogPart{ID: "104", Name: "Peça D", Shape: model.NewRectangle("104", 50, 50), Quantity: 1}
	dup := model.CatalogPart{ID: "101", Name: "dup", Quantity: 99}
	s.AddCatalogParts(extra, dup)

	require.Len(t, s.Parts(), 4)
	assert.Equal(t, 2, quantity(s, "101"))
	assert.Equal(t, index, s.History().Index())

	_, err := s.AddPart("104")
	require.NoError(t, err)
	_, err = s.AddPart("104")
	assert.ErrorIs(t, err, model.ErrExhaustedQuantity)

	// Clear restores the new part too
	s.Clear()
	assert.Equal(t, 1, quantity(s, "104"))
}
