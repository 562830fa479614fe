// Package editor owns an editing session: the placed pieces on one sheet,
// their undo history, the gesture state machine and the session's view of the
// catalog quantities.
package editor

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/piwi3910/SlabLayout/internal/engine"
	"github.com/piwi3910/SlabLayout/internal/model"
)

// Session is a single editing session. It is not safe for concurrent use.
type Session struct {
	material model.Material
	margin   float64

	shapes      []model.DrawableShape
	history     *History
	interaction Interaction
	highlighted string

	// parts is the remaining quantity of each catalog part in this session;
	// initialParts is what Clear restores.
	parts        []model.CatalogPart
	initialParts []model.CatalogPart

	historyDepth int
	newID        func() string
	logger       *log.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMargin sets the initial clearance margin in mm.
func WithMargin(m float64) Option {
	return func(s *Session) { s.margin = math.Max(0, m) }
}

// WithHistoryDepth bounds the number of undo steps.
func WithHistoryDepth(n int) Option {
	return func(s *Session) { s.historyDepth = n }
}

// WithIDGenerator replaces the generator of placed piece ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewSession starts an empty session on material. parts is copied and
// becomes the quantity snapshot that Clear returns to.
func NewSession(material model.Material, parts []model.CatalogPart, opts ...Option) *Session {
	s := &Session{
		material:     material,
		margin:       model.DefaultMargin,
		historyDepth: model.DefaultHistoryDepth,
		newID:        model.NewID,
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.initialParts = model.ClonePartList(parts)
	s.parts = model.ClonePartList(parts)
	s.shapes = []model.DrawableShape{}
	s.history = NewHistory(s.historyDepth)
	return s
}

// Material returns the sheet being laid out.
func (s *Session) Material() model.Material { return s.material }

// SetMaterial switches the sheet. Placed pieces keep their positions.
func (s *Session) SetMaterial(m model.Material) {
	s.material = m
	s.logger.Debug("material changed", "material", m.Name, "size", m.Dimensions())
}

// Shapes returns a deep copy of the placed pieces.
func (s *Session) Shapes() []model.DrawableShape {
	return model.CloneShapes(s.shapes)
}

// Shape returns a copy of the placed piece with the given instance id.
func (s *Session) Shape(id string) (model.DrawableShape, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.DrawableShape{}, false
	}
	return s.shapes[i].Clone(), true
}

// Highlighted returns the id of the piece the dragged piece last collided with.
func (s *Session) Highlighted() string { return s.highlighted }

// Interaction returns the gesture in progress, or nil.
func (s *Session) Interaction() Interaction { return s.interaction }

func (s *Session) CanUndo() bool { return s.history.CanUndo() }
func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// History exposes the commit list for inspection.
func (s *Session) History() *History { return s.history }

// Summary recomputes the area accounting of the placed pieces.
func (s *Session) Summary() model.Summary {
	return model.Summarize(s.material, s.shapes)
}

// Conflicts reports pairs of pieces inside the clearance margin, e.g. after a
// rotation or scale that was not resolved.
func (s *Session) Conflicts() []engine.Conflict {
	return engine.FindConflicts(model.Geometry(s.shapes), s.margin)
}

// Parts returns the catalog parts with the quantities remaining in this session.
func (s *Session) Parts() []model.CatalogPart {
	return model.ClonePartList(s.parts)
}

// Margin returns the clearance margin in mm.
func (s *Session) Margin() float64 { return s.margin }

// SetMargin sets the clearance margin. Negative values are clamped to 0.
func (s *Session) SetMargin(m float64) {
	if math.IsNaN(m) || m < 0 {
		m = 0
	}
	s.margin = m
}

func (s *Session) partIndex(id string) int {
	for i, p := range s.parts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) indexOf(id string) int {
	for i, d := range s.shapes {
		if d.ID() == id {
			return i
		}
	}
	return -1
}

func (s *Session) commit(label string) {
	s.history.Commit(s.shapes, label)
	s.logger.Debug("commit", "label", label, "pieces", len(s.shapes), "index", s.history.Index())
}

// AddPart places one copy of a catalog part at the centre of the sheet.
func (s *Session) AddPart(partID string) (model.DrawableShape, error) {
	return s.AddPartAt(partID, s.material.Center())
}

// AddPartAt places one copy of a catalog part with its centre at pos and
// decrements the part's remaining quantity.
func (s *Session) AddPartAt(partID string, pos model.Vector) (model.DrawableShape, error) {
	i := s.partIndex(partID)
	if i < 0 {
		return model.DrawableShape{}, fmt.Errorf("part %q: %w", partID, model.ErrNotFound)
	}
	part := &s.parts[i]
	if part.Quantity <= 0 {
		s.logger.Debug("placement refused", "part", part.Name, "quantity", part.Quantity)
		return model.DrawableShape{}, fmt.Errorf("part %q: %w", part.Name, model.ErrExhaustedQuantity)
	}

	d := part.Place(s.newID(), pos)
	s.shapes = append(s.shapes, d)
	part.Quantity--
	s.commit("Add " + part.Name)
	return d.Clone(), nil
}

// Remove takes a placed piece off the sheet and returns it to the catalog.
func (s *Session) Remove(instanceID string) error {
	i := s.indexOf(instanceID)
	if i < 0 {
		return fmt.Errorf("piece %q: %w", instanceID, model.ErrNotFound)
	}
	partID := s.shapes[i].PartID
	s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
	if j := s.partIndex(partID); j >= 0 {
		s.parts[j].Quantity++
	}
	if s.highlighted == instanceID {
		s.highlighted = ""
	}
	s.commit("Remove")
	return nil
}

// Clear empties the sheet and restores the catalog quantities the session
// started with.
func (s *Session) Clear() {
	s.shapes = []model.DrawableShape{}
	s.parts = model.ClonePartList(s.initialParts)
	s.interaction = nil
	s.highlighted = ""
	s.commit("Clear")
}

// UpdateAttributes changes the appearance of one placed piece.
func (s *Session) UpdateAttributes(instanceID string, attrs model.Attributes) error {
	i := s.indexOf(instanceID)
	if i < 0 {
		return fmt.Errorf("piece %q: %w", instanceID, model.ErrNotFound)
	}
	attrs.BorderStyle = model.ParseBorderStyle(string(attrs.BorderStyle))
	s.shapes[i].Attributes = attrs
	s.commit("Edit piece")
	return nil
}

// UpdatePart applies an edited catalog part to the session: its name, shape
// and appearance replace the session's copy (the remaining quantity is kept),
// and its appearance is applied to every placed copy. One commit is made when
// any placed piece changed.
func (s *Session) UpdatePart(part model.CatalogPart) error {
	i := s.partIndex(part.ID)
	if i < 0 {
		return fmt.Errorf("part %q: %w", part.ID, model.ErrNotFound)
	}
	remaining := s.parts[i].Quantity
	s.parts[i] = part.Clone()
	s.parts[i].Quantity = remaining

	for j := range s.initialParts {
		if s.initialParts[j].ID == part.ID {
			qty := s.initialParts[j].Quantity
			s.initialParts[j] = part.Clone()
			s.initialParts[j].Quantity = qty
		}
	}

	changed := false
	for j := range s.shapes {
		if s.shapes[j].PartID == part.ID && s.shapes[j].Attributes != part.Attributes {
			s.shapes[j].Attributes = part.Attributes
			changed = true
		}
	}
	if changed {
		s.commit("Edit " + part.Name)
	}
	return nil
}

// AddCatalogParts makes newly created catalog parts available for
// placement. Parts already known to the session are skipped. History is not
// touched.
func (s *Session) AddCatalogParts(parts ...model.CatalogPart) {
	for _, p := range parts {
		if s.partIndex(p.ID) >= 0 {
			continue
		}
		s.parts = append(s.parts, p.Clone())
		s.initialParts = append(s.initialParts, p.Clone())
	}
}

// Undo restores the previous commit. A gesture in progress is abandoned.
// Catalog quantities are not part of history and are left as they are.
func (s *Session) Undo() bool {
	snap, ok := s.history.Undo()
	if !ok {
		return false
	}
	s.restore(snap)
	s.logger.Debug("undo", "label", snap.Label, "index", s.history.Index())
	return true
}

// Redo re-applies the next commit.
func (s *Session) Redo() bool {
	snap, ok := s.history.Redo()
	if !ok {
		return false
	}
	s.restore(snap)
	s.logger.Debug("redo", "label", snap.Label, "index", s.history.Index())
	return true
}

func (s *Session) restore(snap Snapshot) {
	s.shapes = snap.Shapes
	s.interaction = nil
	s.highlighted = ""
}

// PointerDown starts a gesture on the piece with the given instance id.
// It is ignored while another gesture is active or when id is unknown.
func (s *Session) PointerDown(id string, pointer model.Vector, mods Modifiers) {
	if s.interaction != nil {
		return
	}
	i := s.indexOf(id)
	if i < 0 || s.shapes[i].Shape == nil {
		return
	}
	s.interaction = begin(s.shapes[i].Shape, pointer, mods)
}

// PointerMove updates the active gesture. Dragging resolves collisions
// against every other piece and updates the highlight.
func (s *Session) PointerMove(pointer model.Vector) {
	if s.interaction == nil {
		return
	}
	i := s.indexOf(s.interaction.TargetID())
	if i < 0 {
		s.interaction = nil
		return
	}
	live := s.shapes[i].Shape

	switch ia := s.interaction.(type) {
	case Scaling:
		s.shapes[i].Shape = ia.apply(pointer).WithPosition(live.Center())
	case Rotating:
		if p, ok := live.(*model.Polygon); ok {
			s.shapes[i].Shape = ia.apply(p, pointer)
		}
	case Dragging:
		candidate := live.WithPosition(pointer.Sub(ia.GrabOffset))
		others := make([]model.Shape, 0, len(s.shapes)-1)
		for j, d := range s.shapes {
			if j != i && d.Shape != nil {
				others = append(others, d.Shape)
			}
		}
		res := engine.Resolve(candidate, others, s.margin)
		s.shapes[i].Shape = live.WithPosition(res.Position)
		s.highlighted = res.CollidedWith
	}
}

// PointerUp commits the gesture and returns to the idle state.
func (s *Session) PointerUp() {
	if s.interaction == nil {
		return
	}
	label := gestureLabel(s.interaction)
	s.interaction = nil
	s.highlighted = ""
	s.commit(label)
}

// PointerLeave finalizes the gesture exactly like PointerUp.
func (s *Session) PointerLeave() {
	s.PointerUp()
}

// Layout exports the session as a saveable document. Parts carries the
// quantities the session started with.
func (s *Session) Layout(name string) model.Layout {
	l := model.NewLayout(name, s.material)
	l.Margin = s.margin
	l.Parts = model.ClonePartList(s.initialParts)
	l.Shapes = model.CloneShapes(s.shapes)
	return l
}

// RestoreLayout replaces the session with l as a fresh history. Remaining
// quantities are the layout's starting quantities minus the copies placed.
func (s *Session) RestoreLayout(l model.Layout) {
	s.material = l.Material
	s.SetMargin(l.Margin)
	s.initialParts = model.ClonePartList(l.Parts)
	s.parts = model.ClonePartList(l.Parts)

	placed := map[string]int{}
	s.shapes = []model.DrawableShape{}
	for _, d := range l.Shapes {
		if d.Shape == nil {
			continue
		}
		s.shapes = append(s.shapes, d.Clone())
		placed[d.PartID]++
	}
	for i := range s.parts {
		s.parts[i].Quantity = max(0, s.parts[i].Quantity-placed[s.parts[i].ID])
	}

	s.interaction = nil
	s.highlighted = ""
	s.history = NewHistory(s.historyDepth)
	s.history.Reset(s.shapes)
	s.logger.Debug("layout restored", "name", l.Name, "pieces", len(s.shapes))
}
