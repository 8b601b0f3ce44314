package services

import (
	"context"

	"go.uber.org/zap"

	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/valueobjects"
	"tabula-backend/domain/history"
	"tabula-backend/domain/portable"
)

// EditorSession binds an open board document to its undo/redo history and
// autosaver. Every edit records the pre-edit snapshot, so undo walks back
// one user action at a time; continuous gestures such as drags are
// bracketed with BeginGesture/CommitGesture and collapse into a single
// history entry.
//
// A session is owned by a single goroutine; only the autosaver behind it
// is concurrent.
type EditorSession struct {
	doc       *aggregates.Document
	history   *history.Stack
	autosaver *Autosaver
	gesture   *history.Snapshot
	logger    *zap.Logger
}

// NewEditorSession opens an editing session over a loaded document. The
// autosaver is marked dirty on every document change, viewport moves
// included.
func NewEditorSession(doc *aggregates.Document, stack *history.Stack, autosaver *Autosaver, logger *zap.Logger) *EditorSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EditorSession{
		doc:       doc,
		history:   stack,
		autosaver: autosaver,
		logger:    logger,
	}
	doc.Subscribe(autosaver.MarkDirty)
	return s
}

// Document returns the session's document
func (s *EditorSession) Document() *aggregates.Document {
	return s.doc
}

// SaveState returns the autosaver's current state
func (s *EditorSession) SaveState() SaveState {
	return s.autosaver.State()
}

// AddNode creates a node of the given type at the given position
func (s *EditorSession) AddNode(nodeType string, position valueobjects.Position) (valueobjects.NodeID, error) {
	return s.AddNodeWithData(nodeType, position, nil)
}

// AddNodeWithData creates a node with defaults overlaid by the payload
func (s *EditorSession) AddNodeWithData(nodeType string, position valueobjects.Position, data map[string]interface{}) (valueobjects.NodeID, error) {
	before := s.snapshot()
	id, err := s.doc.AddNodeWithData(nodeType, position, data)
	if err != nil {
		return valueobjects.NodeID{}, err
	}
	s.record(before)
	return id, nil
}

// RemoveNodes removes nodes and their incident edges. Returns the number
// of nodes removed.
func (s *EditorSession) RemoveNodes(ids ...valueobjects.NodeID) int {
	before := s.snapshot()
	removed := s.doc.RemoveNodes(ids...)
	if removed > 0 {
		s.record(before)
	}
	return removed
}

// UpdateNodeData merges a partial payload into a node's data
func (s *EditorSession) UpdateNodeData(id valueobjects.NodeID, patch map[string]interface{}) {
	before := s.snapshot()
	rev := s.doc.Revision()
	s.doc.UpdateNodeData(id, patch)
	if s.doc.Revision() != rev {
		s.record(before)
	}
}

// MoveNode moves a node to a new position. Continuous drags should be
// bracketed with BeginGesture/CommitGesture instead of recording every
// intermediate position.
func (s *EditorSession) MoveNode(id valueobjects.NodeID, position valueobjects.Position) {
	before := s.snapshot()
	rev := s.doc.Revision()
	s.doc.MoveNode(id, position)
	if s.doc.Revision() != rev {
		s.record(before)
	}
}

// AddEdge creates an edge between two existing nodes
func (s *EditorSession) AddEdge(source, target valueobjects.NodeID, opts entities.EdgeOptions) (string, error) {
	before := s.snapshot()
	id, err := s.doc.AddEdge(source, target, opts)
	if err != nil {
		return "", err
	}
	s.record(before)
	return id, nil
}

// RemoveEdges removes edges. Returns the number of edges removed.
func (s *EditorSession) RemoveEdges(ids ...string) int {
	before := s.snapshot()
	removed := s.doc.RemoveEdges(ids...)
	if removed > 0 {
		s.record(before)
	}
	return removed
}

// ApplyTemplate stamps a template batch onto the board as one undoable
// operation
func (s *EditorSession) ApplyTemplate(nodes []*entities.Node, edges []*entities.Edge) error {
	before := s.snapshot()
	if err := s.doc.ApplyTemplate(nodes, edges); err != nil {
		return err
	}
	s.record(before)
	return nil
}

// SetViewport updates the camera. Never recorded in history.
func (s *EditorSession) SetViewport(viewport valueobjects.Viewport) {
	s.doc.SetViewport(viewport)
}

// BeginGesture opens a history bracket around a continuous interaction.
// Edits made until CommitGesture collapse into a single undo step.
func (s *EditorSession) BeginGesture() {
	if s.gesture != nil {
		return
	}
	snap := s.snapshot()
	s.gesture = &snap
}

// CommitGesture closes the bracket opened by BeginGesture. If nothing
// changed during the gesture no history entry is created.
func (s *EditorSession) CommitGesture() {
	if s.gesture == nil {
		return
	}
	before := *s.gesture
	s.gesture = nil
	if !before.Equals(s.snapshot()) {
		s.history.Record(before)
	}
}

// CancelGesture abandons the bracket and restores the pre-gesture state
func (s *EditorSession) CancelGesture() {
	if s.gesture == nil {
		return
	}
	before := *s.gesture
	s.gesture = nil
	if !before.Equals(s.snapshot()) {
		s.doc.ReplaceContent(before.Nodes(), before.Edges())
	}
}

// Undo reverts the most recent edit. Returns false when there is nothing
// to undo.
func (s *EditorSession) Undo() bool {
	prev, ok := s.history.Undo(s.snapshot())
	if !ok {
		return false
	}
	s.doc.ReplaceContent(prev.Nodes(), prev.Edges())
	return true
}

// Redo re-applies the most recently undone edit. Returns false when there
// is nothing to redo.
func (s *EditorSession) Redo() bool {
	next, ok := s.history.Redo(s.snapshot())
	if !ok {
		return false
	}
	s.doc.ReplaceContent(next.Nodes(), next.Edges())
	return true
}

// CanUndo reports whether an undo step is available
func (s *EditorSession) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether a redo step is available
func (s *EditorSession) CanRedo() bool {
	return s.history.CanRedo()
}

// ExportJSON renders the document in interchange form
func (s *EditorSession) ExportJSON() ([]byte, error) {
	return portable.Export(s.doc)
}

// ImportJSON replaces the document's content from interchange JSON as one
// undoable operation. On any parse or validation error the document is
// left untouched.
func (s *EditorSession) ImportJSON(data []byte) error {
	nodes, edges, viewport, err := portable.Import(data, s.doc.Registry())
	if err != nil {
		return err
	}

	nodeMap := make(map[valueobjects.NodeID]*entities.Node, len(nodes))
	for _, node := range nodes {
		nodeMap[node.ID()] = node
	}
	edgeMap := make(map[string]*entities.Edge, len(edges))
	for _, edge := range edges {
		edgeMap[edge.ID()] = edge
	}

	before := s.snapshot()
	s.doc.ReplaceContent(nodeMap, edgeMap)
	s.doc.SetViewport(viewport)
	s.history.Record(before)
	return nil
}

// Flush saves unsaved work immediately
func (s *EditorSession) Flush(ctx context.Context) error {
	return s.autosaver.Flush(ctx)
}

// Close flushes and shuts down the session's autosaver
func (s *EditorSession) Close(ctx context.Context) error {
	return s.autosaver.Close(ctx)
}

func (s *EditorSession) snapshot() history.Snapshot {
	return history.NewSnapshot(s.doc.Nodes(), s.doc.Edges())
}

// record pushes the pre-edit snapshot unless a gesture bracket is open
func (s *EditorSession) record(before history.Snapshot) {
	if s.gesture != nil {
		return
	}
	s.history.Record(before)
}
