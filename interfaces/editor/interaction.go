// Package editor translates raw UI interactions (palette drops, paste,
// connection gestures, keyboard shortcuts) into document operations on an
// editing session.
package editor

import (
	"context"

	"go.uber.org/zap"

	"tabula-backend/application/services"
	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/valueobjects"
	pkgerrors "tabula-backend/pkg/errors"
)

// CanvasPort exposes the client's canvas geometry
type CanvasPort interface {
	// ProjectScreenPosition converts screen pixel coordinates into
	// document coordinates under the current pan and zoom
	ProjectScreenPosition(x, y float64) valueobjects.Position

	// ViewportCenter returns the document coordinate at the center of
	// the visible canvas
	ViewportCenter() valueobjects.Position
}

// ClipboardPort decodes pasted clipboard content
type ClipboardPort interface {
	// DecodeImage converts raw image bytes into a data URL suitable for
	// an image node's src
	DecodeImage(data []byte, mimeType string) (string, error)
}

// Key identifies a keyboard shortcut the adapter responds to
type Key int

const (
	KeyUndo Key = iota
	KeyRedo
	KeySave
	KeyDelete
)

// Selection is the set of nodes and edges currently selected on the canvas
type Selection struct {
	NodeIDs []valueobjects.NodeID
	EdgeIDs []string
}

// IsEmpty reports whether nothing is selected
func (s Selection) IsEmpty() bool {
	return len(s.NodeIDs) == 0 && len(s.EdgeIDs) == 0
}

// Adapter routes UI interactions to an editor session
type Adapter struct {
	session   *services.EditorSession
	canvas    CanvasPort
	clipboard ClipboardPort
	logger    *zap.Logger
}

// NewAdapter creates an interaction adapter over the given session
func NewAdapter(session *services.EditorSession, canvas CanvasPort, clipboard ClipboardPort, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		session:   session,
		canvas:    canvas,
		clipboard: clipboard,
		logger:    logger,
	}
}

// HandlePaletteDrop creates a node of the dragged type where it was
// dropped. Screen coordinates are projected into document space.
func (a *Adapter) HandlePaletteDrop(nodeType string, screenX, screenY float64) (valueobjects.NodeID, error) {
	position := a.canvas.ProjectScreenPosition(screenX, screenY)
	id, err := a.session.AddNode(nodeType, position)
	if err != nil {
		a.logger.Warn("Palette drop rejected",
			zap.String("nodeType", nodeType),
			zap.Error(err),
		)
		return valueobjects.NodeID{}, err
	}
	return id, nil
}

// HandlePasteText creates a text node at the viewport center holding the
// pasted text
func (a *Adapter) HandlePasteText(text string) (valueobjects.NodeID, error) {
	if text == "" {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("pasted text is empty")
	}
	return a.session.AddNodeWithData("text", a.canvas.ViewportCenter(), map[string]interface{}{
		"text": text,
	})
}

// HandlePasteImage creates an image node at the viewport center from
// pasted image bytes
func (a *Adapter) HandlePasteImage(data []byte, mimeType string) (valueobjects.NodeID, error) {
	src, err := a.clipboard.DecodeImage(data, mimeType)
	if err != nil {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("could not decode pasted image: " + err.Error())
	}
	return a.session.AddNodeWithData("image", a.canvas.ViewportCenter(), map[string]interface{}{
		"src": src,
	})
}

// HandleConnect completes a connection gesture between two nodes. A
// gesture ending on an invalid endpoint is silently discarded; any other
// failure is returned.
func (a *Adapter) HandleConnect(source, target valueobjects.NodeID) (string, bool, error) {
	id, err := a.session.AddEdge(source, target, entities.EdgeOptions{})
	if err != nil {
		if pkgerrors.IsInvalidEndpoint(err) {
			a.logger.Debug("Connection gesture discarded",
				zap.String("source", source.String()),
				zap.String("target", target.String()),
			)
			return "", false, nil
		}
		return "", false, err
	}
	return id, true, nil
}

// HandleKey dispatches a keyboard shortcut against the current selection
func (a *Adapter) HandleKey(ctx context.Context, key Key, selection Selection) error {
	switch key {
	case KeyUndo:
		a.session.Undo()
	case KeyRedo:
		a.session.Redo()
	case KeySave:
		return a.session.Flush(ctx)
	case KeyDelete:
		if selection.IsEmpty() {
			return nil
		}
		a.deleteSelection(selection)
	}
	return nil
}

// deleteSelection removes the selected nodes and edges as one undoable
// operation
func (a *Adapter) deleteSelection(selection Selection) {
	a.session.BeginGesture()
	a.session.RemoveNodes(selection.NodeIDs...)
	a.session.RemoveEdges(selection.EdgeIDs...)
	a.session.CommitGesture()
}
