// Package memory provides in-memory repository implementations for local
// development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"tabula-backend/application/ports"
	"tabula-backend/domain/core/aggregates"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/portable"
	pkgerrors "tabula-backend/pkg/errors"
)

type storedBoard struct {
	item     ports.BoardListItem
	userID   string
	document string
}

// BoardRepository implements ports.BoardRepository with an in-memory map.
// Boards are stored in their interchange form so reads always round-trip
// through the same serializer as the DynamoDB implementation.
type BoardRepository struct {
	mu       sync.RWMutex
	boards   map[string]storedBoard
	registry *nodetypes.Registry
}

// NewBoardRepository creates an empty in-memory board repository
func NewBoardRepository(registry *nodetypes.Registry) *BoardRepository {
	if registry == nil {
		registry = nodetypes.Builtin()
	}
	return &BoardRepository{
		boards:   make(map[string]storedBoard),
		registry: registry,
	}
}

func key(userID, boardID string) string {
	return userID + "/" + boardID
}

// Save persists a board document
func (r *BoardRepository) Save(ctx context.Context, doc *aggregates.Document) error {
	content, err := portable.Export(doc)
	if err != nil {
		return pkgerrors.NewSaveError(doc.ID().String(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.boards[key(doc.UserID(), doc.ID().String())] = storedBoard{
		item: ports.BoardListItem{
			ID:           doc.ID().String(),
			Name:         doc.Name(),
			Description:  doc.Description(),
			ThumbnailURL: doc.ThumbnailURL(),
			NodeCount:    doc.NodeCount(),
			CreatedAt:    doc.CreatedAt(),
			UpdatedAt:    doc.UpdatedAt(),
		},
		userID:   doc.UserID(),
		document: string(content),
	}
	return nil
}

// GetByID retrieves a board by its ID
func (r *BoardRepository) GetByID(ctx context.Context, userID string, id aggregates.BoardID) (*aggregates.Document, error) {
	r.mu.RLock()
	stored, ok := r.boards[key(userID, id.String())]
	r.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.NewNotFoundError("board")
	}

	nodes, edges, viewport, err := portable.Import([]byte(stored.document), r.registry)
	if err != nil {
		return nil, err
	}
	return aggregates.ReconstructDocument(
		stored.item.ID, stored.userID, stored.item.Name, stored.item.Description,
		stored.item.ThumbnailURL, nodes, edges, viewport,
		stored.item.CreatedAt, stored.item.UpdatedAt, r.registry, nil,
	)
}

// List returns the user's boards ordered by most recently updated
func (r *BoardRepository) List(ctx context.Context, userID string, opts ports.ListOptions) ([]ports.BoardListItem, int, error) {
	r.mu.RLock()
	all := []ports.BoardListItem{}
	for _, stored := range r.boards {
		if stored.userID == userID {
			all = append(all, stored.item)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	total := len(all)

	start := opts.Offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return all[start:end], total, nil
}

// Delete removes a board
func (r *BoardRepository) Delete(ctx context.Context, userID string, id aggregates.BoardID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(userID, id.String())
	if _, ok := r.boards[k]; !ok {
		return pkgerrors.NewNotFoundError("board")
	}
	delete(r.boards, k)
	return nil
}

// GuideMarkerRepository implements ports.GuideMarkerRepository in memory
type GuideMarkerRepository struct {
	mu    sync.RWMutex
	shown map[string]bool
}

// NewGuideMarkerRepository creates an empty in-memory guide marker repository
func NewGuideMarkerRepository() *GuideMarkerRepository {
	return &GuideMarkerRepository{shown: make(map[string]bool)}
}

func guideKey(userID, boardID, guide string) string {
	return userID + "/" + boardID + "/" + guide
}

// IsShown reports whether the guide was already shown for the board
func (r *GuideMarkerRepository) IsShown(ctx context.Context, userID, boardID, guide string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.shown[guideKey(userID, boardID, guide)], nil
}

// MarkShown records that the guide was shown for the board
func (r *GuideMarkerRepository) MarkShown(ctx context.Context, userID, boardID, guide string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown[guideKey(userID, boardID, guide)] = true
	return nil
}
