package aggregates

import (
	"time"

	"github.com/google/uuid"

	"tabula-backend/domain/config"
	"tabula-backend/domain/core/entities"
	"tabula-backend/domain/core/nodetypes"
	"tabula-backend/domain/core/valueobjects"
	"tabula-backend/domain/events"
	pkgerrors "tabula-backend/pkg/errors"
)

// BoardID represents a unique board identifier
type BoardID string

// NewBoardID creates a new random BoardID
func NewBoardID() BoardID {
	return BoardID(uuid.New().String())
}

// String returns the string representation
func (id BoardID) String() string {
	return string(id)
}

// ChangeListener is notified after every content mutation of a document.
// Listeners must not mutate the document from inside the callback.
type ChangeListener func()

// Document is the aggregate root for a board's editable content.
// It ensures consistency boundaries for the node/edge graph: every edge
// endpoint references an existing node, and every node carries a type
// known to the registry.
type Document struct {
	id           BoardID
	userID       string
	name         string
	description  string
	thumbnailURL string
	nodes        map[valueobjects.NodeID]*entities.Node
	edges        map[string]*entities.Edge
	viewport     valueobjects.Viewport
	registry     *nodetypes.Registry
	limits       *config.DomainConfig
	createdAt    time.Time
	updatedAt    time.Time
	revision     int64
	listeners    []ChangeListener
	events       []events.DomainEvent
}

// NewDocument creates an empty board document
func NewDocument(userID, name string, registry *nodetypes.Registry, limits *config.DomainConfig) (*Document, error) {
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID required")
	}
	if registry == nil {
		registry = nodetypes.Builtin()
	}
	if limits == nil {
		limits = config.DefaultDomainConfig()
	}
	if name == "" {
		name = limits.DefaultBoardName
	}

	now := time.Now()
	doc := &Document{
		id:        NewBoardID(),
		userID:    userID,
		name:      name,
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		edges:     make(map[string]*entities.Edge),
		viewport:  valueobjects.DefaultViewport(),
		registry:  registry,
		limits:    limits,
		createdAt: now,
		updatedAt: now,
		revision:  1,
		events:    []events.DomainEvent{},
	}

	doc.addEvent(events.BoardCreated{
		BaseEvent: events.BaseEvent{
			AggregateID: doc.id.String(),
			EventType:   "board.created",
			Timestamp:   now,
			Version:     1,
		},
		BoardID: doc.id.String(),
		UserID:  userID,
		Name:    name,
	})

	return doc, nil
}

// ReconstructDocument recreates a board document from stored data
func ReconstructDocument(
	id string,
	userID string,
	name string,
	description string,
	thumbnailURL string,
	nodes []*entities.Node,
	edges []*entities.Edge,
	viewport valueobjects.Viewport,
	createdAt time.Time,
	updatedAt time.Time,
	registry *nodetypes.Registry,
	limits *config.DomainConfig,
) (*Document, error) {
	if id == "" || userID == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for board reconstruction")
	}
	if registry == nil {
		registry = nodetypes.Builtin()
	}
	if limits == nil {
		limits = config.DefaultDomainConfig()
	}

	doc := &Document{
		id:           BoardID(id),
		userID:       userID,
		name:         name,
		description:  description,
		thumbnailURL: thumbnailURL,
		nodes:        make(map[valueobjects.NodeID]*entities.Node, len(nodes)),
		edges:        make(map[string]*entities.Edge, len(edges)),
		viewport:     viewport,
		registry:     registry,
		limits:       limits,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		revision:     1,
		events:       []events.DomainEvent{},
	}

	for _, node := range nodes {
		doc.nodes[node.ID()] = node
	}
	for _, edge := range edges {
		doc.edges[edge.ID()] = edge
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ID returns the board's unique identifier
func (d *Document) ID() BoardID {
	return d.id
}

// UserID returns the owner's ID
func (d *Document) UserID() string {
	return d.userID
}

// Name returns the board's name
func (d *Document) Name() string {
	return d.name
}

// Description returns the board's description
func (d *Document) Description() string {
	return d.description
}

// ThumbnailURL returns the board's thumbnail URL
func (d *Document) ThumbnailURL() string {
	return d.thumbnailURL
}

// Viewport returns the board's camera state
func (d *Document) Viewport() valueobjects.Viewport {
	return d.viewport
}

// CreatedAt returns when the board was created
func (d *Document) CreatedAt() time.Time {
	return d.createdAt
}

// UpdatedAt returns when the board was last updated
func (d *Document) UpdatedAt() time.Time {
	return d.updatedAt
}

// Revision returns the document's mutation counter. It increments on every
// content change and is used to detect unsaved work.
func (d *Document) Revision() int64 {
	return d.revision
}

// Registry returns the node type registry the document validates against
func (d *Document) Registry() *nodetypes.Registry {
	return d.registry
}

// NodeCount returns the number of nodes on the board
func (d *Document) NodeCount() int {
	return len(d.nodes)
}

// EdgeCount returns the number of edges on the board
func (d *Document) EdgeCount() int {
	return len(d.edges)
}

// Node returns the node with the given id, if present
func (d *Document) Node(id valueobjects.NodeID) (*entities.Node, bool) {
	node, ok := d.nodes[id]
	return node, ok
}

// Edge returns the edge with the given id, if present
func (d *Document) Edge(id string) (*entities.Edge, bool) {
	edge, ok := d.edges[id]
	return edge, ok
}

// Nodes returns a copy of the node map
func (d *Document) Nodes() map[valueobjects.NodeID]*entities.Node {
	// Return a copy to maintain encapsulation
	nodes := make(map[valueobjects.NodeID]*entities.Node, len(d.nodes))
	for k, v := range d.nodes {
		nodes[k] = v
	}
	return nodes
}

// Edges returns a copy of the edge map
func (d *Document) Edges() map[string]*entities.Edge {
	// Return a copy to maintain encapsulation
	edges := make(map[string]*entities.Edge, len(d.edges))
	for k, v := range d.edges {
		edges[k] = v
	}
	return edges
}

// Rename updates the board's name
func (d *Document) Rename(name string) error {
	if name == "" {
		return pkgerrors.NewValidationError("board name cannot be empty")
	}
	if len(name) > d.limits.MaxNameLength {
		return pkgerrors.NewValidationError("board name too long")
	}
	d.name = name
	d.touch()
	return nil
}

// SetDescription updates the board's description
func (d *Document) SetDescription(description string) error {
	if len(description) > d.limits.MaxDescriptionLength {
		return pkgerrors.NewValidationError("board description too long")
	}
	d.description = description
	d.touch()
	return nil
}

// SetThumbnailURL updates the board's thumbnail URL
func (d *Document) SetThumbnailURL(url string) {
	d.thumbnailURL = url
	d.touch()
}

// AddNode creates a node of the given type at the given position, seeded
// with the type's default payload from the registry
func (d *Document) AddNode(nodeType string, position valueobjects.Position) (valueobjects.NodeID, error) {
	return d.AddNodeWithData(nodeType, position, nil)
}

// AddNodeWithData creates a node of the given type with the registry
// defaults merged under the supplied payload
func (d *Document) AddNodeWithData(nodeType string, position valueobjects.Position, data map[string]interface{}) (valueobjects.NodeID, error) {
	defaults, err := d.registry.DefaultsFor(nodeType)
	if err != nil {
		return valueobjects.NodeID{}, err
	}
	if len(d.nodes) >= d.limits.MaxNodesPerBoard {
		return valueobjects.NodeID{}, pkgerrors.NewValidationError("maximum nodes reached")
	}

	node, err := entities.NewNode(nodeType, position, defaults)
	if err != nil {
		return valueobjects.NodeID{}, err
	}
	if data != nil {
		node.MergeData(data)
	}

	d.nodes[node.ID()] = node
	d.touch()

	d.addEvent(events.NodeAdded{
		BaseEvent: events.BaseEvent{
			AggregateID: d.id.String(),
			EventType:   "board.node_added",
			Timestamp:   d.updatedAt,
			Version:     1,
		},
		BoardID:  d.id.String(),
		NodeID:   node.ID(),
		NodeType: nodeType,
	})
	d.notifyChanged()

	return node.ID(), nil
}

// RemoveNodes removes the given nodes and every edge touching them.
// Unknown ids are skipped. Returns the number of nodes removed.
func (d *Document) RemoveNodes(ids ...valueobjects.NodeID) int {
	removed := make([]valueobjects.NodeID, 0, len(ids))
	for _, id := range ids {
		if _, exists := d.nodes[id]; !exists {
			continue
		}
		delete(d.nodes, id)
		removed = append(removed, id)
	}
	if len(removed) == 0 {
		return 0
	}

	// Cascade: an edge with a removed endpoint cannot survive
	removedEdges := []string{}
	for edgeID, edge := range d.edges {
		for _, id := range removed {
			if edge.Touches(id) {
				delete(d.edges, edgeID)
				removedEdges = append(removedEdges, edgeID)
				break
			}
		}
	}

	d.touch()
	d.addEvent(events.NodesRemoved{
		BaseEvent: events.BaseEvent{
			AggregateID: d.id.String(),
			EventType:   "board.nodes_removed",
			Timestamp:   d.updatedAt,
			Version:     1,
		},
		BoardID:      d.id.String(),
		NodeIDs:      removed,
		RemovedEdges: removedEdges,
	})
	d.notifyChanged()

	return len(removed)
}

// UpdateNodeData merges a partial payload into a node's data. A missing
// node is a silent no-op so stale UI patches never fail hard.
func (d *Document) UpdateNodeData(id valueobjects.NodeID, patch map[string]interface{}) {
	node, exists := d.nodes[id]
	if !exists || len(patch) == 0 {
		return
	}
	node.MergeData(patch)
	d.touch()
	d.notifyChanged()
}

// MoveNode moves a node to a new position. A missing node is a silent no-op.
func (d *Document) MoveNode(id valueobjects.NodeID, position valueobjects.Position) {
	node, exists := d.nodes[id]
	if !exists {
		return
	}
	if node.Position().Equals(position) {
		return
	}
	node.MoveTo(position)
	d.touch()
	d.notifyChanged()
}

// ResizeNode sets a node's explicit dimensions. A missing node is a silent
// no-op.
func (d *Document) ResizeNode(id valueobjects.NodeID, width, height float64) {
	node, exists := d.nodes[id]
	if !exists {
		return
	}
	node.Resize(width, height)
	d.touch()
	d.notifyChanged()
}

// AddEdge creates an edge between two existing nodes
func (d *Document) AddEdge(source, target valueobjects.NodeID, opts entities.EdgeOptions) (string, error) {
	if _, exists := d.nodes[source]; !exists {
		return "", pkgerrors.NewInvalidEndpointError(source.String())
	}
	if _, exists := d.nodes[target]; !exists {
		return "", pkgerrors.NewInvalidEndpointError(target.String())
	}
	if source.Equals(target) && !d.limits.AllowSelfConnections {
		return "", pkgerrors.NewInvalidEndpointError(source.String())
	}
	if len(d.edges) >= d.limits.MaxEdgesPerBoard {
		return "", pkgerrors.NewValidationError("maximum edges reached")
	}

	edge, err := entities.NewEdge(source, target, opts)
	if err != nil {
		return "", err
	}

	d.edges[edge.ID()] = edge
	d.touch()

	d.addEvent(events.EdgeAdded{
		BaseEvent: events.BaseEvent{
			AggregateID: d.id.String(),
			EventType:   "board.edge_added",
			Timestamp:   d.updatedAt,
			Version:     1,
		},
		BoardID:  d.id.String(),
		EdgeID:   edge.ID(),
		SourceID: source,
		TargetID: target,
	})
	d.notifyChanged()

	return edge.ID(), nil
}

// RemoveEdges removes the given edges. Unknown ids are skipped. Returns the
// number of edges removed.
func (d *Document) RemoveEdges(ids ...string) int {
	removed := []string{}
	for _, id := range ids {
		if _, exists := d.edges[id]; !exists {
			continue
		}
		delete(d.edges, id)
		removed = append(removed, id)
	}
	if len(removed) == 0 {
		return 0
	}

	d.touch()
	d.addEvent(events.EdgesRemoved{
		BaseEvent: events.BaseEvent{
			AggregateID: d.id.String(),
			EventType:   "board.edges_removed",
			Timestamp:   d.updatedAt,
			Version:     1,
		},
		BoardID: d.id.String(),
		EdgeIDs: removed,
	})
	d.notifyChanged()

	return len(removed)
}

// ApplyTemplate stamps a prebuilt batch of nodes and edges onto the board
// as one operation. Every node type must be known and every edge endpoint
// must resolve within the union of existing and incoming nodes; on any
// failure the document is left untouched.
func (d *Document) ApplyTemplate(nodes []*entities.Node, edges []*entities.Edge) error {
	if len(d.nodes)+len(nodes) > d.limits.MaxNodesPerBoard {
		return pkgerrors.NewValidationError("maximum nodes reached")
	}
	if len(d.edges)+len(edges) > d.limits.MaxEdgesPerBoard {
		return pkgerrors.NewValidationError("maximum edges reached")
	}

	incoming := make(map[valueobjects.NodeID]bool, len(nodes))
	for _, node := range nodes {
		if !d.registry.IsKnown(node.Type()) {
			return pkgerrors.NewUnknownNodeTypeError(node.Type())
		}
		if _, exists := d.nodes[node.ID()]; exists {
			return pkgerrors.NewValidationError("node " + node.ID().String() + " already exists on board")
		}
		incoming[node.ID()] = true
	}
	for _, edge := range edges {
		if _, exists := d.edges[edge.ID()]; exists {
			return pkgerrors.NewValidationError("edge " + edge.ID() + " already exists on board")
		}
		for _, endpoint := range []valueobjects.NodeID{edge.Source(), edge.Target()} {
			if _, exists := d.nodes[endpoint]; !exists && !incoming[endpoint] {
				return pkgerrors.NewInvalidEndpointError(endpoint.String())
			}
		}
	}

	for _, node := range nodes {
		d.nodes[node.ID()] = node
	}
	for _, edge := range edges {
		d.edges[edge.ID()] = edge
	}

	d.touch()
	d.addEvent(events.TemplateApplied{
		BaseEvent: events.BaseEvent{
			AggregateID: d.id.String(),
			EventType:   "board.template_applied",
			Timestamp:   d.updatedAt,
			Version:     1,
		},
		BoardID:   d.id.String(),
		NodeCount: len(nodes),
		EdgeCount: len(edges),
	})
	d.notifyChanged()

	return nil
}

// SetViewport updates the board's camera state. Viewport changes are
// persisted but never recorded in edit history.
func (d *Document) SetViewport(viewport valueobjects.Viewport) {
	if d.viewport.Equals(viewport) {
		return
	}
	d.viewport = viewport
	d.touch()
	d.notifyChanged()
}

// ContentClone returns deep copies of the document's nodes and edges,
// suitable for history snapshots
func (d *Document) ContentClone() (map[valueobjects.NodeID]*entities.Node, map[string]*entities.Edge) {
	nodes := make(map[valueobjects.NodeID]*entities.Node, len(d.nodes))
	for k, v := range d.nodes {
		nodes[k] = v.Clone()
	}
	edges := make(map[string]*entities.Edge, len(d.edges))
	for k, v := range d.edges {
		edges[k] = v.Clone()
	}
	return nodes, edges
}

// ReplaceContent swaps the document's nodes and edges wholesale. Used by
// undo/redo; the caller owns the maps and they are deep-copied in.
func (d *Document) ReplaceContent(nodes map[valueobjects.NodeID]*entities.Node, edges map[string]*entities.Edge) {
	d.nodes = make(map[valueobjects.NodeID]*entities.Node, len(nodes))
	for k, v := range nodes {
		d.nodes[k] = v.Clone()
	}
	d.edges = make(map[string]*entities.Edge, len(edges))
	for k, v := range edges {
		d.edges[k] = v.Clone()
	}
	d.touch()
	d.notifyChanged()
}

// Validate checks the aggregate's invariants: known node types and
// resolvable edge endpoints
func (d *Document) Validate() error {
	for _, node := range d.nodes {
		if !d.registry.IsKnown(node.Type()) {
			return pkgerrors.NewUnknownNodeTypeError(node.Type())
		}
	}
	for _, edge := range d.edges {
		if _, exists := d.nodes[edge.Source()]; !exists {
			return pkgerrors.NewInvalidEndpointError(edge.Source().String())
		}
		if _, exists := d.nodes[edge.Target()]; !exists {
			return pkgerrors.NewInvalidEndpointError(edge.Target().String())
		}
	}
	return nil
}

// Subscribe registers a listener invoked after every content mutation
func (d *Document) Subscribe(listener ChangeListener) {
	d.listeners = append(d.listeners, listener)
}

// GetUncommittedEvents returns events not yet published
func (d *Document) GetUncommittedEvents() []events.DomainEvent {
	return d.events
}

// MarkEventsAsCommitted clears the event list after publishing
func (d *Document) MarkEventsAsCommitted() {
	d.events = []events.DomainEvent{}
}

func (d *Document) addEvent(event events.DomainEvent) {
	d.events = append(d.events, event)
}

func (d *Document) notifyChanged() {
	for _, listener := range d.listeners {
		listener()
	}
}

func (d *Document) touch() {
	d.updatedAt = time.Now()
	d.revision++
}
