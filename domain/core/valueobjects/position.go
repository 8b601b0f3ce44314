package valueobjects

// Position is a point in document (canvas) coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position from coordinates
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Translate returns a position offset by dx, dy
func (p Position) Translate(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}
