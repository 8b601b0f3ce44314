package valueobjects

// Viewport is the camera state of a board: pan offset plus zoom.
// It is persisted with the board but deliberately excluded from undo
// snapshots so that panning never pollutes edit history.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DefaultViewport returns the origin viewport at 100% zoom
func DefaultViewport() Viewport {
	return Viewport{X: 0, Y: 0, Zoom: 1}
}

// Equals checks if two viewports are equal
func (v Viewport) Equals(other Viewport) bool {
	return v.X == other.X && v.Y == other.Y && v.Zoom == other.Zoom
}

// Center returns the document coordinate at the center of a screen of the
// given size, given the current pan/zoom.
func (v Viewport) Center(screenWidth, screenHeight float64) Position {
	if v.Zoom == 0 {
		return Position{}
	}
	return Position{
		X: (screenWidth/2 - v.X) / v.Zoom,
		Y: (screenHeight/2 - v.Y) / v.Zoom,
	}
}
