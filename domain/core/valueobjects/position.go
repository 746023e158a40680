package valueobjects

import "math"

// Position is a value object representing entity coordinates on the canvas.
// Fields are exported so positions embed directly into entity snapshots.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position, clamping non-finite coordinates to zero
func NewPosition(x, y float64) Position {
	if !isFinite(x) {
		x = 0
	}
	if !isFinite(y) {
		y = 0
	}
	return Position{X: x, Y: y}
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.X-other.X) < epsilon && math.Abs(p.Y-other.Y) < epsilon
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) Position {
	return NewPosition(p.X+dx, p.Y+dy)
}

// Delta returns the offset from other to p
func (p Position) Delta(other Position) (dx, dy float64) {
	return p.X - other.X, p.Y - other.Y
}

// DistanceTo calculates the Euclidean distance to another position
func (p Position) DistanceTo(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Size is a width/height pair for nodes
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is a positioned rectangle in canvas coordinates, used for groups
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Origin returns the rect's top-left corner as a position
func (r Rect) Origin() Position {
	return Position{X: r.X, Y: r.Y}
}

// Equals checks if two rects are equal
func (r Rect) Equals(other Rect) bool {
	const epsilon = 1e-9
	return math.Abs(r.X-other.X) < epsilon &&
		math.Abs(r.Y-other.Y) < epsilon &&
		math.Abs(r.Width-other.Width) < epsilon &&
		math.Abs(r.Height-other.Height) < epsilon
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
