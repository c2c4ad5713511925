package astar

import "fmt"

// Point is a cell coordinate on the grid.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func (p Point) add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Vec2 is a position in world space, on the ground plane.
type Vec2 struct {
	X, Y float64
}

// Cell is the immutable part of one grid cell.
// Search state never lives here; see Scratch.
type Cell struct {
	Point
	Blocked bool
	World   Vec2
}
