package astar

import "math"

// Obstacle is world geometry sampled by BuildGrid.
type Obstacle interface {
	// Overlaps reports whether the obstacle intersects the circle at center.
	Overlaps(center Vec2, radius float64) bool
}

// Circle is a round obstacle.
type Circle struct {
	Center Vec2
	Radius float64
}

func (c Circle) Overlaps(center Vec2, radius float64) bool {
	dx := c.Center.X - center.X
	dy := c.Center.Y - center.Y
	r := c.Radius + radius
	return dx*dx+dy*dy <= r*r
}

// Rect is an axis aligned obstacle. Min must not exceed Max.
type Rect struct {
	Min, Max Vec2
}

func (r Rect) Overlaps(center Vec2, radius float64) bool {
	nx := math.Max(r.Min.X, math.Min(center.X, r.Max.X))
	ny := math.Max(r.Min.Y, math.Min(center.Y, r.Max.Y))
	dx := center.X - nx
	dy := center.Y - ny
	return dx*dx+dy*dy <= radius*radius
}
