package astar

// Step costs, scaled by 10 so diagonals stay integral.
const (
	OrthogonalCost = 10
	DiagonalCost   = 14
)

// Octile is the octile distance between two cells. It is the exact cost of
// an unobstructed 8-connected route and therefore an admissible, consistent
// heuristic.
func Octile(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return DiagonalCost*dy + OrthogonalCost*(dx-dy)
	}
	return DiagonalCost*dx + OrthogonalCost*(dy-dx)
}

// StepCost is the cost of moving between two adjacent cells.
func StepCost(a, b Point) int {
	return Octile(a, b)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
