package astar

import (
	"fmt"
	"math/rand/v2"
)

// ClusterSpec shapes the walls GenerateGrid scatters.
type ClusterSpec struct {
	// Clusters is the number of random walks.
	Clusters int
	// Steps is the length of each walk.
	Steps int
	// Density is the chance that a visited cell is blocked.
	Density float64
}

var walkMoves = [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// GenerateGrid builds a width x height grid with clustered walls: each
// cluster is a random 4-connected walk that blocks the cells it visits with
// probability Density. Cells listed in keep always stay free.
func GenerateGrid(width, height int, spec ClusterSpec, rng *rand.Rand, keep ...Point) (*Grid, error) {
	if spec.Clusters < 0 || spec.Steps < 0 {
		return nil, fmt.Errorf("invalid cluster spec %d clusters x %d steps", spec.Clusters, spec.Steps)
	}
	if spec.Density < 0 || spec.Density > 1 {
		return nil, fmt.Errorf("density %v outside [0,1]", spec.Density)
	}
	g, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	for range spec.Clusters {
		p := Point{X: rng.IntN(width), Y: rng.IntN(height)}
		for range spec.Steps {
			if rng.Float64() < spec.Density {
				g.cells[g.Index(p)].Blocked = true
			}
			next := p.add(walkMoves[rng.IntN(len(walkMoves))])
			if g.InBounds(next) {
				p = next
			}
		}
	}
	for _, p := range keep {
		if g.InBounds(p) {
			g.cells[g.Index(p)].Blocked = false
		}
	}
	return g, nil
}
