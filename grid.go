package astar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// GridSpec describes the world area covered by a grid.
type GridSpec struct {
	Center     Vec2
	Size       Vec2
	NodeRadius float64
}

// Grid is a rectangular, 8-connected cell grid. Cells are stored row-major
// and are read-only once the grid is built, so one Grid may back any number
// of concurrent searches.
type Grid struct {
	width, height int
	cells         []Cell
	center        Vec2
	size          Vec2
	radius        float64
}

// MaxCells is the largest grid a search can index; parents are int32 cell
// indices.
const MaxCells = math.MaxInt32

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if width > MaxCells/height {
		return fmt.Errorf("grid size %dx%d exceeds %d cells", width, height, MaxCells)
	}
	return nil
}

// NewGrid builds a width x height grid with unit cells whose lower-left
// corner sits at the world origin.
func NewGrid(width, height int, blocked ...Point) (*Grid, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	g := newGrid(width, height, GridSpec{
		Center:     Vec2{X: float64(width) / 2, Y: float64(height) / 2},
		Size:       Vec2{X: float64(width), Y: float64(height)},
		NodeRadius: 0.5,
	})
	for _, p := range blocked {
		if !g.InBounds(p) {
			return nil, fmt.Errorf("blocked cell %v outside %dx%d grid", p, width, height)
		}
		g.cells[g.Index(p)].Blocked = true
	}
	return g, nil
}

// BuildGrid samples world geometry: a cell is blocked when any obstacle
// overlaps the circle of spec.NodeRadius around its centre.
func BuildGrid(spec GridSpec, obstacles ...Obstacle) (*Grid, error) {
	if spec.NodeRadius <= 0 {
		return nil, fmt.Errorf("invalid node radius %v", spec.NodeRadius)
	}
	diameter := spec.NodeRadius * 2
	columns, rows := spec.Size.X/diameter, spec.Size.Y/diameter
	if !(columns >= 1 && rows >= 1) {
		return nil, fmt.Errorf("world size %vx%v holds no cells of radius %v", spec.Size.X, spec.Size.Y, spec.NodeRadius)
	}
	if columns > MaxCells || rows > MaxCells {
		return nil, fmt.Errorf("world size %vx%v exceeds %d cells at radius %v", spec.Size.X, spec.Size.Y, MaxCells, spec.NodeRadius)
	}
	width, height := int(columns), int(rows)
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	g := newGrid(width, height, spec)
	for i := range g.cells {
		c := &g.cells[i]
		for _, o := range obstacles {
			if o.Overlaps(c.World, spec.NodeRadius) {
				c.Blocked = true
				break
			}
		}
	}
	return g, nil
}

func newGrid(width, height int, spec GridSpec) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		center: spec.Center,
		size:   spec.Size,
		radius: spec.NodeRadius,
	}
	originX := spec.Center.X - spec.Size.X/2 + spec.NodeRadius
	originY := spec.Center.Y - spec.Size.Y/2 + spec.NodeRadius
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = Cell{
				Point: Point{X: x, Y: y},
				World: Vec2{
					X: originX + float64(x)*spec.NodeRadius*2,
					Y: originY + float64(y)*spec.NodeRadius*2,
				},
			}
		}
	}
	return g
}

// ParseGrid reads an ASCII map: one line per row, top row first, '#' for
// blocked cells and '.', ' ', 'S' or 'G' for free ones.
func ParseGrid(r io.Reader) (*Grid, error) {
	var rows []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	return GridFromRows(rows)
}

// GridFromRows is ParseGrid over rows already split into lines.
func GridFromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty grid")
	}
	width, height := len(rows[0]), len(rows)
	var blocked []Point
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), width)
		}
		y := height - 1 - i
		for x, ch := range []byte(row) {
			switch ch {
			case '#':
				blocked = append(blocked, Point{X: x, Y: y})
			case '.', ' ', 'S', 'G':
			default:
				return nil, fmt.Errorf("row %d: unexpected cell %q", i, ch)
			}
		}
	}
	return NewGrid(width, height, blocked...)
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Len is the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// Index maps an in-bounds point to its slot in the cell arena.
func (g *Grid) Index(p Point) int { return p.Y*g.width + p.X }

func (g *Grid) PointOf(i int) Point { return g.cells[i].Point }

// Cell returns the cell at p. p must be in bounds.
func (g *Grid) Cell(p Point) Cell { return g.cells[g.Index(p)] }

// Blocked reports whether p is blocked; out-of-bounds points count as blocked.
func (g *Grid) Blocked(p Point) bool {
	return !g.InBounds(p) || g.cells[g.Index(p)].Blocked
}

// CellAt maps a world position to the cell containing it, clamped to the
// grid bounds.
func (g *Grid) CellAt(world Vec2) Point {
	xf := clamp01((world.X - g.center.X + g.size.X/2) / g.size.X)
	yf := clamp01((world.Y - g.center.Y + g.size.Y/2) / g.size.Y)
	x := int(math.Floor(float64(g.width) * xf))
	y := int(math.Floor(float64(g.height) * yf))
	return Point{X: min(x, g.width-1), Y: min(y, g.height-1)}
}

// NeighborsOf returns the in-bounds 8-connected neighbours of p in a fixed
// order. Blocked cells are included; callers decide what to skip.
func (g *Grid) NeighborsOf(p Point) []Point {
	return g.appendNeighbors(make([]Point, 0, 8), p)
}

func (g *Grid) appendNeighbors(dst []Point, p Point) []Point {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			next := Point{X: p.X + dx, Y: p.Y + dy}
			if g.InBounds(next) {
				dst = append(dst, next)
			}
		}
	}
	return dst
}

// Rows renders the grid in the format ParseGrid reads.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	buf := make([]byte, g.width)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			buf[x] = '.'
			if g.cells[y*g.width+x].Blocked {
				buf[x] = '#'
			}
		}
		rows[g.height-1-y] = string(buf)
	}
	return rows
}

func (g *Grid) String() string {
	return strings.Join(g.Rows(), "\n")
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
