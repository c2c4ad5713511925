package astar

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/pdrpinto/gridastar/internal"
)

// State is the lifecycle stage of a search.
type State int

const (
	StateReady State = iota
	StateSearching
	StatePathFound
	StateNoPath
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateSearching:
		return "searching"
	case StatePathFound:
		return "path_found"
	case StateNoPath:
		return "no_path"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot struct {
	Current   Point
	State     State
	StepIndex int
	OpenLen   int
	Done      bool
	Found     bool
	Path      []Point
	Cost      int
}

// Stepper runs a single search one expansion at a time. It is single-shot:
// once it reaches StatePathFound or StateNoPath every further Step returns
// the final snapshot.
//
// The Stepper owns its Scratch until it finishes. Frontier and ClosedCells
// cost O(open) and O(closed), never O(grid).
type Stepper struct {
	grid      *Grid
	start     Point
	goal      Point
	startCell int32
	goalCell  int32
	options   Options

	scratch   *Scratch
	openSet   OpenSet[*node]
	neighbors []Point
	closed    []int32

	state     State
	stepCount int
	expanded  int
	current   Point
	result    Result
	err       error
}

// NewStepper validates the endpoints and seeds the open set with start.
func NewStepper(grid *Grid, start, goal Point, options ...Option) (*Stepper, error) {
	if err := validateEndpoint(grid, "start", start); err != nil {
		return nil, err
	}
	if err := validateEndpoint(grid, "goal", goal); err != nil {
		return nil, err
	}

	opts := resolveOptions(options)
	scratch := opts.Scratch
	if scratch == nil {
		scratch = NewScratch(grid.Len())
	}
	scratch.begin(grid.Len())

	var openSet OpenSet[*node] = scratch.open
	if opts.newOpenSet != nil {
		openSet = opts.newOpenSet(lessNode)
	}

	s := &Stepper{
		grid:      grid,
		start:     start,
		goal:      goal,
		startCell: int32(grid.Index(start)),
		goalCell:  int32(grid.Index(goal)),
		options:   opts,
		scratch:   scratch,
		openSet:   openSet,
		neighbors: make([]Point, 0, 8),
		current:   start,
	}

	startNode := scratch.node(int(s.startCell))
	startNode.g = 0
	startNode.h = Octile(start, goal)
	startNode.open = true
	if err := openSet.Add(startNode); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stepper) State() State { return s.state }

func (s *Stepper) done() bool {
	return s.state == StatePathFound || s.state == StateNoPath
}

// Step advances the search by one node expansion and returns a snapshot
func (s *Stepper) Step() (StepSnapshot, error) {
	if s.done() {
		return s.snapshot(), s.err
	}
	s.state = StateSearching

	if s.openSet.Len() == 0 {
		s.finish(StateNoPath, nil)
		return s.snapshot(), nil
	}
	if limit := s.options.ExpansionLimit; limit > 0 && s.expanded >= limit {
		s.finish(StateNoPath, fmt.Errorf("%w after %d expansions", ErrExpansionLimit, s.expanded))
		return s.snapshot(), s.err
	}

	s.stepCount++
	current, err := s.openSet.RemoveMin()
	if err != nil {
		s.finish(StateNoPath, err)
		return s.snapshot(), err
	}
	current.open = false
	current.closed = true
	s.closed = append(s.closed, current.cell)
	s.expanded++
	s.current = s.grid.PointOf(int(current.cell))

	if current.cell == s.goalCell {
		path, err := s.retrace()
		if err != nil {
			s.options.Logger.Error("parent chain corrupted",
				slog.Any("start", s.start), slog.Any("goal", s.goal), slog.Any("error", err))
			s.finish(StateNoPath, err)
			return s.snapshot(), err
		}
		s.result = Result{Path: path, Cost: current.g, Expanded: s.expanded, Found: true}
		s.finish(StatePathFound, nil)
		return s.snapshot(), nil
	}

	s.neighbors = s.grid.appendNeighbors(s.neighbors[:0], s.current)
	for _, neighbor := range s.neighbors {
		if s.grid.Blocked(neighbor) {
			continue
		}
		next := s.scratch.node(s.grid.Index(neighbor))
		if next.closed {
			continue
		}
		tentativeG := current.g + StepCost(s.current, neighbor)
		if tentativeG < next.g || !next.open {
			next.g = tentativeG
			next.h = Octile(neighbor, s.goal)
			next.parent = current.cell
			if !next.open {
				next.open = true
				err = s.openSet.Add(next)
			} else {
				err = s.openSet.Update(next)
			}
			if err != nil {
				s.finish(StateNoPath, err)
				return s.snapshot(), err
			}
		}
	}
	return s.snapshot(), nil
}

// Run steps until the search finishes or ctx is done.
func (s *Stepper) Run(contextObject context.Context) (Result, error) {
	for !s.done() {
		if s.stepCount%64 == 0 {
			if err := contextObject.Err(); err != nil {
				s.finish(StateNoPath, err)
				break
			}
		}
		if _, err := s.Step(); err != nil {
			break
		}
	}

	s.options.Logger.Debug("search finished",
		slog.Any("start", s.start),
		slog.Any("goal", s.goal),
		slog.String("state", s.state.String()),
		slog.Int("cost", s.result.Cost),
		slog.Int("expanded", s.expanded),
	)

	if s.err != nil {
		return Result{Expanded: s.expanded}, s.err
	}
	if s.state != StatePathFound {
		return Result{Expanded: s.expanded}, fmt.Errorf("%w from %v to %v", ErrNoPath, s.start, s.goal)
	}
	return s.result, nil
}

// Frontier returns the cells currently in the open set, by cell index.
func (s *Stepper) Frontier() []Point {
	open := s.openSet.Items()
	cells := make([]int32, len(open))
	for i, n := range open {
		cells[i] = n.cell
	}
	slices.Sort(cells)
	return s.points(cells)
}

// ClosedCells returns the cells expanded so far, in expansion order.
func (s *Stepper) ClosedCells() []Point {
	return s.points(s.closed)
}

func (s *Stepper) points(cells []int32) []Point {
	points := make([]Point, len(cells))
	for i, c := range cells {
		points[i] = s.grid.PointOf(int(c))
	}
	return points
}

func (s *Stepper) finish(state State, err error) {
	s.state = state
	s.err = err
	if state != StatePathFound {
		s.result = Result{Expanded: s.expanded}
	}
}

func (s *Stepper) retrace() ([]Point, error) {
	cells, err := internal.Retrace(s.scratch.parent, s.startCell, s.goalCell, s.grid.Len())
	if err != nil {
		return nil, fmt.Errorf("%w: %v to %v: %v", ErrCorruptParentChain, s.start, s.goal, err)
	}
	return s.points(cells), nil
}

func (s *Stepper) snapshot() StepSnapshot {
	snapshot := StepSnapshot{
		Current:   s.current,
		State:     s.state,
		StepIndex: s.stepCount,
		OpenLen:   s.openSet.Len(),
		Done:      s.done(),
		Found:     s.state == StatePathFound,
	}
	if snapshot.Found {
		snapshot.Path = append([]Point(nil), s.result.Path...)
		snapshot.Cost = s.result.Cost
	}
	return snapshot
}
