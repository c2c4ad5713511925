package astar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

var (
	// ErrNoPath means the open set ran dry before the goal was reached.
	ErrNoPath = errors.New("no path found")
	// ErrInvalidEndpoint means start or goal is blocked or off the grid.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrCorruptParentChain signals broken cost/parent bookkeeping. It is a
	// bug, never a normal outcome.
	ErrCorruptParentChain = errors.New("corrupt parent chain")
	// ErrExpansionLimit means the search gave up after WithExpansionLimit
	// expansions.
	ErrExpansionLimit = errors.New("expansion limit reached")
)

// Result contains the outcome of a search.
// Path runs from the first step after Start up to and including the goal.
type Result struct {
	Path     []Point
	Cost     int
	Expanded int
	Found    bool
}

// Options defines parameters for the search.
type Options struct {
	NumberOfWorkers int
	Scratch         *Scratch
	ScratchPool     ScratchPool
	Logger          *slog.Logger
	ExpansionLimit  int

	newOpenSet func(less func(a, b *node) bool) OpenSet[*node]
}

// ScratchPool hands out Scratch arenas for searches to borrow. Search and
// SearchBatch return every arena they take.
type ScratchPool interface {
	Get() *Scratch
	Put(scratch *Scratch)
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many searches SearchBatch runs at once.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// WithScratch reuses caller-owned scratch space instead of allocating one
// per search.
func WithScratch(scratch *Scratch) Option {
	return func(options *Options) { options.Scratch = scratch }
}

// WithScratchPool borrows scratch space from pool when no WithScratch is
// given. A Stepper never borrows: it may outlive the call that built it.
func WithScratchPool(pool ScratchPool) Option {
	return func(options *Options) { options.ScratchPool = pool }
}

func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

// WithExpansionLimit aborts a search with ErrExpansionLimit once limit cells
// have been expanded. Zero means unlimited.
func WithExpansionLimit(limit int) Option {
	return func(options *Options) { options.ExpansionLimit = limit }
}

func withOpenSet(newOpenSet func(less func(a, b *node) bool) OpenSet[*node]) Option {
	return func(options *Options) { options.newOpenSet = newOpenSet }
}

func resolveOptions(options []Option) Options {
	searchOptions := Options{
		NumberOfWorkers: runtime.NumCPU(),
	}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.NumberOfWorkers < 1 {
		searchOptions.NumberOfWorkers = 1
	}
	if searchOptions.Logger == nil {
		searchOptions.Logger = slog.New(slog.DiscardHandler)
	}
	return searchOptions
}

// Search finds the cheapest 8-connected route from start to goal.
//
// A missing route is reported as ErrNoPath alongside a Result whose Found is
// false. Blocked or out-of-bounds endpoints fail with ErrInvalidEndpoint
// before any cell is expanded.
func Search(
	contextObject context.Context,
	grid *Grid,
	start Point,
	goal Point,
	options ...Option,
) (Result, error) {
	if opts := resolveOptions(options); opts.Scratch == nil && opts.ScratchPool != nil {
		scratch := opts.ScratchPool.Get()
		defer opts.ScratchPool.Put(scratch)
		options = append(options[:len(options):len(options)], WithScratch(scratch))
	}
	stepper, err := NewStepper(grid, start, goal, options...)
	if err != nil {
		return Result{}, err
	}
	return stepper.Run(contextObject)
}

// FindPath is Search over world positions. Each position resolves to the
// grid cell containing it.
func FindPath(
	contextObject context.Context,
	grid *Grid,
	start Vec2,
	goal Vec2,
	options ...Option,
) (Result, error) {
	return Search(contextObject, grid, grid.CellAt(start), grid.CellAt(goal), options...)
}

// PathCost sums the step costs along path, starting from start.
func PathCost(start Point, path []Point) int {
	total := 0
	previous := start
	for _, p := range path {
		total += StepCost(previous, p)
		previous = p
	}
	return total
}

func validateEndpoint(grid *Grid, name string, p Point) error {
	if !grid.InBounds(p) {
		return fmt.Errorf("%w: %s %v outside %dx%d grid", ErrInvalidEndpoint, name, p, grid.Width(), grid.Height())
	}
	if grid.Blocked(p) {
		return fmt.Errorf("%w: %s %v is blocked", ErrInvalidEndpoint, name, p)
	}
	return nil
}
