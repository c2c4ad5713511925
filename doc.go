// Package astar finds lowest-cost routes on uniform 8-connected grids.
//
// It exposes three entry points:
//
//   - Search / FindPath: run A* to completion and get a Result.
//   - Stepper: iterate the search one expansion at a time to drive debugging tools.
//   - SearchBatch: run many independent searches over one shared Grid in parallel.
//
// Costs are integers: 10 per orthogonal step and 14 per diagonal step, with
// the octile distance as heuristic, so returned paths are always optimal.
// The open set is an indexable binary heap; per-cell search state lives in a
// Scratch arena that is reused across searches via generation stamps.
package astar
