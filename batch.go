package astar

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Query is one start/goal pair of a batch.
type Query struct {
	Start Point
	Goal  Point
}

// BatchResult is the outcome of one Query. Err carries per-query failures
// such as ErrNoPath or ErrInvalidEndpoint.
type BatchResult struct {
	Query  Query
	Result Result
	Err    error
}

// SearchBatch runs independent searches over one shared grid on a pool of
// WithWorkers goroutines. Every search gets its own Scratch, so the grid is
// only ever read. Results are returned in query order; the batch itself only
// fails when ctx is done.
func SearchBatch(
	contextObject context.Context,
	grid *Grid,
	queries []Query,
	options ...Option,
) ([]BatchResult, error) {
	searchOptions := resolveOptions(options)

	scratchPool := searchOptions.ScratchPool
	if scratchPool == nil {
		scratchPool = &syncScratchPool{pool: sync.Pool{
			New: func() any { return NewScratch(grid.Len()) },
		}}
	}
	results := make([]BatchResult, len(queries))

	group, groupContext := errgroup.WithContext(contextObject)
	group.SetLimit(searchOptions.NumberOfWorkers)
	for i, query := range queries {
		group.Go(func() error {
			if err := groupContext.Err(); err != nil {
				return err
			}
			scratch := scratchPool.Get()
			defer scratchPool.Put(scratch)

			queryOptions := make([]Option, 0, len(options)+1)
			queryOptions = append(queryOptions, options...)
			queryOptions = append(queryOptions, WithScratch(scratch))

			result, err := Search(groupContext, grid, query.Start, query.Goal, queryOptions...)
			if ctxErr := groupContext.Err(); ctxErr != nil {
				return ctxErr
			}
			results[i] = BatchResult{Query: query, Result: result, Err: err}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type syncScratchPool struct {
	pool sync.Pool
}

func (p *syncScratchPool) Get() *Scratch        { return p.pool.Get().(*Scratch) }
func (p *syncScratchPool) Put(scratch *Scratch) { p.pool.Put(scratch) }
