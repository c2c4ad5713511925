package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"

	astar "github.com/pdrpinto/gridastar"
)

type pointJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type vecJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type createGridRequest struct {
	Name    string      `json:"name"`
	Rows    []string    `json:"rows"`
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Blocked []pointJSON `json:"blocked"`
	Random  *randomJSON `json:"random,omitempty"`
}

// randomJSON asks for clustered random walls instead of explicit ones.
type randomJSON struct {
	Clusters int         `json:"clusters"`
	Steps    int         `json:"steps"`
	Density  float64     `json:"density"`
	Seed     *uint64     `json:"seed,omitempty"`
	Keep     []pointJSON `json:"keep,omitempty"`
}

type gridResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Rows   []string `json:"rows,omitempty"`
}

type pathRequest struct {
	Start      *pointJSON `json:"start"`
	Goal       *pointJSON `json:"goal"`
	StartWorld *vecJSON   `json:"startWorld"`
	GoalWorld  *vecJSON   `json:"goalWorld"`
}

type pathResponse struct {
	Found    bool        `json:"found"`
	Cost     int         `json:"cost"`
	Expanded int         `json:"expanded"`
	Path     []pointJSON `json:"path"`
	Error    string      `json:"error,omitempty"`
}

type queryJSON struct {
	Start pointJSON `json:"start"`
	Goal  pointJSON `json:"goal"`
}

type batchRequest struct {
	Queries []queryJSON `json:"queries" binding:"required"`
}

type batchResponse struct {
	Results []pathResponse `json:"results"`
}

type sessionRequest struct {
	Start pointJSON `json:"start"`
	Goal  pointJSON `json:"goal"`
}

type sessionResponse struct {
	ID     string `json:"id"`
	GridID string `json:"gridId"`
}

type snapshotResponse struct {
	Step    int         `json:"step"`
	State   string      `json:"state"`
	Current pointJSON   `json:"current"`
	Open    []pointJSON `json:"open"`
	Closed  []pointJSON `json:"closed"`
	Done    bool        `json:"done"`
	Found   bool        `json:"found"`
	Cost    int         `json:"cost"`
	Path    []pointJSON `json:"path,omitempty"`
}

func toPoint(p pointJSON) astar.Point { return astar.Point{X: p.X, Y: p.Y} }
func toVec(v vecJSON) astar.Vec2      { return astar.Vec2{X: v.X, Y: v.Y} }

func toPointsJSON(points []astar.Point) []pointJSON {
	out := make([]pointJSON, len(points))
	for i, p := range points {
		out[i] = pointJSON{X: p.X, Y: p.Y}
	}
	return out
}

func toPathResponse(result astar.Result) pathResponse {
	return pathResponse{
		Found:    result.Found,
		Cost:     result.Cost,
		Expanded: result.Expanded,
		Path:     toPointsJSON(result.Path),
	}
}

func errorJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleListGrids(c *gin.Context) {
	entries := s.store.Grids()
	grids := make([]gridResponse, len(entries))
	for i, entry := range entries {
		grids[i] = gridResponse{ID: entry.ID, Name: entry.Name, Width: entry.Grid.Width(), Height: entry.Grid.Height()}
	}
	c.JSON(http.StatusOK, gin.H{"grids": grids, "count": len(grids)})
}

func (s *Server) handleCreateGrid(c *gin.Context) {
	var req createGridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	g, err := s.buildGrid(req)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	entry := s.store.AddGrid(req.Name, g)
	s.logger.Info("grid created",
		slog.String("id", entry.ID),
		slog.String("name", entry.Name),
		slog.Int("width", g.Width()),
		slog.Int("height", g.Height()))
	c.JSON(http.StatusCreated, gridResponse{ID: entry.ID, Name: entry.Name, Width: g.Width(), Height: g.Height()})
}

func (s *Server) buildGrid(req createGridRequest) (*astar.Grid, error) {
	if len(req.Rows) > 0 {
		if cells := len(req.Rows) * len(req.Rows[0]); cells > s.cfg.MaxGridCells {
			return nil, fmt.Errorf("grid has %d cells, limit is %d", cells, s.cfg.MaxGridCells)
		}
		return astar.GridFromRows(req.Rows)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, errors.New("either rows or a positive width and height are required")
	}
	if req.Width > s.cfg.MaxGridCells/req.Height {
		return nil, fmt.Errorf("grid %dx%d exceeds the %d cell limit", req.Width, req.Height, s.cfg.MaxGridCells)
	}
	if r := req.Random; r != nil {
		seed := rand.Uint64()
		if r.Seed != nil {
			seed = *r.Seed
		}
		keep := make([]astar.Point, len(r.Keep))
		for i, p := range r.Keep {
			keep[i] = toPoint(p)
		}
		spec := astar.ClusterSpec{Clusters: r.Clusters, Steps: r.Steps, Density: r.Density}
		return astar.GenerateGrid(req.Width, req.Height, spec, rand.New(rand.NewPCG(seed, seed)), keep...)
	}
	blocked := make([]astar.Point, len(req.Blocked))
	for i, p := range req.Blocked {
		blocked[i] = toPoint(p)
	}
	return astar.NewGrid(req.Width, req.Height, blocked...)
}

func (s *Server) grid(c *gin.Context) (*GridEntry, bool) {
	entry, ok := s.store.Grid(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, fmt.Errorf("grid %q not found", c.Param("id")))
	}
	return entry, ok
}

func (s *Server) handleGetGrid(c *gin.Context) {
	entry, ok := s.grid(c)
	if !ok {
		return
	}
	g := entry.Grid
	c.JSON(http.StatusOK, gridResponse{ID: entry.ID, Name: entry.Name, Width: g.Width(), Height: g.Height(), Rows: g.Rows()})
}

func (s *Server) handleDeleteGrid(c *gin.Context) {
	if !s.store.DeleteGrid(c.Param("id")) {
		errorJSON(c, http.StatusNotFound, fmt.Errorf("grid %q not found", c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleFindPath(c *gin.Context) {
	entry, ok := s.grid(c)
	if !ok {
		return
	}
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	var (
		result astar.Result
		err    error
	)
	ctx := c.Request.Context()
	switch {
	case req.Start != nil && req.Goal != nil:
		result, err = astar.Search(ctx, entry.Grid, toPoint(*req.Start), toPoint(*req.Goal), s.searchOptions(c, entry)...)
	case req.StartWorld != nil && req.GoalWorld != nil:
		result, err = astar.FindPath(ctx, entry.Grid, toVec(*req.StartWorld), toVec(*req.GoalWorld), s.searchOptions(c, entry)...)
	default:
		errorJSON(c, http.StatusBadRequest, errors.New("need start and goal, or startWorld and goalWorld"))
		return
	}

	resp := toPathResponse(result)
	if err != nil {
		status := s.searchErrorStatus(c, err)
		if status != http.StatusOK {
			errorJSON(c, status, err)
			return
		}
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// searchErrorStatus maps a search failure to an HTTP status. A missing
// route is an answer, not a failure.
func (s *Server) searchErrorStatus(c *gin.Context, err error) int {
	switch {
	case errors.Is(err, astar.ErrNoPath):
		return http.StatusOK
	case errors.Is(err, astar.ErrInvalidEndpoint):
		return http.StatusBadRequest
	case errors.Is(err, astar.ErrExpansionLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		s.logger.Error("search failed",
			slog.String("request_id", c.GetString("requestID")),
			slog.Any("error", err))
		return http.StatusInternalServerError
	}
}

func (s *Server) handleBatch(c *gin.Context) {
	entry, ok := s.grid(c)
	if !ok {
		return
	}
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	if len(req.Queries) > s.cfg.MaxBatchQueries {
		errorJSON(c, http.StatusBadRequest,
			fmt.Errorf("batch has %d queries, limit is %d", len(req.Queries), s.cfg.MaxBatchQueries))
		return
	}

	queries := make([]astar.Query, len(req.Queries))
	for i, q := range req.Queries {
		queries[i] = astar.Query{Start: toPoint(q.Start), Goal: toPoint(q.Goal)}
	}
	options := append(s.searchOptions(c, entry), astar.WithWorkers(s.cfg.Workers))
	results, err := astar.SearchBatch(c.Request.Context(), entry.Grid, queries, options...)
	if err != nil {
		errorJSON(c, s.searchErrorStatus(c, err), err)
		return
	}

	resp := batchResponse{Results: make([]pathResponse, len(results))}
	for i, r := range results {
		resp.Results[i] = toPathResponse(r.Result)
		if r.Err != nil {
			resp.Results[i].Error = r.Err.Error()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateSession(c *gin.Context) {
	entry, ok := s.grid(c)
	if !ok {
		return
	}
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	s.store.Sweep()
	if s.store.SessionsFull() {
		errorJSON(c, http.StatusTooManyRequests, ErrTooManySessions)
		return
	}
	stepper, err := astar.NewStepper(entry.Grid, toPoint(req.Start), toPoint(req.Goal), s.searchOptions(c, entry)...)
	if err != nil {
		errorJSON(c, s.searchErrorStatus(c, err), err)
		return
	}
	session, err := s.store.AddSession(entry.ID, stepper)
	if err != nil {
		errorJSON(c, http.StatusTooManyRequests, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{ID: session.ID, GridID: entry.ID})
}

func (s *Server) handleNextStep(c *gin.Context) {
	session, ok := s.store.Session(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, fmt.Errorf("session %q not found", c.Param("id")))
		return
	}

	snapshot, open, closed, err := session.Step()
	if err != nil {
		errorJSON(c, s.searchErrorStatus(c, err), err)
		return
	}
	c.JSON(http.StatusOK, snapshotResponse{
		Step:    snapshot.StepIndex,
		State:   snapshot.State.String(),
		Current: pointJSON{X: snapshot.Current.X, Y: snapshot.Current.Y},
		Open:    toPointsJSON(open),
		Closed:  toPointsJSON(closed),
		Done:    snapshot.Done,
		Found:   snapshot.Found,
		Cost:    snapshot.Cost,
		Path:    toPointsJSON(snapshot.Path),
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.store.DeleteSession(c.Param("id")) {
		errorJSON(c, http.StatusNotFound, fmt.Errorf("session %q not found", c.Param("id")))
		return
	}
	c.Status(http.StatusNoContent)
}
