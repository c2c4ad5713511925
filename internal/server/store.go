package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	astar "github.com/pdrpinto/gridastar"
)

// ErrTooManySessions means the session table is full.
var ErrTooManySessions = errors.New("too many step sessions")

// GridEntry is a registered grid. Grids are immutable once stored, so any
// number of requests may search one concurrently.
type GridEntry struct {
	ID      string
	Name    string
	Grid    *astar.Grid
	Created time.Time

	scratch *scratchPool
}

// Scratch is the pool path and batch searches over this grid borrow from.
func (e *GridEntry) Scratch() astar.ScratchPool { return e.scratch }

// scratchPool recycles full-grid arenas between requests, keeping at most
// maxIdle of them between bursts.
type scratchPool struct {
	cells   int
	maxIdle int

	mu      sync.Mutex
	idle    []*astar.Scratch
	created int
}

func (p *scratchPool) Get() *astar.Scratch {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.idle); n > 0 {
		scratch := p.idle[n-1]
		p.idle[n-1] = nil
		p.idle = p.idle[:n-1]
		return scratch
	}
	p.created++
	return astar.NewScratch(p.cells)
}

func (p *scratchPool) Put(scratch *astar.Scratch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) < p.maxIdle {
		p.idle = append(p.idle, scratch)
	}
}

// stats reports arenas allocated so far and arenas idle right now.
func (p *scratchPool) stats() (created, idle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created, len(p.idle)
}

// Session is a step-by-step search owned by one client.
type Session struct {
	ID     string
	GridID string

	mu       sync.Mutex
	stepper  *astar.Stepper
	lastUsed time.Time
}

// Store keeps grids and step sessions in memory.
type Store struct {
	mu          sync.RWMutex
	grids       map[string]*GridEntry
	sessions    map[string]*Session
	ttl         time.Duration
	maxSessions int
	idleScratch int
	now         func() time.Time
}

// NewStore keeps at most maxSessions live sessions and idleScratch spare
// arenas per grid.
func NewStore(sessionTTL time.Duration, maxSessions, idleScratch int) *Store {
	return &Store{
		grids:       make(map[string]*GridEntry),
		sessions:    make(map[string]*Session),
		ttl:         sessionTTL,
		maxSessions: maxSessions,
		idleScratch: idleScratch,
		now:         time.Now,
	}
}

// AddGrid registers g under a fresh id.
func (s *Store) AddGrid(name string, g *astar.Grid) *GridEntry {
	return s.PutGrid(uuid.NewString(), name, g)
}

// PutGrid registers g under id, replacing any grid already there.
func (s *Store) PutGrid(id, name string, g *astar.Grid) *GridEntry {
	entry := &GridEntry{
		ID:      id,
		Name:    name,
		Grid:    g,
		Created: s.now(),
		scratch: &scratchPool{cells: g.Len(), maxIdle: s.idleScratch},
	}
	s.mu.Lock()
	s.grids[id] = entry
	s.mu.Unlock()
	return entry
}

func (s *Store) Grid(id string) (*GridEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.grids[id]
	return entry, ok
}

// Grids lists registered grids by name, then id.
func (s *Store) Grids() []*GridEntry {
	s.mu.RLock()
	entries := make([]*GridEntry, 0, len(s.grids))
	for _, entry := range s.grids {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// DeleteGrid removes a grid and every session stepping over it.
func (s *Store) DeleteGrid(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grids[id]; !ok {
		return false
	}
	delete(s.grids, id)
	for sid, session := range s.sessions {
		if session.GridID == id {
			delete(s.sessions, sid)
		}
	}
	return true
}

// SessionsFull reports whether AddSession would fail right now.
func (s *Store) SessionsFull() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions) >= s.maxSessions
}

// AddSession registers stepper, failing with ErrTooManySessions when
// maxSessions are already live.
func (s *Store) AddSession(gridID string, stepper *astar.Stepper) (*Session, error) {
	session := &Session{
		ID:       uuid.NewString(),
		GridID:   gridID,
		stepper:  stepper,
		lastUsed: s.now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.maxSessions {
		return nil, ErrTooManySessions
	}
	s.sessions[session.ID] = session
	return session, nil
}

// Session returns a live session and marks it used.
func (s *Store) Session(id string) (*Session, bool) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if now.Sub(session.lastUsed) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	session.lastUsed = now
	return session, true
}

func (s *Store) DeleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Sweep drops sessions idle for longer than the TTL and reports how many.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		session.mu.Lock()
		expired := now.Sub(session.lastUsed) > s.ttl
		session.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Step advances the session's search under its lock.
func (session *Session) Step() (astar.StepSnapshot, []astar.Point, []astar.Point, error) {
	session.mu.Lock()
	defer session.mu.Unlock()
	snapshot, err := session.stepper.Step()
	return snapshot, session.stepper.Frontier(), session.stepper.ClosedCells(), err
}
