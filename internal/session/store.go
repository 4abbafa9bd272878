package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/Lllllllleong/examsolver/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Solver is the generation step a session drives.
type Solver interface {
	Solve(ctx context.Context, doc *models.UploadedDocument, credential string) (*models.GenerationResult, error)
}

type entry struct {
	mu       sync.Mutex
	state    State
	lastSeen time.Time
	inflight *semaphore.Weighted
	now      func() time.Time
}

func (e *entry) snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = e.now()
	return e.state
}

// apply commits the next state unless the action fails.
func (e *entry) apply(action func(State) (State, error)) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := action(e.state)
	if err != nil {
		return e.state, err
	}
	e.state = next
	e.lastSeen = e.now()
	return next, nil
}

// Store keeps every live session in memory. Nothing is persisted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry), now: time.Now}
}

// Create opens an empty session and returns its ID.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{lastSeen: s.now(), inflight: semaphore.NewWeighted(1), now: s.now}
	return id
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Get returns the current state of a session.
func (s *Store) Get(id string) (State, error) {
	e, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}
	return e.snapshot(), nil
}

// Update applies a synchronous action to a session.
func (s *Store) Update(id string, action func(State) (State, error)) (State, error) {
	e, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}
	return e.apply(action)
}

// SelectDocument records a newly chosen file for the session.
func (s *Store) SelectDocument(id string, doc *models.UploadedDocument) (State, error) {
	return s.Update(id, func(st State) (State, error) { return st.SelectDocument(doc) })
}

// SetCredential stores the access key for the session.
func (s *Store) SetCredential(id, credential string) (State, error) {
	return s.Update(id, func(st State) (State, error) { return st.WithCredential(credential), nil })
}

// Generate runs one solver call for the session. A second call while one is in
// flight fails with ErrBusy. The loading flag is cleared on every exit path.
func (s *Store) Generate(ctx context.Context, id string, solver Solver) (final State, err error) {
	e, err := s.lookup(id)
	if err != nil {
		return State{}, err
	}
	if !e.inflight.TryAcquire(1) {
		return e.snapshot(), ErrBusy
	}
	defer e.inflight.Release(1)

	began, err := e.apply(State.BeginGeneration)
	if err != nil {
		return began, err
	}
	defer func() {
		final, _ = e.apply(func(st State) (State, error) { return st.EndGeneration(), nil })
	}()

	res, err := solver.Solve(ctx, began.Document, began.Credential)
	if err != nil {
		return State{}, err
	}
	_, _ = e.apply(func(st State) (State, error) { return st.CompleteGeneration(res.Text), nil })
	return State{}, nil
}

// Delete drops a session, e.g. when its page is closed.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep drops sessions idle for longer than maxIdle, skipping any with a
// request in flight. It returns how many were removed.
func (s *Store) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff) && !e.state.Loading
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("Expired idle sessions.", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
