package weather

import (
	"context"
	"strings"
	"sync"
)

// Searcher runs one search. *Service implements it.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// Session holds the State of one user and serializes its transitions.
// The latest search wins: starting a search cancels the previous one, and a
// result arriving after a newer search started is discarded.
type Session struct {
	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

func NewSession() *Session {
	return &Session{}
}

// State returns a snapshot of the session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Search runs query through svc and applies the outcome to the session.
// It returns ErrSuperseded, leaving the state untouched, when a newer search
// or a Reset happened while it was running.
func (s *Session) Search(ctx context.Context, svc Searcher, query string) (State, error) {
	if strings.TrimSpace(query) == "" {
		return s.State(), ErrEmptyQuery
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	gen := s.begin(cancel, SearchStarted{Query: query})

	result, err := svc.Search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return s.state, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		s.state = Reduce(s.state, SearchFailed{Err: err})
		return s.state, err
	}
	s.state = Reduce(s.state, SearchSucceeded{Result: *result})
	return s.state, nil
}

// Reset abandons any running search and returns to the start screen.
func (s *Session) Reset() State {
	s.begin(nil, Reset{})
	return s.State()
}

func (s *Session) begin(cancel context.CancelFunc, e Event) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	s.state = Reduce(s.state, e)
	return s.gen
}
