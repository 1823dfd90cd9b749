package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/rs/zerolog/log"
)

// Errors exposed by the service layer.
var (
	ErrNotFound   = errors.New("game not found")
	ErrNotAPlayer = errors.New("not a player")
)

// GameState is the in-memory state tracked per game. Player holds the id of
// the browser seated as the human; everyone else spectates.
type GameState struct {
	ID      string
	Game    domain.Game
	Player  string
	Created time.Time
	Updated time.Time
}

type subscriber struct {
	mu     sync.Mutex
	ch     chan GameState
	closed bool
}

// send delivers gs without blocking; false means the subscriber is full.
func (s *subscriber) send(gs GameState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- gs:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Service manages games and subscribers.
type Service struct {
	mu    sync.Mutex
	games map[string]*GameState
	subs  map[string]map[*subscriber]struct{}
	now   func() time.Time
}

// NewService creates an empty service.
func NewService() *Service {
	return &Service{
		games: make(map[string]*GameState),
		subs:  make(map[string]map[*subscriber]struct{}),
		now:   time.Now,
	}
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.now()
	gs := &GameState{ID: id, Game: domain.New(), Created: now, Updated: now}
	s.games[id] = gs
	log.Info().Str("gameID", id).Msg("game created")
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Join seats the player as the human if the seat is free or already theirs;
// returns Empty for spectators.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	side := domain.Empty
	if gs.Player == "" || gs.Player == playerID {
		if gs.Player == "" {
			log.Info().Str("gameID", id).Str("playerID", playerID).Msg("seat claimed")
		}
		gs.Player = playerID
		side = domain.Human
	}
	gs.Updated = s.now()
	cp := *gs
	return side, &cp, nil
}

// Play validates the seat and runs a full turn: the human move and the
// computer's reply are applied under one lock, so subscribers only ever see
// completed turns.
func (s *Service) Play(id, playerID string, index int) (*GameState, domain.Turn, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, domain.Turn{}, ErrNotFound
	}
	if gs.Player != playerID {
		s.mu.Unlock()
		return nil, domain.Turn{}, ErrNotAPlayer
	}
	turn, err := gs.Game.Play(index)
	if err != nil {
		s.mu.Unlock()
		log.Debug().Err(err).Str("gameID", id).Int("index", index).Msg("move rejected")
		return nil, turn, err
	}
	gs.Updated = s.now()
	cp, subs := *gs, s.copySubsLocked(id)
	s.mu.Unlock()

	log.Info().
		Str("gameID", id).
		Int("human", turn.Human).
		Int("computer", turn.Computer).
		Stringer("outcome", turn.Outcome).
		Msg("turn played")
	s.broadcast(id, cp, subs)
	return &cp, turn, nil
}

// Reset clears the board of a game; only the seated player may reset.
func (s *Service) Reset(id, playerID string) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if gs.Player != playerID {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	gs.Game.Reset()
	gs.Updated = s.now()
	cp, subs := *gs, s.copySubsLocked(id)
	s.mu.Unlock()

	log.Info().Str("gameID", id).Msg("game reset")
	s.broadcast(id, cp, subs)
	return &cp, nil
}

// Subscribe registers a subscriber for a game. Returns a channel of state
// snapshots and an unsubscribe func. The channel is closed on unsubscribe,
// on ctx cancellation, or when the subscriber falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// broadcast fans out a snapshot; slow subscribers are closed and dropped
// rather than blocking the game.
func (s *Service) broadcast(id string, gs GameState, subs map[*subscriber]struct{}) {
	var toDrop []*subscriber
	for sub := range subs {
		if !sub.send(gs) {
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) == 0 {
		return
	}
	log.Warn().Str("gameID", id).Int("dropped", len(toDrop)).Msg("dropped slow subscribers")
	s.mu.Lock()
	for _, sub := range toDrop {
		if set, ok := s.subs[id]; ok {
			delete(set, sub)
		}
	}
	s.mu.Unlock()
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
