package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

func TestCreateAndGet(t *testing.T) {
	s := NewService()
	gs, err := s.CreateGame()
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	if gs.ID == "" {
		t.Fatalf("expected non-empty game ID")
	}
	if gs.Game.Phase != domain.AwaitingHuman {
		t.Fatalf("expected human to move first, got %v", gs.Game.Phase)
	}
	if gs.Created.IsZero() || gs.Updated.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	got, ok := s.Get(gs.ID)
	if !ok || got.ID != gs.ID {
		t.Fatalf("Get should find created game")
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("Get should not find unknown game")
	}
}

func TestJoinSeatsAndRejoin(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	p1, p2 := "p1", "p2"

	side, _, err := s.Join(gs.ID, p1)
	if err != nil || side != domain.Human {
		t.Fatalf("p1 should claim the human seat, got %v, err=%v", side, err)
	}
	side, _, err = s.Join(gs.ID, p1)
	if err != nil || side != domain.Human {
		t.Fatalf("p1 rejoin should keep the seat, got %v, err=%v", side, err)
	}
	side, st, err := s.Join(gs.ID, p2)
	if err != nil || side != domain.Empty {
		t.Fatalf("p2 should spectate (Empty), got %v, err=%v", side, err)
	}
	if st.Player != p1 {
		t.Fatalf("seat should stay with p1, got %q", st.Player)
	}
	if _, _, err := s.Join("missing", p1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayAppliesHumanAndComputerMoves(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	s.Join(gs.ID, "p1")

	st, turn, err := s.Play(gs.ID, "p1", 0)
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if turn.Human != 0 || turn.Computer != 4 {
		t.Fatalf("unexpected turn %+v", turn)
	}
	if st.Game.Board[0] != domain.Human || st.Game.Board[4] != domain.Computer || st.Game.Moves != 2 {
		t.Fatalf("unexpected state after turn: moves=%d\n%v", st.Game.Moves, st.Game.Board)
	}
	if st.Game.Phase != domain.AwaitingHuman {
		t.Fatalf("expected human to move, got %v", st.Game.Phase)
	}
}

func TestPlayRejections(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	s.Join(gs.ID, "p1")
	s.Join(gs.ID, "p2")

	if _, _, err := s.Play("missing", "p1", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Play(gs.ID, "p2", 0); !errors.Is(err, ErrNotAPlayer) {
		t.Fatalf("expected ErrNotAPlayer for spectator, got %v", err)
	}
	if _, _, err := s.Play(gs.ID, "p1", 0); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if _, _, err := s.Play(gs.ID, "p1", 4); !errors.Is(err, domain.ErrOccupied) {
		t.Fatalf("expected ErrOccupied, got %v", err)
	}
	if _, _, err := s.Play(gs.ID, "p1", 9); !errors.Is(err, domain.ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	latest, _ := s.Get(gs.ID)
	if latest.Game.Moves != 2 {
		t.Fatalf("rejected moves should not change state, moves=%d", latest.Game.Moves)
	}
}

func TestResetClearsBoard(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	s.Join(gs.ID, "p1")
	s.Play(gs.ID, "p1", 4)

	if _, err := s.Reset(gs.ID, "p2"); !errors.Is(err, ErrNotAPlayer) {
		t.Fatalf("expected ErrNotAPlayer, got %v", err)
	}
	st, err := s.Reset(gs.ID, "p1")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if st.Game != domain.New() {
		t.Fatalf("expected fresh game, got %+v", st.Game)
	}
	if st.Player != "p1" {
		t.Fatalf("reset should keep the seat, got %q", st.Player)
	}
}

func TestSubscribeAndBroadcast(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	s.Join(gs.ID, "p1")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	ch, unsub, err := s.Subscribe(ctx, gs.ID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer unsub()

	if _, _, err := s.Play(gs.ID, "p1", 0); err != nil {
		t.Fatalf("play failed: %v", err)
	}

	select {
	case st, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed unexpectedly")
		}
		// only completed turns are published
		if st.Game.Moves != 2 || st.Game.Phase != domain.AwaitingHuman {
			t.Fatalf("unexpected broadcast: moves=%d phase=%v", st.Game.Moves, st.Game.Phase)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for broadcast")
	}
}

func TestSubscribeUnknownGame(t *testing.T) {
	s := NewService()
	if _, _, err := s.Subscribe(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDropSlowSubscriber(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	s.Join(gs.ID, "p1")

	// Slow subscriber: never read
	ctxSlow, cancelSlow := context.WithCancel(context.Background())
	defer cancelSlow()
	slowCh, _, _ := s.Subscribe(ctxSlow, gs.ID)

	ctxFast, cancelFast := context.WithTimeout(context.Background(), time.Second*2)
	defer cancelFast()
	fastCh, unsubFast, _ := s.Subscribe(ctxFast, gs.ID)
	defer unsubFast()

	// Two updates; slow should be dropped to avoid blocking fast
	if _, _, err := s.Play(gs.ID, "p1", 0); err != nil {
		t.Fatalf("play1: %v", err)
	}
	select {
	case <-fastCh:
	case <-ctxFast.Done():
		t.Fatalf("fast subscriber did not receive first update")
	}
	if _, _, err := s.Play(gs.ID, "p1", 1); err != nil {
		t.Fatalf("play2: %v", err)
	}
	select {
	case <-fastCh:
	case <-ctxFast.Done():
		t.Fatalf("fast subscriber did not receive second update")
	}

	// slow got the first snapshot, then was closed
	if _, ok := <-slowCh; !ok {
		t.Fatalf("expected buffered snapshot before close")
	}
	select {
	case _, ok := <-slowCh:
		if ok {
			t.Fatalf("expected slow subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("slow subscriber was not dropped")
	}
}

func TestUnsubscribeOnContextCancel(t *testing.T) {
	s := NewService()
	gs, _ := s.CreateGame()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _, _ := s.Subscribe(ctx, gs.ID)
	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("channel not closed after cancel")
	}
}
