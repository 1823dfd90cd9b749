package domain

import "errors"

// ErrInvalidSearchState is returned when a search is requested on a board
// that is already decided, or for a side that cannot move.
var ErrInvalidSearchState = errors.New("invalid search state")

// Scores from the computer's point of view.
const (
	ScoreHumanWin    = -10
	ScoreComputerWin = 10
	ScoreDraw        = 0
)

// Choice is the result of a search. Index is -1 for terminal boards.
type Choice struct {
	Index int
	Score int
}

// BestMove runs an exhaustive minimax search for player on b. The computer
// maximises and the human minimises; among equal scores the lowest index
// wins. b is taken by value, so the caller's board is never touched.
func BestMove(b Board, player Cell) (Choice, error) {
	if player != Human && player != Computer {
		return Choice{Index: -1}, ErrInvalidSearchState
	}
	if b.Outcome() != InProgress {
		return Choice{Index: -1}, ErrInvalidSearchState
	}
	return minimax(&b, player), nil
}

// minimax places and removes marks on b in place; b is back to its original
// contents when it returns.
func minimax(b *Board, player Cell) Choice {
	if b.HasWinner(Human) {
		return Choice{Index: -1, Score: ScoreHumanWin}
	}
	if b.HasWinner(Computer) {
		return Choice{Index: -1, Score: ScoreComputerWin}
	}
	empty := b.EmptyIndices()
	if len(empty) == 0 {
		return Choice{Index: -1, Score: ScoreDraw}
	}

	best := Choice{Index: -1}
	for _, idx := range empty {
		b[idx] = player
		child := minimax(b, player.Opponent())
		b[idx] = Empty

		if best.Index == -1 ||
			(player == Computer && child.Score > best.Score) ||
			(player == Human && child.Score < best.Score) {
			best = Choice{Index: idx, Score: child.Score}
		}
	}
	return best
}
