package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	Human
	Computer
)

func (c Cell) String() string {
	switch c {
	case Human:
		return "X"
	case Computer:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other side; Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case Human:
		return Computer
	case Computer:
		return Human
	default:
		return Empty
	}
}

// Outcome is derived from a Board, never stored on it.
type Outcome uint8

const (
	InProgress Outcome = iota
	HumanWin
	ComputerWin
	Draw
)

func (o Outcome) String() string {
	switch o {
	case HumanWin:
		return "human_win"
	case ComputerWin:
		return "computer_win"
	case Draw:
		return "draw"
	default:
		return "in_progress"
	}
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// WinLines lists every row, column and diagonal.
var WinLines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Errors returned by board and game operations. The specific causes wrap
// ErrIllegalMove so callers can match either.
var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrOutOfBounds   = fmt.Errorf("%w: out of bounds", ErrIllegalMove)
	ErrOccupied      = fmt.Errorf("%w: cell occupied", ErrIllegalMove)
	ErrInvalidPlayer = fmt.Errorf("%w: invalid player", ErrIllegalMove)
	ErrGameOver      = fmt.Errorf("%w: game over", ErrIllegalMove)
	ErrOutOfTurn     = fmt.Errorf("%w: out of turn", ErrIllegalMove)
)

// NewBoard returns an empty board.
func NewBoard() Board { return Board{} }

// IsOccupied reports whether cell i holds a mark. Indices outside 0..8 are
// never occupied.
func (b Board) IsOccupied(i int) bool {
	if i < 0 || i >= len(b) {
		return false
	}
	return b[i] != Empty
}

// Apply writes p into cell i. On error the board is left untouched.
func (b *Board) Apply(i int, p Cell) error {
	if i < 0 || i >= len(b) {
		return ErrOutOfBounds
	}
	if p != Human && p != Computer {
		return ErrInvalidPlayer
	}
	if b[i] != Empty {
		return ErrOccupied
	}
	b[i] = p
	return nil
}

// HasWinner reports whether p owns a full win line.
func (b Board) HasWinner(p Cell) bool {
	for _, ln := range WinLines {
		if b[ln[0]] == p && b[ln[1]] == p && b[ln[2]] == p {
			return true
		}
	}
	return false
}

// EmptyIndices returns the free cells in ascending order.
func (b Board) EmptyIndices() []int {
	out := make([]int, 0, len(b))
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

func (b Board) IsFull() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Outcome checks the human first, then the computer, then a full board.
func (b Board) Outcome() Outcome {
	switch {
	case b.HasWinner(Human):
		return HumanWin
	case b.HasWinner(Computer):
		return ComputerWin
	case b.IsFull():
		return Draw
	default:
		return InProgress
	}
}

func (b Board) String() string {
	var sb strings.Builder
	for i, c := range b {
		if c == Empty {
			sb.WriteByte('.')
		} else {
			sb.WriteString(c.String())
		}
		if i%3 == 2 && i != len(b)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
