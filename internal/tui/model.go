// Package tui is a terminal front end for a game against the computer.
package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	boardStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	lastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea model. It owns a single game session.
type Model struct {
	game   domain.Game
	cursor int
	err    error
}

// New starts a fresh game with the cursor in the center.
func New() Model {
	return Model{game: domain.New(), cursor: 4}
}

// Game returns the current game state.
func (m Model) Game() domain.Game { return m.game }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyUp:
		m.move(-3)
	case tea.KeyDown:
		m.move(3)
	case tea.KeyLeft:
		m.move(-1)
	case tea.KeyRight:
		m.move(1)
	case tea.KeyEnter, tea.KeySpace:
		m.play(m.cursor)
	case tea.KeyRunes:
		if len(key.Runes) != 1 {
			return m, nil
		}
		switch r := key.Runes[0]; {
		case r == 'q':
			return m, tea.Quit
		case r == 'r':
			m.game.Reset()
			m.err = nil
		case r == 'k':
			m.move(-3)
		case r == 'j':
			m.move(3)
		case r == 'h':
			m.move(-1)
		case r == 'l':
			m.move(1)
		case r == ' ':
			m.play(m.cursor)
		case r >= '1' && r <= '9':
			m.cursor = int(r - '1')
			m.play(m.cursor)
		}
	}
	return m, nil
}

// move shifts the cursor, staying on the same row for sideways moves.
func (m *Model) move(delta int) {
	next := m.cursor + delta
	if next < 0 || next > 8 {
		return
	}
	if (delta == 1 || delta == -1) && next/3 != m.cursor/3 {
		return
	}
	m.cursor = next
}

func (m *Model) play(i int) {
	_, m.err = m.game.Play(i)
}

// statusLine is the message shown under the board.
func statusLine(o domain.Outcome) string {
	switch o {
	case domain.HumanWin:
		return "You win!"
	case domain.ComputerWin:
		return "AI wins!"
	case domain.Draw:
		return "It's a draw!"
	default:
		return "Your Turn (X)"
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrOccupied):
		return "That cell is taken."
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over, press r to play again."
	default:
		return err.Error()
	}
}

func (m Model) View() string {
	var rows []string
	for r := 0; r < 3; r++ {
		cells := make([]string, 3)
		for c := 0; c < 3; c++ {
			i := r*3 + c
			mark := m.game.Board[i].String()
			if mark == "" {
				mark = " "
			}
			cell := " " + mark + " "
			switch {
			case i == m.cursor && m.game.Phase != domain.Finished:
				cell = cursorStyle.Render(cell)
			case i == m.game.LastComputer:
				cell = lastStyle.Render(cell)
			}
			cells[c] = cell
		}
		rows = append(rows, strings.Join(cells, "|"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("TicTacToe"))
	b.WriteString("\n")
	b.WriteString(boardStyle.Render(strings.Join(rows, "\n---+---+---\n")))
	b.WriteString("\n")
	b.WriteString(statusLine(m.game.Outcome))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(errorText(m.err)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("arrows/hjkl move, enter plays, 1-9 play a cell, r restarts, q quits"))
	b.WriteString("\n")
	return b.String()
}
