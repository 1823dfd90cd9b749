package domain

// Phase is the turn state of a Game.
type Phase uint8

const (
	AwaitingHuman Phase = iota
	AwaitingComputer
	Finished
)

func (p Phase) String() string {
	switch p {
	case AwaitingComputer:
		return "awaiting_computer"
	case Finished:
		return "finished"
	default:
		return "awaiting_human"
	}
}

// Game holds the current state of a match between a human and the computer.
type Game struct {
	Board        Board
	Phase        Phase
	Outcome      Outcome
	Moves        int
	LastHuman    int
	LastComputer int
}

// Turn reports what happened during one Play call. Computer is -1 when the
// human move ended the game.
type Turn struct {
	Human    int
	Computer int
	Outcome  Outcome
}

// New returns a new game with the human to move.
func New() Game {
	return Game{LastHuman: -1, LastComputer: -1}
}

// Reset clears the board and hands the first move back to the human.
func (g *Game) Reset() {
	*g = New()
}

// PlayHuman places the human mark at i. A rejected move leaves g unchanged.
func (g *Game) PlayHuman(i int) error {
	switch g.Phase {
	case Finished:
		return ErrGameOver
	case AwaitingComputer:
		return ErrOutOfTurn
	}
	if err := g.Board.Apply(i, Human); err != nil {
		return err
	}
	g.LastHuman = i
	g.advance(AwaitingComputer)
	return nil
}

// PlayComputer searches for the computer's reply and applies it.
func (g *Game) PlayComputer() (int, error) {
	switch g.Phase {
	case Finished:
		return -1, ErrInvalidSearchState
	case AwaitingHuman:
		return -1, ErrOutOfTurn
	}
	choice, err := BestMove(g.Board, Computer)
	if err != nil {
		return -1, err
	}
	if err := g.Board.Apply(choice.Index, Computer); err != nil {
		return -1, err
	}
	g.LastComputer = choice.Index
	g.advance(AwaitingHuman)
	return choice.Index, nil
}

// Play runs a full turn: the human move at i and, if the game is still
// running, the computer's answer.
func (g *Game) Play(i int) (Turn, error) {
	t := Turn{Human: i, Computer: -1}
	if err := g.PlayHuman(i); err != nil {
		t.Outcome = g.Outcome
		return t, err
	}
	if g.Phase == AwaitingComputer {
		idx, err := g.PlayComputer()
		if err != nil {
			t.Outcome = g.Outcome
			return t, err
		}
		t.Computer = idx
	}
	t.Outcome = g.Outcome
	return t, nil
}

func (g *Game) advance(next Phase) {
	g.Moves++
	g.Outcome = g.Board.Outcome()
	if g.Outcome != InProgress {
		g.Phase = Finished
		return
	}
	g.Phase = next
}

// PlayHumanMove applies a human move to a copy of b.
func PlayHumanMove(b Board, i int) (Board, Outcome, error) {
	if b.Outcome() != InProgress {
		return b, b.Outcome(), ErrGameOver
	}
	if err := b.Apply(i, Human); err != nil {
		return b, b.Outcome(), err
	}
	return b, b.Outcome(), nil
}

// PlayComputerMove searches and applies the computer's move on a copy of b.
func PlayComputerMove(b Board) (Board, int, Outcome, error) {
	choice, err := BestMove(b, Computer)
	if err != nil {
		return b, -1, b.Outcome(), err
	}
	if err := b.Apply(choice.Index, Computer); err != nil {
		return b, -1, b.Outcome(), err
	}
	return b, choice.Index, b.Outcome(), nil
}
