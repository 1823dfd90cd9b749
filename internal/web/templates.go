package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>TicTacToe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>
.row{display:flex}.row form{margin:0}
.cell{width:4em;height:4em;font-size:1.5em}
.cell.last{background:#fde68a}
.alert{color:#b91c1c}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// board lives in the same set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>TicTacToe</h1>
<p>You play X and move first. The computer never loses.</p>
<form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>TicTacToe</h1>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board-slot" sse-swap="board">{{template "board" .Board}}</div>
</div>`))
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.Bytes()
}

const boardTemplate = `<div id="board" data-phase="{{.Phase}}">
  <p id="status">{{.Status}}</p>
  {{if .Error}}<div class="alert">{{.Error}}</div>{{end}}
  {{range .Rows}}<div class="row">
    {{range .}}<form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
      <input type="hidden" name="cell" value="{{.Index}}">
      <button type="submit" class="cell{{if .Last}} last{{end}}" data-index="{{.Index}}"{{if .Disabled}} disabled{{end}}>{{.Symbol}}</button>
    </form>{{end}}
  </div>{{end}}
  {{if .Seated}}<form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit" id="reset">Restart</button>
  </form>{{end}}
</div>
`

type cellView struct {
	Index    int
	Symbol   string
	Disabled bool
	Last     bool
}

type boardView struct {
	ID     string
	Phase  string
	Status string
	Error  string
	Seated bool
	Rows   [3][3]cellView
}

// statusText is what the player reads above the board.
func statusText(o domain.Outcome) string {
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

func newBoardView(gs app.GameState, playerID, errMsg string) boardView {
	g := gs.Game
	seated := playerID != "" && gs.Player == playerID
	v := boardView{
		ID:     gs.ID,
		Phase:  g.Phase.String(),
		Status: statusText(g.Outcome),
		Error:  errMsg,
		Seated: seated,
	}
	for i, c := range g.Board {
		v.Rows[i/3][i%3] = cellView{
			Index:    i,
			Symbol:   c.String(),
			Disabled: !seated || g.Phase != domain.AwaitingHuman || c != domain.Empty,
			Last:     i == g.LastComputer,
		}
	}
	return v
}

// ensurePlayerCookie returns the browser's player id, issuing one if needed.
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
		return c.Value
	}
	v := uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}

func playerCookie(r *http.Request) string {
	if c, err := r.Cookie("player_id"); err == nil {
		return c.Value
	}
	return ""
}
