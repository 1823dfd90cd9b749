package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/tictactoe-minimax/internal/app"
	"github.com/jaminalder/tictactoe-minimax/internal/domain"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	heartbeat time.Duration
	upgrader  websocket.Upgrader
}

func (h *handlers) renderBoard(gs app.GameState, playerID, errMsg string) []byte {
	return renderTemplate(h.tpl.board, newBoardView(gs, playerID, errMsg))
}

func writeHTML(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, renderTemplate(h.tpl.index, nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	gs, err := h.svc.CreateGame()
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	// ensure cookie and auto-claim seat
	pid := ensurePlayerCookie(w, r)
	_, gs, err := h.svc.Join(id, pid)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := struct {
		ID    string
		Board boardView
	}{ID: gs.ID, Board: newBoardView(*gs, pid, "")}
	writeHTML(w, renderTemplate(h.tpl.game, data))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_, gs, err := h.svc.Join(id, pid)
	if err != nil || gs == nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, h.renderBoard(*gs, pid, ""))
}

// moveError maps a rejected action to the text shown above the board.
func moveError(err error) string {
	switch {
	case errors.Is(err, app.ErrNotAPlayer):
		return "You are a spectator"
	case errors.Is(err, domain.ErrOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	default:
		return "Invalid move"
	}
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := playerCookie(r)
	_ = r.ParseForm()
	idx, err := strconv.Atoi(r.Form.Get("cell"))
	if err != nil {
		idx = -1
	}
	gs, _, err := h.svc.Play(id, pid, idx)
	if errors.Is(err, app.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	var errMsg string
	if err != nil {
		errMsg = moveError(err)
		var ok bool
		if gs, ok = h.svc.Get(id); !ok {
			http.NotFound(w, r)
			return
		}
	}
	writeHTML(w, h.renderBoard(*gs, pid, errMsg))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := playerCookie(r)
	gs, err := h.svc.Reset(id, pid)
	if errors.Is(err, app.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	var errMsg string
	if err != nil {
		errMsg = moveError(err)
		var ok bool
		if gs, ok = h.svc.Get(id); !ok {
			http.NotFound(w, r)
			return
		}
	}
	writeHTML(w, h.renderBoard(*gs, pid, errMsg))
}

// snapshot is the JSON view of a game used by /state and /ws.
type snapshot struct {
	ID           string    `json:"id"`
	Board        [9]string `json:"board"`
	Phase        string    `json:"phase"`
	Outcome      string    `json:"outcome"`
	Status       string    `json:"status"`
	Moves        int       `json:"moves"`
	LastHuman    int       `json:"lastHuman"`
	LastComputer int       `json:"lastComputer"`
}

func newSnapshot(gs app.GameState) snapshot {
	s := snapshot{
		ID:           gs.ID,
		Phase:        gs.Game.Phase.String(),
		Outcome:      gs.Game.Outcome.String(),
		Status:       statusText(gs.Game.Outcome),
		Moves:        gs.Game.Moves,
		LastHuman:    gs.Game.LastHuman,
		LastComputer: gs.Game.LastComputer,
	}
	for i, c := range gs.Game.Board {
		s.Board[i] = c.String()
	}
	return s
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	gs, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(newSnapshot(*gs))
}

// writeEvent emits one SSE event; every payload line gets its own data field.
func writeEvent(w io.Writer, event string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(strings.TrimRight(string(payload), "\n"), "\n") {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	pid := playerCookie(r)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case gs, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "board", h.renderBoard(gs, pid, ""))
			flusher.Flush()
		}
	}
}

func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("gameID", id).Msg("websocket upgrade error")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()
	log.Debug().Str("gameID", id).Msg("websocket connection registered")

	// the client never sends anything we use; a read error means it left
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// initial state is read after subscribing so no turn can slip between
	if gs, ok := h.svc.Get(id); ok {
		if err := conn.WriteJSON(newSnapshot(*gs)); err != nil {
			log.Error().Err(err).Str("gameID", id).Msg("error sending game state")
			return
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case gs, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(newSnapshot(gs)); err != nil {
				log.Error().Err(err).Str("gameID", id).Msg("error sending game state")
				return
			}
		}
	}
}
