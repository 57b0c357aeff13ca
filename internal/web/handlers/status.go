package handlers

import (
	"net/http"

	"github.com/kozaktomas/smart-attendance/internal/status"
)

// StatusHandler exposes the shared Status board.
type StatusHandler struct {
	board *status.Board
	guard *Guard
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(board *status.Board, guard *Guard) *StatusHandler {
	return &StatusHandler{board: board, guard: guard}
}

// StatusResponse is the current board state.
type StatusResponse struct {
	Status    status.Status `json:"status"`
	Countdown int           `json:"countdown"`
	Busy      bool          `json:"busy"`
}

// Get returns the current status, countdown and whether a pipeline is running.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap := h.board.Snapshot()
	respondJSON(w, http.StatusOK, StatusResponse{
		Status:    snap.Status,
		Countdown: snap.Countdown,
		Busy:      h.guard.Busy(),
	})
}

// Events streams status and countdown changes as server-sent events.
func (h *StatusHandler) Events(w http.ResponseWriter, r *http.Request) {
	streamBoard(w, r, h.board)
}
