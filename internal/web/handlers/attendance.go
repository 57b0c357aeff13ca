package handlers

import (
	"context"
	"net/http"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/rs/zerolog"
)

// AttendanceHandler runs the register, check-in and check-out intents.
type AttendanceHandler struct {
	service *attendance.Service
	board   *status.Board
	guard   *Guard
	log     zerolog.Logger
}

// NewAttendanceHandler creates a new attendance handler. board must be the reporter the
// service publishes to.
func NewAttendanceHandler(service *attendance.Service, board *status.Board, guard *Guard, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		board:   board,
		guard:   guard,
		log:     log.With().Str("component", "attendance-handler").Logger(),
	}
}

// RegisterRequest registers a user. Photo is optional; without it the server camera is used.
type RegisterRequest struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Photo string `json:"photo,omitempty"`
}

// AttendanceRequest is the optional body of check-in and check-out.
type AttendanceRequest struct {
	Photo string `json:"photo,omitempty"`
}

// Register handles POST /api/v1/users.
func (h *AttendanceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	cam, err := stillCamera(req.Photo)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidPhoto)
		return
	}

	if !h.guard.TryAcquire() {
		respondError(w, http.StatusConflict, errBusy)
		return
	}
	defer h.guard.Release()

	user, err := h.service.Register(r.Context(), attendance.RegisterInput{
		Name:   req.Name,
		ID:     req.ID,
		Camera: cam,
	})
	if err != nil {
		h.fail(w, "register", err)
		return
	}

	u := toUserResponse(user)
	respondJSON(w, http.StatusCreated, IntentResponse{
		Status: h.board.Snapshot().Status,
		User:   &u,
	})
}

// CheckIn handles POST /api/v1/attendance/check-in.
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.runAttendance(w, r, h.service.CheckIn)
}

// CheckOut handles POST /api/v1/attendance/check-out.
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.runAttendance(w, r, h.service.CheckOut)
}

func (h *AttendanceHandler) runAttendance(w http.ResponseWriter, r *http.Request,
	intent func(context.Context, camera.Camera) (attendance.Outcome, error)) {
	var req AttendanceRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	cam, err := stillCamera(req.Photo)
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidPhoto)
		return
	}

	if !h.guard.TryAcquire() {
		respondError(w, http.StatusConflict, errBusy)
		return
	}
	defer h.guard.Release()

	out, err := intent(r.Context(), cam)
	if err != nil {
		h.fail(w, string(out.Action), err)
		return
	}

	u := toUserResponse(out.User)
	rec := toRecordResponse(out.Record)
	respondJSON(w, http.StatusOK, IntentResponse{
		Status: h.board.Snapshot().Status,
		User:   &u,
		Record: &rec,
	})
}

// fail responds with the Status message the pipeline ended on.
func (h *AttendanceHandler) fail(w http.ResponseWriter, intent string, err error) {
	code := statusForError(err)
	if code >= http.StatusInternalServerError {
		h.log.Warn().Err(err).Str("intent", intent).Int("code", code).Msg("Intent failed")
	}
	msg := h.board.Snapshot().Status.Message
	if msg == "" {
		msg = err.Error()
	}
	respondError(w, code, msg)
}

// List handles GET /api/v1/attendance.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Records(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load records")
		respondError(w, http.StatusInternalServerError, attendance.MsgStorage)
		return
	}

	result := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		if r.URL.Query().Get("open") == "true" && !rec.Open() {
			continue
		}
		result = append(result, toRecordResponse(rec))
	}
	respondJSON(w, http.StatusOK, result)
}
