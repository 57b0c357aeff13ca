package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/rs/zerolog"
)

// UsersHandler serves the roster.
type UsersHandler struct {
	service *attendance.Service
	log     zerolog.Logger
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(service *attendance.Service, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{
		service: service,
		log:     log.With().Str("component", "users-handler").Logger(),
	}
}

// List returns the roster in registration order without photos.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Users(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load roster")
		respondError(w, http.StatusInternalServerError, attendance.MsgStorage)
		return
	}

	result := make([]UserResponse, 0, len(users))
	for _, u := range users {
		result = append(result, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, result)
}

// Photo returns the reference photo of a user as JPEG. The id may also be a name.
func (h *UsersHandler) Photo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing user ID")
		return
	}

	users, err := h.service.Users(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load roster")
		respondError(w, http.StatusInternalServerError, attendance.MsgStorage)
		return
	}

	user, ok := attendance.FindUser(users, id)
	if !ok {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	data, err := imaging.FromDataURL(user.Photo)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", sanitizeForLog(user.ID)).Msg("Stored photo is not decodable")
		respondError(w, http.StatusInternalServerError, "stored photo is corrupt")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
