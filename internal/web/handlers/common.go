package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/capture"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
)

// Shared error messages.
const (
	errInvalidRequestBody = "invalid request body"
	errInvalidPhoto       = "photo must be a JPEG or PNG image, optionally as a data URL"
	errBusy               = "Another operation is in progress. Please wait."
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeOptionalJSON decodes a size-limited JSON body into dst. An empty body leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxPhotoUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// stillCamera turns an uploaded photo into a one-frame camera. An empty photo returns nil so the
// configured camera is used.
func stillCamera(photo string) (camera.Camera, error) {
	if photo == "" {
		return nil, nil
	}
	data, err := imaging.FromDataURL(photo)
	if err != nil {
		return nil, err
	}
	still, err := camera.NewStill(data)
	if err != nil {
		return nil, err
	}
	return still, nil
}

// statusForError maps pipeline errors to HTTP status codes.
func statusForError(err error) int {
	var oracleErr *attendance.OracleError
	switch {
	case errors.Is(err, attendance.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, attendance.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrDuplicateID),
		errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrNotCheckedIn):
		return http.StatusConflict
	case errors.Is(err, attendance.ErrNotRecognized):
		return http.StatusUnprocessableEntity
	case errors.As(err, &oracleErr):
		return http.StatusBadGateway
	case errors.Is(err, capture.ErrCameraAccess), errors.Is(err, capture.ErrCapture):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
