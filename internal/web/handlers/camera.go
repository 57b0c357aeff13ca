package handlers

import (
	"net/http"

	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/capture"
	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/rs/zerolog"
)

// CameraHandler serves preview frames from the configured camera.
type CameraHandler struct {
	camera camera.Camera
	guard  *Guard
	log    zerolog.Logger
}

// NewCameraHandler creates a new camera handler
func NewCameraHandler(cam camera.Camera, guard *Guard, log zerolog.Logger) *CameraHandler {
	return &CameraHandler{
		camera: cam,
		guard:  guard,
		log:    log.With().Str("component", "camera-handler").Logger(),
	}
}

// Preview returns one JPEG frame. It is refused while a pipeline holds the camera.
func (h *CameraHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if !h.guard.TryAcquire() {
		respondError(w, http.StatusConflict, errBusy)
		return
	}
	defer h.guard.Release()

	stream, err := h.camera.Open(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Str("camera", h.camera.Name()).Msg("Camera open failed")
		respondError(w, http.StatusServiceUnavailable, capture.MsgCameraAccess)
		return
	}
	defer stream.Close()

	img, err := stream.Frame(r.Context())
	if err != nil {
		h.log.Warn().Err(err).Str("camera", h.camera.Name()).Msg("Preview frame failed")
		respondError(w, http.StatusServiceUnavailable, capture.MsgCaptureFailed)
		return
	}

	data, err := imaging.EncodeJPEG(img, constants.JPEGQuality)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, capture.MsgCaptureFailed)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
