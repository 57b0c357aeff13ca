package handlers

import (
	"net/http"

	"github.com/kozaktomas/smart-attendance/internal/ai"
	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/rs/zerolog"
)

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	service *attendance.Service
	oracle  ai.FaceComparer
	log     zerolog.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(service *attendance.Service, oracle ai.FaceComparer, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		oracle:  oracle,
		log:     log.With().Str("component", "stats-handler").Logger(),
	}
}

// StatsResponse represents the statistics response
type StatsResponse struct {
	Users        int         `json:"users"`
	Records      int         `json:"records"`
	OpenSessions int         `json:"open_sessions"`
	Oracle       OracleStats `json:"oracle"`
}

// OracleStats reports the face comparison provider and its spend.
type OracleStats struct {
	Provider string   `json:"provider"`
	Breaker  string   `json:"breaker,omitempty"`
	Usage    ai.Usage `json:"usage"`
}

// Get returns roster and attendance counts plus oracle usage.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute stats")
		respondError(w, http.StatusInternalServerError, attendance.MsgStorage)
		return
	}

	resp := StatsResponse{
		Users:        stats.Users,
		Records:      stats.Records,
		OpenSessions: stats.OpenSessions,
	}
	if h.oracle != nil {
		resp.Oracle = OracleStats{
			Provider: h.oracle.Name(),
			Usage:    h.oracle.GetUsage(),
		}
		if b, ok := h.oracle.(interface{ State() string }); ok {
			resp.Oracle.Breaker = b.State()
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
