package handlers

import (
	"net/http"

	"github.com/kozaktomas/smart-attendance/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config     *config.Config
	cameraName string
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, cameraName string) *ConfigHandler {
	return &ConfigHandler{
		config:     cfg,
		cameraName: cameraName,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Provider       string         `json:"provider"`
	MatchMode      string         `json:"match_mode"`
	Providers      []ProviderInfo `json:"providers"`
	StorageBackend string         `json:"storage_backend"`
	Camera         string         `json:"camera"`
	EventsEnabled  bool           `json:"events_enabled"`
	AuthRequired   bool           `json:"auth_required"`
}

// ProviderInfo represents information about an oracle provider
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Get returns the active configuration without secrets.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	providers := []ProviderInfo{
		{
			Name:      "gemini",
			Available: h.config.Gemini.APIKey != "",
		},
		{
			Name:      "openai",
			Available: h.config.OpenAI.Token != "",
		},
		{
			Name:      "ollama",
			Available: true, // Always available (local)
		},
		{
			Name:      "llamacpp",
			Available: true, // Always available (local)
		},
	}

	respondJSON(w, http.StatusOK, ConfigResponse{
		Provider:       h.config.Oracle.Provider,
		MatchMode:      h.config.Oracle.MatchMode,
		Providers:      providers,
		StorageBackend: h.config.Storage.Backend,
		Camera:         h.cameraName,
		EventsEnabled:  h.config.AMQP.URL != "",
		AuthRequired:   h.config.Web.JWTSecret != "",
	})
}
