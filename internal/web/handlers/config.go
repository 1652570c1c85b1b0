package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-labeler/internal/config"
)

// KeyBinding maps a key to a page command.
type KeyBinding struct {
	Key     string `json:"key"`
	Command string `json:"command"`
}

// ConfigResponse represents the settings the page needs to draw and bind keys.
type ConfigResponse struct {
	Overlay config.OverlayConfig `json:"overlay"`
	Keys    []KeyBinding         `json:"keys"`
}

// keyBindings is the keyboard map of the labeling page.
var keyBindings = []KeyBinding{
	{Key: "n", Command: "new-file"},
	{Key: "o", Command: "open-file"},
	{Key: "l", Command: "refresh"},
	{Key: "s", Command: "save"},
	{Key: "1", Command: "filter-unlabeled"},
	{Key: "2", Command: "filter-all"},
	{Key: "ArrowLeft", Command: "previous"},
	{Key: "a", Command: "previous"},
	{Key: "ArrowRight", Command: "next"},
	{Key: "d", Command: "next"},
	{Key: "p", Command: "new-person"},
}

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{config: cfg}
}

// Get returns the overlay colours and the keyboard map.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		Overlay: h.config.Overlay,
		Keys:    keyBindings,
	})
}
