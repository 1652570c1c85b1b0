package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"github.com/kozaktomas/photo-labeler/internal/session"
)

// StatsResponse represents the label file statistics
type StatsResponse struct {
	LabelFile string `json:"label_file"`
	labelstore.Stats
	UnlabeledPhotos int `json:"unlabeled_photos"`
}

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	guard *Guard
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(guard *Guard) *StatsHandler {
	return &StatsHandler{guard: guard}
}

// Get returns counts for the open label file.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	err := h.guard.Do(func(nav *session.Navigator) error {
		stats, err := nav.Stats()
		if err != nil {
			return err
		}
		resp = StatsResponse{
			LabelFile:       nav.LabelFile(),
			Stats:           stats,
			UnlabeledPhotos: stats.Photos - stats.LabeledPhotos,
		}
		return nil
	})
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
