package handlers

import (
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"github.com/kozaktomas/photo-labeler/internal/constants"
	"github.com/kozaktomas/photo-labeler/internal/imagefile"
	"github.com/kozaktomas/photo-labeler/internal/logging"
	"github.com/kozaktomas/photo-labeler/internal/session"
	"go.uber.org/zap"
)

// PhotosHandler serves the photos of the open label file.
type PhotosHandler struct {
	guard  *Guard
	style  imagefile.OverlayStyle
	logger *zap.Logger
}

// NewPhotosHandler creates a new photos handler
func NewPhotosHandler(guard *Guard, style imagefile.OverlayStyle, logger *zap.Logger) *PhotosHandler {
	return &PhotosHandler{guard: guard, style: style, logger: logging.OrNop(logger)}
}

// Image serves the original image file.
func (h *PhotosHandler) Image(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var path string
	err := h.guard.Do(func(nav *session.Navigator) error {
		var err error
		path, err = nav.PhotoPath(name)
		return err
	})
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}

// Overlay renders the stored labels onto a scaled copy of the photo as PNG.
// The optional size query parameter bounds the longer side.
func (h *PhotosHandler) Overlay(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	size := constants.DefaultPreviewSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid size")
			return
		}
		size = n
	}

	var (
		path   string
		labels []annotation.Annotation
	)
	err := h.guard.Do(func(nav *session.Navigator) error {
		var err error
		if path, err = nav.PhotoPath(name); err != nil {
			return err
		}
		labels, err = nav.PhotoLabels(name)
		return err
	})
	if err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	// Rendering runs outside the lock on a copy of the labels.
	img, err := imagefile.RenderOverlay(path, labels, size, h.style)
	if err != nil {
		h.logger.Error("failed to render overlay", zap.String("photo", sanitizeForLog(name)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to render overlay")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		h.logger.Warn("failed to write overlay", zap.String("photo", sanitizeForLog(name)), zap.Error(err))
	}
}
