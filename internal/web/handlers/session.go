package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"github.com/kozaktomas/photo-labeler/internal/capture"
	"github.com/kozaktomas/photo-labeler/internal/logging"
	"github.com/kozaktomas/photo-labeler/internal/session"
	"go.uber.org/zap"
)

// SessionHandler exposes the navigator commands.
type SessionHandler struct {
	guard  *Guard
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(guard *Guard, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{guard: guard, logger: logging.OrNop(logger)}
}

// FileRequest names a label file to open or create.
type FileRequest struct {
	Path string `json:"path"`
}

// FilterRequest selects the active photo list.
type FilterRequest struct {
	Mode string `json:"mode"`
}

// PointerRequest carries one pointer event in image pixels. For a release that
// finishes a dorsal box the client asks for the number first and sends it
// along; Accepted false cancels the number.
type PointerRequest struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Number   *int    `json:"number,omitempty"`
	Accepted bool    `json:"accepted"`
}

// Prompter answers the number request from the request body.
func (p PointerRequest) Prompter() capture.Prompter {
	return capture.PromptFunc(func() (int, bool) {
		if !p.Accepted || p.Number == nil {
			return 0, false
		}
		return *p.Number, true
	})
}

// Get returns the current snapshot.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.run(w, "get", func(*session.Navigator) error { return nil })
}

// Open saves the current label file and opens another one.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.withFile(w, r, "open", (*session.Navigator).Open)
}

// Create writes an empty label file and opens it.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.withFile(w, r, "create", (*session.Navigator).Create)
}

func (h *SessionHandler) withFile(w http.ResponseWriter, r *http.Request, command string, fn func(*session.Navigator, string) error) {
	var req FileRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	if req.Path == "" {
		respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	h.run(w, command, func(nav *session.Navigator) error { return fn(nav, req.Path) })
}

// Refresh reloads the label file and rescans its directory.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.run(w, "refresh", (*session.Navigator).LoadOrRefresh)
}

// Save writes the label file.
func (h *SessionHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.run(w, "save", (*session.Navigator).Save)
}

// Next moves to the following photo.
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.run(w, "next", (*session.Navigator).Next)
}

// Previous moves to the preceding photo.
func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.run(w, "previous", (*session.Navigator).Previous)
}

// NewPerson commits the person in progress.
func (h *SessionHandler) NewPerson(w http.ResponseWriter, r *http.Request) {
	h.run(w, "new-person", (*session.Navigator).NewPerson)
}

// Filter switches between all and unlabeled photos.
func (h *SessionHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	switch session.Filter(req.Mode) {
	case session.FilterAll:
		h.run(w, "filter-all", (*session.Navigator).FilterAll)
	case session.FilterUnlabeled:
		h.run(w, "filter-unlabeled", (*session.Navigator).FilterUnlabeled)
	default:
		respondError(w, http.StatusBadRequest, "mode must be 'all' or 'unlabeled'")
	}
}

// Pointer forwards a pointer event to the open photo.
func (h *SessionHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	p := annotation.Point{X: req.X, Y: req.Y}

	switch req.Type {
	case "down":
		h.run(w, "pointer-down", func(nav *session.Navigator) error { return nav.PointerDown(p) })
	case "move":
		h.run(w, "pointer-move", func(nav *session.Navigator) error { return nav.PointerMove(p) })
	case "up":
		h.run(w, "pointer-up", func(nav *session.Navigator) error { return nav.PointerUp(p, req.Prompter()) })
	default:
		respondError(w, http.StatusBadRequest, "type must be 'down', 'move' or 'up'")
	}
}

// DeleteLabel removes a label from the open photo.
func (h *SessionHandler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid label index")
		return
	}
	h.run(w, "delete-label", func(nav *session.Navigator) error { return nav.DeleteLabel(index) })
}

// run executes a navigator command and responds with the resulting snapshot.
func (h *SessionHandler) run(w http.ResponseWriter, command string, fn func(nav *session.Navigator) error) {
	var snap session.Snapshot
	err := h.guard.Do(func(nav *session.Navigator) error {
		if err := fn(nav); err != nil {
			return err
		}
		snap = nav.Snapshot()
		return nil
	})
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("session command failed", zap.String("command", command), zap.Error(err))
		} else {
			h.logger.Info("session command rejected", zap.String("command", command), zap.Error(err))
		}
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
