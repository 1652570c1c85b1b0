package web

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-labeler/internal/web/handlers"
	"github.com/kozaktomas/photo-labeler/internal/web/static"
)

func (s *Server) setupRoutes() {
	sessionHandler := handlers.NewSessionHandler(s.guard, s.logger)
	photosHandler := handlers.NewPhotosHandler(s.guard, s.style, s.logger)
	statsHandler := handlers.NewStatsHandler(s.guard)
	configHandler := handlers.NewConfigHandler(s.config)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)
		r.Get("/stats", statsHandler.Get)

		// Session commands
		r.Get("/session", sessionHandler.Get)
		r.Post("/session/open", sessionHandler.Open)
		r.Post("/session/create", sessionHandler.Create)
		r.Post("/session/refresh", sessionHandler.Refresh)
		r.Post("/session/save", sessionHandler.Save)
		r.Post("/session/next", sessionHandler.Next)
		r.Post("/session/previous", sessionHandler.Previous)
		r.Post("/session/new-person", sessionHandler.NewPerson)
		r.Post("/session/filter", sessionHandler.Filter)
		r.Post("/session/pointer", sessionHandler.Pointer)
		r.Delete("/session/labels/{index}", sessionHandler.DeleteLabel)

		// Photos of the open label file
		r.Get("/photos/{name}/image", photosHandler.Image)
		r.Get("/photos/{name}/overlay.png", photosHandler.Overlay)
	})

	// Serve the labeling page
	s.router.Get("/*", s.serveSPA)
}

// serveSPA serves the embedded labeling page
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	fs := static.GetFileSystem()
	path := r.URL.Path
	if path == "/" {
		path = "/index.html"
	}

	f, err := fs.Open(path)
	if err != nil {
		// Unknown paths get the page itself
		path = "/index.html"
		if f, err = fs.Open(path); err != nil {
			http.NotFound(w, r)
			return
		}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(path, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(path, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(path, ".js"):
		contentType = "application/javascript; charset=utf-8"
	case strings.HasSuffix(path, ".svg"):
		contentType = "image/svg+xml"
	case strings.HasSuffix(path, ".ico"):
		contentType = "image/x-icon"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
