package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/photo-labeler/internal/config"
	"github.com/kozaktomas/photo-labeler/internal/imagefile"
	"github.com/kozaktomas/photo-labeler/internal/logging"
	"github.com/kozaktomas/photo-labeler/internal/session"
	"github.com/kozaktomas/photo-labeler/internal/web/handlers"
	"github.com/kozaktomas/photo-labeler/internal/web/middleware"
	"go.uber.org/zap"
)

// Server represents the web server
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	guard      *handlers.Guard
	style      imagefile.OverlayStyle
	logger     *zap.Logger
}

// NewServer creates a new web server around nav. The navigator must not be
// used directly once the server owns it.
func NewServer(cfg *config.Config, nav *session.Navigator, port int, host string, logger *zap.Logger) (*Server, error) {
	style, err := overlayStyle(cfg.Overlay)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	s := &Server{
		config: cfg,
		router: r,
		guard:  handlers.NewGuard(nav),
		style:  style,
		logger: logging.OrNop(logger),
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(time.Minute))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func overlayStyle(cfg config.OverlayConfig) (imagefile.OverlayStyle, error) {
	person, err := config.ParseHexColor(cfg.Person)
	if err != nil {
		return imagefile.OverlayStyle{}, fmt.Errorf("overlay person colour: %w", err)
	}
	dorsal, err := config.ParseHexColor(cfg.Dorsal)
	if err != nil {
		return imagefile.OverlayStyle{}, fmt.Errorf("overlay dorsal colour: %w", err)
	}
	return imagefile.OverlayStyle{Person: person, Dorsal: dorsal}, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting web server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops the server and saves the open label file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return s.guard.Do(func(nav *session.Navigator) error {
		if !nav.Loaded() {
			return nil
		}
		if err := nav.Save(); err != nil {
			return fmt.Errorf("saving labels on shutdown: %w", err)
		}
		return nil
	})
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
