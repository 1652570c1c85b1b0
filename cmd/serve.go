package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/photo-labeler/internal/config"
	"github.com/kozaktomas/photo-labeler/internal/constants"
	"github.com/kozaktomas/photo-labeler/internal/session"
	"github.com/kozaktomas/photo-labeler/internal/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the labeling web server",
	Long: `Start the Photo Labeler web server.
The browser page shows one photo at a time. Drag a box around a person, then
a box around the dorsal number and type the number. Labels are saved to the
label file whenever you move to another photo.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("labels", "", "Label file to open (defaults to LABELER_FILE)")
	serveCmd.Flags().Int("port", constants.DefaultWebPort, "Port to listen on")
	serveCmd.Flags().String("host", constants.DefaultWebHost, "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
// Explicit flags win over the environment.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if !cmd.Flags().Changed("port") && cfg.Web.Port > 0 {
		port = cfg.Web.Port
	}
	if !cmd.Flags().Changed("host") && cfg.Web.Host != "" {
		host = cfg.Web.Host
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	nav := session.New(session.Options{
		Extensions:   cfg.Capture.Extensions,
		AnchorMargin: cfg.Capture.AnchorMargin,
		Logger:       logger,
	})

	labelFile := mustGetString(cmd, "labels")
	if labelFile == "" {
		labelFile = cfg.LabelFile
	}
	if labelFile != "" {
		if err := nav.Open(labelFile); err != nil {
			return fmt.Errorf("opening label file: %w", err)
		}
	} else {
		fmt.Println("No label file given, open or create one from the page")
	}

	port, host := resolveServeHostPort(cmd, cfg)
	server, err := web.NewServer(cfg, nav, port, host, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during shutdown", zap.Error(err))
		}
	}()

	fmt.Printf("Starting Photo Labeler on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
