package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kozaktomas/photo-labeler/internal/config"
	"github.com/kozaktomas/photo-labeler/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "photo-labeler",
	Short: "Label people and dorsal numbers in a directory of photos",
	Long: `Photo Labeler keeps a JSON label file next to a directory of photos.
Each photo gets person boxes, optionally with a dorsal number box and its
value. Draw labels in the browser with "serve" and inspect or export them
with the other commands.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// labelFileArg returns the label file from the first argument or LABELER_FILE.
func labelFileArg(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.LabelFile != "" {
		return cfg.LabelFile, nil
	}
	return "", errors.New("label file is required (argument or LABELER_FILE)")
}

// newLogger builds the logger for the configured mode.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}
