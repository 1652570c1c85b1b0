package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kozaktomas/photo-labeler/internal/config"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create [label-file]",
	Short: "Create an empty label file",
	Long: `Create an empty label file. Photos in the same directory are added the
first time the file is opened or synced.

Example:
  photo-labeler create ./race/labels.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().Bool("force", false, "Overwrite an existing label file")
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path, err := labelFileArg(args, cfg)
	if err != nil {
		return err
	}

	if !mustGetBool(cmd, "force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite it", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	if err := labelstore.Create(path); err != nil {
		return fmt.Errorf("creating label file: %w", err)
	}
	fmt.Printf("Created %s\n", path)
	return nil
}
