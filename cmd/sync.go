package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/kozaktomas/photo-labeler/internal/config"
	"github.com/kozaktomas/photo-labeler/internal/imagefile"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [label-file]",
	Short: "Sync a label file with the photos in its directory",
	Long: `Add new photos to the label file and drop entries whose photo is gone.
With --verify every photo header is read to find files that cannot be opened.

Example:
  photo-labeler sync ./race/labels.json --verify`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().Bool("json", false, "Output as JSON")
	syncCmd.Flags().Bool("dry-run", false, "Report changes without writing the label file")
	syncCmd.Flags().Bool("verify", false, "Check that every photo can be decoded")
}

// SyncResult is the outcome of the sync command.
type SyncResult struct {
	LabelFile  string              `json:"label_file"`
	Photos     int                 `json:"photos"`
	Added      []string            `json:"added"`
	Removed    []string            `json:"removed"`
	Renamed    []labelstore.Rename `json:"renamed"`
	Unreadable map[string]string   `json:"unreadable,omitempty"`
	Saved      bool                `json:"saved"`
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path, err := labelFileArg(args, cfg)
	if err != nil {
		return err
	}
	jsonOutput := mustGetBool(cmd, "json")

	store, err := labelstore.Load(path)
	if err != nil {
		return fmt.Errorf("loading label file: %w", err)
	}
	dir := filepath.Dir(path)
	rec, err := labelstore.ReconcileDir(store, dir, nil, cfg.Capture.Extensions)
	if err != nil {
		return fmt.Errorf("scanning photos: %w", err)
	}

	result := SyncResult{
		LabelFile: path,
		Photos:    len(rec.Photos),
		Added:     rec.Added,
		Removed:   rec.Removed,
		Renamed:   rec.Renamed,
	}

	if mustGetBool(cmd, "verify") {
		result.Unreadable = verifyPhotos(dir, rec.Photos, !jsonOutput)
	}

	if !mustGetBool(cmd, "dry-run") {
		if err := labelstore.Save(path, store); err != nil {
			return fmt.Errorf("saving label file: %w", err)
		}
		result.Saved = true
	}

	if jsonOutput {
		return outputJSON(result)
	}

	fmt.Printf("Photos: %d\n", result.Photos)
	for _, name := range result.Added {
		fmt.Printf("  + %s\n", name)
	}
	for _, name := range result.Removed {
		fmt.Printf("  - %s\n", name)
	}
	for _, r := range result.Renamed {
		fmt.Printf("  ~ %s -> %s\n", r.From, r.To)
	}
	fmt.Printf("Added %d, removed %d, renamed %d\n", len(result.Added), len(result.Removed), len(result.Renamed))
	if len(result.Unreadable) > 0 {
		fmt.Printf("\nUnreadable photos:\n")
		for name, reason := range result.Unreadable {
			fmt.Printf("  %s: %s\n", name, reason)
		}
	}
	if !result.Saved {
		fmt.Println("Dry run, label file not written")
	}
	return nil
}

// verifyPhotos reads every photo header and returns the ones that fail.
func verifyPhotos(dir string, photos []string, showProgress bool) map[string]string {
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(len(photos),
			progressbar.OptionSetDescription("Verifying photos"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	var prober imagefile.DiskProber
	unreadable := make(map[string]string)
	for _, name := range photos {
		if _, _, err := prober.Dimensions(filepath.Join(dir, name)); err != nil {
			unreadable[name] = err.Error()
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	return unreadable
}
