package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kozaktomas/photo-labeler/internal/config"
	"github.com/kozaktomas/photo-labeler/internal/imagefile"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [label-file]",
	Short: "Crop every numbered dorsal into a per-number directory",
	Long: `Crop the dorsal box of every numbered person and write it to
<out>/<number>/<photo>_<label index>.<format>.

Example:
  photo-labeler export ./race/labels.json --out ./dorsals --format png`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("out", "", "Output directory (required)")
	exportCmd.Flags().String("format", "", "Output format: jpg or png (defaults to LABELER_EXPORT_FORMAT)")
	exportCmd.Flags().Int("quality", 0, "JPEG quality 1-100 (defaults to LABELER_EXPORT_QUALITY)")
	exportCmd.Flags().Bool("json", false, "Output as JSON")
}

// ExportSummary is the JSON output of the export command.
type ExportSummary struct {
	Photos  int      `json:"photos"`
	Written int      `json:"written"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path, err := labelFileArg(args, cfg)
	if err != nil {
		return err
	}
	out := mustGetString(cmd, "out")
	if out == "" {
		return errors.New("--out is required")
	}
	format := mustGetString(cmd, "format")
	if format == "" {
		format = cfg.Export.Format
	}
	quality := mustGetInt(cmd, "quality")
	if quality == 0 {
		quality = cfg.Export.Quality
	}
	jsonOutput := mustGetBool(cmd, "json")

	store, err := labelstore.Load(path)
	if err != nil {
		return fmt.Errorf("loading label file: %w", err)
	}

	opts := imagefile.ExportOptions{OutDir: out, Format: format, Quality: quality}
	var bar *progressbar.ProgressBar
	if !jsonOutput {
		bar = progressbar.NewOptions(imagefile.NumberedPhotos(store),
			progressbar.OptionSetDescription("Exporting dorsals"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
		opts.OnProgress = func() { bar.Add(1) }
	}

	result, err := imagefile.ExportDorsals(filepath.Dir(path), store, opts)
	if err != nil {
		return fmt.Errorf("exporting dorsals: %w", err)
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	summary := ExportSummary{
		Photos:  result.Photos,
		Written: result.Written,
		Skipped: result.Skipped,
		Errors:  make([]string, 0, len(result.Errors)),
	}
	for _, e := range result.Errors {
		summary.Errors = append(summary.Errors, e.Error())
	}

	if jsonOutput {
		return outputJSON(summary)
	}

	fmt.Printf("Wrote %d crops from %d photos to %s\n", summary.Written, summary.Photos, out)
	if summary.Skipped > 0 {
		fmt.Printf("Skipped %d boxes outside their photo\n", summary.Skipped)
	}
	if len(summary.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, e := range summary.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
	return nil
}
