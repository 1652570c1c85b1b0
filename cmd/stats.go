package cmd

import (
	"fmt"

	"github.com/kozaktomas/photo-labeler/internal/config"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var statsCmd = &cobra.Command{
	Use:   "stats [label-file]",
	Short: "Show label file totals",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path, err := labelFileArg(args, cfg)
	if err != nil {
		return err
	}

	store, err := labelstore.Load(path)
	if err != nil {
		return fmt.Errorf("loading label file: %w", err)
	}
	stats := store.Stats()

	if mustGetBool(cmd, "json") {
		return outputJSON(stats)
	}

	p := message.NewPrinter(language.English)
	p.Printf("Label file:        %s\n", path)
	p.Printf("Photos:            %d\n", stats.Photos)
	p.Printf("Labeled photos:    %d (%.1f%%)\n", stats.LabeledPhotos, percent(stats.LabeledPhotos, stats.Photos))
	p.Printf("Persons:           %d\n", stats.Persons)
	p.Printf("With number:       %d (%.1f%%)\n", stats.NumberedPersons, percent(stats.NumberedPersons, stats.Persons))
	if stats.DuplicatePersons > 0 {
		p.Printf("Likely duplicates: %d\n", stats.DuplicatePersons)
	}
	return nil
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
