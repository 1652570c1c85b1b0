package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kozaktomas/photo-labeler/internal/config"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels [label-file]",
	Short: "List the labels of every photo",
	Long: `List photos in label file order with their person count and dorsal numbers.

Example:
  photo-labeler labels ./race/labels.json --unlabeled
  photo-labeler labels ./race/labels.json --match finish`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLabelsList,
}

func init() {
	rootCmd.AddCommand(labelsCmd)

	labelsCmd.Flags().Bool("unlabeled", false, "Only show photos without labels")
	labelsCmd.Flags().String("match", "", "Only show photos whose name contains this text (ignores case and accents)")
	labelsCmd.Flags().Bool("json", false, "Output as JSON")
}

// PhotoLabels is one row of the labels listing.
type PhotoLabels struct {
	Photo   string `json:"photo"`
	Persons int    `json:"persons"`
	Numbers []int  `json:"numbers"`
}

func runLabelsList(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	path, err := labelFileArg(args, cfg)
	if err != nil {
		return err
	}
	unlabeled := mustGetBool(cmd, "unlabeled")
	match := mustGetString(cmd, "match")

	store, err := labelstore.Load(path)
	if err != nil {
		return fmt.Errorf("loading label file: %w", err)
	}

	var rows []PhotoLabels
	for _, name := range store.Keys() {
		labels := store.Labels(name)
		if unlabeled && len(labels) > 0 {
			continue
		}
		if match != "" && !labelstore.MatchName(name, match) {
			continue
		}
		row := PhotoLabels{Photo: name, Persons: len(labels), Numbers: []int{}}
		for _, a := range labels {
			if a.Dorsal != nil {
				row.Numbers = append(row.Numbers, a.Dorsal.Number)
			}
		}
		rows = append(rows, row)
	}

	if mustGetBool(cmd, "json") {
		if rows == nil {
			rows = []PhotoLabels{}
		}
		return outputJSON(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No photos found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHOTO\tPERSONS\tNUMBERS")
	fmt.Fprintln(w, "-----\t-------\t-------")

	for _, row := range rows {
		numbers := make([]string, len(row.Numbers))
		for i, n := range row.Numbers {
			numbers[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", row.Photo, row.Persons, strings.Join(numbers, ", "))
	}

	w.Flush()

	fmt.Printf("\nTotal: %d photos\n", len(rows))

	return nil
}
