package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/ppg-features/internal/dataset"
	"github.com/RyanBlaney/ppg-features/pkg/signal/extractors"
)

var schemaNamesOnly bool

var titleCaser = cases.Title(language.English)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the ordered feature columns",
	Long: `Print the feature schema: every feature column in output order, grouped by
the family that computes it, followed by the metadata columns.

Examples:
  ppg-features schema
  ppg-features schema --names-only > columns.txt`,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolVar(&schemaNamesOnly, "names-only", false,
		"print one column name per line")
}

func runSchema(cmd *cobra.Command, args []string) error {
	columns := dataset.New(nil).Columns()

	if schemaNamesOnly {
		fmt.Println(strings.Join(columns, "\n"))
		return nil
	}

	fmt.Println("PPG FEATURE SCHEMA")
	fmt.Println(strings.Repeat("=", 80))

	for _, family := range extractors.Families {
		features := extractors.FeaturesOf(family)
		printSection(fmt.Sprintf("%s (%d)", titleCaser.String(string(family)), len(features)))
		for _, f := range features {
			printKeyValue(fmt.Sprintf("  %2d", int(f)), f.String())
		}
	}

	printSection("Metadata")
	for i, name := range columns[extractors.NumFeatures:] {
		printKeyValue(fmt.Sprintf("  %2d", extractors.NumFeatures+i), name)
	}

	fmt.Printf("\n%d feature columns, %d columns total\n", extractors.NumFeatures, len(columns))
	return nil
}
