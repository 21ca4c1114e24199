// =============================================================================
// Chemical Inventory to RDF Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the non-interactive form of one
// shell iteration. It is meant for scripts and scheduled jobs.
//
// COMMAND USAGE:
//   invrdf convert <name> [flags]
//
//   <name> is the inventory without extension (reagents -> reagents.csv).
//   A name ending in .xlsx is read as an Excel workbook.
//
// FLAGS:
//   --sheet : Workbook sheet to read (default: the first sheet)
//
// EXIT STATUS:
//   0 when the pass completed, even with failed rows
//   1 when the input could not be loaded or the output could not be written
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
	"github.com/ginjaninja78/chem-inventory-rdf/pkg/utils"
)

// sheet is the workbook sheet for .xlsx inputs.
var sheet string

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert <name>",
	Short: "Convert one inventory file to RDF",
	Long: `The convert command converts <name>.csv (or an .xlsx workbook) into
<name>_<YYYY-MM-DD>.rdf and prints a summary. Rows that cannot be converted
are listed by index and, unless disabled, written to an error log next to
the output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conv, release, err := newConverter()
		if err != nil {
			return err
		}
		defer release()

		name := args[0]
		var result types.ConversionResult
		if strings.HasSuffix(strings.ToLower(name), utils.XLSXExt) {
			result, err = conv.RunWorkbook(cmd.Context(), name, sheet)
		} else {
			result, err = conv.Run(cmd.Context(), utils.TrimInputExt(name))
		}
		if err != nil {
			return err
		}

		printSummary(cmd, result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet to read (default: the first sheet)")
}

// printSummary writes the outcome of a pass to the command's output.
func printSummary(cmd *cobra.Command, result types.ConversionResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "==========================================================")
	fmt.Fprintln(out, "CONVERSION SUMMARY")
	fmt.Fprintln(out, "==========================================================")
	fmt.Fprintf(out, "Input:      %s\n", result.InputPath)
	fmt.Fprintf(out, "Output:     %s\n", result.OutputPath)
	fmt.Fprintf(out, "Rows read:  %d\n", result.RowsRead)
	fmt.Fprintf(out, "Skipped:    %d\n", result.Skipped)
	fmt.Fprintf(out, "Converted:  %d\n", result.Converted)
	fmt.Fprintf(out, "Failed:     %d\n", len(result.Failures))
	fmt.Fprintf(out, "Duration:   %s\n", result.Duration())

	for _, f := range result.Failures {
		fmt.Fprintf(out, "  row %d (line %d): %s\n", f.Index, f.Line, f.Reason)
	}
}
