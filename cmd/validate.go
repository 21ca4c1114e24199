package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/chem"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/csvparser"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/validation"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/xlsxparser"
	"github.com/ginjaninja78/chem-inventory-rdf/pkg/utils"
)

// strict makes warnings fail validation.
var strict bool

// rdfFile switches validate to inspecting a produced RDF file.
var rdfFile bool

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate <name>",
	Short: "Check an inventory without writing output",
	Long: `The validate command loads <name>.csv (or an .xlsx workbook) and reports
the rows the converter would reject, plus suspicious data such as CAS numbers
with a wrong check digit. With --rdf, <name> is an RDF file produced earlier
and the command checks that it can be read back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if rdfFile {
			return inspectRDF(cmd, args[0])
		}

		name := args[0]
		var rows []types.InventoryRow
		var err error
		if strings.HasSuffix(strings.ToLower(name), utils.XLSXExt) {
			rows, err = xlsxparser.Load(name, sheet)
		} else {
			rows, err = csvparser.Load(utils.TrimInputExt(name), cfg.CSV)
		}
		if err != nil {
			return err
		}

		engine := chem.NewEngine(chem.WithBondLength(cfg.Chem.BondLength), chem.WithLogger(logger))
		result := validation.NewValidatorWithOptions(engine, validation.Options{
			StartIndex:            cfg.Converter.StartIndex(),
			TreatWarningsAsErrors: strict,
		}).ValidateAll(rows)

		fmt.Fprint(cmd.OutOrStdout(), validation.FormatErrors(result.Errors))
		fmt.Fprintf(cmd.OutOrStdout(), "\nRows checked: %d, errors: %d, warnings: %d\n",
			result.RowsValidated, result.ErrorCount, result.WarningCount)

		if !result.IsValid {
			return fmt.Errorf("validation failed: %d error(s), %d warning(s)", result.ErrorCount, result.WarningCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().BoolVar(&rdfFile, "rdf", false, "Read back an RDF file instead of checking an inventory")
	validateCmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet to read (default: the first sheet)")
}

// inspectRDF reads an RDF file back and prints its record count.
func inspectRDF(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	file, err := chem.ReadRDF(f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Date:     %s\n", file.Date)
	fmt.Fprintf(out, "Records:  %d\n", len(file.Records))
	for i, rec := range file.Records {
		name, _ := rec.Property(types.Columns[types.ColName])
		cas, _ := rec.Property(types.Columns[types.ColCAS])
		fmt.Fprintf(out, "%4d  %-40s %-12s atoms=%d bonds=%d\n", i+1, name, cas, rec.AtomCount, rec.BondCount)
	}
	return nil
}
