// =============================================================================
// Chemical Inventory to RDF Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Called without a
// subcommand, the root command starts the interactive shell, which is how
// the laboratory operators use the tool.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invrdf)            interactive shell
//   ├── shellCmd    (invrdf shell)
//   ├── convertCmd  (invrdf convert <name>)
//   ├── validateCmd (invrdf validate <name>)
//   ├── historyCmd  (invrdf history)
//   └── versionCmd  (invrdf version)
//
// CONFIGURATION:
//   Before any command runs, the root command:
//   1. Loads the YAML configuration (--config, default invrdf.yaml)
//   2. Applies INVRDF_* environment variables and flags through Viper
//   3. Sets up the structured logger
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/config"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/converter"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/journal"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg is the effective configuration, set by PersistentPreRunE.
var cfg *config.Config

// logger is the application logger, set by PersistentPreRunE.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// logCloser closes the log file, if any.
var logCloser io.Closer

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invrdf",
	Short: "Chemical inventory to RDF converter",
	Long: `invrdf converts a laboratory chemical inventory (a semicolon separated
CSV file with a fixed 11-column schema) into an MDL RDfile: one molecule
record per inventory row, built from the row's SMILES and annotated with all
inventory fields.

Rows that cannot be converted are reported by their index and do not stop
the conversion.

Example Usage:
  invrdf                          # Interactive shell: ask for a file, convert, repeat
  invrdf convert reagents         # Convert reagents.csv once
  invrdf convert stock.xlsx       # Convert an Excel inventory
  invrdf validate reagents        # Check rows without writing output
  invrdf history                  # Show recent conversions`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", config.DefaultPath, "Path to the configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.String("output-dir", "", "Directory for RDF output (default: next to the input)")
	flags.String("encoding", "", "Input charset: utf-8, windows-1251, koi8-r or auto")
	flags.String("lang", "", "Operator message language: ru or en")

	viper.BindPFlag(config.KeyOutputDir, flags.Lookup("output-dir"))
	viper.BindPFlag(config.KeyEncoding, flags.Lookup("encoding"))
	viper.BindPFlag(config.KeyLanguage, flags.Lookup("lang"))

	cobra.OnInitialize(initViper)
}

// initViper makes every configuration key overridable from the environment:
// INVRDF_OUTPUT_DIR, INVRDF_CSV_ENCODING, INVRDF_CONVERTER_PROCESS_FIRST_ROW...
func initViper() {
	viper.SetEnvPrefix("INVRDF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// setup loads the configuration and builds the logger.
func setup() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := loaded.ApplyOverrides(viper.GetViper()); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	l, closer, err := newLogger(cfg, verbose)
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	slog.SetDefault(logger)

	logger.Debug("configuration loaded", "path", cfgFile, "output_dir", cfg.OutputDir, "encoding", cfg.CSV.Encoding)
	return nil
}

// newLogger builds a text logger on stderr, or on log_file when set.
func newLogger(c *config.Config, debug bool) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if debug {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	var closer io.Closer
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closer, nil
}

// newConverter builds a converter that records passes in the journal when
// it is enabled. The returned function releases the journal.
func newConverter() (*converter.Converter, func(), error) {
	opts := []converter.Option{converter.WithLogger(logger)}
	release := func() {}

	if cfg.JournalEnabled() {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, converter.WithRecorder(store))
		release = func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close journal", "error", err)
			}
		}
	}

	return converter.New(cfg, opts...), release, nil
}
