// =============================================================================
// Chemical Inventory to RDF Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. Settings come from three layers, later layers winning:
//   1. Built-in defaults (applyDefaults)
//   2. The YAML config file (invrdf.yaml)
//   3. Environment variables (INVRDF_*) and command-line flags, collected by
//      viper in the cmd package and applied with ApplyOverrides
//
// A missing config file is not an error: the defaults match the files the
// laboratory exports (";" delimiter, UTF-8, Russian messages, first data row
// skipped).
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory where RDF files are written.
	// Empty means next to the input file.
	// Default: ""
	OutputDir string `yaml:"output_dir"`

	// WriteErrorLog enables the <base>_<date>_errors.txt report listing
	// every failed row of a pass.
	// Default: true
	WriteErrorLog *bool `yaml:"write_error_log"`

	// JournalPath is the SQLite database recording conversion history.
	// Set to "-" to disable the journal.
	// Default: "./invrdf.db"
	JournalPath string `yaml:"journal_path"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFile is an optional path the log is written to instead of stderr.
	// Default: ""
	LogFile string `yaml:"log_file"`

	// =========================================================================
	// OPERATOR SETTINGS
	// =========================================================================

	// Language selects the operator messages of the interactive shell.
	// Valid values: "ru", "en"
	// Default: "ru"
	Language string `yaml:"language"`

	// =========================================================================
	// COMPONENT SETTINGS
	// =========================================================================

	CSV       CSVSettings       `yaml:"csv"`
	Converter ConverterSettings `yaml:"converter"`
	Chem      ChemSettings      `yaml:"chem"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing inventory CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields.
	// Accepts a single character or one of "semicolon", "comma", "tab", "pipe".
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the file.
	// Valid values: "utf-8", "windows-1251", "koi8-r", "auto"
	// A UTF-8 byte order mark is always stripped. "auto" falls back to
	// Windows-1251 when the content is not valid UTF-8.
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`

	// StrictHeader rejects files whose header row does not name the fixed
	// inventory columns (compared case-insensitively).
	// Default: false
	StrictHeader bool `yaml:"strict_header"`
}

// Comma returns the delimiter as a rune for encoding/csv.
func (s CSVSettings) Comma() rune {
	switch strings.ToLower(s.Delimiter) {
	case "", ";", "semicolon":
		return ';'
	case ",", "comma":
		return ','
	case "\\t", "\t", "tab":
		return '\t'
	case "|", "pipe":
		return '|'
	}
	return []rune(s.Delimiter)[0]
}

// =============================================================================
// CONVERTER AND CHEMISTRY SETTINGS
// =============================================================================

// ConverterSettings controls the row loop of a conversion pass.
type ConverterSettings struct {
	// ProcessFirstRow includes the first data row in the conversion.
	// The operator tool always skipped it, so existing inventories keep a
	// dummy row there.
	// Default: false
	ProcessFirstRow bool `yaml:"process_first_row"`
}

// StartIndex is the index of the first row the converter processes.
func (s ConverterSettings) StartIndex() int {
	if s.ProcessFirstRow {
		return 0
	}
	return 1
}

// ChemSettings configures the chemistry engine.
type ChemSettings struct {
	// BondLength is the depiction bond length in molfile units.
	// Default: 1.5
	BondLength float64 `yaml:"bond_length"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "invrdf.yaml"

// JournalDisabled is the JournalPath value that turns the journal off.
const JournalDisabled = "-"

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the Config struct. A missing file yields the defaults.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Override keys understood by ApplyOverrides. They match the YAML keys so
// INVRDF_CSV_ENCODING overrides csv.encoding.
const (
	KeyOutputDir       = "output_dir"
	KeyLogLevel        = "log_level"
	KeyLogFile         = "log_file"
	KeyLanguage        = "language"
	KeyWriteErrorLog   = "write_error_log"
	KeyJournalPath     = "journal_path"
	KeyDelimiter       = "csv.delimiter"
	KeyEncoding        = "csv.encoding"
	KeyStrictHeader    = "csv.strict_header"
	KeyProcessFirstRow = "converter.process_first_row"
	KeyBondLength      = "chem.bond_length"
)

// ApplyOverrides copies every key set in v (by environment variable or
// bound flag) over the loaded configuration and validates the result.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str(KeyOutputDir, &c.OutputDir)
	str(KeyLogLevel, &c.LogLevel)
	str(KeyLogFile, &c.LogFile)
	str(KeyLanguage, &c.Language)
	str(KeyJournalPath, &c.JournalPath)
	str(KeyDelimiter, &c.CSV.Delimiter)
	str(KeyEncoding, &c.CSV.Encoding)

	if v.IsSet(KeyWriteErrorLog) {
		enabled := v.GetBool(KeyWriteErrorLog)
		c.WriteErrorLog = &enabled
	}
	if v.IsSet(KeyStrictHeader) {
		c.CSV.StrictHeader = v.GetBool(KeyStrictHeader)
	}
	if v.IsSet(KeyProcessFirstRow) {
		c.Converter.ProcessFirstRow = v.GetBool(KeyProcessFirstRow)
	}
	if v.IsSet(KeyBondLength) {
		c.Chem.BondLength = v.GetFloat64(KeyBondLength)
	}

	applyDefaults(c)
	return c.Validate()
}

// ErrorLogEnabled reports whether failed rows are written to an error log.
func (c *Config) ErrorLogEnabled() bool {
	return c.WriteErrorLog == nil || *c.WriteErrorLog
}

// JournalEnabled reports whether conversion history is recorded.
func (c *Config) JournalEnabled() bool {
	return c.JournalPath != JournalDisabled
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Language == "" {
		cfg.Language = "ru"
	}
	if cfg.JournalPath == "" {
		cfg.JournalPath = "./invrdf.db"
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ";"
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = "utf-8"
	}
	if cfg.Chem.BondLength == 0 {
		cfg.Chem.BondLength = 1.5
	}
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	switch c.Language {
	case "ru", "en":
	default:
		return fmt.Errorf("unknown language %q", c.Language)
	}

	switch strings.ToLower(c.CSV.Encoding) {
	case "utf-8", "utf8", "windows-1251", "cp1251", "koi8-r", "auto":
	default:
		return fmt.Errorf("unknown csv.encoding %q", c.CSV.Encoding)
	}

	switch c.CSV.Comma() {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("invalid csv.delimiter %q", c.CSV.Delimiter)
	}

	if c.Chem.BondLength <= 0 {
		return fmt.Errorf("chem.bond_length must be positive, got %g", c.Chem.BondLength)
	}

	return nil
}
