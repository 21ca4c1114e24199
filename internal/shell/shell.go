// Package shell is the operator console: it asks for an inventory file name,
// converts the file, reports the outcome and asks again until the operator
// interrupts it.
package shell

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
	"github.com/ginjaninja78/chem-inventory-rdf/pkg/utils"
)

// Runner performs one conversion pass for an input path without extension.
// *converter.Converter implements it.
type Runner interface {
	Run(ctx context.Context, inputBase string) (types.ConversionResult, error)
}

// Shell is the prompt loop.
type Shell struct {
	driver   PromptDriver
	runner   Runner
	messages Messages
	logger   *slog.Logger

	// dir resolves relative names; empty means the working directory.
	dir string
}

// Option configures a Shell.
type Option func(*Shell)

// WithMessages sets the operator texts.
func WithMessages(m Messages) Option {
	return func(s *Shell) { s.messages = m }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDir resolves entered names against dir instead of the working
// directory.
func WithDir(dir string) Option {
	return func(s *Shell) { s.dir = dir }
}

// New returns a shell that prompts through driver and converts with runner.
func New(driver PromptDriver, runner Runner, opts ...Option) *Shell {
	s := &Shell{
		driver:   driver,
		runner:   runner,
		messages: MessagesFor("ru"),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loop prompts, converts and reports until the driver fails. It returns
// ErrAborted when the operator ends the session.
func (s *Shell) Loop(ctx context.Context) error {
	for {
		name, err := s.driver.Input(ctx, InputConfig{Message: s.messages.Prompt})
		if err != nil {
			return err
		}
		if err := s.Handle(ctx, name); err != nil {
			return err
		}
	}
}

// Handle processes one entered name. Missing files and failed passes are
// reported to the operator; only driver errors are returned.
func (s *Shell) Handle(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	base := name
	if s.dir != "" && !filepath.IsAbs(base) {
		base = filepath.Join(s.dir, base)
	}

	path, err := utils.ResolveInput(base)
	if err != nil || !utils.FileExists(path) {
		s.logger.Debug("input not found", "name", name, "path", path)
		return s.driver.Info(ctx, s.messages.notFound(utils.CSVPath(name)))
	}

	result, err := s.runner.Run(ctx, utils.TrimInputExt(path))
	if err != nil {
		return s.driver.Info(ctx, s.messages.passFailed(err))
	}
	return s.report(ctx, result)
}

// report prints the success line, or the partial header followed by one
// failed index per line.
func (s *Shell) report(ctx context.Context, result types.ConversionResult) error {
	if result.Success() {
		return s.driver.Info(ctx, s.messages.Success)
	}

	lines := []string{s.messages.Partial}
	for _, index := range result.FailedIndices() {
		lines = append(lines, strconv.Itoa(index))
	}
	return s.driver.Info(ctx, strings.Join(lines, "\n"))
}
